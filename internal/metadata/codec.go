// Package metadata reads and writes the embedded IPTC/EXIF caption and
// keyword fields of an image. The encoding itself is delegated to exiftool
// via barasher/go-exiftool; this package only maps between raw bytes and the
// domain metadata shape.
package metadata

import (
	"fmt"
	"os"

	"github.com/barasher/go-exiftool"

	"github.com/calen/phototagger/internal/domain"
	"github.com/calen/phototagger/internal/imaging"
)

const (
	// KeywordMaxLen caps each written keyword entry; IPTC keyword fields
	// reject longer values.
	KeywordMaxLen = 64

	// KeywordMaxEntries caps the number of keyword entries written. The
	// writer uses one IPTC field slot per keyword rather than comma-joined
	// batches.
	KeywordMaxEntries = 20
)

// Caption is written to two redundant locations so both EXIF-only and
// IPTC-aware consumers pick it up: the UTF-16 Windows comment tag and the
// IPTC caption field.
const (
	tagCaptionIPTC = "Caption-Abstract"
	tagCaptionXP   = "XPComment"
	tagDescription = "ImageDescription"
	tagKeywords    = "Keywords"
	tagSubject     = "Subject"
)

// Codec wraps a long-lived exiftool process. It is safe for sequential use;
// callers serialize access the same way the session handlers do.
type Codec struct {
	et *exiftool.Exiftool
}

// NewCodec starts the exiftool sidecar process.
func NewCodec() (*Codec, error) {
	et, err := exiftool.NewExiftool()
	if err != nil {
		return nil, fmt.Errorf("start exiftool: %w", err)
	}
	return &Codec{et: et}, nil
}

// Close terminates the exiftool process.
func (c *Codec) Close() error {
	return c.et.Close()
}

// Read extracts caption and keywords from raw image bytes. Missing fields
// yield empty defaults; only codec-level failures return an error.
func (c *Codec) Read(data []byte, format string) (domain.Metadata, error) {
	path, cleanup, err := tempAsset(data, format)
	if err != nil {
		return domain.Metadata{}, err
	}
	defer cleanup()

	return c.ReadFile(path)
}

// ReadFile extracts caption and keywords from an image on disk.
func (c *Codec) ReadFile(path string) (domain.Metadata, error) {
	fms := c.et.ExtractMetadata(path)
	fm := fms[0]
	if fm.Err != nil {
		return domain.Metadata{}, fmt.Errorf("extract metadata from %q: %w", path, fm.Err)
	}

	md := domain.Metadata{}

	// IPTC caption first, then the plain EXIF description.
	if caption, err := fm.GetString(tagCaptionIPTC); err == nil {
		md.Caption = caption
	} else if caption, err := fm.GetString(tagDescription); err == nil {
		md.Caption = caption
	}

	if keywords, err := fm.GetStrings(tagKeywords); err == nil {
		md.Keywords = keywords
	} else if keywords, err := fm.GetStrings(tagSubject); err == nil {
		md.Keywords = keywords
	}

	return md, nil
}

// Write returns a copy of the image bytes with the given metadata embedded.
// The original slice is never modified.
func (c *Codec) Write(data []byte, format string, md domain.Metadata) ([]byte, error) {
	path, cleanup, err := tempAsset(data, format)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	if err := c.WriteFile(path, md); err != nil {
		return nil, err
	}

	out, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tagged asset: %w", err)
	}
	return out, nil
}

// WriteFile embeds the metadata into an image on disk, in place.
func (c *Codec) WriteFile(path string, md domain.Metadata) error {
	fm := exiftool.EmptyFileMetadata()
	fm.File = path
	fm.SetString(tagCaptionXP, md.Caption)
	fm.SetString(tagCaptionIPTC, md.Caption)
	fm.SetStrings(tagKeywords, CapKeywords(md.Keywords))

	fms := []exiftool.FileMetadata{fm}
	c.et.WriteMetadata(fms)
	if fms[0].Err != nil {
		return fmt.Errorf("write metadata to %q: %w", path, fms[0].Err)
	}
	return nil
}

// CapKeywords applies the write policy: at most KeywordMaxEntries entries,
// each truncated to KeywordMaxLen characters, blanks dropped.
func CapKeywords(keywords []string) []string {
	capped := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if len(kw) > KeywordMaxLen {
			kw = kw[:KeywordMaxLen]
		}
		capped = append(capped, kw)
		if len(capped) == KeywordMaxEntries {
			break
		}
	}
	return capped
}

// tempAsset writes the bytes to a temp file with an extension exiftool can
// recognize and returns the path plus a cleanup func.
func tempAsset(data []byte, format string) (string, func(), error) {
	f, err := os.CreateTemp("", "phototagger-*"+imaging.Extension(format))
	if err != nil {
		return "", nil, fmt.Errorf("create temp asset: %w", err)
	}
	path := f.Name()
	cleanup := func() { os.Remove(path) }

	if _, err := f.Write(data); err != nil {
		f.Close()
		cleanup()
		return "", nil, fmt.Errorf("write temp asset: %w", err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("close temp asset: %w", err)
	}
	return path, cleanup, nil
}
