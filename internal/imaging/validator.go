// Package imaging validates uploaded image payloads before they enter a
// session. Validation is two-stage: magic-number sniffing, then a decode of
// the image header to confirm the container is well-formed.
package imaging

import (
	"bytes"
	"fmt"
	"image"

	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder

	_ "golang.org/x/image/webp" // register WEBP decoder
)

// Info describes a validated image.
type Info struct {
	Format string
	Width  int
	Height int
	Size   int64
}

// Magic-number signatures for the supported upload formats. JPEG only needs
// the first two bytes; WEBP needs the RIFF header plus the WEBP fourcc.
var signatures = map[string][]byte{
	"jpeg": {0xFF, 0xD8},
	"png":  {0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A},
	"gif":  {0x47, 0x49, 0x46, 0x38},
	"webp": {0x52, 0x49, 0x46, 0x46},
}

// DetectFormat sniffs the image format from leading bytes.
func DetectFormat(data []byte) (string, error) {
	for format, sig := range signatures {
		if len(data) < len(sig) || !bytes.Equal(data[:len(sig)], sig) {
			continue
		}
		if format == "webp" {
			if len(data) < 12 || string(data[8:12]) != "WEBP" {
				continue
			}
		}
		return format, nil
	}
	return "", fmt.Errorf("unsupported image format")
}

// Validate checks size, signature, and decodability of an uploaded payload.
// maxSize <= 0 disables the size check.
func Validate(data []byte, maxSize int64) (*Info, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty image payload")
	}
	if maxSize > 0 && int64(len(data)) > maxSize {
		return nil, fmt.Errorf("image too large: %d bytes, limit %d", len(data), maxSize)
	}

	format, err := DetectFormat(data)
	if err != nil {
		return nil, err
	}

	cfg, decoded, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image header: %w", err)
	}
	if decoded != format {
		return nil, fmt.Errorf("format mismatch: signature says %s, decoder says %s", format, decoded)
	}

	return &Info{
		Format: format,
		Width:  cfg.Width,
		Height: cfg.Height,
		Size:   int64(len(data)),
	}, nil
}

// MIMEType maps an image format to its MIME type for data URIs.
func MIMEType(format string) string {
	switch format {
	case "jpg", "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}

// Extension returns the file extension (with dot) for a format, used when
// the codec needs a recognizable temp file name.
func Extension(format string) string {
	switch format {
	case "png":
		return ".png"
	case "gif":
		return ".gif"
	case "webp":
		return ".webp"
	default:
		return ".jpg"
	}
}
