package metadata

import (
	"bytes"
	"image"
	"image/jpeg"
	"os/exec"
	"reflect"
	"strings"
	"testing"

	"github.com/calen/phototagger/internal/domain"
)

func TestCapKeywords(t *testing.T) {
	long := strings.Repeat("x", 100)

	testCases := []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "short list unchanged",
			in:   []string{"bay", "sunset"},
			want: []string{"bay", "sunset"},
		},
		{
			name: "long entries truncated",
			in:   []string{long},
			want: []string{long[:KeywordMaxLen]},
		},
		{
			name: "blanks dropped",
			in:   []string{"a", "", "b"},
			want: []string{"a", "b"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := CapKeywords(tc.in)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("CapKeywords(%v) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestCapKeywordsEntryLimit(t *testing.T) {
	in := make([]string, KeywordMaxEntries+10)
	for i := range in {
		in[i] = strings.Repeat("k", i+1)
	}
	got := CapKeywords(in)
	if len(got) != KeywordMaxEntries {
		t.Errorf("got %d entries, want %d", len(got), KeywordMaxEntries)
	}
}

func newTestCodec(t *testing.T) *Codec {
	t.Helper()
	if _, err := exec.LookPath("exiftool"); err != nil {
		t.Skip("exiftool binary not available")
	}
	c, err := NewCodec()
	if err != nil {
		t.Fatalf("start codec: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func encodeJPEG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 8, 8)), nil); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	return buf.Bytes()
}

func TestReadNoEmbeddedMetadata(t *testing.T) {
	c := newTestCodec(t)

	md, err := c.Read(encodeJPEG(t), "jpeg")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if md.Caption != "" {
		t.Errorf("caption = %q, want empty", md.Caption)
	}
	if len(md.Keywords) != 0 {
		t.Errorf("keywords = %v, want empty", md.Keywords)
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	c := newTestCodec(t)

	in := domain.Metadata{
		Caption:  "Sunset over bay",
		Keywords: []string{"bay", "sunset"},
	}

	tagged, err := c.Write(encodeJPEG(t), "jpeg", in)
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if bytes.Equal(tagged, encodeJPEG(t)) {
		t.Fatal("tagged bytes identical to input")
	}

	out, err := c.Read(tagged, "jpeg")
	if err != nil {
		t.Fatalf("re-read: %v", err)
	}
	if out.Caption != in.Caption {
		t.Errorf("caption = %q, want %q", out.Caption, in.Caption)
	}
	if !reflect.DeepEqual(out.Keywords, in.Keywords) {
		t.Errorf("keywords = %v, want %v", out.Keywords, in.Keywords)
	}
}
