package imaging

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"
	"testing"
)

func encodePNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func encodeJPEG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4)), nil); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	return buf.Bytes()
}

func TestValidate(t *testing.T) {
	pngData := encodePNG(t)
	jpegData := encodeJPEG(t)

	testCases := []struct {
		name       string
		data       []byte
		maxSize    int64
		wantFormat string
		wantErr    bool
	}{
		{name: "valid png", data: pngData, maxSize: 0, wantFormat: "png"},
		{name: "valid jpeg", data: jpegData, maxSize: 0, wantFormat: "jpeg"},
		{name: "empty payload", data: nil, wantErr: true},
		{name: "garbage bytes", data: []byte("definitely not an image"), wantErr: true},
		{name: "oversized", data: pngData, maxSize: 10, wantErr: true},
		{name: "truncated signature only", data: pngData[:8], wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			info, err := Validate(tc.data, tc.maxSize)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if info.Format != tc.wantFormat {
				t.Errorf("format = %q, want %q", info.Format, tc.wantFormat)
			}
			if info.Width != 4 || info.Height != 4 {
				t.Errorf("dimensions = %dx%d, want 4x4", info.Width, info.Height)
			}
		})
	}
}

func TestDetectFormatRejectsRIFFWithoutWEBP(t *testing.T) {
	data := append([]byte("RIFF"), []byte{0, 0, 0, 0, 'W', 'A', 'V', 'E'}...)
	if _, err := DetectFormat(data); err == nil {
		t.Error("RIFF container without WEBP fourcc should be rejected")
	}
}
