package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/jpeg"
	"reflect"
	"testing"

	"github.com/calen/phototagger/internal/domain"
	"github.com/calen/phototagger/internal/storage"
)

// fakeCodec returns canned metadata on read and marks written bytes.
type fakeCodec struct {
	existing domain.Metadata
	written  *domain.Metadata
}

func (f *fakeCodec) Read(data []byte, format string) (domain.Metadata, error) {
	return f.existing, nil
}

func (f *fakeCodec) Write(data []byte, format string, md domain.Metadata) ([]byte, error) {
	f.written = &md
	return append(append([]byte{}, data...), []byte("tagged")...), nil
}

type fakeGenerator struct {
	result domain.Metadata
	err    error
}

func (f *fakeGenerator) Generate(ctx context.Context, imageData []byte, format, existingCaption string) (domain.Metadata, error) {
	return f.result, f.err
}

func testJPEG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4)), nil); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	return buf.Bytes()
}

func newTestService(codec *fakeCodec, gen *fakeGenerator) *SessionService {
	return NewSessionService(storage.NewMemoryStore(), gen, codec, &SessionConfig{
		MaxUploadBytes: 1 << 20,
		MaxKeywords:    5,
	})
}

func TestSessionLifecycle(t *testing.T) {
	codec := &fakeCodec{existing: domain.Metadata{Caption: "old", Keywords: []string{"bay"}}}
	gen := &fakeGenerator{result: domain.Metadata{Caption: "Sunset over bay", Keywords: []string{"sunset", "bay", "water"}}}
	svc := newTestService(codec, gen)
	ctx := context.Background()

	sess, err := svc.Create(ctx, "photo.jpg", testJPEG(t))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if sess.Working.Caption != "old" {
		t.Errorf("initial caption = %q, want existing value", sess.Working.Caption)
	}

	sess, err = svc.GenerateCaption(ctx, sess.ID)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if sess.Working.Caption != "Sunset over bay" {
		t.Errorf("caption = %q, want generated value", sess.Working.Caption)
	}
	// Existing keywords come first in the merged set.
	wantKeywords := []string{"bay", "sunset", "water"}
	if !reflect.DeepEqual(sess.Working.Keywords, wantKeywords) {
		t.Errorf("keywords = %v, want %v", sess.Working.Keywords, wantKeywords)
	}

	if _, err := svc.AddKeyword(sess.ID, "dusk"); err != nil {
		t.Fatalf("add keyword: %v", err)
	}
	if _, err := svc.RemoveKeyword(sess.ID, 0); err != nil {
		t.Fatalf("remove keyword: %v", err)
	}
	if _, err := svc.RemoveKeyword(sess.ID, 99); err == nil {
		t.Error("out-of-range removal should error")
	}

	if _, err := svc.SetCaption(sess.ID, "Edited caption"); err != nil {
		t.Fatalf("set caption: %v", err)
	}

	name, data, err := svc.Export(ctx, sess.ID)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if name != "tagged_photo.jpg" {
		t.Errorf("export filename = %q, want tagged_photo.jpg", name)
	}
	if len(data) == 0 {
		t.Error("export produced no bytes")
	}
	if codec.written == nil {
		t.Fatal("codec never received a write")
	}
	if codec.written.Caption != "Edited caption" {
		t.Errorf("written caption = %q, want edited value", codec.written.Caption)
	}
	wantWritten := []string{"sunset", "water", "dusk"}
	if !reflect.DeepEqual(codec.written.Keywords, wantWritten) {
		t.Errorf("written keywords = %v, want %v", codec.written.Keywords, wantWritten)
	}

	svc.Delete(sess.ID)
	if _, err := svc.Get(sess.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound after delete, got %v", err)
	}
}

func TestCreateRejectsInvalidUpload(t *testing.T) {
	svc := newTestService(&fakeCodec{}, &fakeGenerator{})

	if _, err := svc.Create(context.Background(), "nope.txt", []byte("not an image")); err == nil {
		t.Error("expected validation error for non-image payload")
	}
}

func TestGenerateCaptionPropagatesProviderErrors(t *testing.T) {
	gen := &fakeGenerator{err: ErrInvalidCredential}
	svc := newTestService(&fakeCodec{}, gen)
	ctx := context.Background()

	sess, err := svc.Create(ctx, "photo.jpg", testJPEG(t))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.GenerateCaption(ctx, sess.ID); !errors.Is(err, ErrInvalidCredential) {
		t.Errorf("expected ErrInvalidCredential, got %v", err)
	}
}
