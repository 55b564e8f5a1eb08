package storage

import (
	"testing"

	"github.com/calen/phototagger/internal/domain"
)

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()

	if _, ok := store.Get("missing"); ok {
		t.Error("Get on empty store should miss")
	}

	sess := &domain.Session{ID: "abc", Filename: "photo.jpg"}
	store.Set(sess.ID, sess)

	got, ok := store.Get("abc")
	if !ok {
		t.Fatal("expected session to be found")
	}
	if got.Filename != "photo.jpg" {
		t.Errorf("filename = %q, want photo.jpg", got.Filename)
	}
	if store.Len() != 1 {
		t.Errorf("len = %d, want 1", store.Len())
	}

	store.Delete("abc")
	if _, ok := store.Get("abc"); ok {
		t.Error("session should be gone after delete")
	}
	if store.Len() != 0 {
		t.Errorf("len = %d, want 0", store.Len())
	}
}
