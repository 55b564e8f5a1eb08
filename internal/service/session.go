package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/calen/phototagger/internal/domain"
	"github.com/calen/phototagger/internal/imaging"
	"github.com/calen/phototagger/internal/logger"
	"github.com/calen/phototagger/internal/storage"
)

// ErrSessionNotFound is returned for unknown or expired session IDs.
var ErrSessionNotFound = errors.New("session not found")

// MetadataCodec reads and writes embedded caption/keyword metadata.
// Implemented by the exiftool-backed codec in internal/metadata.
type MetadataCodec interface {
	Read(data []byte, format string) (domain.Metadata, error)
	Write(data []byte, format string, md domain.Metadata) ([]byte, error)
}

// CaptionGenerator produces caption metadata for an image.
type CaptionGenerator interface {
	Generate(ctx context.Context, imageData []byte, format, existingCaption string) (domain.Metadata, error)
}

// SessionService orchestrates the upload/caption/edit/export lifecycle. One
// session per uploaded asset; the asset bytes live in the session store and
// nowhere else.
type SessionService struct {
	store       storage.SessionStore
	captions    CaptionGenerator
	codec       MetadataCodec
	maxUpload   int64
	maxKeywords int
}

// SessionConfig holds limits for the session service.
type SessionConfig struct {
	MaxUploadBytes int64
	MaxKeywords    int
}

// NewSessionService creates the session orchestrator.
func NewSessionService(store storage.SessionStore, captions CaptionGenerator, codec MetadataCodec, cfg *SessionConfig) *SessionService {
	maxKeywords := cfg.MaxKeywords
	if maxKeywords <= 0 {
		maxKeywords = domain.DefaultMaxKeywords
	}
	return &SessionService{
		store:       store,
		captions:    captions,
		codec:       codec,
		maxUpload:   cfg.MaxUploadBytes,
		maxKeywords: maxKeywords,
	}
}

// Create validates the upload, extracts any embedded metadata, and opens a
// session seeded with the existing values.
func (s *SessionService) Create(ctx context.Context, filename string, data []byte) (*domain.Session, error) {
	info, err := imaging.Validate(data, s.maxUpload)
	if err != nil {
		return nil, fmt.Errorf("invalid upload: %w", err)
	}

	existing, err := s.codec.Read(data, info.Format)
	if err != nil {
		return nil, fmt.Errorf("read embedded metadata: %w", err)
	}

	now := time.Now()
	sess := &domain.Session{
		ID:        uuid.New().String(),
		Filename:  filename,
		Format:    info.Format,
		Width:     info.Width,
		Height:    info.Height,
		Size:      info.Size,
		Existing:  existing,
		Working:   domain.NewWorkingSet(existing, domain.Metadata{}, s.maxKeywords),
		CreatedAt: now,
		UpdatedAt: now,
		Data:      data,
	}
	s.store.Set(sess.ID, sess)

	logger.CtxInfo(ctx, "Session created: id=%s, file=%s, format=%s, size=%d",
		sess.ID, filename, info.Format, info.Size)
	return sess, nil
}

// Get returns the session for an ID.
func (s *SessionService) Get(id string) (*domain.Session, error) {
	sess, ok := s.store.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// GenerateCaption asks the model for a caption and keyword list, then merges
// the result into the session's working set.
func (s *SessionService) GenerateCaption(ctx context.Context, id string) (*domain.Session, error) {
	sess, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	generated, err := s.captions.Generate(ctx, sess.Data, sess.Format, sess.Existing.Caption)
	if err != nil {
		return nil, err
	}

	sess.Generated = &generated
	sess.Working = domain.NewWorkingSet(sess.Existing, generated, s.maxKeywords)
	s.touch(sess)

	logger.CtxInfo(ctx, "Caption generated: session=%s, keywords=%d", id, len(generated.Keywords))
	return sess, nil
}

// SetCaption replaces the working caption text.
func (s *SessionService) SetCaption(id, caption string) (*domain.Session, error) {
	sess, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	sess.Working.Caption = caption
	s.touch(sess)
	return sess, nil
}

// AddKeyword adds a keyword to the working set. Duplicates and blank entries
// are silent no-ops, matching the edit contract.
func (s *SessionService) AddKeyword(id, keyword string) (*domain.Session, error) {
	sess, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if sess.Working.AddKeyword(keyword) {
		s.touch(sess)
	}
	return sess, nil
}

// RemoveKeyword removes the keyword at the given position.
func (s *SessionService) RemoveKeyword(id string, index int) (*domain.Session, error) {
	sess, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if !sess.Working.RemoveKeyword(index) {
		return nil, fmt.Errorf("keyword index %d out of range", index)
	}
	s.touch(sess)
	return sess, nil
}

// Export writes the working metadata into the original bytes and returns the
// download filename plus the tagged asset.
func (s *SessionService) Export(ctx context.Context, id string) (string, []byte, error) {
	sess, err := s.Get(id)
	if err != nil {
		return "", nil, err
	}

	tagged, err := s.codec.Write(sess.Data, sess.Format, sess.Working.Snapshot())
	if err != nil {
		return "", nil, fmt.Errorf("write metadata: %w", err)
	}

	logger.CtxInfo(ctx, "Session exported: id=%s, bytes=%d", id, len(tagged))
	return sess.ExportFilename(), tagged, nil
}

// Delete drops the session and its asset bytes.
func (s *SessionService) Delete(id string) {
	s.store.Delete(id)
}

func (s *SessionService) touch(sess *domain.Session) {
	sess.UpdatedAt = time.Now()
	s.store.Set(sess.ID, sess)
}
