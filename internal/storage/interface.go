package storage

import "github.com/calen/phototagger/internal/domain"

// SessionStore holds upload sessions for their lifetime. Assets are never
// persisted outside the process; the store is the only owner of the bytes.
type SessionStore interface {
	// Get returns the session for an ID.
	Get(id string) (*domain.Session, bool)

	// Set stores or replaces a session.
	Set(id string, sess *domain.Session)

	// Delete removes a session and releases its asset bytes.
	Delete(id string)

	// Len returns the number of live sessions.
	Len() int
}
