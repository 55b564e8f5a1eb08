package storage

import (
	"sync"

	"github.com/calen/phototagger/internal/domain"
)

// MemoryStore is the in-process SessionStore implementation. A plain
// mutex-guarded map is enough: sessions are touched by one user action at a
// time and the store never outlives the process.
type MemoryStore struct {
	sessions map[string]*domain.Session
	mu       sync.RWMutex
}

// NewMemoryStore creates an empty session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*domain.Session),
	}
}

func (s *MemoryStore) Get(id string) (*domain.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

func (s *MemoryStore) Set(id string, sess *domain.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = sess
}

func (s *MemoryStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
