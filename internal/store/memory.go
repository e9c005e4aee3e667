package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/mehdihou95/middleware-mapper/internal/record"
)

// MemoryStore is an in-memory persistence boundary, used by tests and by
// deployments that only need the delivery endpoint downstream
type MemoryStore struct {
	mu      sync.RWMutex
	headers map[string]record.Header
	lines   map[string][]record.Line
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		headers: make(map[string]record.Header),
		lines:   make(map[string][]record.Line),
	}
}

// PersistHeader stores the header and returns its assigned identity
func (s *MemoryStore) PersistHeader(ctx context.Context, h record.Header) (string, error) {
	id := uuid.New().String()
	h.SetID(id)

	s.mu.Lock()
	s.headers[id] = h
	s.mu.Unlock()
	return id, nil
}

// PersistLines stores the batch, keyed by each line's owning header
func (s *MemoryStore) PersistLines(ctx context.Context, lines []record.Line) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, l := range lines {
		headerID, _ := l.Document()["header_id"].(string)
		s.lines[headerID] = append(s.lines[headerID], l)
	}
	return nil
}

// HeaderCount returns the number of persisted headers
func (s *MemoryStore) HeaderCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.headers)
}

// Header returns a persisted header by identity
func (s *MemoryStore) Header(id string) (record.Header, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.headers[id]
	return h, ok
}

// LinesFor returns the persisted lines owned by a header
func (s *MemoryStore) LinesFor(headerID string) []record.Line {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lines[headerID]
}
