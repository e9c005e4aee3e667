package result

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/mehdihou95/middleware-mapper/internal/mapping"
)

// ErrQueueFull is returned when the pending-document queue is full
var ErrQueueFull = errors.New("queue is full")

// Task is one queued document waiting for a worker. The raw payload is
// carried so parsing happens on the worker, not the request handler.
type Task struct {
	ResultID  string
	ClientID  string
	Interface mapping.Interface
	FileName  string
	Encoding  string
	Payload   []byte
}

// Store keeps processing results in memory and feeds queued documents to
// the worker loop
type Store struct {
	mu      sync.RWMutex
	results map[string]*ProcessingResult
	queue   chan *Task
}

// NewStore creates a store with the given queue capacity
func NewStore(queueSize int) *Store {
	if queueSize <= 0 {
		queueSize = 1000
	}
	return &Store{
		results: make(map[string]*ProcessingResult),
		queue:   make(chan *Task, queueSize),
	}
}

// Create assigns the result an ID and stores it
func (s *Store) Create(r *ProcessingResult) string {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	s.mu.Lock()
	s.results[r.ID] = r
	s.mu.Unlock()
	return r.ID
}

// Submit stores the result and queues the raw document for processing.
// Returns ErrQueueFull without storing when the queue is full.
func (s *Store) Submit(r *ProcessingResult, payload []byte, encoding string) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	task := &Task{
		ResultID:  r.ID,
		ClientID:  r.ClientID,
		Interface: mapping.Interface{ID: r.InterfaceID, DocType: r.DocType},
		FileName:  r.FileName,
		Encoding:  encoding,
		Payload:   payload,
	}

	select {
	case s.queue <- task:
		s.mu.Lock()
		s.results[r.ID] = r
		s.mu.Unlock()
		return nil
	default:
		return ErrQueueFull
	}
}

// Get retrieves a result by ID
func (s *Store) Get(id string) (*ProcessingResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.results[id]
	if !ok {
		return nil, fmt.Errorf("result not found: %s", id)
	}
	return r, nil
}

// List returns all results, newest first
func (s *Store) List() []*ProcessingResult {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*ProcessingResult, 0, len(s.results))
	for _, r := range s.results {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// Record upserts a result; it is the engine's result-recorder boundary
func (s *Store) Record(ctx context.Context, r *ProcessingResult) error {
	s.Create(r)
	return nil
}

// NextTask blocks until a task is queued or the context is canceled
func (s *Store) NextTask(ctx context.Context) (*Task, error) {
	select {
	case task := <-s.queue:
		return task, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
