package engine

import (
	"fmt"
	"sync"
	"time"
)

// Timings tracks timing totals for the stages of one processor instance
type Timings struct {
	mu sync.Mutex

	// Path evaluation
	EvaluateTotal time.Duration
	EvaluateCount int64

	// Field binding (transformation included)
	BindTotal time.Duration
	BindCount int64

	// Persistence boundary calls
	PersistTotal time.Duration
	PersistCount int64
}

// NewTimings creates a new Timings instance
func NewTimings() *Timings {
	return &Timings{}
}

// ObserveEvaluate records a path-evaluation duration
func (t *Timings) ObserveEvaluate(d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.EvaluateTotal += d
	t.EvaluateCount++
}

// ObserveBind records a field-bind duration
func (t *Timings) ObserveBind(d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.BindTotal += d
	t.BindCount++
}

// ObservePersist records a persistence-call duration
func (t *Timings) ObservePersist(d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.PersistTotal += d
	t.PersistCount++
}

// String returns a formatted summary of all timings
func (t *Timings) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	var result string

	if t.EvaluateCount > 0 {
		avg := t.EvaluateTotal / time.Duration(t.EvaluateCount)
		result += fmt.Sprintf("Evaluate: total=%v count=%d avg=%v; ", t.EvaluateTotal, t.EvaluateCount, avg)
	}
	if t.BindCount > 0 {
		avg := t.BindTotal / time.Duration(t.BindCount)
		result += fmt.Sprintf("Bind: total=%v count=%d avg=%v; ", t.BindTotal, t.BindCount, avg)
	}
	if t.PersistCount > 0 {
		avg := t.PersistTotal / time.Duration(t.PersistCount)
		result += fmt.Sprintf("Persist: total=%v count=%d avg=%v; ", t.PersistTotal, t.PersistCount, avg)
	}

	if result == "" {
		return "No timings recorded"
	}
	return result[:len(result)-2]
}
