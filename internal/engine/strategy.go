package engine

import (
	"sync"

	"github.com/mehdihou95/middleware-mapper/internal/record"
)

// Document type tags selecting a strategy
const (
	DocTypeASN   = "ASN"
	DocTypeOrder = "ORDER"
)

// Strategy supplies the per-document-type pieces the processor needs:
// destination table names and record constructors. The state machine itself
// is shared; only record shapes differ per type.
type Strategy interface {
	DocType() string
	HeaderTable() string
	LineTables() []string
	NewHeader(clientID string) record.Header
	NewLine(table string) record.Line
}

// Registry maps document-type tags to strategies
type Registry struct {
	mu         sync.RWMutex
	strategies map[string]Strategy
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{strategies: make(map[string]Strategy)}
}

// Register adds a strategy under its document-type tag
func (r *Registry) Register(s Strategy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.strategies[s.DocType()] = s
}

// Get looks up the strategy for a document-type tag
func (r *Registry) Get(docType string) (Strategy, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.strategies[docType]
	return s, ok
}

// DefaultRegistry returns a registry with all built-in strategies
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(ASNStrategy{})
	r.Register(OrderStrategy{})
	return r
}

// ASNStrategy maps advance shipment notice documents
type ASNStrategy struct{}

// DocType returns the strategy's document-type tag
func (ASNStrategy) DocType() string { return DocTypeASN }

// HeaderTable returns the destination header table
func (ASNStrategy) HeaderTable() string { return record.TableASNHeader }

// LineTables returns the destination line tables
func (ASNStrategy) LineTables() []string { return []string{record.TableASNLine} }

// NewHeader constructs a defaulted ASN header
func (ASNStrategy) NewHeader(clientID string) record.Header { return record.NewASNHeader(clientID) }

// NewLine constructs a defaulted ASN line
func (ASNStrategy) NewLine(string) record.Line { return record.NewASNLine() }

// OrderStrategy maps customer order documents
type OrderStrategy struct{}

// DocType returns the strategy's document-type tag
func (OrderStrategy) DocType() string { return DocTypeOrder }

// HeaderTable returns the destination header table
func (OrderStrategy) HeaderTable() string { return record.TableOrderHeader }

// LineTables returns the destination line tables
func (OrderStrategy) LineTables() []string { return []string{record.TableOrderLine} }

// NewHeader constructs a defaulted order header
func (OrderStrategy) NewHeader(clientID string) record.Header { return record.NewOrderHeader(clientID) }

// NewLine constructs a defaulted order line
func (OrderStrategy) NewLine(string) record.Line { return record.NewOrderLine() }
