package engine

import (
	"context"

	"github.com/mehdihou95/middleware-mapper/internal/mapping"
	"github.com/mehdihou95/middleware-mapper/internal/record"
	"github.com/mehdihou95/middleware-mapper/internal/result"
)

// Store is the external persistence boundary. Implementations own their
// transaction and retry discipline; the engine only sees opaque errors.
type Store interface {
	// PersistHeader durably creates the header and returns its assigned
	// identity. Lines reference this identity, so it must be called before
	// any line is persisted.
	PersistHeader(ctx context.Context, h record.Header) (string, error)

	// PersistLines persists the collected lines as one batch
	PersistLines(ctx context.Context, lines []record.Line) error
}

// RuleSource supplies the mapping-rule set for one interface and table,
// already scoped to the right client by the caller's tenant layer
type RuleSource interface {
	ResolveMappingRules(ctx context.Context, interfaceID, tableName string) ([]mapping.Rule, error)
}

// RuleSourceFunc adapts a function to the RuleSource interface
type RuleSourceFunc func(ctx context.Context, interfaceID, tableName string) ([]mapping.Rule, error)

// ResolveMappingRules calls f
func (f RuleSourceFunc) ResolveMappingRules(ctx context.Context, interfaceID, tableName string) ([]mapping.Rule, error) {
	return f(ctx, interfaceID, tableName)
}

// ResultRecorder records processing results at the start of an attempt and
// once at its terminal state
type ResultRecorder interface {
	Record(ctx context.Context, r *result.ProcessingResult) error
}
