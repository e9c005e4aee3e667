package record

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mehdihou95/middleware-mapper/internal/transform"
)

// Target is any record that can accept a named field value. Both headers
// and lines satisfy it; the field binder needs nothing more.
type Target interface {
	Apply(field string, value interface{}) error
	FieldType(field string) (transform.Type, bool)
}

// Setter couples a field's target type with its typed assignment closure
type Setter struct {
	Type   transform.Type
	Assign func(target, value interface{}) error
}

// Schema maps canonical field names to setters for one record type. Tables
// are built once per type at package init, so a missing field is a lookup
// miss rather than a runtime reflection failure.
type Schema map[string]Setter

// FieldType returns the target type registered for a field name
func (s Schema) FieldType(field string) (transform.Type, bool) {
	setter, ok := s[CanonicalField(field)]
	if !ok {
		return "", false
	}
	return setter.Type, true
}

// Apply assigns a typed value to the named field on target
func (s Schema) Apply(target interface{}, field string, value interface{}) error {
	setter, ok := s[CanonicalField(field)]
	if !ok {
		return fmt.Errorf("no field %q", field)
	}
	return setter.Assign(target, value)
}

// CanonicalField normalizes a configured field name for lookup: rule authors
// may write database-style names (SUPPLIER_CODE) or camel case
// (supplierCode); both resolve to the same setter.
func CanonicalField(name string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), "_", ""))
}

func asString(v interface{}) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("expected string, got %T", v)
	}
	return s, nil
}

func asInt(v interface{}) (int64, error) {
	n, ok := v.(int64)
	if !ok {
		return 0, fmt.Errorf("expected int, got %T", v)
	}
	return n, nil
}

func asDecimal(v interface{}) (decimal.Decimal, error) {
	d, ok := v.(decimal.Decimal)
	if !ok {
		return decimal.Decimal{}, fmt.Errorf("expected decimal, got %T", v)
	}
	return d, nil
}

func asBool(v interface{}) (bool, error) {
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("expected bool, got %T", v)
	}
	return b, nil
}

func asTime(v interface{}) (time.Time, error) {
	t, ok := v.(time.Time)
	if !ok {
		return time.Time{}, fmt.Errorf("expected date, got %T", v)
	}
	return t, nil
}

// docTime renders a timestamp for persistence documents, empty when unset
func docTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
