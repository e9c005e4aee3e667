package record

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mehdihou95/middleware-mapper/internal/mapping"
	"github.com/mehdihou95/middleware-mapper/internal/transform"
)

// ErrNoField is the cause when a rule targets a field the record type does
// not register
var ErrNoField = errors.New("record has no matching field")

// ErrRequiredEmpty is the cause when a required rule produced no value
var ErrRequiredEmpty = errors.New("required field has no value")

// BindingError reports a failed field bind with the rule that drove it
type BindingError struct {
	Field string
	Rule  mapping.Rule
	Err   error
}

func (e *BindingError) Error() string {
	return fmt.Sprintf("bind field %s: %v", e.Field, e.Err)
}

func (e *BindingError) Unwrap() error {
	return e.Err
}

// Bind transforms a raw value through the rule's chain and assigns it to the
// record's matching field. An empty raw value falls back to the rule's
// default; when neither produces a value, required rules fail and optional
// rules are a no-op.
func Bind(rec Target, rule mapping.Rule, raw string) error {
	typ, ok := rec.FieldType(rule.TargetField)
	if !ok {
		return &BindingError{Field: rule.TargetField, Rule: rule, Err: ErrNoField}
	}

	value := raw
	if strings.TrimSpace(value) == "" {
		value = rule.DefaultValue
	}

	converted, present, err := transform.TransformAndConvert(value, rule.Transformation, typ)
	if err != nil {
		return &BindingError{Field: rule.TargetField, Rule: rule, Err: err}
	}
	if !present {
		if rule.Required {
			return &BindingError{Field: rule.TargetField, Rule: rule, Err: ErrRequiredEmpty}
		}
		return nil
	}

	if err := rec.Apply(rule.TargetField, converted); err != nil {
		return &BindingError{Field: rule.TargetField, Rule: rule, Err: err}
	}
	return nil
}
