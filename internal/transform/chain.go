package transform

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Type is the target type a transformation chain finally converts into
type Type string

const (
	TypeString  Type = "string"
	TypeInt     Type = "int"
	TypeDecimal Type = "decimal"
	TypeBool    Type = "bool"
	TypeDate    Type = "date"
)

// Error reports a chain operation that was inapplicable to the current
// string shape, or a final type-parse failure
type Error struct {
	Raw    string
	Op     string
	Target Type
	Err    error
}

func (e *Error) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("transform %q: operation %s: %v", e.Raw, e.Op, e.Err)
	}
	return fmt.Sprintf("transform %q to %s: %v", e.Raw, e.Target, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Decimal places rendered by the numeric formatting operations
const (
	integerPlaces  = 0
	currencyPlaces = 2
	decimalPlaces  = 3
)

// TransformAndConvert applies the pipe-delimited operation chain to raw,
// strictly left to right on the string representation, then parses the final
// string into target. Operation order is the rule author's responsibility.
// An empty or whitespace-only raw value short-circuits to ok=false without
// running the chain.
func TransformAndConvert(raw, chainSpec string, target Type) (interface{}, bool, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, false, nil
	}

	if chainSpec != "" {
		for _, op := range strings.Split(chainSpec, "|") {
			op = strings.TrimSpace(op)
			if op == "" {
				continue
			}
			out, err := applyOp(value, op)
			if err != nil {
				return nil, false, &Error{Raw: raw, Op: op, Target: target, Err: err}
			}
			value = out
		}
	}

	converted, err := convert(value, target)
	if err != nil {
		return nil, false, &Error{Raw: raw, Target: target, Err: err}
	}
	return converted, true, nil
}

// applyOp runs one named operation. Operations taking an argument use a
// colon separator, e.g. "decimal_format:4" or "date_format:YYYY-MM-DD".
func applyOp(value, op string) (string, error) {
	name := op
	arg := ""
	if idx := strings.Index(op, ":"); idx >= 0 {
		name = op[:idx]
		arg = op[idx+1:]
	}

	switch name {
	case "uppercase":
		return strings.ToUpper(value), nil

	case "lowercase":
		return strings.ToLower(value), nil

	case "trim":
		return strings.TrimSpace(value), nil

	case "remove_leading_zeros":
		return removeLeadingZeros(value), nil

	case "date_format":
		layout := "YYYY-MM-DD"
		if arg != "" {
			layout = arg
		}
		date, err := parseDate(value)
		if err != nil {
			return "", err
		}
		return date.Format(goLayout(layout)), nil

	case "integer_format":
		return formatDecimal(value, integerPlaces)

	case "currency_format":
		return formatDecimal(value, currencyPlaces)

	case "decimal_format":
		places := decimalPlaces
		if arg != "" {
			n, err := strconv.Atoi(arg)
			if err != nil || n < 0 {
				return "", fmt.Errorf("invalid decimal places %q", arg)
			}
			places = n
		}
		return formatDecimal(value, places)

	default:
		return "", fmt.Errorf("unknown operation")
	}
}

// removeLeadingZeros strips leading zeros while keeping a single zero before
// a decimal point and never emptying the value
func removeLeadingZeros(value string) string {
	stripped := strings.TrimLeft(value, "0")
	if stripped == "" {
		return "0"
	}
	if stripped[0] == '.' {
		return "0" + stripped
	}
	return stripped
}

// formatDecimal renders a numeric string with a fixed decimal-place count.
// The input must be a canonical numeric string: zero-padded values must go
// through remove_leading_zeros first, the reverse order is not defined.
func formatDecimal(value string, places int) (string, error) {
	if len(value) > 1 && value[0] == '0' && value[1] != '.' {
		return "", fmt.Errorf("value has leading zeros, strip them before formatting")
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return "", fmt.Errorf("not a numeric value: %w", err)
	}
	return d.StringFixed(int32(places)), nil
}

// convert parses the fully transformed string into the target type
func convert(value string, target Type) (interface{}, error) {
	switch target {
	case TypeString:
		return value, nil

	case TypeInt:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid int: %w", err)
		}
		return n, nil

	case TypeDecimal:
		d, err := decimal.NewFromString(value)
		if err != nil {
			return nil, fmt.Errorf("invalid decimal: %w", err)
		}
		return d, nil

	case TypeBool:
		switch strings.ToLower(value) {
		case "true", "1", "y", "yes":
			return true, nil
		case "false", "0", "n", "no":
			return false, nil
		}
		return nil, fmt.Errorf("invalid bool %q", value)

	case TypeDate:
		date, err := parseDate(value)
		if err != nil {
			return nil, err
		}
		return date, nil

	default:
		return nil, fmt.Errorf("unknown target type %q", target)
	}
}
