package portal

import (
	"fmt"
	"strconv"
)

// Number is a numeric portal value that is either an integer or a
// float, never silently coerced between the two.
type Number struct {
	isFloat bool
	i       int64
	f       float64
}

// IntNumber wraps an integer value.
func IntNumber(v int64) Number { return Number{i: v} }

// FloatNumber wraps a floating-point value.
func FloatNumber(v float64) Number { return Number{isFloat: true, f: v} }

// IsInt reports whether the value is an integer.
func (n Number) IsInt() bool { return !n.isFloat }

// Int returns the integer value. Valid only when IsInt.
func (n Number) Int() int64 { return n.i }

// Float returns the value as a float64, converting an integer value.
func (n Number) Float() float64 {
	if n.isFloat {
		return n.f
	}
	return float64(n.i)
}

func (n Number) String() string {
	if n.isFloat {
		return strconv.FormatFloat(n.f, 'g', -1, 64)
	}
	return strconv.FormatInt(n.i, 10)
}

// MarshalJSON renders the value as a bare JSON number, preserving the
// int/float distinction.
func (n Number) MarshalJSON() ([]byte, error) {
	return []byte(n.String()), nil
}

// ParseNumber parses a portal numeric string: an integer literal parses
// as an integer, anything else that is a valid floating literal parses
// as a float, and everything else is an error.
func ParseNumber(s string) (Number, error) {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return IntNumber(i), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Number{}, fmt.Errorf("not a number: %q", s)
	}
	return FloatNumber(f), nil
}
