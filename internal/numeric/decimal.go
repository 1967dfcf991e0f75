// Package numeric provides an exact decimal type for money and volume values.
//
// Values are never converted through binary floats: JSON numbers are parsed from
// their literal text, and every value is rendered back as a string with its scale preserved.
package numeric

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrParse          = errors.New("invalid decimal")
	ErrOutOfRange     = errors.New("decimal out of range")
	ErrDivisionByZero = errors.New("decimal division by zero")
)

// Limits for parsed values. A product of two such values still fits
// PostgreSQL NUMERIC (131072 integer digits, 16383 fractional digits)
const (
	maxScale         = 8000
	maxIntegerDigits = 65000
)

type Decimal struct {
	d decimal.Decimal
}

var Zero = Decimal{}

func NewFromInt(v int64) Decimal {
	return Decimal{d: decimal.NewFromInt(v)}
}

// Parse text like "12.500", "-3" or "1e3"
func Parse(s string) (Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Decimal{}, fmt.Errorf("%w: %q", ErrParse, s)
	}

	v := Decimal{d: d}
	if v.Scale() > maxScale || v.integerDigits() > maxIntegerDigits {
		return Decimal{}, fmt.Errorf("%w: %q", ErrOutOfRange, s)
	}
	return v, nil
}

// MustParse is Parse that panics. Use it for constants and tests only
func MustParse(s string) Decimal {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Decimal) Add(o Decimal) Decimal { return Decimal{d: d.d.Add(o.d)} }
func (d Decimal) Sub(o Decimal) Decimal { return Decimal{d: d.d.Sub(o.d)} }
func (d Decimal) Mul(o Decimal) Decimal { return Decimal{d: d.d.Mul(o.d)} }

// Div divides and rounds the result to places decimal places
func (d Decimal) Div(o Decimal, places int32) (Decimal, error) {
	if o.d.IsZero() {
		return Decimal{}, ErrDivisionByZero
	}
	return Decimal{d: d.d.DivRound(o.d, places)}, nil
}

func (d Decimal) Cmp(o Decimal) int { return d.d.Cmp(o.d) }
func (d Decimal) Equal(o Decimal) bool { return d.d.Equal(o.d) }
func (d Decimal) IsPositive() bool { return d.d.IsPositive() }
func (d Decimal) IsZero() bool { return d.d.IsZero() }
func (d Decimal) Scale() int32 { return max(-d.d.Exponent(), 0) }

func (d Decimal) integerDigits() int64 {
	coefficient := d.d.Coefficient()
	digits := int64(len(coefficient.Text(10)))
	if coefficient.Sign() < 0 {
		digits--
	}
	return max(digits+int64(d.d.Exponent()), 0)
}
func (d Decimal) Float64() (float64, bool) { return d.d.Float64() }

// TrimToScale strips trailing fractional zeros but keeps at least minScale digits.
// The numeric value never changes: 105000.000 -> 105000.00, 13333.32667 stays as is.
func (d Decimal) TrimToScale(minScale int32) Decimal {
	scale := d.Scale()
	for scale > minScale && d.d.Round(scale-1).Equal(d.d) {
		scale--
	}
	if scale < minScale {
		scale = minScale
	}
	return Decimal{d: d.d.Round(scale)}
}

// String returns the exact representation with scale preserved: "12.500" stays "12.500"
func (d Decimal) String() string {
	if d.d.Exponent() < 0 {
		return d.d.StringFixed(-d.d.Exponent())
	}
	return d.d.String()
}

// MarshalJSON always emits a JSON string
func (d Decimal) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON accepts either a JSON string ("10.5") or a JSON number literal (10.5)
func (d *Decimal) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	var text string
	switch {
	case len(data) > 0 && data[0] == '"':
		if err := json.Unmarshal(data, &text); err != nil {
			return fmt.Errorf("%w: %v", ErrParse, err)
		}
	case len(data) > 0 && (data[0] == '-' || (data[0] >= '0' && data[0] <= '9')):
		text = string(data)
	default:
		return fmt.Errorf("%w: expected string or number, got %s", ErrParse, data)
	}

	parsed, err := Parse(text)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Scan implements sql.Scanner so values may be read from NUMERIC columns
func (d *Decimal) Scan(src any) error {
	if src == nil {
		return fmt.Errorf("%w: NULL", ErrParse)
	}
	if err := d.d.Scan(src); err != nil {
		return fmt.Errorf("%w: %v", ErrParse, err)
	}
	return nil
}

// Value implements driver.Valuer, numbers are sent as text to keep them exact
func (d Decimal) Value() (driver.Value, error) {
	return d.String(), nil
}
