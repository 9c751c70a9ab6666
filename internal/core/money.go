// Package core provides money parsing and handling utilities.
//
// Amounts are held as integer cents. shopspring/decimal is used only at the
// edges (parsing caller input, rendering, ratio math) so that no binary
// floating point value ever reaches a stored amount.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Money is a currency amount in cents.
type Money struct {
	Cents int64
}

var (
	hundred  = decimal.NewFromInt(100)
	maxMoney = decimal.New(1<<63-1, -2)
)

// Cents builds a Money from an integer number of cents.
func Cents(c int64) Money {
	return Money{Cents: c}
}

// ParseMoney converts a decimal string to Money with half-up rounding to cents.
//
// Both dot (12.34) and comma (12,34) decimal separators are accepted. The
// result must be strictly positive.
//
// Examples:
//
//	ParseMoney("12.34")  -> 1234 cents
//	ParseMoney("12,345") -> 1235 cents (rounds up)
//	ParseMoney("0.004")  -> error (rounds to zero)
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	m, err := MoneyFromDecimal(d)
	if err != nil {
		return Money{}, err
	}
	if err := m.Validate(); err != nil {
		return Money{}, err
	}
	return m, nil
}

// MoneyFromDecimal rounds d half-up to cents. The sign is preserved; callers
// enforce positivity with Validate.
func MoneyFromDecimal(d decimal.Decimal) (Money, error) {
	r := d.Round(2)
	if r.Abs().GreaterThan(maxMoney) {
		return Money{}, ErrInvalidAmount
	}
	return Money{Cents: r.Mul(hundred).IntPart()}, nil
}

// Validate enforces amount > 0.
func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Decimal returns the exact decimal value of m.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// String renders m with exactly two fractional digits, e.g. "52.50".
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

func (m Money) Add(o Money) Money { return Money{Cents: m.Cents + o.Cents} }

func (m Money) Sub(o Money) Money { return Money{Cents: m.Cents - o.Cents} }

func (m Money) IsZero() bool { return m.Cents == 0 }

// MarshalJSON encodes m as a quoted decimal string so clients never see a
// binary float.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

// UnmarshalJSON accepts either a quoted decimal string or a bare JSON number.
func (m *Money) UnmarshalJSON(b []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(b); err != nil {
		return &ValidationError{Field: "amount", Reason: "must be a decimal value"}
	}
	parsed, err := MoneyFromDecimal(d)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
