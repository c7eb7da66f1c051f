// Package core provides money parsing and handling utilities.
//
// Amounts are kept as arbitrary-precision decimals so that values read from
// storage or the wire survive unchanged until the reward formula truncates
// them to whole currency units.
package core

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is a non-negative monetary amount in the shop currency.
type Money struct {
	decimal.Decimal
}

var ErrInvalidAmount = errors.New("invalid amount")

// MaxAmount is the largest accepted amount. Points for it still fit in an
// int64, as does its whole-unit part.
var MaxAmount = decimal.New(1, 15)

// ParseMoney converts a decimal string to Money.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators.
// Negative values and values above MaxAmount are rejected; zero is allowed.
//
// Examples:
//
//	ParseMoney("120")    -> 120, nil
//	ParseMoney("75,50")  -> 75.5, nil
//	ParseMoney("-1")     -> error
//	ParseMoney("1e25")   -> error
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
	m := Money{Decimal: d}
	if err := m.Validate(); err != nil {
		return Money{}, err
	}
	return m, nil
}

// MoneyFromInt returns a whole-unit amount.
func MoneyFromInt(units int64) Money {
	return Money{Decimal: decimal.NewFromInt(units)}
}

func (m Money) Validate() error {
	if m.IsNegative() || m.GreaterThan(MaxAmount) {
		return ErrInvalidAmount
	}
	return nil
}

// WholeUnits drops the fractional part toward zero (120.99 -> 120).
func (m Money) WholeUnits() int64 {
	return m.IntPart()
}
