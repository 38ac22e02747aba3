// Package money provides a fixed-point monetary amount in minor units
// (cents). All arithmetic and comparison in the audit engine happens on
// minor units so that no floating-point rounding can leak into a verdict.
package money

import (
	"fmt"
	"strconv"
	"strings"
)

// Money is an amount in minor units (cents). The currency is tracked on the
// document, not the amount; one document never mixes currencies.
type Money int64

// FromMinor builds a Money from an amount in minor units.
func FromMinor(minor int64) Money {
	return Money(minor)
}

// FromMajor builds a Money from whole major units (e.g. euros).
func FromMajor(major int64) Money {
	return Money(major * 100)
}

// Minor returns the amount in minor units.
func (m Money) Minor() int64 {
	return int64(m)
}

// Add returns m + o.
func (m Money) Add(o Money) Money {
	return m + o
}

// Sub returns m - o.
func (m Money) Sub(o Money) Money {
	return m - o
}

// Abs returns the absolute amount.
func (m Money) Abs() Money {
	if m < 0 {
		return -m
	}
	return m
}

// Cmp returns -1, 0, or 1 comparing m against o.
func (m Money) Cmp(o Money) int {
	switch {
	case m < o:
		return -1
	case m > o:
		return 1
	default:
		return 0
	}
}

// String formats the amount as a decimal string, e.g. "123.45" or "-0.07".
func (m Money) String() string {
	minor := int64(m)
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	return fmt.Sprintf("%s%d.%02d", sign, minor/100, minor%100)
}

// Parse converts a decimal amount string into Money. Both "." and "," are
// accepted as the decimal separator; thousands separators and currency
// symbols commonly left in by extraction ("€ 1.234,56") are stripped.
func Parse(s string) (Money, error) {
	cleaned := strings.TrimSpace(s)
	cleaned = strings.TrimLeft(cleaned, "€$£ ")
	cleaned = strings.TrimSpace(cleaned)
	if !strings.ContainsAny(cleaned, "0123456789") {
		return 0, fmt.Errorf("money: no digits in amount %q", s)
	}

	neg := false
	if strings.HasPrefix(cleaned, "-") {
		neg = true
		cleaned = cleaned[1:]
	}

	intPart, fracPart := splitDecimal(cleaned)
	intPart = strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, intPart)
	if intPart == "" {
		intPart = "0"
	}

	major, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("money: invalid amount %q", s)
	}

	var minor int64
	switch len(fracPart) {
	case 0:
		minor = 0
	case 1:
		d, err := strconv.ParseInt(fracPart, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("money: invalid amount %q", s)
		}
		minor = d * 10
	case 2:
		d, err := strconv.ParseInt(fracPart, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("money: invalid amount %q", s)
		}
		minor = d
	default:
		return 0, fmt.Errorf("money: invalid amount %q", s)
	}

	total := major*100 + minor
	if neg {
		total = -total
	}
	return Money(total), nil
}

// splitDecimal separates the integer and fractional parts. The last "." or
// "," is the decimal separator only when followed by one or two digits;
// otherwise the whole string is treated as an integer amount with
// thousands separators.
func splitDecimal(s string) (intPart, fracPart string) {
	idx := strings.LastIndexAny(s, ".,")
	if idx < 0 {
		return s, ""
	}
	frac := s[idx+1:]
	if len(frac) >= 1 && len(frac) <= 2 && isDigits(frac) {
		return s[:idx], frac
	}
	return s, ""
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Ptr returns a pointer to m; extraction records model absent amounts as
// nil pointers.
func (m Money) Ptr() *Money {
	return &m
}
