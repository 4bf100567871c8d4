// Package core provides the expense domain model shared by every layer.
//
// This file contains amount parsing for the entry flow. Amounts are
// currency-agnostic positive decimals; parsing accepts both dot and
// comma separators and rejects signs, exponents, and anything that is
// not a plain decimal.
package core

import (
	"strconv"
	"strings"
	"unicode"
)

// ParseAmount converts user-entered decimal text to a positive amount.
//
// Examples:
//
//	ParseAmount("12.34") -> 12.34, nil
//	ParseAmount("12,34") -> 12.34, nil
//	ParseAmount("-5")    -> 0, ErrInvalidAmount
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	if strings.Count(s, ".") > 1 {
		return 0, ErrInvalidAmount
	}
	for _, r := range s {
		if !unicode.IsDigit(r) && r != '.' {
			return 0, ErrInvalidAmount
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	if v <= 0 {
		return 0, ErrInvalidAmount
	}
	return v, nil
}

// AmountInputOK reports whether partial amount input may be accepted by
// the entry form. Unlike ParseAmount it tolerates incomplete values
// such as "12." or "" while the user is still typing.
func AmountInputOK(s string) bool {
	dots := 0
	for _, r := range s {
		switch {
		case unicode.IsDigit(r):
		case r == '.':
			dots++
			if dots > 1 {
				return false
			}
		default:
			return false
		}
	}
	return true
}
