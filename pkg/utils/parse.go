// Package utils holds small helpers shared across FinHarvest: lenient
// numeric parsing for statement amounts, file name sanitizing, HTML
// cleanup, and KST time helpers.
package utils

import (
	"strconv"
	"strings"
)

// ParseAmount parses a statement amount as reported by the disclosure
// API. Amounts may carry thousands separators, wrap negatives in
// parentheses, or be one of several "no value" placeholders. Returns
// nil when the input carries no numeric value.
func ParseAmount(s string) *float64 {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return nil
	}
	switch strings.ToLower(s) {
	case "nan", "none", "null", "-":
		return nil
	}
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		s = "-" + s[1:len(s)-1]
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}
