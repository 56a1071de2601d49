package model

import (
	"math"
	"strconv"
	"strings"
)

var magnitudes = map[byte]float64{
	'k': 1e3,
	'm': 1e6,
	'b': 1e9,
	't': 1e12,
}

// ParseMetricValue extracts a number from a free-form metric value such as
// "$150.20", "25.4x", "12%", "1,204.5", "$2.1T" or "(3.4)". It never panics;
// ok is false for anything it cannot read ("N/A", "-", words).
func ParseMetricValue(value string) (n float64, ok bool) {
	s := strings.TrimSpace(value)
	if s == "" {
		return 0, false
	}
	switch strings.ToLower(s) {
	case "n/a", "na", "-", "--", "—", "none", "null":
		return 0, false
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	if strings.HasPrefix(s, "-") {
		negative = !negative
		s = s[1:]
	} else {
		s = strings.TrimPrefix(s, "+")
	}

	for _, sym := range []string{"US$", "$", "€", "£", "¥", "₹"} {
		s = strings.TrimPrefix(s, sym)
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.TrimSuffix(s, "%")
	s = strings.TrimRight(s, "xX")

	scale := 1.0
	if len(s) > 1 {
		if m, found := magnitudes[lower(s[len(s)-1])]; found {
			scale = m
			s = s[:len(s)-1]
		}
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	f *= scale
	if negative {
		f = -f
	}
	return f, true
}

func lower(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}
