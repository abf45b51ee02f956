package sanitize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	fullDateRe     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	yearMonthRe    = regexp.MustCompile(`^(\d{4})-(\d{2})$`)
	yearRe         = regexp.MustCompile(`^\d{4}$`)
	longDecadeRe   = regexp.MustCompile(`(\d{4})'?s\b`)
	shortDecadeRe  = regexp.MustCompile(`(\d{2})'?s\b`)
	bareTwoDigitRe = regexp.MustCompile(`^'?(\d{2})$`)
)

// NormalizeDate expands an extracted date to YYYY-MM-DD or returns nil.
// Two-digit decades at or above cutoff are placed in the 1900s, the rest in
// the 2000s.
func NormalizeDate(raw string, cutoff int) *string {
	v := strings.TrimSpace(raw)

	switch {
	case fullDateRe.MatchString(v):
		if _, err := time.Parse("2006-01-02", v); err != nil || !validYear(v[:4]) {
			return nil
		}
		return &v

	case yearMonthRe.MatchString(v):
		m := yearMonthRe.FindStringSubmatch(v)
		month, _ := strconv.Atoi(m[2])
		if month < 1 || month > 12 || !validYear(v[:4]) {
			return nil
		}
		out := v + "-01"
		return &out

	case yearRe.MatchString(v):
		if !validYear(v) {
			return nil
		}
		out := v + "-01-01"
		return &out
	}

	if m := longDecadeRe.FindStringSubmatch(v); m != nil {
		if !validYear(m[1]) {
			return nil
		}
		out := m[1] + "-01-01"
		return &out
	}
	if m := shortDecadeRe.FindStringSubmatch(v); m != nil {
		return twoDigitYear(m[1], cutoff)
	}
	if m := bareTwoDigitRe.FindStringSubmatch(v); m != nil {
		return twoDigitYear(m[1], cutoff)
	}
	return nil
}

// validYear rejects year zero
func validYear(digits string) bool {
	y, err := strconv.Atoi(digits)
	return err == nil && y >= 1
}

func twoDigitYear(digits string, cutoff int) *string {
	n, err := strconv.Atoi(digits)
	if err != nil {
		return nil
	}
	century := 20
	if n >= cutoff {
		century = 19
	}
	out := fmt.Sprintf("%d%02d-01-01", century, n)
	return &out
}
