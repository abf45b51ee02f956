package sanitize

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var (
	clockRe    = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)
	meridiemRe = regexp.MustCompile(`^(?:(?:around|about|at|approximately|maybe)\s+)?(\d{1,2})(?::(\d{2}))?\s*(am|pm|a\.m\.?|p\.m\.?)`)
	dayPartRe  = regexp.MustCompile(`\b(\d{1,2})(?::(\d{2}))?(?:\s*o'?clock)?\s+(?:in the|at)\s+(morning|afternoon|evening|night)\b`)
)

// timeWordsByLength lists timeWords keys longest first so that
// "late afternoon" wins over "afternoon" in substring matching.
var timeWordsByLength = func() []string {
	keys := make([]string, 0, len(timeWords))
	for k := range timeWords {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys
}()

// NormalizeTime converts an extracted time to zero-padded 24h HH:MM or nil.
func NormalizeTime(raw string) *string {
	v := strings.ToLower(strings.TrimSpace(raw))
	if v == "" {
		return nil
	}

	if m := clockRe.FindStringSubmatch(v); m != nil {
		h, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		return clock(h, minute)
	}

	if hhmm, ok := timeWords[v]; ok {
		return &hhmm
	}

	if m := dayPartRe.FindStringSubmatch(v); m != nil {
		h, _ := strconv.Atoi(m[1])
		minute := 0
		if m[2] != "" {
			minute, _ = strconv.Atoi(m[2])
		}
		if h < 1 || h > 12 {
			return nil
		}
		return clock(dayPartHour(h, m[3]), minute)
	}

	if m := meridiemRe.FindStringSubmatch(v); m != nil {
		h, _ := strconv.Atoi(m[1])
		minute := 0
		if m[2] != "" {
			minute, _ = strconv.Atoi(m[2])
		}
		if h < 1 || h > 12 {
			return nil
		}
		pm := strings.HasPrefix(m[3], "p")
		switch {
		case pm && h != 12:
			h += 12
		case !pm && h == 12:
			h = 0
		}
		return clock(h, minute)
	}

	for _, word := range timeWordsByLength {
		if strings.Contains(v, word) {
			hhmm := timeWords[word]
			return &hhmm
		}
	}
	return nil
}

// dayPartHour converts a 12h hour qualified by a part of the day.
func dayPartHour(h int, part string) int {
	switch part {
	case "morning":
		if h == 12 {
			return 0
		}
		return h
	case "afternoon", "evening":
		if h == 12 {
			return 12
		}
		return h + 12
	default: // night: "10 at night" is 22:00, "2 at night" is 02:00
		switch {
		case h == 12:
			return 0
		case h >= 6:
			return h + 12
		default:
			return h
		}
	}
}

func clock(h, minute int) *string {
	if h < 0 || h > 23 || minute < 0 || minute > 59 {
		return nil
	}
	out := fmt.Sprintf("%02d:%02d", h, minute)
	return &out
}
