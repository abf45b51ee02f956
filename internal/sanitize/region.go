package sanitize

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// IsNullLike reports whether an extracted string means "no value".
func IsNullLike(s string) bool {
	return nullLike[strings.ToLower(strings.TrimSpace(s))]
}

// NormalizeRegion canonicalizes a state or region name.
// Mixed-case input is kept as spoken; uniformly cased input is title-cased.
func NormalizeRegion(raw string) *string {
	s := strings.TrimSpace(raw)
	upper := strings.ToUpper(s)
	lower := strings.ToLower(s)

	if full, ok := stateAbbrev[upper]; ok {
		return &full
	}
	if full, ok := stateAliases[lower]; ok {
		return &full
	}
	if nullLike[lower] {
		return nil
	}
	if s == lower || s == upper {
		titled := cases.Title(language.English).String(s)
		return &titled
	}
	return &s
}
