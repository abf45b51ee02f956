package sanitize

import "strings"

// NormalizeTone maps a free-text tone onto the closed tone enumeration.
func NormalizeTone(raw string) string {
	t := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(raw)), "_", "-")
	for _, tone := range Tones {
		if t == tone {
			return tone
		}
	}
	if mapped, ok := toneSynonyms[t]; ok {
		return mapped
	}
	return DefaultTone
}

// normalizeWitness resolves the extractor's untyped witness value.
// A nil value leaves the current flag alone so sanitizing twice is stable.
func normalizeWitness(raw any, current bool) bool {
	switch v := raw.(type) {
	case nil:
		return current
	case bool:
		return v
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "yes", "1":
			return true
		}
		return false
	default:
		return false
	}
}
