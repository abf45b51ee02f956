package extract

import (
	"fmt"
	"regexp"
)

// AdPlaceholder replaces every stripped sponsor read
const AdPlaceholder = "[AD REMOVED]"

// AdStripper removes known sponsor reads before chunking
type AdStripper struct {
	patterns []*regexp.Regexp
}

// NewAdStripper compiles the configured patterns
func NewAdStripper(patterns []string) (*AdStripper, error) {
	s := &AdStripper{}
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("compile ad pattern %q: %w", p, err)
		}
		s.patterns = append(s.patterns, re)
	}
	return s, nil
}

// Strip returns text with every match replaced by AdPlaceholder
func (s *AdStripper) Strip(text string) string {
	if s == nil {
		return text
	}
	for _, re := range s.patterns {
		text = re.ReplaceAllLiteralString(text, AdPlaceholder)
	}
	return text
}
