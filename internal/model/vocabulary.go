package model

import (
	"fmt"
	"strings"
)

// CategoryGroup is one themed block of the call taxonomy
type CategoryGroup struct {
	Theme  string
	Labels []string
}

// CatchAllCategory is the fallback primary category.
const CatchAllCategory = "Other"

// Taxonomy is the closed call_type vocabulary. It is never modified at runtime.
var Taxonomy = []CategoryGroup{
	{
		Theme: "CRYPTID ENTITIES",
		Labels: []string{
			"Bigfoot/Sasquatch", "Dogman", "Mothman", "Skinwalker", "Wendigo", "Thunderbird",
			"Crawler/Rake", "Chupacabra", "Mutant Canine/Turner Beast", "Lake Monster",
			"Black-Eyed Kids (BEK)", "Not Deer", "Goatman", "Jersey Devil", "Unknown Cryptid",
		},
	},
	{
		Theme: "GHOSTLY/SPIRITUAL",
		Labels: []string{
			"Ghost/Apparition", "Shadow Person", "Hat Man", "Old Hag", "Poltergeist",
			"Demonic Entity", "Angel/Positive Spirit", "Doppelganger", "Residual Haunting",
			"Intelligent Haunting", "Portal/Vortex", "Afterlife Communication (ADC)",
			"Sleep Paralysis Entity",
		},
	},
	{
		Theme: "UFO/AERIAL",
		Labels: []string{
			"UFO/UAP", "Black Triangle", "Orb/Light", "Fireball", "Phantom Lights",
			"Abduction", "Alien Entity", "Satellite/Rocket (Explained)",
		},
	},
	{
		Theme: "HIGH STRANGENESS",
		Labels: []string{
			"Missing Time", "Glitch in the Matrix", "Time Slip", "Premonition/Precognition",
			"Telepathy", "Psychic Experience", "Astral Projection", "Aura/Energy",
			"Synchronicity", "Men in Black", "Phantom Person", "Vanishing Object",
			"Dime/Coin from the Dead",
		},
	},
	{
		Theme: "ENVIRONMENTAL/SENSORY",
		Labels: []string{
			"Phantom Sound", "Phantom Smell", "Unexplained Animal Behavior",
			"Electronic Malfunction", "Temperature Anomaly",
		},
	},
	{
		Theme: "OTHER",
		Labels: []string{
			"Coincidence", "Unidentified Animal", "Explained (mundane)", "Dream/Vision",
			"Curse/Hex", "Fairy/Fae", "Humanoid (unclassified)", CatchAllCategory,
		},
	},
}

// Vocabulary answers membership questions over the taxonomy
type Vocabulary struct {
	exact  map[string]bool
	folded map[string]string // lower-cased label -> canonical label
}

// NewVocabulary indexes the given groups.
func NewVocabulary(groups []CategoryGroup) *Vocabulary {
	v := &Vocabulary{
		exact:  make(map[string]bool),
		folded: make(map[string]string),
	}
	for _, g := range groups {
		for _, label := range g.Labels {
			v.exact[label] = true
			v.folded[strings.ToLower(label)] = label
		}
	}
	return v
}

// DefaultVocabulary is the compiled-in taxonomy.
var DefaultVocabulary = NewVocabulary(Taxonomy)

// Contains reports exact membership.
func (v *Vocabulary) Contains(label string) bool {
	return v.exact[label]
}

// Canonical returns the canonical label for a case-insensitive match.
func (v *Vocabulary) Canonical(label string) (string, bool) {
	if v.exact[label] {
		return label, true
	}
	canon, ok := v.folded[strings.ToLower(strings.TrimSpace(label))]
	return canon, ok
}

// Len returns the number of labels.
func (v *Vocabulary) Len() int {
	return len(v.exact)
}

// RenderTaxonomy renders the groups the way the extraction prompt lists them.
func RenderTaxonomy(groups []CategoryGroup) string {
	var b strings.Builder
	for i, g := range groups {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s:\n  %s\n", g.Theme, strings.Join(g.Labels, ", "))
	}
	return b.String()
}
