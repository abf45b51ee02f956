package model

// Record is one extracted call. Nullable fields are pointers so that a
// checkpoint file round-trips JSON null instead of empty strings.
type Record struct {
	// Episode context, copied from the session
	Season       *int   `json:"season"`
	Episode      *int   `json:"episode"`
	EpisodeTitle string `json:"episode_title"`
	ReleaseDate  string `json:"release_date"`

	// Extracted fields
	CallerName             *string `json:"caller_name"`
	Country                *string `json:"country"`
	StateOrRegion          *string `json:"state_or_region"`
	City                   *string `json:"city"`
	CallType               string  `json:"call_type"`           // always a vocabulary label once sanitized
	CallTypeSecondary      *string `json:"call_type_secondary"` // vocabulary label or null
	Description            string  `json:"description"`
	DateOfEvent            *string `json:"date_of_event"` // YYYY-MM-DD
	TimeOfEvent            *string `json:"time_of_event"` // HH:MM, 24h
	Setting                *string `json:"setting"`
	InvolvesOtherWitnesses bool    `json:"involves_other_witnesses"`
	CallerEmotionalTone    string  `json:"caller_emotional_tone"`
	HostCommentary         *string `json:"derek_commentary"`
	CallerIntroSnippet     *string `json:"caller_intro_snippet"`

	// Pipeline-assigned fields
	Instance             int      `json:"instance"`
	CallStartTime        *string  `json:"call_start_time"`
	Verified             bool     `json:"verified"`
	VerificationEvidence string   `json:"verification_evidence"`
	SentimentCompound    *float64 `json:"sentiment_compound"`
	SentimentPos         *float64 `json:"sentiment_pos"`
	SentimentNeg         *float64 `json:"sentiment_neg"`
	SentimentNeu         *float64 `json:"sentiment_neu"`

	// WitnessRaw holds the extractor's untyped witness value until the
	// sanitizer resolves it into InvolvesOtherWitnesses.
	WitnessRaw any `json:"-"`
}

// NoEvidence is the evidence tag for a record nothing could corroborate.
const NoEvidence = "none"

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}

// IntPtr returns a pointer to n.
func IntPtr(n int) *int {
	return &n
}

// Deref returns the pointed-to string, or "" for nil.
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// LocationFields are the only fields the region repair pass may rewrite.
var LocationFields = []string{"country", "state_or_region", "city"}
