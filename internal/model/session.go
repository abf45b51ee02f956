package model

import "strings"

// SessionStatus tracks where a session is in the pipeline
type SessionStatus string

const (
	StatusNotStarted  SessionStatus = "not_started"
	StatusTranscribed SessionStatus = "transcribed"
	StatusParsed      SessionStatus = "parsed"
	StatusFailed      SessionStatus = "failed"
)

// TranscriptUnavailable prefixes transcripts the transcriber gave up on.
const TranscriptUnavailable = "TRANSCRIPT_UNAVAILABLE"

// Episode is one entry of the cached episode list (episode_list.json)
type Episode struct {
	ID          string `json:"episode_id"`
	Name        string `json:"name"`
	ReleaseDate string `json:"release_date"` // YYYY-MM-DD
	Duration    string `json:"duration,omitempty"`
	Description string `json:"description"`
	AudioURL    string `json:"audio_url,omitempty"`
	Season      *int   `json:"season"`
	Number      *int   `json:"episode"`
	FeedSource  string `json:"feed_source,omitempty"`
}

// Segment is one entry of a session's time index (<id>_timestamps.json)
type Segment struct {
	StartMS  int64  `json:"start_ms"`
	StartHMS string `json:"start_hms"`
	EndHMS   string `json:"end_hms"`
	Text     string `json:"text"`
}

// Session is one transcript unit
type Session struct {
	Episode
	Text     string    // raw transcript text
	Segments []Segment // nil when no time index exists
	Status   SessionStatus
}

// Unavailable reports whether the transcript is the transcriber's sentinel.
func (s *Session) Unavailable() bool {
	return strings.HasPrefix(s.Text, TranscriptUnavailable)
}
