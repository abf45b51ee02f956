package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/ppiankov/casefile/internal/model"
)

var (
	fenceOpenRe  = regexp.MustCompile("^```(?:json)?\\s*")
	fenceCloseRe = regexp.MustCompile("\\s*```$")
)

// ErrDecode marks a response that is not the JSON shape asked for
var ErrDecode = errors.New("decode response")

// StripFences removes an optional markdown code fence around a response
func StripFences(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = fenceOpenRe.ReplaceAllString(raw, "")
	return fenceCloseRe.ReplaceAllString(raw, "")
}

// DecodeRecords turns a raw response into untrusted candidate records.
// Elements that are not JSON objects are dropped; field values of the
// wrong type are coerced or left null for the sanitizer to settle.
func DecodeRecords(raw string) ([]model.Record, error) {
	var items []json.RawMessage
	if err := json.Unmarshal([]byte(StripFences(raw)), &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	records := make([]model.Record, 0, len(items))
	for _, item := range items {
		var obj map[string]any
		if err := json.Unmarshal(item, &obj); err != nil || obj == nil {
			continue
		}
		records = append(records, recordFromMap(obj))
	}
	return records, nil
}

// Location is the region repair answer
type Location struct {
	Country       *string
	StateOrRegion *string
	City          *string
}

// DecodeLocation parses a {country, state_or_region, city} object
func DecodeLocation(raw string) (Location, error) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(StripFences(raw)), &obj); err != nil {
		return Location{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if obj == nil {
		return Location{}, fmt.Errorf("%w: null location", ErrDecode)
	}
	return Location{
		Country:       optString(obj["country"]),
		StateOrRegion: optString(obj["state_or_region"]),
		City:          optString(obj["city"]),
	}, nil
}

func recordFromMap(m map[string]any) model.Record {
	commentary := m["derek_commentary"]
	if commentary == nil {
		commentary = m["host_commentary"]
	}
	return model.Record{
		CallerName:          optString(m["caller_name"]),
		Country:             optString(m["country"]),
		StateOrRegion:       optString(m["state_or_region"]),
		City:                optString(m["city"]),
		CallType:            model.Deref(optString(m["call_type"])),
		CallTypeSecondary:   optString(m["call_type_secondary"]),
		Description:         model.Deref(optString(m["description"])),
		DateOfEvent:         optString(m["date_of_event"]),
		TimeOfEvent:         optString(m["time_of_event"]),
		Setting:             optString(m["setting"]),
		CallerEmotionalTone: model.Deref(optString(m["caller_emotional_tone"])),
		HostCommentary:      optString(commentary),
		CallerIntroSnippet:  optString(m["caller_intro_snippet"]),
		WitnessRaw:          m["involves_other_witnesses"],
	}
}

// optString keeps strings, renders scalars, and drops containers
func optString(v any) *string {
	switch x := v.(type) {
	case nil:
		return nil
	case string:
		return &x
	case float64, bool:
		return model.StringPtr(fmt.Sprint(x))
	default:
		return nil
	}
}
