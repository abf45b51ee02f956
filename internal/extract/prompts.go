package extract

import (
	"fmt"
	"strings"

	"github.com/ppiankov/casefile/internal/model"
	"github.com/ppiankov/casefile/internal/sanitize"
)

// Instructions renders the extraction prompt for a show. The field names
// in it are the checkpoint JSON keys, so the model answers in the same
// shape the store persists.
func Instructions(show, host string, taxonomy []model.CategoryGroup) string {
	hostFirst := host
	if i := strings.IndexByte(host, ' '); i > 0 {
		hostFirst = host[:i]
	}
	r := strings.NewReplacer(
		"{{SHOW}}", show,
		"{{HOST}}", host,
		"{{HOST_FIRST}}", hostFirst,
		"{{TONES}}", quoteList(sanitize.Tones),
		"{{TAXONOMY}}", model.RenderTaxonomy(taxonomy),
	)
	return r.Replace(extractionPrompt)
}

func quoteList(items []string) string {
	q := make([]string, len(items))
	for i, s := range items {
		q[i] = fmt.Sprintf("%q", s)
	}
	return strings.Join(q, ", ")
}

// UserContent is the per-chunk user turn
func UserContent(ep model.Episode, text string) string {
	return fmt.Sprintf("Episode: %s\nSeason: %s\nEpisode Number: %s\nRelease Date: %s\n\nTRANSCRIPT:\n%s",
		ep.Name, intOrUnknown(ep.Season), intOrUnknown(ep.Number), ep.ReleaseDate, text)
}

func intOrUnknown(n *int) string {
	if n == nil {
		return "Unknown"
	}
	return fmt.Sprint(*n)
}

const extractionPrompt = `You are a structured data extraction system. Your output will be used directly
for statistical analysis in R and Python. Human readability is secondary to
data consistency and type safety.

Output valid JSON only. Do not include explanations, comments, or uncertainty
markers. All fields must be present for every record. Unknown or missing values
must be returned as JSON null. NEVER return strings such as "Unknown", "N/A",
"Unclear", "Parts Unknown", or empty strings. Use null instead.

You are analyzing transcripts of the podcast "{{SHOW}}".
Identify EVERY individual caller story and extract one JSON object per caller.

CALLER BOUNDARY RULES:
- A caller is identified by {{HOST_FIRST}}'s introduction, the caller's self-introduction,
  or a clear topic/story transition.
- {{HOST}} is the HOST. Never create a record for the host.
- Advertisements, promos, and show metadata are NOT calls. Skip them.
- If a caller calls back (continuation), merge into ONE record unless the
  topic changes substantially.
- Bonus or members-only segments count if callers are identifiable.

FIELD SPECIFICATIONS (strict types, no exceptions):

caller_name (string | null):
  Exact name as spoken. If anonymous or unnamed, return null.

country (string | null):
  Country where THE ENCOUNTER TOOK PLACE, not where the caller currently lives.
  Full country name. Default "USA" when a US state is mentioned. null if unknown.

state_or_region (string | null):
  State/region where THE ENCOUNTER TOOK PLACE, not the caller's current residence.
  A caller may say "I live in Texas but this happened when I was visiting Oregon". Use Oregon.
  Full US state name (e.g. "California" not "CA", "Cali", or "SoCal").
  For non-US, use province/region name. null if unknown or withheld.

city (string | null):
  City where THE ENCOUNTER TOOK PLACE. Only if explicitly mentioned in
  connection with the event. null otherwise.

call_type (string):
  MUST be one of the exact labels from the ENTITY TAXONOMY below.
  Never invent new labels. Pick the closest match.

call_type_secondary (string | null):
  Second classification from the taxonomy if applicable. null if single type.

description (string):
  1-2 sentence factual summary. No speculation.

date_of_event (string | null):
  ISO-8601 format ONLY. Apply these rules strictly:
  - Exact date known:        "2025-12-02"
  - Only month and year:     "2025-12-01" (first of month)
  - Only year known:         "2025-01-01" (January 1st of that year)
  - Only decade ("the 90s"): "1990-01-01" (first day of decade)
  - "A few years ago" from a 2025 episode: "2022-01-01" (best estimate year)
  - "When I was a kid" with no other clues: null
  - Completely unknown:      null
  NEVER return ranges, approximations, or prose like "mid-90s" or "summer 2020".

time_of_event (string | null):
  24-hour format HH:MM when a specific time is stated or clearly implied:
  - "2 AM" -> "02:00"
  - "around 3 in the afternoon" -> "15:00"
  - "midnight" -> "00:00"
  - "noon" -> "12:00"
  - "dusk" -> "19:00"
  - "dawn" / "sunrise" -> "06:00"
  - "late night" -> "23:00"
  - "evening" -> "20:00"
  - "early morning" -> "05:00"
  - "middle of the night" -> "03:00"
  - "pre-dawn" -> "04:00"
  - "daytime" with no specifics -> null
  - Completely unknown -> null

setting (string | null):
  Brief location descriptor (e.g. "bedroom", "highway", "hotel room"). null if unknown.

involves_other_witnesses (boolean):
  MUST be JSON true or false. Never null, never a string.
  If ambiguous, assess whether any other person is described as perceiving the event.
  Default to false if unclear.

caller_emotional_tone (string):
  MUST be exactly one of: {{TONES}}
  No variations, no combinations. Pick the dominant tone. Never null.

derek_commentary (string | null):
  Brief note on the host's reaction if notable. null if unremarkable.

caller_intro_snippet (string | null):
  The EXACT first 8-15 words the caller says when they begin speaking.
  Copy verbatim from transcript. Used for timestamp lookup. null if not identifiable.

ENTITY TAXONOMY (use these EXACT labels for call_type and call_type_secondary):
{{TAXONOMY}}
OUTPUT FORMAT:
Return ONLY a valid JSON array of objects. No markdown fences, no backticks,
no explanatory text before or after the array.
`

// RegionInstructions asks only for the encounter location
const RegionInstructions = `You are a precise data extractor. You will be given a transcript excerpt from a paranormal podcast
and a description of a specific caller's story. Your ONLY job is to determine WHERE THE ENCOUNTER TOOK PLACE.

CRITICAL DISTINCTION:
- Callers often say where they CURRENTLY LIVE and separately where the ENCOUNTER HAPPENED.
- "I'm calling from Texas" or "I live in Ohio" = caller's RESIDENCE (IGNORE THIS)
- "This happened when I was camping in Montana" or "I was driving through rural Oregon" = ENCOUNTER LOCATION (USE THIS)
- If the caller says "I'm from Maine and this happened in my backyard", the encounter IS in Maine.
- If the caller only mentions one location and it seems to be where they live AND where it happened, use it.
- If NO location is mentioned in connection with the encounter, return null for all fields.

Return ONLY a JSON object with exactly these fields:
{
  "country": "Full country name or null",
  "state_or_region": "Full US state name (e.g. 'California' not 'CA') or province/region, or null",
  "city": "City name or null"
}

Return ONLY the JSON. No markdown, no explanation.`

// RegionContent is the user turn for one record's location repair
func RegionContent(name, description, excerpt string) string {
	if name == "" {
		name = "Anonymous"
	}
	return fmt.Sprintf("Caller: %s\nDescription: %s\n\nTRANSCRIPT EXCERPT:\n%s", name, description, excerpt)
}
