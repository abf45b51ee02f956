package sanitize

// nullLike values are coerced to null in every nullable string field.
// Keys are trimmed and lower-cased.
var nullLike = map[string]bool{
	"":              true,
	"na":            true,
	"n/a":           true,
	"none":          true,
	"null":          true,
	"unknown":       true,
	"unclear":       true,
	"unspecified":   true,
	"parts unknown": true,
	"anonymous":     true,
	"not mentioned": true,
	"not specified": true,
}

var stateAbbrev = map[string]string{
	"AL": "Alabama", "AK": "Alaska", "AZ": "Arizona", "AR": "Arkansas", "CA": "California",
	"CO": "Colorado", "CT": "Connecticut", "DE": "Delaware", "FL": "Florida", "GA": "Georgia",
	"HI": "Hawaii", "ID": "Idaho", "IL": "Illinois", "IN": "Indiana", "IA": "Iowa",
	"KS": "Kansas", "KY": "Kentucky", "LA": "Louisiana", "ME": "Maine", "MD": "Maryland",
	"MA": "Massachusetts", "MI": "Michigan", "MN": "Minnesota", "MS": "Mississippi",
	"MO": "Missouri", "MT": "Montana", "NE": "Nebraska", "NV": "Nevada", "NH": "New Hampshire",
	"NJ": "New Jersey", "NM": "New Mexico", "NY": "New York", "NC": "North Carolina",
	"ND": "North Dakota", "OH": "Ohio", "OK": "Oklahoma", "OR": "Oregon", "PA": "Pennsylvania",
	"RI": "Rhode Island", "SC": "South Carolina", "SD": "South Dakota", "TN": "Tennessee",
	"TX": "Texas", "UT": "Utah", "VT": "Vermont", "VA": "Virginia", "WA": "Washington",
	"WV": "West Virginia", "WI": "Wisconsin", "WY": "Wyoming", "DC": "District of Columbia",
}

// stateAliases maps informal names (lower-cased) to the canonical state
var stateAliases = map[string]string{
	"cali": "California", "socal": "California", "norcal": "California",
	"mass": "Massachusetts", "mich": "Michigan", "minn": "Minnesota",
	"penn": "Pennsylvania", "tenn": "Tennessee", "wisc": "Wisconsin",
	"conn": "Connecticut", "wash": "Washington", "ore": "Oregon",
	"okla": "Oklahoma", "mont": "Montana", "miss": "Mississippi",
	"ala": "Alabama", "ariz": "Arizona", "ark": "Arkansas",
	"colo": "Colorado", "dela": "Delaware", "fla": "Florida",
	"ind": "Indiana", "neb": "Nebraska", "nev": "Nevada",
}

// censusRegions groups domestic regions for the tidy export
var censusRegions = map[string]string{
	"Connecticut": "Northeast", "Maine": "Northeast", "Massachusetts": "Northeast",
	"New Hampshire": "Northeast", "Rhode Island": "Northeast", "Vermont": "Northeast",
	"New Jersey": "Northeast", "New York": "Northeast", "Pennsylvania": "Northeast",

	"Alabama": "Southeast", "Arkansas": "Southeast", "Delaware": "Southeast",
	"Florida": "Southeast", "Georgia": "Southeast", "Kentucky": "Southeast",
	"Louisiana": "Southeast", "Maryland": "Southeast", "Mississippi": "Southeast",
	"North Carolina": "Southeast", "Oklahoma": "Southeast", "South Carolina": "Southeast",
	"Tennessee": "Southeast", "Texas": "Southeast", "Virginia": "Southeast",
	"West Virginia": "Southeast", "District of Columbia": "Southeast",

	"Illinois": "Midwest", "Indiana": "Midwest", "Iowa": "Midwest",
	"Kansas": "Midwest", "Michigan": "Midwest", "Minnesota": "Midwest",
	"Missouri": "Midwest", "Nebraska": "Midwest", "North Dakota": "Midwest",
	"Ohio": "Midwest", "South Dakota": "Midwest", "Wisconsin": "Midwest",

	"Alaska": "West", "Arizona": "West", "California": "West",
	"Colorado": "West", "Hawaii": "West", "Idaho": "West",
	"Montana": "West", "Nevada": "West", "New Mexico": "West",
	"Oregon": "West", "Utah": "West", "Washington": "West", "Wyoming": "West",
}

// timeWords maps time-of-day phrases to a canonical HH:MM
var timeWords = map[string]string{
	"midnight":            "00:00",
	"middle of the night": "03:00",
	"pre-dawn":            "04:00",
	"predawn":             "04:00",
	"early morning":       "05:00",
	"dawn":                "06:00",
	"sunrise":             "06:00",
	"morning":             "08:00",
	"mid-morning":         "10:00",
	"noon":                "12:00",
	"midday":              "12:00",
	"afternoon":           "14:00",
	"late afternoon":      "16:00",
	"dusk":                "19:00",
	"sunset":              "19:00",
	"twilight":            "19:00",
	"evening":             "20:00",
	"night":               "21:00",
	"nighttime":           "21:00",
	"late night":          "23:00",
	"late at night":       "23:00",
}

// Tones is the closed caller_emotional_tone enumeration
var Tones = []string{"scared", "calm", "nostalgic", "humorous", "matter-of-fact", "emotional"}

// DefaultTone is used when nothing else matches
const DefaultTone = "matter-of-fact"

var toneSynonyms = map[string]string{
	"frightened": "scared", "terrified": "scared", "afraid": "scared",
	"anxious": "scared", "nervous": "scared", "uneasy": "scared",
	"relaxed": "calm", "composed": "calm", "neutral": "calm",
	"sentimental": "nostalgic", "wistful": "nostalgic", "reflective": "nostalgic",
	"funny": "humorous", "joking": "humorous", "lighthearted": "humorous",
	"factual": "matter-of-fact", "matter of fact": "matter-of-fact",
	"deadpan": "matter-of-fact", "dry": "matter-of-fact",
	"upset": "emotional", "tearful": "emotional", "crying": "emotional",
	"excited": "emotional", "passionate": "emotional", "moved": "emotional",
}

// CensusRegion returns the census region of a canonical domestic region name.
func CensusRegion(state string) (string, bool) {
	r, ok := censusRegions[state]
	return r, ok
}

// IsDomestic reports whether a canonical region name is a US state or DC.
func IsDomestic(state string) bool {
	_, ok := censusRegions[state]
	return ok
}
