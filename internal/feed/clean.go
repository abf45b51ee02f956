package feed

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/ppiankov/casefile/internal/model"
)

// MaxDescription caps cleaned descriptions, in runes
const MaxDescription = 500

var (
	seasonEpisodePatterns = []*regexp.Regexp{
		regexp.MustCompile(`[Ss](?:n\.?\s*|eason\s*)(\d+)\s*[Ee]p(?:isode)?\.?\s*(\d+)`),
		regexp.MustCompile(`[Ss](\d+)\s*[Ee]p?(\d+)`),
		regexp.MustCompile(`\(Sn\.\s*(\d+)\s*Ep\.\s*(\d+)\)`),
	}
	episodeOnlyRe = regexp.MustCompile(`[Ee]p(?:isode)?\.?\s*(\d+)`)

	audioboomRe = regexp.MustCompile(`(audioboom\.com/posts/\d+\.mp3)`)
	cdnHosts    = []string{"megaphone.fm", "libsyn.com", "podbean.com", "buzzsprout.com"}
	cdnRes      = func() []*regexp.Regexp {
		res := make([]*regexp.Regexp, len(cdnHosts))
		for i, host := range cdnHosts {
			res[i] = regexp.MustCompile(`((?:https?://)?[^/]*` + regexp.QuoteMeta(host) + `/[^\s?]+\.mp3)`)
		}
		return res
	}()

	nonWordRe = regexp.MustCompile(`[^\p{L}\p{N}_]`)
	spaceRe   = regexp.MustCompile(`\s+`)
)

// ParseSeasonEpisode reads "S3 Ep12", "Season 3 Episode 12", "(Sn. 3 Ep. 12)"
// or a bare "Ep 12" out of a title.
func ParseSeasonEpisode(title string) (season, episode *int) {
	for _, re := range seasonEpisodePatterns {
		if m := re.FindStringSubmatch(title); m != nil {
			return atoiPtr(m[1]), atoiPtr(m[2])
		}
	}
	if m := episodeOnlyRe.FindStringSubmatch(title); m != nil {
		return nil, atoiPtr(m[1])
	}
	return nil, nil
}

func atoiPtr(s string) *int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return model.IntPtr(n)
}

// CleanAudioURL unwraps tracker redirect chains to the hosting CDN's mp3 URL
func CleanAudioURL(raw string) string {
	if m := audioboomRe.FindStringSubmatch(raw); m != nil {
		return "https://" + m[1]
	}
	for _, re := range cdnRes {
		if m := re.FindStringSubmatch(raw); m != nil {
			clean := m[1]
			if !strings.HasPrefix(clean, "http") {
				clean = "https://" + clean
			}
			return clean
		}
	}
	return raw
}

// EpisodeID derives a filesystem-safe id from a title
func EpisodeID(title string) string {
	id := []rune(nonWordRe.ReplaceAllString(title, "_"))
	if len(id) > 60 {
		id = id[:60]
	}
	return string(id)
}

// CleanDescription strips markup from a show-notes body and caps its length
func CleanDescription(raw string) string {
	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(raw))
	skip := 0
loop:
	for {
		switch z.Next() {
		case html.ErrorToken:
			break loop
		case html.StartTagToken:
			if name, _ := z.TagName(); isHidden(string(name)) {
				skip++
			} else if isBlock(string(name)) {
				b.WriteByte(' ')
			}
		case html.EndTagToken:
			if name, _ := z.TagName(); isHidden(string(name)) && skip > 0 {
				skip--
			}
		case html.SelfClosingTagToken:
			b.WriteByte(' ')
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		}
	}

	text := strings.TrimSpace(spaceRe.ReplaceAllString(b.String(), " "))
	if r := []rune(text); len(r) > MaxDescription {
		text = string(r[:MaxDescription])
	}
	return text
}

func isHidden(tag string) bool {
	return tag == "script" || tag == "style"
}

func isBlock(tag string) bool {
	switch tag {
	case "p", "br", "div", "li", "ul", "ol", "h1", "h2", "h3", "h4":
		return true
	}
	return false
}

// formatDuration renders an itunes:duration given in seconds as H:MM:SS
func formatDuration(raw string) string {
	secs, err := strconv.Atoi(raw)
	if err != nil {
		return raw
	}
	return fmt.Sprintf("%d:%02d:%02d", secs/3600, secs%3600/60, secs%60)
}
