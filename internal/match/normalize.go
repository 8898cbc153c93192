// Package match scores and pairs video candidates against lyric candidates.
package match

import (
	"regexp"
	"strings"
)

// Patterns stripped from video titles before comparison. Order matters:
// keyword groups go before the generic punctuation sweep.
var (
	noiseWords     = regexp.MustCompile(`(?i)\b(official|video|mv|m/v)\b`)
	parenOfficial  = regexp.MustCompile(`(?i)\(.*?official.*?\)`)
	parenVideo     = regexp.MustCompile(`(?i)\(.*?video.*?\)`)
	parenLyric     = regexp.MustCompile(`(?i)\(.*?lyric.*?\)`)
	parenVisual    = regexp.MustCompile(`(?i)\(.*?visualizer.*?\)`)
	parenAudio     = regexp.MustCompile(`(?i)\(.*?audio.*?\)`)
	parenLive      = regexp.MustCompile(`(?i)\(.*?live.*?\)`)
	bracketGroup   = regexp.MustCompile(`\[.*?\]`)
	featSuffix     = regexp.MustCompile(`(?i)(ft\.|feat\.).*`)
	punctuation    = regexp.MustCompile(`[^\p{L}\p{N}\s]`)
	collapseSpaces = regexp.MustCompile(`\s+`)
)

// NormalizeTitle reduces a raw video or track title to a lowercase,
// punctuation-free form used only for heuristic comparison. It strips
// marketing noise: standalone official/video/mv words, parenthesized
// official/video/lyric/visualizer/audio/live groups, bracketed groups,
// and anything after ft./feat. The function is idempotent.
func NormalizeTitle(title string) string {
	t := noiseWords.ReplaceAllString(title, "")
	t = parenOfficial.ReplaceAllString(t, "")
	t = parenVideo.ReplaceAllString(t, "")
	t = parenLyric.ReplaceAllString(t, "")
	t = parenVisual.ReplaceAllString(t, "")
	t = parenAudio.ReplaceAllString(t, "")
	t = parenLive.ReplaceAllString(t, "")
	t = bracketGroup.ReplaceAllString(t, "")
	t = featSuffix.ReplaceAllString(t, "")
	t = punctuation.ReplaceAllString(t, "")
	t = collapseSpaces.ReplaceAllString(t, " ")
	return strings.ToLower(strings.TrimSpace(t))
}
