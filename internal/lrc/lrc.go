// Package lrc parses LRC-format lyric text into an ordered timeline.
package lrc

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"lyricsync/internal/model"
)

// DefaultOffset is added to every parsed timestamp to compensate for the
// systematic early-appearance bias of lyrics synced against video intros.
const DefaultOffset = 0.1

// Placeholder is served when no provider could produce synced lyrics for a
// query. It is itself valid LRC so it flows through the same parser.
const Placeholder = "[00:00.00] 🎵 Lyrics not yet available / Letra no disponible 🎵\n" +
	"[00:05.00] (Music is playing...)\n" +
	"[99:00.00] End"

// lineRegex matches `[mm:ss]`, `[mm:ss.xx]` and `[mm:ss.xxx]` prefixes with
// arbitrary trailing text.
var lineRegex = regexp.MustCompile(`^\[(\d{2}):(\d{2})\.?(\d{2,3})?\](.*)`)

// Parser converts raw LRC text into a sorted lyric timeline. Offset is
// applied to every parsed timestamp.
type Parser struct {
	Offset float64
}

// NewParser returns a parser with the default timing offset.
func NewParser() *Parser {
	return &Parser{Offset: DefaultOffset}
}

// Parse extracts timed lines from raw LRC content. Malformed lines are
// skipped and lines with empty text are dropped; parsing never fails. The
// result is sorted ascending by time, duplicate timestamps preserved.
func (p *Parser) Parse(content string) []model.LyricLine {
	var lines []model.LyricLine
	if content == "" {
		return lines
	}

	for _, raw := range strings.Split(content, "\n") {
		m := lineRegex.FindStringSubmatch(raw)
		if m == nil {
			continue
		}

		minutes, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		seconds, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}

		// A two-digit fraction is hundredths, a three-digit one is
		// already milliseconds.
		millis := 0
		if m[3] != "" {
			frac, err := strconv.Atoi(m[3])
			if err != nil {
				continue
			}
			if len(m[3]) == 2 {
				millis = frac * 10
			} else {
				millis = frac
			}
		}

		text := strings.TrimSpace(m[4])
		if text == "" {
			continue
		}

		lines = append(lines, model.LyricLine{
			Time: float64(minutes*60+seconds) + float64(millis)/1000 + p.Offset,
			Text: text,
		})
	}

	sort.Slice(lines, func(i, j int) bool {
		return lines[i].Time < lines[j].Time
	})
	return lines
}
