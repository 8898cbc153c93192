package match

import (
	"math"
	"strings"

	"lyricsync/internal/model"
)

// Thresholds holds the tuning knobs of the matching cascade. The defaults
// are empirically tuned values carried over from production traffic; they
// are not known to be optimal, so keep them adjustable rather than inlined.
type Thresholds struct {
	// Strict and Relaxed are the base duration tolerances (seconds) for
	// the primary pass.
	Strict  float64
	Relaxed float64
	// TextBonusWiden widens the base tolerance when any text bonus fired.
	TextBonusWiden float64
	// Desperate and DesperateRelaxed bound the last-resort pass, with
	// DesperateTextWiden added on a substring title match.
	Desperate          float64
	DesperateRelaxed   float64
	DesperateTextWiden float64
	// SimilarityCutoff is the minimum fuzzy ratio worth a weak bonus.
	SimilarityCutoff float64
	// StrongBonus, WeakBonus and BonusWeight shape the running-best score
	// diff - bonus*BonusWeight.
	StrongBonus float64
	WeakBonus   float64
	BonusWeight float64
}

// DefaultThresholds returns the production tuning.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Strict:             2.0,
		Relaxed:            5.0,
		TextBonusWiden:     3.0,
		Desperate:          8.0,
		DesperateRelaxed:   15.0,
		DesperateTextWiden: 5.0,
		SimilarityCutoff:   0.6,
		StrongBonus:        2.0,
		WeakBonus:          1.0,
		BonusWeight:        5.0,
	}
}

// Matcher pairs video candidates with lyric candidates on duration and
// title signals.
type Matcher struct {
	thresholds Thresholds
}

// NewMatcher returns a matcher with the given tuning.
func NewMatcher(t Thresholds) *Matcher {
	return &Matcher{thresholds: t}
}

// best is the running best-so-far slot of a matching pass. The first
// eligible pair is always taken; afterwards a pair replaces the incumbent
// only on a strictly lower score. Ties keep the incumbent.
type best struct {
	result model.MatchResult
	score  float64
	found  bool
}

func (b *best) offer(r model.MatchResult, score float64) {
	if !b.found || score < b.score {
		b.result = r
		b.score = score
		b.found = true
	}
}

// FindBestMatch selects the best (video, lyrics) pair, or nil when no pair
// is eligible. Relaxed mode widens the duration tolerances for
// lower-confidence fallback providers. Lyric candidates without synced
// lyrics or a duration are filtered out up front; videos without a known
// duration never participate.
func (m *Matcher) FindBestMatch(videos []model.VideoCandidate, lyrics []model.LyricCandidate, relaxed bool) *model.MatchResult {
	valid := make([]model.LyricCandidate, 0, len(lyrics))
	for _, l := range lyrics {
		if l.Valid() {
			valid = append(valid, l)
		}
	}
	if len(valid) == 0 {
		return nil
	}

	t := m.thresholds
	var winner best

	for _, v := range videos {
		if v.Duration == 0 {
			continue
		}
		vidTitle := NormalizeTitle(v.Title)

		for _, l := range valid {
			diff := math.Abs(v.Duration - l.Duration)

			bonus := 0.0
			if track := NormalizeTitle(l.TrackName); track != "" {
				switch {
				case strings.Contains(vidTitle, track) || strings.Contains(track, vidTitle):
					bonus = t.StrongBonus
				case Similarity(track, vidTitle) > t.SimilarityCutoff:
					bonus = t.WeakBonus
				}
			}

			tolerated := t.Strict
			if relaxed {
				tolerated = t.Relaxed
			}
			if bonus > 0 {
				tolerated += t.TextBonusWiden
			}

			if diff < tolerated {
				winner.offer(model.MatchResult{
					Video:         v,
					LyricsText:    l.SyncedLyrics,
					DurationDelta: diff,
				}, diff-bonus*t.BonusWeight)
			}
		}
	}

	if winner.found {
		return &winner.result
	}

	// Desperate pass: accept the closest duration pair under a loosened
	// threshold, even without strong textual confirmation. Only fills an
	// empty result, never replaces a primary-pass winner.
	threshold := t.Desperate
	if relaxed {
		threshold = t.DesperateRelaxed
	}

	bestDiff := math.Inf(1)
	var desperate *model.MatchResult
	for _, v := range videos {
		if v.Duration == 0 {
			continue
		}
		vidTitle := NormalizeTitle(v.Title)

		for _, l := range valid {
			diff := math.Abs(v.Duration - l.Duration)

			final := threshold
			if track := NormalizeTitle(l.TrackName); track != "" &&
				(strings.Contains(vidTitle, track) || strings.Contains(track, vidTitle)) {
				final += t.DesperateTextWiden
			}

			if diff < final && diff < bestDiff {
				bestDiff = diff
				desperate = &model.MatchResult{
					Video:         v,
					LyricsText:    l.SyncedLyrics,
					DurationDelta: diff,
				}
			}
		}
	}
	return desperate
}
