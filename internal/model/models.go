package model

// VideoCandidate is a single video search result. Duration is in seconds;
// zero means the provider did not report one, which makes the candidate
// unusable for duration-based scoring.
type VideoCandidate struct {
	ID         string
	Title      string
	Uploader   string
	Artist     string // provider-supplied artist metadata, often empty
	Track      string // provider-supplied track metadata, often empty
	Duration   float64
	Thumbnail  string
	WebpageURL string
}

// LyricCandidate is a single lyrics search result. A candidate is only
// usable for matching when it carries both synced lyrics and a duration.
type LyricCandidate struct {
	TrackName    string
	ArtistName   string
	Duration     float64
	SyncedLyrics string
}

// Valid reports whether the candidate is eligible for matching.
func (l LyricCandidate) Valid() bool {
	return l.SyncedLyrics != "" && l.Duration > 0
}

// MatchResult is a winning (video, lyrics) pair. DurationDelta is the
// absolute duration difference between the two, the confidence proxy used
// throughout the matching cascade (lower is better).
type MatchResult struct {
	Video         VideoCandidate
	LyricsText    string
	DurationDelta float64
}

// LyricLine is one entry of a parsed lyric timeline.
type LyricLine struct {
	Time float64 `json:"time"`
	Text string  `json:"text"`
}
