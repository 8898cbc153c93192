// Package provider defines the external search collaborator contracts and
// the shared HTTP client used by the lyric providers.
//
// Every provider call is tolerant of upstream failure: an error or timeout
// yields an empty candidate list, never an error to the caller, so the
// resolution cascade can keep moving through its fallbacks.
package provider

import (
	"context"

	"lyricsync/internal/model"
)

// VideoSearcher finds video candidates for a free-text query. The limit
// caps the number of results; implementations must support queries with a
// literal " audio" suffix to bias results toward audio-only uploads.
type VideoSearcher interface {
	Search(ctx context.Context, query string, limit int) []model.VideoCandidate
}

// LyricsSearcher finds lyric candidates for a free-text query.
type LyricsSearcher interface {
	Search(ctx context.Context, query string) []model.LyricCandidate
}

// StructuredLyricsSearcher supports metadata-driven lookups: Get is the
// duration-aware precise lookup, SearchStructured the looser (track,
// artist) search.
type StructuredLyricsSearcher interface {
	Get(ctx context.Context, track, artist string, duration float64) []model.LyricCandidate
	SearchStructured(ctx context.Context, track, artist string) []model.LyricCandidate
}
