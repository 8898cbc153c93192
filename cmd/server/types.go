package main

import "lyricsync/internal/model"

// SearchResponse is the payload for GET /search: the resolved track's
// metadata, its parsed lyric timeline, and playback references.
type SearchResponse struct {
	Title    string            `json:"title"`
	Artist   string            `json:"artist"`
	Duration float64           `json:"duration"`
	Lyrics   []model.LyricLine `json:"lyrics"`
	AudioURL string            `json:"audio_url"`
	CoverURL string            `json:"cover_url"`
}

// HealthResponse is the payload for GET /health.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// ErrorResponse is the standard error payload.
type ErrorResponse struct {
	Error string `json:"error"`
}
