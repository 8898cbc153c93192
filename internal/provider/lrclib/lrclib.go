// Package lrclib queries lrclib.net, the primary synced-lyrics source.
package lrclib

import (
	"context"
	"fmt"
	"net/url"

	"lyricsync/internal/model"
	"lyricsync/internal/provider"
	"lyricsync/pkg/logger"
)

const defaultBaseURL = "https://lrclib.net"

type record struct {
	TrackName    string  `json:"trackName"`
	ArtistName   string  `json:"artistName"`
	Duration     float64 `json:"duration"`
	SyncedLyrics string  `json:"syncedLyrics"`
}

func (r record) toCandidate() model.LyricCandidate {
	return model.LyricCandidate{
		TrackName:    r.TrackName,
		ArtistName:   r.ArtistName,
		Duration:     r.Duration,
		SyncedLyrics: r.SyncedLyrics,
	}
}

// Provider is the lrclib.net adapter. It implements both the free-text
// search and the structured metadata lookups.
type Provider struct {
	client  *provider.Client
	baseURL string
	log     *logger.Logger
}

// New returns an lrclib provider using the shared client.
func New(client *provider.Client) *Provider {
	return &Provider{
		client:  client,
		baseURL: defaultBaseURL,
		log:     logger.GetLogger(),
	}
}

// NewWithBaseURL points the provider at an alternate endpoint, for tests.
func NewWithBaseURL(client *provider.Client, baseURL string) *Provider {
	p := New(client)
	p.baseURL = baseURL
	return p
}

// Search runs the broad free-text search. Failures yield an empty list.
func (p *Provider) Search(ctx context.Context, query string) []model.LyricCandidate {
	endpoint := fmt.Sprintf("%s/api/search?q=%s", p.baseURL, url.QueryEscape(query))
	return p.fetchList(ctx, endpoint)
}

// SearchStructured searches by track and artist name.
func (p *Provider) SearchStructured(ctx context.Context, track, artist string) []model.LyricCandidate {
	endpoint := fmt.Sprintf("%s/api/search?track_name=%s&artist_name=%s",
		p.baseURL, url.QueryEscape(track), url.QueryEscape(artist))
	return p.fetchList(ctx, endpoint)
}

// Get runs the duration-aware precise lookup, which returns at most one
// record.
func (p *Provider) Get(ctx context.Context, track, artist string, duration float64) []model.LyricCandidate {
	endpoint := fmt.Sprintf("%s/api/get?track_name=%s&artist_name=%s&duration=%d",
		p.baseURL, url.QueryEscape(track), url.QueryEscape(artist), int(duration))

	var rec record
	if err := p.client.GetJSON(ctx, endpoint, &rec); err != nil {
		p.log.Debugf("lrclib precise lookup failed for %q/%q: %v", track, artist, err)
		return nil
	}
	if rec.SyncedLyrics == "" {
		return nil
	}
	return []model.LyricCandidate{rec.toCandidate()}
}

func (p *Provider) fetchList(ctx context.Context, endpoint string) []model.LyricCandidate {
	var records []record
	if err := p.client.GetJSON(ctx, endpoint, &records); err != nil {
		p.log.Warnf("lrclib search failed: %v", err)
		return nil
	}

	candidates := make([]model.LyricCandidate, 0, len(records))
	for _, r := range records {
		candidates = append(candidates, r.toCandidate())
	}
	return candidates
}
