// Package netease queries the Netease Cloud Music API, the secondary
// lyrics fallback. Coverage for non-Chinese catalogs is spotty, so its
// results are only consumed in relaxed matching mode.
package netease

import (
	"context"
	"fmt"
	"net/url"

	"lyricsync/internal/model"
	"lyricsync/internal/provider"
	"lyricsync/pkg/logger"
)

const defaultBaseURL = "https://music.163.com"

// searchLimit bounds the per-query candidate pool; each hit costs an
// extra lyric request.
const searchLimit = 5

type searchResponse struct {
	Result struct {
		Songs []struct {
			ID      int64  `json:"id"`
			Name    string `json:"name"`
			Artists []struct {
				Name string `json:"name"`
			} `json:"artists"`
			Duration float64 `json:"duration"` // milliseconds
		} `json:"songs"`
	} `json:"result"`
}

type lyricResponse struct {
	LRC struct {
		Lyric string `json:"lyric"`
	} `json:"lrc"`
}

// Provider is the Netease adapter.
type Provider struct {
	client  *provider.Client
	baseURL string
	log     *logger.Logger
}

// New returns a Netease provider using the shared client.
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

// Search finds songs for the query and fetches synced lyrics for each hit.
// Any failure, on the search or on an individual lyric fetch, degrades to
// fewer (possibly zero) candidates.
func (p *Provider) Search(ctx context.Context, query string) []model.LyricCandidate {
	endpoint := fmt.Sprintf("%s/api/search/get?s=%s&type=1&limit=%d",
		p.baseURL, url.QueryEscape(query), searchLimit)

	var sr searchResponse
	if err := p.client.GetJSON(ctx, endpoint, &sr); err != nil {
		p.log.Warnf("netease search failed: %v", err)
		return nil
	}

	var candidates []model.LyricCandidate
	for _, song := range sr.Result.Songs {
		lyric := p.fetchLyric(ctx, song.ID)
		if lyric == "" {
			continue
		}

		artist := ""
		if len(song.Artists) > 0 {
			artist = song.Artists[0].Name
		}
		candidates = append(candidates, model.LyricCandidate{
			TrackName:    song.Name,
			ArtistName:   artist,
			Duration:     song.Duration / 1000,
			SyncedLyrics: lyric,
		})
	}
	return candidates
}

func (p *Provider) fetchLyric(ctx context.Context, songID int64) string {
	endpoint := fmt.Sprintf("%s/api/song/lyric?id=%d&lv=1&kv=1&tv=-1", p.baseURL, songID)

	var lr lyricResponse
	if err := p.client.GetJSON(ctx, endpoint, &lr); err != nil {
		p.log.Debugf("netease lyric fetch failed for song %d: %v", songID, err)
		return ""
	}
	return lr.LRC.Lyric
}
