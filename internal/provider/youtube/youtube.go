// Package youtube searches YouTube through yt-dlp's ytsearch extractor.
package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lrstanley/go-ytdlp"

	"lyricsync/internal/model"
	"lyricsync/pkg/logger"
)

// searchEntry mirrors the fields of one yt-dlp search result we care about.
type searchEntry struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Uploader   string  `json:"uploader"`
	Channel    string  `json:"channel"`
	Artist     string  `json:"artist"`
	Track      string  `json:"track"`
	Duration   float64 `json:"duration"`
	Thumbnail  string  `json:"thumbnail"`
	WebpageURL string  `json:"webpage_url"`
}

type searchResult struct {
	Entries []searchEntry `json:"entries"`
}

// Provider searches YouTube via the yt-dlp binary.
type Provider struct {
	log *logger.Logger
}

// New returns a YouTube search provider.
func New() *Provider {
	return &Provider{log: logger.GetLogger()}
}

// Search runs a ytsearch query and maps the entries to video candidates.
// Any yt-dlp failure yields an empty list.
func (p *Provider) Search(ctx context.Context, query string, limit int) []model.VideoCandidate {
	cmd := ytdlp.New().
		NoWarnings().
		NoPlaylist().
		DumpSingleJSON()

	result, err := cmd.Run(ctx, fmt.Sprintf("ytsearch%d:%s", limit, query))
	if err != nil {
		p.log.Warnf("youtube search failed for %q: %v", query, err)
		return nil
	}

	var sr searchResult
	if err := json.Unmarshal([]byte(result.Stdout), &sr); err != nil {
		p.log.Warnf("youtube search output parse failed: %v", err)
		return nil
	}

	candidates := make([]model.VideoCandidate, 0, len(sr.Entries))
	for _, e := range sr.Entries {
		if e.ID == "" {
			continue
		}
		candidates = append(candidates, model.VideoCandidate{
			ID:         e.ID,
			Title:      e.Title,
			Uploader:   pickUploader(e),
			Artist:     e.Artist,
			Track:      e.Track,
			Duration:   e.Duration,
			Thumbnail:  e.Thumbnail,
			WebpageURL: e.WebpageURL,
		})
	}
	return candidates
}

// pickUploader prefers artist metadata over channel names, matching what a
// listener would expect to see as the display artist.
func pickUploader(e searchEntry) string {
	for _, s := range []string{e.Artist, e.Channel, e.Uploader} {
		if strings.TrimSpace(s) != "" {
			return s
		}
	}
	return "Unknown Artist"
}
