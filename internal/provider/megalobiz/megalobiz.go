// Package megalobiz scrapes megalobiz.com search listings, the tertiary
// lyrics fallback. There is no API; candidates are pulled out of the HTML
// with goquery and the track duration is recovered from the [mm:ss.xx]
// suffix Megalobiz appends to entry names.
package megalobiz

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"lyricsync/internal/model"
	"lyricsync/internal/provider"
	"lyricsync/pkg/logger"
)

const defaultBaseURL = "https://www.megalobiz.com"

// maxEntries caps how many detail pages one search is allowed to fetch.
const maxEntries = 5

// durationSuffix matches the "[03:45.12]" tail of a listing entry name.
var durationSuffix = regexp.MustCompile(`\[(\d{1,2}):(\d{2})(?:\.\d{1,3})?\]\s*$`)

// Provider is the Megalobiz adapter.
type Provider struct {
	client  *provider.Client
	baseURL string
	log     *logger.Logger
}

// New returns a Megalobiz provider using the shared client.
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

// Search scrapes the search listing and fetches LRC text from each entry's
// detail page. Any failure degrades to fewer (possibly zero) candidates.
func (p *Provider) Search(ctx context.Context, query string) []model.LyricCandidate {
	endpoint := fmt.Sprintf("%s/search/all?qry=%s", p.baseURL, url.QueryEscape(query))

	html, err := p.client.GetString(ctx, endpoint)
	if err != nil {
		p.log.Warnf("megalobiz search failed: %v", err)
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		p.log.Warnf("megalobiz listing parse failed: %v", err)
		return nil
	}

	var candidates []model.LyricCandidate
	doc.Find("a.entity_name").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, ok := sel.Attr("href")
		if !ok {
			return true
		}

		name := strings.TrimSpace(sel.Text())
		duration := parseDurationSuffix(name)
		track, artist := splitEntryName(durationSuffix.ReplaceAllString(name, ""))

		lyrics := p.fetchLyrics(ctx, href)
		if lyrics == "" {
			return true
		}

		candidates = append(candidates, model.LyricCandidate{
			TrackName:    track,
			ArtistName:   artist,
			Duration:     duration,
			SyncedLyrics: lyrics,
		})
		return len(candidates) < maxEntries
	})
	return candidates
}

func (p *Provider) fetchLyrics(ctx context.Context, href string) string {
	html, err := p.client.GetString(ctx, p.baseURL+href)
	if err != nil {
		p.log.Debugf("megalobiz detail fetch failed for %s: %v", href, err)
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("div.lyrics_details span[id^=lrc_]").First().Text())
}

// parseDurationSuffix extracts the duration in seconds from an entry name,
// or 0 when the name carries none.
func parseDurationSuffix(name string) float64 {
	m := durationSuffix.FindStringSubmatch(name)
	if m == nil {
		return 0
	}
	minutes, _ := strconv.Atoi(m[1])
	seconds, _ := strconv.Atoi(m[2])
	return float64(minutes*60 + seconds)
}

// splitEntryName splits "Artist - Track" listing names; when there is no
// separator the whole name is the track.
func splitEntryName(name string) (track, artist string) {
	name = strings.TrimSpace(name)
	if parts := strings.SplitN(name, " - ", 2); len(parts) == 2 {
		return strings.TrimSpace(parts[1]), strings.TrimSpace(parts[0])
	}
	return name, ""
}
