// Package pipeline drives the multi-stage fallback cascade that turns a
// free-text song query into one (video, lyrics) pair.
//
// The cascade runs a fixed sequence of stages over a shared resolution
// state: a concurrent broad fetch, a refined lyrics re-query, a strict
// matching pass, a validation/MV-avoidance pass, a metadata-driven retry,
// and two relaxed fallback providers. Later stages only run while no pair
// has been selected; no stage ever retries.
package pipeline

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"lyricsync/internal/lrc"
	"lyricsync/internal/match"
	"lyricsync/internal/model"
	"lyricsync/internal/provider"
	"lyricsync/pkg/logger"
)

var (
	// ErrMissingQuery is returned for an empty query string.
	ErrMissingQuery = errors.New("no query provided")
	// ErrNoVideoFound is returned when the video search yields nothing;
	// without at least one video there is nothing to resolve.
	ErrNoVideoFound = errors.New("no video found for query")
)

const (
	broadVideoLimit = 15
	audioBiasLimit  = 5
	metadataVideos  = 3
	fetchWorkers    = 3

	// Stage 1.1 tuning: a selected pair whose durations disagree by more
	// than mismatchLimit seconds is suspect, and an audio-biased
	// replacement is adopted per the swap rules below.
	mismatchLimit    = 8.0
	mvSwapLimit      = 5.0
	mismatchSwapMax  = 8.0
	mismatchSwapGive = 5.0
)

// Resolution is the terminal outcome of the cascade. The pipeline always
// produces a video; LyricsText degrades to the placeholder blob when no
// provider matched.
type Resolution struct {
	Video       model.VideoCandidate
	LyricsText  string
	Placeholder bool
}

// Resolver orchestrates the provider calls and matching passes.
type Resolver struct {
	videos     provider.VideoSearcher
	primary    provider.LyricsSearcher
	structured provider.StructuredLyricsSearcher
	secondary  provider.LyricsSearcher
	tertiary   provider.LyricsSearcher
	matcher    *match.Matcher
	log        *logger.Logger
}

// NewResolver wires the resolver. primary and structured are normally the
// same provider exposed through both contracts.
func NewResolver(
	videos provider.VideoSearcher,
	primary provider.LyricsSearcher,
	structured provider.StructuredLyricsSearcher,
	secondary provider.LyricsSearcher,
	tertiary provider.LyricsSearcher,
	matcher *match.Matcher,
) *Resolver {
	return &Resolver{
		videos:     videos,
		primary:    primary,
		structured: structured,
		secondary:  secondary,
		tertiary:   tertiary,
		matcher:    matcher,
		log:        logger.GetLogger(),
	}
}

// state is the mutable resolution state threaded through the stages.
// Stages run strictly sequentially after the initial fetch, so no locking
// is needed.
type state struct {
	id       string
	query    string
	videos   []model.VideoCandidate
	pool     []model.LyricCandidate
	selected *model.MatchResult
}

// Resolve runs the full cascade for a query.
func (r *Resolver) Resolve(ctx context.Context, query string) (*Resolution, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrMissingQuery
	}

	st := &state{id: uuid.NewString()[:8], query: query}
	r.log.Infof("[%s] resolving %q", st.id, query)

	if err := r.gather(ctx, st); err != nil {
		return nil, err
	}
	r.refineQuery(ctx, st)
	r.matchBroad(st)
	r.validateSelection(ctx, st)
	r.retryWithMetadata(ctx, st)
	r.fallbackProvider(ctx, st, r.secondary, "secondary")
	r.fallbackProvider(ctx, st, r.tertiary, "tertiary")
	return r.finalize(st), nil
}

// gather is Stage 0: the broad video and lyrics searches, issued
// concurrently through a small bounded worker group. Each side tolerates
// provider failure; only an empty video list is fatal.
func (r *Resolver) gather(ctx context.Context, st *state) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchWorkers)

	g.Go(func() error {
		st.videos = r.videos.Search(gctx, st.query, broadVideoLimit)
		return nil
	})
	g.Go(func() error {
		st.pool = r.primary.Search(gctx, st.query)
		return nil
	})
	_ = g.Wait()

	if len(st.videos) == 0 {
		return ErrNoVideoFound
	}
	r.log.Debugf("[%s] stage 0: %d videos, %d lyric candidates", st.id, len(st.videos), len(st.pool))
	return nil
}

// refineQuery is Stage 0.5: re-query the primary provider with the
// normalized top video title, which corrects typos in the user query. New
// results are appended without deduplication; duplicates only cost
// comparison cycles.
func (r *Resolver) refineQuery(ctx context.Context, st *state) {
	refined := match.NormalizeTitle(st.videos[0].Title)
	if refined == "" {
		return
	}
	if extra := r.primary.Search(ctx, refined); len(extra) > 0 {
		st.pool = append(st.pool, extra...)
		r.log.Debugf("[%s] stage 0.5: refined query %q added %d candidates", st.id, refined, len(extra))
	}
}

// matchBroad is Stage 1: a strict pass over all videos and the full pool.
func (r *Resolver) matchBroad(st *state) {
	st.selected = r.matcher.FindBestMatch(st.videos, st.pool, false)
	if st.selected != nil {
		r.log.Infof("[%s] stage 1: matched %q (delta %.1fs)", st.id, st.selected.Video.Title, st.selected.DurationDelta)
	}
}

// validateSelection is Stage 1.1: duration-mismatch and music-video
// avoidance. MVs often hide intros and outros that throw the sync off, so
// when the winner looks like one (or its duration disagrees with the
// lyric's), an audio-biased re-search gets a chance to replace it.
func (r *Resolver) validateSelection(ctx context.Context, st *state) {
	if st.selected == nil {
		return
	}

	lyricObj := st.lookupLyric(st.selected.LyricsText)
	if lyricObj == nil {
		return
	}

	rawTitle := strings.ToLower(st.selected.Video.Title)
	mismatch := math.Abs(st.selected.Video.Duration-lyricObj.Duration) > mismatchLimit
	isMV := strings.Contains(rawTitle, "official") ||
		strings.Contains(rawTitle, "mv") ||
		strings.Contains(rawTitle, "m/v")
	if !mismatch && !isMV {
		return
	}

	reason := "music video detected"
	if mismatch {
		reason = "duration mismatch"
	}
	r.log.Infof("[%s] stage 1.1: %s, trying audio-biased search", st.id, reason)

	audioCandidates := r.videos.Search(ctx, st.query+" audio", audioBiasLimit)
	alternate := r.matcher.FindBestMatch(audioCandidates, []model.LyricCandidate{*lyricObj}, true)
	if alternate == nil {
		return
	}

	// An MV is replaced by any decent audio upload; a plain mismatch only
	// by one that matches at least comparably well.
	swap := (isMV && alternate.DurationDelta < mvSwapLimit) ||
		(alternate.DurationDelta < mismatchSwapMax &&
			alternate.DurationDelta < st.selected.DurationDelta+mismatchSwapGive)
	if swap {
		r.log.Infof("[%s] stage 1.1: swapped to %q (delta %.1fs)", st.id, alternate.Video.Title, alternate.DurationDelta)
		st.selected = alternate
	}
}

// retryWithMetadata is Stage 1.5: for each of the top videos, build
// (track, artist) guesses and try the precise then the structured lookup
// against that single video. The guess order is deliberate and
// load-bearing: provider metadata first, then the hyphen split in both
// orders, then the whole title with the provider artist.
func (r *Resolver) retryWithMetadata(ctx context.Context, st *state) {
	if st.selected != nil {
		return
	}

	limit := metadataVideos
	if limit > len(st.videos) {
		limit = len(st.videos)
	}

	for _, video := range st.videos[:limit] {
		if st.selected != nil {
			return
		}

		cleanTitle := match.NormalizeTitle(video.Title)
		metaArtist := video.Artist
		if metaArtist == "" {
			metaArtist = video.Uploader
		}

		type pair struct{ track, artist string }
		var pairs []pair
		if video.Track != "" && metaArtist != "" {
			pairs = append(pairs, pair{video.Track, metaArtist})
		}
		if parts := strings.Split(cleanTitle, "-"); len(parts) >= 2 {
			pairs = append(pairs,
				pair{strings.TrimSpace(parts[1]), strings.TrimSpace(parts[0])},
				pair{strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])},
			)
		}
		pairs = append(pairs, pair{cleanTitle, metaArtist})

		single := []model.VideoCandidate{video}
		for _, p := range pairs {
			if p.track == "" || p.artist == "" {
				continue
			}

			precise := r.structured.Get(ctx, p.track, p.artist, video.Duration)
			if st.selected = r.matcher.FindBestMatch(single, precise, false); st.selected != nil {
				r.log.Infof("[%s] stage 1.5: precise lookup matched %q / %q", st.id, p.track, p.artist)
				break
			}

			loose := r.structured.SearchStructured(ctx, p.track, p.artist)
			if st.selected = r.matcher.FindBestMatch(single, loose, false); st.selected != nil {
				r.log.Infof("[%s] stage 1.5: structured lookup matched %q / %q", st.id, p.track, p.artist)
				break
			}
		}
	}
}

// fallbackProvider is Stage 2 and Stage 3: a relaxed pass over all videos
// against a lower-confidence lyrics source.
func (r *Resolver) fallbackProvider(ctx context.Context, st *state, source provider.LyricsSearcher, label string) {
	if st.selected != nil {
		return
	}

	candidates := source.Search(ctx, st.query)
	if len(candidates) == 0 {
		return
	}

	if st.selected = r.matcher.FindBestMatch(st.videos, candidates, true); st.selected != nil {
		r.log.Infof("[%s] %s fallback matched %q (delta %.1fs)", st.id, label, st.selected.Video.Title, st.selected.DurationDelta)
	}
}

// finalize always terminates with a video: the top broad result when no
// pair was selected, and the placeholder lyric blob when no lyrics were.
func (r *Resolver) finalize(st *state) *Resolution {
	if st.selected != nil {
		return &Resolution{
			Video:      st.selected.Video,
			LyricsText: st.selected.LyricsText,
		}
	}

	r.log.Infof("[%s] no lyrics matched, serving placeholder", st.id)
	return &Resolution{
		Video:       st.videos[0],
		LyricsText:  lrc.Placeholder,
		Placeholder: true,
	}
}

// lookupLyric re-derives the lyric candidate that produced the selected
// text, so later stages can reuse its metadata.
func (st *state) lookupLyric(text string) *model.LyricCandidate {
	for i := range st.pool {
		if st.pool[i].SyncedLyrics == text {
			return &st.pool[i]
		}
	}
	return nil
}
