package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"lyricsync/internal/lrc"
	"lyricsync/internal/match"
	"lyricsync/internal/model"
)

type fakeVideos struct {
	results map[string][]model.VideoCandidate
	queries []string
}

func (f *fakeVideos) Search(_ context.Context, query string, _ int) []model.VideoCandidate {
	f.queries = append(f.queries, query)
	return f.results[query]
}

type fakeLyrics struct {
	results map[string][]model.LyricCandidate
	queries []string
}

func (f *fakeLyrics) Search(_ context.Context, query string) []model.LyricCandidate {
	f.queries = append(f.queries, query)
	return f.results[query]
}

type structuredCall struct {
	track, artist string
}

type fakeStructured struct {
	precise      []model.LyricCandidate
	loose        []model.LyricCandidate
	preciseCalls []structuredCall
	looseCalls   []structuredCall
}

func (f *fakeStructured) Get(_ context.Context, track, artist string, _ float64) []model.LyricCandidate {
	f.preciseCalls = append(f.preciseCalls, structuredCall{track, artist})
	return f.precise
}

func (f *fakeStructured) SearchStructured(_ context.Context, track, artist string) []model.LyricCandidate {
	f.looseCalls = append(f.looseCalls, structuredCall{track, artist})
	return f.loose
}

func newResolver(videos *fakeVideos, primary *fakeLyrics, structured *fakeStructured, secondary, tertiary *fakeLyrics) *Resolver {
	if structured == nil {
		structured = &fakeStructured{}
	}
	if secondary == nil {
		secondary = &fakeLyrics{}
	}
	if tertiary == nil {
		tertiary = &fakeLyrics{}
	}
	return NewResolver(videos, primary, structured, secondary, tertiary, match.NewMatcher(match.DefaultThresholds()))
}

func TestResolveMissingQuery(t *testing.T) {
	r := newResolver(&fakeVideos{}, &fakeLyrics{}, nil, nil, nil)
	if _, err := r.Resolve(context.Background(), "   "); !errors.Is(err, ErrMissingQuery) {
		t.Fatalf("expected ErrMissingQuery, got %v", err)
	}
}

func TestResolveNoVideoFound(t *testing.T) {
	r := newResolver(&fakeVideos{}, &fakeLyrics{}, nil, nil, nil)
	if _, err := r.Resolve(context.Background(), "anything"); !errors.Is(err, ErrNoVideoFound) {
		t.Fatalf("expected ErrNoVideoFound, got %v", err)
	}
}

func TestResolveBroadMatch(t *testing.T) {
	videos := &fakeVideos{results: map[string][]model.VideoCandidate{
		"Bohemian Rhapsody": {
			{ID: "v1", Title: "Queen - Bohemian Rhapsody", Uploader: "Queen", Duration: 354},
		},
	}}
	primary := &fakeLyrics{results: map[string][]model.LyricCandidate{
		"Bohemian Rhapsody": {
			{TrackName: "Bohemian Rhapsody", ArtistName: "Queen", Duration: 355, SyncedLyrics: "[00:01.00] Is this the real life"},
		},
	}}

	r := newResolver(videos, primary, nil, nil, nil)
	got, err := r.Resolve(context.Background(), "Bohemian Rhapsody")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got.Video.ID != "v1" {
		t.Errorf("video = %+v", got.Video)
	}
	if got.Placeholder || !strings.Contains(got.LyricsText, "real life") {
		t.Errorf("unexpected lyrics: %q (placeholder=%v)", got.LyricsText, got.Placeholder)
	}
}

func TestResolveRefinedQueryCorrectsTypos(t *testing.T) {
	// The misspelled query finds the right video; only a re-search with
	// the normalized video title surfaces the lyric candidate.
	videos := &fakeVideos{results: map[string][]model.VideoCandidate{
		"bohemian rapsody": {
			{ID: "v1", Title: "Queen - Bohemian Rhapsody (Official Video)", Duration: 354},
		},
	}}
	primary := &fakeLyrics{results: map[string][]model.LyricCandidate{
		"queen bohemian rhapsody": {
			{TrackName: "Bohemian Rhapsody", ArtistName: "Queen", Duration: 354, SyncedLyrics: "[00:01.00] found"},
		},
	}}

	r := newResolver(videos, primary, nil, nil, nil)
	got, err := r.Resolve(context.Background(), "bohemian rapsody")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got.Placeholder {
		t.Fatal("expected refined query to produce a match")
	}
	if len(primary.queries) != 2 || primary.queries[1] != "queen bohemian rhapsody" {
		t.Errorf("primary queries = %v", primary.queries)
	}
}

func TestResolveSwapsMusicVideoForAudio(t *testing.T) {
	videos := &fakeVideos{results: map[string][]model.VideoCandidate{
		"some song": {
			{ID: "mv", Title: "Some Song (Official MV)", Duration: 354},
		},
		"some song audio": {
			{ID: "aud", Title: "Some Song (Audio)", Duration: 354.5},
		},
	}}
	primary := &fakeLyrics{results: map[string][]model.LyricCandidate{
		"some song": {
			{TrackName: "Some Song", ArtistName: "Someone", Duration: 354, SyncedLyrics: "[00:01.00] line"},
		},
	}}

	r := newResolver(videos, primary, nil, nil, nil)
	got, err := r.Resolve(context.Background(), "some song")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got.Video.ID != "aud" {
		t.Errorf("expected the audio upload to replace the MV, got %+v", got.Video)
	}
	if len(videos.queries) != 2 || videos.queries[1] != "some song audio" {
		t.Errorf("video queries = %v", videos.queries)
	}
}

func TestResolveKeepsWinnerWhenAudioIsWorse(t *testing.T) {
	videos := &fakeVideos{results: map[string][]model.VideoCandidate{
		"some song": {
			{ID: "mv", Title: "Some Song (Official MV)", Duration: 354},
		},
		"some song audio": {
			// 14s off the lyric duration: outside every swap rule.
			{ID: "aud", Title: "Some Song (Audio)", Duration: 368},
		},
	}}
	primary := &fakeLyrics{results: map[string][]model.LyricCandidate{
		"some song": {
			{TrackName: "Some Song", ArtistName: "Someone", Duration: 354, SyncedLyrics: "[00:01.00] line"},
		},
	}}

	r := newResolver(videos, primary, nil, nil, nil)
	got, err := r.Resolve(context.Background(), "some song")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got.Video.ID != "mv" {
		t.Errorf("expected the original winner to stand, got %+v", got.Video)
	}
}

func TestResolveMetadataRetry(t *testing.T) {
	videos := &fakeVideos{results: map[string][]model.VideoCandidate{
		"obscure song": {
			{ID: "v1", Title: "Obscure Song Upload", Track: "Obscure Song", Artist: "Obscure Artist", Duration: 200},
		},
	}}
	primary := &fakeLyrics{} // broad search finds nothing
	structured := &fakeStructured{
		precise: []model.LyricCandidate{
			{TrackName: "Obscure Song", ArtistName: "Obscure Artist", Duration: 201, SyncedLyrics: "[00:01.00] precise hit"},
		},
	}

	r := newResolver(videos, primary, structured, nil, nil)
	got, err := r.Resolve(context.Background(), "obscure song")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got.Placeholder || got.LyricsText != "[00:01.00] precise hit" {
		t.Errorf("unexpected resolution: %+v", got)
	}
	if len(structured.preciseCalls) == 0 {
		t.Fatal("expected a precise lookup")
	}
	// Provider metadata is the first guess tried.
	if structured.preciseCalls[0] != (structuredCall{"Obscure Song", "Obscure Artist"}) {
		t.Errorf("first precise call = %+v", structured.preciseCalls[0])
	}
}

func TestResolveSecondaryThenTertiaryFallback(t *testing.T) {
	videos := &fakeVideos{results: map[string][]model.VideoCandidate{
		"rare song": {
			{ID: "v1", Title: "Rare Song", Duration: 200},
		},
	}}
	tertiary := &fakeLyrics{results: map[string][]model.LyricCandidate{
		"rare song": {
			{TrackName: "Rare Song", ArtistName: "Nobody", Duration: 203, SyncedLyrics: "[00:01.00] tertiary hit"},
		},
	}}
	secondary := &fakeLyrics{}

	r := newResolver(videos, &fakeLyrics{}, nil, secondary, tertiary)
	got, err := r.Resolve(context.Background(), "rare song")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got.LyricsText != "[00:01.00] tertiary hit" {
		t.Errorf("unexpected lyrics: %q", got.LyricsText)
	}
	if len(secondary.queries) != 1 {
		t.Errorf("secondary should have been tried first, queries = %v", secondary.queries)
	}
}

func TestResolveGibberishFallsBackToPlaceholder(t *testing.T) {
	videos := &fakeVideos{results: map[string][]model.VideoCandidate{
		"asdkjqwoieqwoe12309": {
			{ID: "v1", Title: "Some Unrelated Upload", Duration: 431},
		},
	}}

	r := newResolver(videos, &fakeLyrics{}, nil, nil, nil)
	got, err := r.Resolve(context.Background(), "asdkjqwoieqwoe12309")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if !got.Placeholder {
		t.Fatal("expected placeholder resolution")
	}
	if got.Video.ID != "v1" {
		t.Errorf("expected the first video unconditionally, got %+v", got.Video)
	}
	if !strings.Contains(got.LyricsText, "Lyrics not yet available") {
		t.Errorf("placeholder text missing: %q", got.LyricsText)
	}
	if lines := lrc.NewParser().Parse(got.LyricsText); len(lines) == 0 {
		t.Error("placeholder should parse as valid LRC")
	}
}
