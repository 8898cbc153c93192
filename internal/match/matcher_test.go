package match

import (
	"testing"

	"lyricsync/internal/model"
)

func video(id, title string, duration float64) model.VideoCandidate {
	return model.VideoCandidate{ID: id, Title: title, Duration: duration}
}

func lyric(track string, duration float64, text string) model.LyricCandidate {
	return model.LyricCandidate{TrackName: track, ArtistName: "Artist", Duration: duration, SyncedLyrics: text}
}

func TestFindBestMatchPicksClosestDuration(t *testing.T) {
	m := NewMatcher(DefaultThresholds())

	videos := []model.VideoCandidate{video("v1", "Test Song", 200)}
	lyrics := []model.LyricCandidate{
		lyric("Test Song", 260, "[00:01.00] far"),
		lyric("Test Song", 201, "[00:01.00] near"),
	}

	got := m.FindBestMatch(videos, lyrics, false)
	if got == nil {
		t.Fatal("expected a match")
	}
	if got.LyricsText != "[00:01.00] near" {
		t.Errorf("picked wrong candidate: %q", got.LyricsText)
	}
	if got.DurationDelta != 1 {
		t.Errorf("DurationDelta = %f, want 1", got.DurationDelta)
	}
}

func TestFindBestMatchNoVideoDuration(t *testing.T) {
	m := NewMatcher(DefaultThresholds())

	videos := []model.VideoCandidate{video("v1", "Test Song", 0)}
	lyrics := []model.LyricCandidate{lyric("Test Song", 200, "[00:01.00] x")}

	if got := m.FindBestMatch(videos, lyrics, false); got != nil {
		t.Errorf("expected no match without video durations, got %+v", got)
	}
}

func TestFindBestMatchFiltersInvalidLyrics(t *testing.T) {
	m := NewMatcher(DefaultThresholds())

	videos := []model.VideoCandidate{video("v1", "Test Song", 200)}
	lyrics := []model.LyricCandidate{
		{TrackName: "Test Song", Duration: 200},                           // no synced lyrics
		{TrackName: "Test Song", SyncedLyrics: "[00:01.00] no duration"}, // no duration
	}

	if got := m.FindBestMatch(videos, lyrics, false); got != nil {
		t.Errorf("expected no match from invalid candidates, got %+v", got)
	}
}

func TestFindBestMatchTextBonusWidensTolerance(t *testing.T) {
	m := NewMatcher(DefaultThresholds())

	// Diff of 4s is outside the strict 2s window but inside 2+3 once the
	// track name matches the title.
	videos := []model.VideoCandidate{video("v1", "Test Song", 200)}
	matching := []model.LyricCandidate{lyric("Test Song", 204, "[00:01.00] x")}
	unrelated := []model.LyricCandidate{lyric("Completely Different Name Zzz", 204, "[00:01.00] x")}

	if got := m.FindBestMatch(videos, matching, false); got == nil {
		t.Error("expected text bonus to widen tolerance")
	}
	// The unrelated candidate still lands via the desperate pass (4 < 8),
	// but only there: tighten the desperate threshold to isolate the
	// primary pass.
	tight := DefaultThresholds()
	tight.Desperate = 1.0
	if got := NewMatcher(tight).FindBestMatch(videos, unrelated, false); got != nil {
		t.Errorf("expected no primary match without text bonus, got %+v", got)
	}
}

func TestFindBestMatchRelaxedMode(t *testing.T) {
	tight := DefaultThresholds()
	tight.Desperate = 1.0
	tight.DesperateRelaxed = 1.0
	m := NewMatcher(tight)

	videos := []model.VideoCandidate{video("v1", "Test Song", 200)}
	lyrics := []model.LyricCandidate{lyric("Unrelated Zzz Qqq", 204, "[00:01.00] x")}

	if got := m.FindBestMatch(videos, lyrics, false); got != nil {
		t.Errorf("strict mode should reject a 4s diff without bonus, got %+v", got)
	}
	if got := m.FindBestMatch(videos, lyrics, true); got == nil {
		t.Error("relaxed mode should accept a 4s diff")
	}
}

func TestDesperateFallbackFillsEmptyResult(t *testing.T) {
	m := NewMatcher(DefaultThresholds())

	// 7s diff with no text relation: rejected by the primary pass but
	// inside the 8s desperate window.
	videos := []model.VideoCandidate{video("v1", "Some Upload", 200)}
	lyrics := []model.LyricCandidate{lyric("Unrelated Zzz Qqq", 207, "[00:01.00] x")}

	got := m.FindBestMatch(videos, lyrics, false)
	if got == nil {
		t.Fatal("expected desperate fallback to produce a match")
	}
	if got.DurationDelta != 7 {
		t.Errorf("DurationDelta = %f, want 7", got.DurationDelta)
	}
}

func TestDesperateFallbackNeverOverridesPrimary(t *testing.T) {
	m := NewMatcher(DefaultThresholds())

	videos := []model.VideoCandidate{
		video("primary", "Test Song", 200),
		video("closer", "Other Upload", 300),
	}
	lyrics := []model.LyricCandidate{
		lyric("Test Song", 201, "[00:01.00] primary"),
		// 5s off the second video: inside the desperate window but not
		// the primary one. The primary winner must stand.
		lyric("Unrelated Zzz Qqq", 305, "[00:01.00] desperate"),
	}

	got := m.FindBestMatch(videos, lyrics, false)
	if got == nil {
		t.Fatal("expected a match")
	}
	if got.Video.ID != "primary" || got.LyricsText != "[00:01.00] primary" {
		t.Errorf("desperate pass overrode the primary winner: %+v", got)
	}
}

func TestRunningBestKeepsFirstOnTie(t *testing.T) {
	m := NewMatcher(DefaultThresholds())

	videos := []model.VideoCandidate{video("v1", "Test Song", 200)}
	lyrics := []model.LyricCandidate{
		lyric("Test Song", 201, "[00:01.00] first"),
		lyric("Test Song", 201, "[00:01.00] second"),
	}

	got := m.FindBestMatch(videos, lyrics, false)
	if got == nil {
		t.Fatal("expected a match")
	}
	if got.LyricsText != "[00:01.00] first" {
		t.Errorf("tie should keep the first eligible pair, got %q", got.LyricsText)
	}
}
