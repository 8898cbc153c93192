// Package fetch maintains the on-disk audio asset store, keyed by video
// id. Assets are downloaded once and reused across requests; there is no
// eviction.
package fetch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bogem/id3v2"
	"github.com/gofrs/flock"
	"github.com/lrstanley/go-ytdlp"

	"lyricsync/internal/model"
	"lyricsync/internal/provider"
	"lyricsync/pkg/logger"
)

// Downloader fetches the audio of a video into dir as <id>.mp3.
type Downloader func(ctx context.Context, webpageURL, dir string) error

// Store guarantees a locally servable mp3 exists for a video id. Concurrent
// requests for the same id are serialized with a per-id file lock, so there
// is at most one writer per asset.
type Store struct {
	dir      string
	client   *provider.Client
	download Downloader
	log      *logger.Logger
}

// NewStore creates the asset directory if needed and returns the store.
func NewStore(dir string, client *provider.Client) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create asset dir: %w", err)
	}
	return &Store{
		dir:      dir,
		client:   client,
		download: downloadAudio,
		log:      logger.GetLogger(),
	}, nil
}

// Dir returns the asset directory, used by the stream handler.
func (s *Store) Dir() string {
	return s.dir
}

// Filename returns the asset filename for a video id.
func (s *Store) Filename(videoID string) string {
	return videoID + ".mp3"
}

// Ensure makes sure the audio asset for the video exists, downloading and
// tagging it on the first request. Idempotent: an existing asset
// short-circuits the download entirely.
func (s *Store) Ensure(ctx context.Context, video model.VideoCandidate) (string, error) {
	filename := s.Filename(video.ID)
	path := filepath.Join(s.dir, filename)

	if _, err := os.Stat(path); err == nil {
		return filename, nil
	}

	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return "", fmt.Errorf("acquire download lock for %s: %w", video.ID, err)
	}
	defer func() {
		_ = lock.Unlock()
		_ = os.Remove(lock.Path())
	}()

	// Another request may have finished the download while we waited.
	if _, err := os.Stat(path); err == nil {
		return filename, nil
	}

	s.log.Infof("downloading audio for %s (%s)", video.ID, video.Title)
	if err := s.download(ctx, video.WebpageURL, s.dir); err != nil {
		return "", fmt.Errorf("download %s: %w", video.ID, err)
	}
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("download %s: asset missing after download", video.ID)
	}

	// Tagging is best-effort; the asset is already playable.
	if err := s.tag(ctx, path, video); err != nil {
		s.log.Warnf("tagging %s failed: %v", filename, err)
	}
	return filename, nil
}

// tag writes title, artist and cover art into the mp3's ID3 frames.
func (s *Store) tag(ctx context.Context, path string, video model.VideoCandidate) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return err
	}
	defer tag.Close()

	tag.SetTitle(video.Title)
	tag.SetArtist(video.Uploader)

	if video.Thumbnail != "" {
		if art, err := s.client.Get(ctx, video.Thumbnail); err == nil {
			tag.AddAttachedPicture(id3v2.PictureFrame{
				Encoding:    id3v2.EncodingUTF8,
				MimeType:    "image/jpeg",
				PictureType: id3v2.PTFrontCover,
				Description: "Front cover",
				Picture:     art,
			})
		} else {
			s.log.Debugf("cover fetch failed for %s: %v", video.ID, err)
		}
	}

	return tag.Save()
}

// downloadAudio pulls the best audio stream and transcodes it to 128K mp3
// named after the video id.
func downloadAudio(ctx context.Context, webpageURL, dir string) error {
	cmd := ytdlp.New().
		NoWarnings().
		NoPlaylist().
		Format("bestaudio/best").
		ExtractAudio().
		AudioFormat("mp3").
		AudioQuality("128K").
		Output(filepath.Join(dir, "%(id)s.%(ext)s"))

	_, err := cmd.Run(ctx, webpageURL)
	return err
}
