package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"lyricsync/internal/lrc"
	"lyricsync/internal/model"
	"lyricsync/internal/pipeline"
	"lyricsync/pkg/logger"
)

// searchTimeout bounds one full resolution including the audio download.
const searchTimeout = 3 * time.Minute

// resolver runs the resolution cascade for a query.
type resolver interface {
	Resolve(ctx context.Context, query string) (*pipeline.Resolution, error)
}

// assetStore guarantees a locally servable audio file for a video.
type assetStore interface {
	Ensure(ctx context.Context, video model.VideoCandidate) (string, error)
	Dir() string
}

// Server encapsulates the HTTP server and its dependencies.
type Server struct {
	resolver resolver
	store    assetStore
	parser   *lrc.Parser
	config   *ServerConfig
	log      *logger.Logger
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Port           int
	PublicBaseURL  string
	AllowedOrigins []string
	EnableShutdown bool
}

// NewServer creates a new server instance.
func NewServer(res resolver, store assetStore, parser *lrc.Parser, config *ServerConfig) *Server {
	return &Server{
		resolver: res,
		store:    store,
		parser:   parser,
		config:   config,
		log:      logger.GetLogger(),
	}
}

// respondJSON writes a JSON response.
func (s *Server) respondJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Errorf("failed to encode JSON response: %v", err)
	}
}

// respondError writes an error response.
func (s *Server) respondError(w http.ResponseWriter, statusCode int, message string) {
	s.respondJSON(w, statusCode, ErrorResponse{Error: message})
}

// handleSearch handles GET /search?q=<text>.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	query := r.URL.Query().Get("q")
	if query == "" {
		s.respondError(w, http.StatusBadRequest, "No query provided")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), searchTimeout)
	defer cancel()

	resolution, err := s.resolver.Resolve(ctx, query)
	switch {
	case errors.Is(err, pipeline.ErrMissingQuery):
		s.respondError(w, http.StatusBadRequest, "No query provided")
		return
	case errors.Is(err, pipeline.ErrNoVideoFound):
		s.respondError(w, http.StatusNotFound, "Video not found / Video no encontrado")
		return
	case err != nil:
		s.log.Errorf("resolution failed for %q: %v", query, err)
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	filename, err := s.store.Ensure(ctx, resolution.Video)
	if err != nil {
		s.log.Errorf("audio fetch failed for %s: %v", resolution.Video.ID, err)
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, SearchResponse{
		Title:    resolution.Video.Title,
		Artist:   resolution.Video.Uploader,
		Duration: resolution.Video.Duration,
		Lyrics:   s.parser.Parse(resolution.LyricsText),
		AudioURL: s.config.PublicBaseURL + "/stream/" + filename,
		CoverURL: resolution.Video.Thumbnail,
	})
}

// handleStream handles GET /stream/<filename>, serving previously fetched
// audio assets.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	name := filepath.Base(r.URL.Path[len("/stream/"):])
	if name == "" || name == "." || name == "/" {
		s.respondError(w, http.StatusBadRequest, "Filename required")
		return
	}

	path := filepath.Join(s.store.Dir(), name)
	if _, err := os.Stat(path); err != nil {
		s.respondError(w, http.StatusNotFound, "Audio asset not found")
		return
	}
	http.ServeFile(w, r, path)
}

// handleHealth handles GET /health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, HealthResponse{
		Status: "healthy",
		Time:   time.Now().Format(time.RFC3339),
	})
}

// handleShutdown handles GET /shutdown. Only registered when enabled; the
// extension host that embeds this server uses it to stop the process.
func (s *Server) handleShutdown(w http.ResponseWriter, r *http.Request) {
	s.log.Infof("shutdown requested")
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "shutting down"})
	go func() {
		time.Sleep(100 * time.Millisecond)
		os.Exit(0)
	}()
}
