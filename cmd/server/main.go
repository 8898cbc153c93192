package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/lrstanley/go-ytdlp"

	"lyricsync/internal/config"
	"lyricsync/internal/fetch"
	"lyricsync/internal/lrc"
	"lyricsync/internal/match"
	"lyricsync/internal/pipeline"
	"lyricsync/internal/provider"
	"lyricsync/internal/provider/lrclib"
	"lyricsync/internal/provider/megalobiz"
	"lyricsync/internal/provider/netease"
	"lyricsync/internal/provider/youtube"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	flag.IntVar(&cfg.Port, "port", cfg.Port, "HTTP server port")
	flag.StringVar(&cfg.DownloadDir, "downloads", cfg.DownloadDir, "Directory for fetched audio assets")
	flag.StringVar(&cfg.PublicBaseURL, "base-url", cfg.PublicBaseURL, "Public base URL used in audio links")
	flag.BoolVar(&cfg.EnableShutdown, "enable-shutdown", cfg.EnableShutdown, "Expose the /shutdown endpoint")
	flag.Parse()

	// Fetch a yt-dlp binary if none is installed.
	installCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	ytdlp.MustInstall(installCtx, nil)
	cancel()

	client := provider.NewClient(0)
	primary := lrclib.New(client)

	resolver := pipeline.NewResolver(
		youtube.New(),
		primary,
		primary,
		netease.New(client),
		megalobiz.New(client),
		match.NewMatcher(match.DefaultThresholds()),
	)

	store, err := fetch.NewStore(cfg.DownloadDir, client)
	if err != nil {
		log.Fatalf("Failed to create audio store: %v", err)
	}

	server := NewServer(resolver, store, &lrc.Parser{Offset: cfg.LyricOffset}, &ServerConfig{
		Port:           cfg.Port,
		PublicBaseURL:  cfg.PublicBaseURL,
		AllowedOrigins: cfg.AllowedOrigins,
		EnableShutdown: cfg.EnableShutdown,
	})
	if err := server.Start(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
