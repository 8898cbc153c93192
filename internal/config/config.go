// Package config loads server configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds the server settings.
type Config struct {
	Port           int
	DownloadDir    string
	PublicBaseURL  string
	AllowedOrigins []string
	EnableShutdown bool
	LyricOffset    float64
}

// Load reads configuration from the environment. A .env file in the
// working directory is merged in first; missing keys fall back to
// defaults suitable for local use.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:           5001,
		DownloadDir:    "downloads",
		PublicBaseURL:  "http://localhost:5001",
		AllowedOrigins: []string{"*"},
		LyricOffset:    0.1,
	}

	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		cfg.Port = port
	}
	if v := os.Getenv("DOWNLOAD_DIR"); v != "" {
		cfg.DownloadDir = v
	}
	if v := os.Getenv("PUBLIC_BASE_URL"); v != "" {
		cfg.PublicBaseURL = strings.TrimRight(v, "/")
	}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		origins := strings.Split(v, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		cfg.AllowedOrigins = origins
	}
	if v := os.Getenv("ENABLE_SHUTDOWN"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid ENABLE_SHUTDOWN %q: %w", v, err)
		}
		cfg.EnableShutdown = enabled
	}
	if v := os.Getenv("LYRIC_OFFSET"); v != "" {
		offset, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid LYRIC_OFFSET %q: %w", v, err)
		}
		cfg.LyricOffset = offset
	}

	return cfg, nil
}
