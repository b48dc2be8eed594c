package main

import (
	"errors"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port          string
	RedisURL      string
	CacheDuration time.Duration

	YouTubeAPIKey  string
	YouTubeBaseURL string

	MusicBrainzURL     string
	MusicBrainzDelay   time.Duration
	MusicBrainzContact string

	CORSOrigin   string
	RateLimitRPS int
	APIBaseURL   string
}

func loadConfigFromEnv() (Config, error) {
	cfg := Config{
		Port:               getenv("PORT", "5000"),
		RedisURL:           getenv("REDIS_URL", "redis://localhost:6379"),
		CacheDuration:      time.Duration(getenvInt("CACHE_DURATION", 3600)) * time.Second,
		YouTubeAPIKey:      getenv("YOUTUBE_API", ""),
		YouTubeBaseURL:     getenv("YOUTUBE_PLAYLIST_URL", ""),
		MusicBrainzURL:     getenv("MUSICBRAINZ_URL", ""),
		MusicBrainzDelay:   getenvSeconds("MUSICBRAINZ_DELAY", time.Second),
		MusicBrainzContact: getenv("MUSICBRAINZ_API", ""),
		CORSOrigin:         getenv("CORS_ORIGINS", "*"),
		RateLimitRPS:       getenvInt("RATE_LIMIT_RPS", 20),
		APIBaseURL:         getenv("API_BASE_URL", "http://localhost:5000"),
	}

	if cfg.YouTubeAPIKey == "" {
		return Config{}, errors.New("catalog-service: YOUTUBE_API is empty, cannot query the playlist source")
	}

	return cfg, nil
}

// userAgent identifies the service to MusicBrainz, which rejects anonymous
// clients without one.
func (c Config) userAgent() string {
	ua := "Kirk Cataloger/1.0"
	if c.MusicBrainzContact != "" {
		ua += " ( " + c.MusicBrainzContact + " )"
	}
	return ua
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// getenvSeconds reads a (possibly fractional) number of seconds.
func getenvSeconds(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			return time.Duration(f * float64(time.Second))
		}
	}
	return def
}
