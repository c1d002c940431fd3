// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	APIURL         string
	ListenAddr     string
	DBPath         string
	RequestTimeout time.Duration
	HTTPCache      bool
}

// UsesMemoryStore returns true when no database path is configured, in which
// case status messages are kept in memory only.
func (c *Config) UsesMemoryStore() bool {
	return c.DBPath == ""
}

// Load reads configuration from environment variables and returns a validated Config.
// All variables are optional:
// RECIPEBOOK_API_URL (http://127.0.0.1:3000/), RECIPEBOOK_LISTEN_ADDR (127.0.0.1:8080),
// RECIPEBOOK_DB_PATH (recipebook.db; set to empty for an in-memory message log),
// RECIPEBOOK_REQUEST_TIMEOUT (10s), RECIPEBOOK_HTTP_CACHE (true).
func Load() (*Config, error) {
	apiURL := "http://127.0.0.1:3000/"
	if v, ok := os.LookupEnv("RECIPEBOOK_API_URL"); ok {
		if err := ValidateAPIURL(v); err != nil {
			return nil, fmt.Errorf("RECIPEBOOK_API_URL: %w", err)
		}
		apiURL = v
	}

	listenAddr := "127.0.0.1:8080"
	if v, ok := os.LookupEnv("RECIPEBOOK_LISTEN_ADDR"); ok {
		listenAddr = v
	}

	dbPath := "recipebook.db"
	if v, ok := os.LookupEnv("RECIPEBOOK_DB_PATH"); ok {
		dbPath = v
	}

	requestTimeout := 10 * time.Second
	if v, ok := os.LookupEnv("RECIPEBOOK_REQUEST_TIMEOUT"); ok {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("RECIPEBOOK_REQUEST_TIMEOUT has invalid duration %q: %w", v, err)
		}
		if parsed < 0 {
			return nil, fmt.Errorf("RECIPEBOOK_REQUEST_TIMEOUT must not be negative, got %s", parsed)
		}
		requestTimeout = parsed
	}

	httpCache := true
	if v, ok := os.LookupEnv("RECIPEBOOK_HTTP_CACHE"); ok {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("RECIPEBOOK_HTTP_CACHE has invalid boolean %q: %w", v, err)
		}
		httpCache = parsed
	}

	return &Config{
		APIURL:         apiURL,
		ListenAddr:     listenAddr,
		DBPath:         dbPath,
		RequestTimeout: requestTimeout,
		HTTPCache:      httpCache,
	}, nil
}

// ValidateAPIURL checks that v is an absolute http(s) URL.
func ValidateAPIURL(v string) error {
	u, err := url.Parse(v)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("invalid URL %q: expected http(s)://host", v)
	}
	return nil
}
