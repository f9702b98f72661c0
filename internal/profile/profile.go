package profile

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Profile is the configuration to start the content delivery server.
// It is resolved once at startup and treated as read-only afterwards.
type Profile struct {
	// Mode can be "prod" or "dev"
	Mode string
	// Addr is the binding address for the server
	Addr string
	// Port is the binding port for the server
	Port int
	// Data is the data directory for the durable cache mirror
	Data string
	// DSN points to the sqlite file used to mirror cache entries.
	// Empty means pure in-memory operation.
	DSN string
	// Version is the current version of the server
	Version string
	// Debug enables verbose logging
	Debug bool

	// Generation service configuration
	AIBaseURL string // SMARTCLASS_AI_BASE_URL (default: http://localhost:8000/v1)
	AIAPIKey  string // SMARTCLASS_AI_API_KEY
	AIModel   string // SMARTCLASS_AI_MODEL (default: llama3.2-1b-syllabus)
	AITimeout time.Duration

	// Retrieval service configuration
	RetrievalBaseURL string // SMARTCLASS_RETRIEVAL_BASE_URL (default: http://localhost:8001)
	CollectionName   string // SMARTCLASS_COLLECTION_NAME (default: syllabus_collection)
	RetrievalTimeout time.Duration

	// Cache configuration
	CacheMaxEntries int           // SMARTCLASS_CACHE_MAX_ENTRIES (default: 500)
	CacheDefaultTTL time.Duration // SMARTCLASS_CACHE_DEFAULT_TTL (default: 30m)
	CacheShortTTL   time.Duration // SMARTCLASS_CACHE_SHORT_TTL (default: 5m), used for fallback-tier entries
	SweepInterval   time.Duration // SMARTCLASS_CACHE_SWEEP_INTERVAL (default: 1m)
	HealthTTL       time.Duration // SMARTCLASS_HEALTH_TTL (default: 30s)

	// HTTP rate limiting, per client IP
	RateLimitEvery time.Duration // SMARTCLASS_RATE_LIMIT_EVERY (default: 100ms)
	RateLimitBurst int           // SMARTCLASS_RATE_LIMIT_BURST (default: 20)

	// PreloadTargets is a comma-separated list of subject:grade pairs
	// warmed in the background at startup, e.g. "mathematics:3,science:5".
	PreloadTargets string // SMARTCLASS_PRELOAD_TARGETS
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// getEnvOrDefault returns the environment variable value or the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnvOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getDurationEnvOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// FromEnv loads configuration from SMARTCLASS_* environment variables.
// Values already set (e.g. from flags) act as defaults but are overridden
// by explicit environment variables.
func (p *Profile) FromEnv() {
	if v := os.Getenv("SMARTCLASS_MODE"); v != "" {
		p.Mode = v
	}
	if v := os.Getenv("SMARTCLASS_ADDR"); v != "" {
		p.Addr = v
	}
	p.Port = getIntEnvOrDefault("SMARTCLASS_PORT", p.Port)
	if v := os.Getenv("SMARTCLASS_DATA"); v != "" {
		p.Data = v
	}
	if v := os.Getenv("SMARTCLASS_DSN"); v != "" {
		p.DSN = v
	}
	p.Debug = p.Debug || os.Getenv("SMARTCLASS_DEBUG") == "true"

	p.AIBaseURL = getEnvOrDefault("SMARTCLASS_AI_BASE_URL", defaultString(p.AIBaseURL, "http://localhost:8000/v1"))
	p.AIAPIKey = getEnvOrDefault("SMARTCLASS_AI_API_KEY", p.AIAPIKey)
	p.AIModel = getEnvOrDefault("SMARTCLASS_AI_MODEL", defaultString(p.AIModel, "llama3.2-1b-syllabus"))
	p.AITimeout = getDurationEnvOrDefault("SMARTCLASS_AI_TIMEOUT", defaultDuration(p.AITimeout, 30*time.Second))

	p.RetrievalBaseURL = getEnvOrDefault("SMARTCLASS_RETRIEVAL_BASE_URL", defaultString(p.RetrievalBaseURL, "http://localhost:8001"))
	p.CollectionName = getEnvOrDefault("SMARTCLASS_COLLECTION_NAME", defaultString(p.CollectionName, "syllabus_collection"))
	p.RetrievalTimeout = getDurationEnvOrDefault("SMARTCLASS_RETRIEVAL_TIMEOUT", defaultDuration(p.RetrievalTimeout, 10*time.Second))

	p.CacheMaxEntries = getIntEnvOrDefault("SMARTCLASS_CACHE_MAX_ENTRIES", defaultInt(p.CacheMaxEntries, 500))
	p.CacheDefaultTTL = getDurationEnvOrDefault("SMARTCLASS_CACHE_DEFAULT_TTL", defaultDuration(p.CacheDefaultTTL, 30*time.Minute))
	p.CacheShortTTL = getDurationEnvOrDefault("SMARTCLASS_CACHE_SHORT_TTL", defaultDuration(p.CacheShortTTL, 5*time.Minute))
	p.SweepInterval = getDurationEnvOrDefault("SMARTCLASS_CACHE_SWEEP_INTERVAL", defaultDuration(p.SweepInterval, time.Minute))
	p.HealthTTL = getDurationEnvOrDefault("SMARTCLASS_HEALTH_TTL", defaultDuration(p.HealthTTL, 30*time.Second))

	p.RateLimitEvery = getDurationEnvOrDefault("SMARTCLASS_RATE_LIMIT_EVERY", defaultDuration(p.RateLimitEvery, 100*time.Millisecond))
	p.RateLimitBurst = getIntEnvOrDefault("SMARTCLASS_RATE_LIMIT_BURST", defaultInt(p.RateLimitBurst, 20))
	p.PreloadTargets = getEnvOrDefault("SMARTCLASS_PRELOAD_TARGETS", p.PreloadTargets)
}

func defaultString(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

func defaultInt(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}

func defaultDuration(v, def time.Duration) time.Duration {
	if v > 0 {
		return v
	}
	return def
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		relativeDir := filepath.Join(filepath.Dir(os.Args[0]), dataDir)
		absDir, err := filepath.Abs(relativeDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

// Validate normalizes the profile and derives the mirror DSN from the data
// directory when none was given. A missing data directory is not an error:
// the cache then runs without a durable mirror.
func (p *Profile) Validate() error {
	if p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "dev"
	}
	if p.Port <= 0 {
		p.Port = 8080
	}

	if p.Data != "" {
		dataDir, err := checkDataDir(p.Data)
		if err != nil {
			return err
		}
		p.Data = dataDir
		if p.DSN == "" {
			p.DSN = filepath.Join(dataDir, fmt.Sprintf("smartclass_%s.db", p.Mode))
		}
	}

	if p.CacheShortTTL > 0 && p.CacheDefaultTTL > 0 && p.CacheShortTTL >= p.CacheDefaultTTL {
		return errors.New("cache short TTL must be shorter than the default TTL")
	}
	return nil
}
