package config

import (
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"sjsage522/brochureworker/internal/dates"
	apperrors "sjsage522/brochureworker/pkg/errors"
)

// Render modes
const (
	RenderModeHTTP   = "http"
	RenderModeChrome = "chrome"
)

// Config represents the application configuration
type Config struct {
	// Site configuration
	EntryURL   string
	SiteOrigin string
	Shops      []string

	// Output configuration
	DateFormat string
	OutputFile string
	FailureLog string

	// Browser configuration
	RenderMode        string
	ChromeAddr        string
	PageTimeout       time.Duration
	PaceMin           time.Duration
	PaceMax           time.Duration
	RequestsPerSecond float64
	CloudflareBypass  bool

	// Memcache configuration, empty uses an in-process cache
	MemcacheAddr string
	BlockTime    time.Duration

	// Redis configuration, empty disables the stream sink
	RedisAddr            string
	RedisDB              int
	RedisStream          string
	RedisStreamMaxLength int

	// Environment
	Environment string
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() Config {
	return Config{
		EntryURL:             getEnv("ENTRY_URL", "https://www.prospektmaschine.de/hypermarkte/"),
		SiteOrigin:           getEnv("SITE_ORIGIN", "https://www.prospektmaschine.de"),
		Shops:                splitList(getEnv("SHOPS", "Kaufland")),
		DateFormat:           getEnv("DATE_FORMAT", "%Y-%m-%d"),
		OutputFile:           getEnv("OUTPUT_FILE", "output/output.json"),
		FailureLog:           getEnv("FAILURE_LOG", ""),
		RenderMode:           getEnv("RENDER_MODE", RenderModeHTTP),
		ChromeAddr:           getEnv("CHROME_ADDR", "http://localhost:3000"),
		PageTimeout:          getSeconds("PAGE_TIMEOUT_SECONDS", 30),
		PaceMin:              getMillis("PACE_MIN_MS", 500),
		PaceMax:              getMillis("PACE_MAX_MS", 1000),
		RequestsPerSecond:    getFloat("REQUESTS_PER_SECOND", 2),
		CloudflareBypass:     getBool("CLOUDFLARE_BYPASS", true),
		MemcacheAddr:         getEnv("MEMCACHE_ADDR", ""),
		BlockTime:            getSeconds("BLOCK_SECONDS", 500),
		RedisAddr:            getEnv("REDIS_ADDR", ""),
		RedisDB:              getInt("REDIS_DB", 0),
		RedisStream:          getEnv("REDIS_STREAM", "brochures"),
		RedisStreamMaxLength: getInt("REDIS_STREAM_MAX_LENGTH", 100),
		Environment:          getEnv("BROCHURE_ENVIRONMENT", "development"),
	}
}

// Validate checks the configuration for errors
func (c Config) Validate() error {
	if err := validateURL("entry URL", c.EntryURL); err != nil {
		return err
	}
	if err := validateURL("site origin", c.SiteOrigin); err != nil {
		return err
	}
	if _, err := c.DateLayout(); err != nil {
		return err
	}
	if strings.TrimSpace(c.OutputFile) == "" {
		return apperrors.NewConfiguration("output file is required", nil)
	}
	switch c.RenderMode {
	case RenderModeHTTP:
	case RenderModeChrome:
		if err := validateURL("chrome address", c.ChromeAddr); err != nil {
			return err
		}
	default:
		return apperrors.NewConfiguration("unknown render mode "+strconv.Quote(c.RenderMode), nil)
	}
	if c.PageTimeout <= 0 {
		return apperrors.NewConfiguration("page timeout must be positive", nil)
	}
	if c.PaceMin < 0 || c.PaceMax < c.PaceMin {
		return apperrors.NewConfiguration("pace range must satisfy 0 <= min <= max", nil)
	}
	if c.RequestsPerSecond < 0 {
		return apperrors.NewConfiguration("requests per second must not be negative", nil)
	}
	if c.RedisAddr != "" && c.RedisStream == "" {
		return apperrors.NewConfiguration("redis stream is required when redis is enabled", nil)
	}
	return nil
}

// DateLayout returns the Go layout of the configured output date format
func (c Config) DateLayout() (string, error) {
	layout, err := dates.Layout(c.DateFormat)
	if err != nil {
		return "", apperrors.NewConfiguration("invalid date format "+strconv.Quote(c.DateFormat), err)
	}
	return layout, nil
}

func validateURL(name, value string) error {
	u, err := url.Parse(value)
	if err != nil {
		return apperrors.NewConfiguration("invalid "+name, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return apperrors.NewConfiguration(name+" must be an absolute URL", nil)
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getFloat(key string, defaultValue float64) float64 {
	value, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getSeconds(key string, defaultValue int) time.Duration {
	return time.Duration(getInt(key, defaultValue)) * time.Second
}

func getMillis(key string, defaultValue int) time.Duration {
	return time.Duration(getInt(key, defaultValue)) * time.Millisecond
}

// splitList splits a comma separated list, dropping empty items
func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
