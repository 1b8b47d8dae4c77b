// Package config resolves outfit-analyzer settings from defaults, an
// optional .env file and OUTFIT_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/joho/godotenv"

	"github.com/ironsheep/outfit-analyzer/internal/palette"
)

// DefaultEnvFile is read when Load is given no file. Its absence is not an
// error.
const DefaultEnvFile = ".env"

// Search providers.
const (
	ProviderSHEIN    = "shein"
	ProviderFallback = "fallback"
)

// Environment keys.
const (
	EnvLogLevel       = "OUTFIT_LOG_LEVEL"
	EnvLogJSON        = "OUTFIT_LOG_JSON"
	EnvHTTPAddr       = "OUTFIT_HTTP_ADDR"
	EnvCORSOrigins    = "OUTFIT_CORS_ORIGINS"
	EnvMaxUploadBytes = "OUTFIT_MAX_UPLOAD_BYTES"
	EnvSearchProvider = "OUTFIT_SEARCH_PROVIDER"
	EnvSHEINBaseURL   = "OUTFIT_SHEIN_BASE_URL"
	EnvRapidAPIKey    = "OUTFIT_RAPIDAPI_KEY"
	EnvRapidAPIHost   = "OUTFIT_RAPIDAPI_HOST"
	EnvSearchTimeout  = "OUTFIT_SEARCH_TIMEOUT"
	EnvNumColors      = "OUTFIT_NUM_COLORS"
)

// Config holds the application configuration
type Config struct {
	HTTP     HTTPConfig     `json:"http"`
	Search   SearchConfig   `json:"search"`
	Analysis AnalysisConfig `json:"analysis"`
	Log      LogConfig      `json:"log"`
}

// HTTPConfig holds configuration for the HTTP API
type HTTPConfig struct {
	Addr           string   `json:"addr"`
	CORSOrigins    []string `json:"cors_origins"`
	MaxUploadBytes int64    `json:"max_upload_bytes"`
}

// SearchConfig holds configuration for product search
type SearchConfig struct {
	// Provider is ProviderSHEIN or ProviderFallback. Empty selects SHEIN
	// when an API key is configured.
	Provider string        `json:"provider"`
	BaseURL  string        `json:"base_url"`
	APIKey   string        `json:"-"`
	Host     string        `json:"host"`
	Timeout  time.Duration `json:"timeout"`
}

// AnalysisConfig holds configuration for image analysis
type AnalysisConfig struct {
	NumColors int `json:"num_colors"`
}

// LogConfig holds configuration for logging
type LogConfig struct {
	Level string `json:"level"`
	JSON  bool   `json:"json"`
}

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Addr:           ":8000",
			CORSOrigins:    []string{"http://localhost:5173"},
			MaxUploadBytes: 20 << 20,
		},
		Search: SearchConfig{
			BaseURL: "https://unofficial-shein.p.rapidapi.com",
			Host:    "unofficial-shein.p.rapidapi.com",
			Timeout: 5 * time.Second,
		},
		Analysis: AnalysisConfig{
			NumColors: 5,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load builds a Config from defaults, then envFile, then the process
// environment. An empty envFile means DefaultEnvFile, which may be missing;
// a named file must exist. Values in the process environment win over the
// file. The result is not validated.
func Load(envFile string) (*Config, error) {
	required := envFile != ""
	if envFile == "" {
		envFile = DefaultEnvFile
	}

	fileVals, err := godotenv.Read(envFile)
	if err != nil {
		if required || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read env file %s: %w", envFile, err)
		}
		fileVals = nil
	}

	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := fileVals[key]
		return v, ok
	}

	cfg := Default()
	if err := cfg.apply(lookup); err != nil {
		return nil, err
	}
	return cfg, nil
}

// apply overrides fields with the values lookup finds.
func (c *Config) apply(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok {
			*dst = strings.TrimSpace(v)
		}
	}

	str(EnvLogLevel, &c.Log.Level)
	str(EnvHTTPAddr, &c.HTTP.Addr)
	str(EnvSearchProvider, &c.Search.Provider)
	str(EnvSHEINBaseURL, &c.Search.BaseURL)
	str(EnvRapidAPIKey, &c.Search.APIKey)
	str(EnvRapidAPIHost, &c.Search.Host)

	if v, ok := lookup(EnvLogJSON); ok {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvLogJSON, v, err)
		}
		c.Log.JSON = b
	}
	if v, ok := lookup(EnvCORSOrigins); ok {
		c.HTTP.CORSOrigins = splitList(v)
	}
	if v, ok := lookup(EnvMaxUploadBytes); ok {
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvMaxUploadBytes, v, err)
		}
		c.HTTP.MaxUploadBytes = n
	}
	if v, ok := lookup(EnvSearchTimeout); ok {
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvSearchTimeout, v, err)
		}
		c.Search.Timeout = d
	}
	if v, ok := lookup(EnvNumColors); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvNumColors, v, err)
		}
		c.Analysis.NumColors = n
	}
	return nil
}

// SearchProvider returns the effective provider.
func (c *Config) SearchProvider() string {
	if p := strings.ToLower(c.Search.Provider); p != "" {
		return p
	}
	if c.Search.APIKey != "" {
		return ProviderSHEIN
	}
	return ProviderFallback
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.HTTP.Addr == "" {
		return fmt.Errorf("http.addr cannot be empty")
	}
	if c.HTTP.MaxUploadBytes <= 0 {
		return fmt.Errorf("http.max_upload_bytes must be positive")
	}

	switch c.SearchProvider() {
	case ProviderSHEIN:
		if c.Search.APIKey == "" {
			return fmt.Errorf("search.provider %q requires %s", ProviderSHEIN, EnvRapidAPIKey)
		}
		if c.Search.BaseURL == "" {
			return fmt.Errorf("search.base_url cannot be empty")
		}
	case ProviderFallback:
	default:
		return fmt.Errorf("search.provider must be %q or %q, got %q",
			ProviderSHEIN, ProviderFallback, c.Search.Provider)
	}
	if c.Search.Timeout <= 0 {
		return fmt.Errorf("search.timeout must be positive")
	}

	if c.Analysis.NumColors < 1 || c.Analysis.NumColors > palette.MaxColorCount {
		return fmt.Errorf("analysis.num_colors must be between 1 and %d", palette.MaxColorCount)
	}

	if hclog.LevelFromString(c.Log.Level) == hclog.NoLevel {
		return fmt.Errorf("log.level %q is not a known level", c.Log.Level)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
