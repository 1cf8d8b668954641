package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"regexp"

	"github.com/BurntSushi/toml"

	"github.com/teemow/gasmail/internal/logging"
	"github.com/teemow/gasmail/internal/paths"
)

// Environment variable names. GAS_ENDPOINT and VALID_API_KEY keep the names
// existing Apps Script deployments are configured with.
const (
	EnvEndpoint    = "GAS_ENDPOINT"
	EnvAPIKey      = "VALID_API_KEY"
	EnvDownloadDir = "GASMAIL_DOWNLOAD_DIR"
	EnvToolPrefix  = "GASMAIL_TOOL_PREFIX"
)

var envVarRe = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Config is the process-wide gateway configuration.
// It is read once at startup and never mutated afterwards.
type Config struct {
	// Endpoint is the deployed Apps Script web app URL.
	Endpoint string `toml:"endpoint"`

	// APIKey is the shared secret sent as the apiKey query parameter.
	APIKey string `toml:"api_key"`

	// DownloadDir overrides the directory attachments are written to.
	DownloadDir string `toml:"download_dir"`

	// ToolPrefix is prepended to every tool name (e.g. "gmail_").
	ToolPrefix string `toml:"tool_prefix"`
}

// ConfigError reports a missing or malformed configuration value.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error: %s %s", e.Field, e.Reason)
}

// Load reads the default config file and applies environment overrides.
func Load() (*Config, error) {
	return LoadFrom(paths.ConfigFile())
}

// LoadFrom reads the config file at path and applies environment overrides.
// A missing file is not an error.
func LoadFrom(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
		cfg.expandEnvVars()
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvEndpoint); v != "" {
		c.Endpoint = v
	}
	if v := os.Getenv(EnvAPIKey); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv(EnvDownloadDir); v != "" {
		c.DownloadDir = v
	}
	if v := os.Getenv(EnvToolPrefix); v != "" {
		c.ToolPrefix = v
	}
}

func (c *Config) expandEnvVars() {
	c.Endpoint = expandEnvVars(c.Endpoint)
	c.APIKey = expandEnvVars(c.APIKey)
	c.DownloadDir = expandEnvVars(c.DownloadDir)
	c.ToolPrefix = expandEnvVars(c.ToolPrefix)
}

// expandEnvVars replaces ${VAR_NAME} with the value of the environment variable.
func expandEnvVars(s string) string {
	return envVarRe.ReplaceAllStringFunc(s, func(match string) string {
		name := envVarRe.FindStringSubmatch(match)[1]
		if val, ok := os.LookupEnv(name); ok {
			return val
		}
		return match
	})
}

// Validate checks that the endpoint and API key are usable.
func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return &ConfigError{Field: "endpoint", Reason: "is required (set " + EnvEndpoint + ")"}
	}
	if c.APIKey == "" {
		return &ConfigError{Field: "api_key", Reason: "is required (set " + EnvAPIKey + ")"}
	}

	u, err := url.Parse(c.Endpoint)
	if err != nil {
		// The parse error quotes the raw URL, which may carry the key.
		return &ConfigError{Field: "endpoint", Reason: "is not a valid URL"}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return &ConfigError{Field: "endpoint", Reason: fmt.Sprintf("must use http or https (got %q)", u.Scheme)}
	}
	if u.Host == "" {
		return &ConfigError{Field: "endpoint", Reason: "must include a host"}
	}

	return nil
}

// ResolvedDownloadDir returns the configured download directory or the
// platform default.
func (c *Config) ResolvedDownloadDir() string {
	if c.DownloadDir != "" {
		return c.DownloadDir
	}
	return paths.DownloadDir()
}

// LogValue implements slog.LogValuer and never exposes the API key.
func (c *Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("endpoint", logging.RedactURL(c.Endpoint)),
		slog.String("api_key", logging.SanitizeToken(c.APIKey)),
		slog.String("download_dir", c.ResolvedDownloadDir()),
		slog.String("tool_prefix", c.ToolPrefix),
	)
}
