package shared

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Database    DatabaseConfig    `toml:"database"`
	Server      ServerConfig      `toml:"server"`
	Transfer    TransferConfig    `toml:"transfer"`
	Status      StatusConfig      `toml:"status"`
	Log         LogConfig         `toml:"log"`
}

// CredentialsConfig contains service-specific OAuth client settings.
type CredentialsConfig struct {
	Spotify OAuthClientConfig `toml:"spotify"`
	YouTube OAuthClientConfig `toml:"youtube"`
}

// OAuthClientConfig contains an OAuth application's client credentials.
type OAuthClientConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RedirectURI  string `toml:"redirect_uri"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host           string   `toml:"host"`
	Port           int      `toml:"port"`
	AllowedOrigins []string `toml:"allowed_origins"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// TransferConfig tunes the worker pool and the per-job loop.
type TransferConfig struct {
	Workers          int     `toml:"workers"`
	QueueSize        int     `toml:"queue_size"`
	PaceEvery        int     `toml:"pace_every"`
	PaceDelayMS      int     `toml:"pace_delay_ms"`
	ProgressEvery    int     `toml:"progress_every"`
	RequestTimeout   int     `toml:"request_timeout_seconds"`
	Matcher          string  `toml:"matcher"`
	SpotifyMaxTracks int     `toml:"spotify_max_tracks"`
	YouTubeMaxTracks int     `toml:"youtube_max_tracks"`
	SpotifyRPS       float64 `toml:"spotify_rps"`
	YouTubeRPS       float64 `toml:"youtube_rps"`
}

// PaceDelay returns the pause inserted between track batches.
func (t TransferConfig) PaceDelay() time.Duration {
	return time.Duration(t.PaceDelayMS) * time.Millisecond
}

// Timeout returns the per-request timeout for outbound calls.
func (t TransferConfig) Timeout() time.Duration {
	return time.Duration(t.RequestTimeout) * time.Second
}

// StatusConfig selects and tunes the job status store.
type StatusConfig struct {
	Backend         string `toml:"backend"`
	RedisURL        string `toml:"redis_url"`
	RetentionMin    int    `toml:"retention_minutes"`
	JanitorInterval int    `toml:"janitor_interval_seconds"`
}

// Retention returns how long finished jobs stay readable.
func (s StatusConfig) Retention() time.Duration {
	return time.Duration(s.RetentionMin) * time.Minute
}

// LogConfig sets the logger level.
type LogConfig struct {
	Level string `toml:"level"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep their defaults from the embedded example config.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks values that would make the transfer pipeline misbehave.
func (c *Config) Validate() error {
	switch {
	case c.Transfer.Workers < 1:
		return fmt.Errorf("%w: transfer.workers must be at least 1", ErrInvalidConfig)
	case c.Transfer.QueueSize < 1:
		return fmt.Errorf("%w: transfer.queue_size must be at least 1", ErrInvalidConfig)
	case c.Transfer.ProgressEvery < 1:
		return fmt.Errorf("%w: transfer.progress_every must be at least 1", ErrInvalidConfig)
	case c.Transfer.Matcher != "first" && c.Transfer.Matcher != "fuzzy":
		return fmt.Errorf("%w: unknown transfer.matcher %q", ErrInvalidConfig, c.Transfer.Matcher)
	case c.Status.Backend != "memory" && c.Status.Backend != "redis" && c.Status.Backend != "sqlite":
		return fmt.Errorf("%w: unknown status.backend %q", ErrInvalidConfig, c.Status.Backend)
	}
	return nil
}

// ApplyEnv loads .env files (missing files are ignored) and overrides secrets and
// endpoints from PLAYLIFT_* environment variables. Existing variables win over .env values.
func (c *Config) ApplyEnv(files ...string) error {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: loading %s: %v", ErrInvalidConfig, f, err)
		}
	}

	setString(&c.Credentials.Spotify.ClientID, "PLAYLIFT_SPOTIFY_CLIENT_ID")
	setString(&c.Credentials.Spotify.ClientSecret, "PLAYLIFT_SPOTIFY_CLIENT_SECRET")
	setString(&c.Credentials.Spotify.RedirectURI, "PLAYLIFT_SPOTIFY_REDIRECT_URI")
	setString(&c.Credentials.YouTube.ClientID, "PLAYLIFT_YOUTUBE_CLIENT_ID")
	setString(&c.Credentials.YouTube.ClientSecret, "PLAYLIFT_YOUTUBE_CLIENT_SECRET")
	setString(&c.Credentials.YouTube.RedirectURI, "PLAYLIFT_YOUTUBE_REDIRECT_URI")
	setString(&c.Database.Path, "PLAYLIFT_DATABASE_PATH")
	setString(&c.Status.Backend, "PLAYLIFT_STATUS_BACKEND")
	setString(&c.Status.RedisURL, "PLAYLIFT_REDIS_URL")
	setString(&c.Log.Level, "PLAYLIFT_LOG_LEVEL")

	if v, ok := os.LookupEnv("PLAYLIFT_WORKERS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: PLAYLIFT_WORKERS=%q", ErrInvalidConfig, v)
		}
		c.Transfer.Workers = n
	}
	return nil
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}
