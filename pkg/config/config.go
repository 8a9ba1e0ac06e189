// Package config loads redactor settings from a TOML file.
//
// The file lives at $XDG_CONFIG_HOME/redactor/config.toml (see
// [DefaultPath]) and is optional. Every field has a default in code;
// command-line flags override the file.
//
//	[render]
//	intensity = 40
//	quality = 90
//	delay = "400ms"
//
//	[server]
//	addr = ":8080"
//	redis = "redis://localhost:6379/0"
//
//	[cache]
//	disabled = false
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/redactor/pkg/document"
	rerrors "github.com/matzehuels/redactor/pkg/errors"
	"github.com/matzehuels/redactor/pkg/pipeline"
	"github.com/matzehuels/redactor/pkg/session"
	"github.com/matzehuels/redactor/pkg/shell"
)

// AppName names the config and cache directories.
const AppName = "redactor"

// Config is the full settings file.
type Config struct {
	Render RenderConfig `toml:"render"`
	Server ServerConfig `toml:"server"`
	Cache  CacheConfig  `toml:"cache"`
}

// RenderConfig holds render defaults.
type RenderConfig struct {
	Intensity int      `toml:"intensity"`
	Quality   int      `toml:"quality"`
	Format    string   `toml:"format"`
	Header    string   `toml:"header"`
	Delay     Duration `toml:"delay"`
}

// ServerConfig holds web shell settings.
type ServerConfig struct {
	Addr       string   `toml:"addr"`
	Redis      string   `toml:"redis"`
	SessionTTL Duration `toml:"session_ttl"`
	MaxBody    int64    `toml:"max_body"`
	Shutdown   Duration `toml:"shutdown_timeout"`
}

// CacheConfig holds artifact cache settings.
type CacheConfig struct {
	Dir      string `toml:"dir"`
	Disabled bool   `toml:"disabled"`
	Prefix   string `toml:"prefix"`

	// Redis, when set, replaces the file cache with a shared Redis cache.
	Redis string `toml:"redis"`
}

// Duration is a time.Duration written as a string ("400ms", "24h").
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Render: RenderConfig{
			Intensity: document.DefaultIntensity,
			Quality:   pipeline.DefaultQuality,
			Format:    pipeline.DefaultFormat,
			Delay:     Duration{shell.RenderDelay},
		},
		Server: ServerConfig{
			Addr:       ":8080",
			SessionTTL: Duration{session.DefaultTTL},
			MaxBody:    1 << 20,
			Shutdown:   Duration{10 * time.Second},
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/redactor/config.toml, or the
// platform equivalent.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, AppName, "config.toml"), nil
}

// DefaultCacheDir returns the platform cache directory for redactor.
func DefaultCacheDir() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, AppName), nil
}

// Load reads path over the defaults. An empty path reads [DefaultPath] and
// tolerates it being absent; an explicit path must exist. Unknown keys are
// an error.
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return cfg, rerrors.Wrap(rerrors.ErrCodeInvalidConfig, err, "read config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return cfg, rerrors.New(rerrors.ErrCodeInvalidConfig, "unknown keys in %s: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if err := rerrors.ValidateIntensity(c.Render.Intensity); err != nil {
		return rerrors.Wrap(rerrors.ErrCodeInvalidConfig, err, "render.intensity")
	}
	if err := rerrors.ValidateQuality(c.Render.Quality); err != nil {
		return rerrors.Wrap(rerrors.ErrCodeInvalidConfig, err, "render.quality")
	}
	if err := pipeline.ValidateFormat(c.Render.Format); err != nil {
		return rerrors.Wrap(rerrors.ErrCodeInvalidConfig, err, "render.format")
	}
	if c.Render.Delay.Duration < 0 {
		return rerrors.New(rerrors.ErrCodeInvalidConfig, "render.delay must not be negative")
	}
	if c.Server.SessionTTL.Duration <= 0 {
		return rerrors.New(rerrors.ErrCodeInvalidConfig, "server.session_ttl must be positive")
	}
	if c.Server.MaxBody <= 0 {
		return rerrors.New(rerrors.ErrCodeInvalidConfig, "server.max_body must be positive")
	}
	if !isRedisURL(c.Server.Redis) {
		return rerrors.New(rerrors.ErrCodeInvalidConfig, "server.redis must be a redis:// or rediss:// url")
	}
	if !isRedisURL(c.Cache.Redis) {
		return rerrors.New(rerrors.ErrCodeInvalidConfig, "cache.redis must be a redis:// or rediss:// url")
	}
	return nil
}

func isRedisURL(s string) bool {
	return s == "" || strings.HasPrefix(s, "redis://") || strings.HasPrefix(s, "rediss://")
}

// CacheDir returns the configured cache directory or the platform default.
func (c Config) CacheDir() (string, error) {
	if c.Cache.Dir != "" {
		return c.Cache.Dir, nil
	}
	return DefaultCacheDir()
}

// String renders the config as TOML.
func (c Config) String() string {
	var b strings.Builder
	if err := toml.NewEncoder(&b).Encode(c); err != nil {
		return fmt.Sprintf("config: %v", err)
	}
	return b.String()
}
