// Package config loads client settings: defaults, then an optional YAML file,
// then environment overrides. Command-line flags are applied by the caller.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/and161185/shiftreport/internal/host"
)

// Draft backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Config holds shiftreport configuration.
type Config struct {
	APIURL  string        `yaml:"api_url"`
	Timeout time.Duration `yaml:"timeout"`
	Log     LogConfig     `yaml:"log"`
	Draft   DraftConfig   `yaml:"draft"`
	Host    HostConfig    `yaml:"host"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level string `yaml:"level"` // debug|info|warn|error
	File  string `yaml:"file"`  // "-" = stderr; relative paths live in the config dir
}

// DraftConfig configures local draft storage.
type DraftConfig struct {
	Backend    string `yaml:"backend"` // file|sqlite
	Passphrase string `yaml:"-"`       // env only; derives the sealing key instead of draft.key
}

// HostConfig configures the host bridge. Launch data and tokens are never read from the file.
type HostConfig struct {
	Dev         bool          `yaml:"dev"`
	BotToken    string        `yaml:"bot_token"`
	LaunchKey   string        `yaml:"launch_key"`
	MaxAge      time.Duration `yaml:"max_age"`
	InitData    string        `yaml:"-"`
	LaunchToken string        `yaml:"-"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		APIURL:  "http://localhost:8080",
		Timeout: 15 * time.Second,
		Log:     LogConfig{Level: "info", File: "shiftreport.log"},
		Draft:   DraftConfig{Backend: BackendFile},
		Host:    HostConfig{MaxAge: 24 * time.Hour},
	}
}

// Dir is the per-user config directory.
func Dir() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "shiftreport")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "shiftreport")
}

// Path returns name inside the config directory.
func Path(name string) string { return filepath.Join(Dir(), name) }

// Load reads path (an empty path means config.yaml in Dir, which may be missing)
// and applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = Path("config.yaml")
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	str := map[string]*string{
		"SHIFTREPORT_API_URL":          &c.APIURL,
		"SHIFTREPORT_LOG_LEVEL":        &c.Log.Level,
		"SHIFTREPORT_LOG_FILE":         &c.Log.File,
		"SHIFTREPORT_DRAFT_BACKEND":    &c.Draft.Backend,
		"SHIFTREPORT_DRAFT_PASSPHRASE": &c.Draft.Passphrase,
		"SHIFTREPORT_BOT_TOKEN":        &c.Host.BotToken,
		"SHIFTREPORT_LAUNCH_KEY":       &c.Host.LaunchKey,
		"SHIFTREPORT_LAUNCH_TOKEN":     &c.Host.LaunchToken,
		"TG_INIT_DATA":                 &c.Host.InitData,
	}
	for k, p := range str {
		if v := os.Getenv(k); v != "" {
			*p = v
		}
	}

	if v := os.Getenv("SHIFTREPORT_DEV"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("SHIFTREPORT_DEV: %w", err)
		}
		c.Host.Dev = b
	}
	if v := os.Getenv("SHIFTREPORT_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("SHIFTREPORT_TIMEOUT: %w", err)
		}
		c.Timeout = d
	}
	return nil
}

var levels = []string{"debug", "info", "warn", "error"}

// Validate reports every configuration problem at once.
func (c *Config) Validate() error {
	var problems []error

	if c.APIURL == "" {
		problems = append(problems, errors.New("api_url is required"))
	} else if u, err := url.Parse(c.APIURL); err != nil || u.Scheme == "" || u.Host == "" {
		problems = append(problems, fmt.Errorf("api_url %q is not an absolute URL", c.APIURL))
	}
	if c.Timeout <= 0 {
		problems = append(problems, fmt.Errorf("timeout must be positive, got %s", c.Timeout))
	}
	if !contains(levels, strings.ToLower(c.Log.Level)) {
		problems = append(problems, fmt.Errorf("invalid log level %q (valid: %v)", c.Log.Level, levels))
	}
	if c.Draft.Backend != BackendFile && c.Draft.Backend != BackendSQLite {
		problems = append(problems, fmt.Errorf("unknown draft backend %q (valid: file, sqlite)", c.Draft.Backend))
	}
	if c.Host.InitData != "" && c.Host.BotToken == "" && !c.Host.Dev {
		problems = append(problems, errors.New("TG_INIT_DATA needs a bot token to be verified"))
	}
	return errors.Join(problems...)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Bridge maps the host settings to the bridge configuration.
func (c *Config) Bridge() host.Config {
	return host.Config{
		Dev:         c.Host.Dev,
		InitData:    c.Host.InitData,
		BotToken:    c.Host.BotToken,
		LaunchToken: c.Host.LaunchToken,
		LaunchKey:   c.Host.LaunchKey,
		MaxAge:      c.Host.MaxAge,
	}
}

// LogPath resolves the log destination; "-" stays as is.
func (c *Config) LogPath() string {
	f := c.Log.File
	if f == "" || f == "-" || filepath.IsAbs(f) {
		return f
	}
	return Path(f)
}
