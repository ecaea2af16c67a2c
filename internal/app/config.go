package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"sigil/internal/domain"
	"sigil/internal/logging"
)

// Storage backends.
const (
	BackendFile   = "file"
	BackendBolt   = "bolt"
	BackendMemory = "memory"
)

// ConfigFile is the name of the optional YAML file looked up in Home.
const ConfigFile = "config.yaml"

// Config holds runtime wiring options for building the app.
type Config struct {
	Home             string        `yaml:"home"`              // data directory, e.g. $HOME/.sigil
	Backend          string        `yaml:"backend"`           // file, bolt or memory
	Seal             bool          `yaml:"seal"`              // encrypt file-backend slots at rest
	VerifyOnLogin    bool          `yaml:"verify_on_login"`   // re-check the attestation at login
	LogLevel         string        `yaml:"log_level"`         // debug, info, warn, error
	OperationTimeout time.Duration `yaml:"operation_timeout"` // per command; 0 disables
	RetryMaxElapsed  time.Duration `yaml:"retry_max_elapsed"` // retry budget for unavailable storage
}

// Defaults returns the baseline configuration rooted at home.
func Defaults(home string) Config {
	return Config{
		Home:             home,
		Backend:          BackendFile,
		VerifyOnLogin:    true,
		LogLevel:         "warn",
		OperationTimeout: 30 * time.Second,
		RetryMaxElapsed:  2 * time.Second,
	}
}

// DefaultHome returns $HOME/.sigil, or .sigil when no home directory is known.
func DefaultHome() string {
	dir, err := os.UserHomeDir()
	if err != nil {
		return ".sigil"
	}
	return filepath.Join(dir, ".sigil")
}

// LoadConfig overlays the YAML file at path onto base. When required is
// false a missing file leaves base unchanged.
func LoadConfig(path string, base Config, required bool) (Config, error) {
	cfg := base
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return base, nil
		}
		return base, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return base, fmt.Errorf("%w: failed to parse config file %s: %v", domain.ErrInvalidInput, path, err)
	}
	return cfg, nil
}

// ApplyEnv overlays SIGIL_* variables read through getenv onto cfg.
func ApplyEnv(cfg Config, getenv func(string) string) (Config, error) {
	if v := getenv("SIGIL_HOME"); v != "" {
		cfg.Home = v
	}
	if v := getenv("SIGIL_BACKEND"); v != "" {
		cfg.Backend = v
	}
	if v := getenv("SIGIL_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	var err error
	parseBool := func(key string, dst *bool) {
		v := getenv(key)
		if v == "" || err != nil {
			return
		}
		b, perr := strconv.ParseBool(v)
		if perr != nil {
			err = fmt.Errorf("%w: %s=%q: %v", domain.ErrInvalidInput, key, v, perr)
			return
		}
		*dst = b
	}
	parseDuration := func(key string, dst *time.Duration) {
		v := getenv(key)
		if v == "" || err != nil {
			return
		}
		d, perr := time.ParseDuration(v)
		if perr != nil {
			err = fmt.Errorf("%w: %s=%q: %v", domain.ErrInvalidInput, key, v, perr)
			return
		}
		*dst = d
	}
	parseBool("SIGIL_SEAL", &cfg.Seal)
	parseBool("SIGIL_VERIFY_ON_LOGIN", &cfg.VerifyOnLogin)
	parseDuration("SIGIL_OPERATION_TIMEOUT", &cfg.OperationTimeout)
	parseDuration("SIGIL_RETRY_MAX_ELAPSED", &cfg.RetryMaxElapsed)
	return cfg, err
}

// Validate reports the first inconsistent setting.
func (c Config) Validate() error {
	c.Backend = strings.ToLower(c.Backend)
	switch c.Backend {
	case BackendFile, BackendBolt, BackendMemory:
	default:
		return fmt.Errorf("%w: unknown backend %q", domain.ErrInvalidInput, c.Backend)
	}
	if c.Seal && c.Backend != BackendFile {
		return fmt.Errorf("%w: seal is only supported by the %s backend", domain.ErrInvalidInput, BackendFile)
	}
	if c.Backend != BackendMemory && strings.TrimSpace(c.Home) == "" {
		return fmt.Errorf("%w: home must be set", domain.ErrInvalidInput)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if c.OperationTimeout < 0 || c.RetryMaxElapsed < 0 {
		return fmt.Errorf("%w: durations must not be negative", domain.ErrInvalidInput)
	}
	return nil
}
