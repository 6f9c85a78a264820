// Package config loads runtime settings from TALLY_* environment variables.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/alexanderramin/tally/internal/keyring"
	"github.com/alexanderramin/tally/internal/notify"
	"github.com/alexanderramin/tally/internal/service"
)

// Config holds all runtime settings.
type Config struct {
	DSN       string
	DSNSource string // "env", "keyring" or "default"
	Addr      string
	Timer     service.TimerPolicy
	LogDebug  bool
	LogDir    string
	Webhook   notify.WebhookConfig
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	home := homeDir()
	return Config{
		DSN:       filepath.Join(home, "tally.db"),
		DSNSource: "default",
		Addr:      ":8080",
		Timer:     service.DefaultTimerPolicy(),
		LogDir:    filepath.Join(home, "logs"),
		Webhook:   notify.DefaultWebhookConfig(),
	}
}

// DSNLookup returns a stored DSN. It is the keyring in production.
type DSNLookup func() (string, error)

// Load reads configuration from environment variables, falling back to
// defaults for any unset or invalid values.
func Load() Config {
	return LoadWith(keyring.GetDSN)
}

// LoadWith is Load with an explicit DSN fallback lookup.
func LoadWith(lookup DSNLookup) Config {
	cfg := DefaultConfig()

	if v := os.Getenv("TALLY_DB"); v != "" {
		cfg.DSN = v
		cfg.DSNSource = "env"
	} else if lookup != nil {
		if dsn, err := lookup(); err == nil && dsn != "" {
			cfg.DSN = dsn
			cfg.DSNSource = "keyring"
		} else if err != nil && !errors.Is(err, keyring.ErrNotFound) {
			cfg.DSNSource = "default (keyring unavailable)"
		}
	}
	if v := os.Getenv("TALLY_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("TALLY_TIMER_MIN_DURATION"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d >= 0 {
			cfg.Timer.MinDuration = d
		}
	}
	if v := os.Getenv("TALLY_TIMER_MAX_SESSION"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d >= 0 {
			cfg.Timer.MaxSession = d
		}
	}
	if v := os.Getenv("TALLY_LOG_DEBUG"); v != "" {
		cfg.LogDebug, _ = strconv.ParseBool(v)
	}
	if v := os.Getenv("TALLY_LOG_DIR"); v != "" {
		cfg.LogDir = v
	}

	if v := os.Getenv("TALLY_NOTIFY_URL"); v != "" {
		cfg.Webhook.URL = v
	}
	if v := os.Getenv("TALLY_NOTIFY_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Webhook.TimeoutMs = n
		}
	}
	if v := os.Getenv("TALLY_NOTIFY_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.Webhook.MaxRetries = n
		}
	}
	cfg.Webhook.ClientID = os.Getenv("TALLY_NOTIFY_CLIENT_ID")
	cfg.Webhook.ClientSecret = os.Getenv("TALLY_NOTIFY_CLIENT_SECRET")
	cfg.Webhook.TokenURL = os.Getenv("TALLY_NOTIFY_TOKEN_URL")

	return cfg
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".tally"
	}
	return filepath.Join(home, ".tally")
}
