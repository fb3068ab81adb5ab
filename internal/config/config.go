// Package config loads runtime settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultReply is returned by the chat endpoint unless CHAT_REPLY overrides it.
const DefaultReply = "This is a hardcoded reply from the Flask backend."

const (
	defaultPort            = "8080"
	defaultLogLevel        = "info"
	defaultMaxBodyBytes    = 1 << 20
	defaultShutdownTimeout = 10 * time.Second
)

// Config holds the process settings.
type Config struct {
	Port            string
	Reply           string
	LogLevel        string
	AllowedOrigins  []string
	MaxBodyBytes    int64
	ShutdownTimeout time.Duration
	// ProjectID enables Cloud Trace correlation in logs when set.
	ProjectID string
}

// Load reads envFiles (default ".env") into the environment without overriding
// variables that are already set, then builds a Config. Missing files are ignored.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment.
func FromEnv() (Config, error) {
	cfg := Config{
		Port:           getenv("PORT", defaultPort),
		Reply:          getenv("CHAT_REPLY", DefaultReply),
		LogLevel:       strings.ToLower(getenv("LOG_LEVEL", defaultLogLevel)),
		AllowedOrigins: splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		ProjectID: firstNonEmpty(
			os.Getenv("GOOGLE_CLOUD_PROJECT"),
			os.Getenv("GCP_PROJECT"),
			os.Getenv("GCLOUD_PROJECT"),
			os.Getenv("PROJECT_ID"),
		),
	}

	if strings.TrimSpace(cfg.Reply) == "" {
		return Config{}, errors.New("CHAT_REPLY must not be blank")
	}
	if _, err := strconv.ParseUint(cfg.Port, 10, 16); err != nil {
		return Config{}, fmt.Errorf("invalid PORT %q: %w", cfg.Port, err)
	}

	cfg.MaxBodyBytes = defaultMaxBodyBytes
	if v := os.Getenv("MAX_BODY_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("invalid MAX_BODY_BYTES %q: %w", v, err)
		}
		if n <= 0 {
			return Config{}, fmt.Errorf("invalid MAX_BODY_BYTES %q: must be positive", v)
		}
		cfg.MaxBodyBytes = n
	}

	cfg.ShutdownTimeout = defaultShutdownTimeout
	if v := os.Getenv("SHUTDOWN_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SHUTDOWN_TIMEOUT %q: %w", v, err)
		}
		if d <= 0 {
			return Config{}, fmt.Errorf("invalid SHUTDOWN_TIMEOUT %q: must be positive", v)
		}
		cfg.ShutdownTimeout = d
	}

	return cfg, nil
}

// Addr is the listen address for the configured port.
func (c Config) Addr() string {
	return ":" + c.Port
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(v string) []string {
	var out []string
	for item := range strings.SplitSeq(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
