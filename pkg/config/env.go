package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// ApplyEnv overrides config fields from environment variables that are set.
func ApplyEnv(cfg *Config) (*Config, error) {
	cfg = cfg.WithDefaults()
	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		parsed, err := strconv.Atoi(port)
		if err != nil || parsed <= 0 || parsed > 65535 {
			return nil, fmt.Errorf("invalid PORT %q", port)
		}
		cfg.Server.Port = parsed
	}
	if root := strings.TrimSpace(os.Getenv("DRAWBOARD_ROOT")); root != "" {
		if cfg.Server.Documents == cfg.Server.Root {
			cfg.Server.Documents = root
		}
		cfg.Server.Root = root
	}
	cfg.Cache.Database.URI = envOr(cfg.Cache.Database.URI, os.Getenv("DRAWBOARD_CACHE_URI"))
	if level := strings.TrimSpace(os.Getenv("DRAWBOARD_LOG_LEVEL")); level != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(level))
		if err != nil {
			return nil, fmt.Errorf("invalid DRAWBOARD_LOG_LEVEL %q: %w", level, err)
		}
		cfg.Logging.MinLevel = &parsed
	}
	return cfg, nil
}

func envOr(existing, value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return existing
	}
	return value
}
