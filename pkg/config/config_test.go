package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"go.mau.fi/util/configupgrade"
	"gopkg.in/yaml.v3"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"PORT", "DRAWBOARD_ROOT", "DRAWBOARD_CACHE_URI", "DRAWBOARD_LOG_LEVEL"} {
		t.Setenv(key, "")
	}
}

func TestExampleConfigDefaults(t *testing.T) {
	cfg, err := Parse([]byte(ExampleConfig))
	if err != nil {
		t.Fatalf("parse example: %v", err)
	}
	if cfg.Server.Port != DefaultPort {
		t.Fatalf("expected default port, got %d", cfg.Server.Port)
	}
	if cfg.Server.Root != "." || cfg.Server.Documents != "." {
		t.Fatalf("unexpected roots %q %q", cfg.Server.Root, cfg.Server.Documents)
	}
	if cfg.Server.ShutdownTimeout != 10*time.Second {
		t.Fatalf("unexpected shutdown timeout %s", cfg.Server.ShutdownTimeout)
	}
	if cfg.Assets.Marker != DefaultMarker || !*cfg.Assets.CheckDocuments {
		t.Fatalf("unexpected assets config %+v", cfg.Assets)
	}
	if cfg.Cache.MaxAge != DefaultMaxAge || cfg.Cache.PruneSchedule != "@hourly" {
		t.Fatalf("unexpected cache config %+v", cfg.Cache)
	}
	if cfg.Cache.InMemory() {
		t.Fatalf("example config should use a database")
	}
	if cfg.Compiler.JSX != "transform" || cfg.ImportMap.File != "importmap.json5" {
		t.Fatalf("unexpected compiler/importmap config %+v %+v", cfg.Compiler, cfg.ImportMap)
	}
	if len(cfg.Logging.Writers) != 1 {
		t.Fatalf("expected one log writer, got %d", len(cfg.Logging.Writers))
	}
}

func TestWithDefaultsOnEmptyConfig(t *testing.T) {
	cfg := (&Config{}).WithDefaults()
	if cfg.Server.Port != DefaultPort || cfg.Server.Root != "." {
		t.Fatalf("unexpected server defaults %+v", cfg.Server)
	}
	if cfg.Cache.Database.Type != "sqlite3" || !cfg.Cache.InMemory() {
		t.Fatalf("unexpected cache defaults %+v", cfg.Cache)
	}
	if cfg.Server.Address() != ":1729" || cfg.Server.PublicURL() != "http://localhost:1729" {
		t.Fatalf("unexpected addresses %q %q", cfg.Server.Address(), cfg.Server.PublicURL())
	}
}

func TestApplyEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8080")
	t.Setenv("DRAWBOARD_ROOT", "/srv/draw")
	t.Setenv("DRAWBOARD_CACHE_URI", "file:/tmp/cache.db")
	t.Setenv("DRAWBOARD_LOG_LEVEL", "WARN")

	cfg, err := ApplyEnv(&Config{})
	if err != nil {
		t.Fatalf("apply env: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Fatalf("expected PORT override, got %d", cfg.Server.Port)
	}
	if cfg.Server.Root != "/srv/draw" || cfg.Server.Documents != "/srv/draw" {
		t.Fatalf("unexpected roots %q %q", cfg.Server.Root, cfg.Server.Documents)
	}
	if cfg.Cache.Database.URI != "file:/tmp/cache.db" {
		t.Fatalf("unexpected cache uri %q", cfg.Cache.Database.URI)
	}
	if cfg.Logging.MinLevel == nil || *cfg.Logging.MinLevel != zerolog.WarnLevel {
		t.Fatalf("unexpected log level %v", cfg.Logging.MinLevel)
	}
}

func TestApplyEnvKeepsExplicitDocuments(t *testing.T) {
	clearEnv(t)
	t.Setenv("DRAWBOARD_ROOT", "/srv/draw")
	cfg, err := ApplyEnv(&Config{Server: ServerConfig{Documents: "/var/drawings"}})
	if err != nil {
		t.Fatalf("apply env: %v", err)
	}
	if cfg.Server.Documents != "/var/drawings" {
		t.Fatalf("documents dir was overridden: %q", cfg.Server.Documents)
	}
}

func TestApplyEnvRejectsBadPort(t *testing.T) {
	clearEnv(t)
	for _, port := range []string{"http", "-1", "70000"} {
		t.Setenv("PORT", port)
		if _, err := ApplyEnv(&Config{}); err == nil {
			t.Fatalf("expected error for PORT=%q", port)
		}
	}
}

func TestLoadMissingFileUsesExample(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "config.yaml"), false)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != DefaultPort || cfg.ImportMap.File != "importmap.json5" {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestLoadUpgradesPartialFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	partial := "server:\n    port: 9000\nimportmap:\n    imports:\n        react: https://esm.sh/react@17\n"
	if err := os.WriteFile(path, []byte(partial), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path, true)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 9000 {
		t.Fatalf("expected configured port, got %d", cfg.Server.Port)
	}
	if cfg.ImportMap.Imports["react"] != "https://esm.sh/react@17" {
		t.Fatalf("imports not kept: %v", cfg.ImportMap.Imports)
	}
	if cfg.Assets.Marker != DefaultMarker || cfg.Compiler.Target != "esnext" {
		t.Fatalf("missing fields not filled from example: %+v %+v", cfg.Assets, cfg.Compiler)
	}

	saved, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read saved: %v", err)
	}
	reparsed, err := Parse(saved)
	if err != nil {
		t.Fatalf("parse saved: %v", err)
	}
	if reparsed.Server.Port != 9000 || reparsed.Cache.PruneSchedule != "@hourly" {
		t.Fatalf("saved config lost fields: %+v", reparsed.Server)
	}
}

func TestUpgradeConfigKeepsCacheURI(t *testing.T) {
	const cfgYAML = `
cache:
    database:
        uri: postgres://drawboard@localhost/drawboard
    max_age: 24h
`
	var baseNode, cfgNode yaml.Node
	if err := yaml.Unmarshal([]byte(ExampleConfig), &baseNode); err != nil {
		t.Fatalf("failed to parse base yaml: %v", err)
	}
	if err := yaml.Unmarshal([]byte(cfgYAML), &cfgNode); err != nil {
		t.Fatalf("failed to parse config yaml: %v", err)
	}
	helper := configupgrade.NewHelper(&baseNode, &cfgNode)
	upgradeConfig(helper)

	cacheNode, ok := helper.Base.Map["cache"]
	if !ok {
		t.Fatalf("cache node missing after upgrade")
	}
	if got := cacheNode.Map["database"].Map["uri"].Value; got != "postgres://drawboard@localhost/drawboard" {
		t.Fatalf("expected uri to be kept, got %q", got)
	}
	if got := cacheNode.Map["max_age"].Value; got != "24h" {
		t.Fatalf("expected max_age to be kept, got %q", got)
	}
	if got := cacheNode.Map["prune_schedule"].Value; got != "@hourly" {
		t.Fatalf("expected default prune schedule, got %q", got)
	}
}
