package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadConfiguration_NoFile(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() with empty path error = %v", err)
	}
	if cfg.Version != 1 {
		t.Errorf("Default config version = %d, want 1", cfg.Version)
	}
	if cfg.Compiler.Format != "expanded" || cfg.Compiler.Engine != "expr" {
		t.Errorf("unexpected compiler defaults: %+v", cfg.Compiler)
	}
	if cfg.Cache.Backend != "lru" || cfg.Cache.Size != 1024 {
		t.Errorf("unexpected cache defaults: %+v", cfg.Cache)
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stylegen.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfiguration_WithFile(t *testing.T) {
	path := writeConfig(t, `version: 1
compiler:
  format: compact
  engine: cel
cache:
  backend: sqlite
  path: /tmp/styles.db
`)
	cfg, err := LoadConfiguration(path)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	if cfg.Compiler.Format != "compact" || cfg.Compiler.Engine != "cel" {
		t.Errorf("compiler overrides not applied: %+v", cfg.Compiler)
	}
	if cfg.Compiler.BatchConcurrency != 8 {
		t.Errorf("BatchConcurrency = %d, template default 8 should survive", cfg.Compiler.BatchConcurrency)
	}
	if cfg.Cache.Backend != "sqlite" || cfg.Cache.Path != "/tmp/styles.db" {
		t.Errorf("cache overrides not applied: %+v", cfg.Cache)
	}
}

func TestLoadConfiguration_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "unknown field", content: "version: 1\nunknown_field: value\n"},
		{name: "bad version", content: "version: 2\n"},
		{name: "bad format", content: "version: 1\ncompiler:\n  format: pretty\n"},
		{name: "bad engine", content: "version: 1\ncompiler:\n  engine: lua\n"},
		{name: "sqlite without path", content: "version: 1\ncache:\n  backend: sqlite\n"},
		{name: "invalid yaml", content: "version: 1\ncompiler:\n  format: compact\n  invalid indent\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadConfiguration(writeConfig(t, tt.content)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestLoadConfiguration_NonExistentFile(t *testing.T) {
	if _, err := LoadConfiguration("/nonexistent/stylegen.yaml"); err == nil {
		t.Error("Expected error for nonexistent file")
	}
}

func TestPrepareAndDump(t *testing.T) {
	data, err := Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	cfg, err := unmarshalConfig(data, &Config{}, true)
	if err != nil {
		t.Fatalf("Prepared config is not valid: %v", err)
	}

	dumped, err := Dump(cfg)
	if err != nil {
		t.Fatalf("Dump() error = %v", err)
	}
	if !strings.Contains(string(dumped), "backend: lru") {
		t.Errorf("dump missing cache backend:\n%s", dumped)
	}
	again, err := unmarshalConfig(dumped, &Config{}, true)
	if err != nil {
		t.Fatalf("dumped config does not load: %v", err)
	}
	if again.Compiler != cfg.Compiler || again.Cache != cfg.Cache {
		t.Errorf("dump round trip changed values: %+v vs %+v", again, cfg)
	}
}

func TestLoggingPrepare(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "stylegen.log")
	conf := LoggingConfig{
		ConsoleLogger: LoggerConfig{Level: "none"},
		FileLogger:    LoggerConfig{Level: "debug", Destination: dest, Mode: "overwrite"},
	}
	log, err := conf.Prepare("stylegen")
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	log.Debug("hello from test")
	_ = log.Sync()

	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "hello from test") || !strings.Contains(string(data), "stylegen") {
		t.Errorf("unexpected log contents: %q", data)
	}

	bad := LoggingConfig{FileLogger: LoggerConfig{Level: "normal", Destination: filepath.Join(t.TempDir(), "missing", "x.log")}}
	if _, err := bad.Prepare("stylegen"); err == nil {
		t.Errorf("expected error for unreachable destination")
	}
}
