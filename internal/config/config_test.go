package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gaugeworks/riverdata/internal/config"
)

// chtemp switches the working directory to a fresh temp dir so tests never
// pick up a developer's real config.json.
func chtemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	old, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	t.Cleanup(func() { os.Chdir(old) })
	return dir
}

// writeConfig drops a config.json into the current directory.
func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, config.DefaultConfigFile), []byte(content), 0600); err != nil {
		t.Fatalf("writing config.json: %v", err)
	}
}

func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv(config.EnvBaseURL, "")
	t.Setenv(config.EnvDBPath, "")
	os.Unsetenv(config.EnvBaseURL)
	os.Unsetenv(config.EnvDBPath)
}

func TestLoadDefaults(t *testing.T) {
	chtemp(t)
	clearEnv(t)

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Format != config.DefaultFormat {
		t.Errorf("Format: got %q", cfg.Format)
	}
	if cfg.Period != config.DefaultPeriod {
		t.Errorf("Period: got %q", cfg.Period)
	}
	if cfg.BaseURL != config.DefaultBaseURL {
		t.Errorf("BaseURL: got %q", cfg.BaseURL)
	}
	if cfg.Timeout != config.DefaultTimeout {
		t.Errorf("Timeout: got %v", cfg.Timeout)
	}
	if cfg.ConfigPath != "" {
		t.Errorf("ConfigPath: expected empty without config.json, got %q", cfg.ConfigPath)
	}
	if cfg.DBPath == "" {
		t.Error("DBPath: expected a home-directory default")
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := chtemp(t)
	clearEnv(t)
	writeConfig(t, dir, `{
  "default_format": "json",
  "default_period": "P1D",
  "timeout": "10s",
  "rate": 5,
  "base_url": "http://file.example/iv/",
  "db_path": "/tmp/file.db"
}`)

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Format != "json" || cfg.Period != "P1D" {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.Timeout != 10*time.Second {
		t.Errorf("Timeout: got %v", cfg.Timeout)
	}
	if cfg.Rate != 5 {
		t.Errorf("Rate: got %v", cfg.Rate)
	}
	if cfg.BaseURL != "http://file.example/iv/" {
		t.Errorf("BaseURL: got %q", cfg.BaseURL)
	}
	if cfg.DBPath != "/tmp/file.db" {
		t.Errorf("DBPath: got %q", cfg.DBPath)
	}
	if cfg.ConfigPath == "" {
		t.Error("ConfigPath should record the loaded file")
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	dir := chtemp(t)
	clearEnv(t)
	writeConfig(t, dir, `{"default_period": "P30D"}`)

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Period != "P30D" {
		t.Errorf("Period: got %q", cfg.Period)
	}
	if cfg.Format != config.DefaultFormat || cfg.BaseURL != config.DefaultBaseURL {
		t.Errorf("unset file fields must keep defaults: %+v", cfg)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	dir := chtemp(t)
	clearEnv(t)
	writeConfig(t, dir, `{"base_url": "http://file.example/iv/", "db_path": "/tmp/file.db"}`)
	t.Setenv(config.EnvBaseURL, "http://env.example/iv/")
	t.Setenv(config.EnvDBPath, "/tmp/env.db")

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BaseURL != "http://env.example/iv/" {
		t.Errorf("BaseURL: env should beat file, got %q", cfg.BaseURL)
	}
	if cfg.DBPath != "/tmp/env.db" {
		t.Errorf("DBPath: env should beat file, got %q", cfg.DBPath)
	}
}

func TestFlagOverridesEverything(t *testing.T) {
	dir := chtemp(t)
	clearEnv(t)
	writeConfig(t, dir, `{"base_url": "http://file.example/iv/"}`)
	t.Setenv(config.EnvBaseURL, "http://env.example/iv/")

	cfg, err := config.Load("http://flag.example/iv/")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BaseURL != "http://flag.example/iv/" {
		t.Errorf("BaseURL: flag should beat env and file, got %q", cfg.BaseURL)
	}
}

func TestMalformedFileIsIgnored(t *testing.T) {
	dir := chtemp(t)
	clearEnv(t)
	writeConfig(t, dir, `{not json`)

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load: a broken config.json must not be fatal, got %v", err)
	}
	if cfg.BaseURL != config.DefaultBaseURL {
		t.Errorf("BaseURL: expected defaults, got %q", cfg.BaseURL)
	}
}

func TestTemplateWriteReadRoundTrip(t *testing.T) {
	dir := chtemp(t)
	clearEnv(t)

	path := filepath.Join(dir, config.DefaultConfigFile)
	if err := config.WriteFile(path, config.Template()); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ConfigPath == "" {
		t.Error("written template should be picked up on the next load")
	}
	if cfg.Format != config.DefaultFormat || cfg.Period != config.DefaultPeriod {
		t.Errorf("template values should match defaults: %+v", cfg)
	}
}
