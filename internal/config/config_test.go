package config

import (
	"os"
	"path/filepath"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, e := range []string{
		"FINHARVEST_DART_API_KEY", "OPENDART_API_KEY",
		"NAVER_CLIENT_ID", "NAVER_CLIENT_SECRET",
	} {
		os.Unsetenv(e)
	}
}

func TestLoadReturnsDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Dart.BatchSize != 400 {
		t.Errorf("Dart.BatchSize: got %d, want 400", cfg.Dart.BatchSize)
	}
	if cfg.Dart.DelistCutoffYears != 2 {
		t.Errorf("Dart.DelistCutoffYears: got %d, want 2", cfg.Dart.DelistCutoffYears)
	}
	if cfg.News.StartDate != "2015-01-01" || cfg.News.EndDate != "2024-12-31" {
		t.Errorf("News window: got %s..%s", cfg.News.StartDate, cfg.News.EndDate)
	}
	if cfg.News.MaxArticles != 500 || cfg.News.MaxVariations != 3 {
		t.Errorf("News caps: got %d/%d", cfg.News.MaxArticles, cfg.News.MaxVariations)
	}
	if cfg.News.Concurrency != 20 || cfg.News.ContentMaxLen != 5000 {
		t.Errorf("News fetch settings: got %d/%d", cfg.News.Concurrency, cfg.News.ContentMaxLen)
	}
	if cfg.Storage.CachePath == "" || cfg.Storage.OutputDir == "" {
		t.Error("expected storage defaults")
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level: got %q, want info", cfg.Logging.Level)
	}
}

func TestLoadFromFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
dart:
  api_key: file-key
  batch_size: 50
news:
  start_date: "2020-01-01"
storage:
  output_dir: /tmp/out
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error: %v", err)
	}
	if cfg.Dart.APIKey != "file-key" {
		t.Errorf("Dart.APIKey: got %q", cfg.Dart.APIKey)
	}
	if cfg.Dart.BatchSize != 50 {
		t.Errorf("Dart.BatchSize: got %d, want 50", cfg.Dart.BatchSize)
	}
	if cfg.News.StartDate != "2020-01-01" {
		t.Errorf("News.StartDate: got %q", cfg.News.StartDate)
	}
	// Untouched keys keep defaults.
	if cfg.News.MaxArticles != 500 {
		t.Errorf("News.MaxArticles: got %d, want 500", cfg.News.MaxArticles)
	}
	if cfg.Storage.OutputDir != "/tmp/out" {
		t.Errorf("Storage.OutputDir: got %q", cfg.Storage.OutputDir)
	}
}

func TestOverrideFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENDART_API_KEY", "env-dart-key")
	t.Setenv("NAVER_CLIENT_ID", "env-id")
	t.Setenv("NAVER_CLIENT_SECRET", "env-secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Dart.APIKey != "env-dart-key" {
		t.Errorf("Dart.APIKey: got %q", cfg.Dart.APIKey)
	}
	if cfg.Naver.ClientID != "env-id" || cfg.Naver.ClientSecret != "env-secret" {
		t.Errorf("Naver creds: got %q/%q", cfg.Naver.ClientID, cfg.Naver.ClientSecret)
	}
}

func TestCheckAPIKeys(t *testing.T) {
	clearEnv(t)

	cfg := &Config{}
	statuses := CheckAPIKeys(cfg)
	if len(statuses) != 3 {
		t.Fatalf("expected 3 key statuses, got %d", len(statuses))
	}
	for _, s := range statuses {
		if s.IsSet || s.Source != KeySourceNone {
			t.Errorf("%s: expected unset, got %+v", s.Name, s)
		}
	}

	cfg.Dart.APIKey = "abcdefghijklmnop"
	statuses = CheckAPIKeys(cfg)
	if !statuses[0].IsSet || statuses[0].Source != KeySourceConfig {
		t.Errorf("expected config-sourced key, got %+v", statuses[0])
	}
	if statuses[0].Masked != "abc...nop" {
		t.Errorf("unexpected mask: %q", statuses[0].Masked)
	}
}

func TestMaskKey(t *testing.T) {
	if got := maskKey("short"); got != "***" {
		t.Errorf("short key mask: got %q", got)
	}
	if got := maskKey("abcdefghijkl"); got != "abc...jkl" {
		t.Errorf("long key mask: got %q", got)
	}
}
