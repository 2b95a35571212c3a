package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Quotes.MaxEntries != 10 {
		t.Errorf("Expected 10 max entries, got %d", cfg.Quotes.MaxEntries)
	}
	if cfg.Visuals.SlideDurationSec != 8 {
		t.Errorf("Expected 8s slide, got %d", cfg.Visuals.SlideDurationSec)
	}
	if cfg.Visuals.Model != "" {
		t.Errorf("Expected no checkpoint override by default, got %q", cfg.Visuals.Model)
	}
	if len(cfg.Visuals.Prompts) != 5 {
		t.Errorf("Expected 5 prompts, got %d", len(cfg.Visuals.Prompts))
	}
}

func TestLoadOverridesOnlyGivenFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
quotes:
  max_entries: 3
schedule:
  per_day: 2
upload:
  channel_id: UC123
`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Quotes.MaxEntries != 3 {
		t.Errorf("Expected 3 max entries, got %d", cfg.Quotes.MaxEntries)
	}
	if cfg.Schedule.PerDay != 2 {
		t.Errorf("Expected 2 per day, got %d", cfg.Schedule.PerDay)
	}
	if cfg.Schedule.IntervalHours != 2 {
		t.Errorf("Expected default interval 2, got %d", cfg.Schedule.IntervalHours)
	}
	if cfg.Quotes.URL != "https://zenquotes.io/api/quotes" {
		t.Errorf("Expected default quotes URL, got %q", cfg.Quotes.URL)
	}
	if cfg.Upload.ChannelID != "UC123" {
		t.Errorf("Expected channel UC123, got %q", cfg.Upload.ChannelID)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("YOUTUBE_CHANNEL_ID", "UCenv")
	t.Setenv("IMAGE_BACKEND", "pollinations")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Upload.ChannelID != "UCenv" {
		t.Errorf("Expected channel from env, got %q", cfg.Upload.ChannelID)
	}
	if cfg.Visuals.Backend != "pollinations" {
		t.Errorf("Expected backend from env, got %q", cfg.Visuals.Backend)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("schedule:\n  per_day: 0\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Expected validation error for per_day 0")
	}

	if err := os.WriteFile(path, []byte("quotes: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Expected parse error for malformed yaml")
	}
}

func TestDefaultPromptsAreCopied(t *testing.T) {
	cfg := Default()
	cfg.Visuals.Prompts[0] = "changed"
	if SerenityPrompts[0] == "changed" {
		t.Error("Expected Default to copy the prompt list")
	}
}
