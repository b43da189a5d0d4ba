package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfigFile(t, `
auth:
  token: secret-token
timeline:
  type: media
  batch_size: 50
  media_type: image
  retweets: true
search:
  media_filter: "filter:images"
database:
  path: /tmp/xmeta-test/accounts.db
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Auth.Token != "secret-token" {
		t.Errorf("Auth.Token = %q, want %q", cfg.Auth.Token, "secret-token")
	}
	if cfg.Timeline.Type != "media" {
		t.Errorf("Timeline.Type = %q, want %q", cfg.Timeline.Type, "media")
	}
	if cfg.Timeline.BatchSize != 50 {
		t.Errorf("Timeline.BatchSize = %d, want 50", cfg.Timeline.BatchSize)
	}
	if cfg.Timeline.MediaType != "image" {
		t.Errorf("Timeline.MediaType = %q, want %q", cfg.Timeline.MediaType, "image")
	}
	if !cfg.Timeline.Retweets {
		t.Errorf("Timeline.Retweets = false, want true")
	}
	if cfg.Search.MediaFilter != "filter:images" {
		t.Errorf("Search.MediaFilter = %q, want %q", cfg.Search.MediaFilter, "filter:images")
	}
	if cfg.Database.Path != "/tmp/xmeta-test/accounts.db" {
		t.Errorf("Database.Path = %q", cfg.Database.Path)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	// An empty file falls back to defaults for every key
	path := writeConfigFile(t, "")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Auth.Token != "" {
		t.Errorf("Auth.Token = %q, want empty", cfg.Auth.Token)
	}
	if cfg.Timeline.Type != "timeline" {
		t.Errorf("Timeline.Type = %q, want %q", cfg.Timeline.Type, "timeline")
	}
	if cfg.Timeline.BatchSize != 100 {
		t.Errorf("Timeline.BatchSize = %d, want 100", cfg.Timeline.BatchSize)
	}
	if cfg.Timeline.MediaType != "all" {
		t.Errorf("Timeline.MediaType = %q, want %q", cfg.Timeline.MediaType, "all")
	}
	if cfg.Timeline.Retweets {
		t.Errorf("Timeline.Retweets = true, want false")
	}
	if cfg.Search.MediaFilter != "filter:media" {
		t.Errorf("Search.MediaFilter = %q, want %q", cfg.Search.MediaFilter, "filter:media")
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "does-not-exist.yaml")

	// A missing config file is not an error, defaults apply
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Timeline.Type != "timeline" {
		t.Errorf("Timeline.Type = %q, want default", cfg.Timeline.Type)
	}
}

func TestResolveTimeline(t *testing.T) {
	cfg := &Config{}
	cfg.Timeline.Type = "media"
	cfg.Timeline.BatchSize = 100
	cfg.Timeline.MediaType = "image"
	cfg.Timeline.Retweets = true

	no := false

	tests := []struct {
		name         string
		kind         string
		batchSize    int
		mediaType    string
		retweets     *bool
		wantKind     string
		wantBatch    int
		wantMedia    string
		wantRetweets bool
	}{
		{"all unset", "", -1, "", nil, "media", 100, "image", true},
		{"all given", "tweets", 25, "video", &no, "tweets", 25, "video", false},
		{"explicit zero batch", "", 0, "", nil, "media", 0, "image", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, batch, media, retweets := cfg.ResolveTimeline(tt.kind, tt.batchSize, tt.mediaType, tt.retweets)
			if kind != tt.wantKind || batch != tt.wantBatch || media != tt.wantMedia || retweets != tt.wantRetweets {
				t.Errorf("ResolveTimeline() = (%q, %d, %q, %v), want (%q, %d, %q, %v)",
					kind, batch, media, retweets, tt.wantKind, tt.wantBatch, tt.wantMedia, tt.wantRetweets)
			}
		})
	}
}

func TestResolveMediaFilter(t *testing.T) {
	cfg := &Config{}
	cfg.Search.MediaFilter = "filter:media"

	if got := cfg.ResolveMediaFilter(""); got != "filter:media" {
		t.Errorf("ResolveMediaFilter(\"\") = %q, want %q", got, "filter:media")
	}
	if got := cfg.ResolveMediaFilter("filter:native_video"); got != "filter:native_video" {
		t.Errorf("ResolveMediaFilter() = %q, want %q", got, "filter:native_video")
	}
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	original := &Config{}
	original.Auth.Token = "saved-token"
	original.Timeline.Type = "media"
	original.Timeline.BatchSize = 200
	original.Timeline.MediaType = "video"
	original.Search.MediaFilter = "filter:native_video"

	if err := SaveConfig(original, path); err != nil {
		t.Fatalf("SaveConfig() error = %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if loaded.Auth.Token != "saved-token" {
		t.Errorf("Auth.Token = %q, want %q", loaded.Auth.Token, "saved-token")
	}
	if loaded.Timeline.BatchSize != 200 {
		t.Errorf("Timeline.BatchSize = %d, want 200", loaded.Timeline.BatchSize)
	}
	if loaded.Timeline.MediaType != "video" {
		t.Errorf("Timeline.MediaType = %q, want %q", loaded.Timeline.MediaType, "video")
	}
}
