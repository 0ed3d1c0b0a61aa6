package source

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeSource(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name+".yml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestConfigCacheLoadValidConfig(t *testing.T) {
	tempDir := t.TempDir()

	writeSource(t, tempDir, "test", `
url: "https://example.com/feed.xml"

settings:
  enabled: true
  encoding: "windows-1251"
  refresh_interval: 1800
  max_items: 25
  timeout: 15

filters:
  - field: "title"
    includes:
      - "technology"
    excludes:
      - "spam"
`)

	configCache := NewConfigCache(tempDir)
	if err := configCache.Run(); err != nil {
		t.Fatal(err)
	}

	if configCache.GetConfigCount() != 1 {
		t.Errorf("Expected 1 config, got %d", configCache.GetConfigCount())
	}

	config, err := configCache.GetConfig("test")
	if err != nil {
		t.Fatal(err)
	}

	if config.Name != "test" {
		t.Errorf("Expected name 'test', got '%s'", config.Name)
	}
	if config.Location() != "https://example.com/feed.xml" {
		t.Errorf("Expected location 'https://example.com/feed.xml', got '%s'", config.Location())
	}
	if config.Settings.Kind != KindFeed {
		t.Errorf("Expected default kind feed, got '%s'", config.Settings.Kind)
	}
	if config.Settings.Encoding != "windows-1251" {
		t.Errorf("Expected encoding 'windows-1251', got '%s'", config.Settings.Encoding)
	}
	if config.RefreshEvery() != 1800*time.Second {
		t.Errorf("Expected refresh interval 1800s, got %v", config.RefreshEvery())
	}
	if config.FetchTimeout() != 15*time.Second {
		t.Errorf("Expected timeout 15s, got %v", config.FetchTimeout())
	}
	if config.Settings.MaxItems != 25 {
		t.Errorf("Expected max items 25, got %d", config.Settings.MaxItems)
	}
	if len(config.Filters) != 1 {
		t.Errorf("Expected 1 filter, got %d", len(config.Filters))
	}
}

func TestConfigCacheLoadConfigWithDefaults(t *testing.T) {
	tempDir := t.TempDir()

	writeSource(t, tempDir, "local", `
path: "./testdata/feed.xml"

settings:
  enabled: true
`)

	configCache := NewConfigCache(tempDir)
	if err := configCache.Run(); err != nil {
		t.Fatal(err)
	}

	config, err := configCache.GetConfig("local")
	if err != nil {
		t.Fatal(err)
	}

	if config.RefreshEvery() != 3600*time.Second {
		t.Errorf("Expected default refresh interval 3600s, got %v", config.RefreshEvery())
	}
	if config.Settings.MaxItems != 100 {
		t.Errorf("Expected default max items 100, got %d", config.Settings.MaxItems)
	}
	if config.Settings.Timeout != 30 {
		t.Errorf("Expected default timeout 30, got %d", config.Settings.Timeout)
	}
	if config.Location() != "./testdata/feed.xml" {
		t.Errorf("Expected path location, got '%s'", config.Location())
	}
}

func TestConfigCacheInvalidConfig(t *testing.T) {
	tests := map[string]string{
		"missing location": `
settings:
  enabled: true
`,
		"url and path": `
url: "https://example.com/feed.xml"
path: "feed.xml"
`,
		"unknown kind": `
url: "https://example.com/feed.xml"
settings:
  kind: "sitemap"
`,
		"unknown filter field": `
url: "https://example.com/feed.xml"
filters:
  - field: "description"
    includes: ["go"]
`,
		"empty filter": `
url: "https://example.com/feed.xml"
filters:
  - field: "title"
`,
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			tempDir := t.TempDir()
			writeSource(t, tempDir, "invalid", content)

			configCache := NewConfigCache(tempDir)
			if err := configCache.Run(); err == nil {
				t.Error("Expected error for invalid config")
			}
		})
	}
}

func TestConfigCacheEmptyDirectory(t *testing.T) {
	configCache := NewConfigCache(t.TempDir())
	if err := configCache.Run(); err != nil {
		t.Fatal(err)
	}

	if configCache.GetConfigCount() != 0 {
		t.Errorf("Expected 0 configs from empty directory, got %d", configCache.GetConfigCount())
	}
}

func TestConfigCacheMissingDirectory(t *testing.T) {
	configCache := NewConfigCache(filepath.Join(t.TempDir(), "missing"))
	if err := configCache.Run(); err != nil {
		t.Errorf("Expected no error for missing directory, got: %v", err)
	}
}

func TestConfigCacheEnabledConfigs(t *testing.T) {
	tempDir := t.TempDir()
	writeSource(t, tempDir, "on", "url: \"https://a.example/feed\"\nsettings:\n  enabled: true\n")
	writeSource(t, tempDir, "off", "url: \"https://b.example/feed\"\nsettings:\n  enabled: false\n")

	configCache := NewConfigCache(tempDir)
	if err := configCache.Run(); err != nil {
		t.Fatal(err)
	}

	enabled := configCache.GetEnabledConfigs()
	if len(enabled) != 1 {
		t.Fatalf("Expected 1 enabled config, got %d", len(enabled))
	}
	if _, ok := enabled["on"]; !ok {
		t.Error("Expected 'on' to be enabled")
	}
	if len(configCache.GetConfigs()) != 2 {
		t.Errorf("Expected 2 configs, got %d", len(configCache.GetConfigs()))
	}
	if _, err := configCache.GetConfig("nope"); err == nil {
		t.Error("Expected error for unknown source")
	}
}

func TestConfigCacheAddConfig(t *testing.T) {
	tempDir := filepath.Join(t.TempDir(), "sources")

	configCache := NewConfigCache(tempDir)
	config := &Config{
		Name:     "example-blog",
		URL:      "https://example.com/feed.xml",
		Settings: ConfigSettings{Enabled: true},
	}
	if err := configCache.AddConfig(config); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	reloaded := NewConfigCache(tempDir)
	if err := reloaded.Run(); err != nil {
		t.Fatal(err)
	}
	got, err := reloaded.GetConfig("example-blog")
	if err != nil {
		t.Fatal(err)
	}
	if got.URL != config.URL {
		t.Errorf("Expected URL %s, got: %s", config.URL, got.URL)
	}
	if got.Settings.Kind != KindFeed {
		t.Errorf("Expected kind feed, got: %s", got.Settings.Kind)
	}

	err = configCache.AddConfig(&Config{Name: "example-blog", URL: "https://other.example/feed"})
	if !errors.Is(err, ErrConfigExists) {
		t.Errorf("Expected ErrConfigExists, got: %v", err)
	}
}

func TestNameFor(t *testing.T) {
	tests := map[string]string{
		"Example Blog":                 "example-blog",
		"https://example.com/feed.xml": "https-example-com-feed-xml",
		"  --Go News!!  ":              "go-news",
	}

	for input, expected := range tests {
		if got := NameFor(input); got != expected {
			t.Errorf("Expected NameFor(%q) = %q, got: %q", input, expected, got)
		}
	}
}
