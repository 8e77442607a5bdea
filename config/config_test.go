package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestDecode(t *testing.T) {
	testCases := []struct {
		title    string
		data     string
		expected Config
	}{
		{
			title:    "Empty file",
			data:     "",
			expected: Default(),
		},
		{
			title: "All keys",
			data: `
timeout = "5s"
follow_redirects = true
user_agent = "bot/1"
page_param = "p"
per_page = 50
max_pages = 3
`,
			expected: Config{
				Timeout:         "5s",
				FollowRedirects: true,
				UserAgent:       "bot/1",
				PageParam:       "p",
				PerPage:         50,
				MaxPages:        3,
			},
		},
		{
			title: "Partial",
			data:  `per_page = 25`,
			expected: Config{
				Timeout:   "30s",
				PageParam: "page",
				PerPage:   25,
			},
		},
	}
	for _, tt := range testCases {
		t.Run(tt.title, func(t *testing.T) {
			actual, err := Decode([]byte(tt.data))
			if err != nil {
				t.Fatalf("unexpected error: err=%+v", err)
			}
			if !reflect.DeepEqual(actual, tt.expected) {
				t.Errorf("unexpected config: expected=%+v, actual=%+v", tt.expected, actual)
			}
		})
	}
}

func TestDecode_Errors(t *testing.T) {
	testCases := []struct {
		title string
		data  string
	}{
		{title: "Unknown key", data: `colour = "always"`},
		{title: "Wrong type", data: `per_page = "ten"`},
		{title: "Negative", data: `max_pages = -1`},
		{title: "Broken syntax", data: `timeout = `},
	}
	for _, tt := range testCases {
		t.Run(tt.title, func(t *testing.T) {
			if _, err := Decode([]byte(tt.data)); err == nil {
				t.Errorf("expected an error")
			}
		})
	}
}

func TestLoad(t *testing.T) {
	// Setup
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	// Exercise & Verify: a missing default file is fine
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: err=%+v", err)
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Errorf("unexpected config: %+v", cfg)
	}

	// An explicit path must exist
	if _, err := Load(filepath.Join(dir, "nope.toml")); err == nil {
		t.Errorf("expected an error for a missing explicit file")
	}

	// The default file is picked up
	if err := os.MkdirAll(filepath.Join(dir, "recurl"), 0o755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(DefaultPath(), []byte(`user_agent = "x/1"`), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	cfg, err = Load("")
	if err != nil {
		t.Fatalf("unexpected error: err=%+v", err)
	}
	if cfg.UserAgent != "x/1" {
		t.Errorf("unexpected user agent: %s", cfg.UserAgent)
	}
}
