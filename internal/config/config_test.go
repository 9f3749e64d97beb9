package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCacheBase_XDGSet(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/custom/cache")
	got := cacheBase()
	want := filepath.Join("/custom/cache", "ferrisdoc")
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if got := JSONCacheDir(); got != filepath.Join(want, "json") {
		t.Errorf("JSONCacheDir = %q", got)
	}
}

func TestCacheBase_HomeDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")
	got := cacheBase()
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("cannot determine home dir")
	}
	want := filepath.Join(home, ".cache", "ferrisdoc")
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestCacheBase_TmpFallback(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")
	t.Setenv("HOME", "")
	got := cacheBase()
	// Should use os.TempDir() when HOME is unset
	if !strings.Contains(got, "ferrisdoc") {
		t.Errorf("expected ferrisdoc in path, got %q", got)
	}
}

func TestDecode_Defaults(t *testing.T) {
	t.Parallel()

	cfg, err := Decode(map[string]interface{}{})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.OutputDir != DefaultOutputDir {
		t.Errorf("OutputDir = %q", cfg.OutputDir)
	}
	if cfg.ExternalBaseURL != "https://docs.rs" {
		t.Errorf("ExternalBaseURL = %q", cfg.ExternalBaseURL)
	}
	if cfg.IncludePrivate || cfg.IncludeForeignImpls {
		t.Error("private and foreign impls must be off by default")
	}
	if cfg.Workers() < 1 {
		t.Errorf("Workers() = %d", cfg.Workers())
	}
}

func TestDecode_Overrides(t *testing.T) {
	t.Parallel()

	cfg, err := Decode(map[string]interface{}{
		"output_dir":        "out",
		"include_private":   "true",
		"jobs":              3,
		"crate_version":     "1.2.3",
		"external_base_url": "https://docs.example.org",
		"highlight":         map[string]interface{}{"style": "monokai"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.OutputDir != "out" || !cfg.IncludePrivate || cfg.Workers() != 3 || cfg.CrateVersion != "1.2.3" {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if cfg.Highlight.Style != "monokai" || cfg.Highlight.PrimaryLanguage != "rust" {
		t.Errorf("highlight = %+v", cfg.Highlight)
	}
}

func TestDecode_ExpandsHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("cannot determine home dir")
	}
	cfg, err := Decode(map[string]interface{}{"output_dir": "~/docs"})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.OutputDir != filepath.Join(home, "docs") {
		t.Errorf("OutputDir = %q", cfg.OutputDir)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"ok", func(*Config) {}, ""},
		{"relative base url", func(c *Config) { c.ExternalBaseURL = "docs.rs" }, "external_base_url"},
		{"negative jobs", func(c *Config) { c.Jobs = -1 }, "jobs"},
		{"empty output", func(c *Config) { c.OutputDir = "" }, "output_dir"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}
