package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{
			name: "empty base url",
			mutate: func(cfg *Config) {
				cfg.BaseURL = ""
			},
			wantErr: ErrEmptyBaseURL,
		},
		{
			name: "base url without host",
			mutate: func(cfg *Config) {
				cfg.BaseURL = "http://"
			},
			wantErr: ErrBaseURLHost,
		},
		{
			name: "zero page size",
			mutate: func(cfg *Config) {
				cfg.PageMaxSize = 0
			},
			wantErr: ErrInvalidPageSize,
		},
		{
			name: "negative max pages",
			mutate: func(cfg *Config) {
				cfg.MaxPages = -1
			},
			wantErr: ErrInvalidMaxPages,
		},
		{
			name: "negative page delay",
			mutate: func(cfg *Config) {
				cfg.PageDelay = -time.Second
			},
			wantErr: ErrNegativeDelay,
		},
		{
			name: "zero timeout",
			mutate: func(cfg *Config) {
				cfg.Timeout = 0
			},
			wantErr: ErrInvalidTimeout,
		},
		{
			name: "zero auth retries",
			mutate: func(cfg *Config) {
				cfg.AuthRetries = 0
			},
			wantErr: ErrInvalidAuthRetries,
		},
		{
			name: "unknown output format",
			mutate: func(cfg *Config) {
				cfg.OutputFormat = "xml"
			},
			wantErr: ErrInvalidFormat,
		},
		{
			name: "empty user agent",
			mutate: func(cfg *Config) {
				cfg.UserAgent = ""
			},
			wantErr: ErrEmptyUserAgent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate, got %v", err)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := `
base_url: "http://banner.test/StudentRegistrationSsb/ssb"
campus: "BOS"
page_max_size: 100
page_delay: 50ms
term_count: 1
output_file: "out/snapshot.csv"
output_format: dual
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Campus != "BOS" {
		t.Fatalf("campus = %q, want BOS", cfg.Campus)
	}
	if cfg.PageMaxSize != 100 {
		t.Fatalf("page max size = %d, want 100", cfg.PageMaxSize)
	}
	if cfg.PageDelay != 50*time.Millisecond {
		t.Fatalf("page delay = %v, want 50ms", cfg.PageDelay)
	}
	if cfg.OutputFormat != "dual" {
		t.Fatalf("output format = %q, want dual", cfg.OutputFormat)
	}
	// untouched keys keep their defaults
	if cfg.AuthRetries != 3 {
		t.Fatalf("auth retries = %d, want default 3", cfg.AuthRetries)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("loaded config should validate, got %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}

func TestEnvInt(t *testing.T) {
	t.Setenv("BANNERWATCH_TEST_INT", "42")
	value, ok, err := EnvInt("BANNERWATCH_TEST_INT")
	if err != nil || !ok || value != 42 {
		t.Fatalf("EnvInt = (%d, %v, %v), want (42, true, nil)", value, ok, err)
	}

	t.Setenv("BANNERWATCH_TEST_INT", "nope")
	if _, _, err := EnvInt("BANNERWATCH_TEST_INT"); err == nil {
		t.Fatalf("expected parse error")
	}

	if _, ok, _ := EnvInt("BANNERWATCH_TEST_INT_ABSENT"); ok {
		t.Fatalf("absent variable should report ok=false")
	}
}
