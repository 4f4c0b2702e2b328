package config

import (
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Concurrent != 5 {
		t.Errorf("default Concurrent = %d, want 5", cfg.Concurrent)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("default Timeout = %v, want 30s", cfg.Timeout)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config failed validation: %v", err)
	}
}

func TestApplyFileConfig(t *testing.T) {
	cfg := DefaultConfig()
	data := []byte(`{"outputDir": "/srv/arena", "concurrent": 8, "timeout": 60, "unknownKey": true}`)
	if err := cfg.apply(data, "arena-dl.json"); err != nil {
		t.Fatalf("apply returned error: %v", err)
	}
	if cfg.OutputDir != "/srv/arena" {
		t.Errorf("OutputDir = %q, want /srv/arena", cfg.OutputDir)
	}
	if cfg.Concurrent != 8 {
		t.Errorf("Concurrent = %d, want 8", cfg.Concurrent)
	}
	if cfg.Timeout != 60*time.Second {
		t.Errorf("Timeout = %v, want 60s", cfg.Timeout)
	}
}

func TestApplyPartialFileKeepsDefaults(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.apply([]byte(`{"concurrent": 2}`), "arena-dl.json"); err != nil {
		t.Fatalf("apply returned error: %v", err)
	}
	if cfg.Concurrent != 2 {
		t.Errorf("Concurrent = %d, want 2", cfg.Concurrent)
	}
	if cfg.OutputDir != "." {
		t.Errorf("OutputDir = %q, want default", cfg.OutputDir)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want default", cfg.Timeout)
	}
}

func TestApplyMalformedFile(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.apply([]byte(`{not json`), "arena-dl.json"); err == nil {
		t.Error("expected error for malformed JSON")
	}
}

func TestEnvOverridesFile(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.apply([]byte(`{"concurrent": 2, "timeout": 10}`), "arena-dl.json"); err != nil {
		t.Fatalf("apply returned error: %v", err)
	}

	t.Setenv("ARENADL_OUTPUT_DIR", "/env/dir")
	t.Setenv("ARENADL_CONCURRENT", "9")
	t.Setenv("ARENADL_TIMEOUT", "45")
	cfg.loadFromEnv()

	if cfg.OutputDir != "/env/dir" {
		t.Errorf("OutputDir = %q, want /env/dir", cfg.OutputDir)
	}
	if cfg.Concurrent != 9 {
		t.Errorf("Concurrent = %d, want 9", cfg.Concurrent)
	}
	if cfg.Timeout != 45*time.Second {
		t.Errorf("Timeout = %v, want 45s", cfg.Timeout)
	}
}

func TestEnvIgnoresInvalidValues(t *testing.T) {
	cfg := DefaultConfig()
	t.Setenv("ARENADL_CONCURRENT", "zero")
	t.Setenv("ARENADL_TIMEOUT", "-5")
	cfg.loadFromEnv()
	if cfg.Concurrent != 5 {
		t.Errorf("Concurrent = %d, want default 5", cfg.Concurrent)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want default 30s", cfg.Timeout)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"empty output dir", func(c *Config) { c.OutputDir = "" }, true},
		{"zero concurrent", func(c *Config) { c.Concurrent = 0 }, true},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
