package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "spectrowave-config-test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	t.Run("Valid Config", func(t *testing.T) {
		configContent := `
settings:
  dft_size: 2048
  samples_overlap: 0.75
  dft_window: hamming
  color_scheme: blue

source:
  mode: file
  path: in.wav

output:
  path: out.png

display:
  mode: headless

storage:
  database_path: test.db
`
		configPath := filepath.Join(tempDir, "config.yaml")
		if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
			t.Fatalf("Failed to write config: %v", err)
		}

		cfg, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("LoadConfig failed: %v", err)
		}

		if cfg.Settings.DftSize != 2048 {
			t.Errorf("expected dft size 2048, got %d", cfg.Settings.DftSize)
		}
		if cfg.Settings.SamplesOverlap != 0.75 {
			t.Errorf("expected overlap 0.75, got %f", cfg.Settings.SamplesOverlap)
		}
		if cfg.Settings.DftWindow != WindowHamming {
			t.Errorf("expected hamming window, got %s", cfg.Settings.DftWindow)
		}
		if cfg.Source.Mode != "file" {
			t.Errorf("expected file mode, got %s", cfg.Source.Mode)
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("expected valid config, got error: %v", err)
		}
	})

	t.Run("Missing File", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(tempDir, "does-not-exist.yaml"))
		if err == nil {
			t.Fatal("expected error for missing config file")
		}
	})

	t.Run("Defaults Applied", func(t *testing.T) {
		configPath := filepath.Join(tempDir, "minimal.yaml")
		if err := os.WriteFile(configPath, []byte("settings:\n  dft_window: hann\n"), 0644); err != nil {
			t.Fatalf("Failed to write config: %v", err)
		}
		cfg, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("LoadConfig failed: %v", err)
		}
		if cfg.Settings.DftSize != 1024 {
			t.Errorf("expected default dft size 1024, got %d", cfg.Settings.DftSize)
		}
		if cfg.Settings.ColorScheme != ColorHeat {
			t.Errorf("expected default color scheme heat, got %s", cfg.Settings.ColorScheme)
		}
	})
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid defaults", func(c *Config) {}, false},
		{"dft size not power of two", func(c *Config) { c.Settings.DftSize = 1000 }, true},
		{"dft size below limit", func(c *Config) { c.Settings.DftSize = 32 }, true},
		{"overlap too high", func(c *Config) { c.Settings.SamplesOverlap = 0.99 }, true},
		{"magnitude min >= max", func(c *Config) { c.Settings.MagnitudeMin = 50; c.Settings.MagnitudeMax = 45 }, true},
		{"unknown window", func(c *Config) { c.Settings.DftWindow = "triangle" }, true},
		{"unknown color scheme", func(c *Config) { c.Settings.ColorScheme = "rainbow" }, true},
		{"zero width", func(c *Config) { c.Settings.Width = 0 }, true},
		{"file mode missing path", func(c *Config) { c.Source.Mode = "file" }, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.wantErr && err == nil {
				t.Errorf("expected error, got nil")
			}
			if !tc.wantErr && err != nil {
				t.Errorf("expected no error, got %v", err)
			}
		})
	}
}

func TestSettingsHop(t *testing.T) {
	s := DefaultSettings()
	s.DftSize = 1024
	s.SamplesOverlap = 0.5
	if got := s.Hop(); got != 512 {
		t.Errorf("expected hop 512, got %d", got)
	}

	s.SamplesOverlap = 0.75
	if got := s.Hop(); got != 256 {
		t.Errorf("expected hop 256, got %d", got)
	}
}
