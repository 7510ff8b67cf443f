package config

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Host != "127.0.0.1" {
		t.Errorf("Expected default host to be '127.0.0.1', got '%s'", cfg.Host)
	}

	if cfg.Port != 8000 {
		t.Errorf("Expected default port to be 8000, got %d", cfg.Port)
	}

	if cfg.OutputDir != "output" {
		t.Errorf("Expected default output directory to be 'output', got '%s'", cfg.OutputDir)
	}

	if cfg.MaxFileSize != 100*1024*1024 {
		t.Errorf("Expected default max file size to be 100MB, got %d", cfg.MaxFileSize)
	}

	if !cfg.PrimaryTables {
		t.Error("Expected the primary table detector to be enabled by default")
	}

	if len(cfg.OCRLanguages) != 1 || cfg.OCRLanguages[0] != "eng" {
		t.Errorf("Expected default OCR languages to be [eng], got %v", cfg.OCRLanguages)
	}

	if cfg.LogLevel != "info" {
		t.Errorf("Expected default log level to be 'info', got '%s'", cfg.LogLevel)
	}

	if cfg.ServiceName != "pdf-to-xml-converter" {
		t.Errorf("Expected default service name to be 'pdf-to-xml-converter', got '%s'", cfg.ServiceName)
	}
}

func TestConfigValidate(t *testing.T) {
	valid := func(t *testing.T) *Config {
		cfg := DefaultConfig()
		cfg.OutputDir = t.TempDir()
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(cfg *Config)
		wantErr bool
	}{
		{
			name:    "valid config",
			mutate:  func(*Config) {},
			wantErr: false,
		},
		{
			name:    "port too low",
			mutate:  func(cfg *Config) { cfg.Port = 0 },
			wantErr: true,
		},
		{
			name:    "port too high",
			mutate:  func(cfg *Config) { cfg.Port = 70000 },
			wantErr: true,
		},
		{
			name:    "empty output directory",
			mutate:  func(cfg *Config) { cfg.OutputDir = "" },
			wantErr: true,
		},
		{
			name:    "non-positive max file size",
			mutate:  func(cfg *Config) { cfg.MaxFileSize = 0 },
			wantErr: true,
		},
		{
			name:    "no OCR languages",
			mutate:  func(cfg *Config) { cfg.OCRLanguages = nil },
			wantErr: true,
		},
		{
			name:    "invalid log level",
			mutate:  func(cfg *Config) { cfg.LogLevel = "trace" },
			wantErr: true,
		},
		{
			name:    "uppercase log level rejected",
			mutate:  func(cfg *Config) { cfg.LogLevel = "DEBUG" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid(t)
			tt.mutate(cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Config.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigValidateCreatesOutputDir(t *testing.T) {
	cfg := DefaultConfig()
	cfg.OutputDir = filepath.Join(t.TempDir(), "nested", "output")

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Config.Validate() should create a missing output directory, got error: %v", err)
	}
}

func TestConfigAddress(t *testing.T) {
	cfg := &Config{
		Host: "192.168.1.1",
		Port: 9090,
	}

	expected := "192.168.1.1:9090"
	if got := cfg.Address(); got != expected {
		t.Errorf("Config.Address() = %v, want %v", got, expected)
	}
}

func TestConfigIsDebug(t *testing.T) {
	tests := []struct {
		logLevel string
		want     bool
	}{
		{"debug", true},
		{"info", false},
		{"warn", false},
		{"error", false},
	}

	for _, tt := range tests {
		t.Run(tt.logLevel, func(t *testing.T) {
			cfg := &Config{LogLevel: tt.logLevel}
			if got := cfg.IsDebug(); got != tt.want {
				t.Errorf("Config.IsDebug() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConfigString(t *testing.T) {
	cfg := &Config{
		Host:        "localhost",
		Port:        8000,
		OutputDir:   "/var/lib/pdf2xml",
		LogLevel:    "debug",
		MaxFileSize: 1024,
	}

	result := cfg.String()

	expectedSubstrings := []string{
		"Host: localhost",
		"Port: 8000",
		"OutputDir: /var/lib/pdf2xml",
		"LogLevel: debug",
		"MaxFileSize: 1024",
	}

	for _, substr := range expectedSubstrings {
		if !strings.Contains(result, substr) {
			t.Errorf("Config.String() result doesn't contain expected substring: %s\nGot: %s", substr, result)
		}
	}
}
