package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfiguration_NoFile(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() with empty path error = %v", err)
	}

	if cfg == nil {
		t.Fatal("LoadConfiguration() returned nil config")
	}

	if cfg.Version != 1 {
		t.Errorf("Default config version = %d, want 1", cfg.Version)
	}

	if len(cfg.Render.DefaultFontFamily) == 0 {
		t.Error("Default font family should not be empty")
	}

	if cfg.Render.DeviceScale <= 0 {
		t.Errorf("DeviceScale = %f, should be positive", cfg.Render.DeviceScale)
	}
}

func TestLoadConfiguration_WithFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `version: 1
render:
  default_font_family: "Times New Roman"
  default_font_size: 24
  device_scale: 1.0
  page_gap: 20.0
dump:
  tree: full
  pages: true
logging:
  console:
    level: normal
  file:
    level: debug
    destination: /tmp/test.log
    mode: append
reporting:
  destination: /tmp/test-report.zip
`

	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := LoadConfiguration(configPath)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	if cfg.Render.DefaultFontFamily != "Times New Roman" {
		t.Errorf("DefaultFontFamily = %q, want %q", cfg.Render.DefaultFontFamily, "Times New Roman")
	}

	if cfg.Render.DefaultFontSize != 24 {
		t.Errorf("DefaultFontSize = %d, want 24", cfg.Render.DefaultFontSize)
	}

	if cfg.Render.DeviceScale != 1.0 {
		t.Errorf("DeviceScale = %f, want 1.0", cfg.Render.DeviceScale)
	}

	if cfg.Dump.Tree != TreeDumpModeFull {
		t.Errorf("Dump.Tree = %v, want %v", cfg.Dump.Tree, TreeDumpModeFull)
	}

	if !cfg.Dump.Pages {
		t.Error("Expected Dump.Pages to be true")
	}
}

func TestLoadConfiguration_NonExistentFile(t *testing.T) {
	_, err := LoadConfiguration("/nonexistent/config.yaml")
	if err == nil {
		t.Error("Expected error for nonexistent file")
	}
}

func TestLoadConfiguration_UnknownFields(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "unknown.yaml")

	configWithUnknown := `version: 1
unknown_field: value
`

	if err := os.WriteFile(configPath, []byte(configWithUnknown), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	_, err := LoadConfiguration(configPath)
	if err == nil {
		t.Error("Expected error for unknown fields")
	}
}

func TestLoadConfiguration_ValidationError(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid_values.yaml")

	// Invalid version number
	configWithInvalidVersion := `version: 2
`

	if err := os.WriteFile(configPath, []byte(configWithInvalidVersion), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	_, err := LoadConfiguration(configPath)
	if err == nil {
		t.Error("Expected validation error for invalid version")
	}
}

func TestLoadConfiguration_MergeWithDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "partial.yaml")

	// Partial config that only overrides some values
	partialConfig := `version: 1
render:
  default_font_family: Georgia
`

	if err := os.WriteFile(configPath, []byte(partialConfig), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := LoadConfiguration(configPath)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	if cfg.Render.DefaultFontFamily != "Georgia" {
		t.Errorf("DefaultFontFamily = %q, want %q", cfg.Render.DefaultFontFamily, "Georgia")
	}

	// Unspecified fields keep template defaults
	if cfg.Render.DeviceScale <= 0 {
		t.Error("DeviceScale should keep its default value")
	}

	if cfg.Render.DefaultFontSize == 0 {
		t.Error("DefaultFontSize should keep its default value")
	}
}

func TestPrepare(t *testing.T) {
	data, err := Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}

	if len(data) == 0 {
		t.Error("Prepare() returned empty data")
	}

	// Verify it's valid YAML by trying to unmarshal
	cfg := &Config{}
	_, err = unmarshalConfig(data, cfg, true)
	if err != nil {
		t.Errorf("Prepared config is not valid: %v", err)
	}
}

func TestDump(t *testing.T) {
	cfg := &Config{
		Version: 1,
		Render: RenderConfig{
			DefaultFontFamily: "Calibri",
			DefaultFontSize:   22,
			DeviceScale:       4.0 / 3.0,
			PageGap:           30.0,
			InterLineSpacing:  1.0,
		},
		Dump: DumpConfig{
			Tree: TreeDumpModeSummary,
		},
	}

	data, err := Dump(cfg)
	if err != nil {
		t.Fatalf("Dump() error = %v", err)
	}

	if len(data) == 0 {
		t.Error("Dump() returned empty data")
	}

	// Verify we can load it back
	cfg2 := &Config{}
	_, err = unmarshalConfig(data, cfg2, false)
	if err != nil {
		t.Errorf("Dumped config cannot be loaded: %v", err)
	}

	if cfg2.Render.DefaultFontFamily != cfg.Render.DefaultFontFamily {
		t.Errorf("DefaultFontFamily mismatch after dump/load: got %q, want %q",
			cfg2.Render.DefaultFontFamily, cfg.Render.DefaultFontFamily)
	}

	if cfg2.Dump.Tree != cfg.Dump.Tree {
		t.Errorf("Dump.Tree mismatch after dump/load: got %v, want %v", cfg2.Dump.Tree, cfg.Dump.Tree)
	}
}

func TestUnmarshalConfig(t *testing.T) {
	t.Run("valid config without processing", func(t *testing.T) {
		data := []byte(`version: 1`)
		cfg := &Config{}

		result, err := unmarshalConfig(data, cfg, false)
		if err != nil {
			t.Errorf("unmarshalConfig() error = %v", err)
		}

		if result == nil {
			t.Fatal("unmarshalConfig() returned nil")
		}

		if result.Version != 1 {
			t.Errorf("Version = %d, want 1", result.Version)
		}
	})

	t.Run("invalid yaml", func(t *testing.T) {
		data := []byte(`invalid: [yaml`)
		cfg := &Config{}

		_, err := unmarshalConfig(data, cfg, false)
		if err == nil {
			t.Error("Expected error for invalid YAML")
		}
	})
}

func TestTreeDumpMode_Strings(t *testing.T) {
	tests := []struct {
		mode     TreeDumpMode
		expected string
	}{
		{TreeDumpModeNone, "none"},
		{TreeDumpModeSummary, "summary"},
		{TreeDumpModeFull, "full"},
		{TreeDumpMode(99), "TreeDumpMode(99)"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			got := tt.mode.String()
			if got != tt.expected {
				t.Errorf("String() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestParseTreeDumpMode(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		expected  TreeDumpMode
		shouldErr bool
	}{
		{"none", "none", TreeDumpModeNone, false},
		{"summary", "summary", TreeDumpModeSummary, false},
		{"full", "full", TreeDumpModeFull, false},
		{"invalid", "invalid", TreeDumpMode(0), true},
		{"empty", "", TreeDumpMode(0), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTreeDumpMode(tt.input)
			if tt.shouldErr {
				if err == nil {
					t.Error("Expected error, got nil")
				}
			} else {
				if err != nil {
					t.Errorf("Unexpected error: %v", err)
				}
				if got != tt.expected {
					t.Errorf("ParseTreeDumpMode(%q) = %v, want %v", tt.input, got, tt.expected)
				}
			}
		})
	}
}

func TestTreeDumpMode_UnmarshalText(t *testing.T) {
	var m TreeDumpMode
	if err := m.UnmarshalText([]byte("full")); err != nil {
		t.Fatalf("UnmarshalText() error = %v", err)
	}
	if m != TreeDumpModeFull {
		t.Errorf("UnmarshalText(full) = %v, want %v", m, TreeDumpModeFull)
	}
	if err := m.UnmarshalText([]byte("bogus")); err == nil {
		t.Error("Expected error for invalid mode name")
	}
}
