package cli

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/orizon-lang/rangeopt/internal/errors"
	"github.com/orizon-lang/rangeopt/internal/rangeloop"
)

func fixedLogger(buf *bytes.Buffer, verbose, debug bool) *Logger {
	l := NewLogger(buf, verbose, debug)
	l.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return l
}

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	l := fixedLogger(&buf, false, false)

	l.Info("hidden")
	l.Debug("hidden")
	l.Warn("careful %d", 1)
	l.Error("broken")

	want := "[WARN] 03:04:05: careful 1\n[ERROR] 03:04:05: broken\n"
	if buf.String() != want {
		t.Errorf("Expected %q, got %q", want, buf.String())
	}

	buf.Reset()
	l = fixedLogger(&buf, false, true)
	l.Info("shown")
	l.Debug("also shown")
	if got := strings.Count(buf.String(), "\n"); got != 2 {
		t.Errorf("Expected debug mode to log info and debug, got %q", buf.String())
	}
}

func TestLoggerColor(t *testing.T) {
	var buf bytes.Buffer
	l := fixedLogger(&buf, true, false)
	l.Color = true

	l.Info("hi")
	if !strings.HasPrefix(buf.String(), colorBlue+"[INFO]"+colorReset) {
		t.Errorf("Expected a coloured tag, got %q", buf.String())
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()

	cfg, err := LoadConfig(filepath.Join(dir, "missing.json"))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if *cfg != *DefaultConfig() {
		t.Errorf("Expected defaults for a missing file, got %+v", cfg)
	}

	path := filepath.Join(dir, "rangeopt.json")
	if err := os.WriteFile(path, []byte(`{"debug": true, "language_version": "1.0.0", "max_steps": 50}`), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err = LoadConfig(path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !cfg.Debug || cfg.LanguageVersion != "1.0.0" || cfg.MaxSteps != 50 || !cfg.Specialize {
		t.Errorf("Unexpected config %+v", cfg)
	}

	if err := os.WriteFile(path, []byte(`{`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("Expected a parse error")
	}
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	cfg := DefaultConfig()
	cfg.Listen = ":9000"

	if err := cfg.SaveConfig(path); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	got, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if *got != *cfg {
		t.Errorf("Expected %+v, got %+v", cfg, got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		key    string
	}{
		{"defaults", func(*Config) {}, ""},
		{"bad version", func(c *Config) { c.LanguageVersion = "latest" }, "language_version"},
		{"no budget", func(c *Config) { c.MaxSteps = 0 }, "max_steps"},
		{"cert without key", func(c *Config) { c.CertFile = "cert.pem" }, "cert_file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.key == "" {
				if err != nil {
					t.Fatalf("Unexpected error: %v", err)
				}
				return
			}

			var se *errors.StandardError
			if !stderrors.As(err, &se) || se.Category != errors.CategoryConfig {
				t.Fatalf("Expected a config error, got %v", err)
			}
			if se.Context["key"] != tt.key {
				t.Errorf("Expected key %s, got %v", tt.key, se.Context["key"])
			}
		})
	}
}

func TestCodegenOptions(t *testing.T) {
	cfg := DefaultConfig()

	opts, err := cfg.CodegenOptions()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if opts.Loops != rangeloop.DefaultOptions() {
		t.Errorf("Expected every generator, got %+v", opts.Loops)
	}

	cfg.Specialize = false
	opts, err = cfg.CodegenOptions()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if opts.Loops != (rangeloop.Options{}) {
		t.Errorf("Expected only the generic generator, got %+v", opts.Loops)
	}
}

func TestPrintVersion(t *testing.T) {
	info := GetVersionInfo()
	info.LanguageVersion = "1.1.0"
	info.Features = []string{"reversed-range-loops"}

	var buf bytes.Buffer
	if err := PrintVersion(&buf, "rangeopt", info, false); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "rangeopt v"+Version) || !strings.Contains(buf.String(), "+ reversed-range-loops") {
		t.Errorf("Unexpected output %q", buf.String())
	}

	buf.Reset()
	if err := PrintVersion(&buf, "rangeopt", info, true); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	var decoded struct {
		Tool        string      `json:"tool"`
		VersionInfo VersionInfo `json:"version_info"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Unexpected JSON error: %v", err)
	}
	if decoded.Tool != "rangeopt" || decoded.VersionInfo.LanguageVersion != "1.1.0" {
		t.Errorf("Unexpected JSON %+v", decoded)
	}
}

func TestValidateArgs(t *testing.T) {
	if err := ValidateArgs([]string{"a"}, 2, "rangeopt run FILE"); err == nil {
		t.Error("Expected an error for missing arguments")
	}
	if err := ValidateArgs([]string{"a", "b"}, 2, "rangeopt run FILE"); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
}
