package config_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/reoring/goseal"
	"github.com/reoring/goseal/config"
)

func TestLoad_ValidConfig(t *testing.T) {
	content := `
limits:
  max_depth: 32
  max_bytes: 1048576
  max_objects: 500
  duplicate_keys: error
format: xml-pretty
json_driver: encoding/json
language: ja
logging:
  level: debug
  format: json
`
	cfg := writeAndLoad(t, content)

	if cfg.Limits.MaxDepth != 32 {
		t.Errorf("MaxDepth = %d, want 32", cfg.Limits.MaxDepth)
	}
	if cfg.Limits.MaxBytes != 1048576 {
		t.Errorf("MaxBytes = %d, want 1048576", cfg.Limits.MaxBytes)
	}
	if cfg.Limits.MaxObjects != 500 {
		t.Errorf("MaxObjects = %d, want 500", cfg.Limits.MaxObjects)
	}
	if cfg.OutputFormat() != goseal.FormatXMLPretty {
		t.Errorf("OutputFormat = %v, want xml-pretty", cfg.OutputFormat())
	}
	if cfg.Language != "ja" {
		t.Errorf("Language = %s, want ja", cfg.Language)
	}

	o := cfg.Options(nil, nil)
	if o.MaxDepth != 32 || o.MaxBytes != 1048576 || o.MaxObjects != 500 {
		t.Errorf("Options limits = %d/%d/%d", o.MaxDepth, o.MaxBytes, o.MaxObjects)
	}
	if o.OnDuplicateKey != goseal.Error {
		t.Errorf("OnDuplicateKey = %v, want Error", o.OnDuplicateKey)
	}
	if o.JSONDriver == nil || o.JSONDriver.Name() != "encoding/json" {
		t.Errorf("JSONDriver = %v, want encoding/json", o.JSONDriver)
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg := writeAndLoad(t, "limits: {}\n")

	if cfg.Limits.MaxDepth != 0 || cfg.Limits.MaxBytes != 0 || cfg.Limits.MaxObjects != 0 {
		t.Errorf("limits should default to unbounded, got %+v", cfg.Limits)
	}
	if cfg.Limits.DuplicateKeys != "ignore" {
		t.Errorf("DuplicateKeys = %s, want ignore", cfg.Limits.DuplicateKeys)
	}
	if cfg.Format != "json" {
		t.Errorf("Format = %s, want json", cfg.Format)
	}
	if cfg.JSONDriver != "go-json" {
		t.Errorf("JSONDriver = %s, want go-json", cfg.JSONDriver)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %s, want warn", cfg.Logging.Level)
	}

	def := config.Default()
	if *def != *cfg {
		t.Errorf("Default() = %+v, want %+v", def, cfg)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv(config.EnvMaxDepth, "7")
	t.Setenv(config.EnvFormat, "xml")
	t.Setenv(config.EnvLogLevel, "error")
	t.Setenv(config.EnvDuplicateKeys, "warn")

	cfg := writeAndLoad(t, "limits:\n  max_depth: 100\nformat: json\n")

	if cfg.Limits.MaxDepth != 7 {
		t.Errorf("MaxDepth = %d, want env value 7", cfg.Limits.MaxDepth)
	}
	if cfg.OutputFormat() != goseal.FormatXML {
		t.Errorf("OutputFormat = %v, want xml", cfg.OutputFormat())
	}
	if cfg.Logging.Level != "error" {
		t.Errorf("Logging.Level = %s, want error", cfg.Logging.Level)
	}
	if cfg.Options(nil, nil).OnDuplicateKey != goseal.Warn {
		t.Errorf("OnDuplicateKey should follow env")
	}
}

func TestLoad_ExpandsEnvInFile(t *testing.T) {
	t.Setenv("TEST_GOSEAL_LANG", "ja")
	cfg := writeAndLoad(t, "language: ${TEST_GOSEAL_LANG}\n")
	if cfg.Language != "ja" {
		t.Errorf("Language = %s, want ja", cfg.Language)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"negative depth", "limits:\n  max_depth: -1\n", "max_depth"},
		{"negative bytes", "limits:\n  max_bytes: -5\n", "max_bytes"},
		{"bad severity", "limits:\n  duplicate_keys: sometimes\n", "duplicate_keys"},
		{"bad format", "format: yaml\n", "format"},
		{"bad driver", "json_driver: simdjson\n", "json_driver"},
		{"bad language", "language: fr\n", "language"},
		{"bad level", "logging:\n  level: loud\n", "logging.level"},
		{"bad log format", "logging:\n  format: xml\n", "logging.format"},
		{"bad yaml", "limits: [\n", "parse config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := writeAndLoadErr(t, tt.content)
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadWithFallback(t *testing.T) {
	t.Setenv(config.EnvLanguage, "ja")
	cfg, err := config.LoadWithFallback(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadWithFallback: %v", err)
	}
	if cfg.Language != "ja" {
		t.Errorf("Language = %s, want env value ja", cfg.Language)
	}
	if cfg.Format != "json" {
		t.Errorf("Format = %s, want default json", cfg.Format)
	}
}

func TestLogger_RespectsLevel(t *testing.T) {
	cfg := config.Default()
	cfg.Logging.Level = "error"
	cfg.Logging.Format = "json"

	var buf bytes.Buffer
	l := cfg.Logger(&buf)
	l.Warn().Msg("hidden")
	l.Error().Msg("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("warn message should be filtered: %s", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, `"component":"goseal"`) {
		t.Errorf("unexpected log output: %s", out)
	}
}

func TestOptions_EnforcesLimits(t *testing.T) {
	cfg := config.Default()
	cfg.Limits.MaxDepth = 2
	o := cfg.Options(goseal.NewRegistry(), nil)

	doc := `{"type_hint":"x","a":{"b":{"c":{}}}}`
	_, err := goseal.DeserializeValue(doc, nil, o)
	var pe *goseal.ProtocolError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ProtocolError, got %v", err)
	}
	if pe.Code != goseal.CodeTruncated {
		t.Errorf("Code = %s, want %s", pe.Code, goseal.CodeTruncated)
	}
}

func writeAndLoad(t *testing.T, content string) *config.Config {
	t.Helper()
	cfg, err := writeAndLoadErr(t, content)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	return cfg
}

func writeAndLoadErr(t *testing.T, content string) (*config.Config, error) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return config.Load(path)
}
