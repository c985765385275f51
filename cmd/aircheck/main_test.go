package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"aircheck/internal/config"
)

func writeTestConfig(t *testing.T, base string) string {
	t.Helper()
	cfg := config.Default()
	cfg.Station.BaseURL = "https://example.org"
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.FeedDir = filepath.Join(base, "feeds")
	cfg.Paths.LogDir = filepath.Join(base, "logs")

	payload, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	path := filepath.Join(base, "config.toml")
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func runCLI(t *testing.T, configPath string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	if configPath != "" {
		args = append([]string{"--config", configPath}, args...)
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q, got:\n%s", needle, haystack)
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	base := t.TempDir()
	configPath := writeTestConfig(t, base)

	out, err := runCLI(t, configPath, "config", "validate")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")

	target := filepath.Join(t.TempDir(), "config.toml")
	out, err = runCLI(t, configPath, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	// Refuses to clobber without --overwrite.
	if _, err := runCLI(t, configPath, "config", "init", "--path", target); err == nil {
		t.Fatal("expected init over an existing file to fail")
	}
}

func TestConfigShowPrintsResolvedValues(t *testing.T) {
	base := t.TempDir()
	configPath := writeTestConfig(t, base)

	out, err := runCLI(t, configPath, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, "base_url = 'https://example.org'")
}

func TestListWithoutStateFails(t *testing.T) {
	base := t.TempDir()
	configPath := writeTestConfig(t, base)

	_, err := runCLI(t, configPath, "list", "shows")
	if err == nil || !strings.Contains(err.Error(), "run update first") {
		t.Fatalf("expected missing-state error, got %v", err)
	}
}

func TestParseDateFlag(t *testing.T) {
	cases := []struct {
		value string
		ok    bool
	}{
		{"2025-01-08", true},
		{"2025-01-08T20:00:00Z", true},
		{"", true},
		{"January 8", false},
	}
	for _, tc := range cases {
		parsed, err := parseDateFlag("since", tc.value)
		if tc.ok && err != nil {
			t.Fatalf("parseDateFlag(%q) failed: %v", tc.value, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("parseDateFlag(%q) succeeded", tc.value)
		}
		if tc.value == "" && parsed != nil {
			t.Fatal("empty flag must parse to nil")
		}
	}
}
