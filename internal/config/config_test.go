package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/cwbudde/clut/internal/query"
)

func envFrom(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestDefaults(t *testing.T) {
	cfg, err := load("", "", envFrom(nil))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}
	if cfg.ExtraBuildFlags != nil {
		t.Fatalf("no extra flags expected by default")
	}
}

func TestPrecedence(t *testing.T) {
	yamlPath := write(t, "clut.yaml", `
log_level: debug
extra_build_flags: "-DYAML"
report_dir: /tmp/yaml
max_query_bytes: 1024
color: never
`)
	envPath := write(t, ".env", "CLUT_REPORT_DIR=/tmp/dotenv\nCLUT_NORMALIZED_IMAGES=true\n")
	env := envFrom(map[string]string{
		"CLUT_EXTRA_BUILD_FLAGS": "-DENV",
		"CLUT_REPORT_DIR":        "/tmp/env",
	})

	cfg, err := load(yamlPath, envPath, env)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	flags := "-DENV"
	want := &Config{
		LogLevel:         "debug",
		ExtraBuildFlags:  &flags,
		NormalizedImages: true,
		MaxQueryBytes:    1024,
		ReportDir:        "/tmp/env",
		Color:            ColorNever,
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestDotenvBeatsYAML(t *testing.T) {
	yamlPath := write(t, "clut.yaml", "report_dir: /tmp/yaml\n")
	envPath := write(t, ".env", "CLUT_REPORT_DIR=/tmp/dotenv\n")
	cfg, err := load(yamlPath, envPath, envFrom(nil))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ReportDir != "/tmp/dotenv" {
		t.Fatalf("report dir = %q", cfg.ReportDir)
	}
}

func TestEmptyExtraFlagsAreKept(t *testing.T) {
	cfg, err := load("", "", envFrom(map[string]string{"CLUT_EXTRA_BUILD_FLAGS": ""}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ExtraBuildFlags == nil || *cfg.ExtraBuildFlags != "" {
		t.Fatalf("expected empty non-nil flags, got %v", cfg.ExtraBuildFlags)
	}
}

func TestLoadErrors(t *testing.T) {
	cases := []struct {
		name string
		yaml string
		env  map[string]string
	}{
		{"bad yaml", "log_level: [", nil},
		{"bad level", "log_level: loud\n", nil},
		{"bad color", "color: purple\n", nil},
		{"zero limit", "max_query_bytes: 0\n", nil},
		{"bad bool", "", map[string]string{"CLUT_NORMALIZED_IMAGES": "maybe"}},
		{"bad int", "", map[string]string{"CLUT_MAX_QUERY_BYTES": "lots"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := ""
			if tc.yaml != "" {
				path = write(t, "clut.yaml", tc.yaml)
			}
			if _, err := load(path, "", envFrom(tc.env)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}

	if _, err := load(filepath.Join(t.TempDir(), "missing.yaml"), "", envFrom(nil)); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}

func TestMissingDotenvIsIgnored(t *testing.T) {
	if _, err := load("", filepath.Join(t.TempDir(), ".env"), envFrom(nil)); err != nil {
		t.Fatalf("load: %v", err)
	}
}

func TestApply(t *testing.T) {
	saved := query.MaxValueSize
	defer func() { query.MaxValueSize = saved }()

	cfg := Default()
	cfg.MaxQueryBytes = 4096
	cfg.Apply()
	if query.MaxValueSize != 4096 {
		t.Fatalf("MaxValueSize = %d", query.MaxValueSize)
	}
}
