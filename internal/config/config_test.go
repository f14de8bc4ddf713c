package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const validConfig = `spectrum:
  calculator: mssm_ewsb
external:
  simsusy: simsusy
  gm2calc: ~/opt/gm2calc/bin/gm2calc.x
  sdecay: /opt/sdecay/run
micromegas:
  make: make
  micromegas_dir: ~/opt/micromegas
  source_file: ./dm.cpp
  executable_name: dm_point
sinderin:
  converter: /opt/sinderin/convert.py
  ufo_model: MSSM_UFO
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing config failed: %v", err)
	}
	return path
}

func TestLoad_Valid(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Spectrum.Calculator != "mssm_ewsb" {
		t.Errorf("calculator = %q, want mssm_ewsb", cfg.Spectrum.Calculator)
	}
	if cfg.Micromegas.ExecutableName != "dm_point" {
		t.Errorf("executable_name = %q, want dm_point", cfg.Micromegas.ExecutableName)
	}
	if !cfg.Sinderin.Configured() {
		t.Error("sinderin should be configured")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	if err == nil {
		t.Fatal("expected an error for a missing file")
	}
	if !strings.Contains(err.Error(), "config.yaml.example") {
		t.Errorf("error %q lacks the remediation hint", err)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "spectrum: [unclosed"))
	if err == nil || !strings.Contains(err.Error(), "invalid YAML") {
		t.Fatalf("err = %v, want an invalid YAML error", err)
	}
}

func TestLoad_MissingKeys(t *testing.T) {
	content := `spectrum:
  calculator: mssm_ewsb
external:
  simsusy: simsusy
micromegas:
  make: make
`
	_, err := Load(writeConfig(t, content))
	if err == nil {
		t.Fatal("expected an error for missing keys")
	}
	for _, key := range []string{"external.gm2calc", "external.sdecay", "micromegas.micromegas_dir", "micromegas.source_file", "micromegas.executable_name"} {
		if !strings.Contains(err.Error(), key) {
			t.Errorf("error %q does not name missing key %q", err, key)
		}
	}
	if strings.Contains(err.Error(), "spectrum.calculator") {
		t.Errorf("error %q names a key that is present", err)
	}
}

func TestSinderinConfigured(t *testing.T) {
	tests := []struct {
		name string
		cfg  SinderinConfig
		want bool
	}{
		{"both set", SinderinConfig{Converter: "c.py", UFOModel: "m"}, true},
		{"converter only", SinderinConfig{Converter: "c.py"}, false},
		{"model only", SinderinConfig{UFOModel: "m"}, false},
		{"neither", SinderinConfig{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.Configured(); got != tt.want {
				t.Errorf("Configured() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCheckSDecayInput(t *testing.T) {
	dir := t.TempDir()

	valid := filepath.Join(dir, "sdecay.in")
	if err := os.WriteFile(valid, []byte("* SDECAY INPUT FILE\n 1.0\n"), 0644); err != nil {
		t.Fatal(err)
	}
	path, err := checkSDecayInput(valid)
	if err != nil {
		t.Fatalf("checkSDecayInput failed: %v", err)
	}
	if path != valid {
		t.Errorf("path = %q, want %q", path, valid)
	}

	invalid := filepath.Join(dir, "bogus.in")
	if err := os.WriteFile(invalid, []byte("nothing to see\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := checkSDecayInput(invalid); err == nil || !strings.Contains(err.Error(), "seems invalid") {
		t.Errorf("err = %v, want a marker validation error", err)
	}

	if _, err := checkSDecayInput(filepath.Join(dir, "absent.in")); err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("err = %v, want a not-found error", err)
	}
}

func TestExpandUser(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}
	if got := expandUser("~/opt/tool"); got != filepath.Join(home, "opt/tool") {
		t.Errorf("expandUser(~/opt/tool) = %q", got)
	}
	if got := expandUser("/abs/path"); got != "/abs/path" {
		t.Errorf("expandUser(/abs/path) = %q", got)
	}
	if got := expandUser("relative"); got != "relative" {
		t.Errorf("expandUser(relative) = %q", got)
	}
}

func TestResolveExecutable(t *testing.T) {
	dir := t.TempDir()
	exe := filepath.Join(dir, "tool.x")
	if err := os.WriteFile(exe, []byte("#!/bin/sh\n"), 0755); err != nil {
		t.Fatal(err)
	}
	got, err := resolveExecutable(exe)
	if err != nil {
		t.Fatalf("resolveExecutable failed: %v", err)
	}
	if got != exe {
		t.Errorf("path = %q, want %q", got, exe)
	}

	plain := filepath.Join(dir, "data.txt")
	if err := os.WriteFile(plain, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := resolveExecutable(plain); err == nil {
		t.Error("expected an error for a non-executable file")
	}

	// Bare command names fall back to a PATH lookup.
	if _, err := resolveExecutable("sh"); err != nil {
		t.Errorf("resolveExecutable(sh) failed: %v", err)
	}
}
