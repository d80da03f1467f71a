package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/evil-mind-evil-sword/usefix/internal/registry"
)

// TestInitCreatesConfig verifies that runInit writes a parseable registry
// config seeded with the built-in mapping.
func TestInitCreatesConfig(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "usefix.toml")

	var stdout, stderr bytes.Buffer
	if err := runInit([]string{path}, &stdout, &stderr); err != nil {
		t.Fatalf("runInit: %v", err)
	}

	reg, err := registry.Load(path)
	if err != nil {
		t.Fatalf("generated config does not load: %v", err)
	}
	if e, ok := reg.Resolve("Program"); !ok || e.Package != "hojicha_runtime::program" {
		t.Errorf("Program resolved to %+v, ok=%v", e, ok)
	}
	if !strings.Contains(stderr.String(), "wrote registry config") {
		t.Errorf("missing confirmation: %q", stderr.String())
	}
}

func TestInitRefusesOverwrite(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "usefix.toml")
	if err := os.WriteFile(path, []byte("# mine\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var stdout, stderr bytes.Buffer
	if err := runInit([]string{path}, &stdout, &stderr); err == nil {
		t.Fatal("expected error for existing config")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "# mine\n" {
		t.Errorf("existing config was overwritten: %q", data)
	}
}

func TestInitForceOverwrites(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "usefix.toml")
	if err := os.WriteFile(path, []byte("# mine\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var stdout, stderr bytes.Buffer
	if err := runInit([]string{"-force", path}, &stdout, &stderr); err != nil {
		t.Fatalf("runInit: %v", err)
	}
	if _, err := registry.Load(path); err != nil {
		t.Errorf("overwritten config does not load: %v", err)
	}
}

// TestInitDryRun verifies --dry-run prints the config without touching disk.
func TestInitDryRun(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "usefix.toml")

	var stdout, stderr bytes.Buffer
	if err := runInit([]string{"-dry-run", path}, &stdout, &stderr); err != nil {
		t.Fatalf("runInit: %v", err)
	}

	if !strings.Contains(stdout.String(), "[[package]]") {
		t.Errorf("dry-run output missing config: %q", stdout.String())
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("dry-run should not create the file")
	}
}

// TestInitSubcommandDispatch verifies `usefix init` is reachable through run.
func TestInitSubcommandDispatch(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "usefix.toml")

	var stdout, stderr bytes.Buffer
	if err := run([]string{"init", path}, &stdout, &stderr); err != nil {
		t.Fatalf("run init: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("config not created: %v", err)
	}
}
