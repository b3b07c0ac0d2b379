package app

import (
	"testing"
	"time"
)

func TestEnvString(t *testing.T) {
	t.Setenv("NEXUS_TEST_STRING", "  hello  ")
	if got := EnvString("NEXUS_TEST_STRING", "def"); got != "hello" {
		t.Fatalf("expected trimmed value, got %q", got)
	}
	if got := EnvString("NEXUS_TEST_STRING_MISSING", "def"); got != "def" {
		t.Fatalf("expected default, got %q", got)
	}
}

func TestEnvBool(t *testing.T) {
	t.Setenv("NEXUS_TEST_BOOL", "true")
	if !EnvBool("NEXUS_TEST_BOOL", false) {
		t.Fatalf("expected true")
	}
	t.Setenv("NEXUS_TEST_BOOL", "not-a-bool")
	if !EnvBool("NEXUS_TEST_BOOL", true) {
		t.Fatalf("expected default on invalid value")
	}
}

func TestEnvInt(t *testing.T) {
	t.Setenv("NEXUS_TEST_INT", "42")
	if got := EnvInt("NEXUS_TEST_INT", 1); got != 42 {
		t.Fatalf("expected 42, got %d", got)
	}
	t.Setenv("NEXUS_TEST_INT", "-3")
	if got := EnvInt("NEXUS_TEST_INT", 7); got != 7 {
		t.Fatalf("expected default for non-positive, got %d", got)
	}
}

func TestEnvDuration(t *testing.T) {
	t.Setenv("NEXUS_TEST_DUR", "250ms")
	if got := EnvDuration("NEXUS_TEST_DUR", time.Second); got != 250*time.Millisecond {
		t.Fatalf("expected 250ms, got %v", got)
	}
	t.Setenv("NEXUS_TEST_DUR", "0s")
	if got := EnvDuration("NEXUS_TEST_DUR", time.Second); got != time.Second {
		t.Fatalf("expected default for zero duration, got %v", got)
	}
}

func TestEnvCSV(t *testing.T) {
	t.Setenv("NEXUS_TEST_CSV", " a, b ,,c ")
	got := EnvCSV("NEXUS_TEST_CSV", "")
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Fatalf("unexpected csv parse: %v", got)
	}
	if got := EnvCSV("NEXUS_TEST_CSV_MISSING", "x,y"); len(got) != 2 {
		t.Fatalf("expected default split, got %v", got)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg := LoadConfig()
	if cfg.HTTPAddr == "" || cfg.LogLevel == "" {
		t.Fatalf("expected populated defaults, got %+v", cfg)
	}
	if cfg.MaxHeaderBytes <= 0 {
		t.Fatalf("expected positive max header bytes")
	}
}
