package main

import "testing"

func TestParseConfig(t *testing.T) {
	t.Parallel()

	raw := []byte(`
block: 4
black: 12
alpha: 0
server_address: "127.0.0.1:9090"
log_level: debug
`)
	cfg, err := parseConfig(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Block == nil || *cfg.Block != 4 {
		t.Fatalf("block: got %v", cfg.Block)
	}
	if cfg.Black == nil || *cfg.Black != 12 {
		t.Fatalf("black: got %v", cfg.Black)
	}
	// Explicit zero must survive as a set value.
	if cfg.Alpha == nil || *cfg.Alpha != 0 {
		t.Fatalf("alpha: got %v", cfg.Alpha)
	}
	if cfg.Workers != nil {
		t.Fatalf("workers should be unset, got %v", cfg.Workers)
	}
	if cfg.ServerAddress != "127.0.0.1:9090" {
		t.Fatalf("server address: got %q", cfg.ServerAddress)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("log level: got %q", cfg.LogLevel)
	}
}

func TestParseConfigRejectsInvalidYAML(t *testing.T) {
	t.Parallel()

	if _, err := parseConfig([]byte("block: [not an int")); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestParseConfigEmpty(t *testing.T) {
	t.Parallel()

	cfg, err := parseConfig(nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Block != nil || cfg.Black != nil || cfg.Alpha != nil {
		t.Fatalf("zero config expected, got %+v", cfg)
	}
}
