package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "marble.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[game]
blocks_count = 5
seed_phrase = "sunday cup"
tick_rate = "10ms"

[player]
jump_impulse = 0.7

[database]
enabled = true
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Game.BlocksCount != 5 || cfg.Game.SeedPhrase != "sunday cup" {
		t.Fatalf("game = %+v", cfg.Game)
	}
	if cfg.Game.TickRate != 10*time.Millisecond {
		t.Fatalf("tick_rate = %s", cfg.Game.TickRate)
	}
	if cfg.Game.SegmentLength != 4 {
		t.Fatalf("segment_length default lost: %v", cfg.Game.SegmentLength)
	}
	if cfg.Player.JumpImpulse != 0.7 || cfg.Player.Impulse != 0.6 {
		t.Fatalf("player = %+v", cfg.Player)
	}
	if !cfg.Database.Enabled || cfg.Database.DSN == "" {
		t.Fatalf("database = %+v", cfg.Database)
	}
}

func TestLoadShippedConfig(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", DefaultPath))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Game.BlocksCount != 10 || cfg.Camera.Smoothing != 5 || cfg.Player.Hold != 150*time.Millisecond {
		t.Fatalf("unexpected shipped config: %+v", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"syntax", "[game\n", "parse config"},
		{"negative count", "[game]\nblocks_count = -1\n", "blocks_count"},
		{"zero segment", "[game]\nsegment_length = 0.0\n", "segment_length"},
		{"zero tick", "[game]\ntick_rate = \"0s\"\n", "tick_rate"},
		{"db without dsn", "[database]\nenabled = true\ndsn = \"\"\n", "database.dsn"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatal("missing file should fail")
	}
}

func TestPathFromEnv(t *testing.T) {
	t.Setenv("MARBLE_CONFIG", "")
	if got := PathFromEnv(); got != DefaultPath {
		t.Fatalf("PathFromEnv = %q", got)
	}
	t.Setenv("MARBLE_CONFIG", "/etc/marble.toml")
	if got := PathFromEnv(); got != "/etc/marble.toml" {
		t.Fatalf("PathFromEnv = %q", got)
	}
}
