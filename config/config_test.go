package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lixenwraith/void-striker/parameter"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "void.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("Expected config file written, got %v", err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Expected default config valid, got %v", err)
	}
	if cfg.TickInterval() != parameter.TickInterval {
		t.Errorf("Expected tick interval %v, got %v", parameter.TickInterval, cfg.TickInterval())
	}
}

func TestDefaultRatesRoundTrip(t *testing.T) {
	cfg := Default()
	if cfg.TickRate != 60 {
		t.Errorf("Expected 60 Hz default tick rate, got %d", cfg.TickRate)
	}
	if cfg.TickInterval() != time.Second/60 {
		t.Errorf("Expected %v tick interval, got %v", time.Second/60, cfg.TickInterval())
	}
	if cfg.FrameFPS != 30 {
		t.Errorf("Expected 30 FPS default frame rate, got %d", cfg.FrameFPS)
	}
	if cfg.FrameInterval() != time.Second/30 {
		t.Errorf("Expected %v frame interval, got %v", time.Second/30, cfg.FrameInterval())
	}
}

func TestLoadLayering(t *testing.T) {
	path := writeFile(t, `
width: 100
height: 30
difficulty: hard
volume: 0.5
keys:
  z: fire
`)
	environ := []string{
		"VOID_HEIGHT=40",
		"VOID_SOUND=false",
		"VOID_KEYS=x:bomb,c:pause",
		"UNRELATED=1",
	}
	cfg, err := load([]string{"-config", path, "-difficulty", "easy"}, environ)
	if err != nil {
		t.Fatalf("Expected config to load, got %v", err)
	}

	if cfg.Width != 100 {
		t.Errorf("Expected width from file, got %d", cfg.Width)
	}
	if cfg.Height != 40 {
		t.Errorf("Expected env to override file height, got %d", cfg.Height)
	}
	if cfg.Difficulty != "easy" {
		t.Errorf("Expected flag to override file difficulty, got %q", cfg.Difficulty)
	}
	if cfg.Volume != 0.5 {
		t.Errorf("Expected volume from file, got %v", cfg.Volume)
	}
	if cfg.Sound {
		t.Error("Expected env to disable sound")
	}
	if cfg.Keys["x"] != "bomb" || cfg.Keys["c"] != "pause" {
		t.Errorf("Expected key bindings from env, got %v", cfg.Keys)
	}
	if cfg.Path != path {
		t.Errorf("Expected loaded path recorded, got %q", cfg.Path)
	}
}

func TestLoadFlagsOnly(t *testing.T) {
	cfg, err := load([]string{"-seed", "7", "-tick-rate", "30", "-debug-addr", ":6060", "-parallax=false"}, nil)
	if err != nil {
		t.Fatalf("Expected config to load, got %v", err)
	}
	if cfg.Seed != 7 || cfg.DebugAddr != ":6060" || cfg.Parallax {
		t.Errorf("Expected flag values, got seed=%d addr=%q parallax=%v", cfg.Seed, cfg.DebugAddr, cfg.Parallax)
	}
	if cfg.TickInterval() != time.Second/30 {
		t.Errorf("Expected 30 Hz tick, got %v", cfg.TickInterval())
	}
	if cfg.Width != parameter.DefaultArenaWidth {
		t.Errorf("Expected default width, got %d", cfg.Width)
	}
}

func TestLoadRejectsUnknownFileKey(t *testing.T) {
	path := writeFile(t, "widht: 100\n")
	if _, err := load([]string{"-config", path}, nil); err == nil {
		t.Error("Expected unknown YAML key rejected")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := load([]string{"-config", filepath.Join(t.TempDir(), "absent.yaml")}, nil); err == nil {
		t.Error("Expected missing file error")
	}
}

func TestLoadHelp(t *testing.T) {
	_, err := load([]string{"-h"}, nil)
	if !IsHelp(err) {
		t.Errorf("Expected help error, got %v", err)
	}
}

func TestValidateJoinsErrors(t *testing.T) {
	cfg := Default()
	cfg.Width = 10
	cfg.Volume = 2
	cfg.Difficulty = "nightmare"

	err := cfg.Validate()
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("Expected ErrInvalid, got %v", err)
	}
	joined, ok := err.(interface{ Unwrap() []error })
	if !ok {
		t.Fatalf("Expected joined error, got %T", err)
	}
	if n := len(joined.Unwrap()); n != 3 {
		t.Errorf("Expected 3 problems, got %d: %v", n, err)
	}
}
