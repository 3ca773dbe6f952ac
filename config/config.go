// Package config loads runtime settings: defaults, then a YAML file, then VOID_*
// environment variables, then command-line flags
package config

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"slices"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/lixenwraith/void-striker/parameter"
)

// EnvPrefix is prepended to every environment variable name
const EnvPrefix = "VOID_"

// ErrInvalid wraps every validation failure
var ErrInvalid = errors.New("config: invalid")

var difficulties = []string{"easy", "normal", "hard"}

// Config holds every tunable of a run
type Config struct {
	// Arena
	Width  int    `yaml:"width" env:"WIDTH"`
	Height int    `yaml:"height" env:"HEIGHT"`
	Seed   uint64 `yaml:"seed" env:"SEED"` // 0 picks a time-based seed

	// Options written into the initial state document
	Volume     float64 `yaml:"volume" env:"VOLUME"`
	Difficulty string  `yaml:"difficulty" env:"DIFFICULTY"`
	Sound      bool    `yaml:"sound" env:"SOUND"`
	Parallax   bool    `yaml:"parallax" env:"PARALLAX"`

	// Engine
	TickRate int `yaml:"tick_rate" env:"TICK_RATE"` // logic ticks per second
	FrameFPS int `yaml:"frame_fps" env:"FRAME_FPS"`

	// Persistence and diagnostics
	ScoreDB     string   `yaml:"score_db" env:"SCORE_DB"`
	Debug       bool     `yaml:"debug" env:"DEBUG"`
	LogDir      string   `yaml:"log_dir" env:"LOG_DIR"`
	DebugAddr   string   `yaml:"debug_addr" env:"DEBUG_ADDR"`
	CORSOrigins []string `yaml:"cors_origins" env:"CORS_ORIGINS" envSeparator:","`
	StreamRate  float64  `yaml:"stream_rate" env:"STREAM_RATE"` // websocket events per second per client
	StreamBurst int      `yaml:"stream_burst" env:"STREAM_BURST"`

	// Keys overrides bindings: key name to action name
	Keys map[string]string `yaml:"keys" env:"KEYS" envSeparator:"," envKeyValSeparator:":"`

	// Snapshot renders one title frame to this PNG path and exits; flag only
	Snapshot string `yaml:"-" env:"-"`
	// Path is the YAML file that was loaded, if any
	Path string `yaml:"-" env:"-"`
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		Width:       parameter.DefaultArenaWidth,
		Height:      parameter.DefaultArenaHeight,
		Volume:      0.8,
		Difficulty:  "normal",
		Sound:       true,
		Parallax:    true,
		TickRate:    parameter.TickRate,
		FrameFPS:    parameter.FrameFPS,
		ScoreDB:     "scores.db",
		LogDir:      "logs",
		CORSOrigins: []string{"http://localhost:*", "http://127.0.0.1:*"},
		StreamRate:  30,
		StreamBurst: 60,
	}
}

// TickInterval converts TickRate to a duration
func (c *Config) TickInterval() time.Duration {
	if c.TickRate <= 0 {
		return parameter.TickInterval
	}
	return time.Second / time.Duration(c.TickRate)
}

// FrameInterval converts FrameFPS to a duration
func (c *Config) FrameInterval() time.Duration {
	if c.FrameFPS <= 0 {
		return parameter.FrameInterval
	}
	return time.Second / time.Duration(c.FrameFPS)
}

// Validate reports every invalid field joined into one error
func (c *Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}
	if c.Width < 40 || c.Width > 400 {
		bad("width %d outside 40..400", c.Width)
	}
	if c.Height < 12 || c.Height > 200 {
		bad("height %d outside 12..200", c.Height)
	}
	if c.Volume < 0 || c.Volume > 1 {
		bad("volume %v outside 0..1", c.Volume)
	}
	if !slices.Contains(difficulties, c.Difficulty) {
		bad("difficulty %q not one of %v", c.Difficulty, difficulties)
	}
	if c.TickRate < 10 || c.TickRate > 240 {
		bad("tick_rate %d outside 10..240", c.TickRate)
	}
	if c.FrameFPS < 1 || c.FrameFPS > 120 {
		bad("frame_fps %d outside 1..120", c.FrameFPS)
	}
	if c.StreamRate <= 0 || c.StreamBurst < 1 {
		bad("stream_rate %v and stream_burst %d must be positive", c.StreamRate, c.StreamBurst)
	}
	return errors.Join(errs...)
}

// Load builds the config from args (without the program name) and the process environment
func Load(args []string) (Config, error) {
	return load(args, os.Environ())
}

func load(args []string, environ []string) (Config, error) {
	// First pass only finds -config; every flag is registered so parsing succeeds
	scratch := Default()
	pre := newFlagSet(&scratch)
	pre.SetOutput(io.Discard)
	if err := pre.Parse(args); err != nil {
		return Config{}, fmt.Errorf("config: flags: %w", err)
	}

	cfg := Default()
	if scratch.Path != "" {
		if err := cfg.loadFile(scratch.Path); err != nil {
			return Config{}, err
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{
		Prefix:      EnvPrefix,
		Environment: env.ToMap(environ),
	}); err != nil {
		return Config{}, fmt.Errorf("config: env: %w", err)
	}

	// Second pass binds flags over file and env values; unset flags keep them
	fs := newFlagSet(&cfg)
	fs.SetOutput(io.Discard)
	if err := fs.Parse(args); err != nil {
		return Config{}, fmt.Errorf("config: flags: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// loadFile decodes YAML strictly; unknown keys are errors
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	c.Path = path
	return nil
}

// newFlagSet binds flags to c using its current values as defaults
func newFlagSet(c *Config) *flag.FlagSet {
	fs := flag.NewFlagSet("void-striker", flag.ContinueOnError)
	fs.StringVar(&c.Path, "config", c.Path, "YAML config file")
	fs.IntVar(&c.Width, "width", c.Width, "arena width in cells")
	fs.IntVar(&c.Height, "height", c.Height, "arena height in cells")
	fs.Uint64Var(&c.Seed, "seed", c.Seed, "spawn and starfield seed (0 = random)")
	fs.Float64Var(&c.Volume, "volume", c.Volume, "master volume 0..1")
	fs.StringVar(&c.Difficulty, "difficulty", c.Difficulty, "easy, normal or hard")
	fs.BoolVar(&c.Sound, "sound", c.Sound, "enable sound")
	fs.BoolVar(&c.Parallax, "parallax", c.Parallax, "scrolling star background")
	fs.IntVar(&c.TickRate, "tick-rate", c.TickRate, "logic ticks per second")
	fs.IntVar(&c.FrameFPS, "fps", c.FrameFPS, "render frames per second")
	fs.StringVar(&c.ScoreDB, "scores", c.ScoreDB, "high score database path (empty disables)")
	fs.BoolVar(&c.Debug, "debug", c.Debug, "write debug log under -log-dir")
	fs.StringVar(&c.LogDir, "log-dir", c.LogDir, "log directory")
	fs.StringVar(&c.DebugAddr, "debug-addr", c.DebugAddr, "debug HTTP listen address (empty disables)")
	fs.StringVar(&c.Snapshot, "snapshot", c.Snapshot, "render one frame to this PNG and exit")
	return fs
}

// Usage prints flag help to w
func Usage(w io.Writer) {
	cfg := Default()
	fs := newFlagSet(&cfg)
	fs.SetOutput(w)
	fs.PrintDefaults()
}

// IsHelp reports whether err came from -h or -help
func IsHelp(err error) bool {
	return errors.Is(err, flag.ErrHelp)
}
