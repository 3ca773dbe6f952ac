package main

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog"

	"github.com/lixenwraith/void-striker/audio"
	"github.com/lixenwraith/void-striker/config"
	debugsrv "github.com/lixenwraith/void-striker/debug"
	"github.com/lixenwraith/void-striker/engine"
	"github.com/lixenwraith/void-striker/game"
	"github.com/lixenwraith/void-striker/input"
	"github.com/lixenwraith/void-striker/render"
	"github.com/lixenwraith/void-striker/score"
	"github.com/lixenwraith/void-striker/status"
)

var (
	screenMu sync.Mutex
	screen   tcell.Screen
)

func main() {
	// Panic Recovery: ensure the terminal is restored even if the game crashes
	defer func() {
		if r := recover(); r != nil {
			crash("VOID-STRIKER CRASHED", r)
		}
	}()

	if err := run(os.Args[1:]); err != nil {
		restoreTerminal()
		fmt.Fprintf(os.Stderr, "void-striker: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.Load(args)
	if config.IsHelp(err) {
		fmt.Fprintln(os.Stderr, "Usage of void-striker:")
		config.Usage(os.Stderr)
		return nil
	}
	if err != nil {
		return err
	}

	logger, logFile := setupLogging(cfg.LogDir, cfg.Debug)
	if logFile != nil {
		defer logFile.Close()
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	logger.Info().Uint64("seed", seed).Str("config", cfg.Path).Msg("starting")

	if cfg.Snapshot != "" {
		return runSnapshot(cfg, seed, logger)
	}

	keys := input.DefaultKeyTable()
	if err := keys.Apply(cfg.Keys); err != nil {
		return fmt.Errorf("keys: %w", err)
	}

	reg := status.NewRegistry()
	metrics := debugsrv.NewMetrics(reg)
	clock := engine.NewPausableClock()

	gcfg := gameConfig(cfg, seed)
	gcfg.Clock = clock
	gcfg.Status = reg
	gcfg.Logger = logger
	if scores := openScores(cfg.ScoreDB, logger); scores != nil {
		defer scores.Close()
		gcfg.Scores = scores
	}

	g, err := game.New(gcfg)
	if err != nil {
		return err
	}
	defer g.Close()

	// Sound is optional: without a device the manager runs silently
	sounds := audio.NewSoundManager(audio.WithLogger(logger), audio.WithStatus(reg))
	if err := sounds.Initialize(); err != nil {
		logger.Warn().Err(err).Msg("continuing without audio")
	}
	sounds.Attach(g.Dispatcher(), g.Store())
	defer sounds.Cleanup()

	if cfg.DebugAddr != "" {
		stop, err := startDebugServer(cfg, seed, g, gcfg.Scores, metrics, logger)
		if err != nil {
			return err
		}
		defer stop()
	}

	s, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("terminal: %w", err)
	}
	if err := s.Init(); err != nil {
		return fmt.Errorf("terminal: %w", err)
	}
	setScreen(s)
	// Normal exit terminal cleanup
	defer restoreTerminal()

	// Engine goroutines route panics here so the terminal is reset before the stack prints
	engine.SetCrashHandler(func(r any) { crash("GAME CRASHED", r) })

	s.HideCursor()
	s.Clear()

	scheduler := engine.NewScheduler(clock, g, cfg.TickInterval(),
		engine.WithStatus(reg),
		engine.WithTickObserver(metrics.ObserveTick),
	)
	scheduler.Start()
	defer scheduler.Stop()

	return loop(s, g, keys, render.NewRenderer(seed), cfg.FrameInterval(), logger)
}

// loop multiplexes terminal input and the frame ticker until quit
func loop(s tcell.Screen, g *game.Game, keys *input.KeyTable, r *render.Renderer, frameInterval time.Duration, logger zerolog.Logger) error {
	events := make(chan tcell.Event, 256)
	done := make(chan struct{})
	defer close(done)

	// Input polling talks to the terminal directly; PollEvent returns nil after Fini
	engine.Go(func() {
		for {
			ev := s.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	})

	frame := time.NewTicker(frameInterval)
	defer frame.Stop()

	draw := func() {
		v := g.View()
		r.Draw(s, &v)
	}
	draw()

	for {
		select {
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				action := keys.Resolve(ev)
				if action == game.ActionNone {
					continue
				}
				if !g.Handle(action) {
					logger.Info().Str("run", g.RunID()).Msg("quit")
					return nil
				}
			case *tcell.EventResize:
				s.Clear()
				s.Sync()
				draw()
			}

		case <-frame.C:
			draw()
		}
	}
}

// runSnapshot renders the title frame to cfg.Snapshot without opening the terminal
func runSnapshot(cfg config.Config, seed uint64, logger zerolog.Logger) error {
	gcfg := gameConfig(cfg, seed)
	gcfg.Logger = logger
	g, err := game.New(gcfg)
	if err != nil {
		return err
	}
	defer g.Close()

	v := g.View()
	if err := render.SaveSnapshot(cfg.Snapshot, seed, &v); err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	logger.Info().Str("path", cfg.Snapshot).Msg("snapshot written")
	return nil
}

func gameConfig(cfg config.Config, seed uint64) game.Config {
	return game.Config{
		Width:  cfg.Width,
		Height: cfg.Height,
		Seed:   seed,
		Settings: game.Settings{
			Volume:     cfg.Volume,
			Difficulty: cfg.Difficulty,
			Sound:      cfg.Sound,
			Parallax:   cfg.Parallax,
		},
	}
}

// openScores returns nil when persistence is disabled or unavailable; the game
// runs without a high score table in that case
func openScores(path string, logger zerolog.Logger) *score.Store {
	if path == "" {
		return nil
	}
	s, err := score.Open(path)
	if err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("high scores disabled")
		return nil
	}
	return s
}

func startDebugServer(cfg config.Config, seed uint64, g *game.Game, scores game.ScoreRecorder, metrics *debugsrv.Metrics, logger zerolog.Logger) (func(), error) {
	dcfg := debugsrv.Config{
		Game:        g,
		Metrics:     metrics,
		Seed:        seed,
		CORSOrigins: cfg.CORSOrigins,
		StreamRate:  cfg.StreamRate,
		StreamBurst: cfg.StreamBurst,
		Logger:      logger,
	}
	if board, ok := scores.(debugsrv.Scoreboard); ok {
		dcfg.Scores = board
	}
	srv, err := debugsrv.NewServer(dcfg)
	if err != nil {
		return nil, err
	}

	engine.Go(func() {
		if err := srv.ListenAndServe(cfg.DebugAddr); err != nil {
			logger.Error().Err(err).Str("addr", cfg.DebugAddr).Msg("debug server stopped")
		}
	})

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}

func setScreen(s tcell.Screen) {
	screenMu.Lock()
	screen = s
	screenMu.Unlock()
}

// restoreTerminal finalizes the screen once; safe to call from any goroutine
func restoreTerminal() {
	screenMu.Lock()
	defer screenMu.Unlock()
	if screen != nil {
		screen.Fini()
		screen = nil
	}
}

func crash(label string, r any) {
	restoreTerminal()
	// \r\n keeps output aligned if the terminal is still in raw mode
	fmt.Fprintf(os.Stderr, "\r\n\x1b[31m%s: %v\x1b[0m\r\n", label, r)
	fmt.Fprintf(os.Stderr, "Stack Trace:\r\n%s\r\n", debug.Stack())
	os.Exit(1)
}
