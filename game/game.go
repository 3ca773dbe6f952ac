// Package game owns the world (player, enemies, boss, bullets, pickups, particles),
// advances it every tick and coordinates phases, sagas, options and story through the
// event dispatcher, state store and effect manager
package game

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/lixenwraith/void-striker/effect"
	"github.com/lixenwraith/void-striker/engine"
	"github.com/lixenwraith/void-striker/event"
	"github.com/lixenwraith/void-striker/parameter"
	"github.com/lixenwraith/void-striker/state"
	"github.com/lixenwraith/void-striker/status"
)

// ScoreRecorder persists finished runs
type ScoreRecorder interface {
	Record(ctx context.Context, run Run) error
	Best(ctx context.Context) (int, error)
}

// Run is one finished game
type Run struct {
	ID         string
	Score      int
	Level      int
	Kills      int
	Difficulty string
	EndedAt    time.Time
}

// Config wires a Game
type Config struct {
	Width    int
	Height   int
	Seed     uint64
	Settings Settings
	Timings  Timings

	// Optional collaborators
	Clock  *engine.PausableClock
	Scores ScoreRecorder
	Status *status.Registry
	Logger zerolog.Logger
}

// Timings are the saga hold durations; zero fields take the parameter defaults
type Timings struct {
	LevelIntro   time.Duration
	LevelOutro   time.Duration
	DialogueLine time.Duration
	GameOver     time.Duration
	PowerUp      time.Duration
}

func (t Timings) withDefaults() Timings {
	if t.LevelIntro <= 0 {
		t.LevelIntro = parameter.LevelIntroDelay
	}
	if t.LevelOutro <= 0 {
		t.LevelOutro = parameter.LevelOutroDelay
	}
	if t.DialogueLine <= 0 {
		t.DialogueLine = parameter.DialogueLineTimeout
	}
	if t.GameOver <= 0 {
		t.GameOver = parameter.GameOverDelay
	}
	if t.PowerUp <= 0 {
		t.PowerUp = time.Duration(parameter.PowerUpDuration * float64(time.Second))
	}
	return t
}

// Game is the consumer of the coordination layer
//
// Concurrency:
//   - Tick and Handle serialize on mu; dispatcher listeners registered by the game run
//     under mu because every Emit/Settle happens inside those two entry points
//   - Sagas run on effect goroutines, touch the world only through Put and transition
type Game struct {
	mu sync.Mutex

	d       *event.Dispatcher
	st      *state.Store
	fx      *effect.Manager
	clock   *engine.PausableClock
	rng     *rand.Rand
	scores  ScoreRecorder
	logger  zerolog.Logger
	timings Timings

	width  float64
	height float64
	runID  uuid.UUID

	elapsed     float64
	player      Player
	enemies     []*Enemy
	boss        *Boss
	bullets     []*Bullet
	powerups    []*PowerUp
	particles   []*Particle
	nextEnemyID uint64
	spawnWait   float64
	spawned     int
	levelKills  int

	intent      intent
	resumePhase string
	menu        *OptionsMenu
	recorded    bool // game over saga finished; title may be entered

	statEnemies   *atomic.Int64
	statBullets   *atomic.Int64
	statParticles *atomic.Int64
	statLevel     *atomic.Int64
	statDropped   *atomic.Int64
}

// intent holds recent key presses; terminals report presses, not releases, so a
// direction stays held for a short window refreshed by key repeat
type intent struct {
	dir       [2]float64
	moveUntil [2]float64
	fireUntil float64
}

const (
	moveHoldWindow = 0.12
	fireHoldWindow = 0.25
)

// New creates a game on the title screen
func New(cfg Config) (*Game, error) {
	if cfg.Width <= 0 {
		cfg.Width = parameter.DefaultArenaWidth
	}
	if cfg.Height <= 0 {
		cfg.Height = parameter.DefaultArenaHeight
	}
	if cfg.Settings.Difficulty == "" {
		cfg.Settings.Difficulty = "normal"
	}
	if cfg.Clock == nil {
		cfg.Clock = engine.NewPausableClock()
	}
	if cfg.Status == nil {
		cfg.Status = status.NewRegistry()
	}

	logger := cfg.Logger.With().Str("component", "game").Logger()

	st, err := state.New(InitialState(cfg.Settings),
		state.WithSchema(Schema()),
		state.WithHistoryLimit(parameter.StateHistoryLimit),
		state.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("game: initial state: %w", err)
	}

	d := event.NewDispatcher(event.WithLogger(logger))

	g := &Game{
		d:             d,
		st:            st,
		fx:            effect.NewManager(d, effect.WithLogger(logger)),
		clock:         cfg.Clock,
		rng:           NewRand(cfg.Seed),
		scores:        cfg.Scores,
		logger:        logger,
		timings:       cfg.Timings.withDefaults(),
		width:         float64(cfg.Width),
		height:        float64(cfg.Height),
		runID:         uuid.New(),
		menu:          NewOptionsMenu(),
		statEnemies:   cfg.Status.Ints.Get("game.enemies"),
		statBullets:   cfg.Status.Ints.Get("game.bullets"),
		statParticles: cfg.Status.Ints.Get("game.particles"),
		statLevel:     cfg.Status.Ints.Get("game.level"),
		statDropped:   cfg.Status.Ints.Get("event.dropped"),
	}
	g.resetPlayer()
	g.wire()
	if err := g.registerSagas(); err != nil {
		return nil, err
	}
	g.loadBest()
	return g, nil
}

// Dispatcher returns the event bus
func (g *Game) Dispatcher() *event.Dispatcher { return g.d }

// Store returns the state document
func (g *Game) Store() *state.Store { return g.st }

// Effects returns the saga runner
func (g *Game) Effects() *effect.Manager { return g.fx }

// RunID identifies the current run in logs and score records
func (g *Game) RunID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.runID.String()
}

// Phase returns game.phase
func (g *Game) Phase() string {
	return g.st.GetString(PathPhase, PhaseTitle)
}

// Close cancels sagas and detaches the effect manager
func (g *Game) Close() {
	g.mu.Lock()
	_ = g.d.Emit(EventGameCleanup, nil)
	g.mu.Unlock()
	g.fx.Close()
}

// Tick advances the world by dt; implements engine.Ticker
func (g *Game) Tick(dt time.Duration) {
	g.mu.Lock()
	defer g.mu.Unlock()

	sec := dt.Seconds()
	g.elapsed += sec

	switch g.Phase() {
	case PhasePlaying, PhaseBoss:
		g.updatePlayer(sec, true)
		g.updateSpawns(sec)
		g.updateEnemies(sec)
		g.updateBoss(sec)
		g.updateBullets(sec)
		g.updatePowerUps(sec)
		g.resolveCollisions()
		g.checkProgress()
		g.cull()
		_ = g.st.Update(PathTick, func(old any) any { return toInt(old) + 1 })
	case PhaseDialogue, PhaseLevelClear:
		g.updatePlayer(sec, false)
		g.updateBullets(sec)
		g.updatePowerUps(sec)
		g.cull()
	}
	g.updateParticles(sec)
	g.publishStatus()
	g.settle()
}

// settle dispatches deferred events, including chains they emit
func (g *Game) settle() {
	if err := g.d.Settle(parameter.FlushIterations); err != nil {
		g.logger.Warn().Err(err).Msg("listener failed")
	}
}

func (g *Game) emit(name string, payload any) {
	if err := g.d.Emit(name, payload); err != nil {
		g.logger.Warn().Err(err).Str("event", name).Msg("listener failed")
	}
}

func (g *Game) set(path string, value any) {
	if err := g.st.Set(path, value); err != nil {
		g.logger.Error().Err(err).Str("path", path).Msg("state write rejected")
	}
}

func (g *Game) batch(fn func(tx *state.Tx) error) {
	if err := g.st.Batch(fn); err != nil {
		g.logger.Error().Err(err).Msg("state batch rejected")
	}
}

func (g *Game) publishStatus() {
	g.statEnemies.Store(int64(len(g.enemies)))
	g.statBullets.Store(int64(len(g.bullets)))
	g.statParticles.Store(int64(len(g.particles)))
	g.statLevel.Store(int64(g.st.GetInt(PathLevel, 1)))
	g.statDropped.Store(int64(g.d.Dropped()))
}

// wire registers the game's own listeners
func (g *Game) wire() {
	g.d.On(EventLevelComplete, func(ev event.Event) error {
		p, _ := event.PayloadAs[LevelPayload](ev)
		g.startLevel(min(p.Level+1, parameter.MaxLevel))
		return nil
	})
	g.d.On(EventPowerUpExpired, func(ev event.Event) error {
		p, _ := event.PayloadAs[PowerUpPayload](ev)
		g.expire(p.Kind)
		return nil
	})
	g.d.On(EventScoreRecorded, func(event.Event) error {
		g.recorded = true
		return nil
	})
	g.d.On(effect.DefaultErrorEvent, func(ev event.Event) error {
		p, _ := event.PayloadAs[effect.ErrorPayload](ev)
		g.logger.Error().Err(p.Err).Str("effect", p.Effect).Str("trigger", p.Event).Msg("saga failed")
		return nil
	})
}

// start begins a new run at level 1, keeping options and the best score
func (g *Game) start() {
	g.emit(EventGameCleanup, nil)

	doc := InitialState(g.settings())
	doc["stats"].(map[string]any)["best"] = g.st.GetInt(PathBest, 0)
	if err := g.st.Reset(doc); err != nil {
		g.logger.Error().Err(err).Msg("reset rejected")
		return
	}

	g.runID = uuid.New()
	g.resetPlayer()
	g.particles = nil
	g.logger.Info().Str("run", g.runID.String()).Msg("run started")
	g.emit(EventGameStart, nil)
	g.startLevel(1)
}

func (g *Game) settings() Settings {
	return Settings{
		Volume:     g.st.GetFloat(PathVolume, 1),
		Difficulty: g.st.GetString(PathDifficulty, "normal"),
		Sound:      g.st.GetBool(PathSound, true),
		Parallax:   g.st.GetBool(PathParallax, true),
	}
}

func (g *Game) resetPlayer() {
	g.player = Player{
		Pos:   vec(6, (g.height+parameter.HUDRows)/2),
		Power: PowerSingle,
	}
	g.intent = intent{}
}

// startLevel clears the field and hands over to the intro saga
func (g *Game) startLevel(level int) {
	g.enemies = nil
	g.bullets = nil
	g.powerups = nil
	g.boss = nil
	g.levelKills = 0
	g.spawned = 0
	g.spawnWait = SpawnInterval(level)

	g.batch(func(tx *state.Tx) error {
		for _, kv := range []struct {
			path string
			v    any
		}{
			{PathLevel, level},
			{PathWave, 0},
			{PathPhase, PhaseDialogue},
			{PathBossActive, false},
			{PathBossHP, 0},
			{PathBossMaxHP, 0},
		} {
			if err := tx.Set(kv.path, kv.v); err != nil {
				return err
			}
		}
		return nil
	})
	g.emit(EventLevelStart, LevelPayload{Level: level})
}

// transition sets the phase from a saga; while the player is paused or in options
// the phase is applied on resume instead
// A saga cancelled while waiting for the lock (new run, shutdown) changes nothing
func (g *Game) transition(ctx context.Context, phase string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return effect.ErrCancelled
	}
	switch g.Phase() {
	case PhasePaused, PhaseOptions:
		if g.resumePhase != "" {
			g.resumePhase = phase
			return nil
		}
	}
	return g.st.Set(PathPhase, phase)
}

func (g *Game) pause() {
	phase := g.Phase()
	switch phase {
	case PhasePlaying, PhaseBoss, PhaseDialogue, PhaseLevelClear:
	default:
		return
	}
	g.resumePhase = phase
	g.set(PathPhase, PhasePaused)
	g.clock.Pause()
	g.emit(EventGamePause, nil)
}

func (g *Game) resume() {
	if g.Phase() != PhasePaused || g.resumePhase == "" {
		return
	}
	phase := g.resumePhase
	g.resumePhase = ""
	g.set(PathPhase, phase)
	g.clock.Resume()
	g.emit(EventGameResume, nil)
}

func (g *Game) gameOver() {
	run := GameOverPayload{
		Score: g.st.GetInt(PathScore, 0),
		Level: g.st.GetInt(PathLevel, 1),
		Kills: g.st.GetInt(PathKills, 0),
	}
	g.recorded = false
	g.emit(EventPlayerDied, nil)
	g.set(PathPhase, PhaseGameOver)
	g.emit(EventGameOver, run)
}

// loadBest seeds stats.best from the score store
func (g *Game) loadBest() {
	if g.scores == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	best, err := g.scores.Best(ctx)
	if err != nil {
		g.logger.Warn().Err(err).Msg("best score unavailable")
		return
	}
	g.set(PathBest, best)
}

func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}
