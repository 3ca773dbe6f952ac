package game

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lixenwraith/void-striker/effect"
	"github.com/lixenwraith/void-striker/event"
	"github.com/lixenwraith/void-striker/state"
)

const scoreSaveTimeout = 2 * time.Second

func (g *Game) registerSagas() error {
	sagas := []struct {
		name    string
		pattern string
		fn      effect.Handler
	}{
		{"level-intro", EventLevelStart, g.levelIntro},
		{"boss-fight", EventBossSpawned, g.bossFight},
		{"powerup-timer", EventPowerUpCollected, g.powerUpTimer},
		{"game-over", EventGameOver, g.recordScore},
	}
	for _, s := range sagas {
		if _, err := g.fx.On(s.pattern, s.fn, effect.WithName(s.name)); err != nil {
			return fmt.Errorf("game: register %s: %w", s.name, err)
		}
	}
	return nil
}

// levelIntro plays the intro script, holds for the get-ready banner, then starts waves
func (g *Game) levelIntro(ec *effect.Context, ev event.Event) error {
	p, _ := event.PayloadAs[LevelPayload](ev)
	if err := g.playDialogue(ec, IntroScript(p.Level)); err != nil {
		return err
	}
	if err := g.showLine(Line{Text: fmt.Sprintf("LEVEL %d", p.Level)}); err != nil {
		return err
	}
	if err := ec.Delay(g.timings.LevelIntro); err != nil {
		return err
	}
	if err := g.showLine(Line{}); err != nil {
		return err
	}
	return g.setPhase(ec, PhasePlaying)
}

// bossFight waits for the boss to fall or the player to die; a win plays the outro
func (g *Game) bossFight(ec *effect.Context, ev event.Event) error {
	p, _ := event.PayloadAs[BossPayload](ev)
	winner, _, err := ec.Race(
		effect.TakeEffect(EventBossDefeated, 0),
		effect.TakeEffect(EventPlayerDied, 0),
	)
	if err != nil || winner != 0 {
		return err
	}

	if err := g.playDialogue(ec, OutroScript(p.Level)); err != nil {
		return err
	}
	if err := ec.Delay(g.timings.LevelOutro); err != nil {
		return err
	}
	return ec.Put(EventLevelComplete, LevelPayload{Level: p.Level})
}

// powerUpTimer expires a timed pickup unless the same kind is collected again first
func (g *Game) powerUpTimer(ec *effect.Context, ev event.Event) error {
	p, _ := event.PayloadAs[PowerUpPayload](ev)
	if !p.Kind.Timed() {
		return nil
	}

	refreshed := func(ec *effect.Context) (any, error) {
		for {
			next, err := ec.Take(EventPowerUpCollected, 0)
			if err != nil {
				return nil, err
			}
			if q, _ := event.PayloadAs[PowerUpPayload](next); q.Kind == p.Kind {
				return next, nil
			}
		}
	}

	winner, _, err := ec.Race(effect.DelayEffect(g.timings.PowerUp), refreshed)
	if err != nil || winner != 0 {
		return err
	}
	return ec.Put(EventPowerUpExpired, PowerUpPayload{Kind: p.Kind})
}

// recordScore saves the finished run and publishes the best score
// A failed save is surfaced by Call as an error event; the run still ends normally
func (g *Game) recordScore(ec *effect.Context, ev event.Event) error {
	p, _ := event.PayloadAs[GameOverPayload](ev)
	if err := ec.Delay(g.timings.GameOver); err != nil {
		return err
	}

	p.Best = max(g.st.GetInt(PathBest, 0), p.Score)
	if g.scores != nil {
		run := Run{
			ID:         g.RunID(),
			Score:      p.Score,
			Level:      p.Level,
			Kills:      p.Kills,
			Difficulty: g.st.GetString(PathDifficulty, "normal"),
			EndedAt:    time.Now(),
		}
		best, err := ec.Call(func(ctx context.Context) (any, error) {
			ctx, cancel := context.WithTimeout(ctx, scoreSaveTimeout)
			defer cancel()
			if err := g.scores.Record(ctx, run); err != nil {
				return nil, fmt.Errorf("record score: %w", err)
			}
			return g.scores.Best(ctx)
		})
		if errors.Is(err, effect.ErrCancelled) {
			return err
		}
		if err == nil {
			p.Best = best.(int)
		}
	}

	if err := g.st.Set(PathBest, p.Best); err != nil {
		return err
	}
	return ec.Put(EventScoreRecorded, p)
}

// playDialogue shows each line until story.advance or the line timeout
func (g *Game) playDialogue(ec *effect.Context, lines []Line) error {
	for i, line := range lines {
		if err := g.showLine(line); err != nil {
			return err
		}
		if err := ec.Put(EventStoryLine, StoryPayload{Speaker: line.Speaker, Text: line.Text, Index: i}); err != nil {
			return err
		}
		if _, _, err := ec.Race(
			effect.TakeEffect(EventStoryAdvance, 0),
			effect.DelayEffect(g.timings.DialogueLine),
		); err != nil {
			return err
		}
	}
	if err := g.showLine(Line{}); err != nil {
		return err
	}
	return ec.Put(EventStoryDone, nil)
}

func (g *Game) showLine(line Line) error {
	return g.st.Batch(func(tx *state.Tx) error {
		if err := tx.Set(PathSpeaker, line.Speaker); err != nil {
			return err
		}
		return tx.Set(PathStoryLine, line.Text)
	})
}

// setPhase is a pause-aware phase transition from a saga
func (g *Game) setPhase(ec *effect.Context, phase string) error {
	_, err := ec.Call(func(ctx context.Context) (any, error) {
		return nil, g.transition(ctx, phase)
	})
	return err
}
