package audio

import (
	"testing"
	"time"

	"github.com/lixenwraith/void-striker/event"
	"github.com/lixenwraith/void-striker/game"
	"github.com/lixenwraith/void-striker/parameter"
	"github.com/lixenwraith/void-striker/state"
)

type fakeNow struct{ t time.Time }

func (f *fakeNow) now() time.Time          { return f.t }
func (f *fakeNow) advance(d time.Duration) { f.t = f.t.Add(d) }

func newAttached(t *testing.T) (*SoundManager, *event.Dispatcher, *state.Store, *fakeNow) {
	t.Helper()
	st, err := state.New(game.InitialState(game.Settings{Volume: 0.8, Difficulty: "normal", Sound: true}),
		state.WithSchema(game.Schema()))
	if err != nil {
		t.Fatalf("Expected initial state, got %v", err)
	}
	d := event.NewDispatcher()
	clock := &fakeNow{t: time.Unix(1000, 0)}
	sm := NewSoundManager(WithNow(clock.now))
	sm.Attach(d, st)
	return sm, d, st, clock
}

// TestSoundManagerGracefulDegradation verifies audio operations don't panic when not initialized
func TestSoundManagerGracefulDegradation(t *testing.T) {
	sm := NewSoundManager()

	defer func() {
		if r := recover(); r != nil {
			t.Errorf("Sound operations panicked without initialization: %v", r)
		}
	}()

	for s := SoundType(0); s < soundTypeCount; s++ {
		if sm.Play(s) {
			t.Errorf("Expected %s to stay silent without a device", s)
		}
	}
	if sm.Requested(SoundFire) != 1 {
		t.Errorf("Expected request counted in silent mode, got %d", sm.Requested(SoundFire))
	}
	if sm.Play(soundTypeCount) {
		t.Error("Expected unknown sound rejected")
	}
	sm.Cleanup()
}

// TestSoundManagerInitialization verifies sound manager can be initialized and cleaned up
func TestSoundManagerInitialization(t *testing.T) {
	sm := NewSoundManager()

	// Speaker initialization may fail in CI/test environments without audio devices
	if err := sm.Initialize(); err != nil {
		t.Logf("Sound initialization failed (expected in test environment): %v", err)
		return
	}
	if err := sm.Initialize(); err != nil {
		t.Errorf("Second initialization should succeed as no-op, got error: %v", err)
	}
	sm.Cleanup()
}

func TestAttachMapsEvents(t *testing.T) {
	sm, d, _, clock := newAttached(t)

	cases := []struct {
		name    string
		payload any
		sound   SoundType
	}{
		{game.EventPlayerFire, nil, SoundFire},
		{game.EventEnemyDestroyed, game.EnemyPayload{Kind: game.EnemyScout}, SoundExplosion},
		{game.EventPowerUpCollected, game.PowerUpPayload{Kind: game.PowerUpLife}, SoundPowerUp},
		{game.EventBossSpawned, game.BossPayload{Level: 1}, SoundBossAlarm},
		{game.EventBossDefeated, game.BossPayload{Level: 1}, SoundLevelClear},
		{game.EventBombDetonated, nil, SoundBomb},
		{game.EventGameOver, game.GameOverPayload{}, SoundGameOver},
		{game.EventPlayerHit, game.HitPayload{LivesLeft: 2}, SoundHit},
		{game.EventPlayerHit, game.HitPayload{LivesLeft: 2, Absorbed: true}, SoundShield},
	}
	for _, tc := range cases {
		clock.advance(time.Second)
		before := sm.Requested(tc.sound)
		if err := d.Emit(tc.name, tc.payload); err != nil {
			t.Fatalf("Expected emit %s, got %v", tc.name, err)
		}
		if got := sm.Requested(tc.sound); got != before+1 {
			t.Errorf("Expected %s to request %s, got %d plays", tc.name, tc.sound, got-before)
		}
	}
}

func TestMinSoundGap(t *testing.T) {
	sm, d, _, clock := newAttached(t)

	_ = d.Emit(game.EventPlayerFire, nil)
	_ = d.Emit(game.EventPlayerFire, nil)
	if got := sm.Requested(SoundFire); got != 1 {
		t.Errorf("Expected repeat inside gap dropped, got %d", got)
	}

	clock.advance(parameter.MinSoundGap)
	_ = d.Emit(game.EventPlayerFire, nil)
	if got := sm.Requested(SoundFire); got != 2 {
		t.Errorf("Expected play after gap, got %d", got)
	}
}

func TestVolumeAndMuteFollowState(t *testing.T) {
	sm, d, st, _ := newAttached(t)

	if vol, muted := sm.Volume(); vol != 0.8 || muted {
		t.Errorf("Expected initial volume 0.8 unmuted, got %v muted=%v", vol, muted)
	}

	if err := st.Set(game.PathVolume, 0.3); err != nil {
		t.Fatalf("Expected volume write, got %v", err)
	}
	if vol, _ := sm.Volume(); vol != 0.3 {
		t.Errorf("Expected volume 0.3, got %v", vol)
	}

	if err := st.Set(game.PathSound, false); err != nil {
		t.Fatalf("Expected sound write, got %v", err)
	}
	_ = d.Emit(game.EventBombDetonated, nil)
	if got := sm.Requested(SoundBomb); got != 0 {
		t.Errorf("Expected muted manager to ignore events, got %d", got)
	}

	st.Undo()
	if _, muted := sm.Volume(); muted {
		t.Error("Expected undo to unmute")
	}
}

func TestVolumeAcceptsIntegers(t *testing.T) {
	sm, _, st, _ := newAttached(t)

	if err := st.Set(game.PathVolume, 1); err != nil {
		t.Fatalf("Expected int volume write, got %v", err)
	}
	if vol, _ := sm.Volume(); vol != 1 {
		t.Errorf("Expected volume 1 from int, got %v", vol)
	}

	if err := st.Set(game.PathVolume, int64(0)); err != nil {
		t.Fatalf("Expected int64 volume write, got %v", err)
	}
	if vol, _ := sm.Volume(); vol != 0 {
		t.Errorf("Expected volume 0 from int64, got %v", vol)
	}
}

func TestPauseFollowsGame(t *testing.T) {
	sm, d, _, _ := newAttached(t)

	_ = d.Emit(game.EventGamePause, nil)
	if !sm.IsPaused() {
		t.Error("Expected mixer paused on game.pause")
	}
	_ = d.Emit(game.EventGameResume, nil)
	if sm.IsPaused() {
		t.Error("Expected mixer resumed on game.resume")
	}
}

func TestDetachStopsListening(t *testing.T) {
	sm, d, st, _ := newAttached(t)
	sm.Detach()

	_ = d.Emit(game.EventPlayerFire, nil)
	if got := sm.Requested(SoundFire); got != 0 {
		t.Errorf("Expected no plays after detach, got %d", got)
	}
	_ = st.Set(game.PathVolume, 0.1)
	if vol, _ := sm.Volume(); vol != 0.8 {
		t.Errorf("Expected volume unchanged after detach, got %v", vol)
	}
}
