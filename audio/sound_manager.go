// Package audio synthesizes game sounds with beep and plays them in response to
// dispatcher events, honoring volume and mute from the state document
package audio

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"github.com/rs/zerolog"

	"github.com/lixenwraith/void-striker/event"
	"github.com/lixenwraith/void-striker/game"
	"github.com/lixenwraith/void-striker/parameter"
	"github.com/lixenwraith/void-striker/state"
	"github.com/lixenwraith/void-striker/status"
)

// Option configures a SoundManager
type Option func(*SoundManager)

func WithLogger(logger zerolog.Logger) Option {
	return func(sm *SoundManager) { sm.logger = logger.With().Str("component", "audio").Logger() }
}

// WithStatus publishes audio.played and audio.dropped counters
func WithStatus(reg *status.Registry) Option {
	return func(sm *SoundManager) {
		sm.statPlayed = reg.Ints.Get("audio.played")
		sm.statDropped = reg.Ints.Get("audio.dropped")
	}
}

// WithNow overrides the clock used for the per-sound gap
func WithNow(now func() time.Time) Option {
	return func(sm *SoundManager) { sm.now = now }
}

// eventSounds maps dispatcher events to the sound they trigger
// player.hit is resolved by payload: absorbed hits play the shield sound
var eventSounds = map[string]SoundType{
	game.EventPlayerFire:       SoundFire,
	game.EventEnemyDestroyed:   SoundExplosion,
	game.EventPowerUpCollected: SoundPowerUp,
	game.EventBossSpawned:      SoundBossAlarm,
	game.EventBossDefeated:     SoundLevelClear,
	game.EventBombDetonated:    SoundBomb,
	game.EventGameOver:         SoundGameOver,
}

// SoundManager manages all game audio
//
// Without a device (Initialize failed or never called) requests are still
// accepted and counted but nothing is mixed, so the game runs silently
type SoundManager struct {
	mu          sync.Mutex
	rate        beep.SampleRate
	mixer       *beep.Mixer
	ctrl        *beep.Ctrl
	initialized bool

	volume float64
	muted  bool
	last   [soundTypeCount]time.Time
	now    func() time.Time

	requested [soundTypeCount]atomic.Uint64

	subs   []event.Subscription
	unsubs []func()
	d      *event.Dispatcher

	statPlayed  *atomic.Int64
	statDropped *atomic.Int64
	logger      zerolog.Logger
}

// NewSoundManager creates a manager at full volume
func NewSoundManager(opts ...Option) *SoundManager {
	mixer := &beep.Mixer{}
	sm := &SoundManager{
		rate:        beep.SampleRate(parameter.AudioSampleRate),
		mixer:       mixer,
		ctrl:        &beep.Ctrl{Streamer: mixer},
		volume:      1,
		now:         time.Now,
		statPlayed:  new(atomic.Int64),
		statDropped: new(atomic.Int64),
		logger:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(sm)
	}
	return sm
}

// Initialize opens the speaker; a failure leaves the manager usable in silent mode
func (sm *SoundManager) Initialize() error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	if err := speaker.Init(sm.rate, sm.rate.N(parameter.AudioBufferDuration)); err != nil {
		sm.logger.Warn().Err(err).Msg("no audio device, running silent")
		return err
	}

	speaker.Play(sm.ctrl)
	sm.initialized = true
	return nil
}

// Attach plays sounds for game events and follows options.volume and options.sound
func (sm *SoundManager) Attach(d *event.Dispatcher, st *state.Store) {
	sm.mu.Lock()
	sm.volume = st.GetFloat(game.PathVolume, 1)
	sm.muted = !st.GetBool(game.PathSound, true)
	sm.d = d
	sm.mu.Unlock()

	for name, sound := range eventSounds {
		sm.subs = append(sm.subs, d.On(name, func(event.Event) error {
			sm.Play(sound)
			return nil
		}))
	}
	sm.subs = append(sm.subs,
		d.On(game.EventPlayerHit, func(ev event.Event) error {
			if p, _ := event.PayloadAs[game.HitPayload](ev); p.Absorbed {
				sm.Play(SoundShield)
			} else {
				sm.Play(SoundHit)
			}
			return nil
		}),
		d.On(game.EventGamePause, func(event.Event) error { sm.setPaused(true); return nil }),
		d.On(game.EventGameResume, func(event.Event) error { sm.setPaused(false); return nil }),
	)

	sm.unsubs = append(sm.unsubs,
		st.Subscribe(game.PathVolume, func(c state.Change) {
			if v, ok := c.Float(); ok {
				sm.SetVolume(v)
			}
		}, false),
		st.Subscribe(game.PathSound, func(c state.Change) {
			if on, ok := c.New.(bool); ok {
				sm.SetMuted(!on)
			}
		}, false),
	)
}

// Detach removes every listener installed by Attach
func (sm *SoundManager) Detach() {
	if sm.d != nil {
		for _, id := range sm.subs {
			sm.d.Off(id)
		}
	}
	for _, fn := range sm.unsubs {
		fn()
	}
	sm.subs, sm.unsubs = nil, nil
}

// Cleanup stops all sounds and detaches
func (sm *SoundManager) Cleanup() {
	sm.Detach()

	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized {
		return
	}
	speaker.Lock()
	sm.mixer.Clear()
	speaker.Unlock()
	speaker.Clear()
	sm.initialized = false
}

// Play mixes a new instance of the sound; returns true when it reached the device
func (sm *SoundManager) Play(st SoundType) bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if st < 0 || st >= soundTypeCount || sm.muted || sm.volume <= 0 {
		return false
	}
	now := sm.now()
	if now.Sub(sm.last[st]) < parameter.MinSoundGap {
		sm.statDropped.Add(1)
		return false
	}
	sm.last[st] = now
	sm.requested[st].Add(1)

	if !sm.initialized || sm.ctrl.Paused {
		return false
	}

	s, err := GetSoundEffect(st, sm.rate)
	if err != nil {
		sm.logger.Error().Err(err).Msg("sound effect")
		return false
	}

	speaker.Lock()
	defer speaker.Unlock()
	if sm.mixer.Len() >= parameter.MaxVoices {
		sm.statDropped.Add(1)
		return false
	}
	sm.mixer.Add(newVolume(s, sm.volume))
	sm.statPlayed.Add(1)
	return true
}

// Requested reports how many plays of st passed mute and gap checks
func (sm *SoundManager) Requested(st SoundType) uint64 {
	if st < 0 || st >= soundTypeCount {
		return 0
	}
	return sm.requested[st].Load()
}

// SetVolume clamps vol to [0,1]
func (sm *SoundManager) SetVolume(vol float64) {
	sm.mu.Lock()
	sm.volume = min(max(vol, 0), 1)
	sm.mu.Unlock()
}

func (sm *SoundManager) SetMuted(muted bool) {
	sm.mu.Lock()
	sm.muted = muted
	sm.mu.Unlock()
}

// Volume returns the master volume and mute state
func (sm *SoundManager) Volume() (float64, bool) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.volume, sm.muted
}

// IsPaused reports whether the mixer is held by game pause
func (sm *SoundManager) IsPaused() bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.ctrl.Paused
}

func (sm *SoundManager) setPaused(paused bool) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if sm.initialized {
		speaker.Lock()
		defer speaker.Unlock()
	}
	sm.ctrl.Paused = paused
}
