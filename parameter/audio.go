package parameter

import "time"

// Audio Hardware Settings
const (
	AudioSampleRate = 44100

	// AudioBufferDuration determines latency of the speaker
	AudioBufferDuration = 50 * time.Millisecond

	// MinSoundGap between consecutive plays of the same sound
	MinSoundGap = 30 * time.Millisecond

	// MaxVoices caps concurrently mixed sounds; extra requests are dropped
	MaxVoices = 16
)

// Fire Sound
const (
	FireSoundDuration = 60 * time.Millisecond
	FireSoundAttack   = 2 * time.Millisecond
	FireSoundRelease  = 40 * time.Millisecond
	FireStartFreq     = 1400.0 // Hz
	FireEndFreq       = 600.0  // Hz
)

// Explosion Sound
const (
	ExplosionSoundDuration = 350 * time.Millisecond
	ExplosionSoundAttack   = 3 * time.Millisecond
	ExplosionSoundRelease  = 300 * time.Millisecond
	ExplosionRumbleFreq    = 70.0 // Hz
)

// Hit Sound
const (
	HitSoundDuration = 200 * time.Millisecond
	HitSoundAttack   = 2 * time.Millisecond
	HitSoundRelease  = 150 * time.Millisecond
	HitStartFreq     = 300.0 // Hz
	HitEndFreq       = 80.0  // Hz
)

// Shield Deflect Sound
const (
	ShieldSoundDuration = 100 * time.Millisecond
	ShieldSoundAttack   = 2 * time.Millisecond
	ShieldSoundRelease  = 80 * time.Millisecond
	ShieldStartFreq     = 160.0 // Hz
	ShieldEndFreq       = 40.0  // Hz
)

// Power-up Sound (two rising notes)
const (
	PowerUpNote1Duration = 80 * time.Millisecond
	PowerUpNote2Duration = 220 * time.Millisecond
	PowerUpSoundAttack   = 5 * time.Millisecond
	PowerUpNote1Release  = 40 * time.Millisecond
	PowerUpNote2Release  = 160 * time.Millisecond
)

// Boss Alarm Sound (alternating square tones)
const (
	AlarmToneDuration = 180 * time.Millisecond
	AlarmRepeats      = 3
	AlarmLowFreq      = 440.0 // Hz
	AlarmHighFreq     = 660.0 // Hz
)

// Level Clear Sound (arpeggio)
const (
	LevelClearNoteDuration = 120 * time.Millisecond
	LevelClearAttack       = 5 * time.Millisecond
	LevelClearRelease      = 80 * time.Millisecond
)

// LevelClearNotes is a C major arpeggio
var LevelClearNotes = []float64{523.25, 659.25, 783.99, 1046.50}

// Bomb Sound
const (
	BombSoundDuration = 700 * time.Millisecond
	BombSoundAttack   = 10 * time.Millisecond
	BombSoundRelease  = 600 * time.Millisecond
)

// Game Over Sound
const (
	GameOverSoundDuration = 900 * time.Millisecond
	GameOverSoundAttack   = 10 * time.Millisecond
	GameOverSoundRelease  = 400 * time.Millisecond
	GameOverStartFreq     = 440.0 // Hz
	GameOverEndFreq       = 110.0 // Hz
)
