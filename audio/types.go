package audio

import (
	"errors"
)

// SoundType represents different sound effects
type SoundType int

const (
	SoundFire       SoundType = iota // Player shot
	SoundExplosion                   // Enemy destroyed
	SoundHit                         // Player lost a life
	SoundShield                      // Shield absorbed a hit
	SoundPowerUp                     // Pickup collected
	SoundBossAlarm                   // Boss entering
	SoundLevelClear                  // Boss defeated
	SoundBomb                        // Screen clear
	SoundGameOver                    // Out of lives
	soundTypeCount
)

var soundNames = [soundTypeCount]string{
	SoundFire:       "fire",
	SoundExplosion:  "explosion",
	SoundHit:        "hit",
	SoundShield:     "shield",
	SoundPowerUp:    "powerup",
	SoundBossAlarm:  "boss_alarm",
	SoundLevelClear: "level_clear",
	SoundBomb:       "bomb",
	SoundGameOver:   "game_over",
}

func (s SoundType) String() string {
	if s >= 0 && s < soundTypeCount {
		return soundNames[s]
	}
	return "unknown"
}

// Sentinel errors
var (
	ErrNotInitialized = errors.New("audio: speaker not initialized")
	ErrUnknownSound   = errors.New("audio: unknown sound")
)
