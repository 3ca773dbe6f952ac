package audio

import (
	"fmt"

	"github.com/gopxl/beep"

	"github.com/lixenwraith/void-striker/parameter"
)

// Sound effect generators, unity gain; the manager applies volume

func createFireSound(rate beep.SampleRate) beep.Streamer {
	return newVolume(tone(parameter.FireStartFreq, parameter.FireEndFreq,
		parameter.FireSoundDuration, parameter.FireSoundAttack, parameter.FireSoundRelease,
		WaveSquare, rate), 0.35)
}

// createExplosionSound mixes a noise burst with a low rumble
func createExplosionSound(rate beep.SampleRate) beep.Streamer {
	noise := tone(0, 0, parameter.ExplosionSoundDuration,
		parameter.ExplosionSoundAttack, parameter.ExplosionSoundRelease, WaveNoise, rate)
	rumble := tone(parameter.ExplosionRumbleFreq, parameter.ExplosionRumbleFreq/2,
		parameter.ExplosionSoundDuration, parameter.ExplosionSoundAttack, parameter.ExplosionSoundRelease,
		WaveSine, rate)
	return beep.Mix(newVolume(noise, 0.5), newVolume(rumble, 0.6))
}

func createHitSound(rate beep.SampleRate) beep.Streamer {
	return tone(parameter.HitStartFreq, parameter.HitEndFreq,
		parameter.HitSoundDuration, parameter.HitSoundAttack, parameter.HitSoundRelease,
		WaveSaw, rate)
}

func createShieldSound(rate beep.SampleRate) beep.Streamer {
	return tone(parameter.ShieldStartFreq, parameter.ShieldEndFreq,
		parameter.ShieldSoundDuration, parameter.ShieldSoundAttack, parameter.ShieldSoundRelease,
		WaveSine, rate)
}

// createPowerUpSound is a two-note chime, B5 then E6
func createPowerUpSound(rate beep.SampleRate) beep.Streamer {
	n1 := tone(987.77, 987.77, parameter.PowerUpNote1Duration,
		parameter.PowerUpSoundAttack, parameter.PowerUpNote1Release, WaveSquare, rate)
	n2 := tone(1318.51, 1318.51, parameter.PowerUpNote2Duration,
		parameter.PowerUpSoundAttack, parameter.PowerUpNote2Release, WaveSquare, rate)
	return newVolume(beep.Seq(n1, n2), 0.4)
}

// createBossAlarmSound alternates two square tones
func createBossAlarmSound(rate beep.SampleRate) beep.Streamer {
	parts := make([]beep.Streamer, 0, parameter.AlarmRepeats*2)
	for i := 0; i < parameter.AlarmRepeats; i++ {
		parts = append(parts,
			NewOscillator(parameter.AlarmLowFreq, parameter.AlarmToneDuration, WaveSquare, rate),
			NewOscillator(parameter.AlarmHighFreq, parameter.AlarmToneDuration, WaveSquare, rate),
		)
	}
	return newVolume(beep.Seq(parts...), 0.3)
}

func createLevelClearSound(rate beep.SampleRate) beep.Streamer {
	notes := make([]beep.Streamer, len(parameter.LevelClearNotes))
	for i, f := range parameter.LevelClearNotes {
		notes[i] = tone(f, f, parameter.LevelClearNoteDuration,
			parameter.LevelClearAttack, parameter.LevelClearRelease, WaveSine, rate)
	}
	return beep.Seq(notes...)
}

// createBombSound is a falling boom under noise
func createBombSound(rate beep.SampleRate) beep.Streamer {
	noise := tone(0, 0, parameter.BombSoundDuration,
		parameter.BombSoundAttack, parameter.BombSoundRelease, WaveNoise, rate)
	boom := tone(120, 30, parameter.BombSoundDuration,
		parameter.BombSoundAttack, parameter.BombSoundRelease, WaveSine, rate)
	return beep.Mix(newVolume(noise, 0.6), boom)
}

func createGameOverSound(rate beep.SampleRate) beep.Streamer {
	return newVolume(tone(parameter.GameOverStartFreq, parameter.GameOverEndFreq,
		parameter.GameOverSoundDuration, parameter.GameOverSoundAttack, parameter.GameOverSoundRelease,
		WaveSaw, rate), 0.5)
}

// GetSoundEffect returns a new streamer for the sound
func GetSoundEffect(st SoundType, rate beep.SampleRate) (beep.Streamer, error) {
	switch st {
	case SoundFire:
		return createFireSound(rate), nil
	case SoundExplosion:
		return createExplosionSound(rate), nil
	case SoundHit:
		return createHitSound(rate), nil
	case SoundShield:
		return createShieldSound(rate), nil
	case SoundPowerUp:
		return createPowerUpSound(rate), nil
	case SoundBossAlarm:
		return createBossAlarmSound(rate), nil
	case SoundLevelClear:
		return createLevelClearSound(rate), nil
	case SoundBomb:
		return createBombSound(rate), nil
	case SoundGameOver:
		return createGameOverSound(rate), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownSound, int(st))
	}
}
