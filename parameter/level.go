package parameter

import "time"

// Level progression
const (
	// KillsPerLevelBase is kills needed to summon the level 1 boss
	KillsPerLevelBase = 20

	// KillsPerLevelStep is added per level
	KillsPerLevelStep = 5

	MaxLevel = 99

	// LevelIntroDelay holds the intro before waves start
	LevelIntroDelay = 2 * time.Second

	// LevelOutroDelay is the pause between boss defeat and the next level
	LevelOutroDelay = 3 * time.Second

	// DialogueLineTimeout auto-advances a story line
	DialogueLineTimeout = 4 * time.Second

	// GameOverDelay precedes score recording and the title screen
	GameOverDelay = 2 * time.Second
)

// DifficultyScale multiplies boss hp and enemy fire rate
var DifficultyScale = map[string]float64{
	"easy":   0.75,
	"normal": 1.0,
	"hard":   1.4,
}
