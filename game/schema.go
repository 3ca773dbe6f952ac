package game

import (
	"github.com/lixenwraith/void-striker/parameter"
	"github.com/lixenwraith/void-striker/state"
)

// Phase values of game.phase
const (
	PhaseTitle      = "title"
	PhasePlaying    = "playing"
	PhasePaused     = "paused"
	PhaseDialogue   = "dialogue"
	PhaseOptions    = "options"
	PhaseBoss       = "boss"
	PhaseLevelClear = "level_clear"
	PhaseGameOver   = "game_over"
)

// State paths
const (
	PathPhase      = "game.phase"
	PathLevel      = "game.level"
	PathWave       = "game.wave"
	PathTick       = "game.tick"
	PathScore      = "player.score"
	PathLives      = "player.lives"
	PathPower      = "player.power"
	PathShield     = "player.shield"
	PathBombs      = "player.bombs"
	PathVolume     = "options.volume"
	PathDifficulty = "options.difficulty"
	PathSound      = "options.sound"
	PathParallax   = "options.parallax"
	PathBossActive = "boss.active"
	PathBossHP     = "boss.hp"
	PathBossMaxHP  = "boss.maxHp"
	PathStoryLine  = "story.line"
	PathSpeaker    = "story.speaker"
	PathKills      = "stats.kills"
	PathShots      = "stats.shots"
	PathBest       = "stats.best"
)

// Schema returns the validation rules of the game document
func Schema() state.Schema {
	zero := state.AtLeast(0)
	levelMin, levelMax := state.Range(1, parameter.MaxLevel)
	livesMin, livesMax := state.Range(0, parameter.PlayerMaxLives)
	bombsMin, bombsMax := state.Range(0, parameter.PlayerMaxBombs)
	volMin, volMax := state.Range(0, 1)

	return state.Schema{
		"game":    {Type: state.KindMap, Required: true},
		PathPhase: {Type: state.KindString, Required: true, Enum: []any{PhaseTitle, PhasePlaying, PhasePaused, PhaseDialogue, PhaseOptions, PhaseBoss, PhaseLevelClear, PhaseGameOver}},
		PathLevel: {Type: state.KindInt, Required: true, Min: levelMin, Max: levelMax},
		PathWave:  {Type: state.KindInt, Min: zero},
		PathTick:  {Type: state.KindInt, Min: zero},

		PathScore:  {Type: state.KindInt, Required: true, Min: zero},
		PathLives:  {Type: state.KindInt, Required: true, Min: livesMin, Max: livesMax},
		PathPower:  {Type: state.KindString, Enum: []any{string(PowerSingle), string(PowerDouble), string(PowerSpread), string(PowerLaser)}},
		PathShield: {Type: state.KindBool},
		PathBombs:  {Type: state.KindInt, Min: bombsMin, Max: bombsMax},

		PathVolume:     {Type: state.KindNumber, Min: volMin, Max: volMax},
		PathDifficulty: {Type: state.KindString, Enum: []any{"easy", "normal", "hard"}},
		PathSound:      {Type: state.KindBool},
		PathParallax:   {Type: state.KindBool},

		PathBossActive: {Type: state.KindBool},
		PathBossHP:     {Type: state.KindInt, Min: zero},
		PathBossMaxHP:  {Type: state.KindInt, Min: zero},

		PathStoryLine: {Type: state.KindString},
		PathSpeaker:   {Type: state.KindString},

		PathKills: {Type: state.KindInt, Min: zero},
		PathShots: {Type: state.KindInt, Min: zero},
		PathBest:  {Type: state.KindInt, Min: zero},
	}
}

// Settings are the user-tunable options carried into a new document
type Settings struct {
	Volume     float64
	Difficulty string
	Sound      bool
	Parallax   bool
}

// InitialState builds a fresh title-screen document
func InitialState(s Settings) map[string]any {
	return map[string]any{
		"game": map[string]any{
			"phase": PhaseTitle,
			"level": 1,
			"wave":  0,
			"tick":  0,
		},
		"player": playerState(),
		"options": map[string]any{
			"volume":     s.Volume,
			"difficulty": s.Difficulty,
			"sound":      s.Sound,
			"parallax":   s.Parallax,
		},
		"boss": map[string]any{
			"active": false,
			"hp":     0,
			"maxHp":  0,
		},
		"story": map[string]any{
			"line":    "",
			"speaker": "",
		},
		"stats": map[string]any{
			"kills": 0,
			"shots": 0,
			"best":  0,
		},
	}
}

func playerState() map[string]any {
	return map[string]any{
		"score":  0,
		"lives":  parameter.PlayerStartLives,
		"power":  string(PowerSingle),
		"shield": false,
		"bombs":  parameter.PlayerStartBombs,
	}
}
