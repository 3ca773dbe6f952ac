package game

import "github.com/lixenwraith/void-striker/vmath"

// Event names dispatched by the game
const (
	EventPlayerFire       = "player.fire"
	EventPlayerHit        = "player.hit"
	EventPlayerDied       = "player.died"
	EventEnemySpawned     = "enemy.spawned"
	EventEnemyDestroyed   = "enemy.destroyed"
	EventBossSpawned      = "boss.spawned"
	EventBossPhase        = "boss.phase"
	EventBossDefeated     = "boss.defeated"
	EventPowerUpSpawned   = "powerup.spawned"
	EventPowerUpCollected = "powerup.collected"
	EventPowerUpExpired   = "powerup.expired"
	EventLevelStart       = "level.start"
	EventLevelComplete    = "level.complete"
	EventGameStart        = "game.start"
	EventGameOver         = "game.over"
	EventGamePause        = "game.pause"
	EventGameResume       = "game.resume"
	EventGameCleanup      = "game.cleanup"
	EventStoryLine        = "story.line"
	EventStoryAdvance     = "story.advance"
	EventStoryDone        = "story.done"
	EventOptionsOpen      = "options.open"
	EventOptionsClose     = "options.close"
	EventBombDetonated    = "bomb.detonated"
	EventScoreRecorded    = "score.recorded"
)

// EnemyPayload accompanies enemy.spawned and enemy.destroyed
type EnemyPayload struct {
	Kind  EnemyKind
	Pos   vmath.Vec2
	Score int // awarded points, destroyed only
}

// BossPayload accompanies boss.spawned, boss.phase and boss.defeated
type BossPayload struct {
	Level int
	HP    int
	Phase int
	Pos   vmath.Vec2
}

// PowerUpPayload accompanies powerup.spawned/collected/expired
type PowerUpPayload struct {
	Kind PowerUpKind
	Pos  vmath.Vec2
}

// LevelPayload accompanies level.start and level.complete
type LevelPayload struct {
	Level int
}

// StoryPayload accompanies story.line
type StoryPayload struct {
	Speaker string
	Text    string
	Index   int
}

// GameOverPayload accompanies game.over and score.recorded
type GameOverPayload struct {
	Score int
	Level int
	Kills int
	Best  int
}

// HitPayload accompanies player.hit
type HitPayload struct {
	LivesLeft int
	Absorbed  bool // shield took the hit
}
