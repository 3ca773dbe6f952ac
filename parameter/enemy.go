package parameter

// EnemyStats describes the base behaviour of an enemy kind
type EnemyStats struct {
	HP        int
	Speed     float64 // leftward cells/sec
	Score     int
	Width     float64
	Glyph     rune
	FireEvery float64 // seconds between shots, 0 = never fires
}

// Enemy kinds in spawn-table order
const (
	EnemyScout = iota
	EnemyFighter
	EnemyTank
	EnemyKamikaze
	EnemyKindCount
)

var EnemyTable = [EnemyKindCount]EnemyStats{
	EnemyScout:    {HP: 1, Speed: 18, Score: 100, Width: 1, Glyph: '<'},
	EnemyFighter:  {HP: 2, Speed: 12, Score: 200, Width: 2, Glyph: 'W', FireEvery: 1.6},
	EnemyTank:     {HP: 6, Speed: 6, Score: 500, Width: 3, Glyph: 'M', FireEvery: 2.4},
	EnemyKamikaze: {HP: 1, Speed: 22, Score: 150, Width: 1, Glyph: 'x'},
}

// Enemy movement and fire
const (
	// FighterWeaveAmplitude is the vertical sine amplitude in cells
	FighterWeaveAmplitude = 3.0
	FighterWeaveFrequency = 1.5

	// KamikazeTurnRate is how fast a kamikaze steers towards the player (cells/sec^2)
	KamikazeTurnRate = 20.0

	EnemyBulletSpeed  = 25.0
	EnemyBulletDamage = 1
)

// Wave Spawning
const (
	// SpawnIntervalBase is seconds between spawns at level 1
	SpawnIntervalBase = 1.4

	// SpawnIntervalFloor clamps the interval at high levels
	SpawnIntervalFloor = 0.35

	// SpawnIntervalStep is subtracted per level
	SpawnIntervalStep = 0.12

	// WaveSize is spawns per wave counter increment
	WaveSize = 8
)
