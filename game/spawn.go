package game

import (
	"math"
	"math/rand/v2"

	"github.com/lixenwraith/void-striker/parameter"
)

// NewRand returns the seeded source used for spawning, drops and particles
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// WeightedIndex picks an index with probability weights[i]/sum; -1 when no weight is positive
func WeightedIndex(rng *rand.Rand, weights []int) int {
	total := 0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total == 0 {
		return -1
	}
	roll := rng.IntN(total)
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		if roll < w {
			return i
		}
		roll -= w
	}
	return len(weights) - 1
}

// SpawnWeights is the enemy mix of a level; later levels add heavier kinds
func SpawnWeights(level int) []int {
	l := max(level, 1) - 1
	w := make([]int, parameter.EnemyKindCount)
	w[EnemyScout] = max(60-5*l, 20)
	w[EnemyFighter] = min(30+3*l, 45)
	if level >= 2 {
		w[EnemyTank] = min(10+2*(level-2), 30)
	}
	if level >= 3 {
		w[EnemyKamikaze] = min(10+3*(level-3), 35)
	}
	return w
}

// PickEnemy rolls the next enemy kind for level
func PickEnemy(rng *rand.Rand, level int) EnemyKind {
	return EnemyKind(WeightedIndex(rng, SpawnWeights(level)))
}

// PickPowerUp rolls a pickup kind from parameter.PowerUpWeights
func PickPowerUp(rng *rand.Rand) PowerUpKind {
	weights := make([]int, len(parameter.PowerUpOrder))
	for i, name := range parameter.PowerUpOrder {
		weights[i] = parameter.PowerUpWeights[name]
	}
	return PowerUpKind(parameter.PowerUpOrder[WeightedIndex(rng, weights)])
}

// ShouldDrop rolls the per-kill drop chance of difficulty
func ShouldDrop(rng *rand.Rand, difficulty string) bool {
	chance, ok := parameter.DropChance[difficulty]
	if !ok {
		chance = parameter.DropChance["normal"]
	}
	return rng.Float64() < chance
}

// KillsPerLevel is the kill count that summons the boss of level
func KillsPerLevel(level int) int {
	return parameter.KillsPerLevelBase + parameter.KillsPerLevelStep*(max(level, 1)-1)
}

// SpawnInterval is seconds between enemy spawns at level
func SpawnInterval(level int) float64 {
	return math.Max(parameter.SpawnIntervalBase-parameter.SpawnIntervalStep*float64(max(level, 1)-1), parameter.SpawnIntervalFloor)
}

// DifficultyScale returns the multiplier for difficulty, 1 when unknown
func DifficultyScale(difficulty string) float64 {
	if s, ok := parameter.DifficultyScale[difficulty]; ok {
		return s
	}
	return 1
}

// BossHP is base + perLevel*(level-1), scaled by difficulty
func BossHP(level int, difficulty string) int {
	base := float64(parameter.BossBaseHP + parameter.BossHPPerLevel*(max(level, 1)-1))
	return max(int(math.Round(base*DifficultyScale(difficulty))), 1)
}
