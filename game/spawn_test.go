package game

import (
	"testing"

	"github.com/lixenwraith/void-striker/parameter"
)

func TestWeightedIndexDistribution(t *testing.T) {
	rng := NewRand(42)
	weights := []int{0, 3, 1, -2}
	counts := make([]int, len(weights))
	for i := 0; i < 4000; i++ {
		counts[WeightedIndex(rng, weights)]++
	}
	if counts[0] != 0 || counts[3] != 0 {
		t.Errorf("Expected zero and negative weights never picked, got %v", counts)
	}
	ratio := float64(counts[1]) / float64(counts[2])
	if ratio < 2.5 || ratio > 3.5 {
		t.Errorf("Expected ~3:1 ratio, got %v (%v)", ratio, counts)
	}
	if WeightedIndex(rng, []int{0, 0}) != -1 {
		t.Error("Expected -1 for all-zero weights")
	}
}

func TestSeededRollsReproducible(t *testing.T) {
	a, b := NewRand(7), NewRand(7)
	for i := 0; i < 50; i++ {
		if PickEnemy(a, 5) != PickEnemy(b, 5) {
			t.Fatal("Expected identical seeds to produce identical spawns")
		}
		if PickPowerUp(a) != PickPowerUp(b) {
			t.Fatal("Expected identical seeds to produce identical drops")
		}
	}
}

func TestSpawnWeightsByLevel(t *testing.T) {
	w1 := SpawnWeights(1)
	if w1[EnemyTank] != 0 || w1[EnemyKamikaze] != 0 {
		t.Errorf("Expected level 1 without tanks or kamikazes, got %v", w1)
	}
	w5 := SpawnWeights(5)
	if w5[EnemyTank] == 0 || w5[EnemyKamikaze] == 0 {
		t.Errorf("Expected level 5 to include every kind, got %v", w5)
	}
	if w5[EnemyScout] >= w1[EnemyScout] {
		t.Error("Expected scouts to thin out at higher levels")
	}
}

func TestBossHPCurve(t *testing.T) {
	tests := []struct {
		level      int
		difficulty string
		want       int
	}{
		{1, "normal", parameter.BossBaseHP},
		{3, "normal", parameter.BossBaseHP + 2*parameter.BossHPPerLevel},
		{1, "easy", 45},
		{2, "hard", 119},
		{1, "unknown", parameter.BossBaseHP},
	}
	for _, tt := range tests {
		if got := BossHP(tt.level, tt.difficulty); got != tt.want {
			t.Errorf("BossHP(%d, %s): expected %d, got %d", tt.level, tt.difficulty, tt.want, got)
		}
	}
}

func TestLevelCurves(t *testing.T) {
	if KillsPerLevel(1) != parameter.KillsPerLevelBase {
		t.Errorf("Expected %d kills for level 1, got %d", parameter.KillsPerLevelBase, KillsPerLevel(1))
	}
	if KillsPerLevel(3) != parameter.KillsPerLevelBase+2*parameter.KillsPerLevelStep {
		t.Errorf("Unexpected kills for level 3: %d", KillsPerLevel(3))
	}
	if SpawnInterval(99) != parameter.SpawnIntervalFloor {
		t.Errorf("Expected interval floor at high level, got %v", SpawnInterval(99))
	}
	if SpawnInterval(1) != parameter.SpawnIntervalBase {
		t.Errorf("Expected base interval at level 1, got %v", SpawnInterval(1))
	}
}
