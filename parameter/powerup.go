package parameter

// Power-up weights for weighted random choice; sum need not be 100
var PowerUpWeights = map[string]int{
	"double": 30,
	"spread": 20,
	"laser":  10,
	"shield": 15,
	"life":   5,
	"bomb":   20,
}

// PowerUpOrder fixes iteration order so seeded rolls are reproducible
var PowerUpOrder = []string{"double", "spread", "laser", "shield", "life", "bomb"}

const (
	PowerUpSpeed = 8.0

	// PowerUpDuration is seconds a timed power-up stays active
	PowerUpDuration = 12.0
)

// DropChance is the per-kill power-up probability, by difficulty
var DropChance = map[string]float64{
	"easy":   0.25,
	"normal": 0.15,
	"hard":   0.08,
}
