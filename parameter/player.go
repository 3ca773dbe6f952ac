package parameter

// Player Ship
const (
	PlayerWidth  = 3.0
	PlayerHeight = 1.0

	// PlayerSpeed is cells per second along either axis
	PlayerSpeed = 30.0

	// PlayerFireCooldown is seconds between shots at weapon level single
	PlayerFireCooldown = 0.18

	// PlayerRapidFireCooldown applies while the laser power-up is active
	PlayerRapidFireCooldown = 0.08

	// PlayerInvulnerableTime is the grace period after losing a life
	PlayerInvulnerableTime = 2.0

	PlayerStartLives = 3
	PlayerStartBombs = 2
	PlayerMaxLives   = 9
	PlayerMaxBombs   = 9
)

// Player Bullets
const (
	PlayerBulletSpeed  = 60.0
	PlayerBulletDamage = 1
	LaserBulletDamage  = 2

	// SpreadVerticalSpeed is the vertical velocity of the outer spread shots
	SpreadVerticalSpeed = 12.0
)

// Bomb
const (
	// BombBossDamage is fixed damage applied to an active boss by a bomb
	BombBossDamage = 15
)
