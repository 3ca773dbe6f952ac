package parameter

// Boss
const (
	BossBaseHP     = 60
	BossHPPerLevel = 25
	BossWidth      = 7.0
	BossHeight     = 3.0
	BossSpeed      = 6.0
	BossScore      = 5000

	// BossStopX is how far from the right edge the boss parks
	BossStopX = 14.0

	// BossPhaseTwo and BossPhaseThree are hp fractions that switch fire pattern
	BossPhaseTwo   = 0.66
	BossPhaseThree = 0.33

	BossFireEvery   = 1.0
	BossRingBullets = 8
	BossSpreadCount = 5
)
