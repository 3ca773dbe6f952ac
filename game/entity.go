package game

import (
	"github.com/lixenwraith/void-striker/parameter"
	"github.com/lixenwraith/void-striker/vmath"
)

// EnemyKind indexes parameter.EnemyTable
type EnemyKind int

const (
	EnemyScout    EnemyKind = parameter.EnemyScout
	EnemyFighter  EnemyKind = parameter.EnemyFighter
	EnemyTank     EnemyKind = parameter.EnemyTank
	EnemyKamikaze EnemyKind = parameter.EnemyKamikaze
)

func (k EnemyKind) String() string {
	switch k {
	case EnemyScout:
		return "scout"
	case EnemyFighter:
		return "fighter"
	case EnemyTank:
		return "tank"
	case EnemyKamikaze:
		return "kamikaze"
	default:
		return "unknown"
	}
}

// Stats returns the base table entry for k
func (k EnemyKind) Stats() parameter.EnemyStats {
	return parameter.EnemyTable[k]
}

// Power is the player's weapon mode
type Power string

const (
	PowerSingle Power = "single"
	PowerDouble Power = "double"
	PowerSpread Power = "spread"
	PowerLaser  Power = "laser"
)

// PowerUpKind names a pickup
type PowerUpKind string

const (
	PowerUpDouble PowerUpKind = "double"
	PowerUpSpread PowerUpKind = "spread"
	PowerUpLaser  PowerUpKind = "laser"
	PowerUpShield PowerUpKind = "shield"
	PowerUpLife   PowerUpKind = "life"
	PowerUpBomb   PowerUpKind = "bomb"
)

// Timed reports whether the pickup wears off after Timings.PowerUp
func (k PowerUpKind) Timed() bool {
	switch k {
	case PowerUpDouble, PowerUpSpread, PowerUpLaser, PowerUpShield:
		return true
	}
	return false
}

// Glyph is the on-screen symbol of the pickup
func (k PowerUpKind) Glyph() rune {
	switch k {
	case PowerUpDouble:
		return 'D'
	case PowerUpSpread:
		return 'S'
	case PowerUpLaser:
		return 'L'
	case PowerUpShield:
		return 'O'
	case PowerUpLife:
		return '+'
	case PowerUpBomb:
		return 'B'
	}
	return '?'
}

// Owner tells which side fired a bullet
type Owner int

const (
	OwnerPlayer Owner = iota
	OwnerEnemy
)

// Player is the ship; Pos is its center
type Player struct {
	Pos          vmath.Vec2
	Vel          vmath.Vec2
	Cooldown     float64 // seconds until next shot
	Invulnerable float64 // seconds of remaining grace
	Power        Power
	Shield       bool
}

func (p *Player) Bounds() vmath.Rect {
	return vmath.RectAt(p.Pos, parameter.PlayerWidth, parameter.PlayerHeight)
}

// Enemy is one wave ship
type Enemy struct {
	ID       uint64
	Kind     EnemyKind
	Pos      vmath.Vec2
	Vel      vmath.Vec2
	HP       int
	BaseY    float64 // weave center for fighters
	Age      float64
	FireWait float64
	Dead     bool
}

func (e *Enemy) Bounds() vmath.Rect {
	return vmath.RectAt(e.Pos, e.Kind.Stats().Width, 1)
}

// Boss is the end-of-level ship
type Boss struct {
	Pos      vmath.Vec2
	Vel      vmath.Vec2
	HP       int
	MaxHP    int
	Phase    int // 1..3
	FireWait float64
	Entered  bool
}

func (b *Boss) Bounds() vmath.Rect {
	return vmath.RectAt(b.Pos, parameter.BossWidth, parameter.BossHeight)
}

// PhaseFor maps remaining hp to the fire pattern phase
func (b *Boss) PhaseFor() int {
	if b.MaxHP <= 0 {
		return 1
	}
	frac := float64(b.HP) / float64(b.MaxHP)
	switch {
	case frac <= parameter.BossPhaseThree:
		return 3
	case frac <= parameter.BossPhaseTwo:
		return 2
	default:
		return 1
	}
}

// Bullet is a projectile from either side
type Bullet struct {
	Owner  Owner
	Pos    vmath.Vec2
	Vel    vmath.Vec2
	Damage int
	Dead   bool
}

func (b *Bullet) Bounds() vmath.Rect {
	return vmath.RectAt(b.Pos, 1, 1)
}

// PowerUp is a drifting pickup
type PowerUp struct {
	Kind PowerUpKind
	Pos  vmath.Vec2
	Dead bool
}

func (p *PowerUp) Bounds() vmath.Rect {
	return vmath.RectAt(p.Pos, 1, 1)
}

// Particle is one fading explosion fragment
type Particle struct {
	Pos   vmath.Vec2
	Vel   vmath.Vec2
	Life  float64 // remaining seconds
	Max   float64
	Glyph rune
}

// Fade returns remaining life in [0,1]
func (p *Particle) Fade() float64 {
	if p.Max <= 0 {
		return 0
	}
	return vmath.Clamp(p.Life/p.Max, 0, 1)
}
