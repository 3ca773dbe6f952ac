package parameter

// Explosion particles
const (
	ExplosionParticles     = 10
	BossExplosionParticles = 40
	ParticleSpeed          = 14.0
	ParticleLifetime       = 0.6
	MaxParticles           = 400
)

var ParticleGlyphs = []rune{'*', '+', '.', '·'}
