package game

import (
	"github.com/lixenwraith/void-striker/parameter"
	"github.com/lixenwraith/void-striker/state"
	"github.com/lixenwraith/void-striker/vmath"
)

// resolveCollisions runs every AABB pair check for one tick
func (g *Game) resolveCollisions() {
	player := g.player.Bounds()

	for _, b := range g.bullets {
		if b.Dead {
			continue
		}
		box := b.Bounds()

		if b.Owner == OwnerEnemy {
			if box.Intersects(player) {
				b.Dead = true
				g.hitPlayer()
			}
			continue
		}

		for _, e := range g.enemies {
			if e.Dead || !box.Intersects(e.Bounds()) {
				continue
			}
			b.Dead = true
			e.HP -= b.Damage
			if e.HP <= 0 {
				g.destroyEnemy(e)
			}
			break
		}
		if !b.Dead && g.boss != nil && box.Intersects(g.boss.Bounds()) {
			b.Dead = true
			g.damageBoss(b.Damage)
		}
	}

	for _, e := range g.enemies {
		if !e.Dead && e.Bounds().Intersects(player) {
			g.destroyEnemy(e)
			g.hitPlayer()
		}
	}
	if g.boss != nil && g.boss.Bounds().Intersects(player) {
		g.hitPlayer()
	}

	for _, p := range g.powerups {
		if !p.Dead && p.Bounds().Intersects(player) {
			p.Dead = true
			g.collect(p)
		}
	}
}

// destroyEnemy awards score, counts the kill and may drop a pickup
func (g *Game) destroyEnemy(e *Enemy) {
	if e.Dead {
		return
	}
	e.Dead = true
	points := e.Kind.Stats().Score
	g.levelKills++
	g.explode(e.Pos, parameter.ExplosionParticles)

	g.batch(func(tx *state.Tx) error {
		score, _ := tx.Get(PathScore)
		kills, _ := tx.Get(PathKills)
		if err := tx.Set(PathScore, toInt(score)+points); err != nil {
			return err
		}
		return tx.Set(PathKills, toInt(kills)+1)
	})
	g.emit(EventEnemyDestroyed, EnemyPayload{Kind: e.Kind, Pos: e.Pos, Score: points})

	if ShouldDrop(g.rng, g.difficulty()) {
		g.dropPowerUp(e.Pos, PickPowerUp(g.rng))
	}
}

func (g *Game) dropPowerUp(pos vmath.Vec2, kind PowerUpKind) {
	g.powerups = append(g.powerups, &PowerUp{Kind: kind, Pos: pos})
	g.emit(EventPowerUpSpawned, PowerUpPayload{Kind: kind, Pos: pos})
}

// hitPlayer applies one hit: the shield absorbs it, otherwise a life is lost
func (g *Game) hitPlayer() {
	p := &g.player
	if p.Invulnerable > 0 || g.Phase() == PhaseGameOver {
		return
	}

	if p.Shield {
		p.Shield = false
		p.Invulnerable = parameter.PlayerInvulnerableTime / 2
		g.set(PathShield, false)
		g.emit(EventPlayerHit, HitPayload{LivesLeft: g.st.GetInt(PathLives, 0), Absorbed: true})
		return
	}

	lives := max(g.st.GetInt(PathLives, 0)-1, 0)
	p.Invulnerable = parameter.PlayerInvulnerableTime
	p.Power = PowerSingle
	g.batch(func(tx *state.Tx) error {
		if err := tx.Set(PathLives, lives); err != nil {
			return err
		}
		return tx.Set(PathPower, string(PowerSingle))
	})
	g.explode(p.Pos, parameter.ExplosionParticles)
	g.emit(EventPlayerHit, HitPayload{LivesLeft: lives})

	if lives == 0 {
		g.gameOver()
	}
}

// collect applies a pickup; timed kinds are expired by the power-up saga
func (g *Game) collect(pu *PowerUp) {
	p := &g.player
	switch pu.Kind {
	case PowerUpDouble, PowerUpSpread, PowerUpLaser:
		p.Power = Power(pu.Kind)
		g.set(PathPower, string(pu.Kind))
	case PowerUpShield:
		p.Shield = true
		g.set(PathShield, true)
	case PowerUpLife:
		g.set(PathLives, min(g.st.GetInt(PathLives, 0)+1, parameter.PlayerMaxLives))
	case PowerUpBomb:
		g.set(PathBombs, min(g.st.GetInt(PathBombs, 0)+1, parameter.PlayerMaxBombs))
	}
	g.emit(EventPowerUpCollected, PowerUpPayload{Kind: pu.Kind, Pos: pu.Pos})
}

// expire ends a timed pickup unless something else replaced it meanwhile
func (g *Game) expire(kind PowerUpKind) {
	p := &g.player
	switch kind {
	case PowerUpShield:
		if p.Shield {
			p.Shield = false
			g.set(PathShield, false)
		}
	case PowerUpDouble, PowerUpSpread, PowerUpLaser:
		if p.Power == Power(kind) {
			p.Power = PowerSingle
			g.set(PathPower, string(PowerSingle))
		}
	}
}

// bomb clears every enemy and enemy bullet; an active boss takes fixed damage
func (g *Game) bomb() {
	bombs := g.st.GetInt(PathBombs, 0)
	if bombs == 0 {
		return
	}
	g.set(PathBombs, bombs-1)

	killed := 0
	for _, e := range g.enemies {
		if !e.Dead {
			g.destroyEnemy(e)
			killed++
		}
	}
	for _, b := range g.bullets {
		if b.Owner == OwnerEnemy {
			b.Dead = true
		}
	}
	g.emit(EventBombDetonated, killed)
	g.damageBoss(parameter.BombBossDamage)
}
