package game

import (
	"math"

	"github.com/lixenwraith/void-striker/parameter"
	"github.com/lixenwraith/void-striker/state"
	"github.com/lixenwraith/void-striker/vmath"
)

func vec(x, y float64) vmath.Vec2 { return vmath.V(x, y) }

// top and bottom bound the playable rows below the HUD
func (g *Game) top() float64    { return parameter.HUDRows + 0.5 }
func (g *Game) bottom() float64 { return g.height - 0.5 }

func (g *Game) difficulty() string {
	return g.st.GetString(PathDifficulty, "normal")
}

// --- Player ---

func (g *Game) updatePlayer(dt float64, armed bool) {
	p := &g.player
	for axis := 0; axis < 2; axis++ {
		if g.elapsed > g.intent.moveUntil[axis] {
			g.intent.dir[axis] = 0
		}
	}
	p.Vel = vec(g.intent.dir[0], g.intent.dir[1]).Normalize().Scale(parameter.PlayerSpeed)
	p.Pos = p.Pos.Add(p.Vel.Scale(dt))
	p.Pos.X = vmath.Clamp(p.Pos.X, parameter.PlayerWidth/2, g.width-parameter.PlayerWidth/2)
	p.Pos.Y = vmath.Clamp(p.Pos.Y, g.top(), g.bottom())

	p.Cooldown = math.Max(p.Cooldown-dt, 0)
	p.Invulnerable = math.Max(p.Invulnerable-dt, 0)

	if armed && g.elapsed <= g.intent.fireUntil && p.Cooldown == 0 {
		g.fire()
	}
}

// fire shoots the current weapon pattern
func (g *Game) fire() {
	p := &g.player
	muzzle := p.Pos.Add(vec(parameter.PlayerWidth/2+0.5, 0))
	shot := func(offsetY, vy float64, damage int) {
		g.bullets = append(g.bullets, &Bullet{
			Owner:  OwnerPlayer,
			Pos:    muzzle.Add(vec(0, offsetY)),
			Vel:    vec(parameter.PlayerBulletSpeed, vy),
			Damage: damage,
		})
	}

	shots := 1
	p.Cooldown = parameter.PlayerFireCooldown
	switch p.Power {
	case PowerDouble:
		shot(-1, 0, parameter.PlayerBulletDamage)
		shot(1, 0, parameter.PlayerBulletDamage)
		shots = 2
	case PowerSpread:
		shot(0, -parameter.SpreadVerticalSpeed, parameter.PlayerBulletDamage)
		shot(0, 0, parameter.PlayerBulletDamage)
		shot(0, parameter.SpreadVerticalSpeed, parameter.PlayerBulletDamage)
		shots = 3
	case PowerLaser:
		shot(0, 0, parameter.LaserBulletDamage)
		p.Cooldown = parameter.PlayerRapidFireCooldown
	default:
		shot(0, 0, parameter.PlayerBulletDamage)
	}

	_ = g.st.Update(PathShots, func(old any) any { return toInt(old) + shots })
	g.emit(EventPlayerFire, p.Power)
}

// --- Enemies ---

func (g *Game) updateSpawns(dt float64) {
	if g.boss != nil || g.Phase() != PhasePlaying {
		return
	}
	level := g.st.GetInt(PathLevel, 1)
	if g.levelKills >= KillsPerLevel(level) {
		return
	}
	g.spawnWait -= dt
	if g.spawnWait > 0 {
		return
	}
	g.spawnWait += SpawnInterval(level)
	g.spawnEnemy(PickEnemy(g.rng, level))
}

func (g *Game) spawnEnemy(kind EnemyKind) *Enemy {
	stats := kind.Stats()
	y := g.top() + g.rng.Float64()*(g.bottom()-g.top())
	g.nextEnemyID++
	e := &Enemy{
		ID:    g.nextEnemyID,
		Kind:  kind,
		Pos:   vec(g.width+stats.Width, y),
		Vel:   vec(-stats.Speed, 0),
		HP:    stats.HP,
		BaseY: y,
	}
	if stats.FireEvery > 0 {
		e.FireWait = g.fireInterval(stats.FireEvery) * (0.5 + g.rng.Float64()/2)
	}
	g.enemies = append(g.enemies, e)

	g.spawned++
	if wave := g.spawned / parameter.WaveSize; wave != g.st.GetInt(PathWave, 0) {
		g.set(PathWave, wave)
	}
	g.emit(EventEnemySpawned, EnemyPayload{Kind: kind, Pos: e.Pos})
	return e
}

// fireInterval shortens fire gaps on harder settings
func (g *Game) fireInterval(base float64) float64 {
	return base / DifficultyScale(g.difficulty())
}

func (g *Game) updateEnemies(dt float64) {
	for _, e := range g.enemies {
		if e.Dead {
			continue
		}
		e.Age += dt
		stats := e.Kind.Stats()

		switch e.Kind {
		case EnemyFighter:
			e.Pos.X += e.Vel.X * dt
			phase := e.Age * parameter.FighterWeaveFrequency * 2 * math.Pi
			e.Pos.Y = vmath.Clamp(e.BaseY+parameter.FighterWeaveAmplitude*math.Sin(phase), g.top(), g.bottom())
		case EnemyKamikaze:
			if e.Pos.X < g.width {
				e.Vel = vmath.SteerTowards(e.Pos, e.Vel, g.player.Pos, parameter.KamikazeTurnRate, dt)
			}
			e.Pos = e.Pos.Add(e.Vel.Scale(dt))
		default:
			e.Pos = e.Pos.Add(e.Vel.Scale(dt))
		}

		if stats.FireEvery <= 0 || e.Pos.X >= g.width {
			continue
		}
		e.FireWait -= dt
		if e.FireWait > 0 {
			continue
		}
		e.FireWait = g.fireInterval(stats.FireEvery)
		if e.Kind == EnemyTank {
			g.enemyShot(e.Pos, g.aim(e.Pos))
		} else {
			g.enemyShot(e.Pos, vec(-1, 0))
		}
	}
}

func (g *Game) aim(from vmath.Vec2) vmath.Vec2 {
	dir := g.player.Pos.Sub(from).Normalize()
	if dir == (vmath.Vec2{}) {
		return vec(-1, 0)
	}
	return dir
}

func (g *Game) enemyShot(from, dir vmath.Vec2) {
	g.bullets = append(g.bullets, &Bullet{
		Owner:  OwnerEnemy,
		Pos:    from,
		Vel:    dir.Scale(parameter.EnemyBulletSpeed),
		Damage: parameter.EnemyBulletDamage,
	})
}

// --- Boss ---

// checkProgress summons the boss once the level's kill quota is met and the field is clear
func (g *Game) checkProgress() {
	if g.boss != nil || g.Phase() != PhasePlaying {
		return
	}
	level := g.st.GetInt(PathLevel, 1)
	if g.levelKills < KillsPerLevel(level) {
		return
	}
	for _, e := range g.enemies {
		if !e.Dead {
			return
		}
	}
	g.spawnBoss(level)
}

func (g *Game) spawnBoss(level int) {
	hp := BossHP(level, g.difficulty())
	g.boss = &Boss{
		Pos:      vec(g.width+parameter.BossWidth, (g.top()+g.bottom())/2),
		Vel:      vec(-parameter.BossSpeed, 0),
		HP:       hp,
		MaxHP:    hp,
		Phase:    1,
		FireWait: parameter.BossFireEvery,
	}
	g.batch(func(tx *state.Tx) error {
		if err := tx.Set(PathPhase, PhaseBoss); err != nil {
			return err
		}
		return tx.Set("boss", map[string]any{"active": true, "hp": hp, "maxHp": hp})
	})
	g.emit(EventBossSpawned, BossPayload{Level: level, HP: hp, Phase: 1, Pos: g.boss.Pos})
}

func (g *Game) updateBoss(dt float64) {
	b := g.boss
	if b == nil {
		return
	}

	halfH := parameter.BossHeight / 2
	if !b.Entered {
		b.Pos = b.Pos.Add(b.Vel.Scale(dt))
		if b.Pos.X <= g.width-parameter.BossStopX {
			b.Pos.X = g.width - parameter.BossStopX
			b.Entered = true
			b.Vel = vec(0, parameter.BossSpeed)
		}
		return
	}

	b.Pos = b.Pos.Add(b.Vel.Scale(dt))
	if b.Pos.Y-halfH < g.top() {
		b.Pos.Y = g.top() + halfH
		b.Vel.Y = math.Abs(b.Vel.Y)
	}
	if b.Pos.Y+halfH > g.bottom() {
		b.Pos.Y = g.bottom() - halfH
		b.Vel.Y = -math.Abs(b.Vel.Y)
	}

	b.FireWait -= dt
	if b.FireWait > 0 {
		return
	}
	b.FireWait = g.fireInterval(parameter.BossFireEvery)
	g.bossFire(b)
}

// bossFire shoots the pattern of the current phase: aimed, spread, ring
func (g *Game) bossFire(b *Boss) {
	muzzle := b.Pos.Sub(vec(parameter.BossWidth/2, 0))
	switch b.Phase {
	case 1:
		g.enemyShot(muzzle, g.aim(muzzle))
	case 2:
		base := g.aim(muzzle)
		const fan = math.Pi / 6
		n := parameter.BossSpreadCount
		for i := 0; i < n; i++ {
			angle := -fan + 2*fan*float64(i)/float64(n-1)
			g.enemyShot(muzzle, base.Rotate(angle))
		}
	default:
		n := parameter.BossRingBullets
		for i := 0; i < n; i++ {
			angle := 2 * math.Pi * float64(i) / float64(n)
			g.enemyShot(b.Pos, vec(1, 0).Rotate(angle))
		}
	}
}

// damageBoss applies dmg and handles phase change and defeat
func (g *Game) damageBoss(dmg int) {
	b := g.boss
	if b == nil {
		return
	}
	b.HP = max(b.HP-dmg, 0)
	g.set(PathBossHP, b.HP)

	if phase := b.PhaseFor(); phase != b.Phase {
		b.Phase = phase
		g.emit(EventBossPhase, BossPayload{Level: g.st.GetInt(PathLevel, 1), HP: b.HP, Phase: phase, Pos: b.Pos})
	}
	if b.HP == 0 {
		g.defeatBoss()
	}
}

func (g *Game) defeatBoss() {
	b := g.boss
	g.boss = nil
	g.explode(b.Pos, parameter.BossExplosionParticles)

	kept := g.bullets[:0]
	for _, bl := range g.bullets {
		if bl.Owner == OwnerPlayer {
			kept = append(kept, bl)
		}
	}
	g.bullets = kept

	level := g.st.GetInt(PathLevel, 1)
	g.batch(func(tx *state.Tx) error {
		score, _ := tx.Get(PathScore)
		if err := tx.Set(PathScore, toInt(score)+parameter.BossScore); err != nil {
			return err
		}
		if err := tx.Set(PathBossActive, false); err != nil {
			return err
		}
		return tx.Set(PathPhase, PhaseLevelClear)
	})
	g.emit(EventBossDefeated, BossPayload{Level: level, Pos: b.Pos})
}

// --- Projectiles, pickups, particles ---

func (g *Game) updateBullets(dt float64) {
	for _, b := range g.bullets {
		b.Pos = b.Pos.Add(b.Vel.Scale(dt))
	}
}

func (g *Game) updatePowerUps(dt float64) {
	for _, p := range g.powerups {
		p.Pos.X -= parameter.PowerUpSpeed * dt
	}
}

func (g *Game) updateParticles(dt float64) {
	kept := g.particles[:0]
	for _, p := range g.particles {
		p.Life -= dt
		if p.Life <= 0 {
			continue
		}
		p.Pos = p.Pos.Add(p.Vel.Scale(dt))
		kept = append(kept, p)
	}
	clear(g.particles[len(kept):])
	g.particles = kept
}

// explode emits n particles at pos in random directions
func (g *Game) explode(pos vmath.Vec2, n int) {
	for i := 0; i < n && len(g.particles) < parameter.MaxParticles; i++ {
		angle := g.rng.Float64() * 2 * math.Pi
		speed := parameter.ParticleSpeed * (0.4 + 0.6*g.rng.Float64())
		life := parameter.ParticleLifetime * (0.5 + 0.5*g.rng.Float64())
		g.particles = append(g.particles, &Particle{
			Pos:   pos,
			Vel:   vec(1, 0).Rotate(angle).Scale(speed),
			Life:  life,
			Max:   life,
			Glyph: parameter.ParticleGlyphs[g.rng.IntN(len(parameter.ParticleGlyphs))],
		})
	}
}

// cull drops dead entities and those past the arena margin
func (g *Game) cull() {
	arena := vmath.Rect{X: 0, Y: 0, W: g.width, H: g.height}.Expand(parameter.OffscreenMargin)
	// Enemies spawn just beyond the right margin and drift in
	arena.W += parameter.BossWidth

	enemies := g.enemies[:0]
	for _, e := range g.enemies {
		if !e.Dead && arena.Contains(e.Pos) {
			enemies = append(enemies, e)
		}
	}
	clear(g.enemies[len(enemies):])
	g.enemies = enemies

	bullets := g.bullets[:0]
	for _, b := range g.bullets {
		if !b.Dead && arena.Contains(b.Pos) {
			bullets = append(bullets, b)
		}
	}
	clear(g.bullets[len(bullets):])
	g.bullets = bullets

	powerups := g.powerups[:0]
	for _, p := range g.powerups {
		if !p.Dead && arena.Contains(p.Pos) {
			powerups = append(powerups, p)
		}
	}
	clear(g.powerups[len(powerups):])
	g.powerups = powerups
}
