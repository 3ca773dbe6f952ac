package game

// View is a copy of everything the renderer draws, taken under the game lock
type View struct {
	Width   int
	Height  int
	Elapsed float64

	Phase  string
	Level  int
	Wave   int
	Score  int
	Best   int
	Lives  int
	Bombs  int
	Kills  int
	Power  Power
	Shield bool

	Player    Player
	Enemies   []Enemy
	Boss      *Boss
	Bullets   []Bullet
	PowerUps  []PowerUp
	Particles []Particle

	Speaker   string
	StoryLine string

	Options      []OptionRow
	OptionCursor int
	Parallax     bool
}

// Blink reports whether the invulnerable player is in the hidden half of its flash
func (v *View) Blink() bool {
	return v.Player.Invulnerable > 0 && int(v.Elapsed*10)%2 == 1
}

// View snapshots the world for drawing
func (g *Game) View() View {
	g.mu.Lock()
	defer g.mu.Unlock()

	v := View{
		Width:     int(g.width),
		Height:    int(g.height),
		Elapsed:   g.elapsed,
		Phase:     g.Phase(),
		Level:     g.st.GetInt(PathLevel, 1),
		Wave:      g.st.GetInt(PathWave, 0),
		Score:     g.st.GetInt(PathScore, 0),
		Best:      g.st.GetInt(PathBest, 0),
		Lives:     g.st.GetInt(PathLives, 0),
		Bombs:     g.st.GetInt(PathBombs, 0),
		Kills:     g.st.GetInt(PathKills, 0),
		Power:     Power(g.st.GetString(PathPower, string(PowerSingle))),
		Shield:    g.st.GetBool(PathShield, false),
		Player:    g.player,
		Speaker:   g.st.GetString(PathSpeaker, ""),
		StoryLine: g.st.GetString(PathStoryLine, ""),
		Parallax:  g.st.GetBool(PathParallax, true),
		Enemies:   make([]Enemy, 0, len(g.enemies)),
		Bullets:   make([]Bullet, 0, len(g.bullets)),
		PowerUps:  make([]PowerUp, 0, len(g.powerups)),
		Particles: make([]Particle, 0, len(g.particles)),
	}

	for _, e := range g.enemies {
		if !e.Dead {
			v.Enemies = append(v.Enemies, *e)
		}
	}
	if g.boss != nil {
		b := *g.boss
		v.Boss = &b
	}
	for _, b := range g.bullets {
		if !b.Dead {
			v.Bullets = append(v.Bullets, *b)
		}
	}
	for _, p := range g.powerups {
		if !p.Dead {
			v.PowerUps = append(v.PowerUps, *p)
		}
	}
	for _, p := range g.particles {
		v.Particles = append(v.Particles, *p)
	}
	if v.Phase == PhaseOptions {
		v.Options = g.menu.Rows(g.st)
		v.OptionCursor = g.menu.Cursor
	}
	return v
}
