// Package render composes a game.View into a cell buffer that is flushed to a tcell
// screen or painted to a PNG snapshot
package render

import (
	"fmt"
	"math"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/void-striker/game"
	"github.com/lixenwraith/void-striker/parameter"
)

const (
	playerGlyphs = "=>>"
	shieldGlyph  = ')'
	bossBarWidth = 20
)

var bossArt = [3]string{
	" /###\\ ",
	"<=#####",
	" \\###/ ",
}

// Renderer draws views; it owns the compose buffer and starfield
// Not safe for concurrent use; the render loop and the snapshot endpoint each own one
type Renderer struct {
	buf   *Buffer
	stars *Starfield
	seed  uint64
}

// NewRenderer creates a renderer whose starfield derives from seed
func NewRenderer(seed uint64) *Renderer {
	return &Renderer{buf: NewBuffer(0, 0), seed: seed}
}

// Buffer exposes the last composed frame
func (r *Renderer) Buffer() *Buffer { return r.buf }

// Compose draws v into the internal buffer, back to front
func (r *Renderer) Compose(v *game.View) *Buffer {
	if r.stars == nil || r.buf.Width() != v.Width || r.buf.Height() != v.Height {
		r.buf.Resize(v.Width, v.Height)
		r.stars = NewStarfield(r.seed, v.Width, v.Height)
	} else {
		r.buf.Clear()
	}

	if v.Parallax {
		r.stars.Draw(r.buf, v.Elapsed)
	}
	if v.Phase != game.PhaseTitle {
		r.drawWorld(v)
	}
	r.drawHUD(v)
	r.drawOverlay(v)
	return r.buf
}

// Draw composes v and flushes it to the screen
func (r *Renderer) Draw(s tcell.Screen, v *game.View) {
	r.Compose(v)
	r.buf.Flush(s)
	s.Show()
}

// cell maps a world position to its terminal cell
func cell(x, y float64) (int, int) {
	return int(math.Floor(x)), int(math.Floor(y))
}

func (r *Renderer) drawWorld(v *game.View) {
	for i := range v.PowerUps {
		p := &v.PowerUps[i]
		x, y := cell(p.Pos.X, p.Pos.Y)
		r.buf.SetCell(x, y, Cell{Rune: p.Kind.Glyph(), Fg: RgbPowerUp, Bg: RgbPowerUpBg, Bold: true})
	}

	for i := range v.Enemies {
		e := &v.Enemies[i]
		stats := e.Kind.Stats()
		w := int(stats.Width)
		x, y := cell(e.Pos.X-stats.Width/2, e.Pos.Y)
		r.buf.Text(x, y, strings.Repeat(string(stats.Glyph), w), enemyColor(e.Kind), false)
	}

	if b := v.Boss; b != nil {
		x, y := cell(b.Pos.X-parameter.BossWidth/2, b.Pos.Y-parameter.BossHeight/2)
		for row, line := range bossArt {
			r.buf.Text(x, y+row, line, bossColor(b.Phase), true)
		}
	}

	for i := range v.Bullets {
		b := &v.Bullets[i]
		x, y := cell(b.Pos.X, b.Pos.Y)
		switch {
		case b.Owner == game.OwnerEnemy:
			r.buf.Set(x, y, 'o', RgbEnemyBullet)
		case b.Damage > parameter.PlayerBulletDamage:
			r.buf.Set(x, y, '=', RgbLaserBullet)
		default:
			r.buf.Set(x, y, '-', RgbPlayerBullet)
		}
	}

	if v.Phase != game.PhaseGameOver && !v.Blink() {
		p := &v.Player
		x, y := cell(p.Pos.X-parameter.PlayerWidth/2, p.Pos.Y)
		end := r.buf.Text(x, y, playerGlyphs, RgbPlayer, true)
		if v.Shield {
			r.buf.Set(end, y, shieldGlyph, RgbPlayerShield)
		}
	}

	for i := range v.Particles {
		p := &v.Particles[i]
		x, y := cell(p.Pos.X, p.Pos.Y)
		r.buf.Set(x, y, p.Glyph, Lerp(RgbBackground, RgbExplosion, p.Fade()))
	}
}

// drawHUD fills the top row: score, best, lives, bombs, level, power, boss bar
func (r *Renderer) drawHUD(v *game.View) {
	r.buf.Fill(0, 0, v.Width, parameter.HUDRows, ' ', RgbText, RgbPanel)
	x := r.buf.Text(1, 0, fmt.Sprintf("SCORE %07d", v.Score), RgbText, true)
	x = r.buf.Text(x+2, 0, fmt.Sprintf("HI %07d", v.Best), RgbDim, false)
	if v.Phase == game.PhaseTitle {
		return
	}
	x = r.buf.Text(x+2, 0, strings.Repeat("♥", max(v.Lives, 0)), RgbLivesIndicator, false)
	x = r.buf.Text(x+2, 0, fmt.Sprintf("B%d", v.Bombs), RgbText, false)
	x = r.buf.Text(x+2, 0, fmt.Sprintf("LV%d", v.Level), RgbHighlight, false)
	r.buf.Text(x+2, 0, strings.ToUpper(string(v.Power)), RgbPlayer, false)

	if b := v.Boss; b != nil && b.MaxHP > 0 {
		filled := int(math.Ceil(float64(bossBarWidth) * float64(b.HP) / float64(b.MaxHP)))
		start := v.Width - bossBarWidth - 1
		label := start - len("BOSS ")
		r.buf.Text(label, 0, "BOSS ", RgbBossBar, true)
		for i := 0; i < bossBarWidth; i++ {
			c := RgbBossBarEmpty
			if i < filled {
				c = RgbBossBar
			}
			r.buf.Set(start+i, 0, '█', c)
		}
	}
}

func (r *Renderer) drawOverlay(v *game.View) {
	switch v.Phase {
	case game.PhaseTitle:
		r.panel(v, []string{
			"V O I D   S T R I K E R",
			"",
			"ENTER  launch",
			"o      options",
			"q      quit",
			"",
			fmt.Sprintf("HI SCORE %d", v.Best),
		})
	case game.PhasePaused:
		r.panel(v, []string{"PAUSED", "", "p  resume", "o  options"})
	case game.PhaseOptions:
		r.drawOptions(v)
	case game.PhaseGameOver:
		r.panel(v, []string{
			"G A M E   O V E R",
			"",
			fmt.Sprintf("SCORE %d", v.Score),
			fmt.Sprintf("BEST  %d", v.Best),
			fmt.Sprintf("KILLS %d  LEVEL %d", v.Kills, v.Level),
			"",
			"ENTER  title",
		})
	}
	if v.StoryLine != "" {
		r.drawDialogue(v)
	}
}

func (r *Renderer) drawOptions(v *game.View) {
	lines := []string{"OPTIONS", ""}
	for i, row := range v.Options {
		marker := "  "
		if i == v.OptionCursor {
			marker = "> "
		}
		lines = append(lines, fmt.Sprintf("%s%-12s %6s", marker, row.Label, row.Value))
	}
	lines = append(lines, "", "arrows change  u undo  esc back")
	x, y := r.panel(v, lines)
	if v.OptionCursor >= 0 && v.OptionCursor < len(v.Options) {
		row := y + 2 + v.OptionCursor
		r.buf.Text(x, row, lines[2+v.OptionCursor], RgbHighlight, true)
	}
}

// drawDialogue boxes the current story line along the bottom edge
func (r *Renderer) drawDialogue(v *game.View) {
	w := min(v.Width-4, max(len(v.StoryLine), len(v.Speaker))+4)
	h := 4
	if v.Speaker == "" {
		h = 3
	}
	x := (v.Width - w) / 2
	y := v.Height - h - 1
	r.box(x, y, w, h)
	row := y + 1
	if v.Speaker != "" {
		r.buf.Text(x+2, row, v.Speaker, RgbHighlight, true)
		row++
	}
	r.buf.Text(x+2, row, truncate(v.StoryLine, w-4), RgbText, false)
}

// panel centers a boxed block of lines and returns the first text cell
func (r *Renderer) panel(v *game.View, lines []string) (int, int) {
	inner := 0
	for _, l := range lines {
		inner = max(inner, len([]rune(l)))
	}
	w := min(inner+4, v.Width)
	h := min(len(lines)+2, v.Height-parameter.HUDRows)
	x := (v.Width - w) / 2
	y := parameter.HUDRows + (v.Height-parameter.HUDRows-h)/2
	r.box(x, y, w, h)
	for i, l := range lines {
		if i+1 >= h-1 {
			break
		}
		fg := RgbText
		if i == 0 {
			fg = RgbHighlight
		}
		r.buf.Text(x+2, y+1+i, truncate(l, w-4), fg, i == 0)
	}
	return x + 2, y + 1
}

func (r *Renderer) box(x, y, w, h int) {
	if w < 2 || h < 2 {
		return
	}
	r.buf.Fill(x, y, w, h, ' ', RgbText, RgbPanel)
	for col := x + 1; col < x+w-1; col++ {
		r.buf.Set(col, y, '─', RgbBorder)
		r.buf.Set(col, y+h-1, '─', RgbBorder)
	}
	for row := y + 1; row < y+h-1; row++ {
		r.buf.Set(x, row, '│', RgbBorder)
		r.buf.Set(x+w-1, row, '│', RgbBorder)
	}
	r.buf.Set(x, y, '┌', RgbBorder)
	r.buf.Set(x+w-1, y, '┐', RgbBorder)
	r.buf.Set(x, y+h-1, '└', RgbBorder)
	r.buf.Set(x+w-1, y+h-1, '┘', RgbBorder)
}

func truncate(s string, n int) string {
	rs := []rune(s)
	if n <= 0 {
		return ""
	}
	if len(rs) <= n {
		return s
	}
	return string(rs[:n])
}
