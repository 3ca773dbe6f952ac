package render

import (
	"image/color"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/void-striker/game"
)

// Base colors
var (
	RgbBackground = tcell.NewRGBColor(10, 10, 24)    // Deep space
	RgbText       = tcell.NewRGBColor(220, 220, 230) // Off-white
	RgbDim        = tcell.NewRGBColor(110, 110, 130) // Muted gray
	RgbPanel      = tcell.NewRGBColor(26, 27, 38)    // Overlay panel
	RgbBorder     = tcell.NewRGBColor(90, 110, 200)  // Panel border
	RgbHighlight  = tcell.NewRGBColor(255, 200, 60)  // Selected row, titles
)

// Star layers, far to near
var RgbStars = [...]tcell.Color{
	tcell.NewRGBColor(60, 60, 90),
	tcell.NewRGBColor(120, 120, 160),
	tcell.NewRGBColor(200, 200, 240),
}

// Entity colors
var (
	RgbPlayer         = tcell.NewRGBColor(80, 220, 255)  // Cyan ship
	RgbPlayerShield   = tcell.NewRGBColor(120, 255, 160) // Green shell
	RgbPlayerBullet   = tcell.NewRGBColor(255, 255, 120) // Pale yellow
	RgbLaserBullet    = tcell.NewRGBColor(255, 90, 255)  // Magenta beam
	RgbEnemyBullet    = tcell.NewRGBColor(255, 110, 60)  // Orange
	RgbPowerUp        = tcell.NewRGBColor(255, 255, 255) // White glyph
	RgbPowerUpBg      = tcell.NewRGBColor(40, 90, 40)    // Green tile
	RgbExplosion      = tcell.NewRGBColor(255, 170, 40)  // Fire
	RgbBossBar        = tcell.NewRGBColor(220, 40, 60)   // Boss health
	RgbBossBarEmpty   = tcell.NewRGBColor(60, 20, 30)    // Depleted health
	RgbLivesIndicator = tcell.NewRGBColor(255, 80, 80)   // Hearts
)

var enemyColors = map[game.EnemyKind]tcell.Color{
	game.EnemyScout:    tcell.NewRGBColor(255, 120, 120),
	game.EnemyFighter:  tcell.NewRGBColor(255, 200, 90),
	game.EnemyTank:     tcell.NewRGBColor(160, 160, 180),
	game.EnemyKamikaze: tcell.NewRGBColor(255, 60, 200),
}

// Boss tint per fire phase
var bossColors = [...]tcell.Color{
	tcell.NewRGBColor(200, 120, 255),
	tcell.NewRGBColor(255, 140, 60),
	tcell.NewRGBColor(255, 50, 50),
}

func enemyColor(k game.EnemyKind) tcell.Color {
	if c, ok := enemyColors[k]; ok {
		return c
	}
	return RgbText
}

func bossColor(phase int) tcell.Color {
	return bossColors[min(max(phase, 1), len(bossColors))-1]
}

// clamp converts float to uint8
func clamp(v float64) uint8 {
	if v >= 255.0 {
		return 255
	}
	if v <= 0.0 {
		return 0
	}
	return uint8(v)
}

// Lerp blends a towards b by t in [0,1]
func Lerp(a, b tcell.Color, t float64) tcell.Color {
	ar, ag, ab := a.RGB()
	br, bg, bb := b.RGB()
	mix := func(x, y int32) int32 {
		return int32(clamp(float64(x) + (float64(y)-float64(x))*t + 0.5))
	}
	return tcell.NewRGBColor(mix(ar, br), mix(ag, bg), mix(ab, bb))
}

// ToRGBA converts a tcell color for image output; unset colors map to the background
func ToRGBA(c tcell.Color) color.RGBA {
	r, g, b := c.RGB()
	if r < 0 {
		r, g, b = RgbBackground.RGB()
	}
	return color.RGBA{R: uint8(r), G: uint8(g), B: uint8(b), A: 255}
}
