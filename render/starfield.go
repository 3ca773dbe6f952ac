package render

import (
	"math"
	"math/rand/v2"

	"github.com/lixenwraith/void-striker/parameter"
)

// Star is one background point; X is its position at time zero
type Star struct {
	X, Y  float64
	Layer int
}

// Starfield is a parallax background generated once from a seed
// Positions are a pure function of elapsed time so identical seeds draw identical frames
type Starfield struct {
	width  int
	height int
	stars  []Star
}

// NewStarfield scatters parameter.StarsPerLayer stars per layer below the HUD
func NewStarfield(seed uint64, width, height int) *Starfield {
	sf := &Starfield{width: width, height: height}
	rows := height - parameter.HUDRows
	if width <= 0 || rows <= 0 {
		return sf
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x5eed))
	sf.stars = make([]Star, 0, parameter.StarLayerCount*parameter.StarsPerLayer)
	for layer := 0; layer < parameter.StarLayerCount; layer++ {
		for i := 0; i < parameter.StarsPerLayer; i++ {
			sf.stars = append(sf.stars, Star{
				X:     rng.Float64() * float64(width),
				Y:     float64(parameter.HUDRows + rng.IntN(rows)),
				Layer: layer,
			})
		}
	}
	return sf
}

// Stars returns the generated stars
func (sf *Starfield) Stars() []Star { return sf.stars }

// Size reports the area the field was generated for
func (sf *Starfield) Size() (int, int) { return sf.width, sf.height }

// At returns the cell of star i after elapsed seconds of scrolling
func (sf *Starfield) At(i int, elapsed float64) (int, int) {
	s := sf.stars[i]
	w := float64(sf.width)
	x := math.Mod(s.X-parameter.StarLayerSpeeds[s.Layer]*elapsed, w)
	if x < 0 {
		x += w
	}
	if x >= w {
		x = 0
	}
	return int(x), int(s.Y)
}

// Draw paints every star into buf; nearer layers overwrite farther ones
func (sf *Starfield) Draw(buf *Buffer, elapsed float64) {
	for i, s := range sf.stars {
		x, y := sf.At(i, elapsed)
		buf.Set(x, y, parameter.StarLayerGlyphs[s.Layer], RgbStars[s.Layer])
	}
}
