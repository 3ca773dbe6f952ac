package parameter

// Arena is measured in terminal cells; velocities are cells per second
const (
	DefaultArenaWidth  = 80
	DefaultArenaHeight = 24

	// HUDRows is reserved at the top of the screen for score/lives/boss bar
	HUDRows = 1

	// OffscreenMargin is how far past the arena an entity may drift before it is culled
	OffscreenMargin = 4.0
)

// Background parallax layers, far to near
const (
	StarLayerCount = 3
	StarsPerLayer  = 24
)

var (
	StarLayerSpeeds = [StarLayerCount]float64{2, 6, 14}
	StarLayerGlyphs = [StarLayerCount]rune{'.', '·', '*'}
)
