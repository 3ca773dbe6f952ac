package render

import (
	"fmt"
	"image"
	"io"

	"github.com/fogleman/gg"

	"github.com/lixenwraith/void-striker/game"
)

// Pixel size of one terminal cell in snapshots; fits gg's default 7x13 face
const (
	SnapshotCellWidth  = 8
	SnapshotCellHeight = 14
)

// Snapshot paints a composed buffer as an image, one filled rectangle and glyph per cell
func Snapshot(buf *Buffer) image.Image {
	w, h := buf.Width(), buf.Height()
	dc := gg.NewContext(max(w, 1)*SnapshotCellWidth, max(h, 1)*SnapshotCellHeight)

	dc.SetColor(ToRGBA(RgbBackground))
	dc.Clear()

	cw, ch := float64(SnapshotCellWidth), float64(SnapshotCellHeight)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := buf.Get(x, y)
			px, py := float64(x)*cw, float64(y)*ch
			if c.Bg != RgbBackground {
				dc.SetColor(ToRGBA(c.Bg))
				dc.DrawRectangle(px, py, cw, ch)
				dc.Fill()
			}
			if c.Rune == ' ' || c.Rune == 0 {
				continue
			}
			dc.SetColor(ToRGBA(c.Fg))
			dc.DrawStringAnchored(string(c.Rune), px+cw/2, py+ch/2, 0.5, 0.5)
		}
	}
	return dc.Image()
}

// WriteSnapshot composes v with a fresh renderer and encodes it as PNG
func WriteSnapshot(w io.Writer, seed uint64, v *game.View) error {
	r := NewRenderer(seed)
	img := Snapshot(r.Compose(v))
	dc := gg.NewContextForImage(img)
	if err := dc.EncodePNG(w); err != nil {
		return fmt.Errorf("render: encode snapshot: %w", err)
	}
	return nil
}

// SaveSnapshot writes a PNG file
func SaveSnapshot(path string, seed uint64, v *game.View) error {
	r := NewRenderer(seed)
	if err := gg.SavePNG(path, Snapshot(r.Compose(v))); err != nil {
		return fmt.Errorf("render: save snapshot %s: %w", path, err)
	}
	return nil
}
