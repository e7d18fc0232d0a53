package maskedit

import (
	"image"
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/draw"
)

// DefaultOverlayOpacity is the overlay alpha used when options leave it
// unset.
const DefaultOverlayOpacity = 0.7

// idHueStep spreads object hues around the color wheel using the
// golden-angle increment, so neighboring IDs get clearly distinct
// colors without a fixed palette running out.
const idHueStep = 137.0

// OverlayOptions controls how a mask is rendered as a color overlay.
// The zero value renders every object with the default opacity and the
// generated per-ID palette.
type OverlayOptions struct {
	// Opacity is the overlay alpha in [0, 1]. Zero means the default.
	Opacity float64

	// Visibility hides individual objects. IDs absent from the map are
	// visible.
	Visibility map[int]bool

	// Colors overrides the generated palette per ID.
	Colors map[int]color.NRGBA
}

// IDColor returns the stable display color for an object ID.
// The same ID always maps to the same color across frames.
func IDColor(id int) color.NRGBA {
	hue := math.Mod(float64(id)*idHueStep, 360)
	c := colorful.Hsv(hue, 0.65, 0.95)
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}
}

// RenderOverlay renders a mask as a translucent color overlay for
// compositing above the video frame. Background pixels are fully
// transparent; labeled pixels take their object's color with the
// overlay opacity.
func RenderOverlay(m *LabelMask, opts OverlayOptions) *image.NRGBA {
	opacity := opts.Opacity
	if opacity <= 0 {
		opacity = DefaultOverlayOpacity
	}
	alpha := uint8(math.Round(opacity * 255))

	var palette [256]color.NRGBA
	for _, id := range m.objectIDs {
		if opts.Visibility != nil {
			if visible, ok := opts.Visibility[id]; ok && !visible {
				continue
			}
		}
		c, ok := opts.Colors[id]
		if !ok {
			c = IDColor(id)
		}
		c.A = alpha
		palette[id] = c
	}

	img := image.NewNRGBA(image.Rect(0, 0, m.width, m.height))
	for y := 0; y < m.height; y++ {
		row := m.data[y*m.width : (y+1)*m.width]
		for x, v := range row {
			if v == 0 {
				continue
			}
			img.SetNRGBA(x, y, palette[v])
		}
	}
	return img
}

// RenderStrokePreview renders a stroke as an RGBA image for the
// interactive overlay, before the stroke is committed. The alpha
// channel carries the same opacity-weighted coverage the rasterizer
// gates on, so the preview and the committed result line up.
// Erase strokes preview in the same color; the caller composites them
// differently.
func RenderStrokePreview(stroke *BrushStroke, width, height int, tint color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	if stroke == nil {
		return img
	}
	cfg := stroke.Config()

	for _, p := range stroke.Points() {
		r := stampRadius(cfg, p.Pressure)
		if r <= 0 {
			continue
		}
		x0 := max(0, int(math.Floor(float64(p.X)-r)))
		y0 := max(0, int(math.Floor(float64(p.Y)-r)))
		x1 := min(width-1, int(math.Ceil(float64(p.X)+r)))
		y1 := min(height-1, int(math.Ceil(float64(p.Y)+r)))

		for y := y0; y <= y1; y++ {
			for x := x0; x <= x1; x++ {
				var cov float64
				if cfg.Shape == ShapeSquare {
					if math.Abs(float64(x-p.X)) <= r && math.Abs(float64(y-p.Y)) <= r {
						cov = 1
					}
				} else {
					d := math.Hypot(float64(x-p.X), float64(y-p.Y))
					cov = BrushCoverage(d, r, cfg.Hardness)
				}
				a := uint8(math.Round(cov * cfg.Opacity * 255))
				if a == 0 {
					continue
				}
				if prev := img.NRGBAAt(x, y); prev.A >= a {
					continue
				}
				img.SetNRGBA(x, y, color.NRGBA{R: tint.R, G: tint.G, B: tint.B, A: a})
			}
		}
	}
	return img
}

// ScaleOverlay resizes an overlay image to viewport dimensions with
// nearest-neighbor sampling. Label overlays must not be smoothed:
// interpolating between object colors would invent IDs at boundaries.
func ScaleOverlay(src image.Image, width, height int) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}
