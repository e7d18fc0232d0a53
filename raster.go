package maskedit

import (
	"fmt"
	"math"
	"slices"
)

// acceptThreshold is the opacity-weighted coverage at which a pixel in
// the soft annulus is committed to the mask. The same cutoff governs
// which preview pixels read as "painted", keeping the committed raster
// consistent with what the operator saw.
const acceptThreshold = 0.5

// BrushCoverage returns the soft-edge coverage of a pixel at distance
// dist from a stamp center, for a brush of the given radius and
// hardness: full coverage up to radius*hardness, linear falloff to zero
// at radius. Preview rendering and the committed raster share this
// function so the two always agree.
func BrushCoverage(dist, radius, hardness float64) float64 {
	if radius <= 0 || dist > radius {
		return 0
	}
	hard := radius * hardness
	if dist <= hard {
		return 1
	}
	return 1 - (dist-hard)/(radius-hard)
}

// ApplyStroke rasterizes a stroke onto a mask and returns the edited
// copy. The input mask is never modified.
//
// Each recorded point is stamped with the stroke's brush: a circle with
// a hard core and an opacity-gated soft annulus, or a filled square.
// In the add modes painted pixels take the stroke's target or new ID;
// in erase mode they are set to background. The object ID set and
// metadata are recomputed afterwards, so erasing the last pixels of an
// object also drops its class and confidence entries.
//
// Only recorded points are stamped. Gap-free geometry is the
// StrokeEngine's job at capture time, which is what makes replaying a
// compressed stroke pixel-identical to replaying its originals.
func ApplyStroke(m *LabelMask, stroke *BrushStroke) (*LabelMask, error) {
	if stroke == nil {
		return nil, fmt.Errorf("%w: nil stroke", ErrInvalidArgument)
	}
	cfg := stroke.Config()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	value := cfg.paintValue()
	data := slices.Clone(m.data)

	for _, p := range stroke.Points() {
		r := stampRadius(cfg, p.Pressure)
		if r <= 0 {
			continue
		}
		switch cfg.Shape {
		case ShapeSquare:
			stampSquare(data, m.width, m.height, p.X, p.Y, r, value)
		default:
			// Custom shapes fall back to the circular stamp.
			stampCircle(data, m.width, m.height, p.X, p.Y, r, cfg.Hardness, cfg.Opacity, value)
		}
	}

	Logger().Debug("applied stroke",
		"frame", m.frameIndex, "stroke", stroke.ID(), "mode", cfg.Mode, "points", len(stroke.Points()))
	return remask(m.frameIndex, m.width, m.height, data, m.classes, m.confidences), nil
}

// stampRadius returns the effective stamp radius for one point.
func stampRadius(cfg BrushConfig, pressure float64) float64 {
	size := float64(cfg.Size)
	if cfg.PressureSensitivity {
		size *= pressure
	}
	return size / 2
}

// stampCircle paints one circular stamp centered on (cx, cy).
// Pixels within the hard core are set outright; pixels in the soft
// annulus are set only when their opacity-weighted coverage clears the
// accept threshold.
func stampCircle(data []uint8, width, height, cx, cy int, r, hardness, opacity float64, value uint8) {
	x0 := max(0, int(math.Floor(float64(cx)-r)))
	y0 := max(0, int(math.Floor(float64(cy)-r)))
	x1 := min(width-1, int(math.Ceil(float64(cx)+r)))
	y1 := min(height-1, int(math.Ceil(float64(cy)+r)))

	hard := r * hardness
	for y := y0; y <= y1; y++ {
		row := data[y*width : (y+1)*width]
		for x := x0; x <= x1; x++ {
			d := math.Hypot(float64(x-cx), float64(y-cy))
			if d > r {
				continue
			}
			if d <= hard || BrushCoverage(d, r, hardness)*opacity >= acceptThreshold {
				row[x] = value
			}
		}
	}
}

// stampSquare paints one filled square stamp of half-width r.
func stampSquare(data []uint8, width, height, cx, cy int, r float64, value uint8) {
	ri := int(r)
	x0 := max(0, cx-ri)
	y0 := max(0, cy-ri)
	x1 := min(width-1, cx+ri)
	y1 := min(height-1, cy+ri)

	for y := y0; y <= y1; y++ {
		row := data[y*width : (y+1)*width]
		for x := x0; x <= x1; x++ {
			row[x] = value
		}
	}
}
