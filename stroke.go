package maskedit

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
)

// strokeState tracks the stroke engine's state machine.
type strokeState int

const (
	stateIdle strokeState = iota
	stateDrawing
)

// smoothWindow is the moving-average window applied to the point
// sequence when smoothing is enabled. Strokes shorter than the window
// are left untouched.
const smoothWindow = 5

// StrokeEngine converts pointer input into stroke geometry.
//
// The engine is a small state machine: IDLE -> DRAWING -> IDLE.
// BeginStroke starts accumulating points, AddStrokePoint appends and
// interpolates, EndStroke finalizes an immutable BrushStroke.
//
// StrokeEngine is not safe for concurrent use; one engine serves one
// pointer device.
type StrokeEngine struct {
	config     BrushConfig
	frameIndex int
	state      strokeState
	points     []BrushPoint
}

// NewStrokeEngine creates an engine with the given brush configuration.
// The configuration is validated when a stroke is finalized.
func NewStrokeEngine(config BrushConfig) *StrokeEngine {
	return &StrokeEngine{config: config}
}

// SetBrushConfig replaces the brush configuration.
// Returns ErrInvalidState while a stroke is in progress so a stroke is
// always painted with a single configuration.
func (e *StrokeEngine) SetBrushConfig(config BrushConfig) error {
	if err := config.Validate(); err != nil {
		return err
	}
	if e.state == stateDrawing {
		return fmt.Errorf("%w: cannot change brush while a stroke is in progress", ErrInvalidState)
	}
	e.config = config
	Logger().Debug("brush config updated", "mode", config.Mode, "size", config.Size)
	return nil
}

// Config returns the current brush configuration.
func (e *StrokeEngine) Config() BrushConfig { return e.config }

// SetFrameIndex sets the frame that subsequently finalized strokes
// belong to.
func (e *StrokeEngine) SetFrameIndex(frameIndex int) {
	e.frameIndex = frameIndex
}

// Drawing reports whether a stroke is in progress.
func (e *StrokeEngine) Drawing() bool { return e.state == stateDrawing }

// BeginStroke starts a new stroke at (x, y).
// A no-op when a stroke is already in progress.
func (e *StrokeEngine) BeginStroke(x, y int, pressure float64) {
	if e.state == stateDrawing {
		Logger().Debug("BeginStroke ignored: stroke already in progress")
		return
	}
	e.state = stateDrawing
	e.points = e.points[:0]
	e.points = append(e.points, BrushPoint{
		X: x, Y: y,
		Pressure:  clamp01(pressure),
		Timestamp: time.Now(),
	})
	Logger().Debug("stroke started", "x", x, "y", y)
}

// AddStrokePoint appends a pointer sample to the stroke in progress.
// A no-op when no stroke is in progress.
//
// Samples closer to the previous point than Spacing x Size are dropped;
// when a sample lands farther away, intermediate points are
// interpolated so that consecutive recorded points are never more than
// Spacing x Size apart and the rasterized stroke has no gaps at low
// sampling rates. A Spacing of zero turns both off: every sample is
// recorded verbatim.
func (e *StrokeEngine) AddStrokePoint(x, y int, pressure float64) {
	if e.state != stateDrawing {
		return
	}
	pressure = clamp01(pressure)

	minDist := float64(e.config.Size) * e.config.Spacing
	if minDist <= 0 {
		e.points = append(e.points, BrushPoint{
			X: x, Y: y,
			Pressure:  pressure,
			Timestamp: time.Now(),
		})
		return
	}

	last := e.points[len(e.points)-1]
	dist := math.Hypot(float64(x-last.X), float64(y-last.Y))
	if dist < minDist {
		return
	}

	step := minDist
	if step < 1 {
		step = 1
	}
	if segments := int(math.Ceil(dist / step)); segments > 1 {
		p0 := Pt(float64(last.X), float64(last.Y))
		p1 := Pt(float64(x), float64(y))
		now := time.Now()
		for i := 1; i < segments; i++ {
			t := float64(i) / float64(segments)
			at := p0.Lerp(p1, t)
			e.points = append(e.points, BrushPoint{
				X:         int(math.Round(at.X)),
				Y:         int(math.Round(at.Y)),
				Pressure:  last.Pressure + (pressure-last.Pressure)*t,
				Timestamp: now,
			})
		}
	}

	e.points = append(e.points, BrushPoint{
		X: x, Y: y,
		Pressure:  pressure,
		Timestamp: time.Now(),
	})
}

// EndStroke finalizes the stroke in progress and returns it.
// When smoothing is enabled, a moving average is applied to the point
// coordinates first. Returns ErrInvalidState when no stroke is in
// progress.
func (e *StrokeEngine) EndStroke() (*BrushStroke, error) {
	if e.state != stateDrawing {
		return nil, fmt.Errorf("%w: EndStroke called with no stroke in progress", ErrInvalidState)
	}
	e.state = stateIdle

	points := e.points
	if e.config.Smoothing > 0 {
		points = smoothPoints(points, smoothWindow)
	}

	stroke, err := NewBrushStroke(e.frameIndex, e.config, points)
	e.points = nil
	if err != nil {
		return nil, err
	}
	Logger().Debug("stroke ended", "id", stroke.ID(), "points", len(stroke.Points()))
	return stroke, nil
}

// CancelStroke discards the stroke in progress, if any.
func (e *StrokeEngine) CancelStroke() {
	e.state = stateIdle
	e.points = nil
}

// smoothPoints applies a moving average over the point coordinates.
// The window is truncated at both ends so the stroke's endpoints stay
// anchored near the operator's input. Pressure and timestamps are kept.
func smoothPoints(points []BrushPoint, window int) []BrushPoint {
	if len(points) < window {
		return points
	}
	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i] = float64(p.X)
		ys[i] = float64(p.Y)
	}

	half := window / 2
	out := make([]BrushPoint, len(points))
	for i := range points {
		lo := max(0, i-half)
		hi := min(len(points), i+half+1)
		n := float64(hi - lo)
		out[i] = points[i]
		out[i].X = int(math.Round(floats.Sum(xs[lo:hi]) / n))
		out[i].Y = int(math.Round(floats.Sum(ys[lo:hi]) / n))
	}
	return out
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
