package maskedit

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// BrushMode selects what a stroke writes into the mask.
type BrushMode string

// Brush modes.
const (
	// BrushAddNewID paints a fresh object ID onto the mask.
	BrushAddNewID BrushMode = "add_new_id"
	// BrushAddToExisting extends an existing object.
	BrushAddToExisting BrushMode = "add_to_existing"
	// BrushErase sets painted pixels back to background.
	BrushErase BrushMode = "erase"
)

// BrushShape selects the stamp geometry.
type BrushShape string

// Brush shapes.
const (
	ShapeCircle BrushShape = "circle"
	ShapeSquare BrushShape = "square"
	ShapeCustom BrushShape = "custom"
)

// BrushConfig is an immutable value describing brush behavior.
// Construct with DefaultBrushConfig and adjust fields, then Validate
// before use; NewBrushStroke and the StrokeEngine validate for you.
type BrushConfig struct {
	Mode     BrushMode
	Size     int     // stamp diameter in pixels, 1..500
	Hardness float64 // 0..1, fraction of the radius with full coverage
	Opacity  float64 // 0..1
	Shape    BrushShape

	TargetID int // required for BrushAddToExisting
	NewID    int // required for BrushAddNewID

	Spacing             float64 // 0..2, point interval as a fraction of Size
	Smoothing           float64 // 0..1
	PressureSensitivity bool    // scale stamp size by point pressure
}

// DefaultBrushConfig returns the default brush: a soft circular eraser.
// Erase is the default mode because it needs no target or new ID.
func DefaultBrushConfig() BrushConfig {
	return BrushConfig{
		Mode:                BrushErase,
		Size:                10,
		Hardness:            0.8,
		Opacity:             1.0,
		Shape:               ShapeCircle,
		Spacing:             0.1,
		Smoothing:           0.5,
		PressureSensitivity: true,
	}
}

// Validate checks field ranges and the mode/ID consistency rules.
func (c BrushConfig) Validate() error {
	switch c.Mode {
	case BrushAddNewID, BrushAddToExisting, BrushErase:
	default:
		return fmt.Errorf("%w: unknown brush mode %q", ErrInvalidArgument, c.Mode)
	}
	switch c.Shape {
	case ShapeCircle, ShapeSquare, ShapeCustom:
	default:
		return fmt.Errorf("%w: unknown brush shape %q", ErrInvalidArgument, c.Shape)
	}
	if c.Size < 1 || c.Size > 500 {
		return fmt.Errorf("%w: brush size must be in [1, 500], got %d", ErrInvalidArgument, c.Size)
	}
	if c.Hardness < 0 || c.Hardness > 1 {
		return fmt.Errorf("%w: hardness must be in [0, 1], got %v", ErrInvalidArgument, c.Hardness)
	}
	if c.Opacity < 0 || c.Opacity > 1 {
		return fmt.Errorf("%w: opacity must be in [0, 1], got %v", ErrInvalidArgument, c.Opacity)
	}
	if c.Spacing < 0 || c.Spacing > 2 {
		return fmt.Errorf("%w: spacing must be in [0, 2], got %v", ErrInvalidArgument, c.Spacing)
	}
	if c.Smoothing < 0 || c.Smoothing > 1 {
		return fmt.Errorf("%w: smoothing must be in [0, 1], got %v", ErrInvalidArgument, c.Smoothing)
	}
	// IDs must fit the uint8 grid; a value past 255 would truncate on
	// paint and an add stroke would silently write background.
	if c.Mode == BrushAddToExisting && (c.TargetID < 1 || c.TargetID > 255) {
		return fmt.Errorf("%w: target ID must be in [1, 255] for %s mode, got %d",
			ErrInvalidArgument, BrushAddToExisting, c.TargetID)
	}
	if c.Mode == BrushAddNewID && (c.NewID < 1 || c.NewID > 255) {
		return fmt.Errorf("%w: new ID must be in [1, 255] for %s mode, got %d",
			ErrInvalidArgument, BrushAddNewID, c.NewID)
	}
	return nil
}

// sameBrush reports whether two configs produce the same raster output
// per stamp. Spacing, smoothing and pressure sensitivity only shape the
// recorded point sequence, so they are excluded; history compression
// uses this to decide whether consecutive strokes may be merged.
func (c BrushConfig) sameBrush(o BrushConfig) bool {
	return c.Mode == o.Mode &&
		c.Size == o.Size &&
		c.Hardness == o.Hardness &&
		c.Opacity == o.Opacity &&
		c.Shape == o.Shape &&
		c.TargetID == o.TargetID &&
		c.NewID == o.NewID
}

// paintValue returns the grid value a stroke writes.
func (c BrushConfig) paintValue() uint8 {
	switch c.Mode {
	case BrushErase:
		return 0
	case BrushAddNewID:
		return uint8(c.NewID)
	default:
		return uint8(c.TargetID)
	}
}

// BrushPoint is a single pointer sample within a stroke.
type BrushPoint struct {
	X, Y      int
	Pressure  float64 // 0..1
	Timestamp time.Time
}

// BrushStroke is an immutable, ordered sequence of brush samples
// applied atomically to a mask. The bounding box is computed once at
// construction: the union of all points inflated by Size/2 + 2.
type BrushStroke struct {
	id         string
	frameIndex int
	config     BrushConfig
	points     []BrushPoint
	bounds     BBox
}

// NewBrushStroke constructs a validated stroke. The point slice is
// copied; a stroke needs at least one point.
func NewBrushStroke(frameIndex int, config BrushConfig, points []BrushPoint) (*BrushStroke, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("%w: stroke must have at least one point", ErrInvalidArgument)
	}
	for i, p := range points {
		if p.Pressure < 0 || p.Pressure > 1 {
			return nil, fmt.Errorf("%w: point %d pressure must be in [0, 1], got %v",
				ErrInvalidArgument, i, p.Pressure)
		}
	}

	pts := make([]BrushPoint, len(points))
	copy(pts, points)

	margin := config.Size/2 + 2
	b := BBox{X1: pts[0].X, Y1: pts[0].Y, X2: pts[0].X, Y2: pts[0].Y}
	for _, p := range pts[1:] {
		if p.X < b.X1 {
			b.X1 = p.X
		}
		if p.X > b.X2 {
			b.X2 = p.X
		}
		if p.Y < b.Y1 {
			b.Y1 = p.Y
		}
		if p.Y > b.Y2 {
			b.Y2 = p.Y
		}
	}
	b.X1 -= margin
	b.Y1 -= margin
	b.X2 += margin
	b.Y2 += margin

	return &BrushStroke{
		id:         uuid.NewString(),
		frameIndex: frameIndex,
		config:     config,
		points:     pts,
		bounds:     b,
	}, nil
}

// ID returns the stroke's unique identifier.
func (s *BrushStroke) ID() string { return s.id }

// FrameIndex returns the frame the stroke was painted on.
func (s *BrushStroke) FrameIndex() int { return s.frameIndex }

// Config returns the brush configuration the stroke was painted with.
func (s *BrushStroke) Config() BrushConfig { return s.config }

// Points returns the recorded samples in order.
// The slice is shared with the stroke and must not be modified.
func (s *BrushStroke) Points() []BrushPoint { return s.points }

// Bounds returns the cached bounding box as inclusive pixel
// coordinates, already inflated by the brush margin.
func (s *BrushStroke) Bounds() BBox { return s.bounds }

// AffectedArea returns the bounding box clipped to a width x height
// grid, the region a raster pass has to touch.
func (s *BrushStroke) AffectedArea(width, height int) BBox {
	return BBox{
		X1: max(0, s.bounds.X1),
		Y1: max(0, s.bounds.Y1),
		X2: min(width-1, s.bounds.X2),
		Y2: min(height-1, s.bounds.Y2),
	}
}
