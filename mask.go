package maskedit

import (
	"fmt"
	"slices"
)

// LabelMask represents the segmentation state of one video frame.
//
// The grid stores one uint8 per pixel in row-major order: value 0 is
// background, value k > 0 means the pixel belongs to object k. Per-ID
// metadata (class name, detection confidence) is keyed by object ID and
// is always a subset of the IDs actually present in the grid — every
// editing operation maintains this invariant by construction.
//
// LabelMask is treated as an immutable value: editing functions take a
// mask and return a new one (copy-on-write), which keeps undo cheap and
// makes reads safe from any goroutine.
type LabelMask struct {
	frameIndex int
	width      int
	height     int
	data       []uint8 // row-major, data[y*width+x]

	objectIDs   []int // ascending, exactly the distinct non-zero grid values
	classes     map[int]string
	confidences map[int]float64
}

// MaskRecord is the plain serialization form of a LabelMask, consumed
// by external persistence layers. A record produced by Record and fed
// back through LabelMaskFromRecord round-trips exactly.
type MaskRecord struct {
	FrameIndex  int             `json:"frame_index"`
	Width       int             `json:"width"`
	Height      int             `json:"height"`
	Data        []uint8         `json:"data"`
	ObjectIDs   []int           `json:"object_ids"`
	Classes     map[int]string  `json:"classes"`
	Confidences map[int]float64 `json:"confidences"`
}

// NewLabelMask creates an all-background mask with the given dimensions.
func NewLabelMask(frameIndex, width, height int) (*LabelMask, error) {
	if err := validateMaskShape(frameIndex, width, height); err != nil {
		return nil, err
	}
	return &LabelMask{
		frameIndex:  frameIndex,
		width:       width,
		height:      height,
		data:        make([]uint8, width*height),
		classes:     map[int]string{},
		confidences: map[int]float64{},
	}, nil
}

// LabelMaskFromData creates a mask from a row-major uint8 grid plus
// optional per-ID metadata. The grid is copied. Metadata referencing an
// ID that does not appear in the grid is rejected, as are confidences
// outside [0, 1].
func LabelMaskFromData(frameIndex, width, height int, data []uint8, classes map[int]string, confidences map[int]float64) (*LabelMask, error) {
	if err := validateMaskShape(frameIndex, width, height); err != nil {
		return nil, err
	}
	if len(data) != width*height {
		return nil, fmt.Errorf("%w: grid has %d values, want %d (%dx%d)",
			ErrInvalidArgument, len(data), width*height, width, height)
	}

	grid := make([]uint8, len(data))
	copy(grid, data)
	ids := collectIDs(grid)

	present := func(id int) bool {
		_, ok := slices.BinarySearch(ids, id)
		return ok
	}
	for id := range classes {
		if !present(id) {
			return nil, fmt.Errorf("%w: class entry for ID %d not in mask data", ErrInvalidArgument, id)
		}
	}
	for id, c := range confidences {
		if !present(id) {
			return nil, fmt.Errorf("%w: confidence entry for ID %d not in mask data", ErrInvalidArgument, id)
		}
		if c < 0 || c > 1 {
			return nil, fmt.Errorf("%w: confidence for ID %d must be in [0, 1], got %v", ErrInvalidArgument, id, c)
		}
	}

	return &LabelMask{
		frameIndex:  frameIndex,
		width:       width,
		height:      height,
		data:        grid,
		objectIDs:   ids,
		classes:     copyIntStringMap(classes),
		confidences: copyIntFloatMap(confidences),
	}, nil
}

// LabelMaskFromRecord reconstructs a mask from its serialization form.
func LabelMaskFromRecord(r MaskRecord) (*LabelMask, error) {
	return LabelMaskFromData(r.FrameIndex, r.Width, r.Height, r.Data, r.Classes, r.Confidences)
}

func validateMaskShape(frameIndex, width, height int) error {
	if frameIndex < 0 {
		return fmt.Errorf("%w: frame index must be non-negative, got %d", ErrInvalidArgument, frameIndex)
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: mask dimensions must be positive, got %dx%d", ErrInvalidArgument, width, height)
	}
	return nil
}

// remask assembles a mask around an already-edited grid. The object ID
// set is recomputed from the grid and metadata entries for IDs that no
// longer appear are dropped, so the result always satisfies the
// metadata-subset invariant regardless of what the caller passes.
func remask(frameIndex, width, height int, data []uint8, classes map[int]string, confidences map[int]float64) *LabelMask {
	ids := collectIDs(data)

	keep := [256]bool{}
	for _, id := range ids {
		keep[id] = true
	}
	cls := make(map[int]string, len(ids))
	for id, name := range classes {
		if id > 0 && id < 256 && keep[id] {
			cls[id] = name
		}
	}
	conf := make(map[int]float64, len(ids))
	for id, c := range confidences {
		if id > 0 && id < 256 && keep[id] {
			conf[id] = c
		}
	}

	return &LabelMask{
		frameIndex:  frameIndex,
		width:       width,
		height:      height,
		data:        data,
		objectIDs:   ids,
		classes:     cls,
		confidences: conf,
	}
}

// collectIDs returns the distinct non-zero values of a grid in
// ascending order. Single pass over the pixels.
func collectIDs(data []uint8) []int {
	var present [256]bool
	for _, v := range data {
		present[v] = true
	}
	ids := make([]int, 0, 16)
	for id := 1; id < 256; id++ {
		if present[id] {
			ids = append(ids, id)
		}
	}
	return ids
}

// FrameIndex returns the frame this mask belongs to.
func (m *LabelMask) FrameIndex() int { return m.frameIndex }

// Width returns the mask width in pixels.
func (m *LabelMask) Width() int { return m.width }

// Height returns the mask height in pixels.
func (m *LabelMask) Height() int { return m.height }

// At returns the object ID at (x, y).
// Returns 0 for coordinates outside the mask bounds.
func (m *LabelMask) At(x, y int) uint8 {
	if x < 0 || x >= m.width || y < 0 || y >= m.height {
		return 0
	}
	return m.data[y*m.width+x]
}

// Data returns the underlying grid in row-major order.
// The slice is shared with the mask and must not be modified; use Clone
// to obtain an editable copy.
func (m *LabelMask) Data() []uint8 { return m.data }

// ObjectIDs returns the object IDs present in the mask, ascending.
// The returned slice is a copy.
func (m *LabelMask) ObjectIDs() []int {
	return slices.Clone(m.objectIDs)
}

// HasID reports whether the given object ID appears in the mask.
func (m *LabelMask) HasID(id int) bool {
	_, ok := slices.BinarySearch(m.objectIDs, id)
	return ok
}

// Class returns the class name recorded for an object ID.
func (m *LabelMask) Class(id int) (string, bool) {
	name, ok := m.classes[id]
	return name, ok
}

// Confidence returns the detection confidence recorded for an object ID.
func (m *LabelMask) Confidence(id int) (float64, bool) {
	c, ok := m.confidences[id]
	return c, ok
}

// Classes returns a copy of the ID to class-name mapping.
func (m *LabelMask) Classes() map[int]string {
	return copyIntStringMap(m.classes)
}

// Confidences returns a copy of the ID to confidence mapping.
func (m *LabelMask) Confidences() map[int]float64 {
	return copyIntFloatMap(m.confidences)
}

// PixelCount returns the number of pixels labeled with the given ID.
// PixelCount(0) counts background pixels.
func (m *LabelMask) PixelCount(id int) int {
	if id < 0 || id > 255 {
		return 0
	}
	v := uint8(id)
	n := 0
	for _, p := range m.data {
		if p == v {
			n++
		}
	}
	return n
}

// ForegroundCount returns the number of non-background pixels.
func (m *LabelMask) ForegroundCount() int {
	n := 0
	for _, p := range m.data {
		if p != 0 {
			n++
		}
	}
	return n
}

// BinaryMask isolates one object as a 0/255 grid, the form consumed by
// downstream image tooling. Returns ErrNotFound for an absent ID.
func (m *LabelMask) BinaryMask(id int) ([]uint8, error) {
	if !m.HasID(id) {
		return nil, fmt.Errorf("%w: object ID %d", ErrNotFound, id)
	}
	v := uint8(id)
	out := make([]uint8, len(m.data))
	for i, p := range m.data {
		if p == v {
			out[i] = 255
		}
	}
	return out, nil
}

// NextFreeID returns the smallest positive ID not present in the mask,
// or 0 when all 255 IDs are in use.
func (m *LabelMask) NextFreeID() int {
	var present [256]bool
	for _, id := range m.objectIDs {
		present[id] = true
	}
	for id := 1; id < 256; id++ {
		if !present[id] {
			return id
		}
	}
	return 0
}

// Clone returns a deep copy of the mask.
func (m *LabelMask) Clone() *LabelMask {
	return &LabelMask{
		frameIndex:  m.frameIndex,
		width:       m.width,
		height:      m.height,
		data:        slices.Clone(m.data),
		objectIDs:   slices.Clone(m.objectIDs),
		classes:     copyIntStringMap(m.classes),
		confidences: copyIntFloatMap(m.confidences),
	}
}

// Record returns the plain serialization form of the mask.
// All fields are copies; mutating the record does not affect the mask.
func (m *LabelMask) Record() MaskRecord {
	return MaskRecord{
		FrameIndex:  m.frameIndex,
		Width:       m.width,
		Height:      m.height,
		Data:        slices.Clone(m.data),
		ObjectIDs:   slices.Clone(m.objectIDs),
		Classes:     copyIntStringMap(m.classes),
		Confidences: copyIntFloatMap(m.confidences),
	}
}

// Equal reports whether two masks have identical frame index, grid and
// metadata. Used by tests and by callers deduplicating cache writes.
func (m *LabelMask) Equal(other *LabelMask) bool {
	if m == nil || other == nil {
		return m == other
	}
	if m.frameIndex != other.frameIndex || m.width != other.width || m.height != other.height {
		return false
	}
	if !slices.Equal(m.data, other.data) {
		return false
	}
	if len(m.classes) != len(other.classes) || len(m.confidences) != len(other.confidences) {
		return false
	}
	for id, name := range m.classes {
		if o, ok := other.classes[id]; !ok || o != name {
			return false
		}
	}
	for id, c := range m.confidences {
		if o, ok := other.confidences[id]; !ok || o != c {
			return false
		}
	}
	return true
}

func copyIntStringMap(src map[int]string) map[int]string {
	dst := make(map[int]string, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func copyIntFloatMap(src map[int]float64) map[int]float64 {
	dst := make(map[int]float64, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
