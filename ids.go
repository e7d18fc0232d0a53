package maskedit

import (
	"fmt"
	"slices"
)

// BBox is an inclusive pixel-coordinate bounding box.
type BBox struct {
	X1, Y1, X2, Y2 int
}

// IDStatistics summarizes one object within a mask.
type IDStatistics struct {
	ID         int
	PixelCount int
	BBox       BBox
	Centroid   Point
	AreaRatio  float64 // PixelCount / (width*height), always in [0, 1]

	Class         string
	Confidence    float64
	HasConfidence bool
}

// DeleteIDs returns a new mask with every pixel of the target IDs set
// to background. Metadata for the removed IDs is dropped in the same
// step. IDs not present in the mask are silently ignored; deleting an
// already-absent set is a no-op that still returns a fresh mask.
func DeleteIDs(m *LabelMask, targetIDs []int) *LabelMask {
	var drop [256]bool
	deleted := make([]int, 0, len(targetIDs))
	for _, id := range targetIDs {
		if id > 0 && id < 256 && m.HasID(id) {
			drop[id] = true
			deleted = append(deleted, id)
		}
	}

	data := slices.Clone(m.data)
	for i, v := range data {
		if drop[v] {
			data[i] = 0
		}
	}

	if len(deleted) > 0 {
		Logger().Info("deleted IDs from mask", "frame", m.frameIndex, "ids", deleted)
	}
	return remask(m.frameIndex, m.width, m.height, data, m.classes, m.confidences)
}

// DeleteRange deletes every object ID in the inclusive range
// [start, end]. Returns ErrInvalidArgument when start > end.
func DeleteRange(m *LabelMask, start, end int) (*LabelMask, error) {
	if start > end {
		return nil, fmt.Errorf("%w: invalid ID range: start (%d) > end (%d)", ErrInvalidArgument, start, end)
	}
	targets := make([]int, 0)
	for _, id := range m.objectIDs {
		if id >= start && id <= end {
			targets = append(targets, id)
		}
	}
	Logger().Debug("deleting ID range", "frame", m.frameIndex, "start", start, "end", end, "ids", targets)
	return DeleteIDs(m, targets), nil
}

// DeleteAll returns a mask of the same dimensions with an all-zero grid
// and empty metadata.
func DeleteAll(m *LabelMask) *LabelMask {
	Logger().Info("cleared all IDs from mask", "frame", m.frameIndex)
	return remask(m.frameIndex, m.width, m.height, make([]uint8, len(m.data)), nil, nil)
}

// MergeIDs relabels every pixel of the source IDs to targetID. The
// merge is a pure relabeling: the target's own class and confidence are
// preserved unchanged and the consumed sources' metadata is dropped.
// Source IDs absent from the mask are ignored. Returns ErrNotFound when
// targetID is in neither the mask nor the source list.
func MergeIDs(m *LabelMask, sourceIDs []int, targetID int) (*LabelMask, error) {
	if targetID <= 0 || targetID > 255 {
		return nil, fmt.Errorf("%w: target ID %d out of range", ErrInvalidArgument, targetID)
	}
	if !m.HasID(targetID) && !slices.Contains(sourceIDs, targetID) {
		return nil, fmt.Errorf("%w: merge target ID %d", ErrNotFound, targetID)
	}

	var relabel [256]bool
	merged := make([]int, 0, len(sourceIDs))
	for _, id := range sourceIDs {
		if id != targetID && id > 0 && id < 256 && m.HasID(id) {
			relabel[id] = true
			merged = append(merged, id)
		}
	}

	target := uint8(targetID)
	data := slices.Clone(m.data)
	for i, v := range data {
		if relabel[v] {
			data[i] = target
		}
	}

	if len(merged) > 0 {
		Logger().Info("merged IDs", "frame", m.frameIndex, "sources", merged, "target", targetID)
	}
	return remask(m.frameIndex, m.width, m.height, data, m.classes, m.confidences), nil
}

// RenumberIDs reassigns object IDs to the contiguous range 1..N,
// ordered by ascending old ID so the relative order is stable. Pixels
// and metadata are remapped together. A mask with no foreground pixels
// is returned as a plain copy.
func RenumberIDs(m *LabelMask) *LabelMask {
	if len(m.objectIDs) == 0 {
		return m.Clone()
	}

	var table [256]uint8
	classes := make(map[int]string, len(m.classes))
	confidences := make(map[int]float64, len(m.confidences))
	for i, oldID := range m.objectIDs {
		newID := uint8(i + 1)
		table[oldID] = newID
		if name, ok := m.classes[oldID]; ok {
			classes[int(newID)] = name
		}
		if c, ok := m.confidences[oldID]; ok {
			confidences[int(newID)] = c
		}
	}

	data := make([]uint8, len(m.data))
	for i, v := range m.data {
		data[i] = table[v]
	}

	Logger().Info("renumbered IDs", "frame", m.frameIndex, "count", len(m.objectIDs))
	return remask(m.frameIndex, m.width, m.height, data, classes, confidences)
}

// Statistics computes per-ID statistics in a single pass over the grid.
func Statistics(m *LabelMask) map[int]IDStatistics {
	type acc struct {
		count                  int
		minX, minY, maxX, maxY int
		sumX, sumY             float64
	}
	var accs [256]acc
	for i := range accs {
		accs[i].minX = m.width
		accs[i].minY = m.height
		accs[i].maxX = -1
		accs[i].maxY = -1
	}

	for y := 0; y < m.height; y++ {
		row := m.data[y*m.width : (y+1)*m.width]
		for x, v := range row {
			if v == 0 {
				continue
			}
			a := &accs[v]
			a.count++
			a.sumX += float64(x)
			a.sumY += float64(y)
			if x < a.minX {
				a.minX = x
			}
			if x > a.maxX {
				a.maxX = x
			}
			if y < a.minY {
				a.minY = y
			}
			if y > a.maxY {
				a.maxY = y
			}
		}
	}

	total := float64(m.width * m.height)
	stats := make(map[int]IDStatistics, len(m.objectIDs))
	for _, id := range m.objectIDs {
		a := accs[id]
		if a.count == 0 {
			continue
		}
		s := IDStatistics{
			ID:         id,
			PixelCount: a.count,
			BBox:       BBox{X1: a.minX, Y1: a.minY, X2: a.maxX, Y2: a.maxY},
			Centroid:   Pt(a.sumX/float64(a.count), a.sumY/float64(a.count)),
			AreaRatio:  float64(a.count) / total,
		}
		s.Class, _ = m.Class(id)
		s.Confidence, s.HasConfidence = m.Confidence(id)
		stats[id] = s
	}
	return stats
}
