package maskedit

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// Default threshold settings.
const (
	DefaultDetectionThreshold = 0.5
	DefaultMergeThreshold     = 0.8

	// DefaultMinPixelCount is the object size below which an ID is
	// considered noise by callers filtering small detections.
	DefaultMinPixelCount = 100

	// DefaultMaxMergeDistance is the centroid distance in pixels beyond
	// which a pair is never proposed as a merge candidate.
	DefaultMaxMergeDistance = 50.0

	// DefaultMergeOverlapRatio is the bounding-box overlap above which
	// a pair is considered strongly overlapping.
	DefaultMergeOverlapRatio = 0.7
)

// Similarity score weights. The score is a weighted sum of normalized
// inverse distance, bounding-box overlap and size ratio, so it is
// monotonic in each term: higher overlap or smaller distance never
// decreases the score. The exact weights are a tuning choice.
const (
	similarityDistanceWeight = 0.5
	similarityOverlapWeight  = 0.3
	similaritySizeWeight     = 0.2
)

// MergeCandidate proposes two object IDs for consolidation.
// ID1 < ID2 always holds.
type MergeCandidate struct {
	ID1, ID2     int
	Similarity   float64 // in [0, 1], higher is a stronger candidate
	Distance     float64 // centroid distance in pixels
	OverlapRatio float64 // bounding-box intersection over union
	SizeRatio    float64 // min(pixel count) / max(pixel count)
	Reason       string
}

// ThresholdChange is one entry in the threshold change journal.
type ThresholdChange struct {
	Timestamp time.Time
	Type      string // "detection" or "merge"
	OldValue  float64
	NewValue  float64
}

// Thresholds holds the editor's confidence-filtering configuration.
// It replaces what would otherwise be process-wide mutable state: the
// owning application creates one Thresholds and passes it to callers.
//
// Every change to the detection or merge threshold is appended to an
// internal journal. The journal is never pruned by this type; callers
// that need a cap must copy and truncate it themselves.
//
// Thresholds is not safe for concurrent mutation; the surrounding
// application serializes operator commands.
type Thresholds struct {
	detection float64
	merge     float64

	minPixelCount     int
	maxMergeDistance  float64
	mergeOverlapRatio float64

	history []ThresholdChange
}

// NewThresholds creates a Thresholds with default settings.
func NewThresholds() *Thresholds {
	return &Thresholds{
		detection:         DefaultDetectionThreshold,
		merge:             DefaultMergeThreshold,
		minPixelCount:     DefaultMinPixelCount,
		maxMergeDistance:  DefaultMaxMergeDistance,
		mergeOverlapRatio: DefaultMergeOverlapRatio,
	}
}

// DetectionThreshold returns the current detection threshold.
func (t *Thresholds) DetectionThreshold() float64 { return t.detection }

// MergeThreshold returns the current merge threshold.
func (t *Thresholds) MergeThreshold() float64 { return t.merge }

// MinPixelCount returns the minimum object size setting.
func (t *Thresholds) MinPixelCount() int { return t.minPixelCount }

// MaxMergeDistance returns the maximum centroid distance for merge
// candidates, in pixels.
func (t *Thresholds) MaxMergeDistance() float64 { return t.maxMergeDistance }

// SetDetectionThreshold updates the detection threshold and records the
// change in the journal. Returns ErrInvalidArgument outside [0, 1].
func (t *Thresholds) SetDetectionThreshold(v float64) error {
	if v < 0 || v > 1 {
		return fmt.Errorf("%w: detection threshold must be in [0, 1], got %v", ErrInvalidArgument, v)
	}
	t.record("detection", t.detection, v)
	t.detection = v
	return nil
}

// SetMergeThreshold updates the merge threshold and records the change
// in the journal. Returns ErrInvalidArgument outside [0, 1].
func (t *Thresholds) SetMergeThreshold(v float64) error {
	if v < 0 || v > 1 {
		return fmt.Errorf("%w: merge threshold must be in [0, 1], got %v", ErrInvalidArgument, v)
	}
	t.record("merge", t.merge, v)
	t.merge = v
	return nil
}

// SetMinPixelCount updates the minimum object size setting.
func (t *Thresholds) SetMinPixelCount(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: min pixel count must be non-negative, got %d", ErrInvalidArgument, n)
	}
	t.minPixelCount = n
	return nil
}

// SetMaxMergeDistance updates the candidate distance cutoff in pixels.
func (t *Thresholds) SetMaxMergeDistance(d float64) error {
	if d <= 0 {
		return fmt.Errorf("%w: max merge distance must be positive, got %v", ErrInvalidArgument, d)
	}
	t.maxMergeDistance = d
	return nil
}

func (t *Thresholds) record(kind string, old, now float64) {
	t.history = append(t.history, ThresholdChange{
		Timestamp: time.Now(),
		Type:      kind,
		OldValue:  old,
		NewValue:  now,
	})
	Logger().Info("threshold changed", "type", kind, "old", old, "new", now)
}

// History returns a copy of the threshold change journal, oldest first.
func (t *Thresholds) History() []ThresholdChange {
	return slices.Clone(t.history)
}

// ApplyDetectionThreshold removes every object whose confidence in the
// given table is below threshold. IDs absent from the table are treated
// as confidence 1.0 and are never removed. The mask's own stored
// confidences are not consulted.
func ApplyDetectionThreshold(m *LabelMask, confidences map[int]float64, threshold float64) *LabelMask {
	remove := make([]int, 0)
	for _, id := range m.ObjectIDs() {
		c, ok := confidences[id]
		if !ok {
			c = 1.0
		}
		if c < threshold {
			remove = append(remove, id)
		}
	}
	if len(remove) > 0 {
		Logger().Info("applying detection threshold",
			"frame", m.FrameIndex(), "threshold", threshold, "removed", remove)
	}
	return DeleteIDs(m, remove)
}

// SuggestMergeCandidates scores every unordered pair of distinct object
// IDs and returns the pairs whose similarity meets the threshold,
// sorted by descending score with ties broken by ascending (ID1, ID2).
//
// Pairs whose centroids are farther apart than MaxMergeDistance are
// skipped outright. The overlap term is the intersection-over-union of
// the two objects' bounding boxes; the pixel sets themselves are
// disjoint by construction in a single-label grid, so box overlap is
// the usable proximity signal.
func (t *Thresholds) SuggestMergeCandidates(m *LabelMask, threshold float64) []MergeCandidate {
	stats := Statistics(m)
	ids := m.ObjectIDs()

	var candidates []MergeCandidate
	for i, id1 := range ids {
		for _, id2 := range ids[i+1:] {
			s1, s2 := stats[id1], stats[id2]

			distance := s1.Centroid.Distance(s2.Centroid)
			if distance > t.maxMergeDistance {
				continue
			}

			overlap := bboxIoU(s1.BBox, s2.BBox)
			sizeRatio := 0.0
			if s1.PixelCount > 0 && s2.PixelCount > 0 {
				sizeRatio = float64(min(s1.PixelCount, s2.PixelCount)) /
					float64(max(s1.PixelCount, s2.PixelCount))
			}

			normDist := 1.0 - distance/t.maxMergeDistance
			score := similarityDistanceWeight*normDist +
				similarityOverlapWeight*overlap +
				similaritySizeWeight*sizeRatio

			if score < threshold {
				continue
			}
			candidates = append(candidates, MergeCandidate{
				ID1:          id1,
				ID2:          id2,
				Similarity:   score,
				Distance:     distance,
				OverlapRatio: overlap,
				SizeRatio:    sizeRatio,
				Reason:       mergeReason(distance, overlap, score),
			})
			Logger().Debug("merge candidate",
				"id1", id1, "id2", id2, "score", score, "distance", distance)
		}
	}

	slices.SortFunc(candidates, func(a, b MergeCandidate) int {
		switch {
		case a.Similarity > b.Similarity:
			return -1
		case a.Similarity < b.Similarity:
			return 1
		case a.ID1 != b.ID1:
			return a.ID1 - b.ID1
		default:
			return a.ID2 - b.ID2
		}
	})
	return candidates
}

// bboxIoU returns the intersection-over-union of two inclusive boxes.
func bboxIoU(a, b BBox) float64 {
	ix1, iy1 := max(a.X1, b.X1), max(a.Y1, b.Y1)
	ix2, iy2 := min(a.X2, b.X2), min(a.Y2, b.Y2)
	if ix2 < ix1 || iy2 < iy1 {
		return 0
	}
	inter := float64((ix2 - ix1 + 1) * (iy2 - iy1 + 1))
	areaA := float64((a.X2 - a.X1 + 1) * (a.Y2 - a.Y1 + 1))
	areaB := float64((b.X2 - b.X1 + 1) * (b.Y2 - b.Y1 + 1))
	union := areaA + areaB - inter
	if union <= 0 {
		return 0
	}
	return inter / union
}

// mergeReason classifies why a pair was proposed.
func mergeReason(distance, overlap, score float64) string {
	var reasons []string
	if distance < 20.0 {
		reasons = append(reasons, "close_proximity")
	}
	if overlap > 0.5 {
		reasons = append(reasons, "high_overlap")
	}
	if score > 0.8 {
		reasons = append(reasons, "high_similarity")
	}
	if len(reasons) == 0 {
		return "general_similarity"
	}
	return strings.Join(reasons, ", ")
}
