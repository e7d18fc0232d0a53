package maskedit

// Rect is an axis-aligned detector bounding box in pixel coordinates.
type Rect struct {
	X, Y, W, H float64
}

// Detection is one raw detector output for a frame, as delivered by
// the external frame source.
type Detection struct {
	TrackID    int
	ClassID    int
	ClassName  string
	Confidence float64
	BBox       Rect
}

// FrameSource supplies raw masks and detections for frames. It is
// implemented by the excluded input layer (file reader, network,
// decoder) and consumed by the cache's loader callback.
type FrameSource interface {
	// GetMask returns the mask for a frame, or (nil, nil) when the
	// frame has no mask.
	GetMask(frameIndex int) (*LabelMask, error)

	// GetDetections returns the raw detection records for a frame.
	GetDetections(frameIndex int) ([]Detection, error)
}

// ConfidenceTable builds an ID-to-confidence mapping from detection
// records, keyed by track ID. When a track appears more than once the
// highest confidence wins. The result feeds ApplyDetectionThreshold.
func ConfidenceTable(detections []Detection) map[int]float64 {
	table := make(map[int]float64, len(detections))
	for _, d := range detections {
		if c, ok := table[d.TrackID]; !ok || d.Confidence > c {
			table[d.TrackID] = d.Confidence
		}
	}
	return table
}

// ClassTable builds an ID-to-class-name mapping from detection
// records, keyed by track ID. First record per track wins.
func ClassTable(detections []Detection) map[int]string {
	table := make(map[int]string, len(detections))
	for _, d := range detections {
		if _, ok := table[d.TrackID]; !ok {
			table[d.TrackID] = d.ClassName
		}
	}
	return table
}
