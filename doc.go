// Package maskedit implements the mask editing engine for a video
// segmentation correction tool.
//
// # Overview
//
// maskedit operates on per-frame label masks: 2D uint8 grids where 0 is
// background and every positive value identifies one segmented object.
// The package provides the ID algebra used to correct AI-generated masks
// (delete, merge, renumber, confidence-threshold filtering), a
// merge-candidate suggestion heuristic, a brush engine that turns pointer
// input into rasterized strokes, and an undo/redo history with stroke
// compression. The cache subpackage adds a bounded LRU frame cache with
// asynchronous prefetch.
//
// # Quick Start
//
//	import maskedit "github.com/Kenshy18/Mask-editor-proto-sub001"
//
//	// Build a mask and merge object 2 into object 1.
//	mask, _ := maskedit.LabelMaskFromData(0, 64, 64, data, classes, confidences)
//	merged, err := maskedit.MergeIDs(mask, []int{2}, 1)
//
//	// Paint a correction stroke.
//	cfg := maskedit.DefaultBrushConfig()
//	cfg.Mode = maskedit.BrushErase
//	engine := maskedit.NewStrokeEngine(cfg)
//	engine.BeginStroke(10, 10, 1.0)
//	engine.AddStrokePoint(40, 40, 1.0)
//	stroke, _ := engine.EndStroke()
//	edited, _ := maskedit.ApplyStroke(merged, stroke)
//
// # Design
//
// Every transform is copy-on-write: functions take a *LabelMask and
// return a fresh one, never mutating the input. This keeps undo cheap
// and makes the transforms safe to call from any goroutine as long as
// callers do not share a mask for writing (they never need to).
//
// The package is organized into:
//   - Public API: LabelMask, ID transforms, Thresholds, StrokeEngine, History
//   - cache/: frame-indexed LRU cache with prefetch workers
//   - Internal: lru (recency list), pool (bounded worker pool)
package maskedit
