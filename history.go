package maskedit

// DefaultMaxHistory is the default capacity of each history stack.
const DefaultMaxHistory = 100

// HistoryInfo is a snapshot of the history's occupancy.
type HistoryInfo struct {
	UndoCount    int
	RedoCount    int
	MaxHistory   int
	TotalStrokes int
}

// History holds the brush undo/redo stacks.
//
// Both stacks are bounded: pushing past capacity discards the oldest
// entry. Adding a stroke clears the redo stack, the standard editor
// rule that a new action invalidates the redo chain.
//
// History owns the strokes it stores. It is not safe for concurrent
// use; the surrounding application serializes operator commands.
type History struct {
	maxHistory int
	undo       []*BrushStroke // chronological, newest last
	redo       []*BrushStroke
}

// NewHistory creates a History with the given capacity per stack.
// Non-positive capacities fall back to DefaultMaxHistory.
func NewHistory(maxHistory int) *History {
	if maxHistory <= 0 {
		maxHistory = DefaultMaxHistory
	}
	return &History{maxHistory: maxHistory}
}

// AddStroke records a newly applied stroke and clears the redo stack.
// The oldest stroke is discarded when the undo stack is at capacity.
func (h *History) AddStroke(s *BrushStroke) {
	if s == nil {
		return
	}
	h.undo = pushBounded(h.undo, s, h.maxHistory)
	h.redo = h.redo[:0]
	Logger().Debug("stroke added to history", "undo", len(h.undo))
}

// Undo moves the most recent stroke from the undo stack to the redo
// stack and returns it. ok is false when there is nothing to undo,
// which is a normal condition, not an error.
func (h *History) Undo() (s *BrushStroke, ok bool) {
	if len(h.undo) == 0 {
		return nil, false
	}
	s = h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = pushBounded(h.redo, s, h.maxHistory)
	return s, true
}

// Redo moves the most recent stroke from the redo stack back to the
// undo stack and returns it. ok is false when there is nothing to redo.
func (h *History) Redo() (s *BrushStroke, ok bool) {
	if len(h.redo) == 0 {
		return nil, false
	}
	s = h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = pushBounded(h.undo, s, h.maxHistory)
	return s, true
}

// CanUndo reports whether the undo stack is non-empty.
func (h *History) CanUndo() bool { return len(h.undo) > 0 }

// CanRedo reports whether the redo stack is non-empty.
func (h *History) CanRedo() bool { return len(h.redo) > 0 }

// Clear empties both stacks.
func (h *History) Clear() {
	h.undo = nil
	h.redo = nil
}

// MaxHistory returns the per-stack capacity.
func (h *History) MaxHistory() int { return h.maxHistory }

// SetMaxHistory resizes both stacks. When shrinking, the oldest entries
// are discarded first. Non-positive values fall back to
// DefaultMaxHistory.
func (h *History) SetMaxHistory(maxHistory int) {
	if maxHistory <= 0 {
		maxHistory = DefaultMaxHistory
	}
	h.maxHistory = maxHistory
	h.undo = trimOldest(h.undo, maxHistory)
	h.redo = trimOldest(h.redo, maxHistory)
	Logger().Debug("max history set", "max", maxHistory)
}

// Info returns a snapshot of the history's occupancy.
func (h *History) Info() HistoryInfo {
	return HistoryInfo{
		UndoCount:    len(h.undo),
		RedoCount:    len(h.redo),
		MaxHistory:   h.maxHistory,
		TotalStrokes: len(h.undo) + len(h.redo),
	}
}

// Strokes returns the undo stack in chronological order.
// The returned slice is a copy; the strokes themselves are shared.
func (h *History) Strokes() []*BrushStroke {
	out := make([]*BrushStroke, len(h.undo))
	copy(out, h.undo)
	return out
}

// Compress merges consecutive undo-stack strokes that were painted
// with the same brush settings into a single stroke whose point
// sequence is the concatenation of the run, keeping the first stroke's
// config and frame index. Returns the number of strokes eliminated.
//
// Replaying the merged stroke stamps exactly the points the originals
// stamped, in order, so the raster result is unchanged; only the undo
// granularity gets coarser.
func (h *History) Compress() int {
	if len(h.undo) < 2 {
		return 0
	}

	compressed := make([]*BrushStroke, 0, len(h.undo))
	eliminated := 0

	run := []*BrushStroke{h.undo[0]}
	flush := func() {
		merged := mergeRun(run)
		if merged != nil {
			compressed = append(compressed, merged)
			eliminated += len(run) - 1
		}
	}
	for _, s := range h.undo[1:] {
		if s.Config().sameBrush(run[0].Config()) && s.FrameIndex() == run[0].FrameIndex() {
			run = append(run, s)
			continue
		}
		flush()
		run = []*BrushStroke{s}
	}
	flush()

	h.undo = compressed
	if eliminated > 0 {
		Logger().Info("history compressed", "eliminated", eliminated, "remaining", len(h.undo))
	}
	return eliminated
}

// mergeRun concatenates a run of same-config strokes into one stroke.
// A run of one is returned as is.
func mergeRun(run []*BrushStroke) *BrushStroke {
	if len(run) == 0 {
		return nil
	}
	if len(run) == 1 {
		return run[0]
	}
	points := make([]BrushPoint, 0)
	for _, s := range run {
		points = append(points, s.Points()...)
	}
	merged, err := NewBrushStroke(run[0].FrameIndex(), run[0].Config(), points)
	if err != nil {
		// The originals were validated at construction, so a merge of
		// their points cannot fail; keep the run head if it somehow does.
		return run[0]
	}
	return merged
}

// pushBounded appends to a stack, discarding the oldest entry when the
// stack is at capacity.
func pushBounded(stack []*BrushStroke, s *BrushStroke, capacity int) []*BrushStroke {
	if len(stack) >= capacity {
		n := copy(stack, stack[len(stack)-capacity+1:])
		stack = stack[:n]
	}
	return append(stack, s)
}

// trimOldest discards entries from the front until the stack fits.
func trimOldest(stack []*BrushStroke, capacity int) []*BrushStroke {
	if len(stack) <= capacity {
		return stack
	}
	out := make([]*BrushStroke, capacity)
	copy(out, stack[len(stack)-capacity:])
	return out
}
