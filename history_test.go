package maskedit

import "testing"

// historyStroke builds a minimal one-point stroke for history tests.
func historyStroke(t *testing.T, frameIndex int, cfg BrushConfig, x int) *BrushStroke {
	t.Helper()
	s, err := NewBrushStroke(frameIndex, cfg, []BrushPoint{{X: x, Y: 0, Pressure: 1}})
	if err != nil {
		t.Fatalf("NewBrushStroke: %v", err)
	}
	return s
}

func TestHistoryUndoRedo(t *testing.T) {
	cfg := DefaultBrushConfig()
	a := historyStroke(t, 0, cfg, 1)
	b := historyStroke(t, 0, cfg, 2)

	h := NewHistory(10)
	if h.CanUndo() || h.CanRedo() {
		t.Fatal("fresh history should have nothing to undo or redo")
	}
	if _, ok := h.Undo(); ok {
		t.Error("Undo on an empty history must report ok=false")
	}

	h.AddStroke(a)
	h.AddStroke(b)

	s, ok := h.Undo()
	if !ok || s.ID() != b.ID() {
		t.Fatalf("Undo should return the newest stroke, got %v ok=%v", s, ok)
	}
	if !h.CanRedo() {
		t.Error("undone stroke should be redoable")
	}

	s, ok = h.Redo()
	if !ok || s.ID() != b.ID() {
		t.Fatalf("Redo should return the undone stroke, got %v ok=%v", s, ok)
	}
	if h.CanRedo() {
		t.Error("redo stack should be empty after redoing everything")
	}
	if got := h.Info().UndoCount; got != 2 {
		t.Errorf("UndoCount = %d, want 2", got)
	}
}

func TestHistoryAddClearsRedo(t *testing.T) {
	cfg := DefaultBrushConfig()
	h := NewHistory(10)

	h.AddStroke(historyStroke(t, 0, cfg, 1))
	h.AddStroke(historyStroke(t, 0, cfg, 2))
	if _, ok := h.Undo(); !ok {
		t.Fatal("Undo failed")
	}

	h.AddStroke(historyStroke(t, 0, cfg, 3))
	if h.CanRedo() {
		t.Error("adding a stroke must clear the redo stack")
	}
}

func TestHistoryCapacity(t *testing.T) {
	cfg := DefaultBrushConfig()
	h := NewHistory(3)

	strokes := make([]*BrushStroke, 5)
	for i := range strokes {
		strokes[i] = historyStroke(t, 0, cfg, i)
		h.AddStroke(strokes[i])
	}

	if got := h.Info().UndoCount; got != 3 {
		t.Fatalf("UndoCount = %d, want 3", got)
	}
	// The three newest survive, oldest first.
	kept := h.Strokes()
	for i, want := range strokes[2:] {
		if kept[i].ID() != want.ID() {
			t.Errorf("kept[%d] = %s, want %s", i, kept[i].ID(), want.ID())
		}
	}
}

func TestHistorySetMaxHistoryShrinks(t *testing.T) {
	cfg := DefaultBrushConfig()
	h := NewHistory(10)
	for i := 0; i < 6; i++ {
		h.AddStroke(historyStroke(t, 0, cfg, i))
	}

	h.SetMaxHistory(2)
	if got := h.Info().UndoCount; got != 2 {
		t.Fatalf("UndoCount after shrink = %d, want 2", got)
	}
	if s, _ := h.Undo(); s.Points()[0].X != 5 {
		t.Error("shrinking should keep the newest strokes")
	}

	h.SetMaxHistory(0)
	if h.MaxHistory() != DefaultMaxHistory {
		t.Errorf("non-positive capacity should fall back to %d, got %d",
			DefaultMaxHistory, h.MaxHistory())
	}
}

func TestHistoryClear(t *testing.T) {
	cfg := DefaultBrushConfig()
	h := NewHistory(10)
	h.AddStroke(historyStroke(t, 0, cfg, 1))
	h.AddStroke(historyStroke(t, 0, cfg, 2))
	h.Undo()

	h.Clear()
	info := h.Info()
	if info.UndoCount != 0 || info.RedoCount != 0 || info.TotalStrokes != 0 {
		t.Errorf("Clear left entries behind: %+v", info)
	}
}

func TestHistoryCompress(t *testing.T) {
	cfgA := DefaultBrushConfig()
	cfgA.Mode = BrushAddNewID
	cfgA.NewID = 1

	cfgB := cfgA
	cfgB.Size = 30

	h := NewHistory(20)
	h.AddStroke(historyStroke(t, 0, cfgA, 1))
	h.AddStroke(historyStroke(t, 0, cfgA, 2))
	h.AddStroke(historyStroke(t, 0, cfgA, 3))
	h.AddStroke(historyStroke(t, 0, cfgB, 4)) // different size breaks the run
	h.AddStroke(historyStroke(t, 0, cfgB, 5))

	if n := h.Compress(); n != 3 {
		t.Fatalf("Compress eliminated %d strokes, want 3", n)
	}
	kept := h.Strokes()
	if len(kept) != 2 {
		t.Fatalf("expected 2 strokes after compression, got %d", len(kept))
	}
	if got := len(kept[0].Points()); got != 3 {
		t.Errorf("first merged stroke has %d points, want 3", got)
	}
	if kept[0].Points()[2].X != 3 {
		t.Error("merged points must keep their original order")
	}
	if got := len(kept[1].Points()); got != 2 {
		t.Errorf("second merged stroke has %d points, want 2", got)
	}
}

func TestHistoryCompressRespectsFrameIndex(t *testing.T) {
	cfg := DefaultBrushConfig()
	h := NewHistory(10)
	h.AddStroke(historyStroke(t, 0, cfg, 1))
	h.AddStroke(historyStroke(t, 1, cfg, 2)) // same brush, different frame

	if n := h.Compress(); n != 0 {
		t.Errorf("strokes on different frames must not merge, eliminated %d", n)
	}
}

func TestHistoryCompressIgnoresAuxiliarySettings(t *testing.T) {
	cfgA := DefaultBrushConfig()
	cfgB := cfgA
	cfgB.Spacing = 0.5
	cfgB.Smoothing = 0

	h := NewHistory(10)
	h.AddStroke(historyStroke(t, 0, cfgA, 1))
	h.AddStroke(historyStroke(t, 0, cfgB, 2))

	// Spacing and smoothing shape capture, not rasterization, so the
	// strokes still merge.
	if n := h.Compress(); n != 1 {
		t.Errorf("capture-only settings must not break a run, eliminated %d", n)
	}
}
