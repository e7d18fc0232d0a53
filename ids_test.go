package maskedit

import (
	"errors"
	"math"
	"slices"
	"testing"
)

// twoBlockMask is the 5x5 fixture used across the ID tests: object 1
// fills rows 1-2 x cols 1-2, object 2 fills rows 3-4 x cols 3-4.
func twoBlockMask(t *testing.T) *LabelMask {
	t.Helper()
	data := make([]uint8, 25)
	fillRect(data, 5, 1, 1, 2, 2, 1)
	fillRect(data, 5, 3, 3, 4, 4, 2)
	return buildMask(t, 0, 5, 5, data,
		map[int]string{1: "person", 2: "car"},
		map[int]float64{1: 0.9, 2: 0.6})
}

func TestDeleteIDs(t *testing.T) {
	m := twoBlockMask(t)
	out := DeleteIDs(m, []int{2})

	if got := out.ObjectIDs(); !slices.Equal(got, []int{1}) {
		t.Errorf("expected [1], got %v", got)
	}
	if out.At(3, 3) != 0 {
		t.Error("pixels of deleted ID should be background")
	}
	if _, ok := out.Class(2); ok {
		t.Error("metadata for deleted ID should be dropped")
	}
	if _, ok := out.Confidence(2); ok {
		t.Error("confidence for deleted ID should be dropped")
	}
	checkInvariant(t, out)

	// Input untouched.
	if !slices.Equal(m.ObjectIDs(), []int{1, 2}) {
		t.Error("DeleteIDs mutated its input")
	}
}

func TestDeleteIDsAbsentIsNoop(t *testing.T) {
	m := twoBlockMask(t)
	out := DeleteIDs(m, []int{42})

	if !m.Equal(out) {
		t.Error("deleting an absent ID should leave the mask unchanged")
	}
	checkInvariant(t, out)
}

func TestDeleteRange(t *testing.T) {
	data := make([]uint8, 9)
	data[0], data[1], data[2] = 1, 2, 3
	m := buildMask(t, 0, 3, 3, data, nil, nil)

	out, err := DeleteRange(m, 2, 2)
	if err != nil {
		t.Fatalf("DeleteRange: %v", err)
	}
	if got := out.ObjectIDs(); !slices.Equal(got, []int{1, 3}) {
		t.Errorf("expected [1 3], got %v", got)
	}
	checkInvariant(t, out)
}

func TestDeleteRangeInvalid(t *testing.T) {
	m := twoBlockMask(t)
	if _, err := DeleteRange(m, 3, 1); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for inverted range, got %v", err)
	}
}

func TestDeleteAll(t *testing.T) {
	m := twoBlockMask(t)
	out := DeleteAll(m)

	if out.Width() != 5 || out.Height() != 5 {
		t.Error("DeleteAll should preserve dimensions")
	}
	if out.ForegroundCount() != 0 {
		t.Error("DeleteAll should leave no foreground pixels")
	}
	if len(out.ObjectIDs()) != 0 || len(out.Classes()) != 0 || len(out.Confidences()) != 0 {
		t.Error("DeleteAll should empty IDs and metadata")
	}
	checkInvariant(t, out)
}

func TestMergeIDs(t *testing.T) {
	m := twoBlockMask(t)
	out, err := MergeIDs(m, []int{2}, 1)
	if err != nil {
		t.Fatalf("MergeIDs: %v", err)
	}

	if got := out.ObjectIDs(); !slices.Equal(got, []int{1}) {
		t.Errorf("expected [1], got %v", got)
	}
	for y := 3; y <= 4; y++ {
		for x := 3; x <= 4; x++ {
			if out.At(x, y) != 1 {
				t.Errorf("pixel (%d, %d) = %d, want 1", x, y, out.At(x, y))
			}
		}
	}

	// Pure relabeling: target metadata is preserved, source metadata dropped.
	if name, _ := out.Class(1); name != "person" {
		t.Errorf("target class changed to %q", name)
	}
	if c, _ := out.Confidence(1); c != 0.9 {
		t.Errorf("target confidence changed to %v", c)
	}
	if len(out.Classes()) != 1 || len(out.Confidences()) != 1 {
		t.Error("metadata should contain only the target ID")
	}
	checkInvariant(t, out)
}

func TestMergeIDsTargetNotFound(t *testing.T) {
	m := twoBlockMask(t)
	if _, err := MergeIDs(m, []int{2}, 9); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMergeIDsTargetOnlyInSources(t *testing.T) {
	// Target 3 is absent from the mask but listed as a source: legal,
	// and effectively relabels the other sources to 3.
	m := twoBlockMask(t)
	out, err := MergeIDs(m, []int{1, 2, 3}, 3)
	if err != nil {
		t.Fatalf("MergeIDs: %v", err)
	}
	if got := out.ObjectIDs(); !slices.Equal(got, []int{3}) {
		t.Errorf("expected [3], got %v", got)
	}
	checkInvariant(t, out)
}

func TestMergeAssociativity(t *testing.T) {
	// Merging {a,b} into c then {c,d} into c equals merging {a,b,d}
	// into c in one call.
	data := make([]uint8, 16)
	data[0], data[1], data[2], data[3], data[4] = 1, 2, 3, 4, 3
	base := buildMask(t, 0, 4, 4, data, nil, nil)

	step1, err := MergeIDs(base, []int{1, 2}, 3)
	if err != nil {
		t.Fatalf("step1: %v", err)
	}
	step2, err := MergeIDs(step1, []int{3, 4}, 3)
	if err != nil {
		t.Fatalf("step2: %v", err)
	}

	oneShot, err := MergeIDs(base, []int{1, 2, 4}, 3)
	if err != nil {
		t.Fatalf("one-shot: %v", err)
	}

	if !slices.Equal(step2.Data(), oneShot.Data()) {
		t.Error("stepwise and one-shot merges disagree on the final labeling")
	}
}

func TestRenumberIDs(t *testing.T) {
	data := make([]uint8, 9)
	data[0], data[4], data[8] = 5, 9, 2
	m := buildMask(t, 0, 3, 3, data,
		map[int]string{5: "a", 9: "b", 2: "c"},
		map[int]float64{5: 0.5, 9: 0.9, 2: 0.2})

	out := RenumberIDs(m)
	if got := out.ObjectIDs(); !slices.Equal(got, []int{1, 2, 3}) {
		t.Errorf("expected [1 2 3], got %v", got)
	}

	// Stable order: old 2 -> 1, old 5 -> 2, old 9 -> 3.
	if out.At(2, 2) != 1 || out.At(0, 0) != 2 || out.At(1, 1) != 3 {
		t.Errorf("unexpected remapping: %v", out.Data())
	}
	if name, _ := out.Class(2); name != "a" {
		t.Errorf("metadata not remapped with pixels: %v", out.Classes())
	}
	if c, _ := out.Confidence(3); c != 0.9 {
		t.Errorf("confidence not remapped: %v", out.Confidences())
	}
	checkInvariant(t, out)
}

func TestRenumberIdempotence(t *testing.T) {
	m := twoBlockMask(t)
	once := RenumberIDs(m)
	twice := RenumberIDs(once)

	if !once.Equal(twice) {
		t.Error("renumbering a renumbered mask should be the identity")
	}
}

func TestRenumberEmptyMask(t *testing.T) {
	m := buildMask(t, 0, 2, 2, make([]uint8, 4), nil, nil)
	out := RenumberIDs(m)
	if !m.Equal(out) {
		t.Error("renumbering an empty mask should be a no-op copy")
	}
}

func TestStatistics(t *testing.T) {
	m := twoBlockMask(t)
	stats := Statistics(m)

	if len(stats) != 2 {
		t.Fatalf("expected stats for 2 IDs, got %d", len(stats))
	}

	s1 := stats[1]
	if s1.PixelCount != 4 {
		t.Errorf("ID 1 pixel count = %d, want 4", s1.PixelCount)
	}
	if s1.BBox != (BBox{X1: 1, Y1: 1, X2: 2, Y2: 2}) {
		t.Errorf("ID 1 bbox = %+v", s1.BBox)
	}
	if s1.Centroid != Pt(1.5, 1.5) {
		t.Errorf("ID 1 centroid = %+v", s1.Centroid)
	}
	if want := 4.0 / 25.0; math.Abs(s1.AreaRatio-want) > 1e-12 {
		t.Errorf("ID 1 area ratio = %v, want %v", s1.AreaRatio, want)
	}
	if s1.Class != "person" || !s1.HasConfidence || s1.Confidence != 0.9 {
		t.Errorf("ID 1 metadata = %+v", s1)
	}

	s2 := stats[2]
	if s2.BBox != (BBox{X1: 3, Y1: 3, X2: 4, Y2: 4}) {
		t.Errorf("ID 2 bbox = %+v", s2.BBox)
	}
	if s2.Centroid != Pt(3.5, 3.5) {
		t.Errorf("ID 2 centroid = %+v", s2.Centroid)
	}
}
