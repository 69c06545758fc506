package segment

import (
	"reflect"
	"testing"
)

func TestRunLengthEncode(t *testing.T) {
	runs := RunLengthEncode([]bool{false, true, true, false, false, false, true})
	want := []Run{
		{ID: 1, Start: 0, End: 0, Flag: false},
		{ID: 2, Start: 1, End: 2, Flag: true},
		{ID: 3, Start: 3, End: 5, Flag: false},
		{ID: 4, Start: 6, End: 6, Flag: true},
	}
	if !reflect.DeepEqual(runs, want) {
		t.Fatalf("RunLengthEncode() = %+v, want %+v", runs, want)
	}
	if runs[2].Len() != 3 {
		t.Fatalf("Len() = %d, want 3", runs[2].Len())
	}
	if got := RunLengthEncode(nil); len(got) != 0 {
		t.Fatalf("expected no runs for empty input, got %d", len(got))
	}
}

func TestMergeAdjacent(t *testing.T) {
	values := []int{1, 2, 3, 7, 8, 20}
	groups := MergeAdjacent(len(values), func(prev, next int) bool {
		return values[next]-values[prev] <= 1
	})
	want := [][]int{{0, 1, 2}, {3, 4}, {5}}
	if !reflect.DeepEqual(groups, want) {
		t.Fatalf("MergeAdjacent() = %v, want %v", groups, want)
	}
	if got := MergeAdjacent(0, nil); len(got) != 0 {
		t.Fatalf("expected no groups, got %v", got)
	}
}

func TestMeanOptionalMissingSignal(t *testing.T) {
	points := make([]Point, 3)
	if got := meanOptional(points, heartRate); got != nil {
		t.Fatalf("expected nil mean for missing signal, got %v", *got)
	}
	points[1].HeartRateBPM = floatPtr(150)
	points[2].HeartRateBPM = floatPtr(160)
	if got := meanOptional(points, heartRate); got == nil || *got != 155 {
		t.Fatalf("expected mean 155, got %v", got)
	}
	if got := maxOptional(points, heartRate); got == nil || *got != 160 {
		t.Fatalf("expected max 160, got %v", got)
	}
}
