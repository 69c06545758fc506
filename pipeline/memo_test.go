package pipeline

import (
	"testing"

	"github.com/lucasjlepore/ride-segments/activity"
)

func TestMemoCachesPerRideAndParams(t *testing.T) {
	act, err := activity.Decode("ride.gpx", buildTestGPX(t))
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	report, err := Analyze(act, DefaultParams())
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}

	memo := NewMemo(2)
	p := DefaultParams()
	climbs, sprints := memo.Segment("ride-a", report.Points, p)
	if len(climbs) != len(report.Climbs) || len(sprints) != len(report.Sprints) {
		t.Fatalf("memo result differs from Analyze: %d/%d climbs, %d/%d sprints",
			len(climbs), len(report.Climbs), len(sprints), len(report.Sprints))
	}

	// A hit must not recompute: nil points would yield empty results.
	cached, _ := memo.Segment("ride-a", nil, p)
	if len(cached) != len(climbs) {
		t.Fatalf("expected a cache hit, got %d climbs", len(cached))
	}
	if memo.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", memo.Len())
	}

	strict := DefaultParams()
	strict.Climb.MinGradePct = 20
	if got, _ := memo.Segment("ride-a", report.Points, strict); len(got) != 0 {
		t.Fatalf("expected no climbs at 20%%, got %d", len(got))
	}
	memo.Segment("ride-b", report.Points, p)
	if memo.Len() != 2 {
		t.Fatalf("expected capacity to cap entries at 2, got %d", memo.Len())
	}

	// The default-parameter entry for ride-a was least recently used.
	if got, _ := memo.Segment("ride-a", nil, p); len(got) != 0 {
		t.Fatalf("expected the evicted entry to be recomputed, got %d climbs", len(got))
	}

	memo.Forget("ride-a")
	if memo.Len() != 1 {
		t.Fatalf("expected only ride-b to remain, got %d entries", memo.Len())
	}
}

func TestNewMemoDefaultCapacity(t *testing.T) {
	if m := NewMemo(0); m.capacity != DefaultMemoSize {
		t.Fatalf("capacity = %d, want %d", m.capacity, DefaultMemoSize)
	}
}
