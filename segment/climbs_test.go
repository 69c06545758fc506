package segment

import (
	"math"
	"reflect"
	"testing"
)

// twoClimbs has a 100 m climb, an 80 m flat run and a 120 m climb.
func twoClimbs() []Point {
	return gradedPoints(
		[]float64{0, 50, 100, 140, 180, 240, 300},
		[]float64{0, 5, 5, 0, 0, 6, 6},
	)
}

func TestFlagClimbsDropsShortRuns(t *testing.T) {
	points := gradedPoints(
		[]float64{0, 40, 80, 120, 170, 220, 270},
		[]float64{0, 5, 5, 0, 4, 4, 4},
	)
	flags := FlagClimbs(points, 3)
	wantRaw := []bool{false, true, true, false, true, true, true}
	if !reflect.DeepEqual(flags.Raw, wantRaw) {
		t.Fatalf("raw flags = %v, want %v", flags.Raw, wantRaw)
	}
	// The first climbing run covers only 80 m.
	wantFiltered := []bool{false, false, false, false, true, true, true}
	if !reflect.DeepEqual(flags.Filtered, wantFiltered) {
		t.Fatalf("filtered flags = %v, want %v", flags.Filtered, wantFiltered)
	}
	if len(flags.RawRuns) != 4 || len(flags.Runs) != 2 {
		t.Fatalf("expected 4 raw runs and 2 filtered runs, got %d and %d", len(flags.RawRuns), len(flags.Runs))
	}

	kept := FlagClimbsWithFloor(points, 3, 50)
	if !reflect.DeepEqual(kept.Filtered, wantRaw) {
		t.Fatalf("with a 50 m floor filtered flags = %v, want %v", kept.Filtered, wantRaw)
	}
}

func TestFlagClimbsStrictGradeThreshold(t *testing.T) {
	points := gradedPoints([]float64{0, 100, 200}, []float64{0, 3, 3})
	flags := FlagClimbsWithFloor(points, 3, 0)
	for i, f := range flags.Raw {
		if f {
			t.Fatalf("sample %d at exactly the minimum grade must not be flagged", i)
		}
	}
}

func TestMergeClimbsAcrossShortGap(t *testing.T) {
	points := twoClimbs()
	groups := MergeClimbs(points, FlagClimbs(points, 3), 200)
	if len(groups.Intervals) != 1 {
		t.Fatalf("expected one merged climb, got %d", len(groups.Intervals))
	}
	iv := groups.Intervals[0]
	if iv.Start != 1 || iv.End != 6 {
		t.Fatalf("merged climb spans [%d, %d], want [1, 6]", iv.Start, iv.End)
	}
	if iv.StartDistanceM != 50 || iv.EndDistanceM != 300 {
		t.Fatalf("merged climb distances [%.0f, %.0f], want [50, 300]", iv.StartDistanceM, iv.EndDistanceM)
	}
	wantIDs := map[int]int{1: 0, 2: 1, 3: 1, 4: 1}
	if !reflect.DeepEqual(groups.MergedID, wantIDs) {
		t.Fatalf("merged ids = %v, want %v", groups.MergedID, wantIDs)
	}
	if got := groups.RunTable[2].DistanceM; got != 80 {
		t.Fatalf("flat gap distance = %.1f, want 80", got)
	}

	summaries := SummarizeClimbs(points, groups.Intervals, 0)
	if len(summaries) != 1 {
		t.Fatalf("expected one climb summary, got %d", len(summaries))
	}
	if summaries[0].DistanceCoveredM != 300 {
		t.Fatalf("distance covered = %.1f, want 300", summaries[0].DistanceCoveredM)
	}
}

func TestMergeClimbsGapTooLong(t *testing.T) {
	points := twoClimbs()
	groups := MergeClimbs(points, FlagClimbs(points, 3), 50)
	if len(groups.Intervals) != 2 {
		t.Fatalf("expected two climbs, got %d", len(groups.Intervals))
	}
	if groups.Intervals[0].End != 2 || groups.Intervals[1].Start != 5 {
		t.Fatalf("unexpected climbs %+v", groups.Intervals)
	}
	summaries := SummarizeClimbs(points, groups.Intervals, 100)
	if len(summaries) != 2 {
		t.Fatalf("expected two summaries, got %d", len(summaries))
	}
	if summaries[0].StartTime.After(summaries[1].StartTime) {
		t.Fatal("summaries must be chronological")
	}
}

func TestMergeClimbsGapEqualToThresholdDoesNotMerge(t *testing.T) {
	points := twoClimbs()
	groups := MergeClimbs(points, FlagClimbs(points, 3), 80)
	if len(groups.Intervals) != 2 {
		t.Fatalf("a gap equal to the threshold must not merge, got %d climbs", len(groups.Intervals))
	}
}

func TestMergeClimbsRoundTrip(t *testing.T) {
	points := gradedPoints(
		[]float64{0, 100, 200, 260, 360, 460, 860, 960, 1060, 1120, 1220},
		[]float64{0, 5, 5, 0, 6, 6, 0, 7, 7, 0, 4},
	)
	groups := MergeClimbs(points, FlagClimbs(points, 3), 100)
	for i := 1; i < len(groups.Intervals); i++ {
		prev, next := groups.Intervals[i-1], groups.Intervals[i]
		gap := sumDeltaDistance(points[prev.End+1 : next.Start])
		if gap < 100 {
			t.Fatalf("climbs %d and %d are %.0f m apart and should have merged", prev.ID, next.ID, gap)
		}
	}

	// Re-merging the merged classification changes nothing.
	flags := make([]bool, len(points))
	for _, iv := range groups.Intervals {
		for i := iv.Start; i <= iv.End; i++ {
			flags[i] = true
		}
	}
	again := MergeClimbs(points, ClimbFlags{Filtered: flags, Runs: RunLengthEncode(flags)}, 100)
	if len(again.Intervals) != len(groups.Intervals) {
		t.Fatalf("re-merge produced %d climbs, want %d", len(again.Intervals), len(groups.Intervals))
	}
	for i := range again.Intervals {
		if again.Intervals[i].Start != groups.Intervals[i].Start || again.Intervals[i].End != groups.Intervals[i].End {
			t.Fatalf("re-merge changed climb %d", i)
		}
	}
}

func TestSummarizeClimbsMinimumDistance(t *testing.T) {
	points := gradedPoints([]float64{0, 40, 80}, []float64{0, 4, 4})
	iv := newInterval(points, 0, 0, 2)
	if got := SummarizeClimbs(points, []Interval{iv}, 100); len(got) != 0 {
		t.Fatalf("an 80 m climb must be discarded, got %d", len(got))
	}
	if got := DetectClimbs(points, ClimbParams{MinGradePct: 3, MaxGapM: 200, MinClimbDistanceM: 100}); len(got) != 0 {
		t.Fatalf("DetectClimbs kept an 80 m climb")
	}
	if got := SummarizeClimbs(points, []Interval{iv}, 80); len(got) != 1 {
		t.Fatalf("a climb exactly at the minimum distance must be kept, got %d", len(got))
	}
}

func TestSummarizeClimbsStatistics(t *testing.T) {
	points := gradedPoints(
		[]float64{0, 100, 200, 300, 400, 500},
		[]float64{0, 8, 8, 8, 8, 8},
	)
	for i := range points {
		points[i].CadenceRPM = floatPtr(80 + float64(i))
	}
	summaries := DetectClimbs(points, DefaultClimbParams())
	if len(summaries) != 1 {
		t.Fatalf("expected one climb, got %d", len(summaries))
	}
	s := summaries[0]
	if s.StartIndex != 1 || s.EndIndex != 5 {
		t.Fatalf("climb spans [%d, %d], want [1, 5]", s.StartIndex, s.EndIndex)
	}
	if s.DistanceCoveredM != 500 {
		t.Fatalf("distance covered = %.1f, want 500", s.DistanceCoveredM)
	}
	// Gain is measured from the first climbing sample, which already sits 8 m up.
	if math.Abs(s.ElevationGainM-32) > 1e-9 {
		t.Fatalf("elevation gain = %.2f, want 32", s.ElevationGainM)
	}
	if math.Abs(s.AvgGradePct-6.4) > 1e-9 {
		t.Fatalf("avg grade = %.2f, want 6.4", s.AvgGradePct)
	}
	if s.DurationS != 4 {
		t.Fatalf("duration = %.1f, want 4", s.DurationS)
	}
	if math.Abs(s.AvgSpeedKmh-450) > 1e-9 {
		t.Fatalf("avg speed = %.1f, want 450", s.AvgSpeedKmh)
	}
	if s.StartDistanceKm != 0.1 {
		t.Fatalf("start distance = %.3f km, want 0.1", s.StartDistanceKm)
	}
	if s.AvgHeartRateBPM != nil || s.AvgPowerW != nil {
		t.Fatal("missing heart rate and power must be reported as not available")
	}
	if s.AvgCadenceRPM == nil || *s.AvgCadenceRPM != 83 {
		t.Fatalf("avg cadence = %v, want 83", s.AvgCadenceRPM)
	}
}

func TestSummarizeClimbsNetDescentReportsZeroGain(t *testing.T) {
	points := gradedPoints([]float64{0, 200, 400, 600}, []float64{0, 6, 6, 6})
	points[3].AltitudeM = points[1].AltitudeM - 5
	iv := newInterval(points, 0, 1, 3)
	got := SummarizeClimbs(points, []Interval{iv}, 0)
	if len(got) != 1 {
		t.Fatalf("expected one climb, got %d", len(got))
	}
	if got[0].ElevationGainM != 0 || got[0].AvgGradePct != 0 {
		t.Fatalf("net-descending climb reported gain %.1f and grade %.1f", got[0].ElevationGainM, got[0].AvgGradePct)
	}
}

func TestSummarizeClimbsDropsZeroDuration(t *testing.T) {
	points := gradedPoints([]float64{0, 200}, []float64{0, 6})
	iv := newInterval(points, 0, 1, 1)
	if got := SummarizeClimbs(points, []Interval{iv}, 0); len(got) != 0 {
		t.Fatalf("single-sample climb has no duration and must be dropped, got %d", len(got))
	}
}

func TestDetectClimbsEmptyAndSingle(t *testing.T) {
	if got := DetectClimbs(nil, DefaultClimbParams()); len(got) != 0 {
		t.Fatalf("expected no climbs for empty input, got %d", len(got))
	}
	single := gradedPoints([]float64{0}, []float64{12})
	if got := DetectClimbs(single, DefaultClimbParams()); len(got) != 0 {
		t.Fatalf("expected no climbs for a single sample, got %d", len(got))
	}
}

func TestDetectClimbsIdempotent(t *testing.T) {
	points := twoClimbs()
	p := ClimbParams{MinGradePct: 3, MaxGapM: 200, MinClimbDistanceM: 100, NoiseFloorM: 100}
	first := DetectClimbs(points, p)
	second := DetectClimbs(points, p)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("repeated detection differs: %+v vs %+v", first, second)
	}
}
