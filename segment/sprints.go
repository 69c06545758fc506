package segment

import "time"

const (
	firstSampleDeltaS = 1.0
	minDeltaS         = 0.1
)

// SprintCandidate is a sprinting run that passed the duration and grade
// filters, before gap merging.
type SprintCandidate struct {
	Start          int       `json:"start_index"`
	End            int       `json:"end_index"`
	StartTime      time.Time `json:"start_time"`
	EndTime        time.Time `json:"end_time"`
	StartDistanceM float64   `json:"start_distance_m"`
	EndDistanceM   float64   `json:"end_distance_m"`
	DurationS      float64   `json:"duration_s"`
	AvgGradePct    float64   `json:"avg_grade_pct"`
}

// deltaTime returns the elapsed seconds of sample i. The first sample counts
// as one second and every delta is at least 0.1 s.
func deltaTime(points []Point, i int) float64 {
	if i == 0 {
		return firstSampleDeltaS
	}
	return max(minDeltaS, points[i].Timestamp.Sub(points[i-1].Timestamp).Seconds())
}

// runDuration is the elapsed time from first to last sample plus the last
// sample's own delta, so a single-sample run lasts its own delta.
func runDuration(points []Point, start, end int) float64 {
	return points[end].Timestamp.Sub(points[start].Timestamp).Seconds() + deltaTime(points, end)
}

// FindSprintCandidates flags samples at or above the peak speed threshold and
// keeps the sprinting runs that last at least p.MinDurationS with an average
// grade inside [p.MinGradePct, p.MaxGradePct].
func FindSprintCandidates(points []Point, p SprintParams) []SprintCandidate {
	threshold := p.MinPeakSpeedKmh / msToKmh
	flags := make([]bool, len(points))
	for i, pt := range points {
		flags[i] = pt.SpeedMPS >= threshold
	}

	var out []SprintCandidate
	for _, r := range RunLengthEncode(flags) {
		if !r.Flag {
			continue
		}
		duration := runDuration(points, r.Start, r.End)
		if duration < p.MinDurationS {
			continue
		}
		grade := meanOf(points[r.Start:r.End+1], func(pt Point) float64 { return pt.GradePct })
		if grade < p.MinGradePct || grade > p.MaxGradePct {
			continue
		}
		out = append(out, SprintCandidate{
			Start:          r.Start,
			End:            r.End,
			StartTime:      points[r.Start].Timestamp,
			EndTime:        points[r.End].Timestamp,
			StartDistanceM: points[r.Start].DistanceM,
			EndDistanceM:   points[r.End].DistanceM,
			DurationS:      duration,
			AvgGradePct:    grade,
		})
	}
	return out
}

// MergeSprintCandidates fuses consecutive candidates whose distance gap is in
// [0, maxGapM]. The merged interval includes the slower samples in between.
func MergeSprintCandidates(points []Point, candidates []SprintCandidate, maxGapM float64) []Interval {
	chains := MergeAdjacent(len(candidates), func(prev, next int) bool {
		gap := candidates[next].StartDistanceM - candidates[prev].EndDistanceM
		return gap >= 0 && gap <= maxGapM
	})
	out := make([]Interval, 0, len(chains))
	for id, c := range chains {
		first, last := candidates[c[0]], candidates[c[len(c)-1]]
		out = append(out, newInterval(points, id, first.Start, last.End))
	}
	return out
}

// RewindStart returns the index of the slowest sample within rewindS seconds
// at or before start, clamped to the start of the series. Ties go to the
// earliest sample. A zero rewind returns start.
func RewindStart(points []Point, start int, rewindS float64) int {
	if start <= 0 || rewindS <= 0 {
		return start
	}
	from := points[start].Timestamp.Add(-time.Duration(rewindS * float64(time.Second)))
	lo := start
	for lo > 0 && !points[lo-1].Timestamp.Before(from) {
		lo--
	}
	best := lo
	for i := lo + 1; i <= start; i++ {
		if points[i].SpeedMPS < points[best].SpeedMPS {
			best = i
		}
	}
	return best
}

// SummarizeSprint computes the statistics of the final sprint interval
// [start, end]. officialStart is the index where speed first crossed the
// threshold. Acceleration is recomputed between consecutive samples of the
// interval; a single-sample interval has none.
func SummarizeSprint(points []Point, id, start, end, officialStart int) SprintSummary {
	seg := points[start : end+1]

	peak := seg[0].SpeedMPS
	var maxAccel *float64
	for i, pt := range seg {
		peak = max(peak, pt.SpeedMPS)
		if i == 0 {
			continue
		}
		accel := (pt.SpeedMPS - seg[i-1].SpeedMPS) / deltaTime(points, start+i)
		if maxAccel == nil || accel > *maxAccel {
			maxAccel = &accel
		}
	}

	first, last := seg[0], seg[len(seg)-1]
	return SprintSummary{
		ID:                  id,
		StartIndex:          start,
		EndIndex:            end,
		Start:               first.Timestamp,
		End:                 last.Timestamp,
		OfficialStart:       points[officialStart].Timestamp,
		DurationS:           runDuration(points, start, end),
		PeakSpeedKmh:        peak * msToKmh,
		AvgSpeedKmh:         meanOf(seg, func(pt Point) float64 { return pt.SpeedMPS }) * msToKmh,
		AvgGradePct:         meanOf(seg, func(pt Point) float64 { return pt.GradePct }),
		MaxAccelerationMPS2: maxAccel,
		StartDistanceKm:     first.DistanceM / 1000,
		EndDistanceKm:       last.DistanceM / 1000,
		DistanceCoveredM:    sumDeltaDistance(seg),
		MaxPowerW:           maxOptional(seg, estimatedPower),
	}
}

// DetectSprints runs candidate detection, gap merging, rewind and
// summarization. Sprints are returned in chronological order.
func DetectSprints(points []Point, p SprintParams) []SprintSummary {
	merged := MergeSprintCandidates(points, FindSprintCandidates(points, p), p.MaxGapM)
	out := make([]SprintSummary, 0, len(merged))
	for _, iv := range merged {
		start := RewindStart(points, iv.Start, p.RewindS)
		out = append(out, SummarizeSprint(points, iv.ID, start, iv.End, iv.Start))
	}
	return out
}
