package segment

// ClimbFlags is the per-sample climb classification before merging.
type ClimbFlags struct {
	Raw      []bool `json:"-"`
	Filtered []bool `json:"-"`
	RawRuns  []Run  `json:"raw_runs"`
	Runs     []Run  `json:"runs"`
}

// RunInfo is one row of the run table built from the filtered runs.
type RunInfo struct {
	RunID     int     `json:"run_id"`
	IsClimb   bool    `json:"is_climb"`
	DistanceM float64 `json:"distance_m"`
	Start     int     `json:"start_index"`
	End       int     `json:"end_index"`
}

// ClimbGroups is the result of gap-merging: the merged climb intervals in id
// order, the run table, and the merged id of every run (flat runs that were
// never absorbed keep an id of their own).
type ClimbGroups struct {
	Intervals []Interval  `json:"intervals"`
	RunTable  []RunInfo   `json:"run_table"`
	MergedID  map[int]int `json:"merged_id"`
}

// FlagClimbs marks samples steeper than minGradePct and drops climbing runs
// shorter than the default 100 m noise floor.
func FlagClimbs(points []Point, minGradePct float64) ClimbFlags {
	return FlagClimbsWithFloor(points, minGradePct, DefaultClimbNoiseFloorM)
}

// FlagClimbsWithFloor is FlagClimbs with an explicit noise floor. Only
// climbing runs are subject to the floor; flat runs are never reclassified.
func FlagClimbsWithFloor(points []Point, minGradePct, noiseFloorM float64) ClimbFlags {
	raw := make([]bool, len(points))
	for i, p := range points {
		raw[i] = p.GradePct > minGradePct
	}
	rawRuns := RunLengthEncode(raw)

	filtered := make([]bool, len(raw))
	copy(filtered, raw)
	for _, r := range rawRuns {
		if !r.Flag {
			continue
		}
		if sumDeltaDistance(points[r.Start:r.End+1]) < noiseFloorM {
			for i := r.Start; i <= r.End; i++ {
				filtered[i] = false
			}
		}
	}

	return ClimbFlags{
		Raw:      raw,
		Filtered: filtered,
		RawRuns:  rawRuns,
		Runs:     RunLengthEncode(filtered),
	}
}

// MergeClimbs fuses climbing runs separated by a single flat run shorter than
// maxGapM (strictly). Merged ids are assigned in one forward pass over the
// run table, so intervals come out in chronological order.
func MergeClimbs(points []Point, flags ClimbFlags, maxGapM float64) ClimbGroups {
	table := make([]RunInfo, len(flags.Runs))
	climbRows := make([]int, 0, len(flags.Runs)/2+1)
	for k, r := range flags.Runs {
		table[k] = RunInfo{
			RunID:     r.ID,
			IsClimb:   r.Flag,
			DistanceM: sumDeltaDistance(points[r.Start : r.End+1]),
			Start:     r.Start,
			End:       r.End,
		}
		if r.Flag {
			climbRows = append(climbRows, k)
		}
	}

	chains := MergeAdjacent(len(climbRows), func(prev, next int) bool {
		a, b := climbRows[prev], climbRows[next]
		if b != a+2 {
			return false
		}
		gap := table[a+1]
		return !gap.IsClimb && gap.DistanceM < maxGapM
	})
	chainEnd := make(map[int]int, len(chains))
	for _, c := range chains {
		chainEnd[climbRows[c[0]]] = climbRows[c[len(c)-1]]
	}

	groups := ClimbGroups{
		Intervals: make([]Interval, 0, len(chains)),
		RunTable:  table,
		MergedID:  make(map[int]int, len(table)),
	}
	nextID := 0
	for k, row := range table {
		if _, done := groups.MergedID[row.RunID]; done {
			continue
		}
		id := nextID
		nextID++
		groups.MergedID[row.RunID] = id
		if !row.IsClimb {
			continue
		}
		last := chainEnd[k]
		for j := k + 1; j <= last; j++ {
			groups.MergedID[table[j].RunID] = id
		}
		groups.Intervals = append(groups.Intervals, newInterval(points, id, row.Start, table[last].End))
	}
	return groups
}

// SummarizeClimbs computes one summary per merged climb, in order, dropping
// climbs shorter than minClimbDistanceM and climbs with no elapsed time.
//
// Elevation gain is the raw altitude difference between the last and first
// sample clamped at zero, so a climb that ends lower than it started reports
// 0 m and 0 %.
func SummarizeClimbs(points []Point, climbs []Interval, minClimbDistanceM float64) []ClimbSummary {
	out := make([]ClimbSummary, 0, len(climbs))
	for _, iv := range climbs {
		seg := iv.Points(points)
		distance := sumDeltaDistance(seg)
		if distance < minClimbDistanceM {
			continue
		}
		first, last := seg[0], seg[len(seg)-1]
		gain := max(0, last.AltitudeM-first.AltitudeM)
		grade := 0.0
		if distance != 0 {
			grade = 100 * gain / distance
		}
		duration := last.Timestamp.Sub(first.Timestamp).Seconds()
		if duration <= 0 {
			continue
		}
		out = append(out, ClimbSummary{
			ID:               iv.ID,
			StartIndex:       iv.Start,
			EndIndex:         iv.End,
			StartTime:        first.Timestamp,
			EndTime:          last.Timestamp,
			StartDistanceKm:  first.DistanceM / 1000,
			DistanceCoveredM: distance,
			ElevationGainM:   gain,
			AvgGradePct:      grade,
			DurationS:        duration,
			AvgSpeedKmh:      (distance / 1000) / (duration / 3600),
			AvgHeartRateBPM:  meanOptional(seg, heartRate),
			AvgCadenceRPM:    meanOptional(seg, cadence),
			AvgPowerW:        meanOptional(seg, estimatedPower),
		})
	}
	return out
}

// DetectClimbs runs flagging, merging and summarizing with p.
func DetectClimbs(points []Point, p ClimbParams) []ClimbSummary {
	floor := p.NoiseFloorM
	if floor <= 0 {
		floor = DefaultClimbNoiseFloorM
	}
	flags := FlagClimbsWithFloor(points, p.MinGradePct, floor)
	groups := MergeClimbs(points, flags, p.MaxGapM)
	return SummarizeClimbs(points, groups.Intervals, p.MinClimbDistanceM)
}
