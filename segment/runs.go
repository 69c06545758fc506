package segment

// RunLengthEncode splits flags into maximal runs of equal value. Run ids
// start at 1 and increase by one at every change of value.
func RunLengthEncode(flags []bool) []Run {
	runs := make([]Run, 0, 16)
	for i, f := range flags {
		if n := len(runs); n > 0 && runs[n-1].Flag == f {
			runs[n-1].End = i
			continue
		}
		runs = append(runs, Run{ID: len(runs) + 1, Start: i, End: i, Flag: f})
	}
	return runs
}

// MergeAdjacent walks n ordered items once and groups each item with the one
// before it whenever joinable(prev, next) holds. Groups hold item indices in
// order; every item lands in exactly one group.
func MergeAdjacent(n int, joinable func(prev, next int) bool) [][]int {
	groups := make([][]int, 0, n)
	for i := 0; i < n; i++ {
		if g := len(groups); g > 0 {
			last := groups[g-1]
			if joinable(last[len(last)-1], i) {
				groups[g-1] = append(last, i)
				continue
			}
		}
		groups = append(groups, []int{i})
	}
	return groups
}

func sumDeltaDistance(points []Point) float64 {
	total := 0.0
	for _, p := range points {
		total += p.DeltaDistanceM
	}
	return total
}

func meanOf(points []Point, value func(Point) float64) float64 {
	if len(points) == 0 {
		return 0
	}
	total := 0.0
	for _, p := range points {
		total += value(p)
	}
	return total / float64(len(points))
}

// meanOptional averages the recorded values of an optional signal and
// returns nil when nothing was recorded.
func meanOptional(points []Point, value func(Point) *float64) *float64 {
	total := 0.0
	count := 0
	for _, p := range points {
		if v := value(p); v != nil && isFinite(*v) {
			total += *v
			count++
		}
	}
	if count == 0 {
		return nil
	}
	avg := total / float64(count)
	return &avg
}

func maxOptional(points []Point, value func(Point) *float64) *float64 {
	var best *float64
	for _, p := range points {
		v := value(p)
		if v == nil || !isFinite(*v) {
			continue
		}
		if best == nil || *v > *best {
			m := *v
			best = &m
		}
	}
	return best
}

func heartRate(p Point) *float64      { return p.HeartRateBPM }
func cadence(p Point) *float64        { return p.CadenceRPM }
func estimatedPower(p Point) *float64 { return p.EstimatedPowerW }
