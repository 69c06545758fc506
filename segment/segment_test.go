package segment

import (
	"time"

	"github.com/lucasjlepore/ride-segments/activity"
)

var testStart = time.Date(2026, 6, 14, 9, 0, 0, 0, time.UTC)

// gradedPoints builds 1 Hz points with the given cumulative distances and
// grades. Deltas are taken from the distances; altitude climbs with grade.
func gradedPoints(distances, grades []float64) []Point {
	points := make([]Point, len(distances))
	alt := 100.0
	for i := range distances {
		p := Point{
			Sample: activity.Sample{
				Timestamp: testStart.Add(time.Duration(i) * time.Second),
				DistanceM: distances[i],
				SpeedMPS:  8,
			},
			GradePct: grades[i],
		}
		if i > 0 {
			p.DeltaDistanceM = distances[i] - distances[i-1]
			alt += p.DeltaDistanceM * grades[i] / 100
		}
		p.AltitudeM = alt
		p.AltitudeSmoothedM = alt
		points[i] = p
	}
	return points
}

// speedPoints builds 1 Hz flat points from a speed trace in m/s.
func speedPoints(speeds []float64) []Point {
	points := make([]Point, len(speeds))
	dist := 0.0
	for i, v := range speeds {
		p := Point{Sample: activity.Sample{
			Timestamp: testStart.Add(time.Duration(i) * time.Second),
			SpeedMPS:  v,
		}}
		if i > 0 {
			p.DeltaDistanceM = v
			dist += v
		}
		p.DistanceM = dist
		points[i] = p
	}
	return points
}

func floatPtr(v float64) *float64 { return &v }
