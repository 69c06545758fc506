package segment

import "math"

// DefaultChunkM is the chunk length used to color climb profiles.
const DefaultChunkM = 100.0

// ChunkSizesM are the chunk lengths offered by the dashboard.
var ChunkSizesM = []float64{100, 200, 500, 1000, 1500, 2000}

// GradeChunk is one fixed-length slice of a climb profile. Distances are
// relative to the climb start.
type GradeChunk struct {
	StartDistanceM float64 `json:"start_distance_m"`
	EndDistanceM   float64 `json:"end_distance_m"`
	MidDistanceM   float64 `json:"mid_distance_m"`
	StartAltitudeM float64 `json:"start_altitude_m"`
	EndAltitudeM   float64 `json:"end_altitude_m"`
	GradePct       float64 `json:"grade_pct"`
}

// ClimbProfile bins the climb's samples by relative distance into chunkM
// buckets and reports the smoothed-altitude grade of each bucket, rounded to
// one decimal.
func ClimbProfile(points []Point, iv Interval, chunkM float64) []GradeChunk {
	if chunkM <= 0 {
		chunkM = DefaultChunkM
	}
	seg := iv.Points(points)
	if len(seg) == 0 {
		return nil
	}
	origin := seg[0].DistanceM

	var chunks []GradeChunk
	bin := math.Inf(-1)
	sumDist := 0.0
	count := 0
	flush := func() {
		if count == 0 {
			return
		}
		c := &chunks[len(chunks)-1]
		c.MidDistanceM = sumDist / float64(count)
		if d := c.EndDistanceM - c.StartDistanceM; d != 0 {
			c.GradePct = math.Round(1000*(c.EndAltitudeM-c.StartAltitudeM)/d) / 10
		}
	}
	for _, p := range seg {
		rel := p.DistanceM - origin
		b := math.Floor(rel/chunkM) * chunkM
		if b != bin {
			flush()
			bin = b
			sumDist, count = 0, 0
			chunks = append(chunks, GradeChunk{StartDistanceM: rel, StartAltitudeM: p.AltitudeSmoothedM})
		}
		c := &chunks[len(chunks)-1]
		c.EndDistanceM = rel
		c.EndAltitudeM = p.AltitudeSmoothedM
		sumDist += rel
		count++
	}
	flush()
	return chunks
}

// DefaultProfilePoints caps the number of points in a full-ride profile.
const DefaultProfilePoints = 4000

// ProfilePoint is one point of the full-ride elevation profile.
type ProfilePoint struct {
	DistanceM float64 `json:"distance_m"`
	AltitudeM float64 `json:"altitude_m"`
	GradePct  float64 `json:"grade_pct"`
	SpeedKmh  float64 `json:"speed_kmh"`
}

// DownsampleProfile keeps every k-th point, with k = max(1, len/target).
func DownsampleProfile(points []Point, target int) []ProfilePoint {
	if target <= 0 {
		target = DefaultProfilePoints
	}
	step := max(1, len(points)/target)
	out := make([]ProfilePoint, 0, len(points)/step+1)
	for i := 0; i < len(points); i += step {
		p := points[i]
		out = append(out, ProfilePoint{
			DistanceM: p.DistanceM,
			AltitudeM: p.AltitudeM,
			GradePct:  p.GradePct,
			SpeedKmh:  p.SpeedMPS * msToKmh,
		})
	}
	return out
}
