// Package segment splits a ride into climbs and sprints.
//
// Every exported function is pure: inputs are never modified and the same
// inputs always produce the same output, so callers may rerun any stage with
// different thresholds against the same decoded ride.
package segment

import (
	"errors"
	"time"

	"github.com/lucasjlepore/ride-segments/activity"
)

const (
	// SmoothingWindow is the trailing window of the altitude moving average.
	SmoothingWindow = 20 * time.Second

	// DefaultClimbNoiseFloorM is the shortest raw climbing run kept before merging.
	DefaultClimbNoiseFloorM = 100.0

	msToKmh = 3.6
)

// ErrUnorderedTimestamps is returned when sample timestamps are not strictly increasing.
var ErrUnorderedTimestamps = errors.New("sample timestamps must be strictly increasing")

// Point is a sample with its derived altitude and grade fields.
type Point struct {
	activity.Sample
	AltitudeSmoothedM float64 `json:"altitude_smoothed_m"`
	DeltaDistanceM    float64 `json:"delta_distance_m"`
	DeltaAltitudeM    float64 `json:"delta_altitude_m"`
	GradePct          float64 `json:"grade_pct"`
}

// Run is a maximal stretch of samples sharing one classification.
// Start and End are inclusive sample indices.
type Run struct {
	ID    int  `json:"id"`
	Start int  `json:"start"`
	End   int  `json:"end"`
	Flag  bool `json:"flag"`
}

// Len returns the number of samples in the run.
func (r Run) Len() int { return r.End - r.Start + 1 }

// Interval is one merged climb or sprint. Start and End are inclusive sample
// indices; everything in between belongs to the interval, including samples
// absorbed while merging.
type Interval struct {
	ID             int       `json:"id"`
	Start          int       `json:"start_index"`
	End            int       `json:"end_index"`
	StartTime      time.Time `json:"start_time"`
	EndTime        time.Time `json:"end_time"`
	StartDistanceM float64   `json:"start_distance_m"`
	EndDistanceM   float64   `json:"end_distance_m"`
}

func newInterval(points []Point, id, start, end int) Interval {
	return Interval{
		ID:             id,
		Start:          start,
		End:            end,
		StartTime:      points[start].Timestamp,
		EndTime:        points[end].Timestamp,
		StartDistanceM: points[start].DistanceM,
		EndDistanceM:   points[end].DistanceM,
	}
}

// Points returns the interval's sub-series of points.
func (iv Interval) Points(points []Point) []Point {
	return points[iv.Start : iv.End+1]
}

// ClimbParams are the climb detection thresholds.
type ClimbParams struct {
	MinGradePct       float64 `json:"min_grade_pct"`
	MaxGapM           float64 `json:"max_gap_m"`
	MinClimbDistanceM float64 `json:"min_climb_distance_m"`
	NoiseFloorM       float64 `json:"noise_floor_m"`
}

// DefaultClimbParams returns the dashboard defaults.
func DefaultClimbParams() ClimbParams {
	return ClimbParams{
		MinGradePct:       3,
		MaxGapM:           200,
		MinClimbDistanceM: 400,
		NoiseFloorM:       DefaultClimbNoiseFloorM,
	}
}

// ClimbSummary describes one detected climb. Averages of optional signals are
// nil when the signal was not recorded anywhere in the climb.
type ClimbSummary struct {
	ID               int       `json:"id"`
	StartIndex       int       `json:"start_index"`
	EndIndex         int       `json:"end_index"`
	StartTime        time.Time `json:"start_time"`
	EndTime          time.Time `json:"end_time"`
	StartDistanceKm  float64   `json:"start_distance_km"`
	DistanceCoveredM float64   `json:"distance_covered_m"`
	ElevationGainM   float64   `json:"elevation_gain_m"`
	AvgGradePct      float64   `json:"avg_grade_pct"`
	DurationS        float64   `json:"duration_s"`
	AvgSpeedKmh      float64   `json:"avg_speed_kmh"`
	AvgHeartRateBPM  *float64  `json:"avg_heart_rate_bpm"`
	AvgCadenceRPM    *float64  `json:"avg_cadence_rpm"`
	AvgPowerW        *float64  `json:"avg_power_w"`
}

// SprintParams are the sprint detection thresholds.
type SprintParams struct {
	MinPeakSpeedKmh float64 `json:"min_peak_speed_kmh"`
	MinGradePct     float64 `json:"min_grade_pct"`
	MaxGradePct     float64 `json:"max_grade_pct"`
	MinDurationS    float64 `json:"min_duration_s"`
	MaxGapM         float64 `json:"max_gap_m"`
	RewindS         float64 `json:"rewind_s"`
}

// DefaultSprintParams returns the dashboard defaults.
func DefaultSprintParams() SprintParams {
	return SprintParams{
		MinPeakSpeedKmh: 40,
		MinGradePct:     -5,
		MaxGradePct:     5,
		MinDurationS:    5,
		MaxGapM:         50,
		RewindS:         10,
	}
}

// SprintSummary describes one detected sprint over its rewound interval.
// Start is the timestamp of the effort origin and is what plotting code uses
// to re-slice the series; OfficialStart is where speed first crossed the
// threshold.
type SprintSummary struct {
	ID                  int       `json:"id"`
	StartIndex          int       `json:"start_index"`
	EndIndex            int       `json:"end_index"`
	Start               time.Time `json:"start"`
	End                 time.Time `json:"end"`
	OfficialStart       time.Time `json:"official_start"`
	DurationS           float64   `json:"duration_s"`
	PeakSpeedKmh        float64   `json:"peak_speed_kmh"`
	AvgSpeedKmh         float64   `json:"avg_speed_kmh"`
	AvgGradePct         float64   `json:"avg_grade_pct"`
	MaxAccelerationMPS2 *float64  `json:"max_acceleration_mps2"`
	StartDistanceKm     float64   `json:"start_distance_km"`
	EndDistanceKm       float64   `json:"end_distance_km"`
	DistanceCoveredM    float64   `json:"distance_covered_m"`
	MaxPowerW           *float64  `json:"max_power_w"`
}
