package pipeline

import (
	"math"
	"strconv"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/lucasjlepore/ride-segments/segment"
)

// sampleRow is one derived sample as written to samples.csv.
type sampleRow struct {
	TSUTCISO          string  `csv:"ts_utc_iso"`
	ElapsedS          float64 `csv:"elapsed_s"`
	DistanceM         float64 `csv:"distance_m"`
	AltitudeM         float64 `csv:"altitude_m"`
	AltitudeSmoothedM float64 `csv:"altitude_smoothed_m"`
	GradePct          float64 `csv:"grade_pct"`
	SpeedKmh          float64 `csv:"speed_kmh"`
	HeartRateBPM      string  `csv:"hr_bpm"`
	CadenceRPM        string  `csv:"cadence_rpm"`
	EstimatedPowerW   string  `csv:"estimated_power_w"`
	TemperatureC      string  `csv:"temperature_c"`
	Latitude          string  `csv:"lat"`
	Longitude         string  `csv:"lon"`
	ClimbID           int     `csv:"climb_id"`
	SprintID          int     `csv:"sprint_id"`
}

type climbRow struct {
	ID               int     `csv:"id"`
	StartTime        string  `csv:"start_time"`
	StartDistanceKm  float64 `csv:"start_distance_km"`
	DistanceCoveredM float64 `csv:"distance_covered_m"`
	ElevationGainM   float64 `csv:"elevation_gain_m"`
	AvgGradePct      float64 `csv:"avg_grade_pct"`
	DurationS        float64 `csv:"duration_s"`
	AvgSpeedKmh      float64 `csv:"avg_speed_kmh"`
	AvgHeartRateBPM  string  `csv:"avg_hr_bpm"`
	AvgCadenceRPM    string  `csv:"avg_cadence_rpm"`
	AvgPowerW        string  `csv:"avg_power_w"`
}

type sprintRow struct {
	ID                  int     `csv:"id"`
	Start               string  `csv:"start"`
	OfficialStart       string  `csv:"official_start"`
	DurationS           float64 `csv:"duration_s"`
	PeakSpeedKmh        float64 `csv:"peak_speed_kmh"`
	AvgSpeedKmh         float64 `csv:"avg_speed_kmh"`
	AvgGradePct         float64 `csv:"avg_grade_pct"`
	MaxAccelerationMPS2 string  `csv:"max_acceleration_mps2"`
	StartDistanceKm     float64 `csv:"start_distance_km"`
	EndDistanceKm       float64 `csv:"end_distance_km"`
	DistanceCoveredM    float64 `csv:"distance_covered_m"`
	MaxPowerW           string  `csv:"max_power_w"`
}

// segmentMembership maps each point to the 1-based position of the climb
// and sprint containing it, or 0.
func segmentMembership(report *Report) (climbs, sprints []int) {
	climbs = make([]int, len(report.Points))
	sprints = make([]int, len(report.Points))
	for n, c := range report.Climbs {
		for i := c.StartIndex; i <= c.EndIndex && i < len(climbs); i++ {
			climbs[i] = n + 1
		}
	}
	for n, s := range report.Sprints {
		for i := s.StartIndex; i <= s.EndIndex && i < len(sprints); i++ {
			sprints[i] = n + 1
		}
	}
	return climbs, sprints
}

func buildSampleRows(report *Report) []sampleRow {
	climbIDs, sprintIDs := segmentMembership(report)
	rows := make([]sampleRow, len(report.Points))
	var start time.Time
	if len(report.Points) > 0 {
		start = report.Points[0].Timestamp
	}
	for i, p := range report.Points {
		rows[i] = sampleRow{
			TSUTCISO:          p.Timestamp.UTC().Format(time.RFC3339Nano),
			ElapsedS:          p.Timestamp.Sub(start).Seconds(),
			DistanceM:         p.DistanceM,
			AltitudeM:         p.AltitudeM,
			AltitudeSmoothedM: p.AltitudeSmoothedM,
			GradePct:          p.GradePct,
			SpeedKmh:          p.SpeedMPS * 3.6,
			HeartRateBPM:      formatFloatPtr(p.HeartRateBPM),
			CadenceRPM:        formatFloatPtr(p.CadenceRPM),
			EstimatedPowerW:   formatFloatPtr(p.EstimatedPowerW),
			TemperatureC:      formatFloatPtr(p.TemperatureC),
			Latitude:          formatFloatPtr(p.Latitude),
			Longitude:         formatFloatPtr(p.Longitude),
			ClimbID:           climbIDs[i],
			SprintID:          sprintIDs[i],
		}
	}
	return rows
}

func marshalSamplesCSV(report *Report) ([]byte, error) {
	rows := buildSampleRows(report)
	return gocsv.MarshalBytes(&rows)
}

func marshalClimbsCSV(climbs []ClimbReport) ([]byte, error) {
	rows := make([]climbRow, len(climbs))
	for i, c := range climbs {
		rows[i] = climbRow{
			ID:               c.ID,
			StartTime:        c.StartTime.UTC().Format(time.RFC3339),
			StartDistanceKm:  c.StartDistanceKm,
			DistanceCoveredM: c.DistanceCoveredM,
			ElevationGainM:   c.ElevationGainM,
			AvgGradePct:      c.AvgGradePct,
			DurationS:        c.DurationS,
			AvgSpeedKmh:      c.AvgSpeedKmh,
			AvgHeartRateBPM:  formatFloatPtr(c.AvgHeartRateBPM),
			AvgCadenceRPM:    formatFloatPtr(c.AvgCadenceRPM),
			AvgPowerW:        formatFloatPtr(c.AvgPowerW),
		}
	}
	return gocsv.MarshalBytes(&rows)
}

func marshalSprintsCSV(sprints []segment.SprintSummary) ([]byte, error) {
	rows := make([]sprintRow, len(sprints))
	for i, s := range sprints {
		rows[i] = sprintRow{
			ID:                  s.ID,
			Start:               s.Start.UTC().Format(time.RFC3339),
			OfficialStart:       s.OfficialStart.UTC().Format(time.RFC3339),
			DurationS:           s.DurationS,
			PeakSpeedKmh:        s.PeakSpeedKmh,
			AvgSpeedKmh:         s.AvgSpeedKmh,
			AvgGradePct:         s.AvgGradePct,
			MaxAccelerationMPS2: formatFloatPtr(s.MaxAccelerationMPS2),
			StartDistanceKm:     s.StartDistanceKm,
			EndDistanceKm:       s.EndDistanceKm,
			DistanceCoveredM:    s.DistanceCoveredM,
			MaxPowerW:           formatFloatPtr(s.MaxPowerW),
		}
	}
	return gocsv.MarshalBytes(&rows)
}

func valueOrNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatFloatPtr(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}
