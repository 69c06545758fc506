// Package ridesegments summarizes a decoded ride and renders the text notes
// shown next to its climbs and sprints.
package ridesegments

import (
	"math"
	"time"

	"github.com/lucasjlepore/ride-segments/activity"
)

const (
	// movingSpeedMPS is the speed above which a sample counts as moving time.
	movingSpeedMPS = 1.0
	// maxWorkGapS drops pauses from the work integral.
	maxWorkGapS = 5.0
	// maxFillGapS caps how many missing seconds are filled for rolling power.
	maxFillGapS = 30
)

// RideSummary contains whole-ride totals and averages. Optional signals are
// nil when no sample carried them.
type RideSummary struct {
	Source          string    `json:"source"`
	Sport           string    `json:"sport,omitempty"`
	SubSport        string    `json:"sub_sport,omitempty"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	SampleCount     int       `json:"sample_count"`
	ElapsedSeconds  float64   `json:"elapsed_seconds"`
	MovingSeconds   float64   `json:"moving_seconds"`
	DistanceMeters  float64   `json:"distance_meters"`
	ElevationGainM  float64   `json:"elevation_gain_m"`
	ElevationLossM  float64   `json:"elevation_loss_m"`
	AvgSpeedMps     float64   `json:"avg_speed_mps"`
	MaxSpeedMps     float64   `json:"max_speed_mps"`
	AvgHeartRate    *float64  `json:"avg_heart_rate_bpm"`
	MaxHeartRate    *float64  `json:"max_heart_rate_bpm"`
	AvgCadence      *float64  `json:"avg_cadence_rpm"`
	MaxCadence      *float64  `json:"max_cadence_rpm"`
	AvgPowerWatts   *float64  `json:"avg_power_watts"`
	MaxPowerWatts   *float64  `json:"max_power_watts"`
	NormalizedPower *float64  `json:"normalized_power_watts"`
	Best20MinPower  *float64  `json:"best_20min_power_watts"`
	WorkKilojoules  *float64  `json:"work_kilojoules"`
}

type rideSeries struct {
	start       time.Time
	end         time.Time
	durationSec float64
	movingSec   float64

	lastDistance float64
	ascent       float64
	descent      float64

	speedSamples []float64
	hrSamples    []float64
	cadSamples   []float64
	powerSamples []float64
	powerFilled  []float64

	workJoules float64
}

// SummarizeRide combines the device session totals with values computed
// from samples. Session values win when the device reported them.
func SummarizeRide(act *activity.Activity, samples []activity.Sample) RideSummary {
	series := buildRideSeries(samples)
	summary := RideSummary{
		StartTime:   series.start,
		EndTime:     series.end,
		SampleCount: len(samples),
	}

	var session activity.Session
	if act != nil {
		summary.Source = act.Source
		if act.Session != nil {
			session = *act.Session
		}
	}
	summary.Sport = session.Sport
	summary.SubSport = session.SubSport
	if !session.StartTime.IsZero() {
		summary.StartTime = session.StartTime
	}

	summary.ElapsedSeconds = safePositive(session.TotalTimerS)
	if summary.ElapsedSeconds == 0 {
		summary.ElapsedSeconds = series.durationSec
	}
	summary.MovingSeconds = safePositive(session.TotalMovingS)
	if summary.MovingSeconds == 0 {
		summary.MovingSeconds = series.movingSec
	}
	summary.DistanceMeters = safePositive(session.TotalDistanceM)
	if summary.DistanceMeters == 0 {
		summary.DistanceMeters = series.lastDistance
	}
	summary.ElevationGainM = safePositive(session.TotalAscentM)
	if summary.ElevationGainM == 0 {
		summary.ElevationGainM = series.ascent
	}
	summary.ElevationLossM = safePositive(session.TotalDescentM)
	if summary.ElevationLossM == 0 {
		summary.ElevationLossM = series.descent
	}

	summary.AvgSpeedMps = safePositive(session.AvgSpeedMPS)
	if summary.AvgSpeedMps == 0 && summary.MovingSeconds > 0 {
		summary.AvgSpeedMps = summary.DistanceMeters / summary.MovingSeconds
	}
	summary.MaxSpeedMps = safePositive(session.MaxSpeedMPS)
	if summary.MaxSpeedMps == 0 {
		summary.MaxSpeedMps = maxValue(series.speedSamples)
	}

	summary.AvgHeartRate = optional(series.hrSamples, average)
	summary.MaxHeartRate = optional(series.hrSamples, maxValue)
	summary.AvgCadence = optional(series.cadSamples, average)
	summary.MaxCadence = optional(series.cadSamples, maxValue)
	summary.AvgPowerWatts = optional(series.powerSamples, average)
	summary.MaxPowerWatts = optional(series.powerSamples, maxValue)
	summary.NormalizedPower = optional(series.powerFilled, normalizedPower)
	summary.Best20MinPower = optional(series.powerFilled, func(v []float64) float64 {
		return bestRollingPower(v, 20*60)
	})
	if len(series.powerSamples) > 0 {
		kj := series.workJoules / 1000.0
		summary.WorkKilojoules = &kj
	}

	return summary
}

func buildRideSeries(samples []activity.Sample) rideSeries {
	rs := rideSeries{}
	if len(samples) == 0 {
		return rs
	}
	rs.start = samples[0].Timestamp
	rs.end = samples[len(samples)-1].Timestamp
	if rs.end.After(rs.start) {
		rs.durationSec = rs.end.Sub(rs.start).Seconds()
	}

	var (
		lastPower   float64
		haveLastPwr bool
	)
	for i, s := range samples {
		if isFinite(s.SpeedMPS) {
			rs.speedSamples = append(rs.speedSamples, s.SpeedMPS)
		}
		if s.HeartRateBPM != nil {
			rs.hrSamples = append(rs.hrSamples, *s.HeartRateBPM)
		}
		if s.CadenceRPM != nil {
			rs.cadSamples = append(rs.cadSamples, *s.CadenceRPM)
		}
		if d := safePositive(s.DistanceM); d > 0 {
			rs.lastDistance = d
		}

		delta := 0.0
		if i > 0 {
			prev := samples[i-1]
			delta = s.Timestamp.Sub(prev.Timestamp).Seconds()
			if s.SpeedMPS > movingSpeedMPS && delta > 0 {
				rs.movingSec += delta
			}
			if dAlt := s.AltitudeM - prev.AltitudeM; isFinite(dAlt) {
				if dAlt > 0 {
					rs.ascent += dAlt
				} else {
					rs.descent -= dAlt
				}
			}
		}

		if s.EstimatedPowerW == nil || !isFinite(*s.EstimatedPowerW) {
			continue
		}
		power := *s.EstimatedPowerW
		rs.powerSamples = append(rs.powerSamples, power)
		if haveLastPwr && delta > 0 {
			if delta <= maxWorkGapS {
				rs.workJoules += lastPower * delta
			}
			missing := int(math.Round(delta)) - 1
			if missing > 0 && missing <= maxFillGapS {
				for j := 0; j < missing; j++ {
					rs.powerFilled = append(rs.powerFilled, lastPower)
				}
			}
		}
		rs.powerFilled = append(rs.powerFilled, power)
		lastPower = power
		haveLastPwr = true
	}
	return rs
}

// normalizedPower is the fourth-power mean of the 30 s rolling average of a
// 1 Hz power series.
func normalizedPower(powerSamples []float64) float64 {
	if len(powerSamples) == 0 {
		return 0
	}
	if len(powerSamples) < 30 {
		return average(powerSamples)
	}

	window := 30
	sum := 0.0
	for i := 0; i < window; i++ {
		sum += powerSamples[i]
	}

	fourthPowerTotal := 0.0
	count := 0
	for i := window - 1; i < len(powerSamples); i++ {
		if i >= window {
			sum += powerSamples[i] - powerSamples[i-window]
		}
		rolling := sum / float64(window)
		fourthPowerTotal += math.Pow(rolling, 4)
		count++
	}
	return math.Pow(fourthPowerTotal/float64(count), 0.25)
}

func bestRollingPower(powerSamples []float64, seconds int) float64 {
	if len(powerSamples) == 0 || seconds <= 0 {
		return 0
	}
	if len(powerSamples) < seconds {
		return average(powerSamples)
	}

	sum := 0.0
	for i := 0; i < seconds; i++ {
		sum += powerSamples[i]
	}
	best := sum
	for i := seconds; i < len(powerSamples); i++ {
		sum += powerSamples[i] - powerSamples[i-seconds]
		best = max(best, sum)
	}
	return best / float64(seconds)
}

func optional(values []float64, f func([]float64) float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	v := f(values)
	return &v
}

func average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	total := 0.0
	count := 0
	for _, v := range values {
		if !isFinite(v) {
			continue
		}
		total += v
		count++
	}
	if count == 0 {
		return 0
	}
	return total / float64(count)
}

func maxValue(values []float64) float64 {
	best := 0.0
	found := false
	for _, v := range values {
		if !isFinite(v) {
			continue
		}
		if !found || v > best {
			best = v
			found = true
		}
	}
	return best
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func safePositive(v float64) float64 {
	if !isFinite(v) || v <= 0 {
		return 0
	}
	return v
}
