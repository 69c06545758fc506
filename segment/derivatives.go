package segment

import (
	"fmt"
	"math"
	"time"

	"github.com/lucasjlepore/ride-segments/activity"
)

// CalculateDerivatives smooths altitude over a trailing 20 s window and
// derives per-sample distance/altitude deltas and grade. The first sample's
// deltas are zero; grade is zero wherever the distance delta is zero.
func CalculateDerivatives(samples []activity.Sample) ([]Point, error) {
	for i := 1; i < len(samples); i++ {
		if !samples[i].Timestamp.After(samples[i-1].Timestamp) {
			return nil, fmt.Errorf("sample %d (%s): %w", i, samples[i].Timestamp.Format(time.RFC3339), ErrUnorderedTimestamps)
		}
	}

	smoothed := trailingMean(samples, SmoothingWindow)
	points := make([]Point, len(samples))
	for i, s := range samples {
		p := Point{Sample: s, AltitudeSmoothedM: smoothed[i]}
		if i > 0 {
			p.DeltaDistanceM = s.DistanceM - samples[i-1].DistanceM
			p.DeltaAltitudeM = smoothed[i] - smoothed[i-1]
		}
		if p.DeltaDistanceM != 0 {
			p.GradePct = 100 * p.DeltaAltitudeM / p.DeltaDistanceM
		}
		if !isFinite(p.GradePct) {
			p.GradePct = 0
		}
		points[i] = p
	}
	return points, nil
}

// trailingMean averages altitude over (t-window, t]. Non-finite altitudes are
// skipped; positions with nothing to average take the nearest average,
// forward first then backward.
func trailingMean(samples []activity.Sample, window time.Duration) []float64 {
	out := make([]float64, len(samples))
	lo := 0
	sum := 0.0
	count := 0
	for i := range samples {
		if v := samples[i].AltitudeM; isFinite(v) {
			sum += v
			count++
		}
		for samples[i].Timestamp.Sub(samples[lo].Timestamp) >= window {
			if v := samples[lo].AltitudeM; isFinite(v) {
				sum -= v
				count--
			}
			lo++
		}
		if count == 0 {
			sum = 0
			out[i] = math.NaN()
			continue
		}
		out[i] = sum / float64(count)
	}
	fillForwardBackward(out)
	return out
}

func fillForwardBackward(values []float64) {
	last := math.NaN()
	for i, v := range values {
		if isFinite(v) {
			last = v
		} else {
			values[i] = last
		}
	}
	next := math.NaN()
	for i := len(values) - 1; i >= 0; i-- {
		if isFinite(values[i]) {
			next = values[i]
		} else {
			values[i] = next
		}
	}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
