// Package power estimates rider output from speed, altitude and rider/bike
// parameters for activities recorded without a power meter.
package power

import (
	"math"

	"github.com/lucasjlepore/ride-segments/activity"
)

const (
	Gravity = 9.80665

	// DefaultCdA is the drag area for riding on the hoods.
	DefaultCdA = 0.38

	defaultTemperatureC = 15.0
	gradeWindow         = 5
	maxAbsGrade         = 0.5
	minDeltaTimeS       = 0.1
)

// Params describes the rider and bike.
type Params struct {
	TotalMassKg float64 `json:"total_mass_kg"`
	Crr         float64 `json:"crr"`
	CdA         float64 `json:"cda_m2"`
}

// DefaultParams is a 68 kg rider on a 9 kg bike with 28 mm tyres.
func DefaultParams() Params {
	return Params{
		TotalMassKg: 77,
		Crr:         CrrFromTireWidth(28),
		CdA:         DefaultCdA,
	}
}

// CrrFromTireWidth approximates rolling resistance from tyre width:
// 0.004 up to 25 mm, plus 0.0001 per extra millimetre.
func CrrFromTireWidth(widthMM float64) float64 {
	const (
		baseCrr  = 0.004
		perMM    = 0.0001
		baseSize = 25.0
	)
	if widthMM > baseSize {
		return baseCrr + (widthMM-baseSize)*perMM
	}
	return baseCrr
}

// Estimate returns a copy of samples with EstimatedPowerW set on every row.
// The model sums rolling resistance, aerodynamic drag, gravity on a
// five-sample grade and the inertial term, then smooths with a centred
// three-sample mean. Negative power is clamped to zero.
func Estimate(samples []activity.Sample, p Params) []activity.Sample {
	out := make([]activity.Sample, len(samples))
	copy(out, samples)
	n := len(out)
	if n == 0 {
		return out
	}

	dt := make([]float64, n)
	dAlt := make([]float64, n)
	dDist := make([]float64, n)
	dSpeed := make([]float64, n)
	for i := range out {
		if i == 0 {
			dt[i] = 1
			continue
		}
		dt[i] = math.Max(out[i].Timestamp.Sub(out[i-1].Timestamp).Seconds(), minDeltaTimeS)
		dAlt[i] = out[i].AltitudeM - out[i-1].AltitudeM
		dDist[i] = out[i].DistanceM - out[i-1].DistanceM
		dSpeed[i] = out[i].SpeedMPS - out[i-1].SpeedMPS
	}

	raw := make([]float64, n)
	var sumAlt, sumDist float64
	for i := range out {
		sumAlt += dAlt[i]
		sumDist += dDist[i]
		if i >= gradeWindow {
			sumAlt -= dAlt[i-gradeWindow]
			sumDist -= dDist[i-gradeWindow]
		}
		grade := 0.0
		if sumDist != 0 {
			grade = clamp(sumAlt/sumDist, -maxAbsGrade, maxAbsGrade)
		}

		temp := defaultTemperatureC
		if out[i].TemperatureC != nil {
			temp = *out[i].TemperatureC
		}
		rho := airDensity(out[i].AltitudeM, temp)
		v := out[i].SpeedMPS
		accel := dSpeed[i] / dt[i]

		fRolling := p.Crr * p.TotalMassKg * Gravity
		fAero := 0.5 * p.CdA * rho * v * v
		fGravity := p.TotalMassKg * Gravity * grade
		fInertia := p.TotalMassKg * accel
		raw[i] = math.Max(0, (fRolling+fAero+fGravity+fInertia)*v)
	}

	for i := range out {
		lo, hi := max(0, i-1), min(n-1, i+1)
		sum := 0.0
		for j := lo; j <= hi; j++ {
			sum += raw[j]
		}
		w := sum / float64(hi-lo+1)
		out[i].EstimatedPowerW = &w
	}
	return out
}

// airDensity in kg/m³ from altitude (m) and temperature (°C).
func airDensity(altitudeM, temperatureC float64) float64 {
	return 1.225 * math.Exp(-0.0001185*altitudeM) * (288.15 / (temperatureC + 273.15))
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
