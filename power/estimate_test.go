package power

import (
	"math"
	"testing"
	"time"

	"github.com/lucasjlepore/ride-segments/activity"
)

func steadyRide(n int, speed, grade float64) []activity.Sample {
	start := time.Date(2026, 5, 3, 8, 0, 0, 0, time.UTC)
	out := make([]activity.Sample, n)
	for i := range out {
		d := float64(i) * speed
		out[i] = activity.Sample{
			Timestamp: start.Add(time.Duration(i) * time.Second),
			DistanceM: d,
			AltitudeM: d * grade,
			SpeedMPS:  speed,
		}
	}
	return out
}

func TestEstimateFlatSteadySpeed(t *testing.T) {
	p := Params{TotalMassKg: 77, Crr: 0.004, CdA: 0.38}
	samples := steadyRide(10, 10, 0)

	out := Estimate(samples, p)
	if len(out) != len(samples) {
		t.Fatalf("expected %d samples, got %d", len(samples), len(out))
	}
	for _, s := range samples {
		if s.EstimatedPowerW != nil {
			t.Fatal("input samples must not be modified")
		}
	}

	want := (0.004*77*Gravity + 0.5*0.38*1.225*100) * 10
	got := *out[5].EstimatedPowerW
	if math.Abs(got-want) > 1e-6 {
		t.Fatalf("power = %.4f, want %.4f", got, want)
	}
}

func TestEstimateClimbCostsMore(t *testing.T) {
	p := DefaultParams()
	flat := Estimate(steadyRide(20, 5, 0), p)
	climb := Estimate(steadyRide(20, 5, 0.08), p)
	if *climb[10].EstimatedPowerW <= *flat[10].EstimatedPowerW {
		t.Fatalf("climbing power %.1f should exceed flat power %.1f", *climb[10].EstimatedPowerW, *flat[10].EstimatedPowerW)
	}
	// 8% grade, 77 kg at 5 m/s adds roughly 300 W of gravity work.
	diff := *climb[10].EstimatedPowerW - *flat[10].EstimatedPowerW
	if math.Abs(diff-77*Gravity*0.08*5) > 1 {
		t.Fatalf("unexpected gravity contribution %.1f", diff)
	}
}

func TestEstimateNeverNegative(t *testing.T) {
	samples := steadyRide(20, 12, -0.1)
	for _, s := range Estimate(samples, DefaultParams()) {
		if *s.EstimatedPowerW < 0 {
			t.Fatalf("negative power %.1f", *s.EstimatedPowerW)
		}
	}
}

func TestEstimateEmpty(t *testing.T) {
	if out := Estimate(nil, DefaultParams()); len(out) != 0 {
		t.Fatalf("expected empty output, got %d", len(out))
	}
}

func TestCrrFromTireWidth(t *testing.T) {
	tests := []struct {
		width float64
		want  float64
	}{
		{23, 0.004},
		{25, 0.004},
		{28, 0.0043},
		{40, 0.0055},
	}
	for _, tc := range tests {
		if got := CrrFromTireWidth(tc.width); math.Abs(got-tc.want) > 1e-12 {
			t.Fatalf("CrrFromTireWidth(%.0f) = %.5f, want %.5f", tc.width, got, tc.want)
		}
	}
}
