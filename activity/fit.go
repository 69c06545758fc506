package activity

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/tormoder/fit"
)

// DecodeFIT reads the record messages of an activity FIT file into samples.
// Rows without a timestamp, distance, altitude or speed are dropped.
func DecodeFIT(r io.Reader) (*Activity, error) {
	decoded, err := fit.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode FIT file: %w", err)
	}
	af, err := decoded.Activity()
	if err != nil {
		return nil, fmt.Errorf("activity FIT expected: %w", err)
	}

	act := &Activity{Source: SourceFIT}
	if len(af.Sessions) > 0 && af.Sessions[0] != nil {
		act.Session = sessionFromMsg(af.Sessions[0])
	} else {
		act.Warnings = append(act.Warnings, "no session message; ride totals computed from samples")
	}

	samples := make([]Sample, 0, len(af.Records))
	dropped := 0
	for _, rec := range af.Records {
		if rec == nil {
			continue
		}
		s, ok := sampleFromRecord(rec)
		if !ok {
			dropped++
			continue
		}
		samples = append(samples, s)
	}
	if dropped > 0 {
		act.Warnings = append(act.Warnings, fmt.Sprintf("dropped %d record(s) missing timestamp, distance, altitude or speed", dropped))
	}

	samples, dupes := sortAndDedupe(samples)
	if dupes > 0 {
		act.Warnings = append(act.Warnings, fmt.Sprintf("dropped %d record(s) with duplicate timestamps", dupes))
	}
	if len(samples) == 0 {
		return nil, ErrNoSamples
	}
	fillCadence(samples)
	act.Samples = samples
	return act, nil
}

func sampleFromRecord(rec *fit.RecordMsg) (Sample, bool) {
	ts := validTimeOrZero(rec.Timestamp)
	if ts.IsZero() {
		return Sample{}, false
	}
	distance := rec.GetDistanceScaled()
	if !isFinite(distance) {
		return Sample{}, false
	}
	altitude := rec.GetEnhancedAltitudeScaled()
	if !isFinite(altitude) {
		altitude = rec.GetAltitudeScaled()
	}
	if !isFinite(altitude) {
		return Sample{}, false
	}
	speed := rec.GetEnhancedSpeedScaled()
	if !isFinite(speed) || speed < 0 {
		speed = rec.GetSpeedScaled()
	}
	if !isFinite(speed) || speed < 0 {
		return Sample{}, false
	}

	s := Sample{
		Timestamp: ts.UTC(),
		DistanceM: distance,
		AltitudeM: altitude,
		SpeedMPS:  speed,
	}
	if rec.HeartRate != math.MaxUint8 {
		s.HeartRateBPM = floatPtr(float64(rec.HeartRate))
	}
	if rec.Cadence != math.MaxUint8 {
		s.CadenceRPM = floatPtr(float64(rec.Cadence))
	}
	if rec.Temperature != math.MaxInt8 {
		s.TemperatureC = floatPtr(float64(rec.Temperature))
	}
	if !rec.PositionLat.Invalid() && !rec.PositionLong.Invalid() {
		lat := rec.PositionLat.Degrees()
		lon := rec.PositionLong.Degrees()
		if lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180 {
			s.Latitude, s.Longitude = &lat, &lon
		}
	}
	return s, true
}

func sessionFromMsg(msg *fit.SessionMsg) *Session {
	s := &Session{
		Sport:          fmt.Sprint(msg.Sport),
		SubSport:       fmt.Sprint(msg.SubSport),
		StartTime:      validTimeOrZero(msg.StartTime),
		TotalDistanceM: safePositive(msg.GetTotalDistanceScaled()),
		TotalAscentM:   float64(validUint16(msg.TotalAscent)),
		TotalDescentM:  float64(validUint16(msg.TotalDescent)),
		TotalTimerS:    safePositive(msg.GetTotalTimerTimeScaled()),
		TotalMovingS:   safePositive(msg.GetTotalMovingTimeScaled()),
	}
	s.AvgSpeedMPS = safePositive(msg.GetEnhancedAvgSpeedScaled())
	if s.AvgSpeedMPS == 0 {
		s.AvgSpeedMPS = safePositive(msg.GetAvgSpeedScaled())
	}
	s.MaxSpeedMPS = safePositive(msg.GetEnhancedMaxSpeedScaled())
	if s.MaxSpeedMPS == 0 {
		s.MaxSpeedMPS = safePositive(msg.GetMaxSpeedScaled())
	}
	return s
}

// fillCadence propagates the nearest cadence reading forward then backward,
// as long as at least one reading exists.
func fillCadence(samples []Sample) {
	var last *float64
	for i := range samples {
		if samples[i].CadenceRPM != nil {
			last = samples[i].CadenceRPM
			continue
		}
		if last != nil {
			samples[i].CadenceRPM = floatPtr(*last)
		}
	}
	var next *float64
	for i := len(samples) - 1; i >= 0; i-- {
		if samples[i].CadenceRPM != nil {
			next = samples[i].CadenceRPM
			continue
		}
		if next != nil {
			samples[i].CadenceRPM = floatPtr(*next)
		}
	}
}

func validTimeOrZero(t time.Time) time.Time {
	if t.IsZero() || fit.IsBaseTime(t) {
		return time.Time{}
	}
	return t
}

func validUint16(v uint16) uint16 {
	if v == math.MaxUint16 {
		return 0
	}
	return v
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

func floatPtr(v float64) *float64 {
	out := v
	return &out
}
