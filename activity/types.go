package activity

import (
	"errors"
	"time"
)

const (
	SourceFIT = "fit"
	SourceGPX = "gpx"
)

var (
	// ErrNoSamples is returned when a file decodes but holds no usable record rows.
	ErrNoSamples = errors.New("no usable record samples")
	// ErrUnsupportedFormat is returned for files that are neither FIT nor GPX.
	ErrUnsupportedFormat = errors.New("unsupported activity format (expected .fit or .gpx)")
)

// Sample is one row of the recorded time series. Optional signals are nil
// when the device did not record them.
type Sample struct {
	Timestamp       time.Time `json:"timestamp"`
	DistanceM       float64   `json:"distance_m"`
	AltitudeM       float64   `json:"altitude_m"`
	SpeedMPS        float64   `json:"speed_mps"`
	HeartRateBPM    *float64  `json:"heart_rate_bpm,omitempty"`
	CadenceRPM      *float64  `json:"cadence_rpm,omitempty"`
	EstimatedPowerW *float64  `json:"estimated_power_w,omitempty"`
	TemperatureC    *float64  `json:"temperature_c,omitempty"`
	Latitude        *float64  `json:"latitude,omitempty"`
	Longitude       *float64  `json:"longitude,omitempty"`
}

// HasPosition reports whether the sample carries a GPS fix.
func (s Sample) HasPosition() bool {
	return s.Latitude != nil && s.Longitude != nil
}

// Session holds device-reported totals. Zero values mean "not reported".
type Session struct {
	Sport          string    `json:"sport,omitempty"`
	SubSport       string    `json:"sub_sport,omitempty"`
	StartTime      time.Time `json:"start_time"`
	TotalDistanceM float64   `json:"total_distance_m"`
	TotalAscentM   float64   `json:"total_ascent_m"`
	TotalDescentM  float64   `json:"total_descent_m"`
	TotalTimerS    float64   `json:"total_timer_s"`
	TotalMovingS   float64   `json:"total_moving_s"`
	AvgSpeedMPS    float64   `json:"avg_speed_mps"`
	MaxSpeedMPS    float64   `json:"max_speed_mps"`
}

// Activity is a decoded recording: the time-ordered samples plus whatever
// summary the device wrote.
type Activity struct {
	Source   string   `json:"source"`
	Samples  []Sample `json:"-"`
	Session  *Session `json:"session,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}
