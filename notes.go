package ridesegments

import (
	"fmt"
	"math"
	"strings"

	"github.com/lucasjlepore/ride-segments/segment"
)

const notAvailable = "N/A"

// BuildRideNotes renders the ride summary followed by the climb and sprint
// tables. Signals that were not recorded print as N/A.
func BuildRideNotes(s RideSummary, climbs []segment.ClimbSummary, sprints []segment.SprintSummary) string {
	var b strings.Builder

	if s.Sport != "" {
		fmt.Fprintf(&b, "Session: %s (%s)\n", s.Sport, s.SubSport)
	}
	if !s.StartTime.IsZero() {
		fmt.Fprintf(&b, "Start: %s\n", s.StartTime.Format("2006-01-02 15:04:05"))
	}
	fmt.Fprintf(
		&b,
		"Duration %s (moving %s) | Distance %.1f km | Elevation +%.0f/-%.0f m\n",
		formatDuration(s.ElapsedSeconds),
		formatDuration(s.MovingSeconds),
		s.DistanceMeters/1000.0,
		s.ElevationGainM,
		s.ElevationLossM,
	)
	fmt.Fprintf(
		&b,
		"Speed %.1f avg / %.1f max km/h | HR %s avg / %s max bpm | Cadence %s avg / %s max rpm\n",
		mpsToKmh(s.AvgSpeedMps),
		mpsToKmh(s.MaxSpeedMps),
		formatOptional(s.AvgHeartRate, 0),
		formatOptional(s.MaxHeartRate, 0),
		formatOptional(s.AvgCadence, 0),
		formatOptional(s.MaxCadence, 0),
	)
	fmt.Fprintf(
		&b,
		"Estimated power %s avg / %s NP / %s max W | Work %s kJ\n",
		formatOptional(s.AvgPowerWatts, 0),
		formatOptional(s.NormalizedPower, 0),
		formatOptional(s.MaxPowerWatts, 0),
		formatOptional(s.WorkKilojoules, 0),
	)
	if s.Best20MinPower != nil && *s.Best20MinPower > 0 {
		fmt.Fprintf(&b, "Best 20 min estimated power: %.0f W\n", *s.Best20MinPower)
	}

	b.WriteString("\nClimbs\n")
	if len(climbs) == 0 {
		b.WriteString("- No climb matched the current thresholds.\n")
	}
	for i, c := range climbs {
		fmt.Fprintf(
			&b,
			"- #%d at km %.2f: %.0f m at %.1f%% (+%.0f m) in %s, %.1f km/h | HR %s | Cadence %s | Power %s W\n",
			i+1,
			c.StartDistanceKm,
			c.DistanceCoveredM,
			c.AvgGradePct,
			c.ElevationGainM,
			formatDuration(c.DurationS),
			c.AvgSpeedKmh,
			formatOptional(c.AvgHeartRateBPM, 0),
			formatOptional(c.AvgCadenceRPM, 0),
			formatOptional(c.AvgPowerW, 0),
		)
	}

	b.WriteString("\nSprints\n")
	if len(sprints) == 0 {
		b.WriteString("- No sprint matched the current thresholds.\n")
	}
	for i, sp := range sprints {
		fmt.Fprintf(
			&b,
			"- #%d at %s (km %.2f-%.2f): %.1fs, %.1f max / %.1f avg km/h, %.1f%%, accel %s m/s², %.0f m | Power %s W\n",
			i+1,
			sp.Start.Format("15:04:05"),
			sp.StartDistanceKm,
			sp.EndDistanceKm,
			sp.DurationS,
			sp.PeakSpeedKmh,
			sp.AvgSpeedKmh,
			sp.AvgGradePct,
			formatOptional(sp.MaxAccelerationMPS2, 2),
			sp.DistanceCoveredM,
			formatOptional(sp.MaxPowerW, 0),
		)
	}

	return strings.TrimSpace(b.String())
}

func formatOptional(v *float64, decimals int) string {
	if v == nil || math.IsNaN(*v) {
		return notAvailable
	}
	return fmt.Sprintf("%.*f", decimals, *v)
}

func formatDuration(seconds float64) string {
	if seconds <= 0 {
		return "0s"
	}
	s := int(math.Round(seconds))
	h := s / 3600
	m := (s % 3600) / 60
	sec := s % 60
	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, sec)
	}
	if m > 0 {
		return fmt.Sprintf("%dm%02ds", m, sec)
	}
	return fmt.Sprintf("%ds", sec)
}

func mpsToKmh(v float64) float64 {
	if v <= 0 {
		return 0
	}
	return v * 3.6
}
