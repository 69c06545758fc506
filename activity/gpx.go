package activity

import (
	"fmt"
	"io"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/tkrajina/gpxgo/gpx"
)

// DecodeGPX reads every track point with a timestamp and an elevation.
// GPX carries no odometer or speed, so cumulative distance is integrated
// from the positions and speed is derived from distance over time.
func DecodeGPX(r io.Reader) (*Activity, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read GPX file: %w", err)
	}
	g, err := gpx.ParseBytes(buf)
	if err != nil {
		return nil, fmt.Errorf("parse GPX file: %w", err)
	}

	act := &Activity{Source: SourceGPX}
	samples := make([]Sample, 0, 4096)
	dropped := 0
	for _, t := range g.Tracks {
		for _, seg := range t.Segments {
			for _, p := range seg.Points {
				if p.Timestamp.IsZero() || !p.Elevation.NotNull() {
					dropped++
					continue
				}
				lat, lon := p.Latitude, p.Longitude
				samples = append(samples, Sample{
					Timestamp: p.Timestamp.UTC(),
					AltitudeM: p.Elevation.Value(),
					Latitude:  &lat,
					Longitude: &lon,
				})
			}
		}
	}
	if dropped > 0 {
		act.Warnings = append(act.Warnings, fmt.Sprintf("dropped %d track point(s) missing time or elevation", dropped))
	}

	samples, dupes := sortAndDedupe(samples)
	if dupes > 0 {
		act.Warnings = append(act.Warnings, fmt.Sprintf("dropped %d track point(s) with duplicate timestamps", dupes))
	}
	if len(samples) == 0 {
		return nil, ErrNoSamples
	}
	integrateDistance(samples)
	act.Samples = samples
	return act, nil
}

func integrateDistance(samples []Sample) {
	for i := 1; i < len(samples); i++ {
		prev, cur := samples[i-1], samples[i]
		d := geo.Distance(
			orb.Point{*prev.Longitude, *prev.Latitude},
			orb.Point{*cur.Longitude, *cur.Latitude},
		)
		samples[i].DistanceM = prev.DistanceM + d
		if dt := cur.Timestamp.Sub(prev.Timestamp).Seconds(); dt > 0 {
			samples[i].SpeedMPS = d / dt
		}
	}
}
