package pipeline

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/simplify"

	"github.com/lucasjlepore/ride-segments/segment"
)

// trackTolerance is the Douglas-Peucker tolerance, in degrees, applied to the
// full track. Climb and sprint overlays are kept at full resolution.
const trackTolerance = 0.00001

// BuildMapFeatures returns the ride track plus one line per climb and per
// sprint. Samples without a GPS fix are skipped; a ride without positions
// yields an empty collection.
func BuildMapFeatures(points []segment.Point, climbs []segment.ClimbSummary, sprints []segment.SprintSummary) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	track := lineString(points, 0, len(points)-1)
	if len(track) < 2 {
		return fc
	}
	fc.BBox = geojson.NewBBox(track.Bound())

	f := geojson.NewFeature(simplify.DouglasPeucker(trackTolerance).LineString(track.Clone()))
	f.Properties["kind"] = "track"
	fc.Append(f)

	for n, c := range climbs {
		ls := lineString(points, c.StartIndex, c.EndIndex)
		if len(ls) < 2 {
			continue
		}
		f := geojson.NewFeature(ls)
		f.Properties["kind"] = "climb"
		f.Properties["index"] = n + 1
		f.Properties["distance_m"] = c.DistanceCoveredM
		f.Properties["elevation_gain_m"] = c.ElevationGainM
		f.Properties["avg_grade_pct"] = c.AvgGradePct
		fc.Append(f)
	}
	for n, s := range sprints {
		ls := lineString(points, s.StartIndex, s.EndIndex)
		if len(ls) < 2 {
			continue
		}
		f := geojson.NewFeature(ls)
		f.Properties["kind"] = "sprint"
		f.Properties["index"] = n + 1
		f.Properties["peak_speed_kmh"] = s.PeakSpeedKmh
		f.Properties["duration_s"] = s.DurationS
		fc.Append(f)
	}
	return fc
}

func lineString(points []segment.Point, start, end int) orb.LineString {
	var ls orb.LineString
	for i := max(start, 0); i <= end && i < len(points); i++ {
		p := points[i]
		if !p.HasPosition() {
			continue
		}
		ls = append(ls, orb.Point{*p.Longitude, *p.Latitude})
	}
	return ls
}
