package dashboard

import (
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	ridesegments "github.com/lucasjlepore/ride-segments"
	"github.com/lucasjlepore/ride-segments/activity"
	"github.com/lucasjlepore/ride-segments/pipeline"
	"github.com/lucasjlepore/ride-segments/segment"
)

// multipartOverhead is the room left in the request body for boundaries and
// rider form fields on top of the file itself.
const multipartOverhead = 64 << 10

type rideView struct {
	*Ride
	Summary     ridesegments.RideSummary `json:"summary"`
	Params      pipeline.Params          `json:"params"`
	ClimbCount  int                      `json:"climb_count"`
	SprintCount int                      `json:"sprint_count"`
	Warnings    []string                 `json:"warnings,omitempty"`
}

func newRideView(r *Ride) rideView {
	return rideView{
		Ride:        r,
		Summary:     r.Report.Summary,
		Params:      r.Report.Params,
		ClimbCount:  len(r.Report.Climbs),
		SprintCount: len(r.Report.Sprints),
		Warnings:    r.Report.Warnings,
	}
}

func (s *Server) listRides(c *gin.Context) {
	rides := s.store.List()
	views := make([]rideView, len(rides))
	for i, r := range rides {
		views[i] = newRideView(r)
	}
	success(c, views)
}

// uploadRide analyses a multipart "file" upload. Rider fields may be sent as
// form values and default to the server configuration.
func (s *Server) uploadRide(c *gin.Context) {
	limit := s.cfg.maxUploadBytes()
	tooLarge := fmt.Sprintf("file exceeds %d MB", limit>>20)
	bodyLimit := limit + multipartOverhead
	if c.Request.ContentLength > bodyLimit {
		fail(c, http.StatusRequestEntityTooLarge, tooLarge)
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, bodyLimit)

	file, err := c.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			fail(c, http.StatusRequestEntityTooLarge, tooLarge)
			return
		}
		badRequest(c, "multipart field \"file\" is required")
		return
	}
	if file.Size > limit {
		fail(c, http.StatusRequestEntityTooLarge, tooLarge)
		return
	}

	p := pipeline.DefaultParams()
	p.Rider = s.cfg.Rider()
	for key, dst := range map[string]*float64{
		"weight_kg":      &p.Rider.WeightKG,
		"bike_weight_kg": &p.Rider.BikeWeightKG,
		"tire_width_mm":  &p.Rider.TireWidthMM,
		"cda_m2":         &p.Rider.CdA,
	} {
		if err := floatParam(c.GetPostForm, key, dst); err != nil {
			badRequest(c, err.Error())
			return
		}
		if *dst < 0 {
			badRequest(c, fmt.Sprintf("%s must not be negative", key))
			return
		}
	}

	f, err := file.Open()
	if err != nil {
		_ = c.Error(err)
		fail(c, http.StatusInternalServerError, "failed to read upload")
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		_ = c.Error(err)
		fail(c, http.StatusInternalServerError, "failed to read upload")
		return
	}

	act, err := activity.Decode(file.Filename, data)
	if err != nil {
		_ = c.Error(err)
		if errors.Is(err, activity.ErrUnsupportedFormat) {
			badRequest(c, "unsupported file type (expected .fit or .gpx)")
			return
		}
		fail(c, http.StatusUnprocessableEntity, fmt.Sprintf("decode ride: %v", err))
		return
	}
	report, err := pipeline.Analyze(act, p)
	if err != nil {
		_ = c.Error(err)
		fail(c, http.StatusUnprocessableEntity, fmt.Sprintf("analyze ride: %v", err))
		return
	}

	success(c, newRideView(s.store.Add(file.Filename, report)))
}

func (s *Server) getRide(c *gin.Context) {
	ride, ok := s.ride(c)
	if !ok {
		return
	}
	success(c, newRideView(ride))
}

func (s *Server) deleteRide(c *gin.Context) {
	if !s.store.Delete(c.Param("id")) {
		notFound(c, "ride not found")
		return
	}
	success(c, gin.H{"id": c.Param("id")})
}

func (s *Server) getClimbs(c *gin.Context) {
	ride, p, ok := s.rideWithParams(c)
	if !ok {
		return
	}
	climbs, _ := s.store.Segment(ride, p)
	success(c, gin.H{
		"params":  p.Climb,
		"chunk_m": p.ChunkM,
		"climbs":  climbs,
	})
}

func (s *Server) getSprints(c *gin.Context) {
	ride, p, ok := s.rideWithParams(c)
	if !ok {
		return
	}
	_, sprints := s.store.Segment(ride, p)
	success(c, gin.H{
		"params":  p.Sprint,
		"sprints": sprints,
	})
}

func (s *Server) getProfile(c *gin.Context) {
	ride, ok := s.ride(c)
	if !ok {
		return
	}
	success(c, ride.Report.Profile)
}

func (s *Server) getMap(c *gin.Context) {
	ride, p, ok := s.rideWithParams(c)
	if !ok {
		return
	}
	climbs, sprints := s.store.Segment(ride, p)
	success(c, pipeline.BuildMapFeatures(ride.Report.Points, pipeline.ClimbSummaries(climbs), sprints))
}

func (s *Server) getNotes(c *gin.Context) {
	ride, p, ok := s.rideWithParams(c)
	if !ok {
		return
	}
	climbs, sprints := s.store.Segment(ride, p)
	success(c, gin.H{
		"notes": ridesegments.BuildRideNotes(ride.Report.Summary, pipeline.ClimbSummaries(climbs), sprints),
	})
}

func (s *Server) ride(c *gin.Context) (*Ride, bool) {
	ride, ok := s.store.Get(c.Param("id"))
	if !ok {
		notFound(c, "ride not found")
	}
	return ride, ok
}

func (s *Server) rideWithParams(c *gin.Context) (*Ride, pipeline.Params, bool) {
	ride, ok := s.ride(c)
	if !ok {
		return nil, pipeline.Params{}, false
	}
	p, err := segmentParams(c, ride.Report.Params)
	if err != nil {
		badRequest(c, err.Error())
		return nil, pipeline.Params{}, false
	}
	return ride, p, true
}

// segmentParams overrides the thresholds of base with query parameters. The
// rider is fixed at upload time since it shapes the estimated power.
func segmentParams(c *gin.Context, base pipeline.Params) (pipeline.Params, error) {
	p := base
	fields := []struct {
		key string
		dst *float64
	}{
		{"min_grade_pct", &p.Climb.MinGradePct},
		{"max_gap_m", &p.Climb.MaxGapM},
		{"min_climb_distance_m", &p.Climb.MinClimbDistanceM},
		{"chunk_m", &p.ChunkM},
		{"min_peak_speed_kmh", &p.Sprint.MinPeakSpeedKmh},
		{"sprint_min_grade_pct", &p.Sprint.MinGradePct},
		{"sprint_max_grade_pct", &p.Sprint.MaxGradePct},
		{"min_duration_s", &p.Sprint.MinDurationS},
		{"sprint_max_gap_m", &p.Sprint.MaxGapM},
		{"rewind_s", &p.Sprint.RewindS},
	}
	for _, f := range fields {
		if err := floatParam(c.GetQuery, f.key, f.dst); err != nil {
			return p, err
		}
	}

	switch {
	case !slices.Contains(segment.ChunkSizesM, p.ChunkM):
		return p, fmt.Errorf("chunk_m must be one of %v", segment.ChunkSizesM)
	case p.Climb.MaxGapM < 0, p.Sprint.MaxGapM < 0:
		return p, errors.New("gap thresholds must not be negative")
	case p.Sprint.MinDurationS < 0, p.Sprint.RewindS < 0:
		return p, errors.New("durations must not be negative")
	case p.Sprint.MinGradePct > p.Sprint.MaxGradePct:
		return p, errors.New("sprint_min_grade_pct must not exceed sprint_max_grade_pct")
	}
	return p, nil
}

func floatParam(get func(string) (string, bool), key string, dst *float64) error {
	raw, ok := get(key)
	raw = strings.TrimSpace(raw)
	if !ok || raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("invalid %s %q", key, raw)
	}
	*dst = v
	return nil
}
