package dashboard

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/paulmach/orb"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// testGPX is a 1 Hz ride heading north with a 750 m climb at 8 % followed by
// a 10 s effort at 13 m/s.
func testGPX() []byte {
	stretches := []struct {
		seconds  int
		speedMPS float64
		gradePct float64
	}{
		{60, 8, 0},
		{150, 5, 8},
		{30, 8, 0},
		{10, 13, 0},
		{20, 8, 0},
	}
	degPerM := 180 / (math.Pi * orb.EarthRadius)
	start := time.Date(2026, 5, 3, 8, 0, 0, 0, time.UTC)

	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>
<gpx version="1.1" creator="dashboard-test" xmlns="http://www.topografix.com/GPX/1/1">
  <trk><trkseg>
`)
	lat, ele, n := 45.0, 300.0, 0
	write := func() {
		fmt.Fprintf(&b, "    <trkpt lat=\"%.9f\" lon=\"6.000000000\"><ele>%.3f</ele><time>%s</time></trkpt>\n",
			lat, ele, start.Add(time.Duration(n)*time.Second).Format(time.RFC3339))
		n++
	}
	write()
	for _, s := range stretches {
		for i := 0; i < s.seconds; i++ {
			lat += s.speedMPS * degPerM
			ele += s.speedMPS * s.gradePct / 100
			write()
		}
	}
	b.WriteString("  </trkseg></trk>\n</gpx>\n")
	return []byte(b.String())
}

func newTestRouter(cfg Config) (*gin.Engine, *RideStore) {
	store := NewRideStore(cfg.RideCacheSize)
	return NewRouter(cfg, store), store
}

func testConfig() Config {
	return Config{
		Port:          ":0",
		MaxUploadMB:   8,
		RideCacheSize: 4,
		RiderWeightKG: 68,
		BikeWeightKG:  9,
		TireWidthMM:   28,
		CdAM2:         0.38,
	}
}

func uploadRequest(t *testing.T, fileName string, body []byte, fields map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if fileName != "" {
		fw, err := mw.CreateFormFile("file", fileName)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := fw.Write(body); err != nil {
			t.Fatalf("write form file: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/rides", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func serve(t *testing.T, r http.Handler, req *http.Request) (int, envelope) {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return w.Code, env
}

func get(t *testing.T, r http.Handler, path string) (int, envelope) {
	t.Helper()
	return serve(t, r, httptest.NewRequest(http.MethodGet, path, nil))
}

func uploadTestRide(t *testing.T, r http.Handler) string {
	t.Helper()
	code, env := serve(t, r, uploadRequest(t, "ride.gpx", testGPX(), map[string]string{"weight_kg": "72"}))
	if code != http.StatusOK || env.Code != 0 {
		t.Fatalf("upload failed: %d %s", code, env.Message)
	}
	var ride struct {
		ID          string `json:"id"`
		FileName    string `json:"file_name"`
		ClimbCount  int    `json:"climb_count"`
		SprintCount int    `json:"sprint_count"`
		Params      struct {
			Rider struct {
				WeightKG float64 `json:"weight_kg"`
			} `json:"rider"`
		} `json:"params"`
	}
	if err := json.Unmarshal(env.Data, &ride); err != nil {
		t.Fatalf("decode ride: %v", err)
	}
	if ride.ID == "" || ride.FileName != "ride.gpx" {
		t.Fatalf("unexpected ride %+v", ride)
	}
	if ride.ClimbCount != 1 || ride.SprintCount != 1 {
		t.Fatalf("expected one climb and one sprint, got %d and %d", ride.ClimbCount, ride.SprintCount)
	}
	if ride.Params.Rider.WeightKG != 72 {
		t.Fatalf("rider weight form value ignored: %v", ride.Params.Rider.WeightKG)
	}
	return ride.ID
}

func TestHealthRoute(t *testing.T) {
	r, _ := newTestRouter(testConfig())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestUploadAndQueryRide(t *testing.T) {
	r, store := newTestRouter(testConfig())
	id := uploadTestRide(t, r)

	if code, _ := get(t, r, "/api/rides/"+id); code != http.StatusOK {
		t.Fatalf("get ride: %d", code)
	}

	code, env := get(t, r, "/api/rides/"+id+"/climbs?chunk_m=200")
	if code != http.StatusOK {
		t.Fatalf("get climbs: %d %s", code, env.Message)
	}
	var climbs struct {
		ChunkM float64 `json:"chunk_m"`
		Climbs []struct {
			DistanceCoveredM float64           `json:"distance_covered_m"`
			Chunks           []json.RawMessage `json:"chunks"`
		} `json:"climbs"`
	}
	if err := json.Unmarshal(env.Data, &climbs); err != nil {
		t.Fatalf("decode climbs: %v", err)
	}
	if climbs.ChunkM != 200 || len(climbs.Climbs) != 1 || len(climbs.Climbs[0].Chunks) == 0 {
		t.Fatalf("unexpected climbs payload %s", env.Data)
	}

	_, env = get(t, r, "/api/rides/"+id+"/climbs?min_climb_distance_m=5000")
	if err := json.Unmarshal(env.Data, &climbs); err != nil {
		t.Fatalf("decode climbs: %v", err)
	}
	if len(climbs.Climbs) != 0 {
		t.Fatalf("a 5 km minimum should drop the climb, got %d", len(climbs.Climbs))
	}

	_, env = get(t, r, "/api/rides/"+id+"/sprints?min_peak_speed_kmh=60")
	var sprints struct {
		Sprints []json.RawMessage `json:"sprints"`
	}
	if err := json.Unmarshal(env.Data, &sprints); err != nil {
		t.Fatalf("decode sprints: %v", err)
	}
	if len(sprints.Sprints) != 0 {
		t.Fatalf("a 60 km/h threshold should drop the sprint, got %d", len(sprints.Sprints))
	}

	// Default, chunk 200, 5 km minimum and 60 km/h thresholds.
	if store.memo.Len() != 3 {
		t.Fatalf("expected 3 cached segmentations, got %d", store.memo.Len())
	}

	if code, env := get(t, r, "/api/rides/"+id+"/profile"); code != http.StatusOK || len(env.Data) < 2 {
		t.Fatalf("get profile: %d", code)
	}

	code, env = get(t, r, "/api/rides/"+id+"/map")
	if code != http.StatusOK || !strings.Contains(string(env.Data), `"FeatureCollection"`) {
		t.Fatalf("get map: %d %s", code, env.Message)
	}

	code, env = get(t, r, "/api/rides/"+id+"/notes")
	if code != http.StatusOK || !strings.Contains(string(env.Data), "Climbs") {
		t.Fatalf("get notes: %d %s", code, env.Data)
	}

	code, env = get(t, r, "/api/rides")
	var list []json.RawMessage
	if err := json.Unmarshal(env.Data, &list); err != nil || code != http.StatusOK || len(list) != 1 {
		t.Fatalf("list rides: %d %v %s", code, err, env.Data)
	}
}

func TestRejectsInvalidThresholds(t *testing.T) {
	r, _ := newTestRouter(testConfig())
	id := uploadTestRide(t, r)

	for _, query := range []string{
		"min_grade_pct=steep",
		"chunk_m=123",
		"max_gap_m=-1",
		"sprint_min_grade_pct=6&sprint_max_grade_pct=2",
		"rewind_s=-5",
	} {
		code, env := get(t, r, "/api/rides/"+id+"/climbs?"+query)
		if code != http.StatusBadRequest || env.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", query, code)
		}
	}
}

func TestUploadRejectsBadRequests(t *testing.T) {
	cfg := testConfig()
	cfg.MaxUploadMB = 1
	r, _ := newTestRouter(cfg)

	cases := []struct {
		name     string
		fileName string
		body     []byte
		fields   map[string]string
		want     int
	}{
		{"missing file", "", nil, nil, http.StatusBadRequest},
		{"unsupported type", "ride.tcx", []byte("<tcx/>"), nil, http.StatusBadRequest},
		{"bad weight", "ride.gpx", testGPX(), map[string]string{"weight_kg": "heavy"}, http.StatusBadRequest},
		{"negative cda", "ride.gpx", testGPX(), map[string]string{"cda_m2": "-0.3"}, http.StatusBadRequest},
		{"too large", "ride.gpx", bytes.Repeat([]byte("x"), 2<<20), nil, http.StatusRequestEntityTooLarge},
		{"empty gpx", "ride.gpx", []byte(`<gpx version="1.1" xmlns="http://www.topografix.com/GPX/1/1"></gpx>`), nil, http.StatusUnprocessableEntity},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, env := serve(t, r, uploadRequest(t, tc.fileName, tc.body, tc.fields))
			if code != tc.want || env.Code != tc.want {
				t.Fatalf("expected %d, got %d (%s)", tc.want, code, env.Message)
			}
		})
	}
}

func TestUploadLimitsStreamedBody(t *testing.T) {
	cfg := testConfig()
	cfg.MaxUploadMB = 1
	r, store := newTestRouter(cfg)

	req := uploadRequest(t, "ride.gpx", bytes.Repeat([]byte("x"), 3<<20), nil)
	// Hide the length so the body limit, not the header check, rejects it.
	req.Body = io.NopCloser(struct{ io.Reader }{req.Body})
	req.ContentLength = -1

	code, env := serve(t, r, req)
	if code != http.StatusRequestEntityTooLarge || env.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d (%s)", code, env.Message)
	}
	if len(store.List()) != 0 {
		t.Fatal("oversized upload must not be stored")
	}
}

func TestUnknownAndDeletedRides(t *testing.T) {
	r, store := newTestRouter(testConfig())
	if code, _ := get(t, r, "/api/rides/not-a-uuid"); code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", code)
	}

	id := uploadTestRide(t, r)
	get(t, r, "/api/rides/"+id+"/sprints")
	if store.memo.Len() != 1 {
		t.Fatalf("expected a cached segmentation, got %d", store.memo.Len())
	}

	code, _ := serve(t, r, httptest.NewRequest(http.MethodDelete, "/api/rides/"+id, nil))
	if code != http.StatusOK {
		t.Fatalf("delete: %d", code)
	}
	if store.memo.Len() != 0 {
		t.Fatalf("delete should drop cached segmentations, got %d", store.memo.Len())
	}
	if code, _ := get(t, r, "/api/rides/"+id+"/climbs"); code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", code)
	}
	code, _ = serve(t, r, httptest.NewRequest(http.MethodDelete, "/api/rides/"+id, nil))
	if code != http.StatusNotFound {
		t.Fatalf("second delete: expected 404, got %d", code)
	}
}
