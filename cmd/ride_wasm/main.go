//go:build js && wasm

package main

import (
	"archive/zip"
	"bytes"
	"fmt"
	"sort"
	"syscall/js"
	"time"

	"github.com/lucasjlepore/ride-segments/pipeline"
)

func main() {
	js.Global().Set("analyzeRide", js.FuncOf(analyzeRide))
	select {}
}

func analyzeRide(_ js.Value, args []js.Value) any {
	if len(args) < 2 {
		return failure("expected arguments: fileBytes(Uint8Array), options(object)")
	}
	fileArg := args[0]
	optsArg := args[1]
	if fileArg.IsUndefined() || fileArg.IsNull() || fileArg.Get("length").Int() == 0 {
		return failure("ride file bytes are required")
	}

	fileBytes := make([]byte, fileArg.Get("length").Int())
	if n := js.CopyBytesToGo(fileBytes, fileArg); n == 0 {
		return failure("failed to read ride bytes from JS input")
	}

	result, err := pipeline.RunBytes(pipeline.BytesOptions{
		SourceFileName: getString(optsArg, "source_file_name", "input.fit"),
		Data:           fileBytes,
		Params:         paramsFromJS(optsArg),
		Format:         getString(optsArg, "format", "parquet"),
		CopySource:     true,
	})
	if err != nil {
		return failure(err.Error())
	}

	zipBytes, err := zipArtifacts(result.Files)
	if err != nil {
		return failure(fmt.Sprintf("create zip: %v", err))
	}
	payload := js.Global().Get("Uint8Array").New(len(zipBytes))
	js.CopyBytesToJS(payload, zipBytes)

	fileNames := make([]string, 0, len(result.Files))
	for name := range result.Files {
		fileNames = append(fileNames, name)
	}
	sort.Strings(fileNames)

	return map[string]any{
		"ok":       true,
		"zip":      payload,
		"climbs":   len(result.Report.Climbs),
		"sprints":  len(result.Report.Sprints),
		"warnings": stringsToAny(result.Warnings),
		"files":    stringsToAny(fileNames),
	}
}

// paramsFromJS reads the dashboard sliders. Missing keys keep the defaults.
func paramsFromJS(v js.Value) pipeline.Params {
	p := pipeline.DefaultParams()
	p.Rider.WeightKG = getFloat(v, "weight_kg", p.Rider.WeightKG)
	p.Rider.BikeWeightKG = getFloat(v, "bike_weight_kg", p.Rider.BikeWeightKG)
	p.Rider.TireWidthMM = getFloat(v, "tire_width_mm", p.Rider.TireWidthMM)
	p.Rider.CdA = getFloat(v, "cda_m2", p.Rider.CdA)
	p.Climb.MinGradePct = getFloat(v, "min_grade_pct", p.Climb.MinGradePct)
	p.Climb.MaxGapM = getFloat(v, "max_gap_m", p.Climb.MaxGapM)
	p.Climb.MinClimbDistanceM = getFloat(v, "min_climb_distance_m", p.Climb.MinClimbDistanceM)
	p.ChunkM = getFloat(v, "chunk_m", p.ChunkM)
	p.Sprint.MinPeakSpeedKmh = getFloat(v, "min_peak_speed_kmh", p.Sprint.MinPeakSpeedKmh)
	p.Sprint.MinGradePct = getFloat(v, "sprint_min_grade_pct", p.Sprint.MinGradePct)
	p.Sprint.MaxGradePct = getFloat(v, "sprint_max_grade_pct", p.Sprint.MaxGradePct)
	p.Sprint.MinDurationS = getFloat(v, "min_duration_s", p.Sprint.MinDurationS)
	p.Sprint.MaxGapM = getFloat(v, "sprint_max_gap_m", p.Sprint.MaxGapM)
	p.Sprint.RewindS = getFloat(v, "rewind_s", p.Sprint.RewindS)
	return p
}

func failure(msg string) map[string]any {
	return map[string]any{
		"ok":    false,
		"error": msg,
	}
}

func zipArtifacts(files map[string][]byte) ([]byte, error) {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	fixedTime := time.Unix(0, 0).UTC()

	for _, name := range names {
		h := &zip.FileHeader{
			Name:   name,
			Method: zip.Deflate,
		}
		h.SetModTime(fixedTime)
		w, err := zw.CreateHeader(h)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(files[name]); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func getString(v js.Value, key, fallback string) string {
	if v.IsUndefined() || v.IsNull() {
		return fallback
	}
	out := v.Get(key)
	if out.IsUndefined() || out.IsNull() {
		return fallback
	}
	s := out.String()
	if s == "" || s == "undefined" || s == "null" {
		return fallback
	}
	return s
}

func getFloat(v js.Value, key string, fallback float64) float64 {
	if v.IsUndefined() || v.IsNull() {
		return fallback
	}
	out := v.Get(key)
	if out.IsUndefined() || out.IsNull() || out.Type() != js.TypeNumber {
		return fallback
	}
	return out.Float()
}

func stringsToAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
