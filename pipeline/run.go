package pipeline

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	ridesegments "github.com/lucasjlepore/ride-segments"
	"github.com/lucasjlepore/ride-segments/activity"
	"github.com/lucasjlepore/ride-segments/power"
	"github.com/lucasjlepore/ride-segments/segment"
)

const (
	reportFile     = "report.json"
	climbsFile     = "climbs.json"
	sprintsFile    = "sprints.json"
	summaryFile    = "ride_summary.json"
	notesFile      = "ride_notes.md"
	mapFile        = "map.geojson"
	samplesBase    = "samples"
	climbsCSVFile  = "climbs.csv"
	sprintsCSVFile = "sprints.csv"
	sourceBase     = "source"
)

var errParquetUnavailable = errors.New("parquet output is not available in this build")

// Analyze annotates estimated power, derives grade and detects climbs and
// sprints with p. The activity is not modified.
func Analyze(act *activity.Activity, p Params) (*Report, error) {
	if act == nil || len(act.Samples) == 0 {
		return nil, activity.ErrNoSamples
	}
	samples := power.Estimate(act.Samples, p.Rider.PowerParams())
	points, err := segment.CalculateDerivatives(samples)
	if err != nil {
		return nil, fmt.Errorf("calculate derivatives: %w", err)
	}

	climbs, sprints := Segment(points, p)
	return &Report{
		Source:   act.Source,
		Params:   p,
		Summary:  ridesegments.SummarizeRide(act, samples),
		Climbs:   climbs,
		Sprints:  sprints,
		Profile:  segment.DownsampleProfile(points, segment.DefaultProfilePoints),
		Warnings: append([]string(nil), act.Warnings...),
		Points:   points,
	}, nil
}

// Segment reruns climb and sprint detection over already derived points.
func Segment(points []segment.Point, p Params) ([]ClimbReport, []segment.SprintSummary) {
	summaries := segment.DetectClimbs(points, p.Climb)
	climbs := make([]ClimbReport, len(summaries))
	for i, c := range summaries {
		iv := segment.Interval{ID: c.ID, Start: c.StartIndex, End: c.EndIndex}
		climbs[i] = ClimbReport{
			ClimbSummary: c,
			Chunks:       segment.ClimbProfile(points, iv, p.ChunkM),
		}
	}
	return climbs, segment.DetectSprints(points, p.Sprint)
}

// Run executes the full ride_analyze pipeline and writes all artifacts.
func Run(opts Options) (*Result, error) {
	if strings.TrimSpace(opts.InputPath) == "" {
		return nil, fmt.Errorf("input path is required")
	}
	if strings.TrimSpace(opts.OutDir) == "" {
		return nil, fmt.Errorf("output directory is required")
	}
	format, err := normalizeFormat(opts.Format)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(opts.InputPath)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	act, err := activity.Decode(opts.InputPath, data)
	if err != nil {
		return nil, err
	}
	report, err := Analyze(act, opts.Params)
	if err != nil {
		return nil, err
	}

	files, err := buildArtifacts(report)
	if err != nil {
		return nil, err
	}
	if opts.CopySource {
		files[sourceBase+strings.ToLower(filepath.Ext(opts.InputPath))] = data
	}

	if err := prepareOutDir(opts.OutDir, opts.Overwrite); err != nil {
		return nil, err
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(opts.OutDir, name), body, 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", name, err)
		}
	}

	warnings := report.Warnings
	samplesPath := filepath.Join(opts.OutDir, samplesBase+"."+format)
	switch format {
	case "csv":
		body, err := marshalSamplesCSV(report)
		if err != nil {
			return nil, fmt.Errorf("write samples csv: %w", err)
		}
		if err := os.WriteFile(samplesPath, body, 0o644); err != nil {
			return nil, fmt.Errorf("write samples csv: %w", err)
		}
	case "parquet":
		if err := writeSamplesParquetFile(samplesPath, report); err != nil {
			return nil, fmt.Errorf("write samples parquet: %w", err)
		}
	}

	res := &Result{
		OutputDir:      opts.OutDir,
		ReportPath:     filepath.Join(opts.OutDir, reportFile),
		ClimbsPath:     filepath.Join(opts.OutDir, climbsFile),
		SprintsPath:    filepath.Join(opts.OutDir, sprintsFile),
		SummaryPath:    filepath.Join(opts.OutDir, summaryFile),
		NotesPath:      filepath.Join(opts.OutDir, notesFile),
		MapPath:        filepath.Join(opts.OutDir, mapFile),
		SamplesPath:    samplesPath,
		ClimbsCSVPath:  filepath.Join(opts.OutDir, climbsCSVFile),
		SprintsCSVPath: filepath.Join(opts.OutDir, sprintsCSVFile),
		Warnings:       warnings,
	}
	if opts.CopySource {
		res.SourceCopyPath = filepath.Join(opts.OutDir, sourceBase+strings.ToLower(filepath.Ext(opts.InputPath)))
	}
	return res, nil
}

// RunBytes runs the pipeline on an in-memory file and returns the artifacts
// keyed by file name.
func RunBytes(opts BytesOptions) (*BytesResult, error) {
	if len(opts.Data) == 0 {
		return nil, fmt.Errorf("input bytes are required")
	}
	format, err := normalizeFormat(opts.Format)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(opts.SourceFileName)
	if name == "" {
		name = "input.fit"
	}

	act, err := activity.Decode(name, opts.Data)
	if err != nil {
		return nil, err
	}
	report, err := Analyze(act, opts.Params)
	if err != nil {
		return nil, err
	}
	files, err := buildArtifacts(report)
	if err != nil {
		return nil, err
	}

	warnings := report.Warnings
	if format == "parquet" {
		body, err := marshalSamplesParquet(report)
		switch {
		case errors.Is(err, errParquetUnavailable):
			warnings = append(warnings, "parquet output is not available in this build; wrote samples.csv instead")
			format = "csv"
		case err != nil:
			return nil, fmt.Errorf("write samples parquet: %w", err)
		default:
			files[samplesBase+".parquet"] = body
		}
	}
	if format == "csv" {
		body, err := marshalSamplesCSV(report)
		if err != nil {
			return nil, fmt.Errorf("write samples csv: %w", err)
		}
		files[samplesBase+".csv"] = body
	}
	if opts.CopySource {
		files[sourceBase+strings.ToLower(filepath.Ext(name))] = opts.Data
	}

	return &BytesResult{
		Report:   report,
		Files:    files,
		Warnings: warnings,
	}, nil
}

func buildArtifacts(report *Report) (map[string][]byte, error) {
	files := make(map[string][]byte, 10)
	jsonArtifacts := []struct {
		name string
		v    any
	}{
		{reportFile, report},
		{climbsFile, report.Climbs},
		{sprintsFile, report.Sprints},
		{summaryFile, report.Summary},
	}
	for _, a := range jsonArtifacts {
		body, err := marshalJSON(a.v)
		if err != nil {
			return nil, fmt.Errorf("write %s: %w", a.name, err)
		}
		files[a.name] = body
	}

	notes := ridesegments.BuildRideNotes(report.Summary, report.ClimbSummaries(), report.Sprints)
	files[notesFile] = []byte(notes + "\n")

	geo, err := BuildMapFeatures(report.Points, report.ClimbSummaries(), report.Sprints).MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("write %s: %w", mapFile, err)
	}
	files[mapFile] = geo

	climbsCSV, err := marshalClimbsCSV(report.Climbs)
	if err != nil {
		return nil, fmt.Errorf("write %s: %w", climbsCSVFile, err)
	}
	files[climbsCSVFile] = climbsCSV

	sprintsCSV, err := marshalSprintsCSV(report.Sprints)
	if err != nil {
		return nil, fmt.Errorf("write %s: %w", sprintsCSVFile, err)
	}
	files[sprintsCSVFile] = sprintsCSV

	return files, nil
}

func normalizeFormat(format string) (string, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = "parquet"
	}
	if format != "parquet" && format != "csv" {
		return "", fmt.Errorf("unsupported format %q (expected parquet|csv)", format)
	}
	return format, nil
}

func prepareOutDir(dir string, overwrite bool) error {
	entries, err := os.ReadDir(dir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return fmt.Errorf("read output directory: %w", err)
	case len(entries) > 0 && !overwrite:
		return fmt.Errorf("output directory %s is not empty (use --overwrite)", dir)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	return nil
}

func marshalJSON(v any) ([]byte, error) {
	body, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(body, '\n'), nil
}
