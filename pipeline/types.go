package pipeline

import (
	ridesegments "github.com/lucasjlepore/ride-segments"
	"github.com/lucasjlepore/ride-segments/power"
	"github.com/lucasjlepore/ride-segments/segment"
)

// Rider describes the rider and bike used by the power estimate.
type Rider struct {
	WeightKG     float64 `json:"weight_kg"`
	BikeWeightKG float64 `json:"bike_weight_kg"`
	TireWidthMM  float64 `json:"tire_width_mm"`
	CdA          float64 `json:"cda_m2"`
}

// DefaultRider returns the dashboard defaults.
func DefaultRider() Rider {
	return Rider{
		WeightKG:     68,
		BikeWeightKG: 9,
		TireWidthMM:  28,
		CdA:          power.DefaultCdA,
	}
}

// PowerParams converts the rider into estimator parameters. Zero fields take
// the defaults.
func (r Rider) PowerParams() power.Params {
	d := DefaultRider()
	if r.WeightKG <= 0 {
		r.WeightKG = d.WeightKG
	}
	if r.BikeWeightKG <= 0 {
		r.BikeWeightKG = d.BikeWeightKG
	}
	if r.TireWidthMM <= 0 {
		r.TireWidthMM = d.TireWidthMM
	}
	if r.CdA <= 0 {
		r.CdA = d.CdA
	}
	return power.Params{
		TotalMassKg: r.WeightKG + r.BikeWeightKG,
		Crr:         power.CrrFromTireWidth(r.TireWidthMM),
		CdA:         r.CdA,
	}
}

// Params are the analysis inputs that the dashboard exposes as sliders.
type Params struct {
	Rider  Rider                `json:"rider"`
	Climb  segment.ClimbParams  `json:"climb"`
	Sprint segment.SprintParams `json:"sprint"`
	ChunkM float64              `json:"chunk_m"`
}

// DefaultParams returns the dashboard defaults.
func DefaultParams() Params {
	return Params{
		Rider:  DefaultRider(),
		Climb:  segment.DefaultClimbParams(),
		Sprint: segment.DefaultSprintParams(),
		ChunkM: segment.DefaultChunkM,
	}
}

// Options configures the ride_analyze pipeline.
type Options struct {
	InputPath  string
	OutDir     string
	Params     Params
	Format     string // parquet|csv
	Overwrite  bool
	CopySource bool
}

// BytesOptions configures an in-memory run.
type BytesOptions struct {
	SourceFileName string
	Data           []byte
	Params         Params
	Format         string // parquet|csv
	CopySource     bool
}

// Result returns generated output paths.
type Result struct {
	OutputDir      string   `json:"output_dir"`
	ReportPath     string   `json:"report_path"`
	ClimbsPath     string   `json:"climbs_path"`
	SprintsPath    string   `json:"sprints_path"`
	SummaryPath    string   `json:"ride_summary_path"`
	NotesPath      string   `json:"ride_notes_path"`
	MapPath        string   `json:"map_path"`
	SamplesPath    string   `json:"samples_path"`
	ClimbsCSVPath  string   `json:"climbs_csv_path"`
	SprintsCSVPath string   `json:"sprints_csv_path"`
	SourceCopyPath string   `json:"source_copy_path,omitempty"`
	Warnings       []string `json:"warnings,omitempty"`
}

// BytesResult holds in-memory artifacts keyed by file name.
type BytesResult struct {
	Report   *Report           `json:"-"`
	Files    map[string][]byte `json:"-"`
	Warnings []string          `json:"warnings,omitempty"`
}

// ClimbReport is a climb summary with its colored profile chunks.
type ClimbReport struct {
	segment.ClimbSummary
	Chunks []segment.GradeChunk `json:"chunks"`
}

// Report is the full analysis of one ride.
type Report struct {
	Source   string                   `json:"source"`
	Params   Params                   `json:"params"`
	Summary  ridesegments.RideSummary `json:"summary"`
	Climbs   []ClimbReport            `json:"climbs"`
	Sprints  []segment.SprintSummary  `json:"sprints"`
	Profile  []segment.ProfilePoint   `json:"profile"`
	Warnings []string                 `json:"warnings,omitempty"`

	// Points is the derived series the segments index into.
	Points []segment.Point `json:"-"`
}

// ClimbSummaries returns the plain climb summaries.
func (r *Report) ClimbSummaries() []segment.ClimbSummary {
	return ClimbSummaries(r.Climbs)
}

// ClimbSummaries strips the profile chunks from climbs.
func ClimbSummaries(climbs []ClimbReport) []segment.ClimbSummary {
	out := make([]segment.ClimbSummary, len(climbs))
	for i, c := range climbs {
		out[i] = c.ClimbSummary
	}
	return out
}
