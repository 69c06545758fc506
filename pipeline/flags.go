package pipeline

import "flag"

// BindFlags registers command-line flags for every field of p. The current
// values of p are the flag defaults.
func (p *Params) BindFlags(fs *flag.FlagSet) {
	fs.Float64Var(&p.Rider.WeightKG, "weight", p.Rider.WeightKG, "Rider weight in kg")
	fs.Float64Var(&p.Rider.BikeWeightKG, "bike-weight", p.Rider.BikeWeightKG, "Bike weight in kg")
	fs.Float64Var(&p.Rider.TireWidthMM, "tire-width", p.Rider.TireWidthMM, "Tire width in mm (sets rolling resistance)")
	fs.Float64Var(&p.Rider.CdA, "cda", p.Rider.CdA, "Drag area CdA in m²")

	fs.Float64Var(&p.Climb.MinGradePct, "min-grade", p.Climb.MinGradePct, "Minimum grade in % for a sample to count as climbing")
	fs.Float64Var(&p.Climb.MaxGapM, "max-gap", p.Climb.MaxGapM, "Flat gap in m below which adjacent climbs merge")
	fs.Float64Var(&p.Climb.MinClimbDistanceM, "min-climb-distance", p.Climb.MinClimbDistanceM, "Minimum climb length in m")
	fs.Float64Var(&p.ChunkM, "chunk", p.ChunkM, "Climb profile chunk length in m")

	fs.Float64Var(&p.Sprint.MinPeakSpeedKmh, "sprint-speed", p.Sprint.MinPeakSpeedKmh, "Sprint speed threshold in km/h")
	fs.Float64Var(&p.Sprint.MinGradePct, "sprint-min-grade", p.Sprint.MinGradePct, "Lowest average grade in % for a sprint")
	fs.Float64Var(&p.Sprint.MaxGradePct, "sprint-max-grade", p.Sprint.MaxGradePct, "Highest average grade in % for a sprint")
	fs.Float64Var(&p.Sprint.MinDurationS, "sprint-min-duration", p.Sprint.MinDurationS, "Minimum sprint duration in s")
	fs.Float64Var(&p.Sprint.MaxGapM, "sprint-max-gap", p.Sprint.MaxGapM, "Gap in m up to which adjacent sprints merge")
	fs.Float64Var(&p.Sprint.RewindS, "rewind", p.Sprint.RewindS, "Seconds to look back for the sprint's slowest point")
}
