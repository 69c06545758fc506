package dashboard

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/lucasjlepore/ride-segments/pipeline"
)

// Config holds the dashboard server settings, read from the environment.
type Config struct {
	Port          string  `mapstructure:"PORT"`
	MaxUploadMB   int64   `mapstructure:"MAX_UPLOAD_MB"`
	RideCacheSize int     `mapstructure:"RIDE_CACHE_SIZE"`
	RiderWeightKG float64 `mapstructure:"RIDER_WEIGHT_KG"`
	BikeWeightKG  float64 `mapstructure:"BIKE_WEIGHT_KG"`
	TireWidthMM   float64 `mapstructure:"TIRE_WIDTH_MM"`
	CdAM2         float64 `mapstructure:"CDA_M2"`
}

// LoadConfig reads the configuration from environment variables, falling back
// to the defaults below. Values that do not parse are reported as an error.
func LoadConfig() (Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	rider := pipeline.DefaultRider()
	v.SetDefault("PORT", ":8080")
	v.SetDefault("MAX_UPLOAD_MB", 64)
	v.SetDefault("RIDE_CACHE_SIZE", pipeline.DefaultMemoSize)
	v.SetDefault("RIDER_WEIGHT_KG", rider.WeightKG)
	v.SetDefault("BIKE_WEIGHT_KG", rider.BikeWeightKG)
	v.SetDefault("TIRE_WIDTH_MM", rider.TireWidthMM)
	v.SetDefault("CDA_M2", rider.CdA)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// Rider returns the rider used when an upload does not override it.
func (c Config) Rider() pipeline.Rider {
	return pipeline.Rider{
		WeightKG:     c.RiderWeightKG,
		BikeWeightKG: c.BikeWeightKG,
		TireWidthMM:  c.TireWidthMM,
		CdA:          c.CdAM2,
	}
}

func (c Config) maxUploadBytes() int64 {
	if c.MaxUploadMB <= 0 {
		return 64 << 20
	}
	return c.MaxUploadMB << 20
}
