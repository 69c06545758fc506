//go:build !js

package pipeline

import (
	"time"

	parquetbuffer "github.com/xitongsys/parquet-go-source/buffer"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/source"
	"github.com/xitongsys/parquet-go/writer"
)

type sampleParquetRow struct {
	TSUTCISO          string  `parquet:"name=ts_utc_iso, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	ElapsedS          float64 `parquet:"name=elapsed_s, type=DOUBLE"`
	DistanceM         float64 `parquet:"name=distance_m, type=DOUBLE"`
	AltitudeM         float64 `parquet:"name=altitude_m, type=DOUBLE"`
	AltitudeSmoothedM float64 `parquet:"name=altitude_smoothed_m, type=DOUBLE"`
	GradePct          float64 `parquet:"name=grade_pct, type=DOUBLE"`
	SpeedKmh          float64 `parquet:"name=speed_kmh, type=DOUBLE"`
	HeartRateBPM      float64 `parquet:"name=hr_bpm, type=DOUBLE"`
	CadenceRPM        float64 `parquet:"name=cadence_rpm, type=DOUBLE"`
	EstimatedPowerW   float64 `parquet:"name=estimated_power_w, type=DOUBLE"`
	TemperatureC      float64 `parquet:"name=temperature_c, type=DOUBLE"`
	Latitude          float64 `parquet:"name=lat, type=DOUBLE"`
	Longitude         float64 `parquet:"name=lon, type=DOUBLE"`
	ClimbID           int64   `parquet:"name=climb_id, type=INT64"`
	SprintID          int64   `parquet:"name=sprint_id, type=INT64"`
}

func marshalSamplesParquet(report *Report) ([]byte, error) {
	fw := parquetbuffer.NewBufferFile()
	if err := writeSamplesParquet(fw, report); err != nil {
		return nil, err
	}
	return append([]byte(nil), fw.Bytes()...), nil
}

func writeSamplesParquetFile(path string, report *Report) error {
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return err
	}
	return writeSamplesParquet(fw, report)
}

// writeSamplesParquet writes the derived samples and closes fw. Missing
// optional signals are stored as NaN.
func writeSamplesParquet(fw source.ParquetFile, report *Report) error {
	pw, err := writer.NewParquetWriter(fw, new(sampleParquetRow), 4)
	if err != nil {
		_ = fw.Close()
		return err
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	climbIDs, sprintIDs := segmentMembership(report)
	var start time.Time
	if len(report.Points) > 0 {
		start = report.Points[0].Timestamp
	}
	for i, p := range report.Points {
		row := sampleParquetRow{
			TSUTCISO:          p.Timestamp.UTC().Format(time.RFC3339Nano),
			ElapsedS:          p.Timestamp.Sub(start).Seconds(),
			DistanceM:         p.DistanceM,
			AltitudeM:         p.AltitudeM,
			AltitudeSmoothedM: p.AltitudeSmoothedM,
			GradePct:          p.GradePct,
			SpeedKmh:          p.SpeedMPS * 3.6,
			HeartRateBPM:      valueOrNaN(p.HeartRateBPM),
			CadenceRPM:        valueOrNaN(p.CadenceRPM),
			EstimatedPowerW:   valueOrNaN(p.EstimatedPowerW),
			TemperatureC:      valueOrNaN(p.TemperatureC),
			Latitude:          valueOrNaN(p.Latitude),
			Longitude:         valueOrNaN(p.Longitude),
			ClimbID:           int64(climbIDs[i]),
			SprintID:          int64(sprintIDs[i]),
		}
		if err := pw.Write(row); err != nil {
			_ = pw.WriteStop()
			_ = fw.Close()
			return err
		}
	}
	if err := pw.WriteStop(); err != nil {
		_ = fw.Close()
		return err
	}
	return fw.Close()
}
