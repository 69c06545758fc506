//go:build js

package pipeline

func marshalSamplesParquet(*Report) ([]byte, error) {
	return nil, errParquetUnavailable
}

func writeSamplesParquetFile(string, *Report) error {
	return errParquetUnavailable
}
