package activity

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Decode picks the decoder from the file name extension.
func Decode(name string, data []byte) (*Activity, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".fit":
		return DecodeFIT(bytes.NewReader(data))
	case ".gpx":
		return DecodeGPX(bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("%s: %w", filepath.Base(name), ErrUnsupportedFormat)
	}
}

// DecodeFile reads and decodes an activity file from disk.
func DecodeFile(path string) (*Activity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read activity file: %w", err)
	}
	return Decode(path, data)
}

// sortAndDedupe orders samples by time and keeps the first of any rows
// sharing a timestamp. It returns the number of rows removed.
func sortAndDedupe(samples []Sample) ([]Sample, int) {
	sort.SliceStable(samples, func(i, j int) bool {
		return samples[i].Timestamp.Before(samples[j].Timestamp)
	})
	out := samples[:0]
	removed := 0
	for i, s := range samples {
		if i > 0 && !s.Timestamp.After(out[len(out)-1].Timestamp) {
			removed++
			continue
		}
		out = append(out, s)
	}
	return out, removed
}
