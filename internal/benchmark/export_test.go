package benchmark_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"codeberg.org/mutker/benchval/internal/benchmark"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleMeasurements() []benchmark.Measurement {
	return []benchmark.Measurement{
		{
			Model:                "resnet18-imagenet",
			Configuration:        "cores1_batch1",
			Timestamp:            "2025-08-03T19:11:18Z",
			LatencyMS:            8.123456789012345,
			ThroughputFPS:        123.10000000000001,
			PowerWatts:           25.7,
			EfficiencyFPSPerWatt: 4.790272373540856,
			TemperatureCelsius:   55.25,
			Cores:                1,
			BatchSize:            1,
		},
		{
			Model:                "yolov5s-coco",
			Configuration:        "cores4_batch16",
			Timestamp:            "2025-08-03T19:15:02Z",
			LatencyMS:            21.0,
			ThroughputFPS:        761.904761904762,
			PowerWatts:           44.9,
			EfficiencyFPSPerWatt: 16.969,
			TemperatureCelsius:   67.0,
			Cores:                4,
			BatchSize:            16,
		},
	}
}

func TestCSVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "measurements.csv")
	original := sampleMeasurements()

	require.NoError(t, benchmark.WriteCSV(path, original))

	loaded, err := benchmark.ReadCSV(path)
	require.NoError(t, err)

	// Same count and bit-identical values: no precision loss beyond the
	// float representation itself.
	require.Len(t, loaded, len(original))
	assert.Equal(t, original, loaded)
}

func TestWriteJSONRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "measurements.json")
	original := sampleMeasurements()

	require.NoError(t, benchmark.WriteJSON(path, original))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var loaded []benchmark.Measurement
	require.NoError(t, json.Unmarshal(data, &loaded))
	assert.Equal(t, original, loaded)
}

func TestReadCSVRejectsWrongLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,b\n1,2\n"), 0o600))

	_, err := benchmark.ReadCSV(path)
	require.Error(t, err)
}

func TestWriteCSVEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	require.NoError(t, benchmark.WriteCSV(path, nil))

	loaded, err := benchmark.ReadCSV(path)
	require.NoError(t, err)
	assert.Empty(t, loaded)
}
