package benchmark

import (
	"encoding/json"
	"os"
	"sort"
	"strings"

	"codeberg.org/mutker/benchval/internal/errors"
	"codeberg.org/mutker/benchval/internal/logger"
)

// Raw file shapes, matching the benchmark harness output exactly
type rawFile struct {
	Metadata        rawMetadata                     `json:"benchmark_metadata"`
	Summary         rawSummary                      `json:"summary_statistics"`
	DetailedResults map[string]map[string]rawConfig `json:"detailed_results"`
}

type rawMetadata struct {
	HardwareDevice string `json:"hardware_device"`
}

type rawSummary struct {
	TotalMeasurements int     `json:"total_measurements"`
	SuccessRate       float64 `json:"success_rate"`
}

type rawConfig struct {
	Measurements []rawMeasurement `json:"measurements"`
}

type rawMeasurement struct {
	Timestamp            string  `json:"timestamp"`
	LatencyMS            float64 `json:"latency_ms"`
	ThroughputFPS        float64 `json:"throughput_fps"`
	PowerWatts           float64 `json:"power_consumption_watts"`
	EfficiencyFPSPerWatt float64 `json:"efficiency_fps_per_watt"`
	TemperatureCelsius   float64 `json:"temperature_celsius"`
	IsValid              *bool   `json:"is_valid"`
	ModelName            string  `json:"model_name"`
	CoreCount            int     `json:"core_count"`
	BatchSize            int     `json:"batch_size"`
}

// Load reads a benchmark results file and flattens it into a Dataset.
// Only records whose is_valid flag is absent or true are retained; a
// missing flag means the harness predates the flag and the record is real.
func Load(path string) (*Dataset, error) {
	errFactory := errors.New()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errFactory.WithData(errors.ErrDataNotFound, path)
		}

		return nil, errFactory.Wrap(errors.ErrDataNotFound, err)
	}

	var raw rawFile
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errFactory.Wrap(errors.ErrMalformedData, err)
	}

	if len(raw.DetailedResults) == 0 {
		return nil, errFactory.WithData(errors.ErrMalformedData, "missing detailed_results")
	}

	ds := &Dataset{
		Device:               raw.Metadata.HardwareDevice,
		ReportedMeasurements: raw.Summary.TotalMeasurements,
		ReportedSuccessRate:  raw.Summary.SuccessRate,
	}

	skipped := 0

	// Map iteration order is randomized; sort keys so the flattened
	// sequence is stable across runs.
	for _, model := range sortedKeys(raw.DetailedResults) {
		configs := raw.DetailedResults[model]
		for _, configName := range sortedKeys(configs) {
			for i := range configs[configName].Measurements {
				m := &configs[configName].Measurements[i]
				if m.IsValid != nil && !*m.IsValid {
					skipped++
					continue
				}

				ds.Measurements = append(ds.Measurements, flatten(model, configName, m))
			}
		}
	}

	logger.Info().
		Str("device", ds.Device).
		Int("retained", ds.Len()).
		Int("skipped", skipped).
		Msg("Loaded benchmark measurements")

	return ds, nil
}

func flatten(model, configName string, m *rawMeasurement) Measurement {
	name := m.ModelName
	if name == "" {
		name = model
	}

	cores := m.CoreCount
	if cores <= 0 {
		cores = parseConfigLabel(configName, "cores")
	}

	batch := m.BatchSize
	if batch <= 0 {
		batch = parseConfigLabel(configName, "batch")
	}

	return Measurement{
		Model:                name,
		Configuration:        configName,
		Timestamp:            m.Timestamp,
		LatencyMS:            m.LatencyMS,
		ThroughputFPS:        m.ThroughputFPS,
		PowerWatts:           m.PowerWatts,
		EfficiencyFPSPerWatt: m.EfficiencyFPSPerWatt,
		TemperatureCelsius:   m.TemperatureCelsius,
		Cores:                cores,
		BatchSize:            batch,
	}
}

// parseConfigLabel extracts the integer following a marker ("cores",
// "batch") in a configuration label such as "cores2_batch8". Labels
// without a recognizable marker default to 1 rather than being dropped;
// a malformed label is not a reason to discard the measurement.
func parseConfigLabel(label, marker string) int {
	idx := strings.Index(label, marker)
	if idx < 0 {
		return 1
	}

	rest := label[idx+len(marker):]
	end := 0
	for end < len(rest) && rest[end] >= '0' && rest[end] <= '9' {
		end++
	}
	if end == 0 {
		return 1
	}

	value := 0
	for _, c := range rest[:end] {
		value = value*10 + int(c-'0')
	}
	if value <= 0 {
		return 1
	}

	return value
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return keys
}
