package benchmark

// Measurement is a single retained hardware benchmark run. Records are
// constructed once at load time and never mutated afterwards.
type Measurement struct {
	Model                string  `json:"model"`
	Configuration        string  `json:"configuration"`
	Timestamp            string  `json:"timestamp"`
	LatencyMS            float64 `json:"latency_ms"`
	ThroughputFPS        float64 `json:"throughput_fps"`
	PowerWatts           float64 `json:"power_watts"`
	EfficiencyFPSPerWatt float64 `json:"efficiency_fps_per_watt"`
	TemperatureCelsius   float64 `json:"temperature_celsius"`
	Cores                int     `json:"cores"`
	BatchSize            int     `json:"batch_size"`
}

// Dataset is the flattened, ordered measurement sequence plus the source
// file's self-reported metadata. The order is deterministic (models and
// configurations sorted), which downstream tie-breaking relies on.
type Dataset struct {
	Device               string        `json:"device"`
	ReportedMeasurements int           `json:"reported_measurements"`
	ReportedSuccessRate  float64       `json:"reported_success_rate"`
	Measurements         []Measurement `json:"measurements"`
}

// Len returns the number of retained measurements
func (d *Dataset) Len() int {
	return len(d.Measurements)
}

// Models returns the number of distinct models in the dataset
func (d *Dataset) Models() int {
	seen := make(map[string]struct{})
	for i := range d.Measurements {
		seen[d.Measurements[i].Model] = struct{}{}
	}

	return len(seen)
}

// Configurations returns the number of distinct configuration labels
func (d *Dataset) Configurations() int {
	seen := make(map[string]struct{})
	for i := range d.Measurements {
		seen[d.Measurements[i].Configuration] = struct{}{}
	}

	return len(seen)
}

// Period returns the earliest and latest timestamps in the dataset.
// Timestamps are compared lexically, which is correct for the RFC 3339
// style stamps the benchmark harness emits.
func (d *Dataset) Period() (start, end string) {
	for i := range d.Measurements {
		ts := d.Measurements[i].Timestamp
		if ts == "" {
			continue
		}
		if start == "" || ts < start {
			start = ts
		}
		if end == "" || ts > end {
			end = ts
		}
	}

	return start, end
}
