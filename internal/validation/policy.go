package validation

// Policy holds the tolerance bands for every consistency check. The two
// presets reflect the two regimes the benchmark harness has historically
// used; neither is hard-coded anywhere downstream.
type Policy struct {
	// Efficiency = throughput / power
	EfficiencyAbsFloor        float64 `json:"efficiency_abs_floor"`
	EfficiencyRelTol          float64 `json:"efficiency_rel_tol"`
	SkipNonPositiveEfficiency bool    `json:"skip_non_positive_efficiency"`

	// Throughput = batch_size / (latency_ms / 1000)
	ThroughputRelTol float64 `json:"throughput_rel_tol"`

	// Physical plausibility ranges
	LatencyMinMS      float64 `json:"latency_min_ms"`
	LatencyMaxMS      float64 `json:"latency_max_ms"`
	ThroughputMinFPS  float64 `json:"throughput_min_fps"`
	ThroughputMaxFPS  float64 `json:"throughput_max_fps"`
	PowerMinWatts     float64 `json:"power_min_watts"`
	PowerMaxWatts     float64 `json:"power_max_watts"`
	TemperatureMinC   float64 `json:"temperature_min_c"`
	TemperatureMaxC   float64 `json:"temperature_max_c"`
}

// StrictPolicy is the regime used when extracting verified measurements:
// 0.1% relative tolerance with a 0.001 absolute floor.
func StrictPolicy() Policy {
	p := basePolicy()
	p.EfficiencyAbsFloor = 0.001
	p.EfficiencyRelTol = 0.001

	return p
}

// LoosePolicy is the regime used when re-validating published results:
// a flat 0.01 band, skipping records without a positive efficiency.
func LoosePolicy() Policy {
	p := basePolicy()
	p.EfficiencyAbsFloor = 0.01
	p.EfficiencyRelTol = 0
	p.SkipNonPositiveEfficiency = true

	return p
}

func basePolicy() Policy {
	return Policy{
		ThroughputRelTol: 0.05,
		LatencyMinMS:     0.1,
		LatencyMaxMS:     1000,
		ThroughputMinFPS: 1,
		ThroughputMaxFPS: 10000,
		PowerMinWatts:    10,
		PowerMaxWatts:    100,
		TemperatureMinC:  20,
		TemperatureMaxC:  100,
	}
}
