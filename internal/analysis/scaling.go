package analysis

import (
	"sort"

	"codeberg.org/mutker/benchval/internal/benchmark"
	"gonum.org/v1/gonum/stat"
)

// CorePerformance is the average performance at one core count within a
// (model, batch size) group.
type CorePerformance struct {
	Cores         int     `json:"cores"`
	AvgThroughput float64 `json:"avg_throughput"`
	AvgPower      float64 `json:"avg_power"`
	AvgEfficiency float64 `json:"avg_efficiency"`
	Count         int     `json:"measurement_count"`
}

// ScalingMetrics compares one core count against the 1-core baseline.
// A scaling efficiency of 1.0 is ideal linear speedup.
type ScalingMetrics struct {
	Cores              int     `json:"cores"`
	ScalingFactor      float64 `json:"scaling_factor"`
	ScalingEfficiency  float64 `json:"scaling_efficiency"`
	ImprovementPercent float64 `json:"throughput_improvement_percent"`
}

// ScalingResult is the multi-core scaling analysis of one
// (model, batch size) group.
type ScalingResult struct {
	Model           string            `json:"model"`
	BatchSize       int               `json:"batch_size"`
	CorePerformance []CorePerformance `json:"core_performance"`
	Scaling         []ScalingMetrics  `json:"scaling_metrics"`
}

// AnalyzeScaling groups measurements by (model, batch size) and compares
// throughput across core counts against the 1-core baseline. Groups with
// fewer than two distinct core counts, or without a 1-core baseline, are
// skipped: a natural gap in coverage, not an error.
func AnalyzeScaling(measurements []benchmark.Measurement) []ScalingResult {
	type comboKey struct {
		model string
		batch int
	}

	combos := make(map[comboKey]map[int][]benchmark.Measurement)
	for i := range measurements {
		m := &measurements[i]
		key := comboKey{model: m.Model, batch: m.BatchSize}
		if combos[key] == nil {
			combos[key] = make(map[int][]benchmark.Measurement)
		}
		combos[key][m.Cores] = append(combos[key][m.Cores], *m)
	}

	keys := make([]comboKey, 0, len(combos))
	for key := range combos {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].model != keys[j].model {
			return keys[i].model < keys[j].model
		}

		return keys[i].batch < keys[j].batch
	})

	results := make([]ScalingResult, 0, len(keys))
	for _, key := range keys {
		byCores := combos[key]
		if len(byCores) < 2 {
			continue
		}
		if _, ok := byCores[1]; !ok {
			continue
		}

		result := ScalingResult{Model: key.model, BatchSize: key.batch}

		coreCounts := make([]int, 0, len(byCores))
		for cores := range byCores {
			coreCounts = append(coreCounts, cores)
		}
		sort.Ints(coreCounts)

		performance := make(map[int]CorePerformance, len(coreCounts))
		for _, cores := range coreCounts {
			group := byCores[cores]
			perf := CorePerformance{
				Cores:         cores,
				AvgThroughput: stat.Mean(MetricValues(group, MetricThroughput), nil),
				AvgPower:      stat.Mean(MetricValues(group, MetricPower), nil),
				AvgEfficiency: stat.Mean(MetricValues(group, MetricEfficiency), nil),
				Count:         len(group),
			}
			performance[cores] = perf
			result.CorePerformance = append(result.CorePerformance, perf)
		}

		baseline := performance[1].AvgThroughput
		for _, cores := range coreCounts {
			if cores == 1 {
				continue
			}

			metrics := ScalingMetrics{Cores: cores}
			if baseline > 0 {
				metrics.ScalingFactor = performance[cores].AvgThroughput / baseline
				metrics.ScalingEfficiency = metrics.ScalingFactor / float64(cores)
				metrics.ImprovementPercent = (metrics.ScalingFactor - 1) * 100
			}
			result.Scaling = append(result.Scaling, metrics)
		}

		results = append(results, result)
	}

	return results
}
