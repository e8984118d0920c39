package analysis

import (
	"fmt"
	"sort"

	"codeberg.org/mutker/benchval/internal/benchmark"
	"gonum.org/v1/gonum/stat"
)

// ConfigKey is the full configuration grouping key
type ConfigKey struct {
	Model     string `json:"model"`
	Cores     int    `json:"cores"`
	BatchSize int    `json:"batch_size"`
}

func (k ConfigKey) String() string {
	return fmt.Sprintf("%s_cores%d_batch%d", k.Model, k.Cores, k.BatchSize)
}

// ConfigSummary aggregates one configuration group
type ConfigSummary struct {
	Key           ConfigKey `json:"configuration"`
	Count         int       `json:"measurement_count"`
	AvgThroughput float64   `json:"avg_throughput"`
	MaxThroughput float64   `json:"max_throughput"`
	AvgEfficiency float64   `json:"avg_efficiency"`
	MaxEfficiency float64   `json:"max_efficiency"`
	AvgPower      float64   `json:"avg_power"`
}

// PeakEntry is the single measurement attaining a global maximum,
// with its configuration context.
type PeakEntry struct {
	Value       float64               `json:"value"`
	Key         ConfigKey             `json:"configuration"`
	Measurement benchmark.Measurement `json:"measurement"`
}

// PeakReport is the result of one peak-finding pass. Throughput and
// Efficiency winners are tracked independently and may differ.
type PeakReport struct {
	Throughput *PeakEntry      `json:"peak_throughput,omitempty"`
	Efficiency *PeakEntry      `json:"peak_efficiency,omitempty"`
	Rankings   []ConfigSummary `json:"rankings"`
}

// TopN returns the n highest-ranked configuration groups
func (r *PeakReport) TopN(n int) []ConfigSummary {
	if n > len(r.Rankings) {
		n = len(r.Rankings)
	}

	return r.Rankings[:n]
}

// FindPeaks folds the measurement sequence into a PeakReport. Ties are
// broken by first encounter: the comparison is strict, and the sequence
// order (which the loader keeps deterministic) decides.
func FindPeaks(measurements []benchmark.Measurement) *PeakReport {
	type group struct {
		key          ConfigKey
		measurements []benchmark.Measurement
	}

	groups := make(map[ConfigKey]*group)
	order := make([]*group, 0)

	for i := range measurements {
		m := &measurements[i]
		key := ConfigKey{Model: m.Model, Cores: m.Cores, BatchSize: m.BatchSize}
		g, ok := groups[key]
		if !ok {
			g = &group{key: key}
			groups[key] = g
			order = append(order, g)
		}
		g.measurements = append(g.measurements, *m)
	}

	report := &PeakReport{Rankings: make([]ConfigSummary, 0, len(order))}

	for i := range measurements {
		m := &measurements[i]
		key := ConfigKey{Model: m.Model, Cores: m.Cores, BatchSize: m.BatchSize}

		if report.Throughput == nil || m.ThroughputFPS > report.Throughput.Value {
			report.Throughput = &PeakEntry{Value: m.ThroughputFPS, Key: key, Measurement: *m}
		}
		if report.Efficiency == nil || m.EfficiencyFPSPerWatt > report.Efficiency.Value {
			report.Efficiency = &PeakEntry{Value: m.EfficiencyFPSPerWatt, Key: key, Measurement: *m}
		}
	}

	for _, g := range order {
		throughputs := MetricValues(g.measurements, MetricThroughput)
		efficiencies := MetricValues(g.measurements, MetricEfficiency)
		powers := MetricValues(g.measurements, MetricPower)

		report.Rankings = append(report.Rankings, ConfigSummary{
			Key:           g.key,
			Count:         len(g.measurements),
			AvgThroughput: stat.Mean(throughputs, nil),
			MaxThroughput: maxOf(throughputs),
			AvgEfficiency: stat.Mean(efficiencies, nil),
			MaxEfficiency: maxOf(efficiencies),
			AvgPower:      stat.Mean(powers, nil),
		})
	}

	// Stable sort keeps first-encountered order among equal averages
	sort.SliceStable(report.Rankings, func(i, j int) bool {
		return report.Rankings[i].AvgThroughput > report.Rankings[j].AvgThroughput
	})

	return report
}

func maxOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}

	return m
}
