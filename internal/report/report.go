package report

import (
	"time"

	"codeberg.org/mutker/benchval/internal/analysis"
	"codeberg.org/mutker/benchval/internal/benchmark"
	"codeberg.org/mutker/benchval/internal/validation"
)

// Verdict thresholds from the benchmark acceptance criteria
const (
	excellentRate = 95
	goodRate      = 90

	highValiditySamples   = 1000
	mediumValiditySamples = 100
)

type Period struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type DatasetInfo struct {
	Device               string `json:"device"`
	TotalMeasurements    int    `json:"total_measurements"`
	ReportedMeasurements int    `json:"reported_measurements"`
	ModelsTested         int    `json:"models_tested"`
	ConfigurationsTested int    `json:"configurations_tested"`
	MeasurementPeriod    Period `json:"measurement_period"`
}

type PowerRange struct {
	MinWatts float64 `json:"min_watts"`
	MaxWatts float64 `json:"max_watts"`
}

type PeakPerformance struct {
	PeakThroughput        *analysis.PeakEntry      `json:"peak_throughput,omitempty"`
	PeakEfficiency        *analysis.PeakEntry      `json:"peak_efficiency,omitempty"`
	MinLatencyMS          float64                  `json:"min_latency_ms"`
	MaxTemperatureCelsius float64                  `json:"max_temperature_celsius"`
	PowerRange            PowerRange               `json:"power_range"`
	TopConfigurations     []analysis.ConfigSummary `json:"top_configurations"`
}

type Assessment struct {
	ConsistencyRate     float64 `json:"mathematical_consistency_rate"`
	DataQuality         string  `json:"data_quality"`
	StatisticalValidity string  `json:"statistical_validity"`
	Status              string  `json:"validation_status"`
}

// Result is the composed output of one analysis run
type Result struct {
	GeneratedAt           time.Time                       `json:"generated_at"`
	Dataset               DatasetInfo                     `json:"dataset"`
	PerformanceStatistics map[analysis.Metric]analysis.Stats `json:"performance_statistics"`
	PeakPerformance       PeakPerformance                 `json:"peak_performance"`
	MulticoreScaling      []analysis.ScalingResult        `json:"multicore_scaling"`
	Validation            *validation.Report              `json:"validation"`
	Assessment            Assessment                      `json:"overall_assessment"`
}

// Options tune the assembled report without changing any analysis
type Options struct {
	// TopN bounds the ranked configuration list
	TopN int
	// MinSamples is the retained-sample floor for a PASSED verdict
	MinSamples int
}

// Passed reports the overall verdict
func (r *Result) Passed() bool {
	return r.Assessment.Status == "PASSED"
}

// Build composes the independent analysis outputs into one result with an
// overall verdict. It performs no analysis of its own.
func Build(
	ds *benchmark.Dataset,
	stats map[analysis.Metric]analysis.Stats,
	peaks *analysis.PeakReport,
	scaling []analysis.ScalingResult,
	checks *validation.Report,
	opts Options,
) *Result {
	start, end := ds.Period()

	result := &Result{
		GeneratedAt: time.Now().UTC(),
		Dataset: DatasetInfo{
			Device:               ds.Device,
			TotalMeasurements:    ds.Len(),
			ReportedMeasurements: ds.ReportedMeasurements,
			ModelsTested:         ds.Models(),
			ConfigurationsTested: ds.Configurations(),
			MeasurementPeriod:    Period{Start: start, End: end},
		},
		PerformanceStatistics: stats,
		PeakPerformance: PeakPerformance{
			PeakThroughput:    peaks.Throughput,
			PeakEfficiency:    peaks.Efficiency,
			TopConfigurations: peaks.TopN(opts.TopN),
		},
		MulticoreScaling: scaling,
		Validation:       checks,
	}

	if latency, ok := stats[analysis.MetricLatency]; ok {
		result.PeakPerformance.MinLatencyMS = latency.Min
	}
	if temperature, ok := stats[analysis.MetricTemperature]; ok {
		result.PeakPerformance.MaxTemperatureCelsius = temperature.Max
	}
	if power, ok := stats[analysis.MetricPower]; ok {
		result.PeakPerformance.PowerRange = PowerRange{MinWatts: power.Min, MaxWatts: power.Max}
	}

	result.Assessment = assess(checks.SuccessRate(), ds.Len(), opts.MinSamples)

	return result
}

func assess(rate float64, samples, minSamples int) Assessment {
	a := Assessment{ConsistencyRate: rate}

	switch {
	case rate >= excellentRate:
		a.DataQuality = "EXCELLENT"
	case rate >= goodRate:
		a.DataQuality = "GOOD"
	default:
		a.DataQuality = "POOR"
	}

	switch {
	case samples > highValiditySamples:
		a.StatisticalValidity = "HIGH"
	case samples > mediumValiditySamples:
		a.StatisticalValidity = "MEDIUM"
	default:
		a.StatisticalValidity = "LOW"
	}

	if rate >= excellentRate && samples > minSamples {
		a.Status = "PASSED"
	} else {
		a.Status = "FAILED"
	}

	return a
}
