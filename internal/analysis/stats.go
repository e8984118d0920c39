package analysis

import (
	"math"
	"sort"

	"codeberg.org/mutker/benchval/internal/benchmark"
	"codeberg.org/mutker/benchval/internal/errors"
	"codeberg.org/mutker/benchval/internal/logger"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

const confidenceLevel = 0.95

// Metric names one of the five measured quantities
type Metric string

const (
	MetricLatency     Metric = "latency_ms"
	MetricThroughput  Metric = "throughput_fps"
	MetricPower       Metric = "power_watts"
	MetricEfficiency  Metric = "efficiency_fps_per_watt"
	MetricTemperature Metric = "temperature_celsius"
)

// Metrics lists all measured quantities in reporting order
var Metrics = []Metric{
	MetricLatency,
	MetricThroughput,
	MetricPower,
	MetricEfficiency,
	MetricTemperature,
}

// ConfidenceInterval is a two-sided Student-t interval around the mean
type ConfidenceInterval struct {
	Lower         float64 `json:"lower"`
	Upper         float64 `json:"upper"`
	MarginOfError float64 `json:"margin_of_error"`
}

// Stats is an immutable descriptive summary of one metric
type Stats struct {
	Count                  int                 `json:"count"`
	Mean                   float64             `json:"mean"`
	Std                    float64             `json:"std"`
	Min                    float64             `json:"min"`
	Max                    float64             `json:"max"`
	Median                 float64             `json:"median"`
	Q25                    float64             `json:"q25"`
	Q75                    float64             `json:"q75"`
	CoefficientOfVariation float64             `json:"coefficient_of_variation"`
	ConfidenceInterval95   *ConfidenceInterval `json:"confidence_interval_95,omitempty"`
}

// Describe computes descriptive statistics over values. The standard
// deviation is the sample estimate (one degree of freedom subtracted);
// quartiles use linear interpolation between order statistics.
func Describe(values []float64) Stats {
	n := len(values)
	if n == 0 {
		return Stats{}
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	mean := stat.Mean(sorted, nil)
	std := 0.0
	if n > 1 {
		std = stat.StdDev(sorted, nil)
	}

	cv := 0.0
	if mean != 0 {
		cv = std / mean
	}

	return Stats{
		Count:                  n,
		Mean:                   mean,
		Std:                    std,
		Min:                    sorted[0],
		Max:                    sorted[n-1],
		Median:                 percentile(sorted, 50),
		Q25:                    percentile(sorted, 25),
		Q75:                    percentile(sorted, 75),
		CoefficientOfVariation: cv,
	}
}

// DescribeInterval computes descriptive statistics plus a 95% two-sided
// confidence interval: margin = t(0.975, n-1) * std / sqrt(n). Fewer than
// two samples cannot support an interval estimate; the descriptive part is
// still returned alongside the insufficient-data error.
func DescribeInterval(values []float64) (Stats, error) {
	s := Describe(values)
	if s.Count < 2 {
		return s, errors.New().WithData(errors.ErrInsufficientData, s.Count)
	}

	t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(s.Count - 1)}
	critical := t.Quantile(1 - (1-confidenceLevel)/2)
	margin := critical * s.Std / math.Sqrt(float64(s.Count))

	s.ConfidenceInterval95 = &ConfidenceInterval{
		Lower:         s.Mean - margin,
		Upper:         s.Mean + margin,
		MarginOfError: margin,
	}

	return s, nil
}

// Aggregate summarizes every metric over the given measurements.
// Intervals are computed for all metrics except temperature; a metric with
// too few samples keeps its descriptive statistics with no interval.
func Aggregate(measurements []benchmark.Measurement) map[Metric]Stats {
	result := make(map[Metric]Stats, len(Metrics))

	for _, metric := range Metrics {
		values := MetricValues(measurements, metric)
		if len(values) == 0 {
			continue
		}

		if metric == MetricTemperature {
			result[metric] = Describe(values)
			continue
		}

		s, err := DescribeInterval(values)
		if err != nil {
			logger.Debug().
				Str("metric", string(metric)).
				Int("samples", len(values)).
				Msg("Too few samples for a confidence interval")
		}
		result[metric] = s
	}

	return result
}

// AggregateGroup summarizes every metric over the measurements of one
// configuration group.
func AggregateGroup(measurements []benchmark.Measurement, model string, cores, batchSize int) map[Metric]Stats {
	group := make([]benchmark.Measurement, 0)
	for i := range measurements {
		m := &measurements[i]
		if m.Model == model && m.Cores == cores && m.BatchSize == batchSize {
			group = append(group, *m)
		}
	}

	return Aggregate(group)
}

// MetricValues extracts one metric column from the measurement sequence
func MetricValues(measurements []benchmark.Measurement, metric Metric) []float64 {
	values := make([]float64, 0, len(measurements))
	for i := range measurements {
		m := &measurements[i]
		switch metric {
		case MetricLatency:
			values = append(values, m.LatencyMS)
		case MetricThroughput:
			values = append(values, m.ThroughputFPS)
		case MetricPower:
			values = append(values, m.PowerWatts)
		case MetricEfficiency:
			values = append(values, m.EfficiencyFPSPerWatt)
		case MetricTemperature:
			values = append(values, m.TemperatureCelsius)
		}
	}

	return values
}

// percentile interpolates linearly at rank h = (n-1) * p / 100 over
// sorted values
func percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}

	h := float64(n-1) * p / 100
	lo := int(math.Floor(h))
	hi := int(math.Ceil(h))
	if lo == hi {
		return sorted[lo]
	}

	return sorted[lo] + (h-float64(lo))*(sorted[hi]-sorted[lo])
}
