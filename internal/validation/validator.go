package validation

import (
	"math"

	"codeberg.org/mutker/benchval/internal/benchmark"
)

// CheckKind identifies one consistency or plausibility check
type CheckKind string

const (
	CheckEfficiency  CheckKind = "efficiency_calculation"
	CheckThroughput  CheckKind = "throughput_calculation"
	CheckLatency     CheckKind = "invalid_latency"
	CheckThroughputR CheckKind = "invalid_throughput"
	CheckPower       CheckKind = "invalid_power"
	CheckTemperature CheckKind = "invalid_temperature"
)

// Failure records one failed check with enough context to trace it back
// to the offending measurement.
type Failure struct {
	Index         int       `json:"measurement_index"`
	Check         CheckKind `json:"check"`
	Model         string    `json:"model"`
	Configuration string    `json:"configuration"`
	Expected      float64   `json:"expected"`
	Actual        float64   `json:"actual"`
	Error         float64   `json:"error"`
}

// CheckSummary aggregates pass counts for one check kind
type CheckSummary struct {
	Checks      int     `json:"checks"`
	Failures    int     `json:"failures"`
	PassPercent float64 `json:"pass_percent"`
}

// Report is the full validation outcome. It is plain data: per-record
// failures never abort a run.
type Report struct {
	TotalMeasurements int                        `json:"total_measurements"`
	TotalChecks       int                        `json:"total_checks"`
	TotalFailures     int                        `json:"total_failures"`
	Failures          []Failure                  `json:"failed_validations"`
	Summaries         map[CheckKind]CheckSummary `json:"check_summaries"`
	Policy            Policy                     `json:"policy"`
}

// SuccessRate returns (checks - failures) / checks as a percentage.
// An empty report validates trivially.
func (r *Report) SuccessRate() float64 {
	if r.TotalChecks == 0 {
		return 100
	}

	return float64(r.TotalChecks-r.TotalFailures) / float64(r.TotalChecks) * 100
}

// Validate checks every measurement against the policy and returns the
// aggregate report. Input records are never mutated.
func Validate(measurements []benchmark.Measurement, policy Policy) *Report {
	report := &Report{
		TotalMeasurements: len(measurements),
		Summaries:         make(map[CheckKind]CheckSummary),
		Policy:            policy,
	}

	for i := range measurements {
		m := &measurements[i]

		checkEfficiency(report, i, m, policy)
		checkThroughput(report, i, m, policy)
		checkRange(report, i, m, CheckLatency, m.LatencyMS, policy.LatencyMinMS, policy.LatencyMaxMS)
		checkRange(report, i, m, CheckThroughputR, m.ThroughputFPS, policy.ThroughputMinFPS, policy.ThroughputMaxFPS)
		checkRange(report, i, m, CheckPower, m.PowerWatts, policy.PowerMinWatts, policy.PowerMaxWatts)
		checkRange(report, i, m, CheckTemperature, m.TemperatureCelsius, policy.TemperatureMinC, policy.TemperatureMaxC)
	}

	for kind, summary := range report.Summaries {
		if summary.Checks > 0 {
			summary.PassPercent = float64(summary.Checks-summary.Failures) / float64(summary.Checks) * 100
		} else {
			summary.PassPercent = 100
		}
		report.Summaries[kind] = summary
	}

	return report
}

func checkEfficiency(report *Report, index int, m *benchmark.Measurement, policy Policy) {
	if policy.SkipNonPositiveEfficiency && m.EfficiencyFPSPerWatt <= 0 {
		return
	}

	expected := 0.0
	if m.PowerWatts > 0 {
		expected = m.ThroughputFPS / m.PowerWatts
	}

	diff := math.Abs(expected - m.EfficiencyFPSPerWatt)
	tolerance := math.Max(policy.EfficiencyAbsFloor, m.EfficiencyFPSPerWatt*policy.EfficiencyRelTol)

	record(report, diff <= tolerance, Failure{
		Index:         index,
		Check:         CheckEfficiency,
		Model:         m.Model,
		Configuration: m.Configuration,
		Expected:      expected,
		Actual:        m.EfficiencyFPSPerWatt,
		Error:         diff,
	})
}

func checkThroughput(report *Report, index int, m *benchmark.Measurement, policy Policy) {
	if m.LatencyMS <= 0 {
		return
	}

	expected := float64(m.BatchSize) / (m.LatencyMS / 1000)
	diff := math.Abs(expected - m.ThroughputFPS)
	tolerance := m.ThroughputFPS * policy.ThroughputRelTol

	record(report, diff <= tolerance, Failure{
		Index:         index,
		Check:         CheckThroughput,
		Model:         m.Model,
		Configuration: m.Configuration,
		Expected:      expected,
		Actual:        m.ThroughputFPS,
		Error:         diff,
	})
}

func checkRange(report *Report, index int, m *benchmark.Measurement, kind CheckKind, value, minValue, maxValue float64) {
	expected := value
	if value < minValue {
		expected = minValue
	} else if value > maxValue {
		expected = maxValue
	}

	record(report, value >= minValue && value <= maxValue, Failure{
		Index:         index,
		Check:         kind,
		Model:         m.Model,
		Configuration: m.Configuration,
		Expected:      expected,
		Actual:        value,
		Error:         math.Abs(value - expected),
	})
}

func record(report *Report, passed bool, failure Failure) {
	summary := report.Summaries[failure.Check]
	summary.Checks++
	report.TotalChecks++

	if !passed {
		summary.Failures++
		report.TotalFailures++
		report.Failures = append(report.Failures, failure)
	}

	report.Summaries[failure.Check] = summary
}
