package analysis_test

import (
	"math"
	"os"
	"testing"

	"codeberg.org/mutker/benchval/internal/analysis"
	"codeberg.org/mutker/benchval/internal/benchmark"
	"codeberg.org/mutker/benchval/internal/errors"
	"codeberg.org/mutker/benchval/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.Init(false, false, true)
	os.Exit(m.Run())
}

func TestDescribe(t *testing.T) {
	s := analysis.Describe([]float64{5, 1, 3, 2, 4})

	assert.Equal(t, 5, s.Count)
	assert.InDelta(t, 3.0, s.Mean, 1e-12)
	assert.InDelta(t, math.Sqrt(2.5), s.Std, 1e-12, "sample std with one degree of freedom subtracted")
	assert.InDelta(t, 1.0, s.Min, 1e-12)
	assert.InDelta(t, 5.0, s.Max, 1e-12)
	assert.InDelta(t, 3.0, s.Median, 1e-12)
	assert.InDelta(t, 2.0, s.Q25, 1e-12)
	assert.InDelta(t, 4.0, s.Q75, 1e-12)
	assert.InDelta(t, math.Sqrt(2.5)/3.0, s.CoefficientOfVariation, 1e-12)
	assert.Nil(t, s.ConfidenceInterval95)
}

func TestDescribeQuartileInterpolation(t *testing.T) {
	// Even count: quartile ranks fall between order statistics
	s := analysis.Describe([]float64{1, 2, 3, 4})

	assert.InDelta(t, 2.5, s.Median, 1e-12)
	assert.InDelta(t, 1.75, s.Q25, 1e-12)
	assert.InDelta(t, 3.25, s.Q75, 1e-12)
}

func TestConfidenceIntervalMatchesStudentT(t *testing.T) {
	values := []float64{24.1, 25.3, 24.8, 25.9, 24.5, 25.1, 24.9, 25.6, 24.3, 25.0}

	s, err := analysis.DescribeInterval(values)
	require.NoError(t, err)
	require.NotNil(t, s.ConfidenceInterval95)

	// t(0.975, df=9), the same critical value scipy.stats.t.ppf yields
	const tCritical = 2.2621571627409915
	margin := tCritical * s.Std / math.Sqrt(float64(s.Count))

	assert.InEpsilon(t, margin, s.ConfidenceInterval95.MarginOfError, 1e-9)
	assert.InEpsilon(t, s.Mean-margin, s.ConfidenceInterval95.Lower, 1e-9)
	assert.InEpsilon(t, s.Mean+margin, s.ConfidenceInterval95.Upper, 1e-9)
}

func TestCoefficientOfVariationZeroWhenMeanZero(t *testing.T) {
	s := analysis.Describe([]float64{-2, 2, -2, 2})

	assert.Zero(t, s.Mean)
	assert.Greater(t, s.Std, 0.0)
	assert.Zero(t, s.CoefficientOfVariation)
}

func TestDescribeIntervalInsufficientData(t *testing.T) {
	s, err := analysis.DescribeInterval([]float64{42.0})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrInsufficientData))

	// Descriptive statistics still come back, only the interval is missing
	assert.Equal(t, 1, s.Count)
	assert.InDelta(t, 42.0, s.Mean, 1e-12)
	assert.Nil(t, s.ConfidenceInterval95)
}

func TestDescribeEmpty(t *testing.T) {
	s := analysis.Describe(nil)
	assert.Zero(t, s.Count)
	assert.Zero(t, s.CoefficientOfVariation)
}

func TestAggregate(t *testing.T) {
	measurements := []benchmark.Measurement{
		{Model: "m", Cores: 1, BatchSize: 1, LatencyMS: 10, ThroughputFPS: 100, PowerWatts: 25, EfficiencyFPSPerWatt: 4, TemperatureCelsius: 55},
		{Model: "m", Cores: 1, BatchSize: 1, LatencyMS: 12, ThroughputFPS: 83, PowerWatts: 24, EfficiencyFPSPerWatt: 3.5, TemperatureCelsius: 57},
		{Model: "m", Cores: 2, BatchSize: 1, LatencyMS: 11, ThroughputFPS: 180, PowerWatts: 33, EfficiencyFPSPerWatt: 5.5, TemperatureCelsius: 60},
	}

	stats := analysis.Aggregate(measurements)
	require.Len(t, stats, 5)

	for _, metric := range analysis.Metrics {
		s, ok := stats[metric]
		require.True(t, ok, string(metric))
		assert.Equal(t, 3, s.Count)

		if metric == analysis.MetricTemperature {
			assert.Nil(t, s.ConfidenceInterval95, "temperature is exempt from interval estimates")
		} else {
			assert.NotNil(t, s.ConfidenceInterval95, string(metric))
		}
	}

	throughput := stats[analysis.MetricThroughput]
	assert.InDelta(t, (100.0+83.0+180.0)/3, throughput.Mean, 1e-12)
}

func TestAggregateGroup(t *testing.T) {
	measurements := []benchmark.Measurement{
		{Model: "m", Cores: 1, BatchSize: 1, ThroughputFPS: 100},
		{Model: "m", Cores: 1, BatchSize: 1, ThroughputFPS: 110},
		{Model: "m", Cores: 4, BatchSize: 1, ThroughputFPS: 350},
		{Model: "other", Cores: 1, BatchSize: 1, ThroughputFPS: 999},
	}

	stats := analysis.AggregateGroup(measurements, "m", 1, 1)
	require.NotEmpty(t, stats)
	assert.Equal(t, 2, stats[analysis.MetricThroughput].Count)
	assert.InDelta(t, 105.0, stats[analysis.MetricThroughput].Mean, 1e-12)
}

func TestAggregateSingleSampleKeepsDescriptives(t *testing.T) {
	measurements := []benchmark.Measurement{
		{Model: "m", Cores: 1, BatchSize: 1, LatencyMS: 10, ThroughputFPS: 100, PowerWatts: 25, EfficiencyFPSPerWatt: 4, TemperatureCelsius: 55},
	}

	stats := analysis.Aggregate(measurements)
	require.Len(t, stats, 5)

	throughput := stats[analysis.MetricThroughput]
	assert.Equal(t, 1, throughput.Count)
	assert.Nil(t, throughput.ConfidenceInterval95, "interval omitted, run continues")
}

func TestAggregateEmpty(t *testing.T) {
	stats := analysis.Aggregate(nil)
	assert.Empty(t, stats)
}
