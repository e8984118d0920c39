package validation_test

import (
	"testing"

	"codeberg.org/mutker/benchval/internal/benchmark"
	"codeberg.org/mutker/benchval/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// consistent returns a measurement that passes every check under any policy
func consistent() benchmark.Measurement {
	return benchmark.Measurement{
		Model:                "resnet18-imagenet",
		Configuration:        "cores1_batch1",
		LatencyMS:            10.0,  // batch 1 / 10ms = 100 fps
		ThroughputFPS:        100.0,
		PowerWatts:           25.0,
		EfficiencyFPSPerWatt: 4.0, // 100 / 25
		TemperatureCelsius:   55.0,
		Cores:                1,
		BatchSize:            1,
	}
}

func TestAllChecksPass(t *testing.T) {
	report := validation.Validate([]benchmark.Measurement{consistent(), consistent()}, validation.StrictPolicy())

	assert.Equal(t, 2, report.TotalMeasurements)
	// 6 checks per record: efficiency, throughput, four ranges
	assert.Equal(t, 12, report.TotalChecks)
	assert.Zero(t, report.TotalFailures)
	assert.Empty(t, report.Failures)
	assert.InDelta(t, 100.0, report.SuccessRate(), 1e-12)
}

func TestEfficiencyToleranceIsConfigurable(t *testing.T) {
	m := consistent()
	m.EfficiencyFPSPerWatt = 4.005 // expected 4.0, off by 0.005

	strict := validation.Validate([]benchmark.Measurement{m}, validation.StrictPolicy())
	require.Equal(t, 1, strict.TotalFailures, "0.005 exceeds max(0.001, 4.005*0.001)")

	failure := strict.Failures[0]
	assert.Equal(t, validation.CheckEfficiency, failure.Check)
	assert.InDelta(t, 4.0, failure.Expected, 1e-12)
	assert.InDelta(t, 4.005, failure.Actual, 1e-12)
	assert.InDelta(t, 0.005, failure.Error, 1e-12)

	loose := validation.Validate([]benchmark.Measurement{m}, validation.LoosePolicy())
	assert.Zero(t, loose.TotalFailures, "0.005 is inside the flat 0.01 band")

	// The applied policy is visible on the report
	assert.InDelta(t, 0.001, strict.Policy.EfficiencyAbsFloor, 1e-12)
	assert.InDelta(t, 0.01, loose.Policy.EfficiencyAbsFloor, 1e-12)
}

func TestEfficiencyFlagsExactlyTheInconsistent(t *testing.T) {
	good := consistent()

	bad := consistent()
	bad.EfficiencyFPSPerWatt = 5.0 // expected 4.0

	report := validation.Validate([]benchmark.Measurement{good, bad, good}, validation.StrictPolicy())

	var efficiencyFailures []validation.Failure
	for _, f := range report.Failures {
		if f.Check == validation.CheckEfficiency {
			efficiencyFailures = append(efficiencyFailures, f)
		}
	}

	require.Len(t, efficiencyFailures, 1)
	assert.Equal(t, 1, efficiencyFailures[0].Index)
}

func TestZeroPowerExpectsZeroEfficiency(t *testing.T) {
	m := consistent()
	m.PowerWatts = 0
	m.EfficiencyFPSPerWatt = 4.0

	report := validation.Validate([]benchmark.Measurement{m}, validation.StrictPolicy())

	var found bool
	for _, f := range report.Failures {
		if f.Check == validation.CheckEfficiency {
			found = true
			assert.Zero(t, f.Expected)
		}
	}
	assert.True(t, found, "efficiency check should fail against expected 0")
}

func TestLoosePolicySkipsNonPositiveEfficiency(t *testing.T) {
	m := consistent()
	m.EfficiencyFPSPerWatt = 0

	loose := validation.Validate([]benchmark.Measurement{m}, validation.LoosePolicy())
	strict := validation.Validate([]benchmark.Measurement{m}, validation.StrictPolicy())

	// Loose performs one fewer check: the efficiency check is skipped
	assert.Equal(t, strict.TotalChecks-1, loose.TotalChecks)
}

func TestThroughputDerivation(t *testing.T) {
	m := consistent()
	m.BatchSize = 8
	m.LatencyMS = 16.0 // expected 8 / 0.016 = 500 fps
	m.ThroughputFPS = 490.0
	m.EfficiencyFPSPerWatt = 19.6
	m.PowerWatts = 25.0

	report := validation.Validate([]benchmark.Measurement{m}, validation.StrictPolicy())
	for _, f := range report.Failures {
		assert.NotEqual(t, validation.CheckThroughput, f.Check, "10 fps off is inside the 5% band")
	}

	m.ThroughputFPS = 400.0
	m.EfficiencyFPSPerWatt = 16.0
	report = validation.Validate([]benchmark.Measurement{m}, validation.StrictPolicy())

	var found bool
	for _, f := range report.Failures {
		if f.Check == validation.CheckThroughput {
			found = true
			assert.InDelta(t, 500.0, f.Expected, 1e-9)
			assert.InDelta(t, 400.0, f.Actual, 1e-9)
		}
	}
	assert.True(t, found, "100 fps off exceeds the 5% band")
}

func TestThroughputCheckSkippedWithoutLatency(t *testing.T) {
	m := consistent()
	m.LatencyMS = 0

	report := validation.Validate([]benchmark.Measurement{m}, validation.StrictPolicy())
	summary := report.Summaries[validation.CheckThroughput]
	assert.Zero(t, summary.Checks)
}

func TestRangeChecksRecordButNeverHalt(t *testing.T) {
	m := consistent()
	m.TemperatureCelsius = 110.0
	m.PowerWatts = 5.0
	m.EfficiencyFPSPerWatt = 20.0 // 100 / 5, keeps the math consistent

	report := validation.Validate([]benchmark.Measurement{m}, validation.StrictPolicy())

	kinds := make(map[validation.CheckKind]bool)
	for _, f := range report.Failures {
		kinds[f.Check] = true
	}

	assert.True(t, kinds[validation.CheckTemperature])
	assert.True(t, kinds[validation.CheckPower])
	assert.False(t, kinds[validation.CheckLatency])
	assert.Less(t, report.SuccessRate(), 100.0)
	assert.Greater(t, report.SuccessRate(), 0.0)
}

func TestEmptyInputValidatesTrivially(t *testing.T) {
	report := validation.Validate(nil, validation.StrictPolicy())

	assert.Zero(t, report.TotalChecks)
	assert.InDelta(t, 100.0, report.SuccessRate(), 1e-12)
}
