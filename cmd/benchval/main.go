package main

import (
	"context"
	"fmt"
	"os"

	"codeberg.org/mutker/benchval/internal/analysis"
	"codeberg.org/mutker/benchval/internal/archive"
	"codeberg.org/mutker/benchval/internal/benchmark"
	"codeberg.org/mutker/benchval/internal/config"
	"codeberg.org/mutker/benchval/internal/logger"
	"codeberg.org/mutker/benchval/internal/report"
	"codeberg.org/mutker/benchval/internal/validation"
)

var cfg *config.Config

func init() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	debug := cfg.Debug || cfg.LogLevel == "debug"
	verbose := cfg.Verbose || cfg.LogLevel == "info"
	logger.Init(debug, verbose, logger.IsService())
	logger.Debug().Msg("Config loaded")
}

func main() {
	if cfg.Input == "" {
		logger.Fatal().Msg("no input file specified (use --input)")
	}

	ds, err := benchmark.Load(cfg.Input)
	if err != nil {
		logger.Fatal().Err(err).Str("input", cfg.Input).Msg("failed to load measurements")
	}

	result := analyze(ds)

	if err := report.WriteAll(cfg.OutputDir, result, ds); err != nil {
		logger.Fatal().Err(err).Msg("failed to write reports")
	}

	if err := archiveMeasurements(ds); err != nil {
		logger.Fatal().Err(err).Msg("failed to archive measurements")
	}

	logVerdict(result)

	if cfg.FailOnVerdict && !result.Passed() {
		os.Exit(1)
	}
}

// analyze runs the four independent passes over the immutable measurement
// sequence and assembles them into one result.
func analyze(ds *benchmark.Dataset) *report.Result {
	checks := validation.Validate(ds.Measurements, tolerancePolicy())
	stats := analysis.Aggregate(ds.Measurements)
	peaks := analysis.FindPeaks(ds.Measurements)
	scaling := analysis.AnalyzeScaling(ds.Measurements)

	return report.Build(ds, stats, peaks, scaling, checks, report.Options{
		TopN:       cfg.TopN,
		MinSamples: cfg.MinSamples,
	})
}

func tolerancePolicy() validation.Policy {
	policy := validation.StrictPolicy()
	if cfg.Tolerance == "loose" {
		policy = validation.LoosePolicy()
	}

	if cfg.EfficiencyAbsFloor > 0 {
		policy.EfficiencyAbsFloor = cfg.EfficiencyAbsFloor
	}
	if cfg.EfficiencyRelTol > 0 {
		policy.EfficiencyRelTol = cfg.EfficiencyRelTol
	}
	if cfg.ThroughputRelTol > 0 {
		policy.ThroughputRelTol = cfg.ThroughputRelTol
	}

	return policy
}

func archiveMeasurements(ds *benchmark.Dataset) error {
	arch, err := archive.NewService(archive.Config{
		DBPath:  cfg.ArchiveDB,
		Enabled: cfg.Archive,
	}, logger.Default())
	if err != nil {
		return err
	}

	if err := arch.Store(context.Background(), ds.Measurements); err != nil {
		if closeErr := arch.Close(); closeErr != nil {
			logger.Error().Err(closeErr).Msg("failed to close archive")
		}
		return err
	}

	return arch.Close()
}

func logVerdict(result *report.Result) {
	event := logger.Info().
		Str("status", result.Assessment.Status).
		Str("data_quality", result.Assessment.DataQuality).
		Str("statistical_validity", result.Assessment.StatisticalValidity).
		Float64("consistency_rate", result.Assessment.ConsistencyRate).
		Int("measurements", result.Dataset.TotalMeasurements).
		Int("failed_checks", result.Validation.TotalFailures)

	if result.PeakPerformance.PeakThroughput != nil {
		event = event.
			Float64("peak_throughput_fps", result.PeakPerformance.PeakThroughput.Value).
			Str("peak_throughput_config", result.PeakPerformance.PeakThroughput.Key.String())
	}
	if result.PeakPerformance.PeakEfficiency != nil {
		event = event.
			Float64("peak_efficiency_fps_per_watt", result.PeakPerformance.PeakEfficiency.Value).
			Str("peak_efficiency_config", result.PeakPerformance.PeakEfficiency.Key.String())
	}

	event.Msg("Benchmark validation complete")
}
