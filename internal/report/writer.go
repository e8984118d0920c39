package report

import (
	"encoding/json"
	"os"
	"path/filepath"

	"codeberg.org/mutker/benchval/internal/benchmark"
	"codeberg.org/mutker/benchval/internal/errors"
	"codeberg.org/mutker/benchval/internal/logger"
)

const (
	statisticsFile      = "processed_statistics.json"
	validationFile      = "validation_report.json"
	measurementsCSVFile = "measurements.csv"
	measurementsJSON    = "measurements.json"

	outputDirPerm  = 0o755
	outputFilePerm = 0o644
)

// WriteAll persists the processed statistics, the validation report, and
// the flat measurement exports under dir, creating it if needed.
func WriteAll(dir string, result *Result, ds *benchmark.Dataset) error {
	errFactory := errors.New()

	if err := os.MkdirAll(dir, outputDirPerm); err != nil {
		return errFactory.Wrap(errors.ErrWriteOutput, err)
	}

	if err := writeJSON(filepath.Join(dir, statisticsFile), result); err != nil {
		return err
	}

	if err := writeJSON(filepath.Join(dir, validationFile), result.Validation); err != nil {
		return err
	}

	if err := benchmark.WriteCSV(filepath.Join(dir, measurementsCSVFile), ds.Measurements); err != nil {
		return err
	}

	if err := benchmark.WriteJSON(filepath.Join(dir, measurementsJSON), ds.Measurements); err != nil {
		return err
	}

	logger.Info().
		Str("dir", dir).
		Int("measurements", ds.Len()).
		Msg("Wrote processed reports")

	return nil
}

func writeJSON(path string, v any) error {
	errFactory := errors.New()

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errFactory.Wrap(errors.ErrWriteOutput, err)
	}

	if err := os.WriteFile(path, data, outputFilePerm); err != nil {
		return errFactory.WithData(errors.ErrWriteOutput, struct {
			Path  string
			Error string
		}{
			Path:  path,
			Error: err.Error(),
		})
	}

	return nil
}
