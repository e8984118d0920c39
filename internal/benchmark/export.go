package benchmark

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"strconv"

	"codeberg.org/mutker/benchval/internal/errors"
)

var csvHeader = []string{
	"model", "configuration", "timestamp",
	"latency_ms", "throughput_fps", "power_watts",
	"efficiency_fps_per_watt", "temperature_celsius",
	"cores", "batch_size",
}

// WriteCSV exports measurements as a flat table with the derived cores and
// batch_size columns attached. Floats are formatted with the shortest
// representation that round-trips exactly.
func WriteCSV(path string, measurements []Measurement) error {
	errFactory := errors.New()

	f, err := os.Create(path)
	if err != nil {
		return errFactory.Wrap(errors.ErrWriteOutput, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return errFactory.Wrap(errors.ErrWriteOutput, err)
	}

	for i := range measurements {
		m := &measurements[i]
		record := []string{
			m.Model,
			m.Configuration,
			m.Timestamp,
			formatFloat(m.LatencyMS),
			formatFloat(m.ThroughputFPS),
			formatFloat(m.PowerWatts),
			formatFloat(m.EfficiencyFPSPerWatt),
			formatFloat(m.TemperatureCelsius),
			strconv.Itoa(m.Cores),
			strconv.Itoa(m.BatchSize),
		}
		if err := w.Write(record); err != nil {
			return errFactory.Wrap(errors.ErrWriteOutput, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return errFactory.Wrap(errors.ErrWriteOutput, err)
	}

	return f.Close()
}

// ReadCSV loads measurements back from a table written by WriteCSV
func ReadCSV(path string) ([]Measurement, error) {
	errFactory := errors.New()

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errFactory.WithData(errors.ErrDataNotFound, path)
		}

		return nil, errFactory.Wrap(errors.ErrDataNotFound, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, errFactory.Wrap(errors.ErrMalformedData, err)
	}

	if len(rows) == 0 || len(rows[0]) != len(csvHeader) {
		return nil, errFactory.WithData(errors.ErrMalformedData, "unexpected column layout")
	}

	measurements := make([]Measurement, 0, len(rows)-1)
	for _, row := range rows[1:] {
		m, err := parseCSVRow(row)
		if err != nil {
			return nil, err
		}
		measurements = append(measurements, m)
	}

	return measurements, nil
}

// WriteJSON exports measurements as an array of flat records
func WriteJSON(path string, measurements []Measurement) error {
	errFactory := errors.New()

	data, err := json.MarshalIndent(measurements, "", "  ")
	if err != nil {
		return errFactory.Wrap(errors.ErrWriteOutput, err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errFactory.Wrap(errors.ErrWriteOutput, err)
	}

	return nil
}

func parseCSVRow(row []string) (Measurement, error) {
	errFactory := errors.New()

	if len(row) != len(csvHeader) {
		return Measurement{}, errFactory.WithData(errors.ErrMalformedData, row)
	}

	floats := make([]float64, 5)
	for i, field := range row[3:8] {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return Measurement{}, errFactory.Wrap(errors.ErrMalformedData, err)
		}
		floats[i] = v
	}

	cores, err := strconv.Atoi(row[8])
	if err != nil {
		return Measurement{}, errFactory.Wrap(errors.ErrMalformedData, err)
	}

	batch, err := strconv.Atoi(row[9])
	if err != nil {
		return Measurement{}, errFactory.Wrap(errors.ErrMalformedData, err)
	}

	return Measurement{
		Model:                row[0],
		Configuration:        row[1],
		Timestamp:            row[2],
		LatencyMS:            floats[0],
		ThroughputFPS:        floats[1],
		PowerWatts:           floats[2],
		EfficiencyFPSPerWatt: floats[3],
		TemperatureCelsius:   floats[4],
		Cores:                cores,
		BatchSize:            batch,
	}, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
