package archive

import (
	"context"

	"codeberg.org/mutker/benchval/internal/benchmark"
)

// Archiver persists retained measurement sets
type Archiver interface {
	Store(ctx context.Context, measurements []benchmark.Measurement) error
	Close() error
}

// Repository is the storage backend for one archive database
type Repository interface {
	Store(measurements []benchmark.Measurement) error
	Count() (int, error)
	Close() error
}
