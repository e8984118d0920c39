package archive

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	"codeberg.org/mutker/benchval/internal/benchmark"
	"codeberg.org/mutker/benchval/internal/errors"
	"codeberg.org/mutker/benchval/internal/logger"
	_ "github.com/mattn/go-sqlite3"
)

type service struct {
	repo Repository
	cfg  Config
}

// No-op implementation, used when archiving is disabled
type noopArchiver struct{}

// NewService returns an Archiver for the given configuration. When
// archiving is disabled a no-op archiver is returned and no database is
// touched.
func NewService(cfg Config, log logger.Logger) (Archiver, error) {
	errFactory := errors.New()

	if err := cfg.Validate(); err != nil {
		return nil, errFactory.Wrap(ErrInvalidConfig, err)
	}

	if !cfg.Enabled {
		log.Debug().Msg("Archiving disabled, using no-op archiver")
		return &noopArchiver{}, nil
	}

	repo, err := NewRepository(cfg, log)
	if err != nil {
		return nil, err
	}

	return &service{
		repo: repo,
		cfg:  cfg,
	}, nil
}

func (s *service) Store(ctx context.Context, measurements []benchmark.Measurement) error {
	errFactory := errors.New()

	select {
	case <-ctx.Done():
		return errFactory.Wrap(errors.ErrOperationFailed, ctx.Err())
	default:
		return s.repo.Store(measurements)
	}
}

func (s *service) Close() error {
	errFactory := errors.New()

	if err := s.repo.Close(); err != nil {
		return errFactory.Wrap(ErrServiceShutdown, err)
	}

	return nil
}

func (*noopArchiver) Store(_ context.Context, _ []benchmark.Measurement) error {
	return nil
}

func (*noopArchiver) Close() error {
	return nil
}

type repository struct {
	db     *sql.DB
	logger logger.Logger
	cfg    Config
}

// NewRepository opens (and if needed initializes) the archive database
func NewRepository(cfg Config, log logger.Logger) (Repository, error) {
	errFactory := errors.New()

	if cfg.DBPath == "" {
		return nil, errFactory.New(ErrInvalidDBPath)
	}

	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, defaultDirPerm); err != nil {
			return nil, errFactory.WithData(ErrStorageInit, struct {
				Phase string
				Path  string
				Error string
			}{
				Phase: "create_directory",
				Path:  cfg.DBPath,
				Error: err.Error(),
			})
		}
	}

	dsn := cfg.DBPath + "?_journal=WAL&_auto_vacuum=2"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errFactory.WithData(ErrStorageInit, struct {
			Phase string
			Error string
		}{
			Phase: "open_database",
			Error: err.Error(),
		})
	}

	version, err := GetSchemaVersion(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	if version == 0 {
		if err := InitSchema(db, log); err != nil {
			db.Close()
			return nil, err
		}
	}

	log.Info().
		Str("path", cfg.DBPath).
		Int("schema_version", SchemaVersion).
		Msg("Archive repository initialized")

	return &repository{
		db:     db,
		logger: log,
		cfg:    cfg,
	}, nil
}

// Store inserts the whole measurement set in a single transaction. The
// dataset is a static batch, so there is no buffering or background flush.
func (r *repository) Store(measurements []benchmark.Measurement) error {
	if len(measurements) == 0 {
		return nil
	}

	errFactory := errors.New()

	tx, err := r.db.Begin()
	if err != nil {
		return errFactory.Wrap(ErrTransactionFailed, err)
	}

	stmt, err := tx.Prepare(insertMeasurementSQL)
	if err != nil {
		if err := tx.Rollback(); err != nil {
			r.logger.Error().Err(err).Msg("Failed to roll back transaction")
		}
		return errFactory.Wrap(ErrTransactionFailed, err)
	}
	defer stmt.Close()

	for i := range measurements {
		m := &measurements[i]
		if _, err := stmt.Exec(
			m.Model,
			m.Configuration,
			m.Timestamp,
			m.LatencyMS,
			m.ThroughputFPS,
			m.PowerWatts,
			m.EfficiencyFPSPerWatt,
			m.TemperatureCelsius,
			int64(m.Cores),
			int64(m.BatchSize),
		); err != nil {
			if err := tx.Rollback(); err != nil {
				r.logger.Error().Err(err).Msg("Failed to roll back transaction")
			}
			return errFactory.Wrap(ErrTransactionFailed, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errFactory.Wrap(ErrTransactionFailed, err)
	}

	r.logger.Debug().Int("records", len(measurements)).Msg("Archived measurements")

	return nil
}

// Count returns the number of archived measurements
func (r *repository) Count() (int, error) {
	errFactory := errors.New()

	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM measurements`).Scan(&count); err != nil {
		return 0, errFactory.Wrap(ErrSchemaValidationFailed, err)
	}

	return count, nil
}

func (r *repository) Close() error {
	errFactory := errors.New()

	if _, err := r.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return errFactory.WithData(ErrStorageClose, struct {
			Phase string
			Error string
		}{
			Phase: "checkpoint_wal",
			Error: err.Error(),
		})
	}

	if err := r.db.Close(); err != nil {
		return errFactory.WithData(ErrStorageClose, struct {
			Phase string
			Error string
		}{
			Phase: "close_database",
			Error: err.Error(),
		})
	}

	return nil
}
