package archive

import "codeberg.org/mutker/benchval/internal/errors"

const (
	// Configuration errors
	ErrInvalidConfig = errors.ErrInvalidConfig
	ErrInvalidDBPath = errors.ErrorCode("archive_invalid_db_path")

	// Schema errors
	ErrSchemaInitFailed       = errors.ErrorCode("archive_schema_init_failed")
	ErrSchemaValidationFailed = errors.ErrorCode("archive_schema_validation_failed")
	ErrTransactionFailed      = errors.ErrorCode("archive_transaction_failed")

	// Storage errors
	ErrStorageInit  = errors.ErrInitFailed
	ErrStorageClose = errors.ErrShutdownFailed

	// Service errors
	ErrServiceShutdown = errors.ErrShutdownFailed
	ErrNothingToStore  = errors.ErrorCode("archive_nothing_to_store")
)
