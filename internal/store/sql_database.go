package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/MKhiriev/go-pair-link/internal/logger"
)

// ErrorClassificator decides whether a failed database operation is worth
// retrying.
type ErrorClassificator interface {
	Classify(err error) ErrorClassification
}

// DB wraps *sql.DB with the logger and error classification of the driver
// it was opened with.
type DB struct {
	*sql.DB
	errorClassificator ErrorClassificator
	logger             *logger.Logger
}

const maxRetryAttempts = 3

// withRetry runs fn until it succeeds, the context is done, or the driver's
// classifier reports the error as non-retryable.
func (db *DB) withRetry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 1; attempt <= maxRetryAttempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if db.errorClassificator == nil || db.errorClassificator.Classify(err) != Retryable {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return errors.Join(err, ctxErr)
		}
		db.logger.Warn().Err(err).Int("attempt", attempt).Str("func", "*DB.withRetry").Msg("retryable database error")
	}
	return err
}
