package store

import "errors"

// Sentinel errors returned by stores and repositories. Callers should use
// [errors.Is] to match against these values.
var (
	// ErrUnknownStateKey is returned when a state key is not one of the
	// synchronizable keys the store was created with.
	ErrUnknownStateKey = errors.New("unknown state key")

	// ErrDeviceNotFound is returned when the relay registry has no record for
	// the requested device id.
	ErrDeviceNotFound = errors.New("device was not found")

	// ErrHistoryEntryNotSaved is returned when an INSERT into the connection
	// history affected no rows.
	ErrHistoryEntryNotSaved = errors.New("connection history entry was not saved")
)

// Low-level database operation errors. These are returned (or wrapped) by
// repository methods when a SQL-level operation fails before any domain logic
// can be applied.
var (
	// ErrBuildingSQLQuery is returned when constructing a parameterised SQL
	// query fails.
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a SELECT fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrExecutingStatement is returned when executing an INSERT, UPDATE or
	// DELETE fails.
	ErrExecutingStatement = errors.New("failed to executing statement")

	// ErrScanningRows is returned when scanning column values during
	// multi-row iteration fails.
	ErrScanningRows = errors.New("failed to scan rows")
)
