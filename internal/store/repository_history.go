package store

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"sync"

	"github.com/MKhiriev/go-pair-link/internal/logger"
	"github.com/MKhiriev/go-pair-link/models"
)

// historyRepository is the SQLite-backed implementation of
// [HistoryRepository]. Rows live in the connection_history table created by
// the device migrations.
type historyRepository struct {
	db     *DB
	logger *logger.Logger
}

// NewHistoryRepository constructs a [HistoryRepository] backed by db.
func NewHistoryRepository(db *DB, logger *logger.Logger) HistoryRepository {
	logger.Debug().Msg("creating connection history repository")
	return &historyRepository{
		db:     db,
		logger: logger,
	}
}

// Append inserts entry and returns it with the row id SQLite assigned.
func (r *historyRepository) Append(ctx context.Context, entry models.ConnectionHistoryEntry) (models.ConnectionHistoryEntry, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildInsertHistoryQuery(entry)
	if err != nil {
		log.Err(err).Str("func", "*historyRepository.Append").Msg("error building insert query")
		return models.ConnectionHistoryEntry{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var result sql.Result
	err = r.db.withRetry(ctx, func() error {
		var execErr error
		result, execErr = r.db.ExecContext(ctx, query, args...)
		return execErr
	})
	if err != nil {
		log.Err(err).Str("func", "*historyRepository.Append").Msg("error inserting history entry")
		return models.ConnectionHistoryEntry{}, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	affected, err := result.RowsAffected()
	if err != nil || affected == 0 {
		log.Error().Err(err).Str("func", "*historyRepository.Append").Msg("history entry was not inserted")
		return models.ConnectionHistoryEntry{}, ErrHistoryEntryNotSaved
	}

	if id, err := result.LastInsertId(); err == nil {
		entry.ID = id
	}

	return entry, nil
}

// List returns the newest entries of deviceID first.
func (r *historyRepository) List(ctx context.Context, deviceID string, limit int) ([]models.ConnectionHistoryEntry, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildSelectHistoryQuery(deviceID, limit)
	if err != nil {
		log.Err(err).Str("func", "*historyRepository.List").Msg("error building select query")
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "*historyRepository.List").Msg("error selecting history")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	entries := make([]models.ConnectionHistoryEntry, 0)
	for rows.Next() {
		var entry models.ConnectionHistoryEntry
		if err = rows.Scan(
			&entry.ID,
			&entry.DeviceID,
			&entry.Address,
			&entry.ConnectedAt,
			&entry.DisconnectedAt,
			&entry.Error,
		); err != nil {
			log.Err(err).Str("func", "*historyRepository.List").Msg("error scanning history row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
		}
		entries = append(entries, entry)
	}

	if err = rows.Err(); err != nil {
		log.Err(err).Str("func", "*historyRepository.List").Msg("error iterating history rows")
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return entries, nil
}

type memoryHistoryRepository struct {
	mu      sync.Mutex
	nextID  int64
	entries []models.ConnectionHistoryEntry
}

// NewMemoryHistoryRepository returns a process-local [HistoryRepository].
func NewMemoryHistoryRepository() HistoryRepository {
	return &memoryHistoryRepository{}
}

func (r *memoryHistoryRepository) Append(_ context.Context, entry models.ConnectionHistoryEntry) (models.ConnectionHistoryEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	entry.ID = r.nextID
	r.entries = append(r.entries, entry)
	return entry, nil
}

func (r *memoryHistoryRepository) List(_ context.Context, deviceID string, limit int) ([]models.ConnectionHistoryEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]models.ConnectionHistoryEntry, 0)
	for _, entry := range slices.Backward(r.entries) {
		if entry.DeviceID != deviceID {
			continue
		}
		out = append(out, entry)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}
