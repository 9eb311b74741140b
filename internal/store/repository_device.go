package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/MKhiriev/go-pair-link/internal/logger"
	"github.com/MKhiriev/go-pair-link/models"
	"github.com/jackc/pgerrcode"
)

// deviceRepository is the PostgreSQL-backed implementation of
// [DeviceRepository] used by the relay.
//
// Writes go through [DB.withRetry] so transient connection and serialization
// failures classified by [PostgresErrorClassifier] are attempted again.
type deviceRepository struct {
	db     *DB
	logger *logger.Logger
}

// NewDeviceRepository constructs a [DeviceRepository] backed by db.
func NewDeviceRepository(db *DB, logger *logger.Logger) DeviceRepository {
	logger.Debug().Msg("creating device repository")
	return &deviceRepository{
		db:     db,
		logger: logger,
	}
}

// Save upserts the registration keyed by device id.
//
// Error handling:
//   - PostgreSQL check_violation (23514) -> the role was rejected by the table constraint.
//   - Any other driver-level error -> wrapped [ErrExecutingStatement].
func (r *deviceRepository) Save(ctx context.Context, device models.RegisteredDevice) error {
	log := logger.FromContext(ctx)

	query, args, err := buildUpsertDeviceQuery(device)
	if err != nil {
		log.Err(err).Str("func", "*deviceRepository.Save").Msg("error building upsert query")
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	err = r.db.withRetry(ctx, func() error {
		_, execErr := r.db.ExecContext(ctx, query, args...)
		return execErr
	})
	if err != nil {
		log.Err(err).Str("func", "*deviceRepository.Save").Msg("error saving device")
		switch postgresError(err) {
		case pgerrcode.CheckViolation:
			return fmt.Errorf("%w: invalid device type %q", ErrExecutingStatement, device.Type)
		default:
			return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
		}
	}

	return nil
}

// Find returns the registration of deviceID or [ErrDeviceNotFound].
func (r *deviceRepository) Find(ctx context.Context, deviceID string) (models.RegisteredDevice, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildSelectDeviceQuery(deviceID)
	if err != nil {
		log.Err(err).Str("func", "*deviceRepository.Find").Msg("error building select query")
		return models.RegisteredDevice{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var device models.RegisteredDevice
	err = r.db.withRetry(ctx, func() error {
		row := r.db.QueryRowContext(ctx, query, args...)
		return scanDevice(row, &device)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return models.RegisteredDevice{}, ErrDeviceNotFound
	}
	if err != nil {
		log.Err(err).Str("func", "*deviceRepository.Find").Msg("error finding device")
		return models.RegisteredDevice{}, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return device, nil
}

// ListSlaves returns every slave registered against masterDeviceID.
func (r *deviceRepository) ListSlaves(ctx context.Context, masterDeviceID string) ([]models.RegisteredDevice, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildSelectSlavesQuery(masterDeviceID)
	if err != nil {
		log.Err(err).Str("func", "*deviceRepository.ListSlaves").Msg("error building select query")
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "*deviceRepository.ListSlaves").Msg("error selecting slaves")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	devices := make([]models.RegisteredDevice, 0)
	for rows.Next() {
		var device models.RegisteredDevice
		if err = scanDevice(rows, &device); err != nil {
			log.Err(err).Str("func", "*deviceRepository.ListSlaves").Msg("error scanning device row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
		}
		devices = append(devices, device)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return devices, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDevice(row rowScanner, device *models.RegisteredDevice) error {
	var (
		deviceType string
		master     sql.NullString
	)
	if err := row.Scan(&device.DeviceID, &deviceType, &master, &device.RegisteredAt); err != nil {
		return err
	}
	device.Type = models.Role(deviceType)
	device.MasterDeviceID = master.String
	return nil
}

type memoryDeviceRepository struct {
	mu      sync.RWMutex
	devices map[string]models.RegisteredDevice
}

// NewMemoryDeviceRepository returns a process-local [DeviceRepository].
func NewMemoryDeviceRepository() DeviceRepository {
	return &memoryDeviceRepository{devices: make(map[string]models.RegisteredDevice)}
}

func (r *memoryDeviceRepository) Save(_ context.Context, device models.RegisteredDevice) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.devices[device.DeviceID] = device
	return nil
}

func (r *memoryDeviceRepository) Find(_ context.Context, deviceID string) (models.RegisteredDevice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	device, ok := r.devices[deviceID]
	if !ok {
		return models.RegisteredDevice{}, ErrDeviceNotFound
	}
	return device, nil
}

func (r *memoryDeviceRepository) ListSlaves(_ context.Context, masterDeviceID string) ([]models.RegisteredDevice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.RegisteredDevice, 0)
	for _, device := range r.devices {
		if device.Type == models.RoleSlave && device.MasterDeviceID == masterDeviceID {
			out = append(out, device)
		}
	}
	slices.SortFunc(out, func(a, b models.RegisteredDevice) int {
		if c := a.RegisteredAt.Compare(b.RegisteredAt); c != 0 {
			return c
		}
		return strings.Compare(a.DeviceID, b.DeviceID)
	})
	return out, nil
}
