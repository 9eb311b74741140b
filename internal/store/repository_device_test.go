package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-pair-link/internal/logger"
	"github.com/MKhiriev/go-pair-link/models"
)

func newTestDeviceRepo(t *testing.T) (*deviceRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	l := logger.Nop()
	return &deviceRepository{
		db:     &DB{DB: db, logger: l, errorClassificator: NewPostgresErrorClassifier()},
		logger: l,
	}, mock
}

func pgError(code string) error {
	return &pgconn.PgError{Code: code}
}

func TestDeviceRepository_Save(t *testing.T) {
	repo, mock := newTestDeviceRepo(t)
	device := models.RegisteredDevice{
		DeviceID:       "slave-1",
		Type:           models.RoleSlave,
		MasterDeviceID: "master-1",
		RegisteredAt:   time.Now(),
	}

	mock.ExpectExec("INSERT INTO devices").
		WithArgs("slave-1", "SLAVE", "master-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Save(context.Background(), device))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeviceRepository_Save_RetriesTransientErrors(t *testing.T) {
	repo, mock := newTestDeviceRepo(t)

	mock.ExpectExec("INSERT INTO devices").WillReturnError(pgError(pgerrcode.SerializationFailure))
	mock.ExpectExec("INSERT INTO devices").WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Save(context.Background(), models.RegisteredDevice{DeviceID: "m", Type: models.RoleMaster}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeviceRepository_Save_GivesUpAfterMaxAttempts(t *testing.T) {
	repo, mock := newTestDeviceRepo(t)

	for range maxRetryAttempts {
		mock.ExpectExec("INSERT INTO devices").WillReturnError(pgError(pgerrcode.ConnectionFailure))
	}

	err := repo.Save(context.Background(), models.RegisteredDevice{DeviceID: "m", Type: models.RoleMaster})
	assert.ErrorIs(t, err, ErrExecutingStatement)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeviceRepository_Save_CheckViolation(t *testing.T) {
	repo, mock := newTestDeviceRepo(t)

	mock.ExpectExec("INSERT INTO devices").WillReturnError(pgError(pgerrcode.CheckViolation))

	err := repo.Save(context.Background(), models.RegisteredDevice{DeviceID: "m", Type: "BOGUS"})
	require.ErrorIs(t, err, ErrExecutingStatement)
	assert.Contains(t, err.Error(), "BOGUS")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeviceRepository_Find(t *testing.T) {
	repo, mock := newTestDeviceRepo(t)
	registered := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows(deviceColumns).AddRow("slave-1", "SLAVE", "master-1", registered)
	mock.ExpectQuery("SELECT (.+) FROM devices WHERE device_id = \\$1").
		WithArgs("slave-1").
		WillReturnRows(rows)

	device, err := repo.Find(context.Background(), "slave-1")
	require.NoError(t, err)
	assert.Equal(t, models.RegisteredDevice{
		DeviceID:       "slave-1",
		Type:           models.RoleSlave,
		MasterDeviceID: "master-1",
		RegisteredAt:   registered,
	}, device)
}

func TestDeviceRepository_Find_NullMaster(t *testing.T) {
	repo, mock := newTestDeviceRepo(t)

	rows := sqlmock.NewRows(deviceColumns).AddRow("master-1", "MASTER", nil, time.Now())
	mock.ExpectQuery("SELECT").WillReturnRows(rows)

	device, err := repo.Find(context.Background(), "master-1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleMaster, device.Type)
	assert.Empty(t, device.MasterDeviceID)
}

func TestDeviceRepository_Find_Errors(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		repo, mock := newTestDeviceRepo(t)
		mock.ExpectQuery("SELECT").WillReturnRows(sqlmock.NewRows(deviceColumns))

		_, err := repo.Find(context.Background(), "ghost")
		assert.ErrorIs(t, err, ErrDeviceNotFound)
	})

	t.Run("driver error", func(t *testing.T) {
		repo, mock := newTestDeviceRepo(t)
		mock.ExpectQuery("SELECT").WillReturnError(pgError(pgerrcode.UndefinedTable))

		_, err := repo.Find(context.Background(), "dev")
		assert.ErrorIs(t, err, ErrExecutingQuery)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDeviceRepository_ListSlaves(t *testing.T) {
	repo, mock := newTestDeviceRepo(t)
	now := time.Now()

	rows := sqlmock.NewRows(deviceColumns).
		AddRow("s1", "SLAVE", "m", now).
		AddRow("s2", "SLAVE", "m", now.Add(time.Second))
	mock.ExpectQuery("SELECT (.+) FROM devices").
		WithArgs("m", "SLAVE").
		WillReturnRows(rows)

	slaves, err := repo.ListSlaves(context.Background(), "m")
	require.NoError(t, err)
	require.Len(t, slaves, 2)
	assert.Equal(t, "s1", slaves[0].DeviceID)
	assert.Equal(t, "s2", slaves[1].DeviceID)
}

func TestDeviceRepository_ListSlaves_QueryError(t *testing.T) {
	repo, mock := newTestDeviceRepo(t)
	mock.ExpectQuery("SELECT").WillReturnError(errors.New("gone"))

	_, err := repo.ListSlaves(context.Background(), "m")
	assert.ErrorIs(t, err, ErrExecutingQuery)
}

func TestMemoryDeviceRepository(t *testing.T) {
	repo := NewMemoryDeviceRepository()
	ctx := context.Background()
	now := time.Now()

	_, err := repo.Find(ctx, "m")
	assert.ErrorIs(t, err, ErrDeviceNotFound)

	require.NoError(t, repo.Save(ctx, models.RegisteredDevice{DeviceID: "m", Type: models.RoleMaster, RegisteredAt: now}))
	require.NoError(t, repo.Save(ctx, models.RegisteredDevice{DeviceID: "s2", Type: models.RoleSlave, MasterDeviceID: "m", RegisteredAt: now.Add(time.Second)}))
	require.NoError(t, repo.Save(ctx, models.RegisteredDevice{DeviceID: "s1", Type: models.RoleSlave, MasterDeviceID: "m", RegisteredAt: now}))
	require.NoError(t, repo.Save(ctx, models.RegisteredDevice{DeviceID: "other", Type: models.RoleSlave, MasterDeviceID: "x", RegisteredAt: now}))

	device, err := repo.Find(ctx, "m")
	require.NoError(t, err)
	assert.Equal(t, models.RoleMaster, device.Type)

	slaves, err := repo.ListSlaves(ctx, "m")
	require.NoError(t, err)
	require.Len(t, slaves, 2)
	assert.Equal(t, "s1", slaves[0].DeviceID)
	assert.Equal(t, "s2", slaves[1].DeviceID)

	// re-registration replaces the record
	require.NoError(t, repo.Save(ctx, models.RegisteredDevice{DeviceID: "s1", Type: models.RoleSlave, MasterDeviceID: "x", RegisteredAt: now}))
	slaves, err = repo.ListSlaves(ctx, "m")
	require.NoError(t, err)
	assert.Len(t, slaves, 1)
}
