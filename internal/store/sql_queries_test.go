// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-pair-link/models"
)

func Test_buildInsertHistoryQuery(t *testing.T) {
	connected := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	disconnected := connected.Add(time.Minute)

	query, args, err := buildInsertHistoryQuery(models.ConnectionHistoryEntry{
		DeviceID:       "dev-1",
		Address:        "ws://relay",
		ConnectedAt:    connected,
		DisconnectedAt: disconnected,
		Error:          "boom",
	})
	require.NoError(t, err)

	q := strings.ToLower(query)
	assert.Contains(t, q, "insert into connection_history")
	assert.Contains(t, q, "device_id,address,connected_at,disconnected_at,error")
	// sqlite placeholders
	assert.Contains(t, query, "?")
	assert.NotContains(t, query, "$1")

	require.Len(t, args, 5)
	assert.Equal(t, "dev-1", args[0])
	assert.Equal(t, "ws://relay", args[1])
	assert.Equal(t, connected, args[2])
	assert.Equal(t, disconnected, args[3])
	assert.Equal(t, "boom", args[4])
}

func Test_buildSelectHistoryQuery(t *testing.T) {
	tests := []struct {
		name      string
		limit     int
		wantLimit bool
	}{
		{name: "with limit", limit: 10, wantLimit: true},
		{name: "zero limit selects everything", limit: 0, wantLimit: false},
		{name: "negative limit selects everything", limit: -1, wantLimit: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args, err := buildSelectHistoryQuery("dev-1", tt.limit)
			require.NoError(t, err)

			q := strings.ToLower(query)
			for _, col := range historyColumns {
				assert.Contains(t, q, col)
			}
			assert.Contains(t, q, "from connection_history")
			assert.Contains(t, q, "where device_id = ?")
			assert.Contains(t, q, "order by disconnected_at desc, id desc")
			assert.Equal(t, tt.wantLimit, strings.Contains(q, "limit 10"))

			require.Len(t, args, 1)
			assert.Equal(t, "dev-1", args[0])
		})
	}
}

func Test_buildUpsertDeviceQuery(t *testing.T) {
	registered := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	query, args, err := buildUpsertDeviceQuery(models.RegisteredDevice{
		DeviceID:       "slave-1",
		Type:           models.RoleSlave,
		MasterDeviceID: "master-1",
		RegisteredAt:   registered,
	})
	require.NoError(t, err)

	q := strings.ToLower(query)
	assert.Contains(t, q, "insert into devices")
	assert.Contains(t, q, "values ($1,$2,$3,$4)")
	assert.Contains(t, q, "on conflict (device_id) do update set")
	assert.Contains(t, q, "master_device_id = excluded.master_device_id")

	require.Len(t, args, 4)
	assert.Equal(t, "slave-1", args[0])
	assert.Equal(t, "SLAVE", args[1])
	assert.Equal(t, "master-1", args[2])
	assert.Equal(t, registered, args[3])
}

func Test_buildUpsertDeviceQuery_DefaultsRegisteredAt(t *testing.T) {
	before := time.Now().UTC()

	_, args, err := buildUpsertDeviceQuery(models.RegisteredDevice{DeviceID: "m", Type: models.RoleMaster})
	require.NoError(t, err)

	require.Len(t, args, 4)
	registeredAt, ok := args[3].(time.Time)
	require.True(t, ok)
	assert.False(t, registeredAt.Before(before.Add(-time.Second)))
}

func Test_buildSelectDeviceQuery(t *testing.T) {
	query, args, err := buildSelectDeviceQuery("dev-1")
	require.NoError(t, err)

	q := strings.ToLower(query)
	assert.Contains(t, q, "select device_id, type, master_device_id, registered_at from devices")
	assert.Contains(t, q, "where device_id = $1")
	assert.Equal(t, []any{"dev-1"}, args)
}

func Test_buildSelectSlavesQuery(t *testing.T) {
	query, args, err := buildSelectSlavesQuery("master-1")
	require.NoError(t, err)

	q := strings.ToLower(query)
	// squirrel sorts sq.Eq keys
	assert.Contains(t, q, "where master_device_id = $1 and type = $2")
	assert.Contains(t, q, "order by registered_at, device_id")
	assert.Equal(t, []any{"master-1", "SLAVE"}, args)
}
