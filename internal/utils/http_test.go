package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-pair-link/models"
)

func TestWriteJSON_Success(t *testing.T) {
	w := httptest.NewRecorder()
	data := models.RegisterResponse{Success: true, Token: "tkn"}

	n, err := WriteJSON(w, data, http.StatusOK)

	require.NoError(t, err)
	assert.NotZero(t, n)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	expected, _ := json.Marshal(data)
	assert.JSONEq(t, string(expected), w.Body.String())
}

func TestWriteJSON_CustomStatusCode(t *testing.T) {
	w := httptest.NewRecorder()

	_, err := WriteJSON(w, models.RegisterResponse{Error: "master offline"}, http.StatusConflict)

	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestWriteJSON_InvalidData(t *testing.T) {
	w := httptest.NewRecorder()

	// channels cannot be marshaled to JSON
	_, err := WriteJSON(w, make(chan int), http.StatusOK)

	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestWriteJSON_NilData(t *testing.T) {
	w := httptest.NewRecorder()

	_, err := WriteJSON(w, nil, http.StatusOK)

	require.NoError(t, err)
	assert.Equal(t, "null", w.Body.String())
}

func TestReadJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{name: "valid", body: `{"type":"MASTER","deviceId":"m1"}`},
		{name: "unknown fields tolerated", body: `{"type":"MASTER","deviceId":"m1","extra":1}`},
		{name: "empty", body: ``, wantErr: true},
		{name: "malformed", body: `{"type":`, wantErr: true},
		{name: "trailing document", body: `{"deviceId":"a"} {"deviceId":"b"}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(tt.body))

			var reg models.DeviceRegistration
			err := ReadJSON(r, &reg)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, models.RoleMaster, reg.Type)
			assert.Equal(t, "m1", reg.DeviceID)
		})
	}
}
