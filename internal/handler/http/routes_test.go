package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-pair-link/internal/config"
	"github.com/MKhiriev/go-pair-link/internal/logger"
	"github.com/MKhiriev/go-pair-link/internal/relay"
	"github.com/MKhiriev/go-pair-link/internal/store"
	"github.com/MKhiriev/go-pair-link/models"
)

var testConfig = config.Relay{
	TokenSignKey:   "sign-key",
	TokenIssuer:    "test-relay",
	TokenDuration:  time.Minute,
	RequestTimeout: 5 * time.Second,
}

func newTestRouter(t *testing.T) (*httptest.Server, *relay.Services) {
	t.Helper()

	storages, err := store.NewRelayStorages(context.Background(), "", logger.Nop())
	require.NoError(t, err)

	services := relay.NewServices(storages, testConfig, logger.Nop())
	server := httptest.NewServer(NewHandler(services, testConfig, logger.Nop()).Init())
	t.Cleanup(func() {
		services.Hub.Close()
		server.Close()
	})
	return server, services
}

func postRegister(t *testing.T, server *httptest.Server, body string) (int, models.RegisterResponse) {
	t.Helper()

	resp, err := http.Post(server.URL+"/register", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var out models.RegisterResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func dialChannel(server *httptest.Server, token string) (*websocket.Conn, *http.Response, error) {
	u := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	if token != "" {
		u += "?" + url.Values{"token": {token}}.Encode()
	}
	return websocket.DefaultDialer.Dial(u, nil)
}

func TestRegister(t *testing.T) {
	server, _ := newTestRouter(t)

	tests := []struct {
		name        string
		body        string
		wantStatus  int
		wantSuccess bool
		wantError   string
	}{
		{
			name:        "master registers",
			body:        `{"type":"MASTER","deviceId":"m1","runtimeConfig":{"workspace":"MAIN"}}`,
			wantStatus:  http.StatusOK,
			wantSuccess: true,
		},
		{
			name:       "malformed body",
			body:       `{"type":`,
			wantStatus: http.StatusBadRequest,
			wantError:  "decoding",
		},
		{
			name:       "unknown type",
			body:       `{"type":"PEER","deviceId":"p1"}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "unknown device type",
		},
		{
			name:       "slave of an offline master",
			body:       `{"type":"SLAVE","deviceId":"s1","masterDeviceId":"m1"}`,
			wantStatus: http.StatusConflict,
			wantError:  relay.ErrMasterOffline.Error(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, resp := postRegister(t, server, tt.body)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantSuccess, resp.Success)
			if tt.wantSuccess {
				assert.NotEmpty(t, resp.Token)
				require.NotNil(t, resp.DeviceInfo)
				assert.Equal(t, "m1", resp.DeviceInfo.DeviceID)
				return
			}
			assert.Contains(t, resp.Error, tt.wantError)
		})
	}
}

func TestChannel_RequiresValidToken(t *testing.T) {
	server, _ := newTestRouter(t)

	tests := []struct {
		name  string
		token string
	}{
		{name: "no token"},
		{name: "garbage token", token: "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, resp, err := dialChannel(server, tt.token)
			require.Error(t, err)
			require.NotNil(t, resp)
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		})
	}
}

func TestChannel_PairsMasterAndSlave(t *testing.T) {
	server, services := newTestRouter(t)

	status, master := postRegister(t, server, `{"type":"MASTER","deviceId":"m1"}`)
	require.Equal(t, http.StatusOK, status)

	masterConn, _, err := dialChannel(server, master.Token)
	require.NoError(t, err)
	defer masterConn.Close()
	require.Eventually(t, func() bool { _, ok := services.Hub.Online("m1"); return ok }, 2*time.Second, 5*time.Millisecond)

	status, slave := postRegister(t, server, `{"type":"SLAVE","deviceId":"s1","masterDeviceId":"m1"}`)
	require.Equal(t, http.StatusOK, status)

	slaveConn, _, err := dialChannel(server, slave.Token)
	require.NoError(t, err)
	defer slaveConn.Close()

	require.NoError(t, masterConn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := masterConn.ReadMessage()
	require.NoError(t, err)

	var msg models.Message
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, models.TypeSlaveConnected, msg.Type)
	assert.JSONEq(t, `{"deviceId":"s1"}`, string(msg.Data))

	resp, err := http.Get(server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	var health models.RelayHealth
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, models.RelayHealth{Status: "ok", Masters: 1, Slaves: 1}, health)
}

func TestRouter_UnsupportedMethodIsNotFound(t *testing.T) {
	server, _ := newTestRouter(t)

	resp, err := http.Get(server.URL + "/register")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestWithTraceID(t *testing.T) {
	h := &Handler{logger: logger.Nop()}

	tests := []struct {
		name     string
		incoming string
	}{
		{name: "incoming id is reused", incoming: "trace-123"},
		{name: "id is generated"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = w.Header().Get(traceIDHeader)
				w.WriteHeader(http.StatusNoContent)
			})

			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			if tt.incoming != "" {
				req.Header.Set(traceIDHeader, tt.incoming)
			}
			rr := httptest.NewRecorder()
			h.withTraceID(next).ServeHTTP(rr, req)

			got := rr.Header().Get(traceIDHeader)
			require.NotEmpty(t, got)
			assert.Equal(t, got, seen)
			if tt.incoming != "" {
				assert.Equal(t, tt.incoming, got)
			}
		})
	}
}

func TestWithLogging(t *testing.T) {
	var buf bytes.Buffer
	h := &Handler{logger: &logger.Logger{Logger: zerolog.New(&buf)}}

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short"))
	})

	req := httptest.NewRequest(http.MethodPost, "/register", nil)
	rr := httptest.NewRecorder()
	h.withTraceID(h.withLogging(next)).ServeHTTP(rr, req)

	out := buf.String()
	assert.Contains(t, out, `"method":"POST"`)
	assert.Contains(t, out, `"uri":"/register"`)
	assert.Contains(t, out, `"status":418`)
	assert.Contains(t, out, `"size":5`)
	assert.Contains(t, out, `"trace_id":`)
}
