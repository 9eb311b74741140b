package http

import (
	"errors"
	"net/http"

	"github.com/MKhiriev/go-pair-link/internal/relay"
	"github.com/MKhiriev/go-pair-link/internal/store"
)

var errorStatusMap = map[error]int{
	relay.ErrInvalidRegistration: http.StatusBadRequest,
	relay.ErrMasterOffline:       http.StatusConflict,
	relay.ErrInvalidToken:        http.StatusUnauthorized,

	store.ErrDeviceNotFound:     http.StatusNotFound,
	store.ErrBuildingSQLQuery:   http.StatusInternalServerError,
	store.ErrExecutingQuery:     http.StatusInternalServerError,
	store.ErrExecutingStatement: http.StatusInternalServerError,
	store.ErrScanningRows:       http.StatusInternalServerError,
}

func statusFromError(err error) int {
	for target, status := range errorStatusMap {
		if errors.Is(err, target) {
			return status
		}
	}
	return http.StatusInternalServerError
}
