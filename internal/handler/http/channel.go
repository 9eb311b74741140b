package http

import (
	"net/http"

	"github.com/MKhiriev/go-pair-link/internal/logger"
	"github.com/MKhiriev/go-pair-link/internal/utils"
)

// channel handles GET /ws: it upgrades the request and hands the socket to
// the hub, returning when the channel closes.
func (h *Handler) channel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	claims, ok := utils.GetDeviceClaimsFromContext(ctx)
	if !ok {
		log.Err(ErrNoDeviceClaims).Send()
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// the upgrader already replied
		log.Err(err).Msg("websocket upgrade failed")
		return
	}

	if err = h.services.Hub.Serve(ctx, claims, conn); err != nil {
		log.Warn().Err(err).Str("device_id", claims.DeviceID()).Msg("channel refused")
	}
}
