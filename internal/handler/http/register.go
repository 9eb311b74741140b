package http

import (
	"net/http"

	"github.com/MKhiriev/go-pair-link/internal/logger"
	"github.com/MKhiriev/go-pair-link/internal/utils"
	"github.com/MKhiriev/go-pair-link/models"
)

// register handles POST /register. Refusals carry a RegisterResponse with
// Success false and the reason in Error.
func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var reg models.DeviceRegistration
	if err := utils.ReadJSON(r, &reg); err != nil {
		log.Err(err).Msg("invalid JSON was passed")
		writeRegisterError(w, err.Error(), http.StatusBadRequest)
		return
	}

	resp, err := h.services.Registration.Register(ctx, reg)
	if err != nil {
		log.Err(err).Str("device_id", reg.DeviceID).Msg("registration refused")
		writeRegisterError(w, err.Error(), statusFromError(err))
		return
	}

	if _, err = utils.WriteJSON(w, resp, http.StatusOK); err != nil {
		log.Err(err).Msg("error writing registration response")
	}
}

func writeRegisterError(w http.ResponseWriter, reason string, status int) {
	_, _ = utils.WriteJSON(w, models.RegisterResponse{Success: false, Error: reason}, status)
}

// health handles GET /health.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if _, err := utils.WriteJSON(w, h.services.Hub.Stats(), http.StatusOK); err != nil {
		logger.FromRequest(r).Err(err).Msg("error writing health response")
	}
}
