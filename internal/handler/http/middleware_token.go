package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/MKhiriev/go-pair-link/internal/logger"
	"github.com/MKhiriev/go-pair-link/internal/utils"
)

// withDeviceToken validates the registration token of a channel request and
// stores its claims in the request context under [utils.DeviceClaimsCtxKey].
//
// The token is read from the "token" query parameter and, failing that,
// from a bearer "Authorization" header. Requests without a valid token are
// rejected with 401 Unauthorized before the upgrade.
func (h *Handler) withDeviceToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromRequest(r)

		token, err := tokenFromRequest(r)
		if err != nil {
			log.Err(err).Msg("channel request without token")
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}

		ctx := r.Context()
		claims, err := h.services.Registration.Authenticate(ctx, token)
		if err != nil {
			log.Err(err).Msg("channel token rejected")
			http.Error(w, http.StatusText(statusFromError(err)), statusFromError(err))
			return
		}

		ctx = context.WithValue(ctx, utils.DeviceClaimsCtxKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func tokenFromRequest(r *http.Request) (string, error) {
	if token := r.URL.Query().Get("token"); token != "" {
		return token, nil
	}

	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", ErrEmptyToken
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) < 2 {
		return "", ErrInvalidAuthorizationHeader
	}
	if parts[1] == "" {
		return "", ErrEmptyToken
	}
	return parts[1], nil
}
