package adapter

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/MKhiriev/go-pair-link/internal/logger"
	"github.com/MKhiriev/go-pair-link/internal/utils"
	"github.com/MKhiriev/go-pair-link/models"
)

type httpRegistrationAdapter struct {
	client *utils.HTTPClient
	logger *logger.Logger
}

// NewHTTPRegistrationAdapter constructs the resty implementation of
// [RegistrationAdapter]. requestTimeout bounds every call in addition to the
// caller's context; zero leaves only the context.
func NewHTTPRegistrationAdapter(requestTimeout time.Duration, log *logger.Logger) RegistrationAdapter {
	return &httpRegistrationAdapter{
		client: utils.NewHTTPClient(requestTimeout),
		logger: log.WithComponent("adapter/registration"),
	}
}

// NormalizeBaseURL turns "host:port" or an http(s) URL into a scheme-qualified
// base URL without a trailing slash.
func NormalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("%w: empty address", ErrInvalidAddress)
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("%w: address must include host", ErrInvalidAddress)
	}

	switch u.Scheme {
	case "http", "https":
	case "ws":
		u.Scheme = "http"
	case "wss":
		u.Scheme = "https"
	default:
		return "", fmt.Errorf("%w: unsupported scheme %q", ErrInvalidAddress, u.Scheme)
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// Register implements [RegistrationAdapter].
func (h *httpRegistrationAdapter) Register(ctx context.Context, address string, reg models.DeviceRegistration) (models.RegisterResponse, error) {
	baseURL, err := NormalizeBaseURL(address)
	if err != nil {
		return models.RegisterResponse{}, err
	}

	var result models.RegisterResponse
	resp, err := h.client.R().
		SetContext(ctx).
		SetBody(reg).
		SetResult(&result).
		Post(baseURL + "/register")
	if err != nil {
		return models.RegisterResponse{}, fmt.Errorf("register request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		h.logger.Debug().Str("func", "*httpRegistrationAdapter.Register").
			Str("address", baseURL).Int("status", resp.StatusCode()).Err(err).Msg("registration refused")
		return models.RegisterResponse{}, err
	}

	if !result.Success {
		return result, fmt.Errorf("%w: %s", ErrRegistrationRejected, result.Error)
	}
	if result.Token == "" {
		return result, fmt.Errorf("%w: empty token", ErrRegistrationRejected)
	}

	return result, nil
}
