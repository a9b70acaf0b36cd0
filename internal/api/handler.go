package api

import (
	"errors"
	"time"

	"github.com/terraincognita07/gardenweeks/internal/metrics"
	"github.com/terraincognita07/gardenweeks/internal/services"
	"github.com/terraincognita07/gardenweeks/internal/sessions"
)

const (
	defaultSessionTTL   = 7 * 24 * time.Hour
	loginAttemptsLimit  = 8
	loginAttemptsWindow = 15 * time.Minute
)

type Handler struct {
	bookings     *services.BookingService
	auth         *services.AuthService
	revoker      sessions.Revoker
	metrics      *metrics.Metrics
	secretKey    []byte
	cookieSecure bool
	sessionTTL   time.Duration
	loginLimiter *attemptLimiter
	now          func() time.Time
}

type Options struct {
	SecretKey    string
	CookieSecure bool
	SessionTTL   time.Duration
	Revoker      sessions.Revoker
	Metrics      *metrics.Metrics
}

func NewHandler(bookings *services.BookingService, auth *services.AuthService, options Options) (*Handler, error) {
	if bookings == nil || auth == nil {
		return nil, errors.New("booking and auth services are required")
	}
	if options.SecretKey == "" {
		return nil, errors.New("secret key is required")
	}

	handler := &Handler{
		bookings:     bookings,
		auth:         auth,
		revoker:      options.Revoker,
		metrics:      options.Metrics,
		secretKey:    []byte(options.SecretKey),
		cookieSecure: options.CookieSecure,
		sessionTTL:   options.SessionTTL,
		loginLimiter: newAttemptLimiter(loginAttemptsLimit, loginAttemptsWindow),
		now:          time.Now,
	}
	if handler.revoker == nil {
		handler.revoker = sessions.NewMemoryRevoker()
	}
	if handler.metrics == nil {
		handler.metrics = metrics.New()
	}
	if handler.sessionTTL <= 0 {
		handler.sessionTTL = defaultSessionTTL
	}
	return handler, nil
}
