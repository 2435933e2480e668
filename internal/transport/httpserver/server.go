package httpserver

import (
	"net/http"
	"time"

	"wedding-app-go/internal/config"
)

const (
	defaultRequestTimeout = 30 * time.Second
	defaultReadTimeout    = 15 * time.Second
	defaultIdleTimeout    = 60 * time.Second
	writeTimeoutSlack     = 5 * time.Second
)

func New(cfg config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       durationOr(cfg.HTTP.ReadTimeout, defaultReadTimeout),
		// Leave room for the handler timeout response to be written.
		WriteTimeout: requestTimeout(cfg) + writeTimeoutSlack,
		IdleTimeout:  durationOr(cfg.HTTP.IdleTimeout, defaultIdleTimeout),
	}
}

func requestTimeout(cfg config.Config) time.Duration {
	return durationOr(cfg.HTTP.RequestTimeout, defaultRequestTimeout)
}

func durationOr(value, fallback time.Duration) time.Duration {
	if value <= 0 {
		return fallback
	}
	return value
}
