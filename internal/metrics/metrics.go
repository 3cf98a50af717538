// Package metrics holds the business counters shared by the transport,
// cache and messaging layers. HTTP RED metrics live in the middleware.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const Namespace = "user_service"

var (
	loginAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "login_attempts_total",
			Help:      "Login attempts by outcome code.",
		},
		[]string{"status"},
	)

	tokenRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "token_refresh_total",
			Help:      "Token refreshes by outcome code.",
		},
		[]string{"status"},
	)

	cacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "account_cache",
			Name:      "lookups_total",
			Help:      "Account cache lookups by result (hit, miss, error).",
		},
		[]string{"result"},
	)

	eventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "events",
			Name:      "published_total",
			Help:      "Account events handed to the broker by routing key and result.",
		},
		[]string{"type", "result"},
	)
)

// Cache lookup results.
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

func LoginAttempt(status string) { loginAttempts.WithLabelValues(status).Inc() }

func TokenRefresh(status string) { tokenRefreshes.WithLabelValues(status).Inc() }

func CacheLookup(result string) { cacheLookups.WithLabelValues(result).Inc() }

// EventPublished records one publish attempt; err == nil counts as ok.
func EventPublished(eventType string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	eventsPublished.WithLabelValues(eventType, result).Inc()
}
