package identity

import (
	"errors"
	"time"

	"github.com/bissquit/storefront-auth/internal/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	authOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metrics.Namespace,
			Subsystem: "auth",
			Name:      "operations_total",
			Help:      "Total auth operations by outcome",
		},
		[]string{"operation", "outcome"},
	)

	passwordHashDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: metrics.Namespace,
			Subsystem: "auth",
			Name:      "password_hash_duration_seconds",
			Help:      "Time spent hashing passwords",
			Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5},
		},
	)
)

// Operation labels.
const (
	opRegister     = "register"
	opAuthenticate = "authenticate"
	opReset        = "reset_password"
)

// outcomeLabel maps a service result to a low-cardinality label.
func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrMissingFields):
		return "missing_fields"
	case errors.Is(err, ErrInvalidRole):
		return "invalid_role"
	case errors.Is(err, ErrEmailExists):
		return "already_registered"
	case errors.Is(err, ErrUserNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidCredentials):
		return "invalid_credential"
	case errors.Is(err, ErrChallengeFailed):
		return "challenge_failed"
	case errors.Is(err, ErrHashing):
		return "hashing_error"
	case errors.Is(err, ErrStoreUnavailable):
		return "store_unavailable"
	default:
		return "error"
	}
}

func recordOutcome(operation string, err error) {
	authOperations.WithLabelValues(operation, outcomeLabel(err)).Inc()
}

func observeHashDuration(start time.Time) {
	passwordHashDuration.Observe(time.Since(start).Seconds())
}
