package breaker

import (
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"interviewgw/internal/metrics"
)

// Settings configures a vendor breaker.
type Settings struct {
	Name             string
	FailureThreshold uint32
	OpenTimeout      time.Duration
}

// New returns a breaker that opens after FailureThreshold consecutive failures
// and lets a single probe through once OpenTimeout has passed.
func New(s Settings, log *zap.Logger) *gobreaker.CircuitBreaker {
	if s.FailureThreshold == 0 {
		s.FailureThreshold = 5
	}
	if s.OpenTimeout <= 0 {
		s.OpenTimeout = 30 * time.Second
	}
	metrics.BreakerState.WithLabelValues(s.Name).Set(float64(gobreaker.StateClosed))

	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        s.Name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     s.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= s.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			metrics.BreakerState.WithLabelValues(name).Set(float64(to))
			log.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
}

// IsOpen reports whether err was produced by a breaker refusing the call.
func IsOpen(err error) bool {
	return err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests
}
