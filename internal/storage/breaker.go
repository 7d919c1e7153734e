package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
)

// BreakerSettings tunes the circuit breaker in front of a KV
type BreakerSettings struct {
	// MaxFailures is the number of consecutive failures that opens the circuit
	MaxFailures uint32
	// Timeout is how long the circuit stays open before a trial request
	Timeout time.Duration
}

// DefaultBreakerSettings opens after 3 consecutive failures for 30 seconds
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{MaxFailures: 3, Timeout: 30 * time.Second}
}

// breakerKV fails fast while the wrapped store keeps rejecting requests
type breakerKV struct {
	next KV
	cb   *gobreaker.CircuitBreaker
}

// WithBreaker wraps kv in a circuit breaker. A missing key counts as success.
func WithBreaker(kv KV, settings BreakerSettings, logger *slog.Logger) KV {
	if logger == nil {
		logger = slog.Default()
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "storage",
		MaxRequests: 1,
		Timeout:     settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= settings.MaxFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrKeyNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("storage circuit breaker state changed",
				"name", name, "from", from.String(), "to", to.String())
		},
	})

	return &breakerKV{next: kv, cb: cb}
}

// Get implements KV
func (b *breakerKV) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.Get(ctx, key)
	})
	if err != nil {
		if isBreakerRejection(err) {
			return nil, fmt.Errorf("storage unavailable: %w", err)
		}
		return nil, err
	}
	return value.([]byte), nil
}

// Put implements KV
func (b *breakerKV) Put(ctx context.Context, key string, value []byte) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, b.next.Put(ctx, key, value)
	})
	if isBreakerRejection(err) {
		return &WriteError{Key: key, Err: err}
	}
	return err
}

// Delete implements KV
func (b *breakerKV) Delete(ctx context.Context, key string) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, b.next.Delete(ctx, key)
	})
	if isBreakerRejection(err) {
		return &WriteError{Key: key, Err: err}
	}
	return err
}

// Close implements KV
func (b *breakerKV) Close() error {
	return b.next.Close()
}

func isBreakerRejection(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
