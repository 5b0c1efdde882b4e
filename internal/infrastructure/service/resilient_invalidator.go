// Package service wires infrastructure components into the interfaces
// the application layer consumes.
package service

import (
	"context"

	"github.com/campus-hub/campus-conduct-hub/internal/domain/conduct"
	"github.com/campus-hub/campus-conduct-hub/pkg/circuitbreaker"
	"github.com/campus-hub/campus-conduct-hub/pkg/logger"
	"github.com/campus-hub/campus-conduct-hub/pkg/retry"
)

// ResilientInvalidator decorates a conduct.CacheInvalidator with retries
// and a circuit breaker. Invalidation stays best-effort for callers: they
// log the returned error and move on, the decorator just keeps a flaky
// Redis from dragging every mutation through three timeouts.
type ResilientInvalidator struct {
	inner   conduct.CacheInvalidator
	retrier *retry.Retrier
	breaker *circuitbreaker.CircuitBreaker
	log     *logger.Logger
}

// NewResilientInvalidator wraps inner with the cache retry and breaker
// presets.
func NewResilientInvalidator(inner conduct.CacheInvalidator, log *logger.Logger) *ResilientInvalidator {
	if log == nil {
		log = logger.Default()
	}

	onStateChange := func(name string, from, to circuitbreaker.State) {
		log.Warn("cache breaker state change",
			logger.Component(name),
			logger.String("from", from.String()),
			logger.String("to", to.String()),
		)
	}

	return &ResilientInvalidator{
		inner:   inner,
		retrier: retry.CacheRetrier(),
		breaker: circuitbreaker.CacheBreaker(onStateChange),
		log:     log,
	}
}

// InvalidateAll flushes the read views through the breaker, retrying
// transient failures. When the breaker is open it fails immediately.
func (r *ResilientInvalidator) InvalidateAll(ctx context.Context) error {
	return r.breaker.Execute(ctx, func(ctx context.Context) error {
		return r.retrier.Do(ctx, func(ctx context.Context) error {
			if err := r.inner.InvalidateAll(ctx); err != nil {
				return retry.Retryable(err)
			}
			return nil
		})
	})
}
