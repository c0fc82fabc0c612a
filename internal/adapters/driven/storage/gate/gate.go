// Package gate bounds concurrent units of work against a chunk store.
//
// Every adapter acquires one slot per batch write and releases it on every
// exit path. When all slots are taken the gate either blocks until one frees
// (optionally bounded by a timeout) or fails immediately with
// domain.ErrPoolExhausted.
package gate

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
)

// Gate is a weighted semaphore with an exhaustion policy.
type Gate struct {
	sem      *semaphore.Weighted
	slots    int64
	failFast bool
	timeout  time.Duration
}

// New creates a gate with the given number of slots. A non-positive slot
// count is treated as one.
func New(slots int, failFast bool, timeout time.Duration) *Gate {
	if slots <= 0 {
		slots = 1
	}
	return &Gate{
		sem:      semaphore.NewWeighted(int64(slots)),
		slots:    int64(slots),
		failFast: failFast,
		timeout:  timeout,
	}
}

// FromSettings creates a gate from storage settings.
func FromSettings(cfg domain.StorageSettings) *Gate {
	return New(cfg.MaxConns, cfg.FailFast, cfg.AcquireTimeout)
}

// Slots returns the gate capacity.
func (g *Gate) Slots() int {
	return int(g.slots)
}

// Acquire takes one slot. The returned release func must be called exactly
// once when the unit of work ends.
func (g *Gate) Acquire(ctx context.Context) (func(), error) {
	if g.failFast {
		if !g.sem.TryAcquire(1) {
			return nil, domain.ErrPoolExhausted
		}
		return g.release, nil
	}

	waitCtx := ctx
	if g.timeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	if err := g.sem.Acquire(waitCtx, 1); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: no slot after %s", domain.ErrPoolExhausted, g.timeout)
	}
	return g.release, nil
}

func (g *Gate) release() {
	g.sem.Release(1)
}
