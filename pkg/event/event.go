// Package event is an in-process event bus. Listeners run synchronously with
// Fire, or on a worker pool with Dispatch:
//
//	bus := event.NewBus(workerpool.New(4))
//	bus.Listen("order.placed", func(ctx context.Context, payload any) error { … })
//	bus.Dispatch(ctx, "order.placed", events.OrderPlaced{…})
package event

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/workerpool"
)

// Handler receives an event payload.
type Handler func(ctx context.Context, payload any) error

// Dispatcher is what producers depend on.
type Dispatcher interface {
	Dispatch(ctx context.Context, name string, payload any)
}

// Bus holds listeners keyed by event name.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	pool     *workerpool.Pool
}

// NewBus returns a bus whose Dispatch runs listeners on pool. A nil pool
// makes Dispatch synchronous.
func NewBus(pool *workerpool.Pool) *Bus {
	return &Bus{handlers: make(map[string][]Handler), pool: pool}
}

// Listen registers a handler for the given event name.
func (b *Bus) Listen(name string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[name] = append(b.handlers[name], h)
}

func (b *Bus) listeners(name string) []Handler {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]Handler(nil), b.handlers[name]...)
}

// Fire runs every listener in registration order and joins their errors.
func (b *Bus) Fire(ctx context.Context, name string, payload any) error {
	var errs []error
	for _, h := range b.listeners(name) {
		if err := h(ctx, payload); err != nil {
			errs = append(errs, fmt.Errorf("event %s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// Dispatch hands each listener to the pool and returns at once. Listener
// errors are logged. The listener context survives request cancellation.
// When the pool is saturated the listener runs inline.
func (b *Bus) Dispatch(ctx context.Context, name string, payload any) {
	ctx = context.WithoutCancel(ctx)
	log := logger.WithCtx(ctx)

	for _, h := range b.listeners(name) {
		run := func() {
			if err := h(ctx, payload); err != nil {
				log.Error("event listener failed", "event", name, "error", err)
			}
		}
		if b.pool == nil {
			run()
			continue
		}
		if err := b.pool.Submit(run); err != nil {
			if errors.Is(err, workerpool.ErrPoolClosed) {
				log.Warn("event dropped, bus closed", "event", name)
				continue
			}
			run()
		}
	}
}
