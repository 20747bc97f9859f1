// Package listeners wires domain events to their side effects: order
// metrics, the confirmation mail job, the administrator websocket feed and
// the customer's own order stream.
package listeners

import (
	"context"
	"fmt"

	"github.com/shashiranjanraj/storefront/app/events"
	"github.com/shashiranjanraj/storefront/app/jobs"
	"github.com/shashiranjanraj/storefront/pkg/event"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
	"github.com/shashiranjanraj/storefront/pkg/queue"
	"github.com/shashiranjanraj/storefront/pkg/sse"
	"github.com/shashiranjanraj/storefront/pkg/ws"
)

// JobDispatcher is satisfied by *queue.Manager.
type JobDispatcher interface {
	Dispatch(ctx context.Context, job queue.Job) error
}

// Publisher is satisfied by *ws.Hub.
type Publisher interface {
	Publish(v any) error
}

// UserPublisher is satisfied by *sse.Broker.
type UserPublisher interface {
	Publish(userID uint, e sse.Event) int
}

// Register attaches every listener to bus. Any target may be nil.
func Register(bus *event.Bus, jobs JobDispatcher, feed Publisher, streams UserPublisher) {
	bus.Listen(events.OrderPlacedEvent, recordOrderValue)
	if jobs != nil {
		bus.Listen(events.OrderPlacedEvent, queueConfirmation(jobs))
	}
	if feed != nil {
		bus.Listen(events.OrderPlacedEvent, broadcast(feed, events.OrderPlacedEvent))
		bus.Listen(events.OrderStatusChangedEvent, broadcast(feed, events.OrderStatusChangedEvent))
	}
	if streams != nil {
		bus.Listen(events.OrderPlacedEvent, notifyOwner(streams, events.OrderPlacedEvent))
		bus.Listen(events.OrderStatusChangedEvent, notifyOwner(streams, events.OrderStatusChangedEvent))
	}
}

func recordOrderValue(_ context.Context, payload any) error {
	e, ok := payload.(events.OrderPlaced)
	if !ok {
		return fmt.Errorf("unexpected payload %T", payload)
	}
	metrics.RecordOrderPlaced(e.Total.InexactFloat64())
	return nil
}

func queueConfirmation(q JobDispatcher) event.Handler {
	return func(ctx context.Context, payload any) error {
		e, ok := payload.(events.OrderPlaced)
		if !ok {
			return fmt.Errorf("unexpected payload %T", payload)
		}
		return q.Dispatch(ctx, &jobs.SendOrderConfirmation{OrderID: e.OrderID})
	}
}

func broadcast(feed Publisher, name string) event.Handler {
	return func(_ context.Context, payload any) error {
		return feed.Publish(ws.Envelope{Event: name, Data: payload})
	}
}

func notifyOwner(streams UserPublisher, name string) event.Handler {
	return func(_ context.Context, payload any) error {
		var owner uint
		switch e := payload.(type) {
		case events.OrderPlaced:
			owner = e.UserID
		case events.OrderStatusChanged:
			owner = e.UserID
		default:
			return fmt.Errorf("unexpected payload %T", payload)
		}
		streams.Publish(owner, sse.Event{Name: name, Data: payload})
		return nil
	}
}
