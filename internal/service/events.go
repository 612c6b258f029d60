package service

import (
	"context"
	"strconv"

	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/logging"
)

// publish sends a domain event. Delivery failures are logged and never fail
// the operation that produced the event.
func publish(ctx context.Context, p events.Publisher, topic string, key uint, typ string, fields map[string]any) {
	if p == nil {
		return
	}
	err := p.PublishEvent(ctx, topic, strconv.FormatUint(uint64(key), 10), events.New(typ, fields))
	if err != nil {
		logging.FromContext(ctx).Warn("publish_event_failed", "topic", topic, "type", typ, "error", err)
	}
}
