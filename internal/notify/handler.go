package notify

import (
	"context"
	"encoding/json"
	"fmt"

	kafkax "github.com/ariefcatur/go-affiliate-shop.git/internal/kafka"
	"github.com/ariefcatur/go-affiliate-shop.git/internal/orders"
	"github.com/ariefcatur/go-affiliate-shop.git/internal/redisx"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	kafkago "github.com/segmentio/kafka-go"
)

// Worker consumes OrderPlaced events and dispatches the outbound notification.
type Worker struct {
	Redis       *redis.Client
	Sender      Sender
	ServiceName string
}

// HandleOrderPlaced is the consumer handler. The order is already durably
// committed by the time an event arrives, so a failed send is logged and the
// offset commits anyway; the sink never blocks or retries checkout.
func (w *Worker) HandleOrderPlaced(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != orders.EventOrderPlaced {
		return nil
	}

	// dedup by event_id so a redelivered event does not message twice
	if w.Redis != nil {
		dkey := fmt.Sprintf(redisx.KeyDedup, w.ServiceName, env.EventID)
		exists, _ := redisx.Exists(ctx, w.Redis, dkey)
		if exists {
			return nil
		}
		_ = w.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()
	}

	p, err := kafkax.UnwrapPayload[orders.OrderPlacedPayload](env.Payload)
	if err != nil {
		return err
	}

	if err := w.Sender.Send(ctx, OrderMessage(p)); err != nil {
		log.Error().Err(err).Str("order_id", p.OrderID).Msg("order notification failed")
		return nil
	}
	log.Info().Str("order_id", p.OrderID).Msg("order notification sent")
	return nil
}
