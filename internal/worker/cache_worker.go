package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/marketgo/storefront-api/internal/model"
	"github.com/marketgo/storefront-api/internal/service"
)

const (
	orderEventsQueue = "order.events"
	dlxExchange      = "order.events.dlx"
	dlqQueueName     = "order.events.dlq"
	idempotencyTTL   = 24 * time.Hour
)

// CacheWorker consumes order events and drops the cached product entries for
// every line item touched by the committed mutation, so stale stock never
// outlives a placement or cancellation longer than the delivery lag.
type CacheWorker struct {
	channel     *amqp.Channel
	products    *service.ProductService
	redisClient *redis.Client
	log         *slog.Logger
	done        chan struct{}
}

func NewCacheWorker(
	ch *amqp.Channel,
	products *service.ProductService,
	redisClient *redis.Client,
	log *slog.Logger,
) *CacheWorker {
	return &CacheWorker{
		channel:     ch,
		products:    products,
		redisClient: redisClient,
		log:         log,
		done:        make(chan struct{}),
	}
}

// SetupRabbitMQ declares exchanges, queues, and bindings (DLX/DLQ).
func SetupRabbitMQ(ch *amqp.Channel) error {
	if err := ch.ExchangeDeclare(dlxExchange, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare DLX: %w", err)
	}
	if _, err := ch.QueueDeclare(dlqQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare DLQ: %w", err)
	}
	if err := ch.QueueBind(dlqQueueName, orderEventsQueue, dlxExchange, false, nil); err != nil {
		return fmt.Errorf("bind DLQ: %w", err)
	}
	if _, err := ch.QueueDeclare(orderEventsQueue, true, false, false, false, amqp.Table{
		"x-dead-letter-exchange":    dlxExchange,
		"x-dead-letter-routing-key": orderEventsQueue,
	}); err != nil {
		return fmt.Errorf("declare order events queue: %w", err)
	}
	if err := ch.Qos(1, 0, false); err != nil {
		return fmt.Errorf("set QoS: %w", err)
	}
	return nil
}

func (w *CacheWorker) Start(ctx context.Context) error {
	msgs, err := w.channel.Consume(orderEventsQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	go func() {
		for {
			select {
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				w.processMessage(ctx, msg)
			case <-w.done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	w.log.Info("cache worker started")
	return nil
}

func (w *CacheWorker) Stop() { close(w.done) }

func (w *CacheWorker) processMessage(ctx context.Context, msg amqp.Delivery) {
	var event model.OrderEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		w.log.Error("unmarshal order event", "error", err)
		_ = msg.Nack(false, false)
		return
	}

	log := w.log.With("event_id", event.ID, "type", event.Type, "order_id", event.OrderID)

	// Redelivered events must not double-process.
	idempotencyKey := "event_processed:" + event.ID.String()
	exists, err := w.redisClient.Exists(ctx, idempotencyKey).Result()
	if err != nil {
		log.Error("check idempotency key", "error", err)
		_ = msg.Nack(false, true)
		return
	}
	if exists > 0 {
		log.Info("event already processed, skipping")
		_ = msg.Ack(false)
		return
	}

	for _, productID := range event.ProductIDs {
		w.products.InvalidateCache(ctx, productID)
	}

	if err := w.redisClient.Set(ctx, idempotencyKey, "1", idempotencyTTL).Err(); err != nil {
		log.Error("set idempotency key", "error", err)
	}

	_ = msg.Ack(false)
	log.Info("order event processed", "products", len(event.ProductIDs))
}
