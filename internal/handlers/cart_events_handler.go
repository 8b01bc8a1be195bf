package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"pharmacy/internal/models"

	amqp "github.com/streadway/amqp"
)

// DuplicateChecker remembers processed message IDs.
type DuplicateChecker interface {
	Key(queue, messageID string) string
	Seen(ctx context.Context, key string) (bool, error)
}

// CartEventsHandler consumes cart_cleared notifications on the prescription service.
type CartEventsHandler struct {
	log   *slog.Logger
	dedup DuplicateChecker
}

// NewCartEventsHandler creates the handler. dedup may be nil.
func NewCartEventsHandler(log *slog.Logger, dedup DuplicateChecker) *CartEventsHandler {
	return &CartEventsHandler{log: log, dedup: dedup}
}

// HandleCartCleared decodes and logs a cart_cleared message. Redelivered messages are skipped
// when a duplicate checker is configured.
func (h *CartEventsHandler) HandleCartCleared(ctx context.Context, msg amqp.Delivery) error {
	if h.dedup != nil && msg.MessageId != "" {
		seen, err := h.dedup.Seen(ctx, h.dedup.Key(models.CartClearedQueue, msg.MessageId))
		if err != nil {
			h.log.Warn("idempotency check failed, processing anyway", "message_id", msg.MessageId, "err", err)
		} else if seen {
			h.log.Info("skipping duplicate message", "queue", models.CartClearedQueue, "message_id", msg.MessageId)
			return nil
		}
	}

	var event models.CartClearedEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		return fmt.Errorf("failed to decode %s message: %w", models.CartClearedQueue, err)
	}
	h.log.Info("received cart cleared message", "user_id", event.UserID, "cleared_at", event.ClearedAt)
	return nil
}
