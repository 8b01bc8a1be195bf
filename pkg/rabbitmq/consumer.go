package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	amqp "github.com/streadway/amqp"
)

// DefaultRetryDelay is the pause between reconnect attempts.
const DefaultRetryDelay = 5 * time.Second

// ErrConnectionClosed is reported when the broker closes the connection or the delivery stream.
var ErrConnectionClosed = errors.New("rabbitmq connection closed")

// MessageHandler processes one delivery. Every delivery is acknowledged after the handler
// returns, whatever the outcome; errors are only logged.
type MessageHandler func(ctx context.Context, msg amqp.Delivery) error

// ConsumerConfig describes the queue to consume and how to reconnect.
type ConsumerConfig struct {
	URL        string
	Queue      string
	RetryDelay time.Duration
}

type subscription struct {
	deliveries <-chan amqp.Delivery
	closed     <-chan *amqp.Error
	close      func()
}

// Consumer keeps a subscription to a durable queue alive. Any connection-level failure tears
// the session down and starts over after a fixed delay, until the context is cancelled.
type Consumer struct {
	cfg       ConsumerConfig
	handler   MessageHandler
	log       *slog.Logger
	subscribe func() (*subscription, error)
	connected atomic.Bool
}

// NewConsumer creates a consumer for cfg.Queue.
func NewConsumer(cfg ConsumerConfig, handler MessageHandler, log *slog.Logger) *Consumer {
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}
	c := &Consumer{
		cfg:     cfg,
		handler: handler,
		log:     log,
	}
	c.subscribe = c.subscribeAMQP
	return c
}

// Connected reports whether a subscription is currently active.
func (c *Consumer) Connected() bool {
	return c.connected.Load()
}

// Run blocks until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) {
	for {
		err := c.session(ctx)
		if ctx.Err() != nil {
			c.log.Info("consumer stopped", "queue", c.cfg.Queue)
			return
		}
		c.log.Error("rabbitmq consumer error, reconnecting",
			"queue", c.cfg.Queue, "err", err, "delay", c.cfg.RetryDelay)

		timer := time.NewTimer(c.cfg.RetryDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			c.log.Info("consumer stopped", "queue", c.cfg.Queue)
			return
		case <-timer.C:
		}
	}
}

func (c *Consumer) session(ctx context.Context) error {
	sub, err := c.subscribe()
	if err != nil {
		return err
	}
	c.connected.Store(true)
	defer func() {
		c.connected.Store(false)
		sub.close()
	}()

	c.log.Info("consuming messages", "queue", c.cfg.Queue)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case amqpErr, ok := <-sub.closed:
			if !ok || amqpErr == nil {
				return ErrConnectionClosed
			}
			return amqpErr
		case msg, ok := <-sub.deliveries:
			if !ok {
				return ErrConnectionClosed
			}
			c.handle(ctx, msg)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, msg amqp.Delivery) {
	if err := c.handler(ctx, msg); err != nil {
		c.log.Error("failed to process message",
			"queue", c.cfg.Queue, "delivery_tag", msg.DeliveryTag, "err", err)
	}
	if err := msg.Ack(false); err != nil {
		c.log.Error("failed to ack message", "queue", c.cfg.Queue, "delivery_tag", msg.DeliveryTag, "err", err)
	}
}

func (c *Consumer) subscribeAMQP() (*subscription, error) {
	conn, err := amqp.Dial(c.cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	queue, err := ch.QueueDeclare(
		c.cfg.Queue, // name
		true,        // durable
		false,       // delete when unused
		false,       // exclusive
		false,       // no-wait
		nil,         // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue %s: %w", c.cfg.Queue, err)
	}

	msgs, err := ch.Consume(
		queue.Name, // queue
		"",         // consumer tag
		false,      // auto-ack
		false,      // exclusive
		false,      // no-local
		false,      // no-wait
		nil,        // args
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to register consumer on %s: %w", c.cfg.Queue, err)
	}

	return &subscription{
		deliveries: msgs,
		closed:     conn.NotifyClose(make(chan *amqp.Error, 1)),
		close: func() {
			_ = ch.Close()
			_ = conn.Close()
		},
	}, nil
}
