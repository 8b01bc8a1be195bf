package rabbitmq

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/streadway/amqp"
)

// Client publishes messages over a lazily dialed RabbitMQ connection. A broken connection
// is dropped on the first failed publish and dialed again by the next one.
type Client struct {
	cfg     Config
	log     *slog.Logger
	dial    func(url string) (*amqp.Connection, error)
	mu      sync.Mutex
	conn    *amqp.Connection
	channel *amqp.Channel
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL string
}

// NewClient creates a new RabbitMQ client. No connection is opened until the first publish.
func NewClient(cfg Config, log *slog.Logger) *Client {
	return &Client{
		cfg:  cfg,
		log:  log,
		dial: amqp.Dial,
	}
}

// Connected reports whether the client currently holds an open connection.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil && !c.conn.IsClosed()
}

func (c *Client) channelLocked() (*amqp.Channel, error) {
	if c.conn != nil && !c.conn.IsClosed() && c.channel != nil {
		return c.channel, nil
	}
	c.resetLocked()

	conn, err := c.dial(c.cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	c.conn, c.channel = conn, ch
	c.log.Info("rabbitmq publisher connected")
	return ch, nil
}

func (c *Client) resetLocked() {
	if c.channel != nil {
		_ = c.channel.Close()
	}
	if c.conn != nil {
		_ = c.conn.Close()
	}
	c.conn, c.channel = nil, nil
}

// Publish sends body to queue through the default exchange as a persistent JSON message.
// When durable is set the queue is declared durable before publishing.
func (c *Client) Publish(queue string, durable bool, body []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch, err := c.channelLocked()
	if err != nil {
		return err
	}

	if durable {
		_, err = ch.QueueDeclare(
			queue, // name
			true,  // durable
			false, // delete when unused
			false, // exclusive
			false, // no-wait
			nil,   // arguments
		)
		if err != nil {
			c.resetLocked()
			return fmt.Errorf("failed to declare queue %s: %w", queue, err)
		}
	}

	err = ch.Publish(
		"",    // exchange: default exchange
		queue, // routing key: the queue name
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			MessageId:    uuid.New().String(),
			Timestamp:    time.Now(),
		})
	if err != nil {
		c.resetLocked()
		return fmt.Errorf("failed to publish message to %s: %w", queue, err)
	}
	return nil
}

// Close closes the RabbitMQ channel and connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	c.conn, c.channel = nil, nil
	return errors.Join(errs...)
}
