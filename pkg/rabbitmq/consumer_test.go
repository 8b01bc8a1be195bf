package rabbitmq

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAcknowledger counts acks and nacks.
type fakeAcknowledger struct {
	acks  atomic.Int32
	nacks atomic.Int32
}

func (a *fakeAcknowledger) Ack(tag uint64, multiple bool) error {
	a.acks.Add(1)
	return nil
}

func (a *fakeAcknowledger) Nack(tag uint64, multiple, requeue bool) error {
	a.nacks.Add(1)
	return nil
}

func (a *fakeAcknowledger) Reject(tag uint64, requeue bool) error {
	a.nacks.Add(1)
	return nil
}

type fakeBroker struct {
	mu       sync.Mutex
	attempts int
	failures int
	subs     []*fakeSubscription
}

type fakeSubscription struct {
	deliveries chan amqp.Delivery
	closed     chan *amqp.Error
	released   atomic.Bool
}

// subscribe fails the first b.failures attempts, then hands out fresh subscriptions.
func (b *fakeBroker) subscribe() (*subscription, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.attempts++
	if b.attempts <= b.failures {
		return nil, errors.New("connection refused")
	}
	fs := &fakeSubscription{
		deliveries: make(chan amqp.Delivery),
		closed:     make(chan *amqp.Error, 1),
	}
	b.subs = append(b.subs, fs)
	return &subscription{
		deliveries: fs.deliveries,
		closed:     fs.closed,
		close:      func() { fs.released.Store(true) },
	}, nil
}

func (b *fakeBroker) attemptCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.attempts
}

func (b *fakeBroker) latest() *fakeSubscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.subs) == 0 {
		return nil
	}
	return b.subs[len(b.subs)-1]
}

func newTestConsumer(broker *fakeBroker, handler MessageHandler, delay time.Duration) *Consumer {
	c := NewConsumer(ConsumerConfig{Queue: "cart_cleared", RetryDelay: delay}, handler,
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	c.subscribe = broker.subscribe
	return c
}

func runConsumer(ctx context.Context, c *Consumer) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		c.Run(ctx)
	}()
	return done
}

func waitStopped(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("consumer did not stop")
	}
}

func TestNewConsumer_DefaultRetryDelay(t *testing.T) {
	c := NewConsumer(ConsumerConfig{Queue: "q"}, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.Equal(t, DefaultRetryDelay, c.cfg.RetryDelay)
}

func TestConsumer_AcksEveryDelivery(t *testing.T) {
	broker := &fakeBroker{}
	ack := &fakeAcknowledger{}
	var handled atomic.Int32
	handler := func(ctx context.Context, msg amqp.Delivery) error {
		handled.Add(1)
		if string(msg.Body) == "bad" {
			return errors.New("malformed payload")
		}
		return nil
	}

	c := newTestConsumer(broker, handler, 10*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	done := runConsumer(ctx, c)

	require.Eventually(t, func() bool { return broker.latest() != nil }, time.Second, 5*time.Millisecond)
	sub := broker.latest()
	assert.Eventually(t, c.Connected, time.Second, 5*time.Millisecond)

	sub.deliveries <- amqp.Delivery{Acknowledger: ack, DeliveryTag: 1, Body: []byte(`{"user_id":"u1"}`)}
	sub.deliveries <- amqp.Delivery{Acknowledger: ack, DeliveryTag: 2, Body: []byte("bad")}

	assert.Eventually(t, func() bool { return ack.acks.Load() == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(2), handled.Load())
	assert.Equal(t, int32(0), ack.nacks.Load())

	cancel()
	waitStopped(t, done)
	assert.True(t, sub.released.Load())
	assert.False(t, c.Connected())
}

func TestConsumer_RetriesUntilConnected(t *testing.T) {
	broker := &fakeBroker{failures: 3}
	c := newTestConsumer(broker, func(context.Context, amqp.Delivery) error { return nil }, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := runConsumer(ctx, c)

	assert.Eventually(t, c.Connected, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, 4, broker.attemptCount())

	cancel()
	waitStopped(t, done)
}

func TestConsumer_ReconnectsAfterConnectionLoss(t *testing.T) {
	broker := &fakeBroker{}
	c := newTestConsumer(broker, func(context.Context, amqp.Delivery) error { return nil }, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := runConsumer(ctx, c)

	require.Eventually(t, func() bool { return broker.latest() != nil }, time.Second, 5*time.Millisecond)
	first := broker.latest()
	first.closed <- &amqp.Error{Code: amqp.ConnectionForced, Reason: "broker restarted"}

	assert.Eventually(t, func() bool { return broker.attemptCount() >= 2 }, 2*time.Second, 5*time.Millisecond)
	assert.True(t, first.released.Load())

	// A closed delivery stream is treated the same way.
	require.Eventually(t, func() bool { return broker.latest() != first }, time.Second, 5*time.Millisecond)
	close(broker.latest().deliveries)
	assert.Eventually(t, func() bool { return broker.attemptCount() >= 3 }, 2*time.Second, 5*time.Millisecond)

	cancel()
	waitStopped(t, done)
}

func TestConsumer_CancelDuringRetryDelay(t *testing.T) {
	broker := &fakeBroker{failures: 1000}
	c := newTestConsumer(broker, nil, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := runConsumer(ctx, c)

	require.Eventually(t, func() bool { return broker.attemptCount() == 1 }, time.Second, 5*time.Millisecond)
	cancel()
	waitStopped(t, done)
	assert.Equal(t, 1, broker.attemptCount())
}
