//go:build integration

package rabbitmq_test

import (
	"context"
	"testing"
	"time"

	"pharmacy/pkg/rabbitmq"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcrabbitmq "github.com/testcontainers/testcontainers-go/modules/rabbitmq"
)

func TestPublishAndConsume(t *testing.T) {
	ctx := context.Background()

	container, err := tcrabbitmq.Run(ctx, "rabbitmq:3.12.11-management-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	url, err := container.AmqpURL(ctx)
	require.NoError(t, err)

	received := make(chan amqp.Delivery, 1)
	consumer := rabbitmq.NewConsumer(rabbitmq.ConsumerConfig{
		URL:        url,
		Queue:      "cart_cleared",
		RetryDelay: 100 * time.Millisecond,
	}, func(ctx context.Context, msg amqp.Delivery) error {
		received <- msg
		return nil
	}, discardLogger())

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go consumer.Run(runCtx)
	require.Eventually(t, consumer.Connected, 10*time.Second, 50*time.Millisecond)

	client := rabbitmq.NewClient(rabbitmq.Config{URL: url}, discardLogger())
	defer client.Close()
	publisher := rabbitmq.NewPublisher(client, 10, discardLogger())
	go publisher.Run(runCtx)

	require.True(t, publisher.Enqueue(rabbitmq.Job{
		Queue:   "cart_cleared",
		Durable: true,
		Payload: map[string]string{"user_id": "u1"},
	}))

	select {
	case msg := <-received:
		assert.JSONEq(t, `{"user_id":"u1"}`, string(msg.Body))
		assert.Equal(t, "application/json", msg.ContentType)
		assert.Equal(t, amqp.Persistent, msg.DeliveryMode)
		assert.NotEmpty(t, msg.MessageId)
	case <-time.After(10 * time.Second):
		t.Fatal("message was not consumed")
	}
	assert.True(t, client.Connected())
}
