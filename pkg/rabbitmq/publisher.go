package rabbitmq

import (
	"context"
	"encoding/json"
	"log/slog"
)

// DefaultQueueSize is the publish backlog used when none is configured.
const DefaultQueueSize = 100

// Sink delivers an encoded message to a broker queue.
type Sink interface {
	Publish(queue string, durable bool, body []byte) error
}

// Job is one message waiting to be published.
type Job struct {
	Queue   string
	Durable bool
	Payload interface{}
}

// Publisher decouples request handling from the broker. Enqueue never blocks; a single
// worker started with Run drains the backlog. Delivery failures are logged and dropped.
type Publisher struct {
	sink Sink
	jobs chan Job
	log  *slog.Logger
}

// NewPublisher creates a publisher with a backlog of size jobs.
func NewPublisher(sink Sink, size int, log *slog.Logger) *Publisher {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Publisher{
		sink: sink,
		jobs: make(chan Job, size),
		log:  log,
	}
}

// Enqueue schedules job for publishing. It reports false when the backlog is full and the
// job was dropped.
func (p *Publisher) Enqueue(job Job) bool {
	select {
	case p.jobs <- job:
		return true
	default:
		p.log.Warn("publish backlog full, dropping message", "queue", job.Queue)
		return false
	}
}

// Pending returns the number of jobs waiting in the backlog.
func (p *Publisher) Pending() int {
	return len(p.jobs)
}

// Run publishes queued jobs until ctx is cancelled, then flushes whatever is still queued.
func (p *Publisher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.flush()
			p.log.Info("publisher stopped")
			return
		case job := <-p.jobs:
			p.publish(job)
		}
	}
}

func (p *Publisher) flush() {
	for {
		select {
		case job := <-p.jobs:
			p.publish(job)
		default:
			return
		}
	}
}

func (p *Publisher) publish(job Job) {
	body, err := json.Marshal(job.Payload)
	if err != nil {
		p.log.Error("failed to marshal message", "queue", job.Queue, "err", err)
		return
	}
	if err := p.sink.Publish(job.Queue, job.Durable, body); err != nil {
		p.log.Error("failed to publish message", "queue", job.Queue, "err", err)
		return
	}
	p.log.Info("message published", "queue", job.Queue, "body", string(body))
}
