package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// IngestJob is the queue payload for one asynchronous ingestion request.
type IngestJob struct {
	ID  string `json:"id"`
	Dir string `json:"dir"`
}

// IngestJobPublisher enqueues ingest jobs on a durable queue. A single
// consumer drains the queue, which serializes ingestion runs against the
// vector store.
type IngestJobPublisher struct {
	conn      *amqp.Connection
	queueName string
}

func NewIngestJobPublisher(conn *amqp.Connection, queueName string) *IngestJobPublisher {
	return &IngestJobPublisher{
		conn:      conn,
		queueName: queueName,
	}
}

func (p *IngestJobPublisher) Publish(ctx context.Context, job IngestJob) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("open rabbitmq channel failed: %w", err)
	}
	defer ch.Close()

	_, err = ch.QueueDeclare(
		p.queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare queue failed: %w", err)
	}

	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal ingest job failed: %w", err)
	}

	if err := ch.PublishWithContext(
		ctx,
		"",
		p.queueName,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         payload,
			DeliveryMode: amqp.Persistent,
		},
	); err != nil {
		return fmt.Errorf("publish ingest job failed: %w", err)
	}
	return nil
}
