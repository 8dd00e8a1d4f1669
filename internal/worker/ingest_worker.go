package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"talentsearch/internal/app"
	"talentsearch/internal/cache"
	"talentsearch/internal/platform/rabbitmq"
	"talentsearch/pkg/log"
)

// IngestWorker consumes ingest jobs and runs the ingestion pipeline. One
// worker goroutine processes jobs sequentially; concurrent ingestion runs
// against the same store are not supported, the queue enforces that.
type IngestWorker struct {
	conn      *amqp.Connection
	ingest    *app.IngestService
	jobStatus *cache.JobStatusCache
	queueName string

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewIngestWorker(conn *amqp.Connection, ingest *app.IngestService, jobStatus *cache.JobStatusCache, queueName string) *IngestWorker {
	return &IngestWorker{
		conn:      conn,
		ingest:    ingest,
		jobStatus: jobStatus,
		queueName: queueName,
	}
}

func (w *IngestWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	ch, err := w.conn.Channel()
	if err != nil {
		cancel()
		return fmt.Errorf("open worker channel failed: %w", err)
	}

	_, err = ch.QueueDeclare(
		w.queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("declare worker queue failed: %w", err)
	}

	// Prefetch 1 so a long ingestion does not hold a backlog of unacked jobs.
	if err := ch.Qos(1, 0, false); err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("set worker qos failed: %w", err)
	}

	deliveries, err := ch.Consume(
		w.queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("consume queue failed: %w", err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()

		for {
			select {
			case <-workerCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}
				w.handle(workerCtx, d)
			}
		}
	}()

	return nil
}

func (w *IngestWorker) handle(ctx context.Context, d amqp.Delivery) {
	var job rabbitmq.IngestJob
	if err := json.Unmarshal(d.Body, &job); err != nil {
		log.Error("worker decode ingest job failed", err)
		_ = d.Nack(false, false)
		return
	}

	w.setStatus(ctx, cache.JobStatus{ID: job.ID, Status: cache.JobRunning, Dir: job.Dir})

	report, err := w.ingest.Ingest(ctx, job.Dir)
	if err != nil {
		log.Error("worker ingest failed", err)
		w.setStatus(ctx, cache.JobStatus{ID: job.ID, Status: cache.JobFailed, Dir: job.Dir, Error: err.Error()})
		// Failed jobs are not requeued; the error stays on the job status.
		_ = d.Nack(false, false)
		return
	}

	w.setStatus(ctx, cache.JobStatus{
		ID:        job.ID,
		Status:    cache.JobDone,
		Dir:       job.Dir,
		Documents: report.Documents,
		Chunks:    report.Chunks,
	})
	_ = d.Ack(false)
}

func (w *IngestWorker) setStatus(ctx context.Context, status cache.JobStatus) {
	if err := w.jobStatus.Set(ctx, status); err != nil {
		log.Error("worker update job status failed", err)
	}
}

func (w *IngestWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
