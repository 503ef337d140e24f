package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mebegu/audiocorrect/internal/objectstore"
	"github.com/mebegu/audiocorrect/internal/storage"
	"github.com/mebegu/audiocorrect/shared/rabbitmq"
)

// Config holds worker configuration
type Config struct {
	Logger        *slog.Logger
	Store         storage.JobStore
	Blobs         objectstore.Store
	RabbitClient  *rabbitmq.Client
	Concurrency   int
	JobTimeout    time.Duration
	PrefetchCount int
	WorkerID      string
	QueueName     string
}

// jobMessage carries one claimed delivery from the dispatcher to the pool.
type jobMessage struct {
	JobID       string
	DeliveryTag uint64
}

// Worker consumes queued audio jobs and runs them through the processor.
type Worker struct {
	logger        *slog.Logger
	processor     *Processor
	rabbitClient  *rabbitmq.Client
	concurrency   int
	prefetchCount int
	workerID      string
	queueName     string
	jobsChan      chan *jobMessage
	wg            sync.WaitGroup
	stopChan      chan struct{}
}

// NewWorker creates a new worker instance
func NewWorker(cfg *Config) *Worker {
	return &Worker{
		logger:        cfg.Logger,
		processor:     NewProcessor(cfg.Store, cfg.Blobs, cfg.Logger, cfg.JobTimeout),
		rabbitClient:  cfg.RabbitClient,
		concurrency:   cfg.Concurrency,
		prefetchCount: cfg.PrefetchCount,
		workerID:      cfg.WorkerID,
		queueName:     cfg.QueueName,
		jobsChan:      make(chan *jobMessage),
		stopChan:      make(chan struct{}),
	}
}

// Start begins consuming and processing jobs. It blocks until ctx is canceled
// or the delivery channel closes.
func (w *Worker) Start(ctx context.Context) error {
	w.logger.Info("Starting worker",
		slog.String("worker_id", w.workerID),
		slog.Int("concurrency", w.concurrency),
		slog.Duration("job_timeout", w.processor.jobTimeout),
	)

	deliveries, err := w.setupConsumer(ctx)
	if err != nil {
		return err
	}

	w.spawnWorkerPool(ctx)
	w.startMessageDispatcher(ctx, deliveries)

	return nil
}

// Stop gracefully stops the worker
func (w *Worker) Stop() {
	w.logger.Info("Stopping worker...")
	close(w.stopChan)
	w.wg.Wait()
	w.logger.Info("Worker stopped")
}
