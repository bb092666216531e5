package audit

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"delivery-options-backend/internal/model"
	"delivery-options-backend/internal/store"
)

// writeTimeout bounds a single audit insert.
const writeTimeout = 5 * time.Second

// WorkerPool manages a pool of workers that write audit records.
type WorkerPool struct {
	size  int
	jobs  chan model.AuditRecord
	store store.Store
	log   *zap.Logger
	wg    sync.WaitGroup
}

// NewWorkerPool creates a new worker pool with a queue of queueSize records.
func NewWorkerPool(size, queueSize int, s store.Store, log *zap.Logger) *WorkerPool {
	if log == nil {
		log = zap.NewNop()
	}
	return &WorkerPool{
		size:  size,
		jobs:  make(chan model.AuditRecord, queueSize),
		store: s,
		log:   log,
	}
}

// Start launches the worker goroutines. They drain the queue and exit once
// ctx is done.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		wp.wg.Add(1)
		go wp.worker(ctx, i)
	}
}

// Wait blocks until every worker has exited.
func (wp *WorkerPool) Wait() {
	wp.wg.Wait()
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	defer wp.wg.Done()
	wp.log.Debug("audit worker started", zap.Int("worker", id))
	for {
		select {
		case rec := <-wp.jobs:
			wp.write(rec)
		case <-ctx.Done():
			wp.drain()
			wp.log.Debug("audit worker shutting down", zap.Int("worker", id))
			return
		}
	}
}

func (wp *WorkerPool) drain() {
	for {
		select {
		case rec := <-wp.jobs:
			wp.write(rec)
		default:
			return
		}
	}
}

func (wp *WorkerPool) write(rec model.AuditRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := wp.store.SaveAuditRecord(ctx, &rec); err != nil {
		wp.log.Error("failed to write audit record",
			zap.String("session", rec.SessionID),
			zap.String("channel", rec.Channel),
			zap.Error(err),
		)
	}
}

// Dispatch queues a record. When the queue is full the record is dropped so
// callers never block on the database.
func (wp *WorkerPool) Dispatch(rec model.AuditRecord) {
	select {
	case wp.jobs <- rec:
	default:
		wp.log.Warn("audit queue full, dropping record",
			zap.String("session", rec.SessionID),
			zap.String("channel", rec.Channel),
		)
	}
}

// Jobs returns the jobs channel for testing.
func (wp *WorkerPool) Jobs() chan model.AuditRecord {
	return wp.jobs
}
