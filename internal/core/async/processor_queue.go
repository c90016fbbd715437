package async

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/joseph-ayodele/labreport-import/constants"
)

var ErrQueueClosed = errors.New("queue is shutting down")

type ProcessorQueue struct {
	proc    Extractor
	logger  *slog.Logger
	workers int
	timeout time.Duration
	onDone  func(JobResult)

	ch   chan Job
	wg   sync.WaitGroup
	once sync.Once

	mu     sync.Mutex
	closed bool
}

type Option func(*ProcessorQueue)

func WithWorkers(n int) Option {
	return func(q *ProcessorQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}
func WithQueueSize(n int) Option {
	return func(q *ProcessorQueue) {
		if n > 0 {
			q.ch = make(chan Job, n)
		}
	}
}
func WithProcessTimeout(d time.Duration) Option {
	return func(q *ProcessorQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

// WithResultHandler registers fn to receive every finished job. fn is called
// from worker goroutines and must be safe for concurrent use.
func WithResultHandler(fn func(JobResult)) Option {
	return func(q *ProcessorQueue) {
		q.onDone = fn
	}
}

func NewProcessorQueue(proc Extractor, logger *slog.Logger, opts ...Option) *ProcessorQueue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &ProcessorQueue{
		proc:    proc,
		logger:  logger,
		workers: 4,
		timeout: 3 * time.Minute,
		onDone:  func(JobResult) {},
		ch:      make(chan Job, 256),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *ProcessorQueue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Debug("worker started", "worker_id", workerID)

				for job := range q.ch {
					res := q.process(job)
					if res.Err != nil {
						q.logger.Error("processing failed", "worker_id", workerID, "path", job.Path, "error", res.Err)
					} else {
						q.logger.Info("processed file",
							"worker_id", workerID,
							"path", job.Path,
							"strategy", res.Result.Strategy,
							"values", len(res.Result.Values),
							"elapsed_ms", res.Elapsed.Milliseconds(),
						)
					}
					q.onDone(res)
				}

				q.logger.Debug("worker stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

func (q *ProcessorQueue) process(job Job) JobResult {
	start := time.Now()
	data, err := readReport(job.Path)
	if err != nil {
		return JobResult{Job: job, Err: err, Elapsed: time.Since(start)}
	}
	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	defer cancel()
	res := q.proc.Extract(ctx, data, job.Label)
	return JobResult{Job: job, Result: res, Elapsed: time.Since(start)}
}

func readReport(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open report: %w", err)
	}
	defer func() { _ = f.Close() }()
	data, err := io.ReadAll(io.LimitReader(f, constants.MaxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}
	if len(data) > constants.MaxUploadBytes {
		return nil, fmt.Errorf("report exceeds %d bytes", constants.MaxUploadBytes)
	}
	return data, nil
}

// Enqueue blocks while the buffer is full.
func (q *ProcessorQueue) Enqueue(ctx context.Context, job Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		q.logger.Warn("cannot enqueue: queue is shutting down", "path", job.Path)
		return ErrQueueClosed
	}
	if job.SubmittedAt.IsZero() {
		job.SubmittedAt = time.Now()
	}
	select {
	case q.ch <- job:
		q.logger.Debug("queued file for processing", "path", job.Path)
		return nil
	default:
	}
	q.logger.Warn("queue full, applying backpressure", "path", job.Path)
	select {
	case q.ch <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown stops accepting jobs and waits for queued ones to finish or for
// ctx to expire.
func (q *ProcessorQueue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("shutdown interrupted by context")
	case <-done:
		q.logger.Info("queue drained, shutdown complete")
	}
}
