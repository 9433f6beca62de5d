// Package worker provides an asynchronous worker pool for journaling gateway
// exchanges using the provided storage.Driver and publishing them with the
// provided eventstream.Publisher.
//
// The pool keeps storage and publishing off the gateway's HTTP hot path so a
// slow journal never delays a coaching reply.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/papercomputeco/innerai/pkg/eventstream"
	"github.com/papercomputeco/innerai/pkg/llm"
	"github.com/papercomputeco/innerai/pkg/logger"
	"github.com/papercomputeco/innerai/pkg/storage"
)

var (
	defaultNumWorkers   uint = 3
	defaultJobQueueSize uint = 256
)

// Job is a unit of work for the worker pool to execute against.
type Job struct {
	Exchange *llm.Exchange
}

// Config is the configuration options for the worker pool.
type Config struct {
	// Driver is the storage backend for persisting exchanges.
	Driver storage.Driver

	// Publisher is the optional event stream publisher. Events are only
	// published for exchanges that were stored successfully.
	Publisher eventstream.Publisher

	// Service names the gateway in published events.
	Service string

	// NumWorkers is the number of background workers in the pool.
	NumWorkers uint

	// QueueSize is the capacity of the buffered job channel (defaults to 256).
	QueueSize uint

	Logger *slog.Logger
}

// Pool processes journal jobs asynchronously via a worker pool.
type Pool struct {
	config *Config
	queue  chan Job
	wg     sync.WaitGroup
	logger *slog.Logger

	closeOnce sync.Once
}

// NewPool creates a new Pool and starts its worker goroutines.
func NewPool(c *Config) (*Pool, error) {
	if c.Driver == nil {
		return nil, fmt.Errorf("worker pool requires a storage driver")
	}

	if c.NumWorkers == 0 {
		c.NumWorkers = defaultNumWorkers
	}

	if c.QueueSize == 0 {
		c.QueueSize = defaultJobQueueSize
	}

	if c.NumWorkers > uint(math.MaxInt) {
		return nil, fmt.Errorf("NumWorkers %d exceeds max int", c.NumWorkers)
	}

	if c.Logger == nil {
		c.Logger = logger.Nop()
	}

	wp := &Pool{
		config: c,
		queue:  make(chan Job, c.QueueSize),
		logger: c.Logger,
	}

	wp.wg.Add(int(c.NumWorkers))
	for i := range c.NumWorkers {
		go wp.worker(i)
	}

	return wp, nil
}

// Enqueue submits a job for processing by the worker pool.
// Returns true if enqueued, false if the queue is full, resulting in the job being dropped
func (p *Pool) Enqueue(job Job) bool {
	if job.Exchange == nil {
		return false
	}

	select {
	case p.queue <- job:
		p.logger.Debug("job queued",
			"exchange_id", job.Exchange.ID,
			"operation", job.Exchange.Operation,
		)
		return true
	default:
		p.logger.Error("job not queued, queue full, job dropped",
			"exchange_id", job.Exchange.ID,
			"operation", job.Exchange.Operation,
		)
		return false
	}
}

// Close signals workers to stop and waits for in-flight jobs to drain.
// Call this during graceful shutdown after the gateway HTTP server has stopped.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		close(p.queue)
		p.wg.Wait()
	})
}

// worker is the inner worker thread that continuously pulls jobs off the jobs queue
func (p *Pool) worker(id uint) {
	defer p.wg.Done()
	p.logger.Debug("worker started", "worker_id", id)

	for job := range p.queue {
		p.processJob(job)
	}

	p.logger.Debug("journal worker stopped", "worker_id", id)
}

// processJob stores the exchange and then publishes it when a publisher is
// configured. Publish errors are logged and never undo the stored exchange.
func (p *Pool) processJob(job Job) {
	ctx := context.Background()

	if err := p.config.Driver.Put(ctx, job.Exchange); err != nil {
		p.logger.Error("async journal storage failed",
			"exchange_id", job.Exchange.ID,
			"operation", job.Exchange.Operation,
			"error", err,
		)
		return
	}

	p.logger.Info("exchange journaled",
		"exchange_id", job.Exchange.ID,
		"operation", job.Exchange.Operation,
		"status", job.Exchange.Status,
		"duration_ms", job.Exchange.DurationMs,
	)

	if p.config.Publisher == nil {
		return
	}

	event := eventstream.NewExchangeRecordedEvent(p.config.Service, job.Exchange)
	if err := p.config.Publisher.PublishExchange(ctx, event); err != nil {
		p.logger.Warn("failed to publish exchange event",
			"exchange_id", job.Exchange.ID,
			"event_id", event.EventID,
			"error", err,
		)
		return
	}

	p.logger.Debug("published exchange event",
		"exchange_id", job.Exchange.ID,
		"event_id", event.EventID,
	)
}
