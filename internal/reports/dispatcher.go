package reports

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/results-hub/results-hub/internal/abstractions"
	"github.com/results-hub/results-hub/internal/config"
	"github.com/results-hub/results-hub/internal/metrics"
)

const (
	defaultWorkers     = 2
	defaultQueueSize   = 16
	defaultTaskTimeout = 2 * time.Minute
)

var ErrDispatcherClosed = errors.New("the report dispatcher is closed")

type job struct {
	name string
	task abstractions.Task
}

// Dispatcher runs report tasks on a fixed number of workers fed by a
// bounded queue. Each task gets its own timeout context that does not
// depend on the request that submitted it.
type Dispatcher struct {
	queue   chan job
	workers int
	timeout time.Duration
	logger  *slog.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func NewDispatcher(conf *config.ReportsConfig, logger *slog.Logger) *Dispatcher {
	workers, queueSize, timeout := defaultWorkers, defaultQueueSize, defaultTaskTimeout
	if conf != nil {
		if conf.Workers > 0 {
			workers = conf.Workers
		}
		if conf.QueueSize > 0 {
			queueSize = conf.QueueSize
		}
		if conf.TaskTimeout > 0 {
			timeout = conf.TaskTimeout
		}
	}
	d := &Dispatcher{
		queue:   make(chan job, queueSize),
		workers: workers,
		timeout: timeout,
		logger:  logger.With("component", "report-dispatcher"),
	}
	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go d.work(i)
	}
	return d
}

// Submit queues the task without blocking. It returns false when the queue
// is full or the dispatcher has been shut down.
func (d *Dispatcher) Submit(name string, task abstractions.Task) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		metrics.RecordTask(name, metrics.TaskOutcomeDropped)
		return false
	}
	select {
	case d.queue <- job{name: name, task: task}:
		metrics.ReportQueueDepth.Set(float64(len(d.queue)))
		return true
	default:
		d.logger.Warn("Report queue is full", "task", name, "queue_size", cap(d.queue))
		metrics.RecordTask(name, metrics.TaskOutcomeDropped)
		return false
	}
}

func (d *Dispatcher) work(worker int) {
	defer d.wg.Done()
	for j := range d.queue {
		metrics.ReportQueueDepth.Set(float64(len(d.queue)))
		d.run(worker, j)
	}
}

func (d *Dispatcher) run(worker int, j job) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	started := time.Now()
	err := safeRun(ctx, j.task)
	if err != nil {
		d.logger.Error("Report task failed", "task", j.name, "worker", worker, "duration", time.Since(started), "error", err.Error())
		metrics.RecordTask(j.name, metrics.TaskOutcomeFailure)
		return
	}
	d.logger.Info("Report task completed", "task", j.name, "worker", worker, "duration", time.Since(started))
	metrics.RecordTask(j.name, metrics.TaskOutcomeSuccess)
}

func safeRun(ctx context.Context, task abstractions.Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("report task panicked: %v", r)
		}
	}()
	return task(ctx)
}

// Shutdown stops accepting tasks and waits for the queued ones to finish
// or for ctx to expire.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrDispatcherClosed
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
