// Package worker runs periodic background tasks.
package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Task is one periodic job.
type Task struct {
	// Name identifies the task in logs
	Name string

	// Interval between runs. Tasks with a zero interval are not scheduled.
	Interval time.Duration

	// Timeout bounds a single run. Zero means Interval.
	Timeout time.Duration

	Run func(ctx context.Context) error
}

// Config holds worker configuration
type Config struct {
	// WorkerID uniquely identifies this worker instance
	WorkerID string
}

// Worker runs each task on its own ticker. A run that is still in flight
// when its next tick fires causes that tick to be skipped.
type Worker struct {
	config Config
	tasks  []Task
	logger zerolog.Logger
	wg     sync.WaitGroup
}

// NewWorker creates a new background worker
func NewWorker(config Config, logger zerolog.Logger, tasks ...Task) *Worker {
	if config.WorkerID == "" {
		config.WorkerID = fmt.Sprintf("worker-%s", uuid.New().String()[:8])
	}
	return &Worker{
		config: config,
		tasks:  tasks,
		logger: logger.With().Str("worker_id", config.WorkerID).Logger(),
	}
}

// Start runs the tasks until ctx is cancelled, then waits for in-flight
// runs to return.
func (w *Worker) Start(ctx context.Context) error {
	scheduled := 0
	for _, t := range w.tasks {
		if t.Interval <= 0 || t.Run == nil {
			w.logger.Debug().Str("task", t.Name).Msg("task disabled")
			continue
		}
		scheduled++
		w.wg.Add(1)
		go w.loop(ctx, t)
	}
	w.logger.Info().Int("tasks", scheduled).Msg("worker starting")

	<-ctx.Done()
	w.wg.Wait()
	w.logger.Info().Msg("worker stopped")
	return ctx.Err()
}

func (w *Worker) loop(ctx context.Context, t Task) {
	defer w.wg.Done()

	ticker := time.NewTicker(t.Interval)
	defer ticker.Stop()

	// Semaphore of one: overlapping runs are skipped, not queued.
	sem := make(chan struct{}, 1)
	var running sync.WaitGroup
	defer running.Wait()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			select {
			case sem <- struct{}{}:
				running.Add(1)
				go func() {
					defer running.Done()
					defer func() { <-sem }()
					w.runOnce(ctx, t)
				}()
			default:
				w.logger.Warn().Str("task", t.Name).Msg("previous run still in progress, skipping")
			}
		}
	}
}

// runOnce executes t with its timeout and logs the outcome. Panics are
// recovered so one bad run does not stop the schedule.
func (w *Worker) runOnce(ctx context.Context, t Task) {
	timeout := t.Timeout
	if timeout <= 0 {
		timeout = t.Interval
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	logger := w.logger.With().Str("task", t.Name).Logger()
	runCtx = logger.WithContext(runCtx)

	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("task panicked")
		}
	}()

	if err := t.Run(runCtx); err != nil {
		logger.Error().Err(err).Msg("task failed")
	}
}
