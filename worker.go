package queue

import (
	"context"
	"time"

	"github.com/go-kit/kit/log/level"
)

// Processor runs the job's Data and returns a result, or an error if it
// failed. Go's goroutines let the broker await it directly; implementations
// that need a worker-thread or callback model can wrap one in a Processor
// closure.
type Processor func(ctx context.Context, data []byte) ([]byte, error)

// IdleInterval is the recommended sleep between empty polls.
const IdleInterval = time.Second

// Worker is a single-threaded poll/execute/report loop bound to one Broker
// and one Processor. Scale by instantiating several Workers — see Pool —
// possibly across processes sharing the same backing-store namespace.
type Worker struct {
	ID        string
	broker    *Broker
	processor Processor
	idle      time.Duration

	stop chan struct{}
}

// NewWorker binds a Worker to a Broker and Processor. id is an opaque
// identity that need only be unique among workers sharing the same Broker
// instance for logging/debugging purposes.
func NewWorker(id string, broker *Broker, processor Processor) *Worker {
	return &Worker{
		ID:        id,
		broker:    broker,
		processor: processor,
		idle:      IdleInterval,
		stop:      make(chan struct{}),
	}
}

// Run executes the poll/execute/report loop until ctx is cancelled or
// Stop is called. It finishes any job already in flight before returning;
// there is no forced cancellation of an in-flight processor call.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-w.stop:
			return nil
		default:
		}

		job, err := w.broker.GetNextJob(ctx)
		if err != nil {
			w.broker.events.error(ctx, err)
			_ = level.Warn(w.broker.logger).Log("worker", w.ID, "err", err)
			if !w.sleep(ctx) {
				return nil
			}
			continue
		}
		if job == nil {
			if !w.sleep(ctx) {
				return nil
			}
			continue
		}

		w.process(ctx, job)
	}
}

func (w *Worker) process(ctx context.Context, job *Job) {
	w.broker.events.jobStarted(ctx, job)
	started := time.Now()

	result, procErr := w.processor(ctx, job.Data)

	if procErr != nil {
		if _, err := w.broker.FailJob(ctx, job.ID, procErr); err != nil {
			w.broker.events.error(ctx, err)
			_ = level.Warn(w.broker.logger).Log("worker", w.ID, "job", job.ID, "err", err)
		}
		w.broker.recorder.RecordJobFailed()
		return
	}

	if _, err := w.broker.CompleteJob(ctx, job.ID, result); err != nil {
		w.broker.events.error(ctx, err)
		_ = level.Warn(w.broker.logger).Log("worker", w.ID, "job", job.ID, "err", err)
		return
	}
	w.broker.recorder.RecordJobCompleted(time.Since(started))
}

// Stop requests the loop to exit at the next check. The worker finishes
// its current job, if any, before returning from Run.
func (w *Worker) Stop() {
	close(w.stop)
}

// sleep waits for the idle interval, returning false if ctx was
// cancelled or Stop fired first.
func (w *Worker) sleep(ctx context.Context) bool {
	timer := time.NewTimer(w.idle)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-w.stop:
		return false
	case <-timer.C:
		return true
	}
}
