package queue

import (
	"context"
	"math"
	"strconv"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/go-kit/kit/metrics"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Broker is the queue broker — the heart of the system. It owns one queue
// namespace (pending list, priority set, delayed set, processing map,
// terminal lists, job table, stats counters) and implements AddJob,
// GetNextJob, CompleteJob, FailJob, retryJob, ProcessDelayed, and
// CheckStalled against a Store, built with the functional-option
// constructor idiom (NewBroker / BrokerOption).
type Broker struct {
	ns     namespace
	store  Store
	codec  Codec
	logger log.Logger
	events emitter
	config BrokerConfig

	gauge    metrics.Gauge
	recorder MetricsRecorder
}

// BrokerOption configures a Broker at construction time.
type BrokerOption func(*Broker)

// UseLogger swaps the broker's logger.
func UseLogger(logger log.Logger) BrokerOption {
	return func(b *Broker) { b.logger = logger }
}

// UseCodec swaps the Job record codec.
func UseCodec(codec Codec) BrokerOption {
	return func(b *Broker) { b.codec = codec }
}

// UseGauge reports queue-length metrics through a go-kit metrics.Gauge.
func UseGauge(gauge metrics.Gauge) BrokerOption {
	return func(b *Broker) { b.gauge = gauge }
}

// UseMetricsRecorder wires the metrics-accumulator collaborator
// (RecordJobCompleted, RecordJobFailed, GetMetrics).
func UseMetricsRecorder(recorder MetricsRecorder) BrokerOption {
	return func(b *Broker) { b.recorder = recorder }
}

// UseListener subscribes a Listener at construction time.
func UseListener(l Listener) BrokerOption {
	return func(b *Broker) { b.events.Subscribe(l) }
}

// NewBroker wraps a Store for one queue namespace. config.Name selects the
// namespace; all other zero-valued fields of config receive defaults.
func NewBroker(store Store, config BrokerConfig, opts ...BrokerOption) *Broker {
	config.applyDefaults()
	b := &Broker{
		ns:       newNamespace(config.Name),
		store:    store,
		codec:    jsonCodec{},
		logger:   log.NewNopLogger(),
		config:   config,
		recorder: nopMetricsRecorder{},
	}
	for _, f := range opts {
		f(b)
	}
	return b
}

func nowMillis() int64 {
	return time.Now().UnixNano() / int64(time.Millisecond)
}

// AddJob persists data as a new Job and places it in exactly one of
// {delayed, priority, pending}. It returns the assigned id.
func (b *Broker) AddJob(ctx context.Context, data []byte, opts AddJobOptions) (string, error) {
	if err := opts.validate(); err != nil {
		return "", err
	}

	id := opts.JobID
	if id == "" {
		id = uuid.NewString()
	}
	maxRetries := b.config.MaxRetries
	if opts.MaxRetries != nil {
		maxRetries = *opts.MaxRetries
	}

	job := &Job{
		ID:         id,
		Data:       data,
		Priority:   opts.Priority,
		Attempts:   0,
		MaxRetries: maxRetries,
		Status:     StatusPending,
		CreatedAt:  nowMillis(),
	}

	encoded, err := b.codec.Marshal(job)
	if err != nil {
		return "", errors.Wrap(err, "marshal job")
	}
	if err := b.store.HSet(ctx, b.ns.jobs, id, encoded); err != nil {
		return "", err
	}

	placedPending := false
	switch {
	case opts.Delay > 0:
		if err := b.store.ZAdd(ctx, b.ns.delayed, float64(nowMillis()+opts.Delay.Milliseconds()), id); err != nil {
			return "", err
		}
	case opts.Priority > 0:
		if err := b.store.ZAdd(ctx, b.ns.priority, float64(-opts.Priority), id); err != nil {
			return "", err
		}
	default:
		if err := b.store.RPush(ctx, b.ns.pending, id); err != nil {
			return "", err
		}
		placedPending = true
	}

	if _, err := b.store.HIncrBy(ctx, b.ns.stats, statTotal, 1); err != nil {
		_ = level.Warn(b.logger).Log("err", err, "op", "addJob.stats")
	}
	// stats.pending is only bumped when the job lands directly in the
	// pending list, not when it lands in priority or delayed; GetStats
	// re-derives the authoritative count from collection sizes regardless.
	if placedPending {
		if _, err := b.store.HIncrBy(ctx, b.ns.stats, statPending, 1); err != nil {
			_ = level.Warn(b.logger).Log("err", err, "op", "addJob.stats")
		}
	}

	b.events.jobAdded(ctx, job)
	return id, nil
}

// GetNextJob atomically pops one id, preferring priority over pending,
// and returns the loaded Job. It returns (nil, nil) when both sources are
// empty — it never blocks.
func (b *Broker) GetNextJob(ctx context.Context) (*Job, error) {
	now := nowMillis()

	id, ok, err := b.store.DequeuePriority(ctx, b.ns.priority, b.ns.processing, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		id, ok, err = b.store.DequeuePending(ctx, b.ns.pending, b.ns.processing, now)
		if err != nil {
			return nil, err
		}
	}
	if !ok {
		return nil, nil
	}

	if _, err := b.store.HIncrBy(ctx, b.ns.stats, statPending, -1); err != nil {
		_ = level.Warn(b.logger).Log("err", err, "op", "getNextJob.stats")
	}
	if _, err := b.store.HIncrBy(ctx, b.ns.stats, statProcessing, 1); err != nil {
		_ = level.Warn(b.logger).Log("err", err, "op", "getNextJob.stats")
	}

	job, err := b.loadJob(ctx, id)
	if err != nil {
		return nil, err
	}
	if job == nil {
		_ = level.Warn(b.logger).Log("msg", "dequeued id missing from job table", "id", id)
		return nil, nil
	}

	job.Status = StatusProcessing
	if err := b.saveJob(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

// CompleteJob marks a Job successful. It is idempotent: a second terminal
// transition for the same id returns false and is a no-op, and so is a
// report for a Job that is not in the processing map, which is what makes
// it safe for a worker whose lease was already reclaimed by checkStalled
// to report success harmlessly.
func (b *Broker) CompleteJob(ctx context.Context, jobID string, result []byte) (bool, error) {
	job, err := b.loadJob(ctx, jobID)
	if err != nil {
		return false, err
	}
	if job == nil || isTerminal(job.Status) {
		return false, nil
	}
	if _, leased, err := b.store.HGet(ctx, b.ns.processing, jobID); err != nil {
		return false, err
	} else if !leased {
		return false, nil
	}

	job.Status = StatusCompleted
	job.CompletedAt = nowMillis()
	job.Result = result

	if err := b.saveJob(ctx, job); err != nil {
		return false, err
	}
	if err := b.store.HDel(ctx, b.ns.processing, jobID); err != nil {
		return false, err
	}
	if err := b.store.RPush(ctx, b.ns.completed, jobID); err != nil {
		return false, err
	}
	if _, err := b.store.HIncrBy(ctx, b.ns.stats, statProcessing, -1); err != nil {
		_ = level.Warn(b.logger).Log("err", err, "op", "completeJob.stats")
	}
	if _, err := b.store.HIncrBy(ctx, b.ns.stats, statCompleted, 1); err != nil {
		_ = level.Warn(b.logger).Log("err", err, "op", "completeJob.stats")
	}

	b.events.jobCompleted(ctx, job)
	return true, nil
}

// FailJob records a failed attempt. If attempts remain it delegates to
// retryJob and returns true; otherwise it moves the Job to the failed
// list and returns false. Idempotent against a Job already terminal.
func (b *Broker) FailJob(ctx context.Context, jobID string, cause error) (bool, error) {
	job, err := b.loadJob(ctx, jobID)
	if err != nil {
		return false, err
	}
	if job == nil || isTerminal(job.Status) {
		return false, nil
	}

	job.Attempts++
	job.FailedAt = nowMillis()
	if cause != nil {
		job.LastError = cause.Error()
	}

	if job.Attempts < job.MaxRetries {
		if err := b.retryJob(ctx, job, cause); err != nil {
			return false, err
		}
		return true, nil
	}

	job.Status = StatusFailed
	if err := b.saveJob(ctx, job); err != nil {
		return false, err
	}
	if err := b.store.HDel(ctx, b.ns.processing, jobID); err != nil {
		return false, err
	}
	if err := b.store.RPush(ctx, b.ns.failed, jobID); err != nil {
		return false, err
	}
	if _, err := b.store.HIncrBy(ctx, b.ns.stats, statProcessing, -1); err != nil {
		_ = level.Warn(b.logger).Log("err", err, "op", "failJob.stats")
	}
	if _, err := b.store.HIncrBy(ctx, b.ns.stats, statFailed, 1); err != nil {
		_ = level.Warn(b.logger).Log("err", err, "op", "failJob.stats")
	}

	b.events.jobFailed(ctx, job, cause)
	return false, nil
}

// retryJob schedules the next attempt at now + retryDelay*retryBackoff^attempts,
// using the post-increment attempts count.
func (b *Broker) retryJob(ctx context.Context, job *Job, cause error) error {
	delay := time.Duration(float64(b.config.RetryDelay) * math.Pow(b.config.RetryBackoff, float64(job.Attempts)))

	job.Status = StatusRetrying
	if err := b.saveJob(ctx, job); err != nil {
		return err
	}
	if err := b.store.HDel(ctx, b.ns.processing, job.ID); err != nil {
		return err
	}
	if err := b.store.ZAdd(ctx, b.ns.delayed, float64(nowMillis()+delay.Milliseconds()), job.ID); err != nil {
		return err
	}
	if _, err := b.store.HIncrBy(ctx, b.ns.stats, statProcessing, -1); err != nil {
		_ = level.Warn(b.logger).Log("err", err, "op", "retryJob.stats")
	}

	b.events.jobRetry(ctx, job, cause, delay)
	return nil
}

// ProcessDelayed promotes every delayed Job whose score has elapsed into
// its runnable queue (priority or pending), in score-ascending order. It
// is robust to an id present in delayed but missing from the job table:
// such entries are silently skipped.
func (b *Broker) ProcessDelayed(ctx context.Context) (int, error) {
	now := nowMillis()
	ids, err := b.store.ZRangeByScore(ctx, b.ns.delayed, math.Inf(-1), float64(now))
	if err != nil {
		return 0, err
	}

	promoted := 0
	for _, id := range ids {
		if err := b.store.ZRem(ctx, b.ns.delayed, id); err != nil {
			return promoted, err
		}

		job, err := b.loadJob(ctx, id)
		if err != nil {
			return promoted, err
		}
		if job == nil {
			continue
		}

		if job.Priority > 0 {
			if err := b.store.ZAdd(ctx, b.ns.priority, float64(-job.Priority), id); err != nil {
				return promoted, err
			}
		} else {
			if err := b.store.RPush(ctx, b.ns.pending, id); err != nil {
				return promoted, err
			}
		}
		if _, err := b.store.HIncrBy(ctx, b.ns.stats, statPending, 1); err != nil {
			_ = level.Warn(b.logger).Log("err", err, "op", "processDelayed.stats")
		}
		promoted++
	}
	return promoted, nil
}

// CheckStalled reclaims every Job whose processing lease has exceeded
// JobTimeout by failing it (which triggers a retry if attempts remain).
// This is the crash-recovery mechanism that lets a worker die mid-job
// without losing it.
func (b *Broker) CheckStalled(ctx context.Context) (int, error) {
	now := nowMillis()
	leases, err := b.store.HGetAll(ctx, b.ns.processing)
	if err != nil {
		return 0, err
	}

	recovered := 0
	for id, raw := range leases {
		startedAt, parseErr := strconv.ParseInt(string(raw), 10, 64)
		if parseErr != nil {
			continue
		}
		if now-startedAt <= b.config.JobTimeout.Milliseconds() {
			continue
		}
		if _, err := b.FailJob(ctx, id, errTimeout); err != nil {
			b.events.error(ctx, err)
			continue
		}
		recovered++
	}

	b.events.jobsRecovered(ctx, recovered)
	return recovered, nil
}

// GetStats returns a snapshot of queue sizes, preferring live collection
// sizes over the best-effort stats counters wherever they might disagree.
func (b *Broker) GetStats(ctx context.Context) (Stats, error) {
	var s Stats

	pendingLen, err := b.store.LLen(ctx, b.ns.pending)
	if err != nil {
		return s, err
	}
	priorityLen, err := b.store.ZCard(ctx, b.ns.priority)
	if err != nil {
		return s, err
	}
	processingLen, err := b.store.HLen(ctx, b.ns.processing)
	if err != nil {
		return s, err
	}
	delayedLen, err := b.store.ZCard(ctx, b.ns.delayed)
	if err != nil {
		return s, err
	}
	completedLen, err := b.store.LLen(ctx, b.ns.completed)
	if err != nil {
		return s, err
	}
	failedLen, err := b.store.LLen(ctx, b.ns.failed)
	if err != nil {
		return s, err
	}

	total, _, err := b.store.HGet(ctx, b.ns.stats, statTotal)
	if err != nil {
		return s, err
	}
	totalVal, _ := strconv.ParseInt(string(total), 10, 64)

	s = Stats{
		Total:      totalVal,
		Pending:    pendingLen + priorityLen,
		Processing: processingLen,
		Delayed:    delayedLen,
		Completed:  completedLen,
		Failed:     failedLen,
	}

	if b.gauge != nil {
		b.gauge.With("queue", b.ns.name, "channel", "pending").Set(float64(s.Pending))
		b.gauge.With("queue", b.ns.name, "channel", "processing").Set(float64(s.Processing))
		b.gauge.With("queue", b.ns.name, "channel", "delayed").Set(float64(s.Delayed))
		b.gauge.With("queue", b.ns.name, "channel", "failed").Set(float64(s.Failed))
	}
	return s, nil
}

// Subscribe registers a Listener for the broker's lifecycle events.
func (b *Broker) Subscribe(l Listener) {
	b.events.Subscribe(l)
}

func (b *Broker) loadJob(ctx context.Context, id string) (*Job, error) {
	raw, ok, err := b.store.HGet(ctx, b.ns.jobs, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	job, err := b.codec.Unmarshal(raw)
	if err != nil {
		return nil, errors.Wrapf(err, "unmarshal job %s", id)
	}
	return job, nil
}

func (b *Broker) saveJob(ctx context.Context, job *Job) error {
	encoded, err := b.codec.Marshal(job)
	if err != nil {
		return errors.Wrapf(err, "marshal job %s", job.ID)
	}
	return b.store.HSet(ctx, b.ns.jobs, job.ID, encoded)
}

func isTerminal(s Status) bool {
	return s == StatusCompleted || s == StatusFailed
}
