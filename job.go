package queue

import "time"

// Status is the lifecycle state of a Job: pending -> processing ->
// completed, or processing -> retrying -> processing on a retry, or
// processing -> failed once retries are exhausted.
type Status string

const (
	// StatusPending is the initial state of a newly added Job, delayed or
	// not. processDelayed does not rewrite the status when it promotes a
	// retrying Job, so such a Job stays StatusRetrying until getNextJob
	// leases it again.
	StatusPending Status = "pending"
	// StatusRetrying is set by failJob while a Job with remaining
	// attempts waits in the delayed set for its backoff to elapse.
	StatusRetrying Status = "retrying"
	// StatusProcessing is set by getNextJob while a Job is leased to a
	// worker.
	StatusProcessing Status = "processing"
	// StatusCompleted is terminal.
	StatusCompleted Status = "completed"
	// StatusFailed is terminal.
	StatusFailed Status = "failed"
)

// Job is the canonical entity persisted under the "jobs" hash of a queue
// namespace. The broker never inspects Data or Result; it only ever moves
// the Job between collections and rewrites the bookkeeping fields below.
type Job struct {
	ID          string `json:"id"`
	Data        []byte `json:"data"`
	Priority    int    `json:"priority"`
	Attempts    int    `json:"attempts"`
	MaxRetries  int    `json:"maxRetries"`
	Status      Status `json:"status"`
	CreatedAt   int64  `json:"createdAt"`
	CompletedAt int64  `json:"completedAt,omitempty"`
	FailedAt    int64  `json:"failedAt,omitempty"`
	LastError   string `json:"lastError,omitempty"`
	Result      []byte `json:"result,omitempty"`
}

// AddJobOptions are the recognized fields accepted by Broker.AddJob.
// Invalid combinations (negative Priority or Delay, non-positive MaxRetries)
// are rejected with ErrInvalidArgument.
type AddJobOptions struct {
	// JobID, if set, is used verbatim instead of generating one. Callers
	// are responsible for uniqueness within the queue namespace.
	JobID string
	// Priority is non-negative; 0 means normal (FIFO pending queue).
	// Higher values dequeue before lower ones.
	Priority int
	// Delay defers runnability by at least this duration.
	Delay time.Duration
	// MaxRetries bounds Attempts before a Job is permanently failed. Nil
	// means "use the broker default"; if supplied it must be positive, so
	// an explicit zero is rejected rather than silently promoted to the
	// default.
	MaxRetries *int
}

// Retries returns a pointer to n for use as AddJobOptions.MaxRetries.
func Retries(n int) *int {
	return &n
}

func (o AddJobOptions) validate() error {
	if o.Priority < 0 {
		return errInvalidArgument("priority must be non-negative")
	}
	if o.Delay < 0 {
		return errInvalidArgument("delay must be non-negative")
	}
	if o.MaxRetries != nil && *o.MaxRetries <= 0 {
		return errInvalidArgument("maxRetries must be positive")
	}
	return nil
}
