package queue

import (
	"context"
	"time"
)

// funcListener is a Listener assembled by ListenerBuilder from individual
// callback fields.
type funcListener struct {
	BaseListener
	onJobAdded       func(ctx context.Context, job *Job)
	onJobStarted     func(ctx context.Context, job *Job)
	onJobCompleted   func(ctx context.Context, job *Job)
	onJobFailed      func(ctx context.Context, job *Job, cause error)
	onJobRetry       func(ctx context.Context, job *Job, cause error, delay time.Duration)
	onJobsRecovered  func(ctx context.Context, count int)
	onError          func(ctx context.Context, err error)
}

func (f funcListener) OnJobAdded(ctx context.Context, job *Job) {
	if f.onJobAdded != nil {
		f.onJobAdded(ctx, job)
	}
}

func (f funcListener) OnJobStarted(ctx context.Context, job *Job) {
	if f.onJobStarted != nil {
		f.onJobStarted(ctx, job)
	}
}

func (f funcListener) OnJobCompleted(ctx context.Context, job *Job) {
	if f.onJobCompleted != nil {
		f.onJobCompleted(ctx, job)
	}
}

func (f funcListener) OnJobFailed(ctx context.Context, job *Job, cause error) {
	if f.onJobFailed != nil {
		f.onJobFailed(ctx, job, cause)
	}
}

func (f funcListener) OnJobRetry(ctx context.Context, job *Job, cause error, delay time.Duration) {
	if f.onJobRetry != nil {
		f.onJobRetry(ctx, job, cause, delay)
	}
}

func (f funcListener) OnJobsRecovered(ctx context.Context, count int) {
	if f.onJobsRecovered != nil {
		f.onJobsRecovered(ctx, count)
	}
}

func (f funcListener) OnError(ctx context.Context, err error) {
	if f.onError != nil {
		f.onError(ctx, err)
	}
}

// ListenerBuilder assembles a funcListener one callback at a time. Useful
// in tests and small programs that only care about one or two events.
type ListenerBuilder struct {
	l funcListener
}

// NewListenerBuilder starts an empty ListenerBuilder.
func NewListenerBuilder() *ListenerBuilder {
	return &ListenerBuilder{}
}

func (b *ListenerBuilder) OnJobAdded(f func(ctx context.Context, job *Job)) *ListenerBuilder {
	b.l.onJobAdded = f
	return b
}

func (b *ListenerBuilder) OnJobStarted(f func(ctx context.Context, job *Job)) *ListenerBuilder {
	b.l.onJobStarted = f
	return b
}

func (b *ListenerBuilder) OnJobCompleted(f func(ctx context.Context, job *Job)) *ListenerBuilder {
	b.l.onJobCompleted = f
	return b
}

func (b *ListenerBuilder) OnJobFailed(f func(ctx context.Context, job *Job, cause error)) *ListenerBuilder {
	b.l.onJobFailed = f
	return b
}

func (b *ListenerBuilder) OnJobRetry(f func(ctx context.Context, job *Job, cause error, delay time.Duration)) *ListenerBuilder {
	b.l.onJobRetry = f
	return b
}

func (b *ListenerBuilder) OnJobsRecovered(f func(ctx context.Context, count int)) *ListenerBuilder {
	b.l.onJobsRecovered = f
	return b
}

func (b *ListenerBuilder) OnError(f func(ctx context.Context, err error)) *ListenerBuilder {
	b.l.onError = f
	return b
}

// Build returns the assembled Listener.
func (b *ListenerBuilder) Build() Listener {
	return b.l
}
