package queue

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Pool runs several Workers against the same Broker concurrently, bounded
// by an errgroup.Group. Each Worker independently polls GetNextJob rather
// than draining a single shared channel; no coordination between workers is
// needed beyond the atomic dequeue itself.
type Pool struct {
	broker  *Broker
	workers []*Worker
}

// NewPool builds n Workers named "<namePrefix>-<i>" against broker,
// bounded by config.MaxConcurrency when n exceeds it. n <= 0 uses
// broker's configured MaxConcurrency.
func NewPool(broker *Broker, namePrefix string, n int, processor Processor) *Pool {
	if n <= 0 || n > broker.config.MaxConcurrency {
		n = broker.config.MaxConcurrency
	}
	workers := make([]*Worker, n)
	for i := 0; i < n; i++ {
		workers[i] = NewWorker(fmt.Sprintf("%s-%d", namePrefix, i), broker, processor)
	}
	return &Pool{broker: broker, workers: workers}
}

// Run starts every worker and blocks until ctx is cancelled or a worker
// returns an error (none do under normal operation; a worker never dies on
// transient broker errors).
func (p *Pool) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, w := range p.workers {
		w := w
		g.Go(func() error {
			return w.Run(ctx)
		})
	}
	return g.Wait()
}

// Stop requests every worker in the pool to stop at its next loop check.
func (p *Pool) Stop() {
	for _, w := range p.workers {
		w.Stop()
	}
}
