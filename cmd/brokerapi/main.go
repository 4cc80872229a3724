// Command brokerapi is a minimal HTTP producer front-end for the broker:
// it exposes job submission and queue stats over REST without requiring a
// caller to link against the Go package directly.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/go-redis/redis/v8"

	queue "github.com/corebroker/queue"
)

type config struct {
	RedisAddr string `env:"BROKERAPI_REDIS_ADDR" envDefault:"127.0.0.1:6379"`
	Addr      string `env:"BROKERAPI_ADDR" envDefault:":8080"`
}

type server struct {
	logger log.Logger
	client redis.UniversalClient

	mu      sync.Mutex
	brokers map[string]*queue.Broker
}

func (s *server) broker(name string) *queue.Broker {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.brokers[name]; ok {
		return b
	}
	b := queue.NewBroker(queue.NewRedisStore(s.client), queue.BrokerConfig{Name: name}, queue.UseLogger(s.logger))
	s.brokers[name] = b
	return b
}

type addJobRequest struct {
	Data       json.RawMessage `json:"data"`
	Priority   int             `json:"priority"`
	DelayMs    int64           `json:"delayMs"`
	MaxRetries *int            `json:"maxRetries,omitempty"`
}

type addJobResponse struct {
	ID string `json:"id"`
}

func (s *server) handleAddJob(w http.ResponseWriter, r *http.Request) {
	queueName := chi.URLParam(r, "name")
	var req addJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	id, err := s.broker(queueName).AddJob(r.Context(), req.Data, queue.AddJobOptions{
		Priority:   req.Priority,
		Delay:      time.Duration(req.DelayMs) * time.Millisecond,
		MaxRetries: req.MaxRetries,
	})
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, queue.ErrInvalidArgument) {
			status = http.StatusBadRequest
		}
		http.Error(w, err.Error(), status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(addJobResponse{ID: id})
}

func (s *server) handleStats(w http.ResponseWriter, r *http.Request) {
	queueName := chi.URLParam(r, "name")
	stats, err := s.broker(queueName).GetStats(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(stats)
}

func main() {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		fmt.Fprintln(os.Stderr, "brokerapi: parse env:", err)
		os.Exit(1)
	}

	logger := log.NewLogfmtLogger(os.Stderr)
	s := &server{
		logger:  logger,
		client:  redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}),
		brokers: map[string]*queue.Broker{},
	}

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Route("/v1/queues/{name}", func(r chi.Router) {
		r.Post("/jobs", s.handleAddJob)
		r.Get("/stats", s.handleStats)
	})

	_ = level.Info(logger).Log("msg", "listening", "addr", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, r); err != nil {
		_ = level.Error(logger).Log("msg", "server exited", "err", err)
		os.Exit(1)
	}
}
