// Command brokerworker runs a pool of workers against one named queue,
// configured entirely from the process environment.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/caarlos0/env/v6"
	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/go-redis/redis/v8"

	queue "github.com/corebroker/queue"
)

// config is the standalone binary's environment-derived configuration, the
// complement to the koanf-based Configuration struct the DI layer uses for
// in-process construction.
type config struct {
	RedisAddr   string `env:"BROKERWORKER_REDIS_ADDR" envDefault:"127.0.0.1:6379"`
	QueueName   string `env:"BROKERWORKER_QUEUE" envDefault:"default"`
	Concurrency int    `env:"BROKERWORKER_CONCURRENCY" envDefault:"0"`
}

func main() {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		fmt.Fprintln(os.Stderr, "brokerworker: parse env:", err)
		os.Exit(1)
	}

	logger := log.NewLogfmtLogger(os.Stderr)
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	store := queue.NewRedisStore(client)
	broker := queue.NewBroker(store, queue.BrokerConfig{Name: cfg.QueueName}, queue.UseLogger(logger))

	ctx, cancel := context.WithCancel(context.Background())
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		_ = level.Info(logger).Log("msg", "shutting down")
		cancel()
	}()

	go func() {
		if err := broker.RunMaintenance(ctx); err != nil {
			_ = level.Error(logger).Log("msg", "maintenance loop exited", "err", err)
		}
	}()

	pool := queue.NewPool(broker, cfg.QueueName+"-worker", cfg.Concurrency, echoProcessor)
	_ = level.Info(logger).Log("msg", "starting worker pool", "queue", cfg.QueueName)
	if err := pool.Run(ctx); err != nil {
		_ = level.Error(logger).Log("msg", "worker pool exited", "err", err)
		os.Exit(1)
	}
}

// echoProcessor is the default Processor when no application-specific
// handler is linked in: it round-trips the job payload unchanged so the
// binary is runnable out of the box for smoke-testing a deployment. A
// payload that is not valid JSON is reported as a processor error.
func echoProcessor(ctx context.Context, data []byte) ([]byte, error) {
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return data, nil
}
