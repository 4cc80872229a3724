// Command brokerctl is a small operator CLI for inspecting and
// maintaining a broker's Redis-backed queues from outside the running
// process.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/go-kit/kit/log"
	"github.com/go-redis/redis/v8"
	"github.com/spf13/cobra"

	queue "github.com/corebroker/queue"
)

var redisAddr string

func main() {
	root := &cobra.Command{
		Use:   "brokerctl",
		Short: "Inspect and maintain queue broker state in Redis",
	}
	root.PersistentFlags().StringVar(&redisAddr, "redis-addr", "127.0.0.1:6379", "address of the Redis instance backing the queue")

	root.AddCommand(statsCmd(), sweepCmd(), flushCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newBroker(name string) *queue.Broker {
	client := redis.NewClient(&redis.Options{Addr: redisAddr})
	store := queue.NewRedisStore(client)
	conf := queue.BrokerConfig{Name: name}
	return queue.NewBroker(store, conf, queue.UseLogger(log.NewLogfmtLogger(os.Stderr)))
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats <queue>",
		Short: "Print the current size of every channel in a queue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			broker := newBroker(args[0])
			stats, err := broker.GetStats(context.Background())
			if err != nil {
				return err
			}
			fmt.Printf("total:      %d\n", stats.Total)
			fmt.Printf("pending:    %d\n", stats.Pending)
			fmt.Printf("processing: %d\n", stats.Processing)
			fmt.Printf("delayed:    %d\n", stats.Delayed)
			fmt.Printf("completed:  %d\n", stats.Completed)
			fmt.Printf("failed:     %d\n", stats.Failed)
			return nil
		},
	}
}

func sweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep <queue>",
		Short: "Force one maintenance tick: promote delayed jobs, reclaim stalled ones",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			broker := newBroker(args[0])
			ctx := context.Background()
			promoted, err := broker.ProcessDelayed(ctx)
			if err != nil {
				return err
			}
			recovered, err := broker.CheckStalled(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("promoted %d delayed job(s), recovered %d stalled job(s)\n", promoted, recovered)
			return nil
		},
	}
}

func flushCmd() *cobra.Command {
	var client *redis.Client
	return &cobra.Command{
		Use:   "flush <queue> <completed|failed>",
		Short: "Clear a terminal audit list; this is an operator action, never automatic",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			channel := args[1]
			if channel != "completed" && channel != "failed" {
				return fmt.Errorf("channel must be \"completed\" or \"failed\", got %q", channel)
			}
			client = redis.NewClient(&redis.Options{Addr: redisAddr})
			key := fmt.Sprintf("queue:%s:%s", args[0], channel)
			n, err := client.Del(context.Background(), key).Result()
			if err != nil {
				return err
			}
			fmt.Printf("flushed %s (%d key removed)\n", key, n)
			return nil
		},
	}
}
