// Package queue provides a distributed task queue broker backed by a
// Redis-like key/value store, guaranteeing at-least-once execution with
// retries, priority ordering, scheduled delivery and crash recovery.
//
// It is recommended to read documentation on the core package before getting started on the queue package.
//
// Introduction
//
// Queues in go is not as prominent as in some other languages, since go excels
// at handling concurrency. However, the broker can still offer some benefit
// missing from the native mechanism, say go channels. A job added to the
// broker won't be lost even if the process that produced it exits, and it
// won't be lost even if the worker that picked it up crashes mid-flight: the
// maintenance loop reclaims the lease and retries it. It is also possible
// to schedule a job for delivery after a delay, or to jump the line with a
// higher priority. Useful when you need "send email after 30 days" or "this
// customer's jobs run before everyone else's".
//
// Simple Usage
//
// First construct a Broker over a Store. The Store bundled in this package
// is RedisStore.
//
//  broker := queue.NewBroker(queue.NewRedisStore(client), queue.BrokerConfig{Name: "default"})
//
// Add a job with AddJob. It returns the assigned id:
//
//  id, err := broker.AddJob(ctx, payload, queue.AddJobOptions{MaxRetries: queue.Retries(5)})
//
// To run the job after a delay, or ahead of the FIFO order, set AddJobOptions.Delay or
// AddJobOptions.Priority:
//
//  id, err := broker.AddJob(ctx, payload, queue.AddJobOptions{Delay: 3 * time.Minute})
//
// A Worker repeatedly calls GetNextJob, runs a Processor against the
// returned Job's Data, and reports the outcome with CompleteJob or FailJob.
// Scale by running several Workers concurrently; Pool does this for you:
//
//  pool := queue.NewPool(broker, "email-worker", 0, processEmail)
//  go pool.Run(context.Background())
//
// Note since a job can be retried, it is your Processor's responsibility to
// ensure idempotency: a crash between completing the side effect and
// reporting CompleteJob means the same job may run again.
//
// The maintenance loop promotes delayed jobs once their time has come and
// reclaims stalled leases. It must run continuously alongside any workers:
//
//  go broker.RunMaintenance(context.Background())
//
// Integrate
//
// The queue package exports configuration in this format:
//
//  queue:
//    default:
//      redisName: default
//      maxRetries: 3
//      retryDelaySecond: 1
//      retryBackoff: 2
//      jobTimeoutSecond: 30
//      cleanupIntervalSecond: 60
//      maxConcurrency: 10
//
// While manually constructing the Broker is absolutely feasible, users can use the bundled dependency provider
// without breaking a sweat. Using this approach, the life cycle of the maintenance loop will be managed
// automatically by the core.
//
//  var c *core.C
//  c.Provide(otredis.Providers()) // to provide the redis client
//  c.Provide(queue.Providers())
//
// Sometimes there are valid reasons to use more than one queue. Each Broker however is bounded to only one queue
// namespace. To use multiple queues, multiple brokers are required. Inject
// queue.BrokerMaker to factory a broker with a specific name.
//
//  c.Invoke(function(maker queue.BrokerMaker) {
//    broker, err := maker.Make("default")
//    // see examples for details
//  })
//
// Event-based Jobs
//
// A Listener can be subscribed to a Broker to observe its lifecycle without
// coupling to the storage layer: OnJobAdded, OnJobStarted, OnJobCompleted,
// OnJobFailed, OnJobRetry, OnJobsRecovered and OnError. Embed BaseListener
// to implement only the callbacks you need, or build one inline with
// ListenerBuilder.
//
// Metrics
//
// To gain visibility on the length of the queue, inject a gauge into the core and alias it to queue.Gauge. The
// queue length of the pending, processing, delayed and failed channels is reported to the metrics collector
// (presumably Prometheus) each time GetStats is called; the maintenance loop does not report it.
//
//  c.Provide(di.Deps{func(appName contract.AppName, env contract.Env) queue.Gauge {
//    return prometheus.NewGaugeFrom(
//      stdprometheus.GaugeOpts{
//        Namespace: appName.String(),
//        Subsystem: env.String(),
//        Name:      "queue_length",
//        Help:      "The gauge of queue length",
//      }, []string{"queue", "channel"},
//    )
//  }})
//
// A separate, optional MetricsRecorder, attached with UseMetricsRecorder,
// accumulates job completion counts and durations; the bundled
// PrometheusMetricsRecorder wires this through
// github.com/prometheus/client_golang. Without one a Broker records nothing.
package queue
