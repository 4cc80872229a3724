package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/DoNewsCode/core/config"
	"github.com/DoNewsCode/core/contract"
	"github.com/DoNewsCode/core/di"
	"github.com/DoNewsCode/core/otredis"
	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/go-kit/kit/metrics"
	"github.com/oklog/run"
	"github.com/pkg/errors"
)

/*
Providers returns a set of dependencies related to the broker. It includes
the BrokerMaker, the default *Broker and the exported configs.
	Depends On:
		contract.ConfigAccessor
		Store         `optional:"true"`
		otredis.Maker `optional:"true"`
		log.Logger
		contract.AppName
		contract.Env
		Gauge `optional:"true"`
	Provides:
		BrokerMaker
		BrokerFactory
		*Broker
*/
func Providers(optionFunc ...ProvidersOptionFunc) di.Deps {
	option := &providersOption{}
	for _, f := range optionFunc {
		f(option)
	}
	return []interface{}{
		provideBrokerFactory(option),
		provideConfig,
		provideBroker,
		di.Bind(new(BrokerFactory), new(BrokerMaker)),
	}
}

// Gauge is an alias used for dependency injection.
type Gauge metrics.Gauge

// RunnableBroker is the key of *Broker in the dependencies graph. Used as a
// type hint for injection.
type RunnableBroker interface {
	RunMaintenance(ctx context.Context) error
}

// Configuration is the struct for queue configs, keyed by queue name under
// the "queue" config owner. *Second fields exist because config files have
// no time.Duration literal; toBrokerConfig converts them.
type Configuration struct {
	RedisName       string  `yaml:"redisName" json:"redisName"`
	MaxRetries      int     `yaml:"maxRetries" json:"maxRetries"`
	RetryDelay      int     `yaml:"retryDelaySecond" json:"retryDelaySecond"`
	RetryBackoff    float64 `yaml:"retryBackoff" json:"retryBackoff"`
	JobTimeout      int     `yaml:"jobTimeoutSecond" json:"jobTimeoutSecond"`
	CleanupInterval int     `yaml:"cleanupIntervalSecond" json:"cleanupIntervalSecond"`
	MaxConcurrency  int     `yaml:"maxConcurrency" json:"maxConcurrency"`
}

func (c Configuration) toBrokerConfig(name string) BrokerConfig {
	conf := BrokerConfig{
		Name:            name,
		MaxRetries:      c.MaxRetries,
		RetryDelay:      time.Duration(c.RetryDelay) * time.Second,
		RetryBackoff:    c.RetryBackoff,
		JobTimeout:      time.Duration(c.JobTimeout) * time.Second,
		CleanupInterval: time.Duration(c.CleanupInterval) * time.Second,
		MaxConcurrency:  c.MaxConcurrency,
	}
	conf.applyDefaults()
	return conf
}

// makerIn is the injection parameters for provideBrokerFactory.
type makerIn struct {
	di.In

	Conf      contract.ConfigAccessor
	Logger    log.Logger
	AppName   contract.AppName
	Env       contract.Env
	Gauge     Gauge                `optional:"true"`
	Populator contract.DIPopulator `optional:"true"`
	Store     Store                `optional:"true"`
}

// makerOut is the di output from provideBrokerFactory.
type makerOut struct {
	di.Out
	BrokerFactory BrokerFactory
}

func (d makerOut) ModuleSentinel() {}

func (m makerOut) Module() interface{} { return m }

// provideBrokerFactory is a provider for BrokerFactory. The default *Broker
// is provided separately by provideBroker.
func provideBrokerFactory(option *providersOption) func(p makerIn) (makerOut, error) {
	if option.storeConstructor == nil {
		option.storeConstructor = newDefaultStore
	}
	return func(p makerIn) (makerOut, error) {
		var (
			err         error
			brokerConfs map[string]Configuration
		)
		err = p.Conf.Unmarshal("queue", &brokerConfs)
		if err != nil {
			level.Warn(p.Logger).Log("err", err)
		}
		factory := di.NewFactory(func(name string) (di.Pair, error) {
			var (
				ok   bool
				conf Configuration
			)
			p := p
			if conf, ok = brokerConfs[name]; !ok {
				if name != "default" {
					return di.Pair{}, fmt.Errorf("queue Configuration %s not found", name)
				}
				conf = Configuration{RedisName: "default"}
			}

			if p.Gauge != nil {
				p.Gauge = p.Gauge.With("queue", name)
			}

			store := option.store
			if store == nil {
				store = p.Store
			}
			if store == nil {
				store, err = option.storeConstructor(
					StoreConstructorArgs{
						Name:      name,
						Conf:      conf.toBrokerConfig(name),
						Logger:    p.Logger,
						AppName:   p.AppName,
						Env:       p.Env,
						Populator: p.Populator,
					},
				)
				if err != nil {
					return di.Pair{}, err
				}
			}
			opts := []BrokerOption{UseLogger(p.Logger)}
			if p.Gauge != nil {
				opts = append(opts, UseGauge(p.Gauge))
			}
			broker := NewBroker(store, conf.toBrokerConfig(name), opts...)
			return di.Pair{
				Closer: nil,
				Conn:   broker,
			}, nil
		})

		// Brokers must be created eagerly, so the maintenance loop can start on boot up.
		for name := range brokerConfs {
			factory.Make(name)
		}

		brokerFactory := BrokerFactory{Factory: factory}
		return makerOut{
			BrokerFactory: brokerFactory,
		}, nil
	}
}

// ProvideRunGroup implements container.RunProvider. It starts the
// maintenance loop of every named broker.
func (d makerOut) ProvideRunGroup(group *run.Group) {
	for name := range d.BrokerFactory.List() {
		queueName := name
		ctx, cancel := context.WithCancel(context.Background())
		group.Add(func() error {
			broker, err := d.BrokerFactory.Make(queueName)
			if err != nil {
				return err
			}
			return broker.RunMaintenance(ctx)
		}, func(err error) {
			cancel()
		})
	}
}

func newDefaultStore(args StoreConstructorArgs) (Store, error) {
	var maker otredis.Maker
	if args.Populator == nil {
		return nil, errors.New("the default store requires setting the populator in DI container")
	}
	if err := args.Populator.Populate(&maker); err != nil {
		return nil, fmt.Errorf("the default store requires an otredis.Maker in DI container: %w", err)
	}
	client, err := maker.Make(args.Name)
	if err != nil {
		client, err = maker.Make("default")
		if err != nil {
			return nil, fmt.Errorf("the default store requires a redis client called %s or default: %w", args.Name, err)
		}
	}
	return NewRedisStore(client), nil
}

type brokerOut struct {
	di.Out

	DefaultBroker *Broker
}

func provideBroker(maker BrokerMaker) (brokerOut, error) {
	broker, err := maker.Make("default")
	return brokerOut{
		DefaultBroker: broker,
	}, err
}

type configOut struct {
	di.Out

	Config []config.ExportedConfig `group:"config,flatten"`
}

func provideConfig() configOut {
	d := DefaultBrokerConfig()
	configs := []config.ExportedConfig{{
		Owner: "queue",
		Data: map[string]interface{}{
			"queue": map[string]Configuration{
				"default": {
					RedisName:       "default",
					MaxRetries:      d.MaxRetries,
					RetryDelay:      int(d.RetryDelay.Seconds()),
					RetryBackoff:    d.RetryBackoff,
					JobTimeout:      int(d.JobTimeout.Seconds()),
					CleanupInterval: int(d.CleanupInterval.Seconds()),
					MaxConcurrency:  d.MaxConcurrency,
				},
			},
		},
	}}
	return configOut{Config: configs}
}
