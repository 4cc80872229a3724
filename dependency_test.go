package queue

import (
	"testing"

	"github.com/DoNewsCode/core/config"
	"github.com/DoNewsCode/core/di"
	"github.com/go-kit/kit/log"
	"github.com/stretchr/testify/assert"
)

func TestProvideBrokerFactory(t *testing.T) {
	option := &providersOption{}
	WithStore(newMemoryStore())(option)

	out, err := provideBrokerFactory(option)(makerIn{
		Conf: config.WithAccessor(config.MapAdapter{"queue": map[string]Configuration{
			"default": {RedisName: "default", MaxRetries: 1, JobTimeout: 5},
			"alternative": {RedisName: "default", MaxRetries: 3, JobTimeout: 5},
		}}),
		Logger:  log.NewNopLogger(),
		AppName: config.AppName("test"),
		Env:     config.EnvTesting,
	})
	assert.NoError(t, err)
	assert.NotNil(t, out.BrokerFactory)

	def, err := out.BrokerFactory.Make("alternative")
	assert.NoError(t, err)
	assert.NotNil(t, def)
	assert.Implements(t, (*di.Modular)(nil), out)
}

func TestProvideBrokerFactory_unknownName(t *testing.T) {
	option := &providersOption{}
	WithStore(newMemoryStore())(option)

	out, err := provideBrokerFactory(option)(makerIn{
		Conf:    config.WithAccessor(config.MapAdapter{"queue": map[string]Configuration{}}),
		Logger:  log.NewNopLogger(),
		AppName: config.AppName("test"),
		Env:     config.EnvTesting,
	})
	assert.NoError(t, err)

	_, err = out.BrokerFactory.Make("nonexistent")
	assert.Error(t, err)
}

func TestProvideConfig(t *testing.T) {
	c := provideConfig()
	assert.NotEmpty(t, c.Config)
}
