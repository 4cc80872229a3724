package queue

import "time"

// BrokerConfig holds the recognized broker options and their defaults. The
// in-process constructor takes this struct directly; the DI layer in
// dependency.go loads it from contract.ConfigAccessor, keyed by queue name.
type BrokerConfig struct {
	// Name identifies the queue namespace; all backing-store keys are
	// prefixed queue:<Name>:.
	Name string `yaml:"name" json:"name"`
	// MaxRetries is the default upper bound on Attempts when AddJob does
	// not specify one.
	MaxRetries int `yaml:"maxRetries" json:"maxRetries"`
	// RetryDelay is the base backoff delay.
	RetryDelay time.Duration `yaml:"retryDelay" json:"retryDelay"`
	// RetryBackoff is the multiplicative backoff factor per attempt.
	RetryBackoff float64 `yaml:"retryBackoff" json:"retryBackoff"`
	// JobTimeout is the stalled-lease threshold used by CheckStalled.
	JobTimeout time.Duration `yaml:"jobTimeout" json:"jobTimeout"`
	// CleanupInterval is the maintenance loop cadence.
	CleanupInterval time.Duration `yaml:"cleanupInterval" json:"cleanupInterval"`
	// MaxConcurrency is an advisory upper bound for a worker Pool built
	// against this broker.
	MaxConcurrency int `yaml:"maxConcurrency" json:"maxConcurrency"`
}

// DefaultBrokerConfig returns the broker's configuration defaults.
func DefaultBrokerConfig() BrokerConfig {
	return BrokerConfig{
		Name:            "default",
		MaxRetries:      3,
		RetryDelay:      time.Second,
		RetryBackoff:    2,
		JobTimeout:      30 * time.Second,
		CleanupInterval: 60 * time.Second,
		MaxConcurrency:  10,
	}
}

func (c *BrokerConfig) applyDefaults() {
	d := DefaultBrokerConfig()
	if c.Name == "" {
		c.Name = d.Name
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = d.MaxRetries
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = d.RetryDelay
	}
	if c.RetryBackoff <= 0 {
		c.RetryBackoff = d.RetryBackoff
	}
	if c.JobTimeout <= 0 {
		c.JobTimeout = d.JobTimeout
	}
	if c.CleanupInterval <= 0 {
		c.CleanupInterval = d.CleanupInterval
	}
	if c.MaxConcurrency <= 0 {
		c.MaxConcurrency = d.MaxConcurrency
	}
}
