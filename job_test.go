package queue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAddJobOptions_Validate(t *testing.T) {
	cases := []struct {
		name    string
		opts    AddJobOptions
		wantErr bool
	}{
		{"zero value is valid", AddJobOptions{}, false},
		{"positive priority", AddJobOptions{Priority: 5}, false},
		{"negative priority", AddJobOptions{Priority: -1}, true},
		{"positive delay", AddJobOptions{Delay: time.Second}, false},
		{"negative delay", AddJobOptions{Delay: -time.Second}, true},
		{"unset max retries is valid", AddJobOptions{MaxRetries: nil}, false},
		{"positive max retries", AddJobOptions{MaxRetries: Retries(3)}, false},
		{"explicit zero max retries", AddJobOptions{MaxRetries: Retries(0)}, true},
		{"negative max retries", AddJobOptions{MaxRetries: Retries(-1)}, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := c.opts.validate()
			if c.wantErr {
				assert.ErrorIs(t, err, ErrInvalidArgument)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
