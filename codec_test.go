package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJSONCodec_RoundTrip(t *testing.T) {
	codec := jsonCodec{}
	job := &Job{
		ID:         "abc",
		Data:       []byte(`{"x":1}`),
		Priority:   3,
		MaxRetries: 5,
		Status:     StatusPending,
		CreatedAt:  1000,
	}

	encoded, err := codec.Marshal(job)
	assert.NoError(t, err)

	decoded, err := codec.Unmarshal(encoded)
	assert.NoError(t, err)
	assert.Equal(t, job, decoded)
}

func TestJSONCodec_Unmarshal_Invalid(t *testing.T) {
	codec := jsonCodec{}
	_, err := codec.Unmarshal([]byte("not json"))
	assert.Error(t, err)
}
