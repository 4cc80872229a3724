package queue

import "encoding/json"

// Codec serializes a Job record to and from the wire form stored in the
// "jobs" hash of a queue namespace. Pure, no I/O.
type Codec interface {
	Marshal(job *Job) ([]byte, error)
	Unmarshal(data []byte) (*Job, error)
}

// jsonCodec is the default Codec. JSON is chosen over a binary encoding
// because a Redis hash field is naturally a string, and an operator tool
// (cmd/brokerctl) needs to print a Job without linking against this
// package's concrete types.
type jsonCodec struct{}

func (jsonCodec) Marshal(job *Job) ([]byte, error) {
	return json.Marshal(job)
}

func (jsonCodec) Unmarshal(data []byte) (*Job, error) {
	var job Job
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, err
	}
	return &job, nil
}
