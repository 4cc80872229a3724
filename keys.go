package queue

import "fmt"

// Key layout: queue:<name>:{pending|priority|delayed|processing|completed|failed|jobs|stats}.
// namespace bundles the precomputed keys for one queue so broker code never
// concatenates strings inline.
type namespace struct {
	name       string
	jobs       string
	pending    string
	priority   string
	delayed    string
	processing string
	completed  string
	failed     string
	stats      string
}

func newNamespace(name string) namespace {
	prefix := fmt.Sprintf("queue:%s:", name)
	return namespace{
		name:       name,
		jobs:       prefix + "jobs",
		pending:    prefix + "pending",
		priority:   prefix + "priority",
		delayed:    prefix + "delayed",
		processing: prefix + "processing",
		completed:  prefix + "completed",
		failed:     prefix + "failed",
		stats:      prefix + "stats",
	}
}

// Stat counter field names within the "stats" hash.
const (
	statTotal      = "total"
	statPending    = "pending"
	statProcessing = "processing"
	statCompleted  = "completed"
	statFailed     = "failed"
)
