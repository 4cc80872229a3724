package queue

// Stats is the snapshot returned by Broker.GetStats. Pending, Processing,
// Delayed, Completed and Failed mirror the live size of each collection
// rather than trusting the best-effort "stats" hash counters wherever the
// two disagree; only Total has no collection to count against and falls
// back to the counter.
type Stats struct {
	Total      int64
	Pending    int64
	Processing int64
	Delayed    int64
	Completed  int64
	Failed     int64
}
