package metrics

// Package metrics defines the events and sink interfaces used to observe
// optimization runs. Sinks like PromSink and InfluxSink record solve
// summaries and, when supported, full schedules, and can be combined with
// NewMultiSink. A collector forwards events from the internal event bus to
// the configured sinks.
