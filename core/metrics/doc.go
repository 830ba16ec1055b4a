// Package metrics defines the sinks that record prediction attempts. Sinks
// like PromSink and InfluxSink live in infra/metrics and register themselves
// by type name; NewMetricsSink combines several of them with a MultiSink.
package metrics
