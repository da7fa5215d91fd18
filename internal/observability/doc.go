// Package observability provides the logging and metrics facilities
// shared by the dispatch engine.
//
// Logging is structured logging over zap behind the narrow Logger
// interface, with a process-global logger for packages that have no
// natural injection point. Metrics are Prometheus collectors grouped
// on a per-engine registry, exposed through Metrics.Handler.
package observability
