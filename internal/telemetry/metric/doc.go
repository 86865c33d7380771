// Package metric owns the process-wide Prometheus registry for redif.
//
// Components register their collectors against Registry.Registerer; the
// ops HTTP server exposes Registry.Handler at /metrics. Go runtime,
// process and build information collectors are always present.
package metric
