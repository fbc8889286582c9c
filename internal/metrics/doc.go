// Package metrics defines the Prometheus collectors of the launcher.
//
// Collectors are registered on the default registry; the optional control
// API exposes them on /metrics.
package metrics
