// Package control exposes the setup session over HTTP: the current snapshot,
// a rate-limited manual trigger and the Prometheus metrics.
package control
