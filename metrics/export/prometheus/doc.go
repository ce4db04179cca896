// Package prometheus renders engine counters in the Prometheus text format.
//
// Nothing is registered globally; mount [Exporter.Handler] wherever the
// scrape endpoint should live.
package prometheus
