// Package middleware provides HTTP middleware for the preview server's
// chi router.
//
// # OpenTelemetry
//
// OpenTelemetry starts a server span per request named after the matched
// route, records the response status and marks 5xx responses as errors.
// Handlers reach the span through the request context:
//
//	r := chi.NewRouter()
//	r.Use(middleware.OpenTelemetry(middleware.WithTracerName("preview")))
//
// # Prometheus
//
// Prometheus counts requests and observes their duration, labelled by route
// pattern rather than raw path to keep cardinality bounded:
//   - <ns>_http_requests_total{route, status}
//   - <ns>_http_request_duration_seconds{route}
//
//	reg := prometheus.NewRegistry()
//	r.Use(middleware.Prometheus(middleware.WithRegistry(reg)))
//	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
//
// Each call to Prometheus registers its own collectors; register once per
// registry.
package middleware
