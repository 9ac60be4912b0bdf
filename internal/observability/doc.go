// Package observability provides structured logging and distributed tracing
// for the EduTrackr API.
//
// This package implements:
//   - zap logger construction from level and format settings
//   - OpenTelemetry tracer provider setup with an OTLP/HTTP exporter
//   - HTTP middleware that opens a server span per request
package observability
