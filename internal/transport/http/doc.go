// Package http exposes the analyses over a small JSON API.
//
// Handlers stay thin: they parse the upload, hand the tables to the
// analysis service and render the report. Errors are mapped onto the
// shared error vocabulary with errors.ToAPIError, so a missing series
// or a bad base quarter answers 4xx with the message naming the culprit.
//
// # Routes
//
//	GET  /healthz            liveness and version
//	GET  /metrics            Prometheus exposition
//	POST /api/v1/analyze     multipart: quarterly, annual (optional), base_quarter, sheet
//	POST /api/v1/quarters    multipart: quarterly, sheet
package http
