// Package app wires the macrocycle HTTP service together and manages its
// lifecycle.
//
// # Initialization Flow
//
//  1. Configuration is loaded by the caller and passed in
//  2. Telemetry (tracing, OTel metrics on a Prometheus registry) is initialized
//  3. The analyzer is created with the application metrics
//  4. The chi router and HTTP server are configured
//
// # Graceful Shutdown
//
// Run blocks until its context is cancelled (the CLI cancels it on SIGINT or
// SIGTERM), then drains in-flight requests within the configured shutdown
// timeout and flushes telemetry. The package never calls os.Exit.
package app
