// Package app wires the BikePulse server together and runs it.
//
// # Initialization Flow
//
//  1. Load configuration (defaults, YAML file, .env, environment)
//  2. Initialize logging and OpenTelemetry
//  3. Load and validate the dataset; a failure is a *DatasetError
//  4. Create the dashboard, health and websocket services
//  5. Build the chi router and the HTTP server
//
// When Dataset.Required is false a load failure is logged and the server
// starts without data: readiness reports not ready and the dashboard
// routes answer 503.
//
// # Graceful Shutdown
//
// Run waits for SIGINT or SIGTERM, then closes live websocket sessions,
// drains in-flight requests within Server.ShutdownTimeout and flushes the
// telemetry providers. The package never calls os.Exit.
package app
