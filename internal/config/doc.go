// Package config loads BikePulse configuration.
//
// # Configuration Sources
//
// Values are resolved in order of increasing precedence:
//
//	1. Default() values
//	2. A YAML file: $BIKEPULSE_CONFIG_FILE, else config.yaml or configs/config.yaml
//	3. Environment variables, including those preloaded from a .env file
//
// # Environment Variables
//
// Every variable is prefixed with BIKEPULSE and follows the struct nesting:
//
//	BIKEPULSE_SERVER_PORT=8080
//	BIKEPULSE_DATASET_FILE=data/dataset_clean.csv
//	BIKEPULSE_LOGGING_LEVEL=debug
//	BIKEPULSE_SECURITY_RATE_LIMIT_RPS=50
//	BIKEPULSE_TELEMETRY_TRACING_ENABLED=true
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Tests that need no environment should use config.Default().
package config
