package config

import "time"

// Application constants
const (
	AppName = "BikePulse"

	// EnvPrefix namespaces every environment variable, e.g. BIKEPULSE_SERVER_PORT
	EnvPrefix = "BIKEPULSE"

	// ConfigFileEnv points Load at an explicit YAML file
	ConfigFileEnv = EnvPrefix + "_CONFIG_FILE"

	// DotEnvFile is preloaded into the process environment when present
	DotEnvFile = ".env"

	DefaultPort            = 8080
	DefaultDatasetPath     = "data/dataset_clean.csv"
	DefaultLogFile         = "logs/app.log"
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultRequestTimeout  = 20 * time.Second

	WebSocketReadBufferSize  = 1024
	WebSocketWriteBufferSize = 1024
	WebSocketPingPeriod      = 30 * time.Second
	WebSocketPongWait        = 60 * time.Second

	DefaultRateLimit = 100 // requests per second
	DefaultBurstSize = 50
)

// Trace exporters accepted by TelemetryConfig.TraceExporter
const (
	TraceExporterStdout = "stdout"
	TraceExporterNone   = "none"
)

var (
	validLogLevels  = []string{"debug", "info", "warn", "error"}
	validLogFormats = []string{"json", "text"}
	validLogOutputs = []string{"console", "file", "both"}
)
