package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// TestLoad tests the Load function with various scenarios
func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		file        string
		wantErr     bool
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "defaults with no env vars",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, Default(), cfg)
			},
		},
		{
			name: "custom environment variables",
			env: map[string]string{
				"BIKEPULSE_SERVER_PORT":                "9090",
				"BIKEPULSE_SERVER_READ_TIMEOUT":        "30s",
				"BIKEPULSE_SECURITY_ALLOWED_ORIGINS":   "http://example.com,https://example.com",
				"BIKEPULSE_SECURITY_RATE_LIMIT_RPS":    "12.5",
				"BIKEPULSE_LOGGING_LEVEL":              "DEBUG",
				"BIKEPULSE_DATASET_FILE":               "/srv/hour.xlsx",
				"BIKEPULSE_DATASET_SHEET":              "hour",
				"BIKEPULSE_DATASET_REQUIRED":           "false",
				"BIKEPULSE_TELEMETRY_TRACING_ENABLED":  "true",
				"BIKEPULSE_TELEMETRY_TRACE_EXPORTER":   "stdout",
				"BIKEPULSE_WEBSOCKET_READ_BUFFER_SIZE": "2048",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9090, cfg.Server.Port)
				assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, []string{"http://example.com", "https://example.com"}, cfg.Security.AllowedOrigins)
				assert.Equal(t, 12.5, cfg.Security.RateLimit.RPS)
				assert.Equal(t, "debug", cfg.Logging.Level)
				assert.Equal(t, "/srv/hour.xlsx", cfg.Dataset.Path)
				assert.Equal(t, "hour", cfg.Dataset.Sheet)
				assert.False(t, cfg.Dataset.Required)
				assert.True(t, cfg.Telemetry.TracingEnabled)
				assert.Equal(t, TraceExporterStdout, cfg.Telemetry.TraceExporter)
				assert.Equal(t, 2048, cfg.WebSocket.ReadBufferSize)
				// untouched values keep their defaults
				assert.Equal(t, DefaultWriteTimeout, cfg.Server.WriteTimeout)
			},
		},
		{
			name: "yaml file overrides defaults",
			file: `
server:
  port: 9000
  read_timeout: 25s
dataset:
  path: data/hour.csv
logging:
  level: warn
  format: text
`,
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9000, cfg.Server.Port)
				assert.Equal(t, 25*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, "data/hour.csv", cfg.Dataset.Path)
				assert.Equal(t, "warn", cfg.Logging.Level)
				assert.Equal(t, "text", cfg.Logging.Format)
				assert.Equal(t, DefaultIdleTimeout, cfg.Server.IdleTimeout)
			},
		},
		{
			name: "env wins over yaml file",
			env:  map[string]string{"BIKEPULSE_SERVER_PORT": "7070"},
			file: "server:\n  port: 9000\n",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 7070, cfg.Server.Port)
			},
		},
		{
			name:    "invalid yaml",
			file:    "server: [unclosed",
			wantErr: true,
		},
		{
			name:    "invalid port number",
			env:     map[string]string{"BIKEPULSE_SERVER_PORT": "99999"},
			wantErr: true,
		},
		{
			name:    "unparseable duration",
			env:     map[string]string{"BIKEPULSE_SERVER_READ_TIMEOUT": "soon"},
			wantErr: true,
		},
		{
			name:    "unknown log level",
			env:     map[string]string{"BIKEPULSE_LOGGING_LEVEL": "verbose"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(ConfigFileEnv, "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if tt.file != "" {
				t.Setenv(ConfigFileEnv, writeFile(t, "config.yaml", tt.file))
			}

			cfg, err := Load()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, cfg)
			if tt.validateCfg != nil {
				tt.validateCfg(t, cfg)
			}
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	path := writeFile(t, ".env", "BIKEPULSE_TEST_DOTENV_ONLY=from-file\nBIKEPULSE_TEST_DOTENV_SET=from-file\n")
	t.Setenv("BIKEPULSE_TEST_DOTENV_SET", "from-env")
	t.Cleanup(func() { os.Unsetenv("BIKEPULSE_TEST_DOTENV_ONLY") })

	require.NoError(t, loadDotEnv(path))
	assert.Equal(t, "from-file", os.Getenv("BIKEPULSE_TEST_DOTENV_ONLY"))
	assert.Equal(t, "from-env", os.Getenv("BIKEPULSE_TEST_DOTENV_SET"))

	assert.NoError(t, loadDotEnv(filepath.Join(t.TempDir(), ".env")))
}

func TestLoadFromFile(t *testing.T) {
	cfg := Default()
	path := writeFile(t, "config.yaml", "websocket:\n  ping_period: 10s\n  pong_wait: 20s\n")

	require.NoError(t, loadFromFile(path, cfg))
	assert.Equal(t, 10*time.Second, cfg.WebSocket.PingPeriod)
	assert.Equal(t, 20*time.Second, cfg.WebSocket.PongWait)
	assert.Equal(t, WebSocketReadBufferSize, cfg.WebSocket.ReadBufferSize)

	assert.Error(t, loadFromFile("/non/existent/file.yaml", cfg))
}

// TestValidate tests the validate method
func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults are valid", mutate: func(*Config) {}},
		{
			name:    "zero port",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantErr: "invalid server port",
		},
		{
			name:    "negative read timeout",
			mutate:  func(c *Config) { c.Server.ReadTimeout = -time.Second },
			wantErr: "read timeout",
		},
		{
			name:    "cors without origins",
			mutate:  func(c *Config) { c.Security.AllowedOrigins = nil },
			wantErr: "allowed origin",
		},
		{
			name: "cors disabled without origins",
			mutate: func(c *Config) {
				c.Security.EnableCORS = false
				c.Security.AllowedOrigins = nil
			},
		},
		{
			name:    "rate limit without burst",
			mutate:  func(c *Config) { c.Security.RateLimit.Burst = 0 },
			wantErr: "rate limit",
		},
		{
			name:    "bad log output",
			mutate:  func(c *Config) { c.Logging.Output = "syslog" },
			wantErr: "log output",
		},
		{
			name:    "empty dataset path",
			mutate:  func(c *Config) { c.Dataset.Path = "" },
			wantErr: "dataset path",
		},
		{
			name:    "pong shorter than ping",
			mutate:  func(c *Config) { c.WebSocket.PongWait = c.WebSocket.PingPeriod },
			wantErr: "pong wait",
		},
		{
			name:    "sample ratio out of range",
			mutate:  func(c *Config) { c.Telemetry.SampleRatio = 1.5 },
			wantErr: "sample ratio",
		},
		{
			name:    "unknown trace exporter",
			mutate:  func(c *Config) { c.Telemetry.TraceExporter = "jaeger" },
			wantErr: "trace exporter",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_FileOutputGetsDefaultPath(t *testing.T) {
	cfg := Default()
	cfg.Logging.Output = "both"
	cfg.Logging.FilePath = ""

	require.NoError(t, cfg.validate())
	assert.Equal(t, DefaultLogFile, cfg.Logging.FilePath)
}

func TestGetConfigFilePath(t *testing.T) {
	t.Setenv(ConfigFileEnv, "/etc/bikepulse/config.yaml")
	assert.Equal(t, "/etc/bikepulse/config.yaml", getConfigFilePath())

	t.Setenv(ConfigFileEnv, "")
	assert.Equal(t, "", getConfigFilePath())
}
