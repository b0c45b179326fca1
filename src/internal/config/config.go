package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultWorkers              = 1
	maxWorkers                  = 64
	defaultChannelSize          = 4096
	defaultLogLevel             = "info"
	defaultLogFormat            = "json"
	defaultExportTimeoutSeconds = 30
)

type Config struct {
	Workers            int
	ChannelSize        int
	DisputeWithdrawals bool
	LogLevel           string
	LogFormat          string
	MetricsAddr        string
	OpsUsername        string
	OpsPassword        string
	DatabaseDSN        string
	ExportTimeout      time.Duration
}

// OpsAuthEnabled reports whether the account endpoints require basic auth.
func (c Config) OpsAuthEnabled() bool {
	return c.OpsUsername != "" && c.OpsPassword != ""
}

// ExportEnabled reports whether final balances should be written to Postgres.
func (c Config) ExportEnabled() bool {
	return c.DatabaseDSN != ""
}

func Load() (Config, error) {
	workers, err := intFromEnv("REPLAY_WORKERS", defaultWorkers)
	if err != nil {
		return Config{}, err
	}

	channelSize, err := intFromEnv("REPLAY_CHANNEL_SIZE", defaultChannelSize)
	if err != nil {
		return Config{}, err
	}
	if channelSize < 0 {
		return Config{}, fmt.Errorf("REPLAY_CHANNEL_SIZE must not be negative, got %d", channelSize)
	}

	disputeWithdrawals, err := boolFromEnv("DISPUTE_WITHDRAWALS", true)
	if err != nil {
		return Config{}, err
	}

	exportTimeout, err := intFromEnv("EXPORT_TIMEOUT_SECONDS", defaultExportTimeoutSeconds)
	if err != nil {
		return Config{}, err
	}
	if exportTimeout <= 0 {
		return Config{}, fmt.Errorf("EXPORT_TIMEOUT_SECONDS must be positive, got %d", exportTimeout)
	}

	logLevel := strings.TrimSpace(os.Getenv("LOG_LEVEL"))
	if logLevel == "" {
		logLevel = defaultLogLevel
	}

	logFormat := strings.ToLower(strings.TrimSpace(os.Getenv("LOG_FORMAT")))
	if logFormat == "" {
		logFormat = defaultLogFormat
	}
	if logFormat != "json" && logFormat != "text" {
		return Config{}, fmt.Errorf("LOG_FORMAT must be json or text, got %q", logFormat)
	}

	opsUsername := strings.TrimSpace(os.Getenv("OPS_USERNAME"))
	opsPassword := strings.TrimSpace(os.Getenv("OPS_PASSWORD"))
	if (opsUsername == "") != (opsPassword == "") {
		return Config{}, fmt.Errorf("OPS_USERNAME and OPS_PASSWORD must be set together")
	}

	dsn := strings.TrimSpace(os.Getenv("DATABASE_DSN"))
	if dsn != "" {
		dsn = normalizeConnectionString(dsn)
	}

	return Config{
		Workers:            clamp(workers, 1, maxWorkers),
		ChannelSize:        channelSize,
		DisputeWithdrawals: disputeWithdrawals,
		LogLevel:           logLevel,
		LogFormat:          logFormat,
		MetricsAddr:        strings.TrimSpace(os.Getenv("METRICS_ADDR")),
		OpsUsername:        opsUsername,
		OpsPassword:        opsPassword,
		DatabaseDSN:        dsn,
		ExportTimeout:      time.Duration(exportTimeout) * time.Second,
	}, nil
}

func intFromEnv(key string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, raw)
	}

	return value, nil
}

func boolFromEnv(key string, fallback bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}

	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean, got %q", key, raw)
	}

	return value, nil
}

func clamp(value, low, high int) int {
	if value < low {
		return low
	}
	if value > high {
		return high
	}
	return value
}

// normalizeConnectionString accepts the semicolon form
// (Host=...;Port=...;Database=...) as well as a libpq key/value string or URL.
func normalizeConnectionString(raw string) string {
	if strings.HasPrefix(raw, "postgres://") || strings.HasPrefix(raw, "postgresql://") {
		return raw
	}

	parts := strings.Split(raw, ";")
	out := make([]string, 0, len(parts))
	hasSSLMode := false

	for _, part := range parts {
		p := strings.TrimSpace(part)
		if p == "" {
			continue
		}

		kv := strings.SplitN(p, "=", 2)
		if len(kv) != 2 {
			continue
		}

		key := strings.ToLower(strings.TrimSpace(kv[0]))
		val := strings.TrimSpace(kv[1])

		switch key {
		case "host", "server":
			out = append(out, "host="+val)
		case "port":
			out = append(out, "port="+val)
		case "database":
			out = append(out, "dbname="+val)
		case "username", "user id":
			out = append(out, "user="+val)
		case "password":
			out = append(out, "password="+val)
		case "timeout", "connect timeout":
			out = append(out, "connect_timeout="+val)
		case "commandtimeout", "command timeout":
			out = append(out, "statement_timeout="+val+"s")
		case "sslmode":
			hasSSLMode = true
			out = append(out, "sslmode="+val)
		default:
			out = append(out, key+"="+val)
		}
	}

	// Already libpq key/value form, or nothing we recognise.
	if len(out) <= 1 && !strings.Contains(raw, ";") {
		return raw
	}

	if !hasSSLMode {
		out = append(out, "sslmode=disable")
	}

	return strings.Join(out, " ")
}
