package observability

import (
	"strings"

	"github.com/smallbiznis/tilldesk/internal/config"
)

// Config holds observability configuration derived from app config.
type Config struct {
	ServiceName string
	Environment string
	Version     string

	LogLevel  string
	LogFormat string

	OtelEnabled  bool
	OTLPEndpoint string
}

func LoadConfig(cfg config.Config) Config {
	serviceName := strings.TrimSpace(cfg.AppName)
	if serviceName == "" {
		serviceName = "tilldesk"
	}
	return Config{
		ServiceName:  serviceName,
		Environment:  strings.TrimSpace(cfg.Environment),
		Version:      strings.TrimSpace(cfg.AppVersion),
		LogLevel:     strings.ToLower(strings.TrimSpace(cfg.LogLevel)),
		LogFormat:    strings.ToLower(strings.TrimSpace(cfg.LogFormat)),
		OtelEnabled:  strings.TrimSpace(cfg.OTLPEndpoint) != "",
		OTLPEndpoint: strings.TrimSpace(cfg.OTLPEndpoint),
	}
}

func (c Config) Debug() bool {
	if c.LogLevel == "debug" {
		return true
	}
	switch strings.ToLower(c.Environment) {
	case "dev", "development", "local", "test":
		return true
	default:
		return false
	}
}
