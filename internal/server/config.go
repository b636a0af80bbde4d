// Package server provides configuration helpers that define runtime defaults
// and validation for the chat service.
package server

import (
	"sync"
	"time"

	"github.com/spf13/viper"
)

// Configuration keys understood by NewConfigFromViper. Each key can be set by
// flag or by the corresponding CHAT_* environment variable.
const (
	ConfigKeyPort            = "port"
	ConfigKeyAllowedOrigins  = "allowed-origins"
	ConfigKeyMaxMessageSize  = "max-message-size"
	ConfigKeyShutdownTimeout = "shutdown-timeout"
)

// Config holds the server configuration settings including security controls.
type Config struct {
	Port            string
	AllowedOrigins  []string
	MaxMessageSize  int64
	ShutdownTimeout time.Duration
}

var (
	configMu        sync.RWMutex
	activeConfig    Config
	allowedOrigins  map[string]struct{}
	allowAllOrigins bool
)

func init() {
	SetConfig(nil)
}

func defaultConfig() Config {
	return Config{
		Port: ":8080",
		AllowedOrigins: []string{
			"http://localhost:8080",
		},
		MaxMessageSize:  4096,
		ShutdownTimeout: 10 * time.Second,
	}
}

func sanitizeConfig(cfg Config) Config {
	if cfg.Port == "" {
		cfg.Port = ":8080"
	}

	if cfg.MaxMessageSize <= 0 {
		cfg.MaxMessageSize = 4096
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}

	normalizedOrigins, allowAll := normalizeOrigins(cfg.AllowedOrigins)
	cfg.AllowedOrigins = normalizedOrigins

	configMu.Lock()
	defer configMu.Unlock()

	activeConfig = cfg
	allowAllOrigins = allowAll
	allowedOrigins = make(map[string]struct{}, len(normalizedOrigins))
	for _, origin := range normalizedOrigins {
		allowedOrigins[origin] = struct{}{}
	}

	return cfg
}

// SetConfig applies the provided configuration. Passing nil resets to defaults.
func SetConfig(cfg *Config) {
	if cfg == nil {
		defaultCfg := defaultConfig()
		sanitizeConfig(defaultCfg)
		return
	}

	sanitized := Config{
		Port:            cfg.Port,
		AllowedOrigins:  append([]string(nil), cfg.AllowedOrigins...),
		MaxMessageSize:  cfg.MaxMessageSize,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}
	sanitizeConfig(sanitized)
}

func currentConfig() Config {
	configMu.RLock()
	defer configMu.RUnlock()

	cfg := activeConfig
	cfg.AllowedOrigins = append([]string(nil), cfg.AllowedOrigins...)
	return cfg
}

// NewConfig creates a Config instance populated with default values for all settings.
func NewConfig() *Config {
	cfg := defaultConfig()
	return &cfg
}

// NewConfigFromViper creates a Config instance from the provided viper
// instance, falling back to defaults for anything unset. Passing nil uses a
// fresh viper, which yields the defaults.
func NewConfigFromViper(v *viper.Viper) *Config {
	if v == nil {
		v = viper.New()
	}

	cfg := defaultConfig()

	if port := v.GetString(ConfigKeyPort); port != "" {
		cfg.Port = port
	}
	if origins := v.GetStringSlice(ConfigKeyAllowedOrigins); len(origins) > 0 {
		cfg.AllowedOrigins = origins
	}
	if maxSize := v.GetInt64(ConfigKeyMaxMessageSize); maxSize > 0 {
		cfg.MaxMessageSize = maxSize
	}
	if timeout := v.GetDuration(ConfigKeyShutdownTimeout); timeout > 0 {
		cfg.ShutdownTimeout = timeout
	}

	return &cfg
}
