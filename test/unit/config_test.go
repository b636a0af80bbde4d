package unit

import (
	"testing"
	"time"

	"github.com/spf13/viper"

	"github.com/irvelervel/apr21-chat/internal/server"
)

// TestNewConfigDefaults verifies the default configuration values.
func TestNewConfigDefaults(t *testing.T) {
	cfg := server.NewConfig()

	if cfg.Port != ":8080" {
		t.Errorf("Expected default port :8080, got %s", cfg.Port)
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "http://localhost:8080" {
		t.Errorf("Unexpected default allowed origins: %v", cfg.AllowedOrigins)
	}
	if cfg.MaxMessageSize != 4096 {
		t.Errorf("Expected default max message size 4096, got %d", cfg.MaxMessageSize)
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Errorf("Expected default shutdown timeout 10s, got %v", cfg.ShutdownTimeout)
	}
}

// TestNewConfigFromViperNil verifies that a nil viper yields the defaults.
func TestNewConfigFromViperNil(t *testing.T) {
	cfg := server.NewConfigFromViper(nil)

	if cfg.Port != ":8080" {
		t.Errorf("Expected default port :8080, got %s", cfg.Port)
	}
	if cfg.MaxMessageSize != 4096 {
		t.Errorf("Expected default max message size 4096, got %d", cfg.MaxMessageSize)
	}
}

// TestNewConfigFromViperOverrides verifies that viper-provided values take
// precedence over defaults.
func TestNewConfigFromViperOverrides(t *testing.T) {
	v := viper.New()
	v.Set(server.ConfigKeyPort, ":9090")
	v.Set(server.ConfigKeyAllowedOrigins, []string{"https://chat.example.com"})
	v.Set(server.ConfigKeyMaxMessageSize, int64(8192))
	v.Set(server.ConfigKeyShutdownTimeout, 30*time.Second)

	cfg := server.NewConfigFromViper(v)

	if cfg.Port != ":9090" {
		t.Errorf("Expected port :9090, got %s", cfg.Port)
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "https://chat.example.com" {
		t.Errorf("Unexpected allowed origins: %v", cfg.AllowedOrigins)
	}
	if cfg.MaxMessageSize != 8192 {
		t.Errorf("Expected max message size 8192, got %d", cfg.MaxMessageSize)
	}
	if cfg.ShutdownTimeout != 30*time.Second {
		t.Errorf("Expected shutdown timeout 30s, got %v", cfg.ShutdownTimeout)
	}
}

// TestNewConfigFromViperPartial verifies that unset keys keep their defaults.
func TestNewConfigFromViperPartial(t *testing.T) {
	v := viper.New()
	v.Set(server.ConfigKeyPort, ":3100")

	cfg := server.NewConfigFromViper(v)

	if cfg.Port != ":3100" {
		t.Errorf("Expected port :3100, got %s", cfg.Port)
	}
	if cfg.MaxMessageSize != 4096 {
		t.Errorf("Expected default max message size 4096, got %d", cfg.MaxMessageSize)
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Errorf("Expected default shutdown timeout 10s, got %v", cfg.ShutdownTimeout)
	}
}
