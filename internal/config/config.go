package config

import (
	"fmt"
	"time"
)

// Default server settings.
const (
	DefaultPort           = 8080
	DefaultMetricsPort    = 9090
	DefaultMetricsPath    = "/metrics"
	DefaultReadTimeout    = 30 * time.Second
	DefaultWriteTimeout   = 30 * time.Second
	DefaultIdleTimeout    = 120 * time.Second
	DefaultMaxBodyBytes   = 10 << 20 // 10 MB
	DefaultBridgeCapacity = 64
)

// EngineConfig is the root configuration for the dispatch engine.
type EngineConfig struct {
	Server  ServerConfig  `yaml:"server"`
	Bridge  BridgeConfig  `yaml:"bridge"`
	Metrics MetricsConfig `yaml:"metrics"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig holds listener settings for the request dispatcher.
type ServerConfig struct {
	Address string `yaml:"address"`
	Port    int    `yaml:"port"`

	ReadTimeout  Duration `yaml:"readTimeout"`
	WriteTimeout Duration `yaml:"writeTimeout"`
	IdleTimeout  Duration `yaml:"idleTimeout"`

	// MaxBodyBytes is the maximum allowed request body size in bytes.
	// Zero disables the limit.
	MaxBodyBytes int64 `yaml:"maxBodyBytes"`
}

// BridgeConfig holds settings for the execution bridge queue.
type BridgeConfig struct {
	// Capacity is the bounded size of the work queue feeding the
	// designated execution context.
	Capacity int `yaml:"capacity"`
}

// MetricsConfig holds settings for the Prometheus metrics endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Port    int    `yaml:"port"`
	Path    string `yaml:"path"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// DefaultConfig returns an EngineConfig with default values.
func DefaultConfig() *EngineConfig {
	return &EngineConfig{
		Server: ServerConfig{
			Port:         DefaultPort,
			ReadTimeout:  Duration(DefaultReadTimeout),
			WriteTimeout: Duration(DefaultWriteTimeout),
			IdleTimeout:  Duration(DefaultIdleTimeout),
			MaxBodyBytes: DefaultMaxBodyBytes,
		},
		Bridge: BridgeConfig{
			Capacity: DefaultBridgeCapacity,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Port:    DefaultMetricsPort,
			Path:    DefaultMetricsPath,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyDefaults fills zero values with defaults.
func (c *EngineConfig) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = Duration(DefaultReadTimeout)
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = Duration(DefaultWriteTimeout)
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = Duration(DefaultIdleTimeout)
	}
	if c.Bridge.Capacity == 0 {
		c.Bridge.Capacity = DefaultBridgeCapacity
	}
	if c.Metrics.Port == 0 {
		c.Metrics.Port = DefaultMetricsPort
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "stdout"
	}
}

// Validate checks the configuration for invalid values.
func (c *EngineConfig) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Metrics.Enabled {
		if c.Metrics.Port < 1 || c.Metrics.Port > 65535 {
			return fmt.Errorf("metrics.port %d out of range", c.Metrics.Port)
		}
		if c.Metrics.Port == c.Server.Port {
			return fmt.Errorf("metrics.port %d conflicts with server.port", c.Metrics.Port)
		}
	}
	if c.Server.MaxBodyBytes < 0 {
		return fmt.Errorf("server.maxBodyBytes must not be negative")
	}
	if c.Bridge.Capacity < 1 {
		return fmt.Errorf("bridge.capacity must be at least 1")
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format %q not supported", c.Logging.Format)
	}
	return nil
}
