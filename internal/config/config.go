package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	// Receive side
	BindHost string `env:"BIND_HOST" default:"0.0.0.0"`
	BindPort int    `env:"BIND_PORT" default:"3198"`

	// Send side (acknowledgments always go here, never to the sender)
	DestHost string `env:"DEST_HOST" default:"127.0.0.1"`
	DestPort int    `env:"DEST_PORT" default:"42069"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" default:"info"`
	LogFormat string `env:"LOG_FORMAT" default:"text"`

	// Trace mirror (empty REDIS_URL disables it)
	RedisURL      string  `env:"REDIS_URL"`
	MirrorChannel string  `env:"MIRROR_CHANNEL" default:"netdebug:trace"`
	MirrorRate    float64 `env:"MIRROR_RATE" default:"50"`
	MirrorBurst   int     `env:"MIRROR_BURST" default:"100"`

	// Admin HTTP endpoint (0 disables it)
	AdminPort int `env:"ADMIN_PORT" default:"0"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		BindHost:      "0.0.0.0",
		BindPort:      3198,
		DestHost:      "127.0.0.1",
		DestPort:      42069,
		LogLevel:      "info",
		LogFormat:     "text",
		MirrorChannel: "netdebug:trace",
		MirrorRate:    50,
		MirrorBurst:   100,
	}
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// A missing .env is fine, system env vars still apply
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Warning: could not read .env file: %v\n", err)
	}

	def := Default()
	config := &Config{}

	loadEnvString(&config.BindHost, "BIND_HOST", def.BindHost)
	if err := loadEnvInt(&config.BindPort, "BIND_PORT", def.BindPort); err != nil {
		return nil, err
	}
	loadEnvString(&config.DestHost, "DEST_HOST", def.DestHost)
	if err := loadEnvInt(&config.DestPort, "DEST_PORT", def.DestPort); err != nil {
		return nil, err
	}

	loadEnvString(&config.LogLevel, "LOG_LEVEL", def.LogLevel)
	loadEnvString(&config.LogFormat, "LOG_FORMAT", def.LogFormat)

	loadEnvString(&config.RedisURL, "REDIS_URL", def.RedisURL)
	loadEnvString(&config.MirrorChannel, "MIRROR_CHANNEL", def.MirrorChannel)
	if err := loadEnvFloat(&config.MirrorRate, "MIRROR_RATE", def.MirrorRate); err != nil {
		return nil, err
	}
	if err := loadEnvInt(&config.MirrorBurst, "MIRROR_BURST", def.MirrorBurst); err != nil {
		return nil, err
	}

	if err := loadEnvInt(&config.AdminPort, "ADMIN_PORT", def.AdminPort); err != nil {
		return nil, err
	}

	return config, nil
}

func loadEnvString(target *string, key, defaultValue string) {
	if value := os.Getenv(key); value != "" {
		*target = value
	} else {
		*target = defaultValue
	}
}

func loadEnvInt(target *int, key string, defaultValue int) error {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer value for %s: %v", key, err)
		}
		*target = parsed
	} else {
		*target = defaultValue
	}
	return nil
}

func loadEnvFloat(target *float64, key string, defaultValue float64) error {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid number value for %s: %v", key, err)
		}
		*target = parsed
	} else {
		*target = defaultValue
	}
	return nil
}

// Validate performs validation on the loaded configuration
func (c *Config) Validate() error {
	var errors []string

	// bind port 0 lets the kernel pick one, the destination needs a real port
	if c.BindPort < 0 || c.BindPort > 65535 {
		errors = append(errors, "BIND_PORT must be between 0 and 65535")
	}
	if c.DestPort < 1 || c.DestPort > 65535 {
		errors = append(errors, "DEST_PORT must be between 1 and 65535")
	}
	if c.DestHost == "" {
		errors = append(errors, "DEST_HOST must not be empty")
	}
	if c.AdminPort < 0 || c.AdminPort > 65535 {
		errors = append(errors, "ADMIN_PORT must be between 0 and 65535")
	}

	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLogLevels, c.LogLevel) {
		errors = append(errors, fmt.Sprintf("LOG_LEVEL must be one of: %s", strings.Join(validLogLevels, ", ")))
	}

	validLogFormats := []string{"text", "json"}
	if !contains(validLogFormats, c.LogFormat) {
		errors = append(errors, fmt.Sprintf("LOG_FORMAT must be one of: %s", strings.Join(validLogFormats, ", ")))
	}

	if c.MirrorEnabled() {
		if c.MirrorChannel == "" {
			errors = append(errors, "MIRROR_CHANNEL must not be empty when REDIS_URL is set")
		}
		if c.MirrorRate <= 0 {
			errors = append(errors, "MIRROR_RATE must be positive")
		}
		if c.MirrorBurst < 1 {
			errors = append(errors, "MIRROR_BURST must be at least 1")
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errors, "; "))
	}

	return nil
}

// BindAddr returns the local receive endpoint as host:port.
func (c *Config) BindAddr() string {
	return net.JoinHostPort(c.BindHost, strconv.Itoa(c.BindPort))
}

// DestAddr returns the acknowledgment destination as host:port.
func (c *Config) DestAddr() string {
	return net.JoinHostPort(c.DestHost, strconv.Itoa(c.DestPort))
}

// MirrorEnabled reports whether datagrams are mirrored to Redis.
func (c *Config) MirrorEnabled() bool {
	return c.RedisURL != ""
}

// AdminEnabled reports whether the admin HTTP endpoint should run.
func (c *Config) AdminEnabled() bool {
	return c.AdminPort > 0
}

// Helper function to check if slice contains a string
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
