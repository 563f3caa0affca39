package main

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const defaultPort = "12345"

var errUsage = errors.New("usage")

type Config struct {
	Host string `ignored:"true" validate:"required"`
	Port string `ignored:"true" validate:"required"`
	// CHAT_READ_BUFFER_SIZE bounds single read from terminal or socket
	ReadBufferSize int `envconfig:"CHAT_READ_BUFFER_SIZE" default:"4096" validate:"min=1,max=1048576"`
	// CHAT_COLOURS enables colorized client notices
	Colours  bool   `envconfig:"CHAT_COLOURS" default:"true"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"ERROR" validate:"oneof=DEBUG INFO WARN ERROR"`
}

// Address - host:port suitable for dialing.
func (c Config) Address() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// LoadConfig - reads positional arguments <host> [port] and environment.
func LoadConfig(args []string) (Config, error) {
	if len(args) < 1 || len(args) > 2 {
		return Config{}, errUsage
	}
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("config error: %w", err)
	}
	cfg.Host, cfg.Port = args[0], defaultPort
	if len(args) == 2 {
		cfg.Port = args[1]
	}
	cfg.LogLevel = strings.ToUpper(cfg.LogLevel)

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
