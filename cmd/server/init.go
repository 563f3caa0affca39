package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Netflix/go-env"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/wtask/relay/pkg/semver"
)

const defaultPort = "12345"

type (
	// Tuning - optional server settings read from environment.
	Tuning struct {
		MaxClients     int           `env:"CHAT_MAX_CLIENTS,default=1024" validate:"min=1"`
		ReadBufferSize int           `env:"CHAT_READ_BUFFER_SIZE,default=4096" validate:"min=1,max=1048576"`
		OutboxLimit    int           `env:"CHAT_OUTBOX_LIMIT,default=1024" validate:"min=0"`
		WriteTimeout   time.Duration `env:"CHAT_WRITE_TIMEOUT,default=30s" validate:"gt=0"`
		Framing        string        `env:"CHAT_FRAMING,default=raw" validate:"oneof=raw line"`
		LogLevel       string        `env:"LOG_LEVEL,default=INFO" validate:"oneof=DEBUG INFO WARN ERROR"`
	}

	// Configuration - server configuration
	Configuration struct {
		// Port - listen port or service name
		Port   string `validate:"required"`
		Tuning Tuning
	}
)

var (
	// BinaryName - name of run application binary
	BinaryName = strings.TrimSuffix(filepath.Base(os.Args[0]), filepath.Ext(os.Args[0]))

	// Version - app version fingerprint, may be replaced at link time with -X main.Version=...
	Version = semver.V{Major: 1, Minor: 0, Patch: 0}.String()

	errHelp = errors.New("help requested")

	validate = validator.New()
)

// loadConfig - reads command line and environment.
func loadConfig(args []string, out io.Writer) (Configuration, error) {
	fs := flag.NewFlagSet(BinaryName, flag.ContinueOnError)
	fs.SetOutput(out)
	fs.Usage = func() {
		fmt.Fprintf(out, "Launch text chat server over TCP (v%s)\n\n\t%s [port]\n\nDefault port is %s.\n", Version, BinaryName, defaultPort)
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return Configuration{}, errHelp
		}
		return Configuration{}, err
	}
	if fs.NArg() > 1 {
		fs.Usage()
		return Configuration{}, fmt.Errorf("unexpected arguments: %v", fs.Args()[1:])
	}

	if _, err := semver.Parse(Version); err != nil {
		return Configuration{}, fmt.Errorf("malformed build: %w", err)
	}

	config := Configuration{Port: defaultPort}
	if fs.NArg() == 1 {
		config.Port = fs.Arg(0)
	}

	// .env is optional, real environment wins
	_ = godotenv.Load()
	if _, err := env.UnmarshalFromEnviron(&config.Tuning); err != nil {
		return Configuration{}, fmt.Errorf("config error: %w", err)
	}
	config.Tuning.LogLevel = strings.ToUpper(config.Tuning.LogLevel)
	config.Tuning.Framing = strings.ToLower(config.Tuning.Framing)

	if err := validate.Struct(config); err != nil {
		return Configuration{}, fmt.Errorf("invalid config: %w", err)
	}
	return config, nil
}
