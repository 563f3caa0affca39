package main

import (
	"io"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var tuningKeys = []string{
	"CHAT_MAX_CLIENTS", "CHAT_READ_BUFFER_SIZE", "CHAT_OUTBOX_LIMIT",
	"CHAT_WRITE_TIMEOUT", "CHAT_FRAMING", "LOG_LEVEL",
}

func unsetenv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	req := require.New(t)
	unsetenv(t, tuningKeys...)

	config, err := loadConfig(nil, io.Discard)

	req.NoError(err)
	req.Equal(Configuration{
		Port: "12345",
		Tuning: Tuning{
			MaxClients:     1024,
			ReadBufferSize: 4096,
			OutboxLimit:    1024,
			WriteTimeout:   30 * time.Second,
			Framing:        "raw",
			LogLevel:       "INFO",
		},
	}, config)
}

func TestLoadConfig_Environment(t *testing.T) {
	req := require.New(t)
	unsetenv(t, tuningKeys...)
	t.Setenv("CHAT_MAX_CLIENTS", "2")
	t.Setenv("CHAT_OUTBOX_LIMIT", "0")
	t.Setenv("CHAT_WRITE_TIMEOUT", "500ms")
	t.Setenv("CHAT_FRAMING", "LINE")
	t.Setenv("LOG_LEVEL", "debug")

	config, err := loadConfig([]string{"9000"}, io.Discard)

	req.NoError(err)
	req.Equal("9000", config.Port)
	req.Equal(2, config.Tuning.MaxClients)
	req.Equal(0, config.Tuning.OutboxLimit)
	req.Equal(500*time.Millisecond, config.Tuning.WriteTimeout)
	req.Equal("line", config.Tuning.Framing)
	req.Equal("DEBUG", config.Tuning.LogLevel)
}

func TestLoadConfig_Invalid(t *testing.T) {
	cases := map[string]struct {
		args []string
		env  map[string]string
	}{
		"extra args":   {args: []string{"1", "2"}},
		"unknown flag": {args: []string{"-port", "1"}},
		"zero clients": {env: map[string]string{"CHAT_MAX_CLIENTS": "0"}},
		"framing":      {env: map[string]string{"CHAT_FRAMING": "json"}},
		"log level":    {env: map[string]string{"LOG_LEVEL": "loud"}},
		"not a number": {env: map[string]string{"CHAT_OUTBOX_LIMIT": "many"}},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			unsetenv(t, tuningKeys...)
			for k, v := range c.env {
				t.Setenv(k, v)
			}
			_, err := loadConfig(c.args, io.Discard)
			require.Error(t, err)
		})
	}
}

func TestLoadConfig_Help(t *testing.T) {
	_, err := loadConfig([]string{"-help"}, io.Discard)
	require.ErrorIs(t, err, errHelp)
}
