// Command client connects terminal to chat server.
//
//	client <host> [port]
//
// Lines typed on stdin are sent to server, everything received is printed as is.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/mama165/sdk-go/logs"

	"github.com/wtask/relay/internal/chat/client"
)

const (
	exitOK = iota
	exitFailure
	exitUnreachable
)

var errUnreachable = errors.New("server unreachable")

func main() {
	code, err := run(os.Args[1:])
	if err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "Usage: %s <host> [port]\n", filepath.Base(os.Args[0]))
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	}
	os.Exit(code)
}

func run(args []string) (int, error) {
	cfg, err := LoadConfig(args)
	if err != nil {
		return exitFailure, err
	}
	log := logs.GetLoggerFromString(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := client.Dial(ctx, cfg.Address())
	if err != nil {
		return exitUnreachable, errors.Join(errUnreachable, err)
	}
	c, err := client.New(conn,
		client.WithBufferSize(cfg.ReadBufferSize),
		client.WithColours(cfg.Colours),
		client.WithLogger(log),
	)
	if err != nil {
		_ = conn.Close()
		return exitFailure, err
	}

	c.Notice("Connected to %s:%s. Type messages and press Enter to send. Ctrl+C to quit.", cfg.Host, cfg.Port)
	if err := c.Run(ctx); err != nil {
		return exitFailure, err
	}
	return exitOK, nil
}
