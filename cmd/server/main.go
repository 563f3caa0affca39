package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/mama165/sdk-go/logs"

	"github.com/wtask/relay/internal/chat"
	"github.com/wtask/relay/internal/chat/broker"
	"github.com/wtask/relay/internal/chat/message"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, errHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "%s (v%s) error: %v\n", BinaryName, Version, err)
		os.Exit(1)
	}
}

// run - every setup failure and fatal loop failure is returned, main turns it into exit code.
func run(args []string) error {
	config, err := loadConfig(args, os.Stderr)
	if err != nil {
		return err
	}
	log := logs.GetLoggerFromString(config.Tuning.LogLevel)
	log.Info("Started", "version", Version, "config", fmt.Sprintf("%+v", config))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	framing := message.Raw
	if config.Tuning.Framing == "line" {
		framing = message.Lines
	}
	server, err := chat.NewServer(
		chat.DefaultBroker(
			broker.WithReadBufferSize(config.Tuning.ReadBufferSize),
			broker.WithOutboxLimit(config.Tuning.OutboxLimit),
			broker.WithWriteTimeout(config.Tuning.WriteTimeout),
			broker.WithFraming(framing),
		),
		chat.WithCapacity(config.Tuning.MaxClients),
		chat.WithLogger(log),
	)
	if err != nil {
		return fmt.Errorf("can't start chat server: %w", err)
	}

	listener, err := net.Listen("tcp", net.JoinHostPort("", config.Port))
	if err != nil {
		return fmt.Errorf("failed to bind/listen on port %s: %w", config.Port, err)
	}
	fmt.Printf("Listening on port %s\n", config.Port)

	if err := server.Serve(ctx, listener); err != nil {
		return err
	}
	log.Info("Chat server stopped, bye")
	return nil
}
