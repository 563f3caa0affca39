package chat

import (
	"fmt"
	"log/slog"
	"time"
)

// Option - customizes Server built by NewServer.
type Option func(s *Server) error

// WithLogger - attach logger for chat events and failures.
func WithLogger(log *slog.Logger) Option {
	return func(s *Server) error {
		if log != nil {
			s.log = log
		}
		return nil
	}
}

// WithCapacity - max number of simultaneously connected clients.
func WithCapacity(capacity int) Option {
	return func(s *Server) error {
		if capacity <= 0 {
			return fmt.Errorf("chat.WithCapacity: invalid capacity (%d)", capacity)
		}
		s.capacity = capacity
		return nil
	}
}

// WithQuitTimeout - how long Serve waits for connection handlers on stop.
func WithQuitTimeout(timeout time.Duration) Option {
	return func(s *Server) error {
		if timeout <= 0 {
			return fmt.Errorf("chat.WithQuitTimeout: invalid timeout (%v)", timeout)
		}
		s.quitTimeout = timeout
		return nil
	}
}
