package broker

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/wtask/relay/internal/chat/message"
)

// WithEvents - attach channel to be notified of inbound messages and parting.
func WithEvents(events chan<- Event) Option {
	return func(b *Broker) error {
		if events == nil {
			return errors.New("broker.WithEvents: events channel is nil")
		}
		if b.events != nil {
			return errors.New("broker.WithEvents: events channel already set up")
		}
		b.events = events
		return nil
	}
}

// WithLogger - attach logger for IO failures.
func WithLogger(log *slog.Logger) Option {
	return func(b *Broker) error {
		if log != nil {
			b.log = log
		}
		return nil
	}
}

// WithWriteTimeout - overwrites default write timeout of connections.
func WithWriteTimeout(timeout time.Duration) Option {
	return func(b *Broker) error {
		if timeout <= 0 {
			return fmt.Errorf("broker.WithWriteTimeout: invalid timeout (%v)", timeout)
		}
		b.writeTimeout = timeout
		return nil
	}
}

// WithReadBufferSize - overwrites size of a single read from connection.
func WithReadBufferSize(size int) Option {
	return func(b *Broker) error {
		if size <= 0 {
			return fmt.Errorf("broker.WithReadBufferSize: invalid size (%d)", size)
		}
		b.bufSize = size
		return nil
	}
}

// WithOutboxLimit - max number of pending outgoing messages per connection.
// Zero disables the limit.
func WithOutboxLimit(limit int) Option {
	return func(b *Broker) error {
		if limit < 0 {
			return fmt.Errorf("broker.WithOutboxLimit: invalid limit (%d)", limit)
		}
		b.outboxLimit = limit
		return nil
	}
}

// WithFraming - overwrites the way inbound bytes are cut into messages.
// Default is message.Raw, one read produces one message.
func WithFraming(factory message.FramerFactory) Option {
	return func(b *Broker) error {
		if factory == nil {
			return errors.New("broker.WithFraming: framer factory is nil")
		}
		b.framer = factory
		return nil
	}
}
