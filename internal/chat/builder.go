package chat

import (
	"errors"
	"log/slog"

	"github.com/wtask/relay/internal/chat/broker"
)

// BrokerBuilder - helps to build custom broker.Broker with required dependencies (events channel).
type BrokerBuilder func(events chan<- broker.Event, log *slog.Logger) (*broker.Broker, error)

// DefaultBroker - returns builder which wires events channel and logger into broker.Broker.
// Given options are applied after the defaults.
func DefaultBroker(options ...broker.Option) BrokerBuilder {
	return func(events chan<- broker.Event, log *slog.Logger) (*broker.Broker, error) {
		if events == nil {
			return nil, errors.New("chat.DefaultBroker: broker.Event chan is required")
		}
		return broker.New(
			append(
				[]broker.Option{broker.WithEvents(events), broker.WithLogger(log)},
				options...,
			)...,
		)
	}
}
