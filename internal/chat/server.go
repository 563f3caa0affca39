// Package chat implements a single-room relay: every line received from one
// client is delivered to all other connected clients.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/wtask/relay/internal/chat/broker"
	"github.com/wtask/relay/internal/chat/message"
	"github.com/wtask/relay/internal/chat/peer"
	"github.com/wtask/relay/internal/chat/registry"
	"github.com/wtask/relay/pkg/background"
)

// DefaultCapacity - max clients when WithCapacity is not used.
const DefaultCapacity = 1024

const acceptRetryDelay = 10 * time.Millisecond

// ErrServed - Serve was called more than once.
var ErrServed = errors.New("chat.Server: already served")

// Server - chat relay over any net.Listener implementation.
//
// All registry changes and broadcasts happen in the goroutine running Serve.
// Connection IO runs in broker goroutines and reaches Serve through events.
type Server struct {
	log         *slog.Logger
	capacity    int
	quitTimeout time.Duration

	broker   *broker.Broker
	events   chan broker.Event
	registry *registry.Registry
	served   bool
}

// NewServer - creates new chat server.
func NewServer(buildBroker BrokerBuilder, options ...Option) (*Server, error) {
	if buildBroker == nil {
		return nil, errors.New("chat.NewServer: required chat.BrokerBuilder is nil")
	}
	s := &Server{
		log:         discardLogger(),
		capacity:    DefaultCapacity,
		quitTimeout: 5 * time.Second,
		events:      make(chan broker.Event),
	}
	for _, option := range options {
		if option == nil {
			continue
		}
		if err := option(s); err != nil {
			return nil, err
		}
	}
	b, err := buildBroker(s.events, s.log)
	if err != nil {
		return nil, fmt.Errorf("chat.NewServer: can't build broker: %w", err)
	}
	r, err := registry.New(s.capacity)
	if err != nil {
		b.Quit(s.quitTimeout)
		return nil, fmt.Errorf("chat.NewServer: %w", err)
	}
	s.broker = b
	s.registry = r
	return s, nil
}

// Serve - runs the event loop over listener until ctx is done or listener fails.
// Returns nil after ctx cancellation. Listener is closed on return.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	if listener == nil {
		return errors.New("chat.Server: listener is nil")
	}
	if s.served {
		return ErrServed
	}
	s.served = true

	accepted := make(chan net.Conn)
	failure := make(chan error, 1)
	acceptor, stopAcceptor := background.NewScope(ctx)
	acceptor.Go(func(ctx context.Context) {
		s.accept(ctx, listener, accepted, failure)
	})

	var err error
	for err == nil {
		select {
		case <-ctx.Done():
			s.log.Info("Chat server is stopping")
			err = ctx.Err()
		case acceptErr := <-failure:
			err = fmt.Errorf("chat.Server: accept: %w", acceptErr)
		case conn := <-accepted:
			s.admit(conn)
		case e := <-s.events:
			s.dispatch(e)
		}
	}

	listener.Close()
	stopAcceptor()
	s.closeAll()
	s.log.Info("Connections released", "duration", s.broker.Quit(s.quitTimeout).String())

	if errors.Is(err, ctx.Err()) {
		return nil
	}
	return err
}

// accept - pushes accepted connections into the loop.
// Closed listener is fatal, other accept errors are logged and skipped.
func (s *Server) accept(ctx context.Context, listener net.Listener, accepted chan<- net.Conn, failure chan<- error) {
	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if errors.Is(err, net.ErrClosed) {
				failure <- err
				return
			}
			s.log.Error("Accept failed", "error", err)
			select {
			case <-time.After(acceptRetryDelay):
			case <-ctx.Done():
				return
			}
			continue
		}
		select {
		case accepted <- conn:
		case <-ctx.Done():
			conn.Close()
			return
		}
	}
}

func (s *Server) admit(conn net.Conn) {
	remote := conn.RemoteAddr().String()
	if s.registry.Full() {
		s.log.Warn("Server is full, connection rejected", "remote", remote, "capacity", s.registry.Cap())
		s.broker.Reject(conn, []byte(message.ServerFull))
		return
	}

	addr, err := peer.FromNetAddr(conn.RemoteAddr())
	if err != nil {
		s.log.Debug("Peer address is not recognized", "remote", remote, "error", err)
	}

	link, err := s.broker.KeepConnection(conn)
	if err != nil {
		s.log.Error("Connection is not kept", "remote", remote, "error", err)
		conn.Close()
		return
	}

	c, err := s.registry.Admit(link, addr)
	if err != nil {
		s.log.Error("Connection is not registered", "remote", remote, "error", err)
		link.Close()
		return
	}

	log := connectionLogger(s.log, c)
	if err := link.Send(message.Welcome(c.ID)); err != nil {
		log.Warn("Welcome is not queued", "error", err)
	}
	joined := message.Joined(c.ID, c.PeerString())
	log.Info(strings.TrimSuffix(string(joined), "\n"))
	s.broadcast(c.Slot, joined)
}

func (s *Server) dispatch(e broker.Event) {
	switch e := e.(type) {
	case broker.MessageEvent:
		s.relay(e)
	case broker.PartEvent:
		s.part(e)
	default:
		s.log.Warn("Unexpected broker event", "type", fmt.Sprintf("%T", e))
	}
}

// relay - composes inbound bytes as a chat line of their author and broadcasts it.
func (s *Server) relay(e broker.MessageEvent) {
	c, ok := s.registry.Lookup(e.Link)
	if !ok {
		return
	}
	line := message.Compose(c.ID, e.Payload)
	connectionLogger(s.log, c).Info("Message", "text", strings.TrimSuffix(string(line), "\n"))
	s.broadcast(c.Slot, line)
}

// part - removes connection and notifies remaining clients once.
func (s *Server) part(e broker.PartEvent) {
	c, ok := s.registry.Remove(e.Link)
	if !ok {
		return
	}
	log := connectionLogger(s.log, c)
	if e.Err != nil {
		log.Error("Read failed", "action", e.Action.String(), "error", e.Err)
	}
	left := message.Disconnected(c.ID)
	log.Info(strings.TrimSuffix(string(left), "\n"))
	s.broadcast(registry.NoSender, left)
	e.Link.Close()
}

func (s *Server) broadcast(exceptSlot int, payload []byte) {
	if _, err := s.registry.Broadcast(exceptSlot, payload); err != nil {
		s.log.Warn("Broadcast is not delivered to every client", "error", err)
	}
}

func (s *Server) closeAll() {
	for _, c := range s.registry.Active() {
		s.registry.Remove(c.Handle)
		c.Handle.Close()
	}
}
