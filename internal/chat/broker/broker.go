package broker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/wtask/relay/internal/chat/message"
	"github.com/wtask/relay/pkg/background"
)

// Broker - keeps chat connections: reads them into events and writes their outboxes.
type Broker struct {
	writeTimeout time.Duration
	bufSize      int
	outboxLimit  int
	framer       message.FramerFactory
	events       chan<- Event
	log          *slog.Logger

	scope  *background.Scope
	cancel func()

	mu    sync.Mutex
	links map[net.Conn]*Link
}

// Option - customizes Broker built by New.
type Option func(b *Broker) error

func setup(b *Broker, options ...Option) error {
	if b == nil {
		return nil
	}
	for _, option := range options {
		if option == nil {
			continue
		}
		if err := option(b); err != nil {
			return err
		}
	}
	return nil
}

// New - builds Broker with needed options. Events channel is required.
func New(options ...Option) (*Broker, error) {
	scope, cancel := background.NewScope(context.Background())
	b := &Broker{
		writeTimeout: 30 * time.Second,
		bufSize:      4096,
		outboxLimit:  1024,
		framer:       message.Raw,
		log:          slog.New(slog.DiscardHandler),
		scope:        scope,
		cancel:       cancel,
		links:        make(map[net.Conn]*Link),
	}

	if err := setup(b, options...); err != nil {
		cancel()
		return nil, err
	}
	if b.events == nil {
		cancel()
		return nil, errors.New("broker.New: events channel is required")
	}

	return b, nil
}

// Quit - closes every kept connection and waits all IO handlers will stop.
// Returns duration of time spent for quit. This time always less or equal of given timeout.
func (b *Broker) Quit(timeout time.Duration) time.Duration {
	if b.scope.Context().Err() != nil {
		return 0
	}
	from := time.Now()
	for _, l := range b.snapshot() {
		l.Close()
	}
	done := make(chan struct{})
	go func() {
		b.cancel()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
	}
	return time.Since(from)
}

// Len - number of kept connections.
func (b *Broker) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.links)
}

func (b *Broker) snapshot() []*Link {
	b.mu.Lock()
	defer b.mu.Unlock()
	links := make([]*Link, 0, len(b.links))
	for _, l := range b.links {
		links = append(links, l)
	}
	return links
}

func (b *Broker) forget(l *Link) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.links[l.conn] == l {
		delete(b.links, l.conn)
	}
}

// KeepConnection - registers new net connection and starts in background IO handlers to communicate over it.
func (b *Broker) KeepConnection(conn net.Conn) (*Link, error) {
	if b.scope.Context().Err() != nil {
		return nil, ErrUnderStopCondition
	}

	b.mu.Lock()
	if _, ok := b.links[conn]; ok {
		b.mu.Unlock()
		return nil, ErrConnKept
	}
	l := newLink(conn, b.outboxLimit, b.forget)
	b.links[conn] = l
	b.mu.Unlock()

	b.scope.Go(func(ctx context.Context) {
		b.maintainOutbox(ctx, l)
	})
	b.scope.Go(func(ctx context.Context) {
		b.maintainInbox(ctx, l)
	})

	return l, nil
}

// Reject - writes farewell to connection which is not going to be kept and closes it.
// It does not block the caller.
func (b *Broker) Reject(conn net.Conn, farewell []byte) {
	if b.scope.Context().Err() != nil {
		conn.Close()
		return
	}
	b.scope.Go(func(context.Context) {
		defer conn.Close()
		conn.SetWriteDeadline(time.Now().Add(b.writeTimeout))
		if _, err := conn.Write(farewell); err != nil {
			b.log.Debug("Farewell is not delivered", "remote", conn.RemoteAddr().String(), "error", err)
		}
	})
}

// notify - propagates event to the consumer, gives up when broker quits.
func (b *Broker) notify(ctx context.Context, e Event) {
	select {
	case b.events <- e:
	case <-ctx.Done():
	}
}

func (b *Broker) maintainOutbox(ctx context.Context, l *Link) {
	defer l.Close()
	for {
		select {
		case <-l.wake:
		case <-l.done:
			return
		case <-ctx.Done():
			return
		}
		for _, payload := range l.drain() {
			l.conn.SetWriteDeadline(time.Now().Add(b.writeTimeout))
			if _, err := l.conn.Write(payload); err != nil {
				select {
				case <-l.done:
				default:
					b.log.Warn("Write failed, closing connection",
						"remote", l.RemoteAddr().String(), "pending", l.Pending(), "error", err)
				}
				return
			}
		}
	}
}

func (b *Broker) maintainInbox(ctx context.Context, l *Link) {
	framer := b.framer(b.bufSize)
	buf := make([]byte, b.bufSize)
	for {
		n, err := l.conn.Read(buf)
		if n > 0 {
			for _, payload := range framer.Frame(buf[:n]) {
				b.notify(ctx, MessageEvent{NetEvent{l, time.Now().UTC()}, payload})
			}
		}
		if err == nil {
			continue
		}
		if rest := framer.Flush(); len(rest) > 0 {
			b.notify(ctx, MessageEvent{NetEvent{l, time.Now().UTC()}, rest})
		}
		action := PartActionBroken
		if errors.Is(err, io.EOF) {
			action = PartActionLeft
			err = nil
		}
		b.notify(ctx, PartEvent{NetEvent{l, time.Now().UTC()}, action, err})
		return
	}
}
