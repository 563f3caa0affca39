package broker

import (
	"net"
	"sync"
)

// Link - kept connection with its own outbox.
// Send never blocks, a dedicated writer drains the outbox in order.
type Link struct {
	conn  net.Conn
	limit int

	mu      sync.Mutex
	pending [][]byte
	closed  bool

	wake      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
	closeErr  error
	onClose   func(*Link)
}

func newLink(conn net.Conn, limit int, onClose func(*Link)) *Link {
	return &Link{
		conn:    conn,
		limit:   limit,
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
		onClose: onClose,
	}
}

// RemoteAddr - address of the peer.
func (l *Link) RemoteAddr() net.Addr {
	return l.conn.RemoteAddr()
}

// Send - queues payload for delivery.
// When the outbox holds limit messages already the link is closed and ErrOutboxOverflow returned.
func (l *Link) Send(payload []byte) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrLinkClosed
	}
	if l.limit > 0 && len(l.pending) >= l.limit {
		l.mu.Unlock()
		l.Close()
		return ErrOutboxOverflow
	}
	l.pending = append(l.pending, payload)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return nil
}

// Pending - number of queued messages not yet handed to the socket.
func (l *Link) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.pending)
}

// Close - drops the outbox and closes the socket. Safe to call many times.
func (l *Link) Close() error {
	l.closeOnce.Do(func() {
		l.mu.Lock()
		l.closed = true
		l.pending = nil
		l.mu.Unlock()
		close(l.done)
		l.closeErr = l.conn.Close()
		if l.onClose != nil {
			l.onClose(l)
		}
	})
	return l.closeErr
}

// Done - closed after link is closed.
func (l *Link) Done() <-chan struct{} {
	return l.done
}

func (l *Link) drain() [][]byte {
	l.mu.Lock()
	defer l.mu.Unlock()
	batch := l.pending
	l.pending = nil
	return batch
}
