//go:generate go run go.uber.org/mock/mockgen -source=handle.go -destination=../mocks/mock_handle.go -package=mocks

package registry

// Handle - I/O endpoint of a registered connection.
// Implementations must be comparable (usually pointers), they are used as registry keys.
type Handle interface {
	// Send - delivers payload to the connection without blocking the caller.
	Send(payload []byte) error
	// Close - releases the underlying socket.
	Close() error
}
