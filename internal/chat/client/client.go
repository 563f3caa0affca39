// Package client connects a line-oriented terminal to the chat server.
package client

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"

	"github.com/gookit/color"

	"github.com/wtask/relay/pkg/background"
)

// Client - relays local input lines to the server and server bytes to local output.
type Client struct {
	conn    net.Conn
	in      io.Reader
	out     io.Writer
	bufSize int
	colours bool
	log     *slog.Logger
}

// Option - customizes Client built by New.
type Option func(c *Client) error

// WithInput - source of outgoing lines, os.Stdin by default.
func WithInput(in io.Reader) Option {
	return func(c *Client) error {
		if in == nil {
			return errors.New("client.WithInput: reader is nil")
		}
		c.in = in
		return nil
	}
}

// WithOutput - destination of server bytes and notices, os.Stdout by default.
func WithOutput(out io.Writer) Option {
	return func(c *Client) error {
		if out == nil {
			return errors.New("client.WithOutput: writer is nil")
		}
		c.out = out
		return nil
	}
}

// WithBufferSize - bound of a single read from input or socket.
func WithBufferSize(size int) Option {
	return func(c *Client) error {
		if size <= 0 {
			return fmt.Errorf("client.WithBufferSize: invalid size (%d)", size)
		}
		c.bufSize = size
		return nil
	}
}

// WithColours - render own notices in colour. Server bytes are never altered.
func WithColours(enabled bool) Option {
	return func(c *Client) error {
		c.colours = enabled
		return nil
	}
}

// WithLogger - attach logger.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) error {
		if log != nil {
			c.log = log
		}
		return nil
	}
}

// New - builds client over established connection. Client owns the connection.
func New(conn net.Conn, options ...Option) (*Client, error) {
	if conn == nil {
		return nil, errors.New("client.New: connection is nil")
	}
	c := &Client{
		conn:    conn,
		in:      os.Stdin,
		out:     os.Stdout,
		bufSize: 4096,
		log:     slog.New(slog.DiscardHandler),
	}
	for _, option := range options {
		if option == nil {
			continue
		}
		if err := option(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Dial - connects to chat server.
func Dial(ctx context.Context, address string) (net.Conn, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to %s: %w", address, err)
	}
	return conn, nil
}

// Notice - prints client own status line.
func (c *Client) Notice(format string, args ...any) {
	text := fmt.Sprintf(format, args...)
	if c.colours {
		text = color.New(color.FgCyan).Render(text)
	}
	fmt.Fprintln(c.out, text)
}

type chunk struct {
	data []byte
	err  error
}

// Run - relays data in both directions until input ends, server closes connection or ctx is done.
// These conditions return nil, IO failures are returned as errors. Connection is closed on return.
func (c *Client) Run(ctx context.Context) error {
	receiver, stopReceiver := background.NewScope(ctx)
	defer func() {
		c.conn.Close()
		stopReceiver()
	}()

	input := make(chan chunk)
	inbound := make(chan chunk)

	// Input reader may stay blocked on a terminal after Run returns, so it is not a scope member.
	go c.readInput(receiver.Context(), input)
	receiver.Go(func(ctx context.Context) {
		c.readSocket(ctx, inbound)
	})

	for {
		select {
		case <-ctx.Done():
			c.Notice("Interrupted, exiting.")
			return nil
		case in := <-input:
			if in.err != nil {
				if errors.Is(in.err, io.EOF) {
					c.Notice("Input closed, exiting.")
					return nil
				}
				return fmt.Errorf("read input: %w", in.err)
			}
			if _, err := c.conn.Write(in.data); err != nil {
				return fmt.Errorf("send: %w", err)
			}
			c.log.Debug("Line sent", "bytes", len(in.data))
		case got := <-inbound:
			if got.err != nil {
				if errors.Is(got.err, io.EOF) {
					c.Notice("Server closed connection.")
					return nil
				}
				return fmt.Errorf("receive: %w", got.err)
			}
			if _, err := c.out.Write(got.data); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
		}
	}
}

// readInput - emits input line by line; a line longer than buffer is emitted in parts.
func (c *Client) readInput(ctx context.Context, input chan<- chunk) {
	r := bufio.NewReaderSize(c.in, c.bufSize)
	for {
		line, err := r.ReadSlice('\n')
		if errors.Is(err, bufio.ErrBufferFull) {
			err = nil
		}
		if len(line) > 0 && !emit(ctx, input, chunk{data: bytes.Clone(line)}) {
			return
		}
		if err != nil {
			emit(ctx, input, chunk{err: err})
			return
		}
	}
}

func (c *Client) readSocket(ctx context.Context, inbound chan<- chunk) {
	buf := make([]byte, c.bufSize)
	for {
		n, err := c.conn.Read(buf)
		if n > 0 && !emit(ctx, inbound, chunk{data: bytes.Clone(buf[:n])}) {
			return
		}
		if err != nil {
			emit(ctx, inbound, chunk{err: err})
			return
		}
	}
}

func emit(ctx context.Context, ch chan<- chunk, c chunk) bool {
	select {
	case ch <- c:
		return true
	case <-ctx.Done():
		return false
	}
}
