package broker

import (
	"bufio"
	"errors"
	"io"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"

	"github.com/wtask/relay/internal/chat/message"
)

func testLogger() *slog.Logger {
	return logs.GetLoggerFromLevel(slog.LevelDebug)
}

func nextEvent(t *testing.T, events <-chan Event) Event {
	t.Helper()
	select {
	case e := <-events:
		return e
	case <-time.After(time.Second):
		require.FailNow(t, "there is no event")
		return nil
	}
}

func Test_New(t *testing.T) {
	req := require.New(t)
	events := make(chan Event)
	b, err := New(
		WithEvents(events),
		WithLogger(testLogger()),
		WithWriteTimeout(15*time.Second),
		WithReadBufferSize(10),
		WithOutboxLimit(3),
		WithFraming(message.Lines),
	)
	req.NoError(err)
	req.Equal(15*time.Second, b.writeTimeout)
	req.Equal(10, b.bufSize)
	req.Equal(3, b.outboxLimit)
	req.NotNil(b.framer)
	t.Log("Broker stopped in:", b.Quit(50*time.Millisecond))
}

func Test_New_InvalidOptions(t *testing.T) {
	events := make(chan Event)
	cases := map[string][]Option{
		"no events":     nil,
		"nil events":    {WithEvents(nil)},
		"events twice":  {WithEvents(events), WithEvents(events)},
		"write timeout": {WithEvents(events), WithWriteTimeout(0)},
		"buffer size":   {WithEvents(events), WithReadBufferSize(-1)},
		"outbox limit":  {WithEvents(events), WithOutboxLimit(-1)},
		"nil framer":    {WithEvents(events), WithFraming(nil)},
	}
	for name, options := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := New(options...)
			require.Error(t, err)
		})
	}
}

func TestBroker_KeepConnection_ErrorCase(t *testing.T) {
	req := require.New(t)
	b, err := New(WithEvents(make(chan Event, 8)))
	req.NoError(err)

	client, server := net.Pipe()
	defer client.Close()

	_, err = b.KeepConnection(server)
	req.NoError(err)
	_, err = b.KeepConnection(server)
	req.ErrorIs(err, ErrConnKept)
	req.Equal(1, b.Len())

	b.Quit(50 * time.Millisecond)

	_, other := net.Pipe()
	_, err = b.KeepConnection(other)
	req.ErrorIs(err, ErrUnderStopCondition)
}

func TestLink_Send_KeepsOrder(t *testing.T) {
	req := require.New(t)
	b, err := New(WithEvents(make(chan Event, 8)))
	req.NoError(err)
	defer b.Quit(50 * time.Millisecond)

	client, server := net.Pipe()
	defer client.Close()
	l, err := b.KeepConnection(server)
	req.NoError(err)

	messages := []string{"Welcome! You are Client 1\n", "Client 2 has joined from 127.0.0.1\n", "Client 2: hi\n"}
	for _, m := range messages {
		req.NoError(l.Send([]byte(m)))
	}

	reader := bufio.NewReader(client)
	client.SetReadDeadline(time.Now().Add(time.Second))
	for _, expected := range messages {
		line, err := reader.ReadString('\n')
		req.NoError(err)
		req.Equal(expected, line)
	}
}

func TestBroker_InboundMessage_RawFraming(t *testing.T) {
	req := require.New(t)
	events := make(chan Event)
	b, err := New(WithEvents(events), WithReadBufferSize(64))
	req.NoError(err)
	defer b.Quit(50 * time.Millisecond)

	client, server := net.Pipe()
	defer client.Close()
	l, err := b.KeepConnection(server)
	req.NoError(err)

	// net.Pipe delivers one write as one read while it fits the buffer
	go client.Write([]byte("one\ntwo\n"))

	e := nextEvent(t, events)
	msg, ok := e.(MessageEvent)
	req.True(ok, "unexpected event %T", e)
	req.Same(l, msg.Origin())
	req.Equal("one\ntwo\n", string(msg.Payload))
	req.False(msg.At().IsZero())
}

func TestBroker_InboundMessage_LineFraming(t *testing.T) {
	req := require.New(t)
	events := make(chan Event)
	b, err := New(WithEvents(events), WithFraming(message.Lines))
	req.NoError(err)
	defer b.Quit(50 * time.Millisecond)

	client, server := net.Pipe()
	_, err = b.KeepConnection(server)
	req.NoError(err)

	go func() {
		client.Write([]byte("hel"))
		client.Write([]byte("lo\ntail"))
		client.Close()
	}()

	first := nextEvent(t, events).(MessageEvent)
	req.Equal("hello\n", string(first.Payload))
	rest := nextEvent(t, events).(MessageEvent)
	req.Equal("tail", string(rest.Payload))
	part, ok := nextEvent(t, events).(PartEvent)
	req.True(ok)
	req.Equal(PartActionLeft, part.Action)
	req.NoError(part.Err)
}

func TestBroker_PartOnPeerClose(t *testing.T) {
	req := require.New(t)
	events := make(chan Event)
	b, err := New(WithEvents(events))
	req.NoError(err)
	defer b.Quit(50 * time.Millisecond)

	client, server := net.Pipe()
	l, err := b.KeepConnection(server)
	req.NoError(err)

	client.Close()

	part, ok := nextEvent(t, events).(PartEvent)
	req.True(ok)
	req.Same(l, part.Link)
	req.Equal(PartActionLeft, part.Action)
	req.Equal("left", part.Action.String())
}

func TestLink_Close_ProducesBrokenPart(t *testing.T) {
	req := require.New(t)
	events := make(chan Event)
	b, err := New(WithEvents(events))
	req.NoError(err)
	defer b.Quit(50 * time.Millisecond)

	client, server := net.Pipe()
	defer client.Close()
	l, err := b.KeepConnection(server)
	req.NoError(err)

	req.NoError(l.Close())
	req.NoError(l.Close())
	req.ErrorIs(l.Send([]byte("late\n")), ErrLinkClosed)

	part, ok := nextEvent(t, events).(PartEvent)
	req.True(ok)
	req.Equal(PartActionBroken, part.Action)
	req.Error(part.Err)
	req.Zero(b.Len())
}

func TestLink_Send_Overflow(t *testing.T) {
	req := require.New(t)
	events := make(chan Event, 8)
	limit := 2
	b, err := New(WithEvents(events), WithOutboxLimit(limit), WithWriteTimeout(time.Minute))
	req.NoError(err)
	defer b.Quit(50 * time.Millisecond)

	// nobody reads client side, so the writer is stuck on the first write
	client, server := net.Pipe()
	defer client.Close()
	l, err := b.KeepConnection(server)
	req.NoError(err)

	var overflow error
	for i := 0; i < 2*limit+2 && overflow == nil; i++ {
		overflow = l.Send([]byte("payload\n"))
		req.LessOrEqual(l.Pending(), limit)
		time.Sleep(5 * time.Millisecond)
	}
	req.ErrorIs(overflow, ErrOutboxOverflow)
	req.ErrorIs(l.Send([]byte("payload\n")), ErrLinkClosed)

	select {
	case <-l.Done():
	case <-time.After(time.Second):
		req.Fail("link is not closed after overflow")
	}
	req.Zero(l.Pending())
}

func TestLink_WriteTimeout_ClosesLink(t *testing.T) {
	req := require.New(t)
	events := make(chan Event, 1)
	b, err := New(WithEvents(events), WithWriteTimeout(20*time.Millisecond))
	req.NoError(err)
	defer b.Quit(50 * time.Millisecond)

	// Given peer which never reads
	client, server := net.Pipe()
	defer client.Close()
	l, err := b.KeepConnection(server)
	req.NoError(err)
	req.Equal(server.RemoteAddr(), l.RemoteAddr())

	// When writer hits the deadline
	req.NoError(l.Send([]byte("stuck\n")))

	// Then link is closed and reader reports broken connection
	select {
	case <-l.Done():
	case <-time.After(time.Second):
		req.FailNow("link is not closed after write timeout")
	}
	part, ok := nextEvent(t, events).(PartEvent)
	req.True(ok)
	req.Same(l, part.Link)
	req.Equal(PartActionBroken, part.Action)
	req.Error(part.Err)
	req.Equal("broken", part.Action.String())
	req.Eventually(func() bool { return b.Len() == 0 }, time.Second, 5*time.Millisecond)
}

func TestBroker_Reject(t *testing.T) {
	req := require.New(t)
	b, err := New(WithEvents(make(chan Event)))
	req.NoError(err)
	defer b.Quit(50 * time.Millisecond)

	client, server := net.Pipe()
	b.Reject(server, []byte(message.ServerFull))

	client.SetReadDeadline(time.Now().Add(time.Second))
	got, err := io.ReadAll(client)
	if err != nil && !errors.Is(err, io.ErrClosedPipe) {
		req.NoError(err)
	}
	req.Equal(message.ServerFull, string(got))
	req.Zero(b.Len())
}
