package broker

import "errors"

var (
	// ErrUnderStopCondition - returns in case if Broker is under stop condition
	// and will not accept any new connections, so you should close such connection by your own.
	ErrUnderStopCondition = errors.New("broker.Broker: under stop condition")

	// ErrConnKept - returns in case if connection is kept already.
	// Do not close such connection after this error, otherwise Broker will drop it.
	ErrConnKept = errors.New("broker.Broker: connection is kept already")

	// ErrLinkClosed - returned by Link.Send after link was closed.
	ErrLinkClosed = errors.New("broker.Link: closed")

	// ErrOutboxOverflow - returned by Link.Send when recipient does not drain its outbox.
	// The link is closed before this error is returned.
	ErrOutboxOverflow = errors.New("broker.Link: outbox overflow")
)
