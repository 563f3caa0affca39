package broker

import (
	"time"
)

// Event - occurres on a kept connection. Events of one connection are delivered in order.
type Event interface {
	Origin() *Link
	At() time.Time
}

// NetEvent - base event related to network connection.
type NetEvent struct {
	Link       *Link
	OriginTime time.Time
}

// Origin - link which produced the event.
func (e NetEvent) Origin() *Link { return e.Link }

// At - time of the event.
func (e NetEvent) At() time.Time { return e.OriginTime }

// MessageEvent - occurres when message from the outside was arrived.
type MessageEvent struct {
	NetEvent
	Payload []byte
}

// PartAction - describes the type of parting with client (connection).
type PartAction int

const (
	_ PartAction = iota
	// PartActionLeft - the parting is occurred due to connection was closed by peer.
	PartActionLeft
	// PartActionBroken - the parting is occurred due to read error or local close.
	PartActionBroken
)

func (a PartAction) String() string {
	switch a {
	case PartActionLeft:
		return "left"
	case PartActionBroken:
		return "broken"
	default:
		return "unknown part action"
	}
}

// PartEvent - occurres after parting with client. It is the last event of a link.
type PartEvent struct {
	NetEvent
	Action PartAction
	Err    error
}
