// Package peer describes the remote end of an accepted connection.
package peer

import (
	"errors"
	"fmt"
	"net"
	"net/netip"
)

// ErrUnsupportedAddress - the network address carries no IP (pipes, unix sockets).
var ErrUnsupportedAddress = errors.New("peer: unsupported address")

// Address - remote peer address, either IPv4 or IPv6.
type Address interface {
	fmt.Stringer
	// Family - "ipv4" or "ipv6"
	Family() string
	// IP - underlying address without zone stripping
	IP() netip.Addr
	address()
}

// IPv4 - IPv4 peer, including IPv4-mapped IPv6 peers of dual-stack listeners.
type IPv4 struct{ addr netip.Addr }

func (a IPv4) String() string { return a.addr.String() }
func (a IPv4) Family() string { return "ipv4" }
func (a IPv4) IP() netip.Addr { return a.addr }
func (IPv4) address()         {}

// IPv6 - IPv6 peer.
type IPv6 struct{ addr netip.Addr }

func (a IPv6) String() string { return a.addr.String() }
func (a IPv6) Family() string { return "ipv6" }
func (a IPv6) IP() netip.Addr { return a.addr }
func (IPv6) address()         {}

// FromIP - wraps ip into matching Address variant.
func FromIP(ip netip.Addr) (Address, error) {
	if !ip.IsValid() {
		return nil, fmt.Errorf("%w: invalid ip", ErrUnsupportedAddress)
	}
	if ip.Is4() || ip.Is4In6() {
		return IPv4{ip.Unmap()}, nil
	}
	return IPv6{ip}, nil
}

// FromNetAddr - extracts peer address from connection remote address.
func FromNetAddr(a net.Addr) (Address, error) {
	switch t := a.(type) {
	case nil:
		return nil, fmt.Errorf("%w: nil", ErrUnsupportedAddress)
	case *net.TCPAddr:
		ip, ok := netip.AddrFromSlice(t.IP)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedAddress, t.String())
		}
		return FromIP(ip.WithZone(t.Zone))
	default:
		ap, err := netip.ParseAddrPort(a.String())
		if err != nil {
			return nil, fmt.Errorf("%w: %s %s", ErrUnsupportedAddress, a.Network(), a.String())
		}
		return FromIP(ap.Addr())
	}
}
