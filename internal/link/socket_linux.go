//go:build linux

// Package link owns the raw layer-2 socket a speaker receives frames on
// and sends frames out of. It is a thin wrapper over
// golang.org/x/sys/unix, following the same fd-wrapping-struct shape as
// a hand-rolled raw socket elsewhere in the pack, generalized from
// AF_INET/SOCK_RAW to AF_PACKET/SOCK_RAW for full link-layer framing.
package link

import (
	"encoding/binary"
	"fmt"
	"net"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/sys/unix"
)

// ETHP8023 is the 802.2 LLC ethertype value (0x0004) this speaker binds
// to, matching spec.md §6's `htons(0x0004)`.
const ETHP8023 = 0x0004

func htons(v uint16) uint16 {
	b := make([]byte, 2)
	binary.BigEndian.PutUint16(b, v)
	return binary.LittleEndian.Uint16(b)
}

// Socket is a raw AF_PACKET/SOCK_RAW file descriptor bound to one
// interface, plus the addresses the bind discovered.
type Socket struct {
	fd       int
	ifindex  int
	SrcMAC   [6]byte
	IPv4Addrs []net.IP
	IPv6Addrs []net.IP
}

// Open creates and binds the raw socket on dev, retrying the bind with
// exponential backoff (interfaces can still be administratively down at
// process start, or a fast restart can transiently collide on the
// address) per SPEC_FULL.md §4.11. It gives up once 10 seconds of
// retrying have elapsed.
func Open(dev string) (*Socket, error) {
	iface, err := net.InterfaceByName(dev)
	if err != nil {
		return nil, fmt.Errorf("link: lookup interface %q: %w", dev, err)
	}

	fd, err := unix.Socket(unix.AF_PACKET, unix.SOCK_RAW, int(htons(ETHP8023)))
	if err != nil {
		return nil, fmt.Errorf("link: socket: %w", err)
	}

	bindOnce := func() error {
		addr := &unix.SockaddrLinklayer{
			Protocol: htons(ETHP8023),
			Ifindex:  iface.Index,
		}
		return unix.Bind(fd, addr)
	}

	boff := backoff.NewExponentialBackOff()
	boff.MaxElapsedTime = 10 * time.Second
	if err := backoff.Retry(bindOnce, boff); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("link: bind %q: %w", dev, err)
	}

	s := &Socket{fd: fd, ifindex: iface.Index}
	copy(s.SrcMAC[:], iface.HardwareAddr)

	addrs, err := iface.Addrs()
	if err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("link: addrs %q: %w", dev, err)
	}
	for _, a := range addrs {
		ipnet, ok := a.(*net.IPNet)
		if !ok {
			continue
		}
		if v4 := ipnet.IP.To4(); v4 != nil {
			s.IPv4Addrs = append(s.IPv4Addrs, v4)
		} else if ipnet.IP.IsLinkLocalUnicast() {
			// Only scoped (link-local) IPv6 addresses are advertised,
			// matching the discovery behavior on most platforms per
			// spec.md §4.5 — global addresses require the operator to
			// supply them explicitly via Config.IPv6Addrs.
			s.IPv6Addrs = append(s.IPv6Addrs, ipnet.IP)
		}
	}

	return s, nil
}

// Close releases the socket.
func (s *Socket) Close() error {
	return unix.Close(s.fd)
}

// Recv blocks (subject to Poll having reported readiness) for one frame
// and returns the bytes received.
func (s *Socket) Recv(buf []byte) (int, error) {
	n, _, err := unix.Recvfrom(s.fd, buf, 0)
	if err != nil {
		return 0, fmt.Errorf("link: recvfrom: %w", err)
	}
	return n, nil
}

// Send transmits pkt as-is. Per spec.md §7, oversized frames are silently
// suppressed rather than erroring the caller.
func (s *Socket) Send(pkt []byte) error {
	if len(pkt) > 1514 {
		return nil
	}
	addr := &unix.SockaddrLinklayer{
		Protocol: htons(ETHP8023),
		Ifindex:  s.ifindex,
	}
	if err := unix.Sendto(s.fd, pkt, 0, addr); err != nil {
		return fmt.Errorf("link: sendto: %w", err)
	}
	return nil
}

// Poll waits up to timeout for the socket to become readable, returning
// true if a frame is ready to Recv. This is the speaker's sole
// suspension point per spec.md §5.
func (s *Socket) Poll(timeout time.Duration) (bool, error) {
	fds := []unix.PollFd{{Fd: int32(s.fd), Events: unix.POLLIN}}
	n, err := unix.Poll(fds, int(timeout.Milliseconds()))
	if err != nil {
		return false, fmt.Errorf("link: poll: %w", err)
	}
	return n > 0 && fds[0].Revents&unix.POLLIN != 0, nil
}
