package isis

import "net"

// Config is the immutable set of parameters a speaker is constructed
// with. Once NewSpeaker returns, nothing mutates a Config's fields — the
// CLI layer (cmd/isis-speaker) is the only writer.
type Config struct {
	// Device is the interface name the raw socket binds to.
	Device string

	// AreaAddress is this speaker's sole advertised area address.
	AreaAddress []byte

	// SysID is the 6-byte system ID forming the low-order bytes of
	// every LSP ID and Hello source ID this speaker originates.
	SysID [6]byte

	// LANID is the 7-byte (sysid + pseudonode) identifier advertised in
	// outbound LAN Hellos; the pseudonode octet is 0 since this speaker
	// never elects Designated Intermediate System.
	LANID [7]byte

	// IPv4Addrs/IPv6Addrs are the addresses advertised in IPIfAddr and
	// IPv6IfAddr TLVs. Left nil to fall back to the addresses the raw
	// socket discovered on Device at Open time.
	IPv4Addrs []net.IP
	IPv6Addrs []net.IP

	// CleartextPassword, if non-empty, is carried in an Authentication
	// TLV (type 1, cleartext) on every originated Hello.
	CleartextPassword string

	// HoldTimer is the holdtimer this speaker advertises in its Hellos
	// and the base of the loop's idle wait. Adjacency aging uses the
	// holdtimer each peer advertises, not this value. Defaults to 10
	// seconds if zero.
	HoldTimer uint16

	// Verbosity is the number of -v flags the CLI was given; higher
	// values log more. cmd/isis-speaker maps it to the logger's level;
	// the speaker itself does not read it.
	Verbosity int

	// CapturePrefix, CaptureMaxSize, CaptureFormat carry the capture
	// settings given on the command line (SPEC_FULL.md §4.12). Nothing
	// in this module reads them and no capture file is written; the loop
	// passes every decoded PDU to its Sink whatever their values.
	CapturePrefix  string
	CaptureMaxSize int64
	CaptureFormat  string

	// MetricsAddr, if non-empty, is the address the prometheus
	// /metrics HTTP endpoint listens on.
	MetricsAddr string
}

// EffectiveHoldTimer returns c.HoldTimer, or the spec default of 10
// seconds if unset.
func (c *Config) EffectiveHoldTimer() uint16 {
	if c.HoldTimer == 0 {
		return 10
	}
	return c.HoldTimer
}
