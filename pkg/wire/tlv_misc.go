package wire

import "net"

// This file covers the remaining TLVs: area addresses (1), LSP summary
// entries (9), authentication (10), supported protocols (129), IPv4/IPv6
// interface addresses (132, 232), dynamic hostname (137), restart
// signaling (211), multiple-topology announcements (229), and the PP
// three-way Hello state TLV (240).

// ---- TLV 1: AreaAddress -------------------------------------------------

// AreaAddressTLV is the decoded value of TLV 1: a list of variable-length
// area addresses, each prefixed by its own length octet.
type AreaAddressTLV struct {
	Areas [][]byte
}

func decodeAreaAddress(raw []byte) interface{} {
	v := AreaAddressTLV{}
	for len(raw) >= 1 {
		alen := int(raw[0])
		raw = raw[1:]
		if alen > len(raw) {
			alen = len(raw)
		}
		v.Areas = append(v.Areas, append([]byte(nil), raw[:alen]...))
		raw = raw[alen:]
	}
	return v
}

func encodeAreaAddress(v interface{}) ([]byte, error) {
	t := v.(AreaAddressTLV)
	var out []byte
	for _, a := range t.Areas {
		out = append(out, byte(len(a)))
		out = append(out, a...)
	}
	return out, nil
}

// ---- TLV 9: LSPEntries ---------------------------------------------------

// LSPEntry is one summary record in a CSNP or PSNP: the LSP's identity,
// sequence number, remaining lifetime, and checksum. Placeholder is not
// part of the wire encoding and the codec never sets it; the LSDB marks
// CSNP-sourced placeholder records on its own record type instead.
type LSPEntry struct {
	RemainingLifetime uint16
	ID                LSPID
	SeqNum            uint32
	Checksum          uint16
	Placeholder       bool
}

// LSPEntriesTLV is the decoded value of TLV 9.
type LSPEntriesTLV struct {
	Entries []LSPEntry
}

func decodeLSPEntries(raw []byte) interface{} {
	v := LSPEntriesTLV{}
	for len(raw) >= 16 {
		e := LSPEntry{
			RemainingLifetime: Uint16(raw[0:2]),
			ID:                DecodeLSPID(raw[2:10]),
			SeqNum:            Uint32(raw[10:14]),
			Checksum:          Uint16(raw[14:16]),
		}
		v.Entries = append(v.Entries, e)
		raw = raw[16:]
	}
	return v
}

func encodeLSPEntries(v interface{}) ([]byte, error) {
	t := v.(LSPEntriesTLV)
	out := make([]byte, 0, 16*len(t.Entries))
	for _, e := range t.Entries {
		var buf [16]byte
		PutUint16(buf[0:2], e.RemainingLifetime)
		copy(buf[2:10], e.ID.Encode())
		PutUint32(buf[10:14], e.SeqNum)
		PutUint16(buf[14:16], e.Checksum)
		out = append(out, buf[:]...)
	}
	return out, nil
}

// ---- TLV 10: Authentication ----------------------------------------------

// AuthType identifies the authentication TLV's first octet.
type AuthType uint8

const (
	AuthTypeCleartext AuthType = 1
	AuthTypeHMACMD5   AuthType = 54
)

// AuthenticationTLV is the decoded value of TLV 10. Only cleartext
// passwords are originated by this speaker (spec.md §4.8); other
// methods round-trip as opaque Value bytes.
type AuthenticationTLV struct {
	Method AuthType
	Value  []byte
}

func decodeAuthentication(raw []byte) interface{} {
	v := AuthenticationTLV{}
	if len(raw) < 1 {
		return v
	}
	v.Method = AuthType(raw[0])
	v.Value = append([]byte(nil), raw[1:]...)
	return v
}

func encodeAuthentication(v interface{}) ([]byte, error) {
	t := v.(AuthenticationTLV)
	out := make([]byte, 1+len(t.Value))
	out[0] = byte(t.Method)
	copy(out[1:], t.Value)
	return out, nil
}

// ---- TLV 129: ProtoSupported ----------------------------------------------

// ProtoSupportedTLV is the decoded value of TLV 129: a list of raw NLPID
// octets.
type ProtoSupportedTLV struct {
	Protocols []NLPID
}

func decodeProtoSupported(raw []byte) interface{} {
	v := ProtoSupportedTLV{}
	for _, b := range raw {
		v.Protocols = append(v.Protocols, NLPID(b))
	}
	return v
}

func encodeProtoSupported(v interface{}) ([]byte, error) {
	t := v.(ProtoSupportedTLV)
	out := make([]byte, len(t.Protocols))
	for i, p := range t.Protocols {
		out[i] = byte(p)
	}
	return out, nil
}

// ---- TLV 132 / 232: interface addresses -----------------------------------

// IPIfAddrTLV is the decoded value of TLV 132: a list of 4-byte IPv4
// interface addresses.
type IPIfAddrTLV struct {
	Addrs []net.IP
}

func decodeIPIfAddr(raw []byte) interface{} {
	v := IPIfAddrTLV{}
	for len(raw) >= 4 {
		v.Addrs = append(v.Addrs, net.IPv4(raw[0], raw[1], raw[2], raw[3]).To4())
		raw = raw[4:]
	}
	return v
}

func encodeIPIfAddr(v interface{}) ([]byte, error) {
	t := v.(IPIfAddrTLV)
	var out []byte
	for _, a := range t.Addrs {
		addr := a.To4()
		if addr == nil {
			return nil, ErrInvalidIPAddr(a.String())
		}
		out = append(out, addr...)
	}
	return out, nil
}

// IPv6IfAddrTLV is the decoded value of TLV 232: a list of 16-byte IPv6
// interface addresses.
type IPv6IfAddrTLV struct {
	Addrs []net.IP
}

func decodeIPv6IfAddr(raw []byte) interface{} {
	v := IPv6IfAddrTLV{}
	for len(raw) >= 16 {
		addr := make(net.IP, 16)
		copy(addr, raw[:16])
		v.Addrs = append(v.Addrs, addr)
		raw = raw[16:]
	}
	return v
}

func encodeIPv6IfAddr(v interface{}) ([]byte, error) {
	t := v.(IPv6IfAddrTLV)
	var out []byte
	for _, a := range t.Addrs {
		addr := a.To16()
		if addr == nil {
			return nil, ErrInvalidIPAddr(a.String())
		}
		out = append(out, addr...)
	}
	return out, nil
}

// ---- TLV 137: DynamicHostname ----------------------------------------------

// DynamicHostnameTLV is the decoded value of TLV 137: a raw ASCII
// hostname with no length prefix of its own (the outer TLV length
// suffices).
type DynamicHostnameTLV struct {
	Hostname string
}

func decodeDynamicHostname(raw []byte) interface{} {
	return DynamicHostnameTLV{Hostname: string(raw)}
}

func encodeDynamicHostname(v interface{}) ([]byte, error) {
	t := v.(DynamicHostnameTLV)
	return []byte(t.Hostname), nil
}

// ---- TLV 211: Restart -------------------------------------------------------

// RestartTLV is the decoded value of TLV 211 (RFC 3847 graceful
// restart). This speaker never originates a restart request of its own;
// the flags/remaining-time/neighbor-id fields round-trip opaquely when
// present.
type RestartTLV struct {
	Flags         uint8
	RemainingTime uint16
	HasNeighborID bool
	NeighborID    [6]byte
}

func decodeRestart(raw []byte) interface{} {
	v := RestartTLV{}
	if len(raw) < 1 {
		return v
	}
	v.Flags = raw[0]
	if len(raw) >= 3 {
		v.RemainingTime = Uint16(raw[1:3])
	}
	if len(raw) >= 9 {
		v.HasNeighborID = true
		copy(v.NeighborID[:], raw[3:9])
	}
	return v
}

func encodeRestart(v interface{}) ([]byte, error) {
	t := v.(RestartTLV)
	out := make([]byte, 3, 9)
	out[0] = t.Flags
	PutUint16(out[1:3], t.RemainingTime)
	if t.HasNeighborID {
		out = append(out, t.NeighborID[:]...)
	}
	return out, nil
}

// ---- TLV 229: MultipleTopologies --------------------------------------------

// MTEntry is one announced topology in TLV 229.
type MTEntry struct {
	MTID      uint16
	Overload  bool
	Attached  bool
}

// MultipleTopologiesTLV is the decoded value of TLV 229.
type MultipleTopologiesTLV struct {
	Entries []MTEntry
}

func decodeMultipleTopologies(raw []byte) interface{} {
	v := MultipleTopologiesTLV{}
	for len(raw) >= 2 {
		word := Uint16(raw[:2])
		v.Entries = append(v.Entries, MTEntry{
			MTID:     word & 0x0FFF,
			Overload: word&0x8000 != 0,
			Attached: word&0x4000 != 0,
		})
		raw = raw[2:]
	}
	return v
}

func encodeMultipleTopologies(v interface{}) ([]byte, error) {
	t := v.(MultipleTopologiesTLV)
	out := make([]byte, 0, 2*len(t.Entries))
	for _, e := range t.Entries {
		word := e.MTID & 0x0FFF
		if e.Overload {
			word |= 0x8000
		}
		if e.Attached {
			word |= 0x4000
		}
		var buf [2]byte
		PutUint16(buf[:], word)
		out = append(out, buf[:]...)
	}
	return out, nil
}

// ---- TLV 240: ThreeWayHello --------------------------------------------------

// ThreeWayHelloTLV is the decoded value of TLV 240 (RFC 5303): the
// point-to-point three-way handshake state, with an optional extended
// local/neighbor circuit-ID trailer. Per spec.md §4.3 the value length
// (flen) is one of {1, 5, 11, >=15}; other lengths are decoded by the
// same thresholds, so only the fields whose full width is present are
// set (the parent TLV's Raw always keeps the original bytes).
type ThreeWayHelloTLV struct {
	State               AdjState
	HasExtLocalCircuit  bool
	ExtLocalCircuitID   uint32
	HasNeighbor         bool
	NeighborSysID       [6]byte
	NeighborExtCircuit  uint32
}

func decodeThreeWayHello(raw []byte) interface{} {
	v := ThreeWayHelloTLV{}
	if len(raw) < 1 {
		return v
	}
	v.State = AdjState(raw[0])
	if len(raw) >= 5 {
		v.HasExtLocalCircuit = true
		v.ExtLocalCircuitID = Uint32(raw[1:5])
	}
	if len(raw) >= 11 {
		v.HasNeighbor = true
		copy(v.NeighborSysID[:], raw[5:11])
	}
	if len(raw) >= 15 {
		v.NeighborExtCircuit = Uint32(raw[11:15])
	}
	return v
}

func encodeThreeWayHello(v interface{}) ([]byte, error) {
	t := v.(ThreeWayHelloTLV)
	out := []byte{byte(t.State)}
	if !t.HasExtLocalCircuit {
		return out, nil
	}
	var buf4 [4]byte
	PutUint32(buf4[:], t.ExtLocalCircuitID)
	out = append(out, buf4[:]...)
	if !t.HasNeighbor {
		return out, nil
	}
	out = append(out, t.NeighborSysID[:]...)
	var buf4b [4]byte
	PutUint32(buf4b[:], t.NeighborExtCircuit)
	out = append(out, buf4b[:]...)
	return out, nil
}
