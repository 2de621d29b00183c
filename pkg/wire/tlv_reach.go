package wire

import "net"

// This file covers the IP reachability TLVs: legacy IPv4 (128 internal,
// 130 external, sharing one layout per spec.md §4.3), wide-metric TE
// IPv4 (135), its multi-topology variant (235), plain IPv6 (236), and
// its multi-topology variant (237).

// IPReachEntry is one legacy (RFC 1195) IPv4 reachability entry.
type IPReachEntry struct {
	Metric       ISNeighborMetric
	Addr         net.IP // 4-byte
	Mask         net.IPMask
}

// IPReachTLV is the decoded value of TLV 128/130.
type IPReachTLV struct {
	Entries []IPReachEntry
}

func decodeIPReach(raw []byte) interface{} {
	v := IPReachTLV{}
	for len(raw) >= 12 {
		e := IPReachEntry{
			Metric: ISNeighborMetric{Default: raw[0], Delay: raw[1], Expense: raw[2], Error: raw[3]},
			Addr:   net.IPv4(raw[4], raw[5], raw[6], raw[7]).To4(),
			Mask:   net.IPv4Mask(raw[8], raw[9], raw[10], raw[11]),
		}
		v.Entries = append(v.Entries, e)
		raw = raw[12:]
	}
	return v
}

func encodeIPReach(v interface{}) ([]byte, error) {
	t := v.(IPReachTLV)
	out := make([]byte, 0, 12*len(t.Entries))
	for _, e := range t.Entries {
		out = append(out, e.Metric.Default, e.Metric.Delay, e.Metric.Expense, e.Metric.Error)
		addr := e.Addr.To4()
		if addr == nil {
			return nil, ErrInvalidIPAddr(e.Addr.String())
		}
		out = append(out, addr...)
		out = append(out, e.Mask...)
	}
	return out, nil
}

// TEIPReachEntry is one wide-metric (RFC 5305) IPv4 reachability entry.
// The prefix length selects how many of the 4 address octets are
// actually present on the wire (spec.md §4.3: plen in {0,1,8,32}).
type TEIPReachEntry struct {
	Metric    uint32
	UpDown    bool
	PrefixLen uint8
	Prefix    net.IP
	Sub       []SubTLV
}

// TEIPReachTLV is the decoded value of TLV 135.
type TEIPReachTLV struct {
	Entries []TEIPReachEntry
}

func prefixOctets(plen uint8) int {
	return (int(plen) + 7) / 8
}

func decodeTEIPReachEntries(raw []byte) []TEIPReachEntry {
	var out []TEIPReachEntry
	for len(raw) >= 5 {
		metric := Uint32(raw[0:4])
		ctrl := raw[4]
		plen := ctrl & 0x3F
		nOctets := prefixOctets(plen)
		raw = raw[5:]
		if nOctets > len(raw) {
			break
		}
		addrBytes := make([]byte, 4)
		copy(addrBytes, raw[:nOctets])
		raw = raw[nOctets:]

		e := TEIPReachEntry{Metric: metric, UpDown: ctrl&0x80 != 0, PrefixLen: plen, Prefix: net.IP(addrBytes)}
		if ctrl&0x40 != 0 { // sub-TLVs present bit
			if len(raw) < 1 {
				break
			}
			sublen := int(raw[0])
			raw = raw[1:]
			if sublen > len(raw) {
				sublen = len(raw)
			}
			e.Sub = DecodeSubTLVs(raw[:sublen])
			raw = raw[sublen:]
		}
		out = append(out, e)
	}
	return out
}

func encodeTEIPReachEntries(entries []TEIPReachEntry) []byte {
	var out []byte
	for _, e := range entries {
		var m [4]byte
		PutUint32(m[:], e.Metric)
		out = append(out, m[:]...)
		ctrl := e.PrefixLen & 0x3F
		if e.UpDown {
			ctrl |= 0x80
		}
		hasSub := len(e.Sub) > 0
		if hasSub {
			ctrl |= 0x40
		}
		out = append(out, ctrl)
		nOctets := prefixOctets(e.PrefixLen)
		addr := e.Prefix.To4()
		if addr == nil {
			addr = make([]byte, 4)
		}
		out = append(out, addr[:nOctets]...)
		if hasSub {
			sub := EncodeSubTLVs(e.Sub)
			out = append(out, byte(len(sub)))
			out = append(out, sub...)
		}
	}
	return out
}

func decodeTEIPReach(raw []byte) interface{} {
	return TEIPReachTLV{Entries: decodeTEIPReachEntries(raw)}
}

func encodeTEIPReach(v interface{}) ([]byte, error) {
	t := v.(TEIPReachTLV)
	return encodeTEIPReachEntries(t.Entries), nil
}

// MTIPReachTLV is the decoded value of TLV 235: an MTID followed by the
// same wide-metric IPv4 entry list as TLV 135.
type MTIPReachTLV struct {
	MTID    uint16
	Entries []TEIPReachEntry
}

func decodeMTIPReach(raw []byte) interface{} {
	v := MTIPReachTLV{}
	if len(raw) < 2 {
		return v
	}
	v.MTID = Uint16(raw[:2]) & 0x0FFF
	v.Entries = decodeTEIPReachEntries(raw[2:])
	return v
}

func encodeMTIPReach(v interface{}) ([]byte, error) {
	t := v.(MTIPReachTLV)
	out := make([]byte, 2)
	PutUint16(out, t.MTID&0x0FFF)
	out = append(out, encodeTEIPReachEntries(t.Entries)...)
	return out, nil
}

// IPv6ReachEntry is one IPv6 reachability entry (RFC 5308). Like
// TEIPReachEntry it carries a 4-byte metric, a control octet and a
// variable-length prefix, but the prefix length has an octet of its own,
// the control octet adds an external flag, and the address is 16 bytes.
type IPv6ReachEntry struct {
	Metric    uint32
	UpDown    bool
	External  bool
	PrefixLen uint8
	Prefix    net.IP
	Sub       []SubTLV
}

// IPv6IPReachTLV is the decoded value of TLV 236.
type IPv6IPReachTLV struct {
	Entries []IPv6ReachEntry
}

func decodeIPv6ReachEntries(raw []byte) []IPv6ReachEntry {
	var out []IPv6ReachEntry
	for len(raw) >= 6 {
		metric := Uint32(raw[0:4])
		ctrl := raw[4]
		plen := raw[5]
		nOctets := prefixOctets(plen)
		raw = raw[6:]
		if nOctets > len(raw) || nOctets > 16 {
			break
		}
		addrBytes := make([]byte, 16)
		copy(addrBytes, raw[:nOctets])
		raw = raw[nOctets:]

		e := IPv6ReachEntry{
			Metric:    metric,
			UpDown:    ctrl&0x80 != 0,
			External:  ctrl&0x40 != 0,
			PrefixLen: plen,
			Prefix:    net.IP(addrBytes),
		}
		if ctrl&0x20 != 0 { // sub-TLVs present bit
			if len(raw) < 1 {
				break
			}
			sublen := int(raw[0])
			raw = raw[1:]
			if sublen > len(raw) {
				sublen = len(raw)
			}
			e.Sub = DecodeSubTLVs(raw[:sublen])
			raw = raw[sublen:]
		}
		out = append(out, e)
	}
	return out
}

func encodeIPv6ReachEntries(entries []IPv6ReachEntry) []byte {
	var out []byte
	for _, e := range entries {
		var m [4]byte
		PutUint32(m[:], e.Metric)
		out = append(out, m[:]...)
		var ctrl uint8
		if e.UpDown {
			ctrl |= 0x80
		}
		if e.External {
			ctrl |= 0x40
		}
		hasSub := len(e.Sub) > 0
		if hasSub {
			ctrl |= 0x20
		}
		out = append(out, ctrl, e.PrefixLen)
		nOctets := prefixOctets(e.PrefixLen)
		addr := e.Prefix.To16()
		if addr == nil {
			addr = make([]byte, 16)
		}
		out = append(out, addr[:nOctets]...)
		if hasSub {
			sub := EncodeSubTLVs(e.Sub)
			out = append(out, byte(len(sub)))
			out = append(out, sub...)
		}
	}
	return out
}

func decodeIPv6IPReach(raw []byte) interface{} {
	return IPv6IPReachTLV{Entries: decodeIPv6ReachEntries(raw)}
}

func encodeIPv6IPReach(v interface{}) ([]byte, error) {
	t := v.(IPv6IPReachTLV)
	return encodeIPv6ReachEntries(t.Entries), nil
}

// MTIPv6IPReachTLV is the decoded value of TLV 237: an MTID followed by
// the same IPv6 entry list as TLV 236.
type MTIPv6IPReachTLV struct {
	MTID    uint16
	Entries []IPv6ReachEntry
}

func decodeMTIPv6IPReach(raw []byte) interface{} {
	v := MTIPv6IPReachTLV{}
	if len(raw) < 2 {
		return v
	}
	v.MTID = Uint16(raw[:2]) & 0x0FFF
	v.Entries = decodeIPv6ReachEntries(raw[2:])
	return v
}

func encodeMTIPv6IPReach(v interface{}) ([]byte, error) {
	t := v.(MTIPv6IPReachTLV)
	out := make([]byte, 2)
	PutUint16(out, t.MTID&0x0FFF)
	out = append(out, encodeIPv6ReachEntries(t.Entries)...)
	return out, nil
}
