package wire

import "fmt"

// TLVType is the one-octet type field of the flat (type, length, value)
// TLV grammar carried in every PDU's variable-length field region.
type TLVType uint8

const (
	TLVAreaAddress     TLVType = 1
	TLVLSPIISNeighbor  TLVType = 2
	TLVESNeighbor      TLVType = 3
	TLVIIHIISNeighbor  TLVType = 6
	TLVPadding         TLVType = 8
	TLVLSPEntries      TLVType = 9
	TLVAuthentication  TLVType = 10
	TLVTEISNeighbor    TLVType = 22
	TLVIPIntReach      TLVType = 128
	TLVProtoSupported  TLVType = 129
	TLVIPExtReach      TLVType = 130
	TLVIPIfAddr        TLVType = 132
	TLVTEIPReach       TLVType = 135
	TLVDynamicHostname TLVType = 137
	TLVRestart         TLVType = 211
	TLVMTISNeighbor    TLVType = 222
	TLVMultipleTopos   TLVType = 229
	TLVIPv6IfAddr      TLVType = 232
	TLVMTIPReach       TLVType = 235
	TLVIPv6IPReach     TLVType = 236
	TLVMTIPv6IPReach   TLVType = 237
	TLVThreeWayHello   TLVType = 240
)

var tlvNames = map[TLVType]string{
	TLVAreaAddress:     "AreaAddress",
	TLVLSPIISNeighbor:  "LSPIISNeighbor",
	TLVESNeighbor:      "ESNeighbor",
	TLVIIHIISNeighbor:  "IIHIISNeighbor",
	TLVPadding:         "Padding",
	TLVLSPEntries:      "LSPEntries",
	TLVAuthentication:  "Authentication",
	TLVTEISNeighbor:    "TEISNeighbor",
	TLVIPIntReach:      "IPIntReach",
	TLVProtoSupported:  "ProtoSupported",
	TLVIPExtReach:      "IPExtReach",
	TLVIPIfAddr:        "IPIfAddr",
	TLVTEIPReach:       "TEIPReach",
	TLVDynamicHostname: "DynamicHostname",
	TLVRestart:         "Restart",
	TLVMTISNeighbor:    "MTISNeighbor",
	TLVMultipleTopos:   "MultipleTopologies",
	TLVIPv6IfAddr:      "IPv6IfAddr",
	TLVMTIPReach:       "MTIPReach",
	TLVIPv6IPReach:     "IPv6IPReach",
	TLVMTIPv6IPReach:   "MTIPv6IPReach",
	TLVThreeWayHello:   "ThreeWayHello",
}

func (t TLVType) String() string {
	if s, ok := tlvNames[t]; ok {
		return s
	}
	return fmt.Sprintf("TLV(%d)", uint8(t))
}

// TLV is one decoded (or, for unrecognized types, opaque) entry from the
// flat TLV sequence. Raw always holds the original value bytes, so
// re-encoding an opaque TLV is just "emit Raw back out"; V holds a typed
// decode for recognized kinds (one of the *TLV structs in this package)
// and is nil otherwise.
type TLV struct {
	Type TLVType
	Raw  []byte
	V    interface{}
}

// TLVSet groups decoded TLVs by type, preserving the multiplicity and
// relative order of same-typed TLVs within the PDU (spec.md §8).
type TLVSet map[TLVType][]TLV

// First returns the first TLV of type t in the set, if any.
func (s TLVSet) First(t TLVType) (TLV, bool) {
	entries := s[t]
	if len(entries) == 0 {
		return TLV{}, false
	}
	return entries[0], true
}

// tlvDecoder decodes a single TLV's value bytes into a typed V. It must
// never fail the parent PDU: on malformed input it should return a best
// effort partial value rather than an error where practical, or leave V
// nil so the raw bytes are preserved.
type tlvDecoder func(raw []byte) interface{}

var tlvDecoders = map[TLVType]tlvDecoder{
	TLVAreaAddress:     decodeAreaAddress,
	TLVLSPIISNeighbor:  decodeLSPIISNeighbor,
	TLVESNeighbor:      decodeESNeighbor,
	TLVIIHIISNeighbor:  decodeIIHIISNeighbor,
	TLVLSPEntries:      decodeLSPEntries,
	TLVAuthentication:  decodeAuthentication,
	TLVTEISNeighbor:    decodeTEISNeighbor,
	TLVIPIntReach:      decodeIPReach,
	TLVIPExtReach:      decodeIPReach,
	TLVProtoSupported:  decodeProtoSupported,
	TLVIPIfAddr:        decodeIPIfAddr,
	TLVTEIPReach:       decodeTEIPReach,
	TLVDynamicHostname: decodeDynamicHostname,
	TLVRestart:         decodeRestart,
	TLVMTISNeighbor:    decodeMTISNeighbor,
	TLVMultipleTopos:   decodeMultipleTopologies,
	TLVIPv6IfAddr:      decodeIPv6IfAddr,
	TLVMTIPReach:       decodeMTIPReach,
	TLVIPv6IPReach:     decodeIPv6IPReach,
	TLVMTIPv6IPReach:   decodeMTIPv6IPReach,
	TLVThreeWayHello:   decodeThreeWayHello,
}

// DecodeTLVs parses the flat TLV sequence starting at data[0]. Malformed
// trailing bytes (fewer than 2 remaining) are silently ignored, matching
// the original parser's "while len(fields) > 1" loop guard (spec.md §4.3:
// unknown TLVs/short buffers never fail the parent PDU).
func DecodeTLVs(data []byte) TLVSet {
	set := TLVSet{}
	for len(data) > 1 {
		typ := TLVType(data[0])
		flen := int(data[1])
		if len(data) < 2+flen {
			// Truncated value: take what's there and stop.
			flen = len(data) - 2
			if flen < 0 {
				break
			}
		}
		raw := append([]byte(nil), data[2:2+flen]...)

		entry := TLV{Type: typ, Raw: raw}
		if dec, ok := tlvDecoders[typ]; ok && typ != TLVPadding {
			entry.V = dec(raw)
		}
		set[typ] = append(set[typ], entry)

		data = data[2+flen:]
	}
	return set
}

// tlvEncoder serializes a typed value back into TLV value bytes.
type tlvEncoder func(v interface{}) ([]byte, error)

var tlvEncoders = map[TLVType]tlvEncoder{
	TLVAreaAddress:     encodeAreaAddress,
	TLVLSPIISNeighbor:  encodeLSPIISNeighbor,
	TLVESNeighbor:      encodeESNeighbor,
	TLVIIHIISNeighbor:  encodeIIHIISNeighbor,
	TLVLSPEntries:      encodeLSPEntries,
	TLVAuthentication:  encodeAuthentication,
	TLVTEISNeighbor:    encodeTEISNeighbor,
	TLVIPIntReach:      encodeIPReach,
	TLVIPExtReach:      encodeIPReach,
	TLVProtoSupported:  encodeProtoSupported,
	TLVIPIfAddr:        encodeIPIfAddr,
	TLVTEIPReach:       encodeTEIPReach,
	TLVDynamicHostname: encodeDynamicHostname,
	TLVRestart:         encodeRestart,
	TLVMTISNeighbor:    encodeMTISNeighbor,
	TLVMultipleTopos:   encodeMultipleTopologies,
	TLVIPv6IfAddr:      encodeIPv6IfAddr,
	TLVMTIPReach:       encodeMTIPReach,
	TLVIPv6IPReach:     encodeIPv6IPReach,
	TLVMTIPv6IPReach:   encodeMTIPv6IPReach,
	TLVThreeWayHello:   encodeThreeWayHello,
}

// EncodeTLV serializes one TLV (type, length, value) record. Values over
// MaxTLVValueLen bytes, or an undefined type, are encode-time failures
// (wire.Fault{Kind: FaultVLenField}) that abort only this emission, per
// spec.md §7 — the caller's emission is abandoned but the event loop
// continues.
func EncodeTLV(t TLVType, v interface{}) ([]byte, error) {
	enc, ok := tlvEncoders[t]
	if !ok {
		return nil, ErrVLenFieldUndefined(t.String())
	}
	val, err := enc(v)
	if err != nil {
		return nil, err
	}
	if len(val) > MaxTLVValueLen {
		return nil, ErrVLenFieldTooLong(t.String(), len(val))
	}
	out := make([]byte, 2+len(val))
	out[0] = byte(t)
	out[1] = byte(len(val))
	copy(out[2:], val)
	return out, nil
}

// EncodeTLVList serializes an ordered list of TLVs back into a flat byte
// sequence, the form a PDU's payload takes on the wire. An entry with a
// non-nil V is re-encoded from its typed value; an entry with a nil V
// (an opaque or unrecognized TLV) is re-emitted verbatim from Raw, which
// is how an unmodified TLV received on the wire survives retransmission
// without this speaker understanding its contents.
func EncodeTLVList(entries []TLV) ([]byte, error) {
	var out []byte
	for _, e := range entries {
		if e.V == nil {
			hdr := []byte{byte(e.Type), byte(len(e.Raw))}
			out = append(out, hdr...)
			out = append(out, e.Raw...)
			continue
		}
		tlv, err := EncodeTLV(e.Type, e.V)
		if err != nil {
			return nil, err
		}
		out = append(out, tlv...)
	}
	return out, nil
}

// EncodeLSPEntriesGrouped splits entries into TLVLSPEntries records of at
// most 15 entries each (spec.md §4.3/§4.6), returning the concatenated
// TLV bytes for all of them in order.
func EncodeLSPEntriesGrouped(entries []LSPEntry) ([]byte, error) {
	var out []byte
	for i := 0; i < len(entries); i += 15 {
		end := i + 15
		if end > len(entries) {
			end = len(entries)
		}
		tlv, err := EncodeTLV(TLVLSPEntries, LSPEntriesTLV{Entries: entries[i:end]})
		if err != nil {
			return nil, err
		}
		out = append(out, tlv...)
	}
	return out, nil
}
