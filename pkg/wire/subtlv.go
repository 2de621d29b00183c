package wire

// Sub-TLVs nest inside the wide-metric TE neighbor (22, 222) and TE IP
// reachability (135, 235, 237) TLVs (RFC 5305). Unlike the top-level TLV
// grammar, sub-TLV content is carried opaquely: this speaker never
// originates traffic engineering sub-TLVs of its own, it only needs to
// preserve them across a decode/re-encode round trip (spec.md §8).

// SubTLVType is the one-octet sub-TLV type field.
type SubTLVType uint8

const (
	SubTLVAdminGroup      SubTLVType = 3
	SubTLVIPv4IntAddr     SubTLVType = 6
	SubTLVIPv4NbrAddr     SubTLVType = 8
	SubTLVMaxLinkBwidth   SubTLVType = 9
	SubTLVMaxResLinkBwidth SubTLVType = 10
	SubTLVUnresBwidth     SubTLVType = 11
	SubTLVTEDefaultMetric SubTLVType = 18
)

// SubTLV is one opaque (type, length, value) sub-TLV entry.
type SubTLV struct {
	Type SubTLVType
	Raw  []byte
}

// DecodeSubTLVs parses a flat sub-TLV sequence, preserving multiplicity
// and order. It uses the same truncation-tolerant loop guard as
// DecodeTLVs: a short trailing remainder is dropped rather than failing
// the parent TLV.
func DecodeSubTLVs(data []byte) []SubTLV {
	var out []SubTLV
	for len(data) > 1 {
		typ := SubTLVType(data[0])
		slen := int(data[1])
		if len(data) < 2+slen {
			slen = len(data) - 2
			if slen < 0 {
				break
			}
		}
		out = append(out, SubTLV{Type: typ, Raw: append([]byte(nil), data[2:2+slen]...)})
		data = data[2+slen:]
	}
	return out
}

// EncodeSubTLVs re-serializes a sub-TLV sequence in order.
func EncodeSubTLVs(subs []SubTLV) []byte {
	var out []byte
	for _, s := range subs {
		out = append(out, byte(s.Type), byte(len(s.Raw)))
		out = append(out, s.Raw...)
	}
	return out
}
