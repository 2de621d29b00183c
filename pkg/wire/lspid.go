package wire

// LSPID is the 3-tuple (SYSID, pseudonode, fragment) identifying one LSP,
// per spec.md §3. The 8-byte on-the-wire form concatenates the fields in
// this order.
type LSPID struct {
	SysID      [6]byte
	Pseudonode uint8
	Fragment   uint8
}

// String renders the canonical "sysid.pseudonode-fragment" form used as
// the LSDB map key (spec.md §9's design note: the string form exists
// purely for cheap equality/hashing).
func (id LSPID) String() string {
	return HexDotted(id.SysID[:]) + "." + hexByte(id.Pseudonode) + "-" + hexByte(id.Fragment)
}

func hexByte(b uint8) string {
	const hextable = "0123456789abcdef"
	return string([]byte{hextable[b>>4], hextable[b&0xf]})
}

// DecodeLSPID parses the 8-byte on-the-wire LSP ID form.
func DecodeLSPID(b []byte) LSPID {
	var id LSPID
	copy(id.SysID[:], b[0:6])
	id.Pseudonode = b[6]
	id.Fragment = b[7]
	return id
}

// Encode renders the 8-byte on-the-wire form.
func (id LSPID) Encode() []byte {
	out := make([]byte, 8)
	copy(out[0:6], id.SysID[:])
	out[6] = id.Pseudonode
	out[7] = id.Fragment
	return out
}
