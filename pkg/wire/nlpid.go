package wire

// This file carries the small integer<->name enumerations the original
// implementation expressed as Python dicts populated in both directions
// (isis.py's DLIST reverse-population loop). Go doesn't need the runtime
// reversal: each enum below is declared with typed constants plus a
// name table and a String()/parse pair, per spec.md §9's design note.

// NLPID is an ISO network-layer protocol identifier.
type NLPID uint8

const (
	NLPIDNull NLPID = 0x00
	NLPIDSNAP NLPID = 0x80
	NLPIDCLNP NLPID = 0x81
	NLPIDESIS NLPID = 0x82
	NLPIDISIS NLPID = 0x83
	NLPIDIPv6 NLPID = 0x8E
	NLPIDIP   NLPID = 0xCC
)

var nlpidNames = map[NLPID]string{
	NLPIDNull: "NULL",
	NLPIDSNAP: "SNAP",
	NLPIDCLNP: "CLNP",
	NLPIDESIS: "ESIS",
	NLPIDISIS: "ISIS",
	NLPIDIPv6: "IPV6",
	NLPIDIP:   "IP",
}

func (n NLPID) String() string {
	if s, ok := nlpidNames[n]; ok {
		return s
	}
	return "UNKNOWN"
}

// MsgType identifies the IS-IS PDU kind carried by the common header.
type MsgType uint8

const (
	MsgTypeNull       MsgType = 0
	MsgTypeESH        MsgType = 2
	MsgTypeISH        MsgType = 4
	MsgTypeRD         MsgType = 6
	MsgTypeL1LANHello MsgType = 15
	MsgTypeL2LANHello MsgType = 16
	MsgTypePPHello    MsgType = 17
	MsgTypeL1LSP      MsgType = 18
	MsgTypeL2LSP      MsgType = 20
	MsgTypeL1CSN      MsgType = 24
	MsgTypeL2CSN      MsgType = 25
	MsgTypeL1PSN      MsgType = 26
	MsgTypeL2PSN      MsgType = 27
)

var msgTypeNames = map[MsgType]string{
	MsgTypeNull:       "NULL",
	MsgTypeESH:        "ESH",
	MsgTypeISH:        "ISH",
	MsgTypeRD:         "RD",
	MsgTypeL1LANHello: "L1LANHello",
	MsgTypeL2LANHello: "L2LANHello",
	MsgTypePPHello:    "PPHello",
	MsgTypeL1LSP:      "L1LSP",
	MsgTypeL2LSP:      "L2LSP",
	MsgTypeL1CSN:      "L1CSN",
	MsgTypeL2CSN:      "L2CSN",
	MsgTypeL1PSN:      "L1PSN",
	MsgTypeL2PSN:      "L2PSN",
}

func (t MsgType) String() string {
	if s, ok := msgTypeNames[t]; ok {
		return s
	}
	return "UNKNOWN"
}

// IsLANHello reports whether t is an L1 or L2 broadcast Hello.
func (t MsgType) IsLANHello() bool { return t == MsgTypeL1LANHello || t == MsgTypeL2LANHello }

// IsLSP reports whether t is an L1 or L2 Link-State PDU.
func (t MsgType) IsLSP() bool { return t == MsgTypeL1LSP || t == MsgTypeL2LSP }

// IsCSN reports whether t is an L1 or L2 Complete Sequence-Number PDU.
func (t MsgType) IsCSN() bool { return t == MsgTypeL1CSN || t == MsgTypeL2CSN }

// IsPSN reports whether t is an L1 or L2 Partial Sequence-Number PDU.
func (t MsgType) IsPSN() bool { return t == MsgTypeL1PSN || t == MsgTypeL2PSN }

// Level returns 1 or 2 for a level-scoped PDU type, or 0 if t has no
// level (e.g. PPHello, which carries both levels via CircuitType).
func (t MsgType) Level() int {
	switch t {
	case MsgTypeL1LANHello, MsgTypeL1LSP, MsgTypeL1CSN, MsgTypeL1PSN:
		return 1
	case MsgTypeL2LANHello, MsgTypeL2LSP, MsgTypeL2CSN, MsgTypeL2PSN:
		return 2
	default:
		return 0
	}
}

// CircuitType is the IS-IS level scope carried by Hello/LSP headers.
type CircuitType uint8

const (
	CircuitReserved CircuitType = 0
	CircuitL1       CircuitType = 1
	CircuitL2       CircuitType = 2
	CircuitL1L2     CircuitType = 3
)

var circuitTypeNames = map[CircuitType]string{
	CircuitReserved: "reserved",
	CircuitL1:       "L1Circuit",
	CircuitL2:       "L2Circuit",
	CircuitL1L2:     "L1L2Circuit",
}

func (c CircuitType) String() string {
	if s, ok := circuitTypeNames[c]; ok {
		return s
	}
	return "UNKNOWN"
}

// AdjState is the three-way FSM state shared by the LAN Hello implicit
// FSM and the PP ThreeWayHello TLV.
type AdjState uint8

const (
	StateUp           AdjState = 0
	StateInitializing AdjState = 1
	StateDown         AdjState = 2
)

var adjStateNames = map[AdjState]string{
	StateUp:           "UP",
	StateInitializing: "INITIALIZING",
	StateDown:         "DOWN",
}

func (s AdjState) String() string {
	if n, ok := adjStateNames[s]; ok {
		return n
	}
	return "UNKNOWN"
}

// MTID is a Multi-Topology identifier (RFC 5120).
type MTID uint16

const (
	MTIDIPv4Unicast   MTID = 0
	MTIDIPv4Mgmt      MTID = 1
	MTIDIPv6Unicast   MTID = 2
	MTIDIPv4Multicast MTID = 3
	MTIDIPv6Multicast MTID = 4
	MTIDIPv6Mgmt      MTID = 5
)

var mtidNames = map[MTID]string{
	MTIDIPv4Unicast:   "IPv4 routing topology",
	MTIDIPv4Mgmt:      "IPv4 in-band management",
	MTIDIPv6Unicast:   "IPv6 routing topology",
	MTIDIPv4Multicast: "IPv4 multicast topology",
	MTIDIPv6Multicast: "IPv6 multicast topology",
	MTIDIPv6Mgmt:      "IPv6 in-band management",
}

func (m MTID) String() string {
	if s, ok := mtidNames[m]; ok {
		return s
	}
	return "UNKNOWN"
}

// Multicast destination MAC addresses for the two IS-IS levels (spec.md
// §4.5, §6).
var (
	AllL1ISs = [6]byte{0x01, 0x80, 0xc2, 0x00, 0x00, 0x14}
	AllL2ISs = [6]byte{0x01, 0x80, 0xc2, 0x00, 0x00, 0x15}
)

const (
	// ISISLLCDSAP/SSAP/Ctrl are the fixed LLC header octets that
	// identify a routed ISO PDU (spec.md §4.4).
	ISISLLCDSAP = 0xFE
	ISISLLCSSAP = 0xFE
	ISISLLCCtrl = 0x03

	// MACPktLen is the full 802.3 frame length all outbound PDUs are
	// padded to (spec.md §3).
	MACPktLen = 1514
	// MACHdrLen is the 14-byte MAC header plus the 3-byte LLC header.
	MACHdrLen = 17
	// ISISHdrLen is the 8-byte IS-IS common header length.
	ISISHdrLen = 8
)
