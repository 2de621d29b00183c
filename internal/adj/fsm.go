// Package adj implements the per-neighbor adjacency finite-state machine
// driven by received Hello PDUs, grounded on the Isis.Adj class and the
// LAN/PP branches of processFsm in the original implementation,
// restructured as Go struct + methods per SPEC_FULL.md §4.5.
package adj

import (
	"time"

	"github.com/go-isis/isisd/pkg/wire"
)

// Key identifies one adjacency: the neighbor's MAC plus the adjacency
// type (L1=1, L2=2, PP=3), matching the original's two-level map.
type Key struct {
	PeerMAC [6]byte
	Type    uint8
}

const (
	TypeL1 uint8 = 1
	TypeL2 uint8 = 2
	TypePP uint8 = 3
)

// Record is one adjacency record per spec.md §3.
type Record struct {
	State wire.AdjState

	PeerMAC          [6]byte
	PeerSysID        [6]byte
	PeerAreas        [][]byte
	PeerLANID        [7]byte
	PeerLocalCircuit uint8
	HasLANID         bool // false for PP adjacencies, which carry PeerLocalCircuit instead

	HoldTimer      uint16
	NextRetransmit time.Duration // remaining time until the cached Hello must be re-sent
	SinceRefresh   time.Duration // time elapsed since the last refreshing Hello

	OutboundHello []byte
}

// Table is the speaker's adjacency map, keyed by (peer MAC, type).
type Table map[Key]*Record

// IngestLANHello applies spec.md §4.5's LAN Hello branch: create an
// INITIALIZING record on first contact, or move an existing one to UP and
// refresh its cached outbound Hello. buildHello is called with the
// current record to (re)compute the outbound bytes — the caller supplies
// it so the FSM package stays free of wire-encoding concerns.
func (t Table) IngestLANHello(peerMAC [6]byte, level uint8, hello *wire.LANHello, buildHello func(*Record) []byte) *Record {
	key := Key{PeerMAC: peerMAC, Type: level}
	rec, exists := t[key]
	if !exists {
		rec = &Record{
			State:     wire.StateInitializing,
			PeerMAC:   peerMAC,
			PeerSysID: hello.SrcID,
			HoldTimer: hello.HoldTimer,
			PeerLANID: hello.LANID,
			HasLANID:  true,
		}
		rec.PeerAreas = extractAreas(hello.TLVs)
		t[key] = rec
	} else {
		rec.State = wire.StateUp
		rec.PeerSysID = hello.SrcID
		rec.HoldTimer = hello.HoldTimer
		rec.PeerLANID = hello.LANID
		rec.PeerAreas = extractAreas(hello.TLVs)
	}
	rec.OutboundHello = buildHello(rec)
	rec.NextRetransmit = 0
	rec.SinceRefresh = 0
	return rec
}

// NextPPState maps a received ThreeWayHello state to the state this
// speaker should announce, per spec.md §4.5's table. A PP Hello carrying
// no ThreeWayHello TLV always announces UP.
func NextPPState(rxState wire.AdjState, hasThreeWay bool) wire.AdjState {
	if !hasThreeWay {
		return wire.StateUp
	}
	switch rxState {
	case wire.StateDown:
		return wire.StateInitializing
	case wire.StateInitializing:
		return wire.StateUp
	case wire.StateUp:
		return wire.StateUp
	default:
		return wire.StateDown
	}
}

// IngestPPHello applies spec.md §4.5's PP Hello branch.
func (t Table) IngestPPHello(peerMAC [6]byte, hello *wire.PPHello, txState wire.AdjState, buildHello func(*Record) []byte) *Record {
	key := Key{PeerMAC: peerMAC, Type: TypePP}
	rec, exists := t[key]
	if !exists {
		rec = &Record{
			State:            txState,
			PeerMAC:          peerMAC,
			PeerSysID:        hello.SrcID,
			HoldTimer:        hello.HoldTimer,
			PeerLocalCircuit: hello.LocalCircuitID,
		}
		rec.PeerAreas = extractAreas(hello.TLVs)
		t[key] = rec
	} else {
		rec.State = txState
		rec.PeerSysID = hello.SrcID
		rec.HoldTimer = hello.HoldTimer
		rec.PeerLocalCircuit = hello.LocalCircuitID
		rec.PeerAreas = extractAreas(hello.TLVs)
	}
	rec.OutboundHello = buildHello(rec)
	rec.NextRetransmit = 0
	rec.SinceRefresh = 0
	return rec
}

func extractAreas(tlvs wire.TLVSet) [][]byte {
	var areas [][]byte
	for _, entry := range tlvs[wire.TLVAreaAddress] {
		v, ok := entry.V.(wire.AreaAddressTLV)
		if !ok {
			continue
		}
		areas = append(areas, v.Areas...)
	}
	return areas
}

// AdvanceAndExpire debits elapsed from every record's retransmit
// countdown and, per SPEC_FULL.md §9's holdtimer-expiry resolution,
// removes any record whose holdtimer has fully elapsed without a
// refreshing Hello rather than leaving it in the map forever. It returns
// the records now due for retransmission.
func (t Table) AdvanceAndExpire(elapsed time.Duration) []*Record {
	var due []*Record
	for key, rec := range t {
		rec.NextRetransmit -= elapsed
		rec.SinceRefresh += elapsed

		holdtimer := time.Duration(rec.HoldTimer) * time.Second
		if rec.SinceRefresh >= holdtimer {
			rec.State = wire.StateDown
			delete(t, key)
			continue
		}

		const retxThresh = 3 * time.Second
		if rec.NextRetransmit <= retxThresh {
			due = append(due, rec)
		}
	}
	return due
}

// ResetRetransmit resets a record's countdown to its full holdtimer after
// a retransmission, per spec.md §4.7.
func (r *Record) ResetRetransmit() {
	r.NextRetransmit = time.Duration(r.HoldTimer) * time.Second
}

// HasPPAdjacency reports whether a point-to-point adjacency already
// exists with peerMAC, the check spec.md §4.6 requires before an LSP ack
// is emitted.
func (t Table) HasPPAdjacency(peerMAC [6]byte) (*Record, bool) {
	rec, ok := t[Key{PeerMAC: peerMAC, Type: TypePP}]
	return rec, ok
}

// PeerMACsAtLevel lists the MACs of all LAN adjacencies at the given
// level, the IIHIISNeighbor content of an outbound LAN Hello.
func (t Table) PeerMACsAtLevel(level uint8) [][6]byte {
	var macs [][6]byte
	for key := range t {
		if key.Type == level {
			macs = append(macs, key.PeerMAC)
		}
	}
	return macs
}
