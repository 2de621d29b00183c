// Package isis assembles the wire codec, adjacency FSM, and link-state
// database into a single-threaded passive IS-IS speaker. Grounded on
// isis.py's top-level select loop and, for the constructor/wiring shape,
// on bmc.go's Dial-style assembly of a session from its parts.
package isis

import (
	"time"

	"github.com/google/gopacket"
	"github.com/sirupsen/logrus"

	"github.com/go-isis/isisd/internal/adj"
	"github.com/go-isis/isisd/internal/link"
	"github.com/go-isis/isisd/internal/lsdb"
	"github.com/go-isis/isisd/internal/metrics"
	"github.com/go-isis/isisd/pkg/wire"
)

const retxThreshold = 3 * time.Second

// Speaker owns the raw socket, adjacency table, and LSDB exclusively for
// the lifetime of Run, per spec.md §5's single-owner concurrency model.
type Speaker struct {
	cfg    *Config
	sock   *link.Socket
	adjs   adj.Table
	lsdb   lsdb.DB
	sink   Sink
	logger *logrus.Logger

	done chan struct{}
}

// NewSpeaker opens the raw socket on cfg.Device and assembles a Speaker
// ready for Run. It fails with wire.FaultNoIPAddr if the interface has no
// usable address and cfg.IPv4Addrs/IPv6Addrs weren't supplied to cover
// for it, per spec.md §7's configuration error taxonomy.
func NewSpeaker(cfg *Config, sink Sink, logger *logrus.Logger) (*Speaker, error) {
	sock, err := link.Open(cfg.Device)
	if err != nil {
		return nil, err
	}

	if len(cfg.IPv4Addrs) == 0 {
		cfg.IPv4Addrs = sock.IPv4Addrs
	}
	if len(cfg.IPv6Addrs) == 0 {
		cfg.IPv6Addrs = sock.IPv6Addrs
	}
	if len(cfg.IPv4Addrs) == 0 && len(cfg.IPv6Addrs) == 0 {
		sock.Close()
		return nil, wire.ErrNoIPAddr(cfg.Device)
	}

	if sink == nil {
		sink = NullSink{}
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &Speaker{
		cfg:    cfg,
		sock:   sock,
		adjs:   adj.Table{},
		lsdb:   lsdb.DB{},
		sink:   sink,
		logger: logger,
		done:   make(chan struct{}),
	}, nil
}

// Close releases the underlying socket.
func (s *Speaker) Close() error {
	return s.sock.Close()
}

// Stop requests the loop in Run exit at the next wake boundary, per
// spec.md §4.7's external-interrupt handling.
func (s *Speaker) Stop() {
	select {
	case <-s.done:
	default:
		close(s.done)
	}
}

// Run executes the event loop until Stop is called. It never returns an
// error for a dropped frame or a checksum failure — those are logged and
// the loop continues, per spec.md §7.
func (s *Speaker) Run() error {
	buf := make([]byte, wire.MACPktLen)
	for {
		select {
		case <-s.done:
			return nil
		default:
		}

		timeout := s.nextTimeout()
		start := time.Now()
		ready, err := s.sock.Poll(timeout)
		if err != nil {
			return err
		}

		if ready {
			n, err := s.sock.Recv(buf)
			if err == nil {
				s.handleFrame(buf[:n])
			}
		}

		s.advanceAndRetransmit(time.Since(start))
	}
}

// nextTimeout computes spec.md §4.7's bounded wait: the minimum across
// all adjacencies of rtx_at - retx_thresh, floored at 0, or the full
// holdtimer-minus-threshold interval if there are no adjacencies yet.
func (s *Speaker) nextTimeout() time.Duration {
	min := time.Duration(s.cfg.EffectiveHoldTimer())*time.Second - retxThreshold
	for _, rec := range s.adjs {
		remaining := rec.NextRetransmit - retxThreshold
		if remaining < min {
			min = remaining
		}
	}
	if min < 0 {
		min = 0
	}
	return min
}

// advanceAndRetransmit debits elapsed from every adjacency, retransmits
// the cached Hello of any adjacency now due, and resets its countdown,
// per spec.md §4.7.
func (s *Speaker) advanceAndRetransmit(elapsed time.Duration) {
	due := s.adjs.AdvanceAndExpire(elapsed)
	for _, rec := range due {
		if rec.OutboundHello != nil {
			if err := s.sock.Send(rec.OutboundHello); err == nil {
				metrics.PDUsSent.WithLabelValues("hello").Inc()
			}
		}
		rec.ResetRetransmit()
	}
	metrics.LSDBSize.Set(float64(len(s.lsdb)))
	s.refreshAdjacencyMetrics()
}

// adjTypeNames maps an adj.Table key's Type byte to the label value
// AdjacenciesByState is published under.
var adjTypeNames = map[uint8]string{
	adj.TypeL1: "L1",
	adj.TypeL2: "L2",
	adj.TypePP: "PP",
}

// refreshAdjacencyMetrics republishes AdjacenciesByState as a full
// snapshot of the current adjacency table, per spec.md §2's event-loop
// metrics surface. It resets the vector first so a (type, state) pair
// that emptied out (the last adjacency of that kind expired or moved to
// a different state) doesn't keep reporting a stale nonzero count.
func (s *Speaker) refreshAdjacencyMetrics() {
	metrics.AdjacenciesByState.Reset()
	counts := make(map[[2]string]int)
	for key, rec := range s.adjs {
		counts[[2]string{adjTypeNames[key.Type], rec.State.String()}]++
	}
	for labels, count := range counts {
		metrics.AdjacenciesByState.WithLabelValues(labels[0], labels[1]).Set(float64(count))
	}
}

// handleFrame decodes one received frame and dispatches it through the
// adjacency FSM or LSDB, per spec.md §2's data flow. A FaultLLC — the
// frame isn't IS-IS at all — is dropped silently, matching the original
// parser raising (and the caller swallowing) LLCExc.
func (s *Speaker) handleFrame(raw []byte) {
	packet := gopacket.NewPacket(raw, wire.LayerTypeHeader, gopacket.DecodeOptions{NoCopy: true})
	if errLayer := packet.ErrorLayer(); errLayer != nil {
		return
	}
	hdrLayer := packet.Layer(wire.LayerTypeHeader)
	if hdrLayer == nil {
		return
	}
	hdr := hdrLayer.(*wire.Header)
	metrics.PDUsReceived.WithLabelValues(hdr.MsgType.String()).Inc()
	s.sink.Emit(uint8(hdr.MsgType), raw)

	switch {
	case hdr.MsgType.IsLANHello():
		if l, ok := packet.Layer(wire.LayerTypeLANHello).(*wire.LANHello); ok {
			s.onLANHello(hdr, l)
		}
	case hdr.MsgType == wire.MsgTypePPHello:
		if p, ok := packet.Layer(wire.LayerTypePPHello).(*wire.PPHello); ok {
			s.onPPHello(hdr, p)
		}
	case hdr.MsgType.IsLSP():
		if l, ok := packet.Layer(wire.LayerTypeLSP).(*wire.LSP); ok {
			s.onLSP(hdr, l)
		}
	case hdr.MsgType.IsCSN():
		if c, ok := packet.Layer(wire.LayerTypeCSNP).(*wire.CSNP); ok {
			s.onCSNP(hdr, c)
		}
	case hdr.MsgType.IsPSN():
		// This speaker never originates LSPs of its own beyond its
		// Hellos (route installation and LSP origination are Non-goal
		// territory), so an inbound PSNP carries nothing actionable;
		// it was already counted above for metrics.
	}
}

func (s *Speaker) onLANHello(hdr *wire.Header, l *wire.LANHello) {
	level := adj.TypeL1
	if hdr.MsgType == wire.MsgTypeL2LANHello {
		level = adj.TypeL2
	}
	s.adjs.IngestLANHello(hdr.SrcMAC, level, l, func(rec *adj.Record) []byte {
		return s.buildLANHello(level, rec)
	})
	s.refreshAdjacencyMetrics()
}

func (s *Speaker) onPPHello(hdr *wire.Header, p *wire.PPHello) {
	rxState := wire.StateUp
	hasThreeWay := false
	if tw, ok := p.TLVs.First(wire.TLVThreeWayHello); ok {
		if v, ok := tw.V.(wire.ThreeWayHelloTLV); ok {
			rxState = v.State
			hasThreeWay = true
		}
	}
	txState := adj.NextPPState(rxState, hasThreeWay)
	s.adjs.IngestPPHello(hdr.SrcMAC, p, txState, func(rec *adj.Record) []byte {
		return s.buildPPHello(hdr.SrcMAC, txState, rec)
	})
	s.refreshAdjacencyMetrics()
}

func (s *Speaker) onLSP(hdr *wire.Header, l *wire.LSP) {
	if l.ChecksumResult != wire.ChecksumOK {
		metrics.ChecksumFailures.Inc()
	}
	rec := s.lsdb.IngestLSP(l)

	if _, ok := s.adjs.HasPPAdjacency(hdr.SrcMAC); ok {
		entry := lsdb.AckEntry(rec)
		s.sendPSNP(hdr.SrcMAC, []wire.LSPEntry{entry})
	}
}

func (s *Speaker) onCSNP(hdr *wire.Header, c *wire.CSNP) {
	var entries []wire.LSPEntry
	for _, t := range c.TLVs[wire.TLVLSPEntries] {
		if v, ok := t.V.(wire.LSPEntriesTLV); ok {
			entries = append(entries, v.Entries...)
		}
	}
	need := s.lsdb.DiffCSNP(entries)
	if len(need) == 0 {
		return
	}
	metrics.PSNPRequestsIssued.Add(float64(len(need)))
	s.sendPSNP(hdr.SrcMAC, lsdb.BuildPSNPEntries(need))
}

// commonTLVs builds the TLV set every originated Hello carries, per
// spec.md §4.5: an optional Authentication TLV, the configured protocols,
// this speaker's sole area address, its interface addresses, and the
// routing-topology announcement.
func (s *Speaker) commonTLVs() []wire.TLV {
	var out []wire.TLV
	if auth, ok := authTLV(s.cfg.CleartextPassword); ok {
		out = append(out, auth)
	}

	var protos []wire.NLPID
	if len(s.cfg.IPv4Addrs) > 0 {
		protos = append(protos, wire.NLPIDIP)
	}
	if len(s.cfg.IPv6Addrs) > 0 {
		protos = append(protos, wire.NLPIDIPv6)
	}
	out = append(out, mustTLV(wire.TLVProtoSupported, wire.ProtoSupportedTLV{Protocols: protos}))
	out = append(out, mustTLV(wire.TLVAreaAddress, wire.AreaAddressTLV{Areas: [][]byte{s.cfg.AreaAddress}}))

	if len(s.cfg.IPv4Addrs) > 0 {
		out = append(out, mustTLV(wire.TLVIPIfAddr, wire.IPIfAddrTLV{Addrs: s.cfg.IPv4Addrs}))
	}
	if len(s.cfg.IPv6Addrs) > 0 {
		out = append(out, mustTLV(wire.TLVIPv6IfAddr, wire.IPv6IfAddrTLV{Addrs: s.cfg.IPv6Addrs}))
	}

	out = append(out, mustTLV(wire.TLVMultipleTopos, wire.MultipleTopologiesTLV{
		Entries: []wire.MTEntry{
			{MTID: uint16(wire.MTIDIPv4Unicast)},
			{MTID: uint16(wire.MTIDIPv6Unicast)},
		},
	}))
	return out
}

// mustTLV encodes v as TLV t, discarding the error: every value
// constructed above from configuration-sized data is well within
// MaxTLVValueLen, so the only failure mode EncodeTLV has is an undefined
// type, which can't happen for these fixed, recognized kinds.
func mustTLV(t wire.TLVType, v interface{}) wire.TLV {
	raw, err := wire.EncodeTLV(t, v)
	if err != nil {
		return wire.TLV{Type: t, V: v}
	}
	return wire.TLV{Type: t, Raw: raw[2:], V: v}
}

// buildLANHello renders the cached outbound Hello for a LAN adjacency,
// per spec.md §4.5: destination is the level's multicast MAC, circuit
// type is always L1+L2, priority is always zero, and the IIHIISNeighbor
// TLV lists every peer MAC currently seen at this level.
func (s *Speaker) buildLANHello(level uint8, rec *adj.Record) []byte {
	dst, msgType := wire.AllL1ISs, wire.MsgTypeL1LANHello
	if level == adj.TypeL2 {
		dst, msgType = wire.AllL2ISs, wire.MsgTypeL2LANHello
	}

	tlvs := s.commonTLVs()
	tlvs = append(tlvs, mustTLV(wire.TLVIIHIISNeighbor, wire.IIHIISNeighborTLV{
		Neighbors: s.adjs.PeerMACsAtLevel(level),
	}))
	tlvBytes, err := wire.EncodeTLVList(tlvs)
	if err != nil {
		return nil
	}

	hello := &wire.LANHello{
		CircuitType: wire.CircuitL1L2,
		SrcID:       s.cfg.SysID,
		HoldTimer:   s.cfg.EffectiveHoldTimer(),
		Priority:    0,
		LANID:       s.cfg.LANID,
	}
	buf := gopacket.NewSerializeBuffer()
	buf.AppendBytes(len(tlvBytes))
	copy(buf.Bytes(), tlvBytes)
	if err := hello.SerializeTo(buf, gopacket.SerializeOptions{FixLengths: true}); err != nil {
		return nil
	}

	frame := s.buildFrame(dst, msgType, buf.Bytes())
	return wire.PadTo(frame, wire.MACPktLen)
}

// buildPPHello renders the cached outbound Hello for a point-to-point
// adjacency: destination is the peer's own MAC and a ThreeWayHello TLV
// carries the computed tx state, per spec.md §4.5.
func (s *Speaker) buildPPHello(peerMAC [6]byte, txState wire.AdjState, rec *adj.Record) []byte {
	tlvs := s.commonTLVs()
	tlvs = append(tlvs, mustTLV(wire.TLVThreeWayHello, wire.ThreeWayHelloTLV{State: txState}))
	tlvBytes, err := wire.EncodeTLVList(tlvs)
	if err != nil {
		return nil
	}

	hello := &wire.PPHello{
		CircuitType: wire.CircuitL1L2,
		SrcID:       s.cfg.SysID,
		HoldTimer:   s.cfg.EffectiveHoldTimer(),
	}
	buf := gopacket.NewSerializeBuffer()
	buf.AppendBytes(len(tlvBytes))
	copy(buf.Bytes(), tlvBytes)
	if err := hello.SerializeTo(buf, gopacket.SerializeOptions{FixLengths: true}); err != nil {
		return nil
	}

	frame := s.buildFrame(peerMAC, wire.MsgTypePPHello, buf.Bytes())
	return wire.PadTo(frame, wire.MACPktLen)
}

// sendPSNP emits a PSNP per spec.md §4.6: header, optional Authentication
// TLV, then LSPEntries TLV(s) grouped 15 per TLV.
func (s *Speaker) sendPSNP(dst [6]byte, entries []wire.LSPEntry) {
	lspTLVBytes, err := wire.EncodeLSPEntriesGrouped(entries)
	if err != nil {
		return
	}

	var tlvBytes []byte
	if auth, ok := authTLV(s.cfg.CleartextPassword); ok {
		if authBytes, err := wire.EncodeTLVList([]wire.TLV{auth}); err == nil {
			tlvBytes = append(tlvBytes, authBytes...)
		}
	}
	tlvBytes = append(tlvBytes, lspTLVBytes...)

	psnp := &wire.PSNP{}
	copy(psnp.SrcID[:6], s.cfg.SysID[:])

	buf := gopacket.NewSerializeBuffer()
	buf.AppendBytes(len(tlvBytes))
	copy(buf.Bytes(), tlvBytes)
	if err := psnp.SerializeTo(buf, gopacket.SerializeOptions{FixLengths: true}); err != nil {
		return
	}

	frame := s.buildFrame(dst, wire.MsgTypeL1PSN, buf.Bytes())
	if err := s.sock.Send(frame); err == nil {
		metrics.PDUsSent.WithLabelValues(wire.MsgTypeL1PSN.String()).Inc()
	}
}

// buildFrame prepends the MAC+LLC+common header to body (a per-type
// header plus its TLVs, already serialized). Callers that need the
// Hello-only 1514-byte padding (spec.md §4.5) apply wire.PadTo to the
// result themselves — CSNP/PSNP frames are sent at their natural length.
func (s *Speaker) buildFrame(dst [6]byte, msgType wire.MsgType, body []byte) []byte {
	hdr := &wire.Header{
		DstMAC:     dst,
		SrcMAC:     s.sock.SrcMAC,
		NLPID:      wire.NLPIDISIS,
		HdrLen:     wire.ISISHdrLen,
		VerProtoID: 1,
		MsgType:    msgType,
		Version:    1,
	}
	buf := gopacket.NewSerializeBuffer()
	buf.AppendBytes(len(body))
	copy(buf.Bytes(), body)
	if err := hdr.SerializeTo(buf, gopacket.SerializeOptions{FixLengths: true}); err != nil {
		return nil
	}
	return buf.Bytes()
}
