package isis

import (
	"io"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-isis/isisd/internal/adj"
	"github.com/go-isis/isisd/internal/link"
	"github.com/go-isis/isisd/internal/lsdb"
	"github.com/go-isis/isisd/internal/metrics"
	"github.com/go-isis/isisd/pkg/wire"
)

func testSpeaker() *Speaker {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return &Speaker{
		cfg: &Config{
			Device:      "test0",
			AreaAddress: []byte{0x49, 0x00, 0x01},
			SysID:       [6]byte{0xaa, 0xaa, 0xaa, 0xaa, 0xaa, 0xaa},
			HoldTimer:   10,
		},
		sock:   &link.Socket{SrcMAC: [6]byte{0xbb, 0xbb, 0xbb, 0xbb, 0xbb, 0xbb}},
		adjs:   adj.Table{},
		lsdb:   lsdb.DB{},
		sink:   NullSink{},
		logger: logger,
		done:   make(chan struct{}),
	}
}

func TestOnLANHelloCreatesThenRefreshesAdjacency(t *testing.T) {
	s := testSpeaker()
	peer := [6]byte{1, 2, 3, 4, 5, 6}
	hdr := &wire.Header{SrcMAC: peer, MsgType: wire.MsgTypeL1LANHello}
	hello := &wire.LANHello{SrcID: [6]byte{9, 9, 9, 9, 9, 9}, HoldTimer: 10, LANID: [7]byte{9, 9, 9, 9, 9, 9, 0}}

	s.onLANHello(hdr, hello)
	rec, ok := s.adjs[adj.Key{PeerMAC: peer, Type: adj.TypeL1}]
	require.True(t, ok)
	assert.Equal(t, wire.StateInitializing, rec.State)

	s.onLANHello(hdr, hello)
	assert.Equal(t, wire.StateUp, rec.State)
}

func TestOnPPHelloThreeWayHandshake(t *testing.T) {
	s := testSpeaker()
	peer := [6]byte{1, 2, 3, 4, 5, 6}
	hdr := &wire.Header{SrcMAC: peer, MsgType: wire.MsgTypePPHello}

	tlvs := wire.TLVSet{
		wire.TLVThreeWayHello: []wire.TLV{{Type: wire.TLVThreeWayHello, V: wire.ThreeWayHelloTLV{State: wire.StateDown}}},
	}
	hello := &wire.PPHello{SrcID: [6]byte{9, 9, 9, 9, 9, 9}, HoldTimer: 10, TLVs: tlvs}

	s.onPPHello(hdr, hello)
	rec, ok := s.adjs[adj.Key{PeerMAC: peer, Type: adj.TypePP}]
	require.True(t, ok)
	assert.Equal(t, wire.StateInitializing, rec.State, "peer reporting DOWN must announce INITIALIZING")

	tlvs[wire.TLVThreeWayHello][0].V = wire.ThreeWayHelloTLV{State: wire.StateInitializing}
	s.onPPHello(hdr, hello)
	assert.Equal(t, wire.StateUp, rec.State, "peer reporting INITIALIZING must announce UP")
}

func TestOnLSPRefreshesRecordWithAndWithoutPPAdjacency(t *testing.T) {
	s := testSpeaker()
	peer := [6]byte{1, 2, 3, 4, 5, 6}
	hdr := &wire.Header{SrcMAC: peer, MsgType: wire.MsgTypeL1LSP}
	lsp := &wire.LSP{
		ID:             wire.LSPID{SysID: [6]byte{9, 9, 9, 9, 9, 9}},
		Lifetime:       1200,
		SeqNum:         1,
		Checksum:       0x1234,
		ChecksumResult: wire.ChecksumOK,
	}

	s.onLSP(hdr, lsp)
	rec, ok := s.lsdb[lsp.ID.String()]
	require.True(t, ok)
	assert.False(t, rec.Placeholder)
	assert.Equal(t, uint32(1), rec.SeqNum)

	s.adjs.IngestPPHello(peer, &wire.PPHello{SrcID: lsp.ID.SysID, HoldTimer: 10}, wire.StateUp, func(*adj.Record) []byte { return nil })

	lsp.SeqNum = 2
	s.onLSP(hdr, lsp)
	assert.Equal(t, uint32(2), rec.SeqNum, "a second LSP with a PP adjacency present must still refresh the record")
}

func TestOnLSPChecksumFailureStillUpdatesSummary(t *testing.T) {
	s := testSpeaker()
	hdr := &wire.Header{SrcMAC: [6]byte{1, 2, 3, 4, 5, 6}, MsgType: wire.MsgTypeL1LSP}
	lsp := &wire.LSP{
		ID:             wire.LSPID{SysID: [6]byte{9, 9, 9, 9, 9, 9}},
		Lifetime:       1200,
		SeqNum:         1,
		Checksum:       0xffff,
		ChecksumResult: wire.ChecksumIncorrect,
	}

	before := testutil.ToFloat64(metrics.ChecksumFailures)
	s.onLSP(hdr, lsp)
	after := testutil.ToFloat64(metrics.ChecksumFailures)
	assert.Equal(t, before+1, after, "a failing checksum must still be counted")

	rec, ok := s.lsdb[lsp.ID.String()]
	require.True(t, ok, "the header summary is trustworthy even when the checksum fails")
	assert.Equal(t, uint32(1), rec.SeqNum)
}

func TestOnCSNPGapRequestsZeroValuedEntry(t *testing.T) {
	s := testSpeaker()
	hdr := &wire.Header{SrcMAC: [6]byte{1, 2, 3, 4, 5, 6}, MsgType: wire.MsgTypeL1CSN}

	unseen := wire.LSPID{SysID: [6]byte{7, 7, 7, 7, 7, 7}}
	csnp := &wire.CSNP{
		TLVs: wire.TLVSet{
			wire.TLVLSPEntries: []wire.TLV{{
				Type: wire.TLVLSPEntries,
				V:    wire.LSPEntriesTLV{Entries: []wire.LSPEntry{{ID: unseen, SeqNum: 5, Checksum: 0xaaaa}}},
			}},
		},
	}

	before := testutil.ToFloat64(metrics.PSNPRequestsIssued)
	s.onCSNP(hdr, csnp)
	after := testutil.ToFloat64(metrics.PSNPRequestsIssued)
	assert.Equal(t, before+1, after, "a CSNP entry this speaker has never seen must be requested exactly once")

	rec, ok := s.lsdb[unseen.String()]
	require.True(t, ok, "an unmet CSNP entry must still be remembered as a placeholder")
	assert.True(t, rec.Placeholder)
}

func TestOnCSNPNoGapIssuesNoRequest(t *testing.T) {
	s := testSpeaker()
	hdr := &wire.Header{SrcMAC: [6]byte{1, 2, 3, 4, 5, 6}, MsgType: wire.MsgTypeL1CSN}
	id := wire.LSPID{SysID: [6]byte{7, 7, 7, 7, 7, 7}}
	s.lsdb[id.String()] = &lsdb.Record{ID: id, SeqNum: 5, Checksum: 0xaaaa}

	csnp := &wire.CSNP{
		TLVs: wire.TLVSet{
			wire.TLVLSPEntries: []wire.TLV{{
				Type: wire.TLVLSPEntries,
				V:    wire.LSPEntriesTLV{Entries: []wire.LSPEntry{{ID: id, SeqNum: 5, Checksum: 0xaaaa}}},
			}},
		},
	}

	before := testutil.ToFloat64(metrics.PSNPRequestsIssued)
	s.onCSNP(hdr, csnp)
	after := testutil.ToFloat64(metrics.PSNPRequestsIssued)
	assert.Equal(t, before, after, "a CSNP entry already matching the local record must not be requested")
}

func TestAdvanceAndRetransmitResetsDueAdjacencyCountdown(t *testing.T) {
	s := testSpeaker()
	peer := [6]byte{1, 2, 3, 4, 5, 6}
	s.adjs.IngestLANHello(peer, adj.TypeL1, &wire.LANHello{SrcID: peer, HoldTimer: 10}, func(*adj.Record) []byte {
		return []byte("cached-hello")
	})

	s.advanceAndRetransmit(7 * time.Second)

	rec := s.adjs[adj.Key{PeerMAC: peer, Type: adj.TypeL1}]
	require.NotNil(t, rec)
	assert.Equal(t, 10*time.Second, rec.NextRetransmit, "a retransmit fire must reset the countdown to the full holdtimer")
}
