package adj

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-isis/isisd/pkg/wire"
)

func noopBuild(*Record) []byte { return []byte("hello") }

func TestIngestLANHelloCreatesThenRefreshes(t *testing.T) {
	table := Table{}
	mac := [6]byte{1, 2, 3, 4, 5, 6}
	hello := &wire.LANHello{SrcID: [6]byte{9, 9, 9, 9, 9, 9}, HoldTimer: 10, LANID: [7]byte{9, 9, 9, 9, 9, 9, 0}}

	rec := table.IngestLANHello(mac, TypeL1, hello, noopBuild)
	require.Equal(t, wire.StateInitializing, rec.State)
	require.True(t, rec.HasLANID)

	rec2 := table.IngestLANHello(mac, TypeL1, hello, noopBuild)
	assert.Same(t, rec, rec2)
	assert.Equal(t, wire.StateUp, rec2.State)
	assert.Equal(t, time.Duration(0), rec2.NextRetransmit)
	assert.Equal(t, time.Duration(0), rec2.SinceRefresh)
}

func TestNextPPStateTable(t *testing.T) {
	cases := []struct {
		rx   wire.AdjState
		want wire.AdjState
	}{
		{wire.StateDown, wire.StateInitializing},
		{wire.StateInitializing, wire.StateUp},
		{wire.StateUp, wire.StateUp},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, NextPPState(c.rx, true))
	}
	assert.Equal(t, wire.StateUp, NextPPState(wire.StateDown, false))
}

func TestIngestPPHelloThreeWayHandshake(t *testing.T) {
	table := Table{}
	mac := [6]byte{1, 2, 3, 4, 5, 6}
	hello := &wire.PPHello{SrcID: [6]byte{9, 9, 9, 9, 9, 9}, HoldTimer: 10, LocalCircuitID: 1}

	// The announced state tracks whatever txState the caller computed via
	// NextPPState, not an internal first-sight/refresh guess.
	rec := table.IngestPPHello(mac, hello, wire.StateInitializing, noopBuild)
	assert.Equal(t, wire.StateInitializing, rec.State)

	rec = table.IngestPPHello(mac, hello, wire.StateUp, noopBuild)
	assert.Equal(t, wire.StateUp, rec.State)
}

func TestAdvanceAndExpireRetransmitsBeforeHoldtimerLapses(t *testing.T) {
	table := Table{}
	mac := [6]byte{1, 2, 3, 4, 5, 6}
	hello := &wire.LANHello{SrcID: mac, HoldTimer: 10}
	table.IngestLANHello(mac, TypeL1, hello, noopBuild)

	due := table.AdvanceAndExpire(7 * time.Second)
	require.Len(t, due, 1, "7s elapsed against a 10s holdtimer and 3s retx threshold must trigger exactly one retransmit")

	rec, ok := table[Key{PeerMAC: mac, Type: TypeL1}]
	require.True(t, ok, "adjacency must still be present before retransmit fires")
	rec.ResetRetransmit()
	assert.Equal(t, 10*time.Second, rec.NextRetransmit)
}

func TestAdvanceAndExpireRemovesLapsedAdjacency(t *testing.T) {
	table := Table{}
	mac := [6]byte{1, 2, 3, 4, 5, 6}
	hello := &wire.LANHello{SrcID: mac, HoldTimer: 10}
	table.IngestLANHello(mac, TypeL1, hello, noopBuild)

	table.AdvanceAndExpire(10 * time.Second)
	_, ok := table[Key{PeerMAC: mac, Type: TypeL1}]
	assert.False(t, ok, "an adjacency silent for its full holdtimer must be removed")
}

func TestAdvanceAndExpireRefreshResetsBothCountdowns(t *testing.T) {
	table := Table{}
	mac := [6]byte{1, 2, 3, 4, 5, 6}
	hello := &wire.LANHello{SrcID: mac, HoldTimer: 10}
	table.IngestLANHello(mac, TypeL1, hello, noopBuild)

	table.AdvanceAndExpire(8 * time.Second)
	table.IngestLANHello(mac, TypeL1, hello, noopBuild)

	rec := table[Key{PeerMAC: mac, Type: TypeL1}]
	assert.Equal(t, time.Duration(0), rec.SinceRefresh, "a refreshing Hello must reset the holdtimer-expiry clock")

	table.AdvanceAndExpire(8 * time.Second)
	_, ok := table[Key{PeerMAC: mac, Type: TypeL1}]
	assert.True(t, ok, "the refresh should have prevented expiry at the 16s mark")
}

func TestHasPPAdjacencyAndPeerMACsAtLevel(t *testing.T) {
	table := Table{}
	mac1 := [6]byte{1, 1, 1, 1, 1, 1}
	mac2 := [6]byte{2, 2, 2, 2, 2, 2}
	table.IngestLANHello(mac1, TypeL1, &wire.LANHello{SrcID: mac1, HoldTimer: 10}, noopBuild)
	table.IngestLANHello(mac2, TypeL2, &wire.LANHello{SrcID: mac2, HoldTimer: 10}, noopBuild)

	_, ok := table.HasPPAdjacency(mac1)
	assert.False(t, ok)

	table.IngestPPHello(mac1, &wire.PPHello{SrcID: mac1, HoldTimer: 10}, wire.StateUp, noopBuild)
	_, ok = table.HasPPAdjacency(mac1)
	assert.True(t, ok)

	l1 := table.PeerMACsAtLevel(TypeL1)
	assert.ElementsMatch(t, [][6]byte{mac1}, l1)
}
