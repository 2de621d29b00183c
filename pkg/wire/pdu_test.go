package wire

import (
	"testing"

	"github.com/google/gopacket"
)

func buildHeaderBytes(msgType MsgType) []byte {
	b := make([]byte, MACHdrLen+ISISHdrLen)
	copy(b[0:6], []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff})
	copy(b[6:12], []byte{0x02, 0x00, 0x00, 0x00, 0x00, 0x01})
	PutUint16(b[12:14], 0)
	b[14], b[15], b[16] = ISISLLCDSAP, ISISLLCSSAP, ISISLLCCtrl
	b[17] = byte(NLPIDISIS)
	b[18] = ISISHdrLen
	b[19] = 1 // version/proto id
	b[20] = 0 // resvd
	b[21] = byte(msgType)
	b[22] = 1 // version
	b[23] = 0
	b[24] = 0
	return b
}

func TestHeaderDecodeRejectsBadLLC(t *testing.T) {
	b := buildHeaderBytes(MsgTypeL1LANHello)
	b[14] = 0x00 // corrupt DSAP

	h := &Header{}
	err := h.DecodeFromBytes(b, gopacket.NilDecodeFeedback)
	if err == nil {
		t.Fatal("expected an LLC mismatch error")
	}
	f, ok := AsFault(err)
	if !ok || f.Kind != FaultLLC {
		t.Fatalf("got %v, want a FaultLLC", err)
	}
}

func TestHeaderDecodeDispatchesByMsgType(t *testing.T) {
	cases := map[MsgType]gopacket.LayerType{
		MsgTypeL1LANHello: LayerTypeLANHello,
		MsgTypePPHello:    LayerTypePPHello,
		MsgTypeL1LSP:      LayerTypeLSP,
		MsgTypeL1CSN:      LayerTypeCSNP,
		MsgTypeL1PSN:      LayerTypePSNP,
	}
	for msgType, want := range cases {
		h := &Header{}
		if err := h.DecodeFromBytes(buildHeaderBytes(msgType), gopacket.NilDecodeFeedback); err != nil {
			t.Fatalf("DecodeFromBytes(%v): %v", msgType, err)
		}
		if got := h.NextLayerType(); got != want {
			t.Fatalf("msgType %v: got next layer %v, want %v", msgType, got, want)
		}
	}
}

func TestLANHelloRoundTrip(t *testing.T) {
	want := &LANHello{
		CircuitType: CircuitL1L2,
		SrcID:       [6]byte{1, 2, 3, 4, 5, 6},
		HoldTimer:   30,
		Priority:    64,
		LANID:       [7]byte{1, 2, 3, 4, 5, 6, 0},
	}

	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true}
	if err := want.SerializeTo(buf, opts); err != nil {
		t.Fatalf("SerializeTo: %v", err)
	}

	got := &LANHello{}
	if err := got.DecodeFromBytes(buf.Bytes(), gopacket.NilDecodeFeedback); err != nil {
		t.Fatalf("DecodeFromBytes: %v", err)
	}
	if got.CircuitType != want.CircuitType || got.SrcID != want.SrcID ||
		got.HoldTimer != want.HoldTimer || got.Priority != want.Priority || got.LANID != want.LANID {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, want)
	}
	if int(got.PDULen) != helloHdrLen {
		t.Fatalf("got PDULen %d, want %d (no TLV payload)", got.PDULen, helloHdrLen)
	}
}

func TestLSPRoundTripWithChecksum(t *testing.T) {
	want := &LSP{
		Lifetime: 1200,
		ID:       LSPID{SysID: [6]byte{1, 2, 3, 4, 5, 6}, Fragment: 0},
		SeqNum:   5,
		Bits:     LSPBits{ISType: CircuitL2},
	}

	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
	if err := want.SerializeTo(buf, opts); err != nil {
		t.Fatalf("SerializeTo: %v", err)
	}

	got := &LSP{}
	if err := got.DecodeFromBytes(buf.Bytes(), gopacket.NilDecodeFeedback); err != nil {
		t.Fatalf("DecodeFromBytes: %v", err)
	}
	if got.ChecksumResult != ChecksumOK {
		t.Fatalf("got checksum result %v, want ChecksumOK", got.ChecksumResult)
	}
	if got.ID != want.ID || got.SeqNum != want.SeqNum || got.Lifetime != want.Lifetime {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, want)
	}
}

func TestLSPCorruptedBodyChecksumIncorrect(t *testing.T) {
	want := &LSP{Lifetime: 1200, ID: LSPID{SysID: [6]byte{1, 2, 3, 4, 5, 6}}, SeqNum: 1}
	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
	if err := want.SerializeTo(buf, opts); err != nil {
		t.Fatalf("SerializeTo: %v", err)
	}

	raw := append([]byte(nil), buf.Bytes()...)
	raw[lspHdrLen-1] ^= 0x01 // corrupt the bits octet, inside the checksummed region

	got := &LSP{}
	if err := got.DecodeFromBytes(raw, gopacket.NilDecodeFeedback); err != nil {
		t.Fatalf("DecodeFromBytes: %v", err)
	}
	if got.ChecksumResult != ChecksumIncorrect {
		t.Fatalf("got checksum result %v, want ChecksumIncorrect", got.ChecksumResult)
	}
	if len(got.TLVs) != 0 {
		t.Fatalf("TLVs should be empty when checksum fails to validate, got %v", got.TLVs)
	}
}
