package lsdb

import (
	"testing"

	"github.com/go-isis/isisd/pkg/wire"
)

func testID(frag uint8) wire.LSPID {
	return wire.LSPID{SysID: [6]byte{1, 2, 3, 4, 5, 6}, Fragment: frag}
}

func TestIngestLSPInsertsAndRefreshes(t *testing.T) {
	db := DB{}
	lsp := &wire.LSP{ID: testID(0), Lifetime: 1200, SeqNum: 1, Checksum: 0xbeef}

	rec := db.IngestLSP(lsp)
	if rec.Placeholder {
		t.Fatal("freshly ingested record must not be a placeholder")
	}
	if rec.SeqNum != 1 || rec.Checksum != 0xbeef {
		t.Fatalf("got %+v", rec)
	}

	lsp.SeqNum = 2
	lsp.Checksum = 0xf00d
	rec = db.IngestLSP(lsp)
	if rec.SeqNum != 2 || rec.Checksum != 0xf00d {
		t.Fatalf("refresh did not update record: %+v", rec)
	}
	if len(db) != 1 {
		t.Fatalf("expected a single record, got %d", len(db))
	}
}

func TestDiffCSNPMissingRecordRequested(t *testing.T) {
	db := DB{}
	entries := []wire.LSPEntry{{ID: testID(0), SeqNum: 10, Checksum: 0xc}}

	need := db.DiffCSNP(entries)
	if len(need) != 1 || need[0] != testID(0) {
		t.Fatalf("expected the unknown ID requested, got %v", need)
	}
	rec, ok := db[testID(0).String()]
	if !ok || !rec.Placeholder {
		t.Fatalf("expected a placeholder record to be left behind, got %+v", rec)
	}
}

func TestDiffCSNPStrictlyNewerRequestedEqualOrOlderNot(t *testing.T) {
	db := DB{}
	db.IngestLSP(&wire.LSP{ID: testID(0), SeqNum: 8, Checksum: 0xaa})

	newer := []wire.LSPEntry{{ID: testID(0), SeqNum: 10, Checksum: 0xaa}}
	if need := db.DiffCSNP(newer); len(need) != 1 {
		t.Fatalf("strictly newer seq should be requested, got %v", need)
	}

	db.IngestLSP(&wire.LSP{ID: testID(0), SeqNum: 10, Checksum: 0xaa})
	equal := []wire.LSPEntry{{ID: testID(0), SeqNum: 10, Checksum: 0xaa}}
	if need := db.DiffCSNP(equal); len(need) != 0 {
		t.Fatalf("equal seq and checksum should not be requested, got %v", need)
	}

	older := []wire.LSPEntry{{ID: testID(0), SeqNum: 9, Checksum: 0xaa}}
	if need := db.DiffCSNP(older); len(need) != 0 {
		t.Fatalf("older seq should not be requested, got %v", need)
	}

	differingCksm := []wire.LSPEntry{{ID: testID(0), SeqNum: 10, Checksum: 0xbb}}
	if need := db.DiffCSNP(differingCksm); len(need) != 1 {
		t.Fatalf("differing checksum at same seq should be requested, got %v", need)
	}
}

func TestDiffCSNPPlaceholderAlwaysRequestedUntilRealIngest(t *testing.T) {
	db := DB{}
	first := []wire.LSPEntry{{ID: testID(0), SeqNum: 5, Checksum: 0x1}}
	db.DiffCSNP(first)

	second := db.DiffCSNP(first)
	if len(second) != 1 {
		t.Fatalf("a still-placeholder record must keep being requested, got %v", second)
	}

	db.IngestLSP(&wire.LSP{ID: testID(0), SeqNum: 5, Checksum: 0x1})
	third := db.DiffCSNP(first)
	if len(third) != 0 {
		t.Fatalf("once the real LSP is ingested the entry should settle, got %v", third)
	}
}

func TestBuildPSNPEntriesZeroFieldsForUnseenID(t *testing.T) {
	entries := BuildPSNPEntries([]wire.LSPID{testID(3)})
	if len(entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(entries))
	}
	e := entries[0]
	if e.ID != testID(3) || e.SeqNum != 0 || e.Checksum != 0 || e.RemainingLifetime != 0 {
		t.Fatalf("expected a zeroed (lifetime, seq, cksm) request entry, got %+v", e)
	}
}

func TestAckEntryReflectsStoredRecord(t *testing.T) {
	db := DB{}
	rec := db.IngestLSP(&wire.LSP{ID: testID(0), Lifetime: 600, SeqNum: 4, Checksum: 0x55})
	ack := AckEntry(rec)
	if ack.RemainingLifetime != 600 || ack.SeqNum != 4 || ack.Checksum != 0x55 || ack.ID != testID(0) {
		t.Fatalf("got %+v", ack)
	}
}
