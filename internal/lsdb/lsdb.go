// Package lsdb implements link-state database synchronization: recording
// received LSP summaries, diffing them against CSNP summaries, and
// generating the PSNP requests needed to fill gaps. Grounded on the
// Isis.LSP class and the CSNP/PSNP branches of processFsm in the original
// implementation.
package lsdb

import (
	"github.com/go-isis/isisd/pkg/wire"
)

// Record is one LSDB entry, keyed by its LSPID's canonical string form.
// Placeholder marks a record synthesized from a CSNP summary for an LSP
// this speaker has never actually received the body of, per
// SPEC_FULL.md §9's resolution of the placeholder-record open question:
// a zero-valued (lifetime, seq_no, cksm) record from an unknown CSNP
// entry must not be mistaken for a genuine seq-0 LSP.
type Record struct {
	ID          wire.LSPID
	Lifetime    uint16
	SeqNum      uint32
	Checksum    uint16
	Placeholder bool
}

// DB is the speaker's link-state database, owned exclusively by the event
// loop per spec.md §3.
type DB map[string]*Record

// IngestLSP applies spec.md §4.6 steps 2-3 on receipt of an LSP: look up
// the record by lsp_id_str and insert or refresh it with the PDU's
// (lifetime, seq_no, cksm), regardless of the PDU's checksum result —
// checksum failures already left the caller's TLVs empty, but the header
// fields are still trustworthy summary state.
func (db DB) IngestLSP(lsp *wire.LSP) *Record {
	key := lsp.ID.String()
	rec, ok := db[key]
	if !ok {
		rec = &Record{ID: lsp.ID}
		db[key] = rec
	}
	rec.Lifetime = lsp.Lifetime
	rec.SeqNum = lsp.SeqNum
	rec.Checksum = lsp.Checksum
	rec.Placeholder = false
	return rec
}

// observe records a CSNP/PSNP summary entry as a placeholder if the LSDB
// has no record for it yet, per spec.md §9 — used only to remember that
// this ID was mentioned, never to answer "do we have the real LSP".
func (db DB) observe(id wire.LSPID) {
	key := id.String()
	if _, ok := db[key]; !ok {
		db[key] = &Record{ID: id, Placeholder: true}
	}
}

// DiffCSNP applies spec.md §4.6's CSNP branch: for each summarized entry,
// if the local record is missing, a placeholder, has a strictly lower
// seq_no, or a differing checksum, the entry is added to the returned
// request list.
func (db DB) DiffCSNP(entries []wire.LSPEntry) []wire.LSPID {
	var need []wire.LSPID
	for _, e := range entries {
		key := e.ID.String()
		rec, ok := db[key]
		if !ok || rec.Placeholder || rec.SeqNum < e.SeqNum || rec.Checksum != e.Checksum {
			need = append(need, e.ID)
		}
		db.observe(e.ID)
	}
	return need
}

// BuildPSNPEntries renders want IDs as a 15-per-TLV-ready entry list for
// wire.EncodeLSPEntriesGrouped. Per spec.md §9's design note, a PSNP
// request entry for an ID this speaker has never seen carries
// (lifetime, seq_no, cksm) = (0, 0, 0) — the scenario table's
// "(0, id, 0, 0)" request entry.
func BuildPSNPEntries(want []wire.LSPID) []wire.LSPEntry {
	out := make([]wire.LSPEntry, len(want))
	for i, id := range want {
		out[i] = wire.LSPEntry{ID: id}
	}
	return out
}

// AckEntry builds the single-entry LSPEntries summary emitted as a PSNP
// acknowledgement when a PP adjacency exists with the LSP's sender, per
// spec.md §4.6 step 4.
func AckEntry(rec *Record) wire.LSPEntry {
	return wire.LSPEntry{
		RemainingLifetime: rec.Lifetime,
		ID:                rec.ID,
		SeqNum:            rec.SeqNum,
		Checksum:          rec.Checksum,
	}
}
