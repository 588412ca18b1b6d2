// Package stub rewrites PLT slots in a raw ELF so that calls to symbols
// missing on a target firmware resolve to an inert stub instead of
// crashing the loader: a no-op, a zero return, or an error return,
// chosen per function by the firmware knowledge base.
package stub

import (
	"encoding/binary"

	"github.com/zboralski/ps5kitchen/internal/backporterr"
	"github.com/zboralski/ps5kitchen/internal/elfraw"
	"github.com/zboralski/ps5kitchen/internal/nid"
)

const stageName = "stub"

// GOTMap maps a GOT virtual address to the file offset of the 16-byte
// PLT slot that jumps through it.
type GOTMap map[uint64]uint64

// BuildGOTMap scans every executable segment for `FF 25 disp32` (a
// RIP-relative indirect jump through the GOT, the universal shape of a
// lazy-binding PLT stub on x86-64) and aarch64's `ADRP+LDR+BR` triad is
// out of scope here — aarch64 PLT slots are patched by address, not by
// pattern, since Capstone-grade disassembly is not needed to overwrite a
// fixed-size stub once its start is known from the relocation table.
// This function targets x86-64 binaries; for aarch64, callers should
// derive PLT slot offsets directly from a preceding PT_LOAD scan keyed by
// relocation order (PLTIndexMap).
func BuildGOTMap(f *elfraw.File) GOTMap {
	m := make(GOTMap)
	for _, seg := range f.TextSegments() {
		end := seg.FileOffset + seg.FileSize
		if end > uint64(len(f.Data)) {
			end = uint64(len(f.Data))
		}
		for off := seg.FileOffset; off+6 <= end; off++ {
			if f.Data[off] != 0xFF || f.Data[off+1] != 0x25 {
				continue
			}
			disp32 := int32(binary.LittleEndian.Uint32(f.Data[off+2:]))
			insnVA := seg.VAddr + (off - seg.FileOffset)
			target := insnVA + 6 + uint64(disp32)

			slotOff := off
			if rem := slotOff % slotSize; rem != 0 && rem <= 6 {
				slotOff -= rem
			}
			m[target] = slotOff
		}
	}
	return m
}

// PLTIndexMap maps a symbol's dynamic-symbol-table index to its
// associated PLT slot's 16-byte-aligned file offset, for architectures
// (or binaries) where the FF-25 byte scan in BuildGOTMap doesn't apply:
// the Nth JMPREL relocation corresponds to the Nth 16-byte PLT slot in
// program order, following the PLT layout both supported architectures
// use.
func PLTIndexMap(f *elfraw.File, pltBase uint64) map[uint32]uint64 {
	m := make(map[uint32]uint64, len(f.PLTRel))
	for i, r := range f.PLTRel {
		m[r.SymIdx] = pltBase + uint64(i)*slotSize
	}
	return m
}

// FindPLTEntry resolves the file offset of the PLT slot a symbol's
// relocation targets, via the GOT-address map built from the FF-25 scan.
func FindPLTEntry(f *elfraw.File, gotMap GOTMap, symIdx uint32) (uint64, bool) {
	rel, ok := f.SymbolToPLTRelocation()[symIdx]
	if !ok {
		return 0, false
	}
	off, ok := gotMap[rel.Offset]
	return off, ok
}

// StubbedFunc records one successfully rewritten PLT slot.
type StubbedFunc struct {
	Name       string
	ResolvedBy string // "db", "prefix", "suffix", or "unknown" classification source
	Mode       nid.StubMode
	FileOffset uint64
	// OriginalDisasm is a best-effort disassembly of the PLT slot bytes
	// before they were overwritten, recorded for every stubbed function
	// as a diagnostic trail.
	OriginalDisasm string
}

// SkippedFunc records a function whose classification forbade stubbing.
type SkippedFunc struct {
	Name string
	Risk nid.Risk
}

// Result is the outcome of a stubbing pass over one binary.
type Result struct {
	Stubbed         []StubbedFunc
	SkippedCritical []SkippedFunc
	NotFound        []string
}

// ApplyMissing rewrites the PLT slot for each missing symbol according
// to its stub mode classification. data is mutated in place. A symbol
// whose classification is StubSkip is recorded in SkippedCritical and
// left untouched — it is load-bearing and cannot be safely neutered.
// A symbol with no PLT entry (no relocation, or its GOT target is not in
// gotMap) is recorded in NotFound.
func ApplyMissing(data []byte, f *elfraw.File, db *nid.DB, gotMap GOTMap, missing []string) (Result, error) {
	var res Result

	symIdxByName := make(map[string]uint32)
	syms, err := f.Symbols()
	if err != nil {
		return res, err
	}
	for _, s := range syms {
		if s.Imported {
			symIdxByName[s.Name] = uint32(s.Index)
		}
	}

	for _, encodedName := range missing {
		parsed := elfraw.ParseImportName(encodedName)
		resolved, ok := db.ResolveNID(parsed.NID)
		name := encodedName
		source := "unknown"
		var cls nid.Classification
		if ok {
			name = resolved
			cls = db.ClassifyFunction(resolved)
			source = cls.Source
		} else {
			cls = nid.Classification{Risk: nid.RiskMedium, Stub: nid.StubRetZero, Source: "unknown"}
		}

		if cls.Stub == nid.StubSkip {
			res.SkippedCritical = append(res.SkippedCritical, SkippedFunc{Name: name, Risk: cls.Risk})
			continue
		}

		symIdx, ok := symIdxByName[encodedName]
		if !ok {
			res.NotFound = append(res.NotFound, name)
			continue
		}
		fileOff, ok := FindPLTEntry(f, gotMap, symIdx)
		if !ok {
			res.NotFound = append(res.NotFound, name)
			continue
		}

		palette, ok := paletteFor(uint16(f.Machine), cls.Stub)
		if !ok {
			return res, backporterr.New(backporterr.KindPolicyRefusal, stageName,
				"no stub palette for this architecture/mode combination")
		}
		if fileOff+slotSize > uint64(len(data)) {
			return res, backporterr.New(backporterr.KindMalformedInput, stageName, "PLT slot out of file bounds")
		}
		original := disassemble(f.Machine, data[fileOff:fileOff+slotSize])
		copy(data[fileOff:fileOff+slotSize], palette)

		res.Stubbed = append(res.Stubbed, StubbedFunc{
			Name: name, ResolvedBy: source, Mode: cls.Stub, FileOffset: fileOff,
			OriginalDisasm: original,
		})
	}

	return res, nil
}
