package stub

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/zboralski/ps5kitchen/internal/elfraw"
	"github.com/zboralski/ps5kitchen/internal/nid"
)

func TestPaletteSizes(t *testing.T) {
	for mode, p := range x64Palettes {
		if len(p) != slotSize {
			t.Fatalf("x64 palette %s is %d bytes, want %d", mode, len(p), slotSize)
		}
	}
	for mode, p := range arm64Palettes {
		if len(p) != slotSize {
			t.Fatalf("arm64 palette %s is %d bytes, want %d", mode, len(p), slotSize)
		}
	}
}

func TestPaletteForUnknownArch(t *testing.T) {
	if _, ok := paletteFor(0x1234, nid.StubNop); ok {
		t.Fatal("expected no palette for unknown machine")
	}
}

func TestBuildGOTMapFindsFF25(t *testing.T) {
	// Build a fake executable segment: a JMP [rip+disp32] at file offset 0x1000,
	// segment base vaddr 0x1000, file offset 0x1000 (aligned to slot size).
	seg := elfraw.Segment{
		Type:       elfraw.PT_LOAD,
		Flags:      elfraw.PF_X | elfraw.PF_R,
		FileOffset: 0x1000,
		VAddr:      0x1000,
		FileSize:   0x20,
	}
	data := make([]byte, 0x1030)
	insnOff := 0x1000
	data[insnOff] = 0xFF
	data[insnOff+1] = 0x25
	disp32 := int32(0x100)
	binary.LittleEndian.PutUint32(data[insnOff+2:], uint32(disp32))

	f := &elfraw.File{Data: data, Segments: []elfraw.Segment{seg}}
	gotMap := BuildGOTMap(f)

	wantTarget := seg.VAddr + 6 + uint64(disp32)
	slotOff, ok := gotMap[wantTarget]
	if !ok {
		t.Fatalf("expected GOT target 0x%x to be mapped", wantTarget)
	}
	if slotOff != uint64(insnOff) {
		t.Fatalf("slot offset = 0x%x, want 0x%x", slotOff, insnOff)
	}
}

func TestApplyMissingSkipsCriticalFunction(t *testing.T) {
	db := nid.NewDB()
	encoded := nid.Calc("sceKernelLoadStartModule") + "#libkernel#libkernel"

	f := &elfraw.File{
		Machine: 0x3E,
		SymTab: []elfraw.Symbol{
			{Name: encoded, Imported: true, SectIdx: 0, Index: 1},
		},
	}
	data := make([]byte, 64)

	res, err := ApplyMissing(data, f, db, GOTMap{}, []string{encoded})
	if err != nil {
		t.Fatalf("ApplyMissing: %v", err)
	}
	if len(res.SkippedCritical) != 1 {
		t.Fatalf("expected critical function to be skipped, got %+v", res)
	}
	if res.SkippedCritical[0].Name != "sceKernelLoadStartModule" {
		t.Fatalf("unexpected skipped function: %+v", res.SkippedCritical[0])
	}
}

func TestApplyMissingStubsRetZeroFunction(t *testing.T) {
	db := nid.NewDB()
	encoded := nid.Calc("sceKernelGetDirectMemorySize") + "#libkernel#libkernel"

	f := &elfraw.File{
		Machine: 0x3E,
		Segments: []elfraw.Segment{{
			Type: elfraw.PT_LOAD, Flags: elfraw.PF_X | elfraw.PF_R,
			FileOffset: 0x1000, VAddr: 0x1000, FileSize: 0x20,
		}},
		SymTab: []elfraw.Symbol{
			{Name: encoded, Imported: true, SectIdx: 0, Index: 1},
		},
		PLTRel: []elfraw.PLTRelocation{
			{Offset: 0x2000, SymIdx: 1},
		},
	}
	data := make([]byte, 0x1030)
	insnOff := 0x1000
	data[insnOff] = 0xFF
	data[insnOff+1] = 0x25
	disp32 := int32(0x2000 - (int64(f.Segments[0].VAddr) + 6))
	binary.LittleEndian.PutUint32(data[insnOff+2:], uint32(disp32))

	gotMap := BuildGOTMap(f)

	res, err := ApplyMissing(data, f, db, gotMap, []string{encoded})
	if err != nil {
		t.Fatalf("ApplyMissing: %v", err)
	}
	if len(res.Stubbed) != 1 {
		t.Fatalf("expected 1 stubbed function, got %+v", res)
	}
	if !bytes.Equal(data[insnOff:insnOff+slotSize], x64Palettes[nid.StubRetZero]) {
		t.Fatalf("PLT slot not overwritten with ret_zero palette")
	}
}

func TestApplyMissingNotFoundWhenNoPLTEntry(t *testing.T) {
	db := nid.NewDB()
	encoded := nid.Calc("sceKernelGetDirectMemorySize") + "#libkernel#libkernel"
	f := &elfraw.File{
		Machine: 0x3E,
		SymTab: []elfraw.Symbol{
			{Name: encoded, Imported: true, SectIdx: 0, Index: 1},
		},
	}
	data := make([]byte, 64)

	res, err := ApplyMissing(data, f, db, GOTMap{}, []string{encoded})
	if err != nil {
		t.Fatalf("ApplyMissing: %v", err)
	}
	if len(res.NotFound) != 1 {
		t.Fatalf("expected 1 not-found function, got %+v", res)
	}
}
