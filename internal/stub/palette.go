package stub

import "github.com/zboralski/ps5kitchen/internal/nid"

// Each PLT slot this package overwrites is exactly 16 bytes, matching
// the stride a compiler-emitted lazy-binding PLT stub occupies on both
// architectures this tool targets.
const slotSize = 16

// x86-64 palettes. nop is 16 NOPs; ret_zero zeroes eax then returns;
// ret_error returns -1 in eax (0xFFFFFFFF; the 32-bit mov zero-extends
// into rax).
var x64Palettes = map[nid.StubMode][]byte{
	nid.StubNop: {
		0x90, 0x90, 0x90, 0x90, 0x90, 0x90, 0x90, 0x90,
		0x90, 0x90, 0x90, 0x90, 0x90, 0x90, 0x90, 0x90,
	},
	nid.StubRetZero: {
		0x31, 0xc0, 0xc3, // xor eax, eax; ret
		0x90, 0x90, 0x90, 0x90, 0x90, 0x90, 0x90, 0x90, 0x90, 0x90, 0x90,
	},
	nid.StubRetError: {
		0xb8, 0xff, 0xff, 0xff, 0xff, 0xc3, // mov eax, -1; ret
		0x90, 0x90, 0x90, 0x90, 0x90, 0x90, 0x90, 0x90, 0x90, 0x90,
	},
}

// aarch64 palettes. nop is 4 NOP instructions; ret_zero moves 0 into x0
// then returns; ret_error moves -1 into w0 then returns.
var arm64Palettes = map[nid.StubMode][]byte{
	nid.StubNop: {
		0x1f, 0x20, 0x03, 0xd5,
		0x1f, 0x20, 0x03, 0xd5,
		0x1f, 0x20, 0x03, 0xd5,
		0x1f, 0x20, 0x03, 0xd5,
	},
	nid.StubRetZero: {
		0xe0, 0x03, 0x1f, 0xaa, // mov x0, xzr
		0xc0, 0x03, 0x5f, 0xd6, // ret
		0x1f, 0x20, 0x03, 0xd5, // nop
		0x1f, 0x20, 0x03, 0xd5, // nop
	},
	nid.StubRetError: {
		0xe0, 0x03, 0x1f, 0x92, // mov x0, #-1
		0xc0, 0x03, 0x5f, 0xd6, // ret
		0x1f, 0x20, 0x03, 0xd5, // nop
		0x1f, 0x20, 0x03, 0xd5, // nop
	},
}

// paletteFor returns the 16-byte stub body for an architecture and mode.
// StubSkip has no palette: callers must never reach here for it.
func paletteFor(machine uint16, mode nid.StubMode) ([]byte, bool) {
	const emX8664 = 0x3E
	const emAarch64 = 0xB7
	var table map[nid.StubMode][]byte
	switch machine {
	case emX8664:
		table = x64Palettes
	case emAarch64:
		table = arm64Palettes
	default:
		return nil, false
	}
	p, ok := table[mode]
	if !ok || len(p) != slotSize {
		return nil, false
	}
	return p, true
}
