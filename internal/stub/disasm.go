package stub

import (
	"fmt"
	"strings"

	"golang.org/x/arch/arm64/arm64asm"
	"golang.org/x/arch/x86/x86asm"

	"github.com/zboralski/ps5kitchen/internal/elfraw"
)

// disassemble renders a best-effort textual disassembly of a PLT slot's
// bytes before it is overwritten, for the stubbing diagnostic trail. A
// slot that fails to decode cleanly (padding, a truncated tail
// instruction) falls back to a hex dump rather than erroring — this is
// a diagnostic aid, not something the stub pass depends on.
func disassemble(machine elfraw.Machine, code []byte) string {
	var lines []string
	switch machine {
	case elfraw.EM_X86_64:
		for off := 0; off < len(code); {
			inst, err := x86asm.Decode(code[off:], 64)
			if err != nil || inst.Len == 0 {
				lines = append(lines, fmt.Sprintf("%02x", code[off]))
				off++
				continue
			}
			lines = append(lines, x86asm.GNUSyntax(inst, 0, nil))
			off += inst.Len
		}
	case elfraw.EM_AARCH64:
		for off := 0; off+4 <= len(code); off += 4 {
			inst, err := arm64asm.Decode(code[off : off+4])
			if err != nil {
				lines = append(lines, fmt.Sprintf("%02x%02x%02x%02x", code[off], code[off+1], code[off+2], code[off+3]))
				continue
			}
			lines = append(lines, inst.String())
		}
	default:
		return fmt.Sprintf("% x", code)
	}
	return strings.Join(lines, "; ")
}
