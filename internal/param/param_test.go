package param

import (
	"encoding/binary"
	"strings"
	"testing"
)

func minimalParamELF(paramType uint32, ps4SDK, ps5SDK uint32) []byte {
	const ehdrSize = 0x40
	const phdrSize = 0x38
	const paramSize = 0x18
	phoff := uint64(ehdrSize)
	segOff := phoff + phdrSize

	buf := make([]byte, segOff+paramSize)
	buf[0], buf[1], buf[2], buf[3] = 0x7F, 'E', 'L', 'F'
	buf[4] = 2
	buf[5] = 1
	le := func(off int, v uint64, n int) {
		for i := 0; i < n; i++ {
			buf[off+i] = byte(v >> (8 * i))
		}
	}
	le(0x20, phoff, 8)
	le(0x36, phdrSize, 2)
	le(0x38, 1, 2)

	p := int(phoff)
	le(p+0, uint64(paramType), 4)
	le(p+8, segOff, 8)
	le(p+32, paramSize, 8)

	magic := uint32(0x4942524F)
	if paramType == 0x61000002 {
		magic = 0x3C13F4BF
	}
	binary.LittleEndian.PutUint32(buf[segOff+0x08:], magic)
	binary.LittleEndian.PutUint32(buf[segOff+0x10:], ps4SDK)
	binary.LittleEndian.PutUint32(buf[segOff+0x14:], ps5SDK)

	return buf
}

func TestPatchSDKVersionRewritesBothWords(t *testing.T) {
	elf := minimalParamELF(0x61000001, 0x06000001, 0x09508001)
	res, err := PatchSDKVersion(elf, "10.00")
	if err != nil {
		t.Fatalf("PatchSDKVersion: %v", err)
	}
	if !res.Patched {
		t.Fatalf("expected a patch, got %+v", res)
	}
	ps4 := binary.LittleEndian.Uint32(elf[0x40+0x38+0x10:])
	ps5 := binary.LittleEndian.Uint32(elf[0x40+0x38+0x14:])
	if ps4 != 0x0A000040 || ps5 != 0x12090001 {
		t.Fatalf("unexpected SDK words after patch: ps4=%x ps5=%x", ps4, ps5)
	}
}

func TestPatchSDKVersionIdempotentAtTarget(t *testing.T) {
	elf := minimalParamELF(0x61000001, 0x0A000040, 0x12090001)
	res, err := PatchSDKVersion(elf, "10.00")
	if err != nil {
		t.Fatalf("PatchSDKVersion: %v", err)
	}
	if res.Patched {
		t.Fatal("expected no-op when already at target version")
	}
}

func TestPatchSDKVersionSkipsZeroWords(t *testing.T) {
	elf := minimalParamELF(0x61000001, 0, 0)
	res, err := PatchSDKVersion(elf, "10.00")
	if err != nil {
		t.Fatalf("PatchSDKVersion: %v", err)
	}
	if res.Patched {
		t.Fatal("expected zero SDK words to be left untouched")
	}
}

func TestPatchSDKVersionUnknownFirmware(t *testing.T) {
	elf := minimalParamELF(0x61000001, 0x06000001, 0x09508001)
	_, err := PatchSDKVersion(elf, "99.99")
	if err == nil {
		t.Fatal("expected error for unknown target firmware")
	}
}

func TestPatchParamJSON(t *testing.T) {
	content := []byte(`{"requiredSystemSoftwareVersion":"0x01000000000000","sdkVersion":"0x01000000000000"}`)
	out, changed, err := PatchParamJSON(content, "6.00")
	if err != nil {
		t.Fatalf("PatchParamJSON: %v", err)
	}
	if !changed {
		t.Fatal("expected param.json to change")
	}
	if !strings.Contains(string(out), `0x0600000000000`) {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestPatchParamJSONNoMatchLeavesUnchanged(t *testing.T) {
	content := []byte(`{"unrelated":"field"}`)
	out, changed, err := PatchParamJSON(content, "6.00")
	if err != nil {
		t.Fatalf("PatchParamJSON: %v", err)
	}
	if changed {
		t.Fatal("expected no change for content with no matching fields")
	}
	if string(out) != string(content) {
		t.Fatal("content should be unchanged")
	}
}

func TestPatchParamSFOFindsAndRewritesCandidate(t *testing.T) {
	data := make([]byte, 64)
	// Place a plausible old system-version word "1.00.0.0" in the back half.
	binary.LittleEndian.PutUint32(data[40:], 0x01000000)

	out, changed, err := PatchParamSFO(data, "6.00")
	if err != nil {
		t.Fatalf("PatchParamSFO: %v", err)
	}
	if !changed {
		t.Fatal("expected SFO candidate to be patched")
	}
	got := binary.LittleEndian.Uint32(out[40:])
	if got != 0x06000000 {
		t.Fatalf("unexpected SYSTEM_VER word: %x", got)
	}
}

func TestPatchParamSFONoCandidateFound(t *testing.T) {
	data := make([]byte, 64)
	for i := range data {
		data[i] = 0xAB
	}
	_, changed, err := PatchParamSFO(data, "6.00")
	if err != nil {
		t.Fatalf("PatchParamSFO: %v", err)
	}
	if changed {
		t.Fatal("expected no change when no candidate pattern exists")
	}
}
