package selfcontainer

import (
	"bytes"
	"context"
	"errors"
	"testing"
)

func TestIsSelf(t *testing.T) {
	cases := []struct {
		name string
		data []byte
		want bool
	}{
		{"variant-a", append(MagicA[:], 0, 0, 0, 0), true},
		{"variant-b", append(MagicB[:], 0, 0, 0, 0), true},
		{"plain-elf", append(ElfMagic, 2, 1, 0, 0), false},
		{"too-short", []byte{0x4F, 0x15}, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := IsSelf(c.data); got != c.want {
				t.Fatalf("IsSelf(%x) = %v, want %v", c.data, got, c.want)
			}
		})
	}
}

func TestFindEmbeddedELF(t *testing.T) {
	data := append(append(MagicA[:], make([]byte, 12)...), ElfMagic...)
	off, found := FindEmbeddedELF(data)
	if !found || off != 16 {
		t.Fatalf("FindEmbeddedELF = (%d, %v), want (16, true)", off, found)
	}

	if _, found := FindEmbeddedELF(MagicA[:]); found {
		t.Fatal("expected no embedded ELF magic in bare SELF prefix")
	}
}

type stubDecrypter struct {
	path string
	err  error
}

func (d stubDecrypter) Decrypt(ctx context.Context, inputPath string) (string, error) {
	return d.path, d.err
}

func TestUnwrapOrPassthroughPlainElf(t *testing.T) {
	plain := append(ElfMagic, 2, 1, 0, 0)
	out, err := UnwrapOrPassthrough(context.Background(), "game.bin", plain, nil, nil)
	if err != nil {
		t.Fatalf("UnwrapOrPassthrough: %v", err)
	}
	if !bytes.Equal(out, plain) {
		t.Fatal("plain ELF input should pass through unchanged")
	}
}

func TestUnwrapOrPassthroughNoDecrypterErrors(t *testing.T) {
	self := append(append(MagicA[:], make([]byte, 12)...), ElfMagic...)
	_, err := UnwrapOrPassthrough(context.Background(), "game.bin", self, nil, nil)
	if err == nil {
		t.Fatal("expected error when SELF input has no decrypter configured")
	}
}

func TestUnwrapOrPassthroughDelegatesToDecrypter(t *testing.T) {
	self := append(append(MagicA[:], make([]byte, 12)...), ElfMagic...)
	want := append(ElfMagic, 2, 1, 0, 0)
	dec := stubDecrypter{path: "/tmp/decrypted.elf"}
	readFile := func(p string) ([]byte, error) {
		if p != "/tmp/decrypted.elf" {
			t.Fatalf("readFile called with %q", p)
		}
		return want, nil
	}
	out, err := UnwrapOrPassthrough(context.Background(), "game.bin", self, dec, readFile)
	if err != nil {
		t.Fatalf("UnwrapOrPassthrough: %v", err)
	}
	if !bytes.Equal(out, want) {
		t.Fatal("unwrapped bytes mismatch")
	}
}

func TestUnwrapOrPassthroughDecrypterFailure(t *testing.T) {
	self := append(append(MagicA[:], make([]byte, 12)...), ElfMagic...)
	dec := stubDecrypter{err: errors.New("boom")}
	_, err := UnwrapOrPassthrough(context.Background(), "game.bin", self, dec, nil)
	if err == nil {
		t.Fatal("expected error propagated from decrypter")
	}
}

// minimalELF builds a 64-bit little-endian ELF with a single PT_LOAD
// segment carrying payload, enough for Rewrap to exercise its full
// layout plan.
func minimalELF(payload []byte) []byte {
	const ehdrSize = 0x40
	const phdrSize = 0x38
	phoff := uint64(ehdrSize)
	segOff := phoff + phdrSize

	buf := make([]byte, segOff+uint64(len(payload)))
	buf[0], buf[1], buf[2], buf[3] = 0x7F, 'E', 'L', 'F'
	buf[4] = 2 // ELFCLASS64
	buf[5] = 1 // ELFDATA2LSB
	le := func(off int, v uint64, n int) {
		for i := 0; i < n; i++ {
			buf[off+i] = byte(v >> (8 * i))
		}
	}
	le(0x10, 2, 2)          // e_type
	le(0x12, 0x3E, 2)       // e_machine = x86-64
	le(0x14, 1, 4)          // e_version
	le(0x18, 0x1000, 8)     // e_entry
	le(0x20, phoff, 8)      // e_phoff
	le(0x28, 0, 8)          // e_shoff
	le(0x34, ehdrSize, 2)   // e_ehsize
	le(0x36, phdrSize, 2)   // e_phentsize
	le(0x38, 1, 2)          // e_phnum = 1
	le(0x3A, 0, 2)          // e_shentsize
	le(0x3C, 0, 2)          // e_shnum
	le(0x3E, 0, 2)          // e_shstrndx

	// Program header: PT_LOAD, R+X, covering the payload.
	p := int(phoff)
	le(p+0, 0x1, 4)                   // p_type = PT_LOAD
	le(p+4, 0x5, 4)                   // p_flags = R|X
	le(p+8, segOff, 8)                // p_offset
	le(p+16, 0x1000, 8)               // p_vaddr
	le(p+24, 0x1000, 8)               // p_paddr
	le(p+32, uint64(len(payload)), 8) // p_filesz
	le(p+40, uint64(len(payload)), 8) // p_memsz
	le(p+48, 0x1000, 8)               // p_align

	copy(buf[segOff:], payload)
	return buf
}

func TestRewrapStructural(t *testing.T) {
	payload := bytes.Repeat([]byte{0xAA}, 100)
	elf := minimalELF(payload)

	out, err := Rewrap(elf, RewrapOptions{})
	if err != nil {
		t.Fatalf("Rewrap: %v", err)
	}

	if !bytes.Equal(out[:4], MagicA[:]) {
		t.Fatalf("output does not start with fake-SELF magic A: %x", out[:4])
	}

	if c := bytes.Count(out, ElfMagic); c != 1 {
		t.Fatalf("embedded ELF magic appears %d times, want exactly 1", c)
	}

	if !bytes.Contains(out, payload) {
		t.Fatal("segment payload missing from rewrapped container")
	}
}

func TestRewrapNonELFInput(t *testing.T) {
	_, err := Rewrap([]byte("not an elf"), RewrapOptions{})
	if err == nil {
		t.Fatal("expected error rewrapping non-ELF input")
	}
}
