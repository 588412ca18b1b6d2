// Package selfcontainer detects, unwraps, and re-wraps the signed-ELF
// container PS5 binaries ship in. It never verifies or produces a real
// signature; the fake-SELF containers it builds are accepted only by
// firmware that has already disabled signature checks.
package selfcontainer

import (
	"bytes"
	"context"

	"github.com/zboralski/ps5kitchen/internal/backporterr"
)

const stageName = "selfcontainer"

// The two known SELF magic values. A file beginning with neither is a
// plain ELF.
var (
	MagicA = [4]byte{0x4F, 0x15, 0x3D, 0x1D}
	MagicB = [4]byte{0x54, 0x14, 0xF5, 0xEE}
)

// ElfMagic is the embedded-ELF signature a signed container's header
// region never contains on its own, making it safe to locate by scan.
var ElfMagic = []byte{0x7F, 0x45, 0x4C, 0x46}

// IsSelf reports whether data begins with one of the two known SELF
// magic values.
func IsSelf(data []byte) bool {
	if len(data) < 4 {
		return false
	}
	return bytes.Equal(data[:4], MagicA[:]) || bytes.Equal(data[:4], MagicB[:])
}

// FindEmbeddedELF locates the embedded plain-ELF magic within a signed
// container's buffer. Returns false if absent.
func FindEmbeddedELF(data []byte) (offset int, found bool) {
	idx := bytes.Index(data, ElfMagic)
	if idx < 0 {
		return 0, false
	}
	return idx, true
}

// Decrypter delegates SELF decryption to an external collaborator (§6):
// the core never implements cryptography itself. Implementations live in
// internal/decrypter.
type Decrypter interface {
	Decrypt(ctx context.Context, inputPath string) (plainELFPath string, err error)
}

// UnwrapOrPassthrough returns plain ELF bytes for path/data. Plain ELF
// input passes through unchanged. SELF input is handed to dec for
// decryption; a nil dec or a failed decrypt is reported as a typed error
// rather than panicking — callers fall back to passthrough mode, which
// restricts later stages to files that were already plain.
func UnwrapOrPassthrough(ctx context.Context, path string, data []byte, dec Decrypter, readFile func(string) ([]byte, error)) ([]byte, error) {
	if !IsSelf(data) {
		return data, nil
	}

	if _, found := FindEmbeddedELF(data); !found {
		return nil, backporterr.New(backporterr.KindMalformedInput, stageName, "embedded ELF magic not found in SELF container")
	}

	if dec == nil {
		return nil, backporterr.New(backporterr.KindExternalToolFailure, stageName, "no external decrypter configured; falling back to passthrough")
	}

	plainPath, err := dec.Decrypt(ctx, path)
	if err != nil {
		return nil, backporterr.Wrap(backporterr.KindExternalToolFailure, stageName, "external decrypter failed", err)
	}

	plain, err := readFile(plainPath)
	if err != nil {
		return nil, backporterr.Wrap(backporterr.KindIOFailure, stageName, "reading decrypted output", err)
	}
	return plain, nil
}
