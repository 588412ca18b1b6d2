// Package bps implements the BPS (Beat Patch System) binary delta
// format: a VLC-coded action stream that reconstructs a target file from
// a source file, with CRC-32 verification of the source, the target,
// and the patch body itself.
package bps

import (
	"encoding/binary"
	"hash/crc32"

	"github.com/zboralski/ps5kitchen/internal/backporterr"
)

const stageName = "bps"

var magic = [4]byte{'B', 'P', 'S', '1'}

const footerSize = 12

const (
	actionSourceRead = 0
	actionTargetRead = 1
	actionSourceCopy = 2
	actionTargetCopy = 3
)

// decodeVLC reads one variable-length-coded unsigned integer starting at
// offset. Each byte contributes its low 7 bits shifted by 7*n; the byte
// with bit 7 set terminates the integer, and every non-terminal byte adds
// an implicit +1 at its shift level (the BPS VLC bias that lets every
// value have a unique minimal encoding).
func decodeVLC(data []byte, offset int) (uint64, int, error) {
	var result uint64
	var shift uint
	for {
		if offset >= len(data) {
			return 0, 0, backporterr.New(backporterr.KindMalformedInput, stageName, "truncated VLC integer")
		}
		b := data[offset]
		offset++
		result += uint64(b&0x7F) << shift
		if b&0x80 != 0 {
			break
		}
		shift += 7
		result += 1 << shift
	}
	return result, offset, nil
}

// readSignedVLC reads a VLC integer and un-zigzags it: the low bit is
// the sign, the remaining bits are the magnitude.
func readSignedVLC(data []byte, offset int) (int64, int, error) {
	v, off, err := decodeVLC(data, offset)
	if err != nil {
		return 0, 0, err
	}
	if v&1 != 0 {
		return -int64(v >> 1), off, nil
	}
	return int64(v >> 1), off, nil
}

// encodeVLC appends the VLC encoding of v to buf.
func encodeVLC(buf []byte, v uint64) []byte {
	for {
		b := byte(v & 0x7F)
		v >>= 7
		if v == 0 {
			return append(buf, b|0x80)
		}
		buf = append(buf, b)
		v--
	}
}

// encodeSignedVLC zigzag-encodes a signed delta and appends its VLC form
// to buf.
func encodeSignedVLC(buf []byte, v int64) []byte {
	if v < 0 {
		return encodeVLC(buf, uint64(-v)<<1|1)
	}
	return encodeVLC(buf, uint64(v)<<1)
}

// Info is the parsed header/footer of a BPS patch, returned by Validate.
type Info struct {
	SourceSize   uint64
	TargetSize   uint64
	Metadata     string
	SourceCRC32  uint32
	TargetCRC32  uint32
	PatchCRC32   uint32
	PatchSize    int
}

// Validate parses a BPS patch's header and footer and verifies the
// patch-body CRC-32, without applying it to any source.
func Validate(patch []byte) (Info, error) {
	if len(patch) < 4+3+footerSize {
		return Info{}, backporterr.New(backporterr.KindMalformedInput, stageName, "patch too small")
	}
	if patch[0] != magic[0] || patch[1] != magic[1] || patch[2] != magic[2] || patch[3] != magic[3] {
		return Info{}, backporterr.New(backporterr.KindMalformedInput, stageName, "bad BPS magic")
	}

	offset := 4
	sourceSize, offset, err := decodeVLC(patch, offset)
	if err != nil {
		return Info{}, err
	}
	targetSize, offset, err := decodeVLC(patch, offset)
	if err != nil {
		return Info{}, err
	}
	metadataSize, offset, err := decodeVLC(patch, offset)
	if err != nil {
		return Info{}, err
	}

	var metadata string
	if metadataSize > 0 {
		end := offset + int(metadataSize)
		if end > len(patch) {
			return Info{}, backporterr.New(backporterr.KindMalformedInput, stageName, "metadata overflows patch")
		}
		metadata = string(patch[offset:end])
	}

	footerOffset := len(patch) - footerSize
	srcCRC := binary.LittleEndian.Uint32(patch[footerOffset:])
	tgtCRC := binary.LittleEndian.Uint32(patch[footerOffset+4:])
	patchCRC := binary.LittleEndian.Uint32(patch[footerOffset+8:])

	actual := crc32.ChecksumIEEE(patch[:len(patch)-4])
	if actual != patchCRC {
		return Info{}, backporterr.New(backporterr.KindChecksumMismatch, stageName, "patch body CRC mismatch")
	}

	return Info{
		SourceSize:  sourceSize,
		TargetSize:  targetSize,
		Metadata:    metadata,
		SourceCRC32: srcCRC,
		TargetCRC32: tgtCRC,
		PatchCRC32:  patchCRC,
		PatchSize:   len(patch),
	}, nil
}

// Apply reconstructs the target from source using patch, verifying the
// source, patch-body, and target CRC-32s when verify is true.
func Apply(source, patch []byte, verify bool) ([]byte, error) {
	if len(patch) < 4+3+footerSize {
		return nil, backporterr.New(backporterr.KindMalformedInput, stageName, "patch too small")
	}
	if patch[0] != magic[0] || patch[1] != magic[1] || patch[2] != magic[2] || patch[3] != magic[3] {
		return nil, backporterr.New(backporterr.KindMalformedInput, stageName, "bad BPS magic")
	}

	offset := 4
	sourceSize, offset, err := decodeVLC(patch, offset)
	if err != nil {
		return nil, err
	}
	targetSize, offset, err := decodeVLC(patch, offset)
	if err != nil {
		return nil, err
	}
	metadataSize, offset, err := decodeVLC(patch, offset)
	if err != nil {
		return nil, err
	}

	if verify && uint64(len(source)) != sourceSize {
		return nil, backporterr.New(backporterr.KindMalformedInput, stageName, "source size mismatch")
	}

	offset += int(metadataSize)

	footerOffset := len(patch) - footerSize
	srcCRC := binary.LittleEndian.Uint32(patch[footerOffset:])
	tgtCRC := binary.LittleEndian.Uint32(patch[footerOffset+4:])
	patchCRC := binary.LittleEndian.Uint32(patch[footerOffset+8:])

	if verify {
		if crc32.ChecksumIEEE(source) != srcCRC {
			return nil, backporterr.New(backporterr.KindChecksumMismatch, stageName, "source CRC mismatch")
		}
		if crc32.ChecksumIEEE(patch[:len(patch)-4]) != patchCRC {
			return nil, backporterr.New(backporterr.KindChecksumMismatch, stageName, "patch body CRC mismatch (corrupt patch file)")
		}
	}

	target := make([]byte, targetSize)
	srcPos := 0
	outPos := 0
	actionsEnd := footerOffset

	for offset < actionsEnd {
		header, next, err := decodeVLC(patch, offset)
		if err != nil {
			return nil, err
		}
		offset = next
		action := header & 3
		length := int(header>>2) + 1

		switch action {
		case actionSourceRead:
			if outPos+length > int(targetSize) || srcPos+length > len(source) {
				return nil, backporterr.New(backporterr.KindMalformedInput, stageName, "SourceRead overflow")
			}
			copy(target[outPos:outPos+length], source[srcPos:srcPos+length])
			srcPos += length
			outPos += length

		case actionTargetRead:
			if offset+length > len(patch) {
				return nil, backporterr.New(backporterr.KindMalformedInput, stageName, "TargetRead overflows patch data")
			}
			copy(target[outPos:outPos+length], patch[offset:offset+length])
			offset += length
			outPos += length

		case actionSourceCopy:
			delta, next, err := readSignedVLC(patch, offset)
			if err != nil {
				return nil, err
			}
			offset = next
			srcPos += int(delta)
			if srcPos < 0 || srcPos+length > len(source) {
				return nil, backporterr.New(backporterr.KindMalformedInput, stageName, "SourceCopy out of bounds")
			}
			copy(target[outPos:outPos+length], source[srcPos:srcPos+length])
			srcPos += length
			outPos += length

		case actionTargetCopy:
			delta, next, err := readSignedVLC(patch, offset)
			if err != nil {
				return nil, err
			}
			offset = next
			copyFrom := outPos + int(delta)
			if copyFrom < 0 {
				return nil, backporterr.New(backporterr.KindMalformedInput, stageName, "TargetCopy negative offset")
			}
			// Byte-by-byte, not copy(): TargetCopy is allowed to reference
			// bytes this same action is still writing, producing
			// overlapping runs (e.g. RLE-style repeats). A bulk copy would
			// read stale-but-already-overwritten source instead.
			for i := 0; i < length; i++ {
				target[outPos+i] = target[copyFrom+i]
			}
			outPos += length
		}
	}

	if verify && crc32.ChecksumIEEE(target) != tgtCRC {
		return nil, backporterr.New(backporterr.KindChecksumMismatch, stageName, "output CRC mismatch")
	}

	return target, nil
}

// Encode builds a complete BPS patch from a source and target buffer
// using only TargetRead actions — a correct but unoptimized encoder
// (no SourceRead/SourceCopy/TargetCopy compression), useful for tests and
// for producing patches that round-trip through Apply exactly.
func Encode(source, target []byte, metadata string) []byte {
	var patch []byte
	patch = append(patch, magic[:]...)
	patch = encodeVLC(patch, uint64(len(source)))
	patch = encodeVLC(patch, uint64(len(target)))
	patch = encodeVLC(patch, uint64(len(metadata)))
	patch = append(patch, metadata...)

	pos := 0
	for pos < len(target) {
		chunk := len(target) - pos
		if chunk > 1<<20 {
			chunk = 1 << 20
		}
		header := uint64(chunk-1)<<2 | actionTargetRead
		patch = encodeVLC(patch, header)
		patch = append(patch, target[pos:pos+chunk]...)
		pos += chunk
	}

	srcCRC := crc32.ChecksumIEEE(source)
	tgtCRC := crc32.ChecksumIEEE(target)
	var footer [8]byte
	binary.LittleEndian.PutUint32(footer[0:], srcCRC)
	binary.LittleEndian.PutUint32(footer[4:], tgtCRC)
	patch = append(patch, footer[:]...)

	patchCRC := crc32.ChecksumIEEE(patch)
	var crcBuf [4]byte
	binary.LittleEndian.PutUint32(crcBuf[:], patchCRC)
	patch = append(patch, crcBuf[:]...)

	return patch
}
