package selfcontainer

import (
	"crypto/sha256"
	"encoding/binary"
	"math/bits"

	"github.com/zboralski/ps5kitchen/internal/backporterr"
)

// Fixed container constants.
const (
	selfVersion = 0x00
	selfMode    = 0x01
	selfEndian  = 0x01
	selfAttribs = 0x12

	selfKeyType = 0x101

	digestSize    = 0x20
	signatureSize = 0x100

	blockSize = 0x4000

	flagsSignedShift = 4

	// DefaultPAID is the Program Auth ID written to fresh fake-SELF
	// containers when the caller supplies no override.
	DefaultPAID uint64 = 0x3100000000000002
	// PTypeFake marks the container as an unsigned fake, the only mode
	// this package ever produces.
	PTypeFake uint32 = 0x1

	elfEhdrSize uint64 = 0x40
	elfPhdrSize uint64 = 0x38
)

// Program header types that receive SELF entries during re-wrap.
var selfSegmentTypes = map[uint32]bool{
	0x1:        true, // PT_LOAD
	0x61000010: true, // PT_SCE_RELRO
	0x61000000: true, // PT_SCE_DYNLIBDATA
	0x6FFFFF00: true, // PT_SCE_COMMENT
}

const ptSceVersion uint32 = 0x6FFFFF01

// RewrapOptions parameterizes the fake-SELF container a plain ELF is
// wrapped into. Zero values reproduce the reference tool's defaults.
type RewrapOptions struct {
	PAID       uint64
	PType      uint32
	AppVersion uint64
	FWVersion  uint64
}

func (o RewrapOptions) normalize() RewrapOptions {
	if o.PAID == 0 {
		o.PAID = DefaultPAID
	}
	if o.PType == 0 {
		o.PType = PTypeFake
	}
	return o
}

type elfHeader struct {
	ident                                                     [16]byte
	eType, eMachine                                            uint16
	eVersion                                                   uint32
	eEntry, ePhoff, eShoff                                     uint64
	eFlags                                                     uint32
	eEhsize, ePhentsize, ePhnum, eShentsize, eShnum, eShstrndx uint16
}

func parseElfHeader(data []byte) (elfHeader, error) {
	var h elfHeader
	if len(data) < int(elfEhdrSize) || data[0] != 0x7F || string(data[1:4]) != "ELF" {
		return h, backporterr.New(backporterr.KindMalformedInput, stageName, "not a valid ELF file")
	}
	if data[4] != 2 {
		return h, backporterr.New(backporterr.KindMalformedInput, stageName, "not a 64-bit ELF")
	}
	if data[5] != 1 {
		return h, backporterr.New(backporterr.KindMalformedInput, stageName, "not little-endian")
	}
	copy(h.ident[:], data[:16])
	h.eType = binary.LittleEndian.Uint16(data[0x10:])
	h.eMachine = binary.LittleEndian.Uint16(data[0x12:])
	h.eVersion = binary.LittleEndian.Uint32(data[0x14:])
	h.eEntry = binary.LittleEndian.Uint64(data[0x18:])
	h.ePhoff = binary.LittleEndian.Uint64(data[0x20:])
	h.eShoff = binary.LittleEndian.Uint64(data[0x28:])
	h.eFlags = binary.LittleEndian.Uint32(data[0x30:])
	h.eEhsize = binary.LittleEndian.Uint16(data[0x34:])
	h.ePhentsize = binary.LittleEndian.Uint16(data[0x36:])
	h.ePhnum = binary.LittleEndian.Uint16(data[0x38:])
	h.eShentsize = binary.LittleEndian.Uint16(data[0x3A:])
	h.eShnum = binary.LittleEndian.Uint16(data[0x3C:])
	h.eShstrndx = binary.LittleEndian.Uint16(data[0x3E:])
	return h, nil
}

// toBytes serializes the header back to 64 bytes, forcing eShnum to zero
// as the re-wrap ignores the section-header table entirely.
func (h elfHeader) toBytes() []byte {
	buf := make([]byte, elfEhdrSize)
	copy(buf[:16], h.ident[:])
	binary.LittleEndian.PutUint16(buf[0x10:], h.eType)
	binary.LittleEndian.PutUint16(buf[0x12:], h.eMachine)
	binary.LittleEndian.PutUint32(buf[0x14:], h.eVersion)
	binary.LittleEndian.PutUint64(buf[0x18:], h.eEntry)
	binary.LittleEndian.PutUint64(buf[0x20:], h.ePhoff)
	binary.LittleEndian.PutUint64(buf[0x28:], h.eShoff)
	binary.LittleEndian.PutUint32(buf[0x30:], h.eFlags)
	binary.LittleEndian.PutUint16(buf[0x34:], h.eEhsize)
	binary.LittleEndian.PutUint16(buf[0x36:], h.ePhentsize)
	binary.LittleEndian.PutUint16(buf[0x38:], h.ePhnum)
	binary.LittleEndian.PutUint16(buf[0x3A:], h.eShentsize)
	binary.LittleEndian.PutUint16(buf[0x3C:], 0)
	binary.LittleEndian.PutUint16(buf[0x3E:], h.eShstrndx)
	return buf
}

type phdr struct {
	pType, pFlags                             uint32
	pOffset, pVaddr, pPaddr, pFilesz, pMemsz, pAlign uint64
}

func parsePhdr(data []byte, off int) phdr {
	return phdr{
		pType:   binary.LittleEndian.Uint32(data[off:]),
		pFlags:  binary.LittleEndian.Uint32(data[off+4:]),
		pOffset: binary.LittleEndian.Uint64(data[off+8:]),
		pVaddr:  binary.LittleEndian.Uint64(data[off+16:]),
		pPaddr:  binary.LittleEndian.Uint64(data[off+24:]),
		pFilesz: binary.LittleEndian.Uint64(data[off+32:]),
		pMemsz:  binary.LittleEndian.Uint64(data[off+40:]),
		pAlign:  binary.LittleEndian.Uint64(data[off+48:]),
	}
}

func (p phdr) toBytes() []byte {
	buf := make([]byte, elfPhdrSize)
	binary.LittleEndian.PutUint32(buf[0:], p.pType)
	binary.LittleEndian.PutUint32(buf[4:], p.pFlags)
	binary.LittleEndian.PutUint64(buf[8:], p.pOffset)
	binary.LittleEndian.PutUint64(buf[16:], p.pVaddr)
	binary.LittleEndian.PutUint64(buf[24:], p.pPaddr)
	binary.LittleEndian.PutUint64(buf[32:], p.pFilesz)
	binary.LittleEndian.PutUint64(buf[40:], p.pMemsz)
	binary.LittleEndian.PutUint64(buf[48:], p.pAlign)
	return buf
}

type selfEntry struct {
	props, offset, filesz, memsz uint64
	data                         []byte
	phdrIdx                      int
	isMeta                      bool
}

func alignUp(v, align uint64) uint64 {
	return (v + align - 1) &^ (align - 1)
}

// Rewrap builds a fake-signed SELF container around a plain ELF byte
// buffer. It is the bit-exact re-implementation of the reference
// builder's layout plan (§4.1): a pair of meta/data entries per
// qualifying segment, zeroed digest and signature regions, and any
// version-string segment appended past the stated file size.
func Rewrap(elf []byte, opts RewrapOptions) ([]byte, error) {
	opts = opts.normalize()

	digest := sha256.Sum256(elf)

	ehdr, err := parseElfHeader(elf)
	if err != nil {
		return nil, err
	}

	phdrs := make([]phdr, ehdr.ePhnum)
	segments := make([][]byte, ehdr.ePhnum)
	var versionData []byte

	phentsize := uint64(ehdr.ePhentsize)
	for i := 0; i < int(ehdr.ePhnum); i++ {
		off := int(ehdr.ePhoff) + i*int(phentsize)
		if off+int(elfPhdrSize) > len(elf) {
			return nil, backporterr.New(backporterr.KindMalformedInput, stageName, "truncated program header table")
		}
		ph := parsePhdr(elf, off)
		phdrs[i] = ph

		if ph.pFilesz > 0 {
			end := ph.pOffset + ph.pFilesz
			if end > uint64(len(elf)) {
				return nil, backporterr.New(backporterr.KindMalformedInput, stageName, "segment extends past end of file")
			}
			segments[i] = elf[ph.pOffset:end]
		}
		if ph.pType == ptSceVersion {
			versionData = segments[i]
		}
	}

	var entries []*selfEntry
	entryIndex := 0

	for i, ph := range phdrs {
		if !selfSegmentTypes[ph.pType] {
			continue
		}

		metaProps := uint64(1<<2) | uint64(1<<16) | ((uint64(entryIndex+1) & 0xFFFF) << 20)
		entries = append(entries, &selfEntry{props: metaProps, phdrIdx: i, isMeta: true})

		blockVal := ilog2(blockSize) - 12
		dataProps := uint64(1<<2) | uint64(1<<11) | ((uint64(blockVal) & 0xF) << 12) | ((uint64(i) & 0xFFFF) << 20)
		entries = append(entries, &selfEntry{props: dataProps, phdrIdx: i, isMeta: false})

		entryIndex += 2
	}

	numEntries := len(entries)

	const signedBlockCount = 2
	flags := uint16(0x2) | uint16(signedBlockCount<<flagsSignedShift)

	const commonHeaderSize = 8
	const extHeaderSize = 20

	elfHeadersSize := uint64(ehdr.eEhsize)
	if want := ehdr.ePhoff + phentsize*uint64(ehdr.ePhnum); want > elfHeadersSize {
		elfHeadersSize = want
	}

	headerSize := uint64(commonHeaderSize) + uint64(extHeaderSize) + uint64(numEntries)*32 + elfHeadersSize
	headerSize = alignUp(headerSize, 16)
	headerSize += 64 // ExInfo
	headerSize += 48 // NPDRM

	metaSize := uint64(numEntries)*80 + 80 + signatureSize

	offset := headerSize + metaSize
	for _, e := range entries {
		ph := phdrs[e.phdrIdx]
		if e.isMeta {
			numBlocks := alignUp(ph.pFilesz, blockSize) / blockSize
			e.data = make([]byte, numBlocks*digestSize)
			e.offset = offset
			e.filesz = uint64(len(e.data))
			e.memsz = e.filesz
			offset = alignUp(offset+e.filesz, 16)
		} else {
			e.data = segments[e.phdrIdx]
			e.offset = offset
			e.filesz = ph.pFilesz
			e.memsz = ph.pFilesz
			offset = alignUp(offset+e.filesz, 16)
		}
	}
	fileSize := offset

	out := make([]byte, 0, fileSize+uint64(len(versionData)))
	buf := newByteSink(&out)

	// Common header.
	buf.writeBytes(MagicA[:])
	buf.writeBytes([]byte{selfVersion, selfMode, selfEndian, selfAttribs})

	// Extended header (20 bytes + 4 padding).
	buf.writeU32(selfKeyType)
	buf.writeU16(uint16(headerSize))
	buf.writeU16(uint16(metaSize))
	buf.writeU64(fileSize)
	buf.writeU16(uint16(numEntries))
	buf.writeU16(flags)
	buf.writeBytes(make([]byte, 4))

	// Entries (32 bytes each).
	for _, e := range entries {
		buf.writeU64(e.props)
		buf.writeU64(e.offset)
		buf.writeU64(e.filesz)
		buf.writeU64(e.memsz)
	}

	// ELF headers.
	elfHeaderStart := buf.len()
	buf.writeBytes(ehdr.toBytes())
	for _, ph := range phdrs {
		buf.writeBytes(ph.toBytes())
	}
	elfHeadersAligned := alignUp(elfHeadersSize, 16)
	buf.padTo(elfHeaderStart + int(elfHeadersAligned))

	// ExInfo (64 bytes): paid, ptype, app_version, fw_version, digest.
	buf.writeU64(opts.PAID)
	buf.writeU64(uint64(opts.PType))
	buf.writeU64(opts.AppVersion)
	buf.writeU64(opts.FWVersion)
	buf.writeBytes(digest[:])

	// NPDRM control block (48 bytes): type(2) + padding(14) + content_id(19) + random_pad(13).
	buf.writeU16(0x3)
	buf.writeBytes(make([]byte, 14))
	buf.writeBytes(make([]byte, 19))
	buf.writeBytes(make([]byte, 13))

	// Meta blocks (80 bytes each, zeroed placeholders for digests).
	for range entries {
		buf.writeBytes(make([]byte, 80))
	}

	// Meta footer (80 bytes): 48 padding + Unknown1(u32)=0x10000 + 28 padding.
	buf.writeBytes(make([]byte, 48))
	buf.writeU32(0x10000)
	buf.writeBytes(make([]byte, 28))

	// Signature (zeroed: this is the "fake" in fake-SELF).
	buf.writeBytes(make([]byte, signatureSize))

	// Segment payloads at their computed offsets.
	for _, e := range entries {
		buf.writeAt(int(e.offset), e.data)
	}

	buf.padTo(int(fileSize))

	if len(versionData) > 0 {
		buf.writeBytes(versionData)
	}

	return buf.bytes(), nil
}

func ilog2(v uint64) int {
	if v == 0 {
		return 0
	}
	return bits.Len64(v) - 1
}
