package selfcontainer

import "encoding/binary"

// byteSink accumulates a container image with both sequential appends and
// absolute-offset writes, mirroring the reference builder's mix of
// streamed writes and explicit seeks.
type byteSink struct {
	buf *[]byte
}

func newByteSink(buf *[]byte) *byteSink {
	return &byteSink{buf: buf}
}

func (s *byteSink) len() int { return len(*s.buf) }

func (s *byteSink) bytes() []byte { return *s.buf }

func (s *byteSink) writeBytes(p []byte) {
	*s.buf = append(*s.buf, p...)
}

func (s *byteSink) writeU16(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	s.writeBytes(b[:])
}

func (s *byteSink) writeU32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	s.writeBytes(b[:])
}

func (s *byteSink) writeU64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	s.writeBytes(b[:])
}

// padTo zero-extends the buffer to exactly n bytes. A no-op if already
// at least n bytes long.
func (s *byteSink) padTo(n int) {
	if n <= s.len() {
		return
	}
	*s.buf = append(*s.buf, make([]byte, n-s.len())...)
}

// writeAt places data at an absolute offset, zero-extending the buffer
// first if offset is past the current end.
func (s *byteSink) writeAt(offset int, data []byte) {
	s.padTo(offset)
	if offset+len(data) > s.len() {
		s.padTo(offset + len(data))
	}
	copy((*s.buf)[offset:offset+len(data)], data)
}
