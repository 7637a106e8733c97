// Package headerpre parses the preamble every H-cache asset header starts
// with: a 16-byte hash, the merged-file path list, and the build arguments
// string. The audio and texture raw headers both continue from where the
// preamble ends.
package headerpre

import (
	"encoding/binary"
	"fmt"
	"unicode/utf8"

	lotus "github.com/sehnryr/lotus-lib"
)

// Preamble is the shared prefix of an asset header.
type Preamble struct {
	Hash      [16]byte
	FilePaths []string
	Arguments string
}

// Reader consumes little-endian fields from a raw header payload. The
// first failed read sticks: subsequent reads return zero values and Err
// reports the failure.
type Reader struct {
	data []byte
	off  int
	err  error
}

func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Offset is the number of bytes consumed so far.
func (r *Reader) Offset() int { return r.off }

func (r *Reader) Err() error { return r.err }

func (r *Reader) fail(format string, args ...interface{}) {
	if r.err == nil {
		r.err = &lotus.FormatError{Msg: fmt.Sprintf(format, args...)}
	}
}

// Bytes consumes n raw bytes. The returned slice aliases the input.
func (r *Reader) Bytes(n int) []byte {
	if r.err != nil {
		return nil
	}
	if r.off+n > len(r.data) {
		r.fail("header truncated at offset %d: need %d bytes, have %d", r.off, n, len(r.data)-r.off)
		return nil
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b
}

func (r *Reader) Skip(n int) { r.Bytes(n) }

func (r *Reader) U8() uint8 {
	b := r.Bytes(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *Reader) U16() uint16 {
	b := r.Bytes(2)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

func (r *Reader) U32() uint32 {
	b := r.Bytes(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

// String consumes a length-prefixed UTF-8 string.
func (r *Reader) String() string {
	n := int(r.U32())
	b := r.Bytes(n)
	if b == nil {
		return ""
	}
	if !utf8.Valid(b) {
		r.fail("string at offset %d is not valid UTF-8", r.off-n)
		return ""
	}
	return string(b)
}

// Preamble consumes the shared header prefix. A non-empty arguments string
// is followed by a single NUL byte, which is consumed as well.
func (r *Reader) Preamble() (Preamble, error) {
	var p Preamble
	copy(p.Hash[:], r.Bytes(16))

	mergedFileCount := r.U32()
	// Bound the preallocation by the data actually present; the count is
	// attacker-controlled.
	if int(mergedFileCount)*4 > len(r.data)-r.off {
		r.fail("merged file count %d exceeds header size", mergedFileCount)
		return p, r.err
	}
	p.FilePaths = make([]string, 0, mergedFileCount)
	for i := uint32(0); i < mergedFileCount; i++ {
		p.FilePaths = append(p.FilePaths, r.String())
	}

	argumentsLen := r.U32()
	args := r.Bytes(int(argumentsLen))
	if args != nil && !utf8.Valid(args) {
		r.fail("arguments string is not valid UTF-8")
	}
	p.Arguments = string(args)
	if argumentsLen > 0 {
		r.Skip(1)
	}

	return p, r.err
}
