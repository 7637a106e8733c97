// Package compression implements the two cache-entry encodings:
// pre-ensmallening (one LZ4 frame per entry) and post-ensmallening (a
// sequence of framed blocks, each Oodle-, LZ4- or raw-encoded).
package compression

import (
	"encoding/binary"
	"fmt"
	"io"

	"golang.org/x/xerrors"
)

const (
	// blockHeaderLen is the size of the framing header in front of each
	// post-ensmallening block.
	blockHeaderLen = 8

	// maxBlockLen bounds a single block's compressed payload.
	maxBlockLen = 0x40000

	// oodleMagic is the first payload byte of every Oodle Kraken block.
	oodleMagic = 0x8C
)

// Error reports corrupt or out-of-bounds compressed data.
type Error struct {
	Msg string
}

func (e *Error) Error() string { return e.Msg }

// BlockLengths reads the 8-byte framing header at the current position of
// r and returns the block's compressed and decompressed payload lengths.
// If the bytes do not form a block header (first byte 0x80, low nibble of
// the last byte 0x01), the cursor is restored and ok is false.
func BlockLengths(r io.ReadSeeker) (compLen, decompLen int, ok bool, err error) {
	var header [blockHeaderLen]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return 0, 0, false, xerrors.Errorf("reading block header: %w", err)
	}

	if header[0] != 0x80 || header[7]&0x0F != 0x01 {
		if _, err := r.Seek(-blockHeaderLen, io.SeekCurrent); err != nil {
			return 0, 0, false, err
		}
		return 0, 0, false, nil
	}

	num1 := binary.BigEndian.Uint32(header[0:4])
	num2 := binary.BigEndian.Uint32(header[4:8])
	return int((num1 >> 2) & 0xFFFFFF), int((num2 >> 5) & 0xFFFFFF), true, nil
}

// isOodleBlock peeks at the first payload byte without consuming it.
func isOodleBlock(r io.ReadSeeker) (bool, error) {
	var magic [1]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return false, xerrors.Errorf("probing block payload: %w", err)
	}
	if _, err := r.Seek(-1, io.SeekCurrent); err != nil {
		return false, err
	}
	return magic[0] == oodleMagic, nil
}

// ResolveSubOffset walks the block framing from base and maps sub, a
// nominal position within the entry's compressed stream, to the byte
// offset (relative to base) of the nearest block boundary. Blocks are not
// aligned to the positions recorded in asset headers, so the boundary
// closest to sub is the contract; ties go to the later boundary. The
// cursor is left back at base.
func ResolveSubOffset(r io.ReadSeeker, base int64, sub int64) (int64, error) {
	if _, err := r.Seek(base, io.SeekStart); err != nil {
		return 0, err
	}

	var top, bottom int64
	for {
		compLen, _, ok, err := BlockLengths(r)
		if err != nil {
			return 0, err
		}
		if !ok {
			return 0, &Error{Msg: fmt.Sprintf("offset %d: not a block-framed stream", base+top)}
		}
		top += int64(compLen) + blockHeaderLen
		if top >= sub {
			break
		}
		bottom = top
		if _, err := r.Seek(int64(compLen), io.SeekCurrent); err != nil {
			return 0, err
		}
	}

	if _, err := r.Seek(base, io.SeekStart); err != nil {
		return 0, err
	}

	if top-sub > sub-bottom {
		return bottom, nil
	}
	return top, nil
}
