package compression

import (
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
	"golang.org/x/xerrors"
)

// DecompressPost reads a post-ensmallening entry at offset: a sequence of
// framed blocks expanding to decompLen bytes. compLen is the entry's total
// stored length; it doubles as the block length for headerless
// single-block entries.
func DecompressPost(r io.ReadSeeker, offset int64, compLen, decompLen int) ([]byte, error) {
	if _, err := r.Seek(offset, io.SeekStart); err != nil {
		return nil, err
	}
	return DecompressBlocks(r, compLen, decompLen)
}

// DecompressBlocks decompresses framed blocks starting at the current
// position of r until decompLen output bytes are produced. The texture
// pipeline uses it directly after seeking to a mip's block boundary.
func DecompressBlocks(r io.ReadSeeker, compLen, decompLen int) ([]byte, error) {
	fileLen, pos, err := seekerBounds(r)
	if err != nil {
		return nil, err
	}

	decompressed := make([]byte, decompLen)
	scratch := make([]byte, maxBlockLen)
	decompressedPos := 0

	for decompressedPos < decompLen {
		blockCompLen, blockDecompLen, ok, err := BlockLengths(r)
		if err != nil {
			return nil, err
		}
		if !ok {
			// No framing header: the entry is a single block with the
			// entry's own lengths.
			blockCompLen, blockDecompLen = compLen, decompLen
		} else {
			pos += blockHeaderLen
		}
		log.Debug().
			Int("blockCompLen", blockCompLen).
			Int("blockDecompLen", blockDecompLen).
			Msg("decompressing block")

		if decompressedPos+blockDecompLen > decompLen {
			return nil, &Error{Msg: fmt.Sprintf("block decompresses past the entry length: %d+%d > %d", decompressedPos, blockDecompLen, decompLen)}
		}
		if remaining := fileLen - pos; int64(blockCompLen) > remaining || blockCompLen > maxBlockLen {
			return nil, &Error{Msg: fmt.Sprintf("block length %d exceeds limits (remaining %d, max %d): probably not a compressed entry", blockCompLen, remaining, maxBlockLen)}
		}

		oodle, err := isOodleBlock(r)
		if err != nil {
			return nil, err
		}
		if _, err := io.ReadFull(r, scratch[:blockCompLen]); err != nil {
			return nil, xerrors.Errorf("reading block: %w", err)
		}
		pos += int64(blockCompLen)

		out := decompressed[decompressedPos : decompressedPos+blockDecompLen]
		switch {
		case oodle:
			err = decompressOodle(scratch[:blockCompLen], out)
		case blockCompLen == blockDecompLen:
			copy(out, scratch[:blockCompLen])
		default:
			err = decompressLZ(scratch[:blockCompLen], out)
		}
		if err != nil {
			return nil, err
		}

		decompressedPos += blockDecompLen
	}

	return decompressed, nil
}

// seekerBounds returns the total length of r and the current position,
// leaving the cursor where it was.
func seekerBounds(r io.ReadSeeker) (length, pos int64, err error) {
	pos, err = r.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, 0, err
	}
	length, err = r.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, 0, err
	}
	if _, err := r.Seek(pos, io.SeekStart); err != nil {
		return 0, 0, err
	}
	return length, pos, nil
}
