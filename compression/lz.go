package compression

import (
	"encoding/binary"
	"fmt"

	"github.com/pierrec/lz4/v4"
)

// decompressLZ decodes a size-prepended LZ4 frame: a 4-byte little-endian
// decompressed size followed by a single LZ4 block. Exactly len(dst) bytes
// must come out.
func decompressLZ(src, dst []byte) error {
	if len(src) < 4 {
		return &Error{Msg: fmt.Sprintf("lz4 frame too short: %d bytes", len(src))}
	}
	if size := binary.LittleEndian.Uint32(src[:4]); int(size) != len(dst) {
		return &Error{Msg: fmt.Sprintf("lz4 frame declares %d bytes, want %d", size, len(dst))}
	}
	n, err := lz4.UncompressBlock(src[4:], dst)
	if err != nil {
		return &Error{Msg: fmt.Sprintf("lz4: %v", err)}
	}
	if n != len(dst) {
		return &Error{Msg: fmt.Sprintf("lz4 decoded %d bytes, want %d", n, len(dst))}
	}
	return nil
}
