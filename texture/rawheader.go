package texture

import (
	"fmt"

	lotus "github.com/sehnryr/lotus-lib"
	"github.com/sehnryr/lotus-lib/internal/headerpre"
)

// RawHeader is the texture asset header as stored in the H cache,
// preamble included.
type RawHeader struct {
	Hash      [16]byte
	FilePaths []string
	Arguments string

	FileType           uint32
	Unknown1           uint8
	FCacheImageCount   uint8
	Unknown2           uint8
	DDSFormat          uint8
	MipMapCount        uint32
	FCacheImageOffsets []uint32
	WidthRatio         uint16
	HeightRatio        uint16
	BCacheMaxWidth     uint16
	BCacheMaxHeight    uint16
	MaxSideLength      uint32
}

// ParseRawHeader decodes the H-cache payload of a texture asset.
func ParseRawHeader(data []byte) (*RawHeader, error) {
	r := headerpre.NewReader(data)
	preamble, err := r.Preamble()
	if err != nil {
		return nil, err
	}

	h := &RawHeader{
		Hash:      preamble.Hash,
		FilePaths: preamble.FilePaths,
		Arguments: preamble.Arguments,
	}
	h.FileType = r.U32()
	h.Unknown1 = r.U8()
	h.FCacheImageCount = r.U8()
	h.Unknown2 = r.U8()
	h.DDSFormat = r.U8()
	h.MipMapCount = r.U32()
	if int64(h.MipMapCount)*4 > int64(len(data)-r.Offset()) {
		return nil, &lotus.FormatError{Msg: fmt.Sprintf("mip map count %d exceeds header size", h.MipMapCount)}
	}
	for i := uint32(0); i < h.MipMapCount; i++ {
		h.FCacheImageOffsets = append(h.FCacheImageOffsets, r.U32())
	}
	h.WidthRatio = r.U16()
	h.HeightRatio = r.U16()
	h.BCacheMaxWidth = r.U16()
	h.BCacheMaxHeight = r.U16()
	h.MaxSideLength = r.U32()

	if err := r.Err(); err != nil {
		return nil, err
	}
	return h, nil
}
