package audio

import (
	"github.com/sehnryr/lotus-lib/internal/headerpre"
)

// RawHeader is the audio asset header as stored in the H cache, preamble
// included. Unknown regions are kept so a consumer can inspect them.
type RawHeader struct {
	Hash      [16]byte
	FilePaths []string
	Arguments string

	FileType              uint32
	FormatTag             uint32
	Unknown1              uint32
	Unknown2              [24]byte
	SamplesPerSecond      uint32
	BitsPerSample         uint8
	Channels              uint8
	Unknown3              uint32
	AverageBytesPerSecond uint32
	BlockAlign            uint16
	SamplesPerBlock       uint16
	Unknown4              [12]byte
	Size                  uint32
}

// ParseRawHeader decodes the H-cache payload of an audio asset.
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
	h.FormatTag = r.U32()
	h.Unknown1 = r.U32()
	copy(h.Unknown2[:], r.Bytes(24))
	h.SamplesPerSecond = r.U32()
	h.BitsPerSample = r.U8()
	h.Channels = r.U8()
	h.Unknown3 = r.U32()
	h.AverageBytesPerSecond = r.U32()
	h.BlockAlign = r.U16()
	h.SamplesPerBlock = r.U16()
	copy(h.Unknown4[:], r.Bytes(12))
	h.Size = r.U32()

	if err := r.Err(); err != nil {
		return nil, err
	}
	return h, nil
}
