package audio

import (
	"math/rand"
)

// Header is the parsed audio header plus the per-decode Ogg stream serial.
type Header struct {
	Format                Format
	StreamSerial          uint32
	SamplesPerSecond      uint32
	BitsPerSample         uint8
	Channels              uint8
	AverageBytesPerSecond uint32
	BlockAlign            uint16
	SamplesPerBlock       uint16
	Size                  uint32
}

// newStreamSerial generates the Ogg stream serial for a decode. Tests
// override it for reproducible output.
var newStreamSerial = rand.Uint32

// ParseHeader decodes and validates the H-cache payload of an audio asset
// and draws a fresh stream serial.
func ParseHeader(data []byte) (*Header, error) {
	raw, err := ParseRawHeader(data)
	if err != nil {
		return nil, err
	}
	format, err := ParseFormat(raw.FormatTag)
	if err != nil {
		return nil, err
	}

	return &Header{
		Format:                format,
		StreamSerial:          newStreamSerial(),
		SamplesPerSecond:      raw.SamplesPerSecond,
		BitsPerSample:         raw.BitsPerSample,
		Channels:              raw.Channels,
		AverageBytesPerSecond: raw.AverageBytesPerSecond,
		BlockAlign:            raw.BlockAlign,
		SamplesPerBlock:       raw.SamplesPerBlock,
		Size:                  raw.Size,
	}, nil
}
