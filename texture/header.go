package texture

import (
	"bytes"
	"encoding/binary"
	"fmt"

	lotus "github.com/sehnryr/lotus-lib"
)

// DDS header field constants, straight from the DDS specification.
const (
	ddsHeaderLen   = 124
	dds10HeaderLen = 20
	pixelFormatLen = 32

	ddsFlagCaps        = 0x1
	ddsFlagHeight      = 0x2
	ddsFlagWidth       = 0x4
	ddsFlagPitch       = 0x8
	ddsFlagPixelFormat = 0x1000

	pfFlagAlphaPixels = 0x1
	pfFlagFourCC      = 0x4
	pfFlagRGB         = 0x40

	capsTexture = 0x1000

	d3d10ResourceDimensionTexture2D = 3
)

// Header is the parsed texture header: derived dimensions and size plus
// the F-cache mip bookkeeping the payload selection needs.
type Header struct {
	Width  uint32
	Height uint32
	Format DDSFormat

	FCacheImageCount   uint8
	FCacheImageOffsets []uint32

	size int
}

// Size is the pixel payload size in bytes of the largest mip level.
func (h *Header) Size() int { return h.size }

// ParseHeader decodes and validates the H-cache payload of a texture
// asset and derives dimensions and payload size.
func ParseHeader(data []byte) (*Header, error) {
	raw, err := ParseRawHeader(data)
	if err != nil {
		return nil, err
	}

	// The longer dimension is MaxSideLength; the other scales by the
	// aspect ratio.
	if raw.WidthRatio == 0 && raw.HeightRatio == 0 {
		return nil, &lotus.FormatError{Msg: "texture header has a zero aspect ratio"}
	}
	var width, height uint32
	if raw.WidthRatio > raw.HeightRatio {
		width = raw.MaxSideLength
		height = raw.MaxSideLength * uint32(raw.HeightRatio) / uint32(raw.WidthRatio)
	} else {
		width = raw.MaxSideLength * uint32(raw.WidthRatio) / uint32(raw.HeightRatio)
		height = raw.MaxSideLength
	}

	format, err := ParseDDSFormat(raw.DDSFormat)
	if err != nil {
		return nil, err
	}

	size := max32(1, width>>2) * max32(1, height>>2) * format.BitsPerPixel()

	return &Header{
		Width:              width,
		Height:             height,
		Format:             format,
		FCacheImageCount:   raw.FCacheImageCount,
		FCacheImageOffsets: raw.FCacheImageOffsets,
		size:               int(size),
	}, nil
}

func max32(a, b uint32) uint32 {
	if a > b {
		return a
	}
	return b
}

// DDSHeader renders the "DDS " magic and the 124-byte header, plus the
// 20-byte DX10 extension for formats that need one.
func (h *Header) DDSHeader() []byte {
	buf := bytes.NewBuffer(make([]byte, 0, 4+ddsHeaderLen+dds10HeaderLen))
	buf.WriteString("DDS ")

	flags := uint32(ddsFlagCaps | ddsFlagHeight | ddsFlagWidth | ddsFlagPixelFormat)
	var pitch uint32
	if h.Format == Uncompressed {
		flags |= ddsFlagPitch
		pitch = h.Width * h.Format.BitsPerPixel() >> 3
	}

	le(buf, uint32(ddsHeaderLen))
	le(buf, flags)
	le(buf, h.Height)
	le(buf, h.Width)
	le(buf, pitch)
	le(buf, uint32(0)) // depth
	le(buf, uint32(0)) // mip map count
	for i := 0; i < 11; i++ {
		le(buf, uint32(0)) // reserved
	}
	h.writePixelFormat(buf)
	le(buf, uint32(capsTexture))
	le(buf, uint32(0)) // caps2
	le(buf, uint32(0)) // caps3
	le(buf, uint32(0)) // caps4
	le(buf, uint32(0)) // reserved

	if code, _ := h.Format.fourCC(); code == "DX10" {
		le(buf, h.Format.dxgiFormat())
		le(buf, uint32(d3d10ResourceDimensionTexture2D))
		le(buf, uint32(0)) // misc flag
		le(buf, uint32(1)) // array size
		le(buf, uint32(0)) // misc flags2: alpha mode unknown
	}

	return buf.Bytes()
}

func (h *Header) writePixelFormat(buf *bytes.Buffer) {
	le(buf, uint32(pixelFormatLen))
	if code, ok := h.Format.fourCC(); ok {
		le(buf, uint32(pfFlagFourCC))
		buf.WriteString(code)
		for i := 0; i < 5; i++ {
			le(buf, uint32(0)) // rgb bit count + 4 masks
		}
		return
	}
	// Uncompressed: 32-bit BGRA with explicit masks.
	le(buf, uint32(pfFlagRGB|pfFlagAlphaPixels))
	le(buf, uint32(0)) // no FourCC
	le(buf, uint32(32))
	le(buf, uint32(0x00FF0000))
	le(buf, uint32(0x0000FF00))
	le(buf, uint32(0x000000FF))
	le(buf, uint32(0xFF000000))
}

func le(buf *bytes.Buffer, v interface{}) {
	binary.Write(buf, binary.LittleEndian, v)
}

func (h *Header) String() string {
	return fmt.Sprintf("%dx%d %v (%d bytes)", h.Width, h.Height, h.Format, h.size)
}
