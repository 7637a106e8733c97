// Package texture reconstructs DDS files from cache-pair archives:
// header parsing, dimension and size derivation, DDS (and DX10) header
// emission, and mip-aware pixel payload selection.
package texture

import (
	"fmt"

	lotus "github.com/sehnryr/lotus-lib"
)

// DDSFormat is the pixel encoding of a texture asset.
type DDSFormat int

const (
	BC1 DDSFormat = iota
	BC2
	BC3
	BC4
	BC5
	BC6H
	BC7
	Uncompressed
)

func (f DDSFormat) String() string {
	switch f {
	case BC1:
		return "BC1_UNORM"
	case BC2:
		return "BC2_UNORM"
	case BC3:
		return "BC3_UNORM"
	case BC4:
		return "BC4_UNORM"
	case BC5:
		return "BC5_UNORM"
	case BC6H:
		return "BC6H_UF16"
	case BC7:
		return "BC7_UNORM"
	case Uncompressed:
		return "Uncompressed"
	}
	return fmt.Sprintf("DDSFormat(%d)", int(f))
}

// ParseDDSFormat maps a raw header format byte to a DDSFormat.
func ParseDDSFormat(v uint8) (DDSFormat, error) {
	switch v {
	case 0x00, 0x01:
		return BC1, nil
	case 0x02:
		return BC2, nil
	case 0x03:
		return BC3, nil
	case 0x06:
		return BC4, nil
	case 0x07:
		return BC5, nil
	case 0x23:
		return BC6H, nil
	case 0x22:
		return BC7, nil
	case 0x0A:
		return Uncompressed, nil
	}
	return 0, &lotus.FormatError{Msg: fmt.Sprintf("unknown dds format %#x", v)}
}

// BitsPerPixel returns the format's bytes per 4x4 texel block, the
// multiplier of the mip size formula.
func (f DDSFormat) BitsPerPixel() uint32 {
	switch f {
	case BC1, BC4:
		return 8
	case BC2, BC3, BC5, BC6H, BC7:
		return 16
	case Uncompressed:
		return 64
	}
	return 0
}

// fourCC returns the pixel-format FourCC, or ok=false for formats encoded
// with explicit RGB masks.
func (f DDSFormat) fourCC() (code string, ok bool) {
	switch f {
	case BC1:
		return "DXT1", true
	case BC2:
		return "DXT3", true
	case BC3:
		return "DXT5", true
	case BC4:
		return "ATI1", true
	case BC5:
		return "ATI2", true
	case BC6H, BC7:
		return "DX10", true
	}
	return "", false
}

// DXGI format codes for the DX10 extension header.
const (
	dxgiR8G8B8A8UNorm = 28
	dxgiBC6HUF16      = 95
	dxgiBC7UNorm      = 98
)

func (f DDSFormat) dxgiFormat() uint32 {
	switch f {
	case BC6H:
		return dxgiBC6HUF16
	case BC7:
		return dxgiBC7UNorm
	case Uncompressed:
		return dxgiR8G8B8A8UNorm
	}
	return 0
}
