package audio

import (
	"bytes"
	"encoding/binary"
)

// adpcmCoefficients is the fixed MS-ADPCM predictor table written into
// every ADPCM WAV header.
var adpcmCoefficients = [7][2]int16{
	{256, 0},
	{512, -256},
	{0, 0},
	{192, 64},
	{240, 0},
	{460, -208},
	{392, -232},
}

// wavPCMHeader builds the 44-byte RIFF/WAVE header for a PCM payload of
// h.Size bytes. Block align and byte rate are recomputed from the channel
// count and sample width; the stored values are not trusted.
func (h *Header) wavPCMHeader() []byte {
	blockAlign := uint16(h.Channels) * uint16(h.BitsPerSample) / 8
	avgBytesPerSecond := h.SamplesPerSecond * uint32(blockAlign)

	buf := bytes.NewBuffer(make([]byte, 0, 44))
	buf.WriteString("RIFF")
	le(buf, h.Size+32) // total file size minus 12
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	le(buf, uint32(16))
	le(buf, uint16(0x0001))
	le(buf, uint16(h.Channels))
	le(buf, h.SamplesPerSecond)
	le(buf, avgBytesPerSecond)
	le(buf, blockAlign)
	le(buf, uint16(h.BitsPerSample))
	buf.WriteString("data")
	le(buf, h.Size)
	return buf.Bytes()
}

// wavADPCMHeader builds the 78-byte WAVEFORMATEX header for an MS-ADPCM
// payload of h.Size bytes, coefficient table included.
func (h *Header) wavADPCMHeader() []byte {
	buf := bytes.NewBuffer(make([]byte, 0, 78))
	buf.WriteString("RIFF")
	le(buf, h.Size+66)
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	le(buf, uint32(50))
	le(buf, uint16(0x0002))
	le(buf, uint16(h.Channels))
	le(buf, h.SamplesPerSecond)
	le(buf, h.AverageBytesPerSecond)
	le(buf, h.BlockAlign)
	le(buf, uint16(h.BitsPerSample))
	le(buf, uint16(32)) // extension size
	le(buf, h.SamplesPerBlock)
	le(buf, uint16(len(adpcmCoefficients)))
	for _, c := range adpcmCoefficients {
		le(buf, c[0])
		le(buf, c[1])
	}
	buf.WriteString("data")
	le(buf, h.Size)
	return buf.Bytes()
}

func le(buf *bytes.Buffer, v interface{}) {
	// Writing fixed-size values into a bytes.Buffer cannot fail.
	binary.Write(buf, binary.LittleEndian, v)
}
