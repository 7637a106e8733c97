package audio

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func TestWavPCMHeader(t *testing.T) {
	t.Parallel()

	h := &Header{
		Format:           PCM,
		Channels:         2,
		SamplesPerSecond: 48000,
		BitsPerSample:    16,
		Size:             1024,
	}
	header := h.wavPCMHeader()

	if got, want := len(header), 44; got != want {
		t.Fatalf("header length: got %d, want %d", got, want)
	}
	if !bytes.Equal(header[0:4], []byte("RIFF")) {
		t.Errorf("missing RIFF magic: %q", header[0:4])
	}
	if got, want := binary.LittleEndian.Uint32(header[4:8]), uint32(1024+32); got != want {
		t.Errorf("riff size: got %d, want %d", got, want)
	}
	if !bytes.Equal(header[8:12], []byte("WAVE")) {
		t.Errorf("missing WAVE magic: %q", header[8:12])
	}
	if got, want := binary.LittleEndian.Uint16(header[20:22]), uint16(0x0001); got != want {
		t.Errorf("format tag: got %#x, want %#x", got, want)
	}
	if got, want := binary.LittleEndian.Uint16(header[22:24]), uint16(2); got != want {
		t.Errorf("channels: got %d, want %d", got, want)
	}
	if got, want := binary.LittleEndian.Uint32(header[24:28]), uint32(48000); got != want {
		t.Errorf("samples per second: got %d, want %d", got, want)
	}
	// Block align and byte rate are recomputed, not copied.
	if got, want := binary.LittleEndian.Uint32(header[28:32]), uint32(48000*4); got != want {
		t.Errorf("avg bytes per second: got %d, want %d", got, want)
	}
	if got, want := binary.LittleEndian.Uint16(header[32:34]), uint16(4); got != want {
		t.Errorf("block align: got %d, want %d", got, want)
	}
	if got, want := binary.LittleEndian.Uint16(header[34:36]), uint16(16); got != want {
		t.Errorf("bits per sample: got %d, want %d", got, want)
	}
	if !bytes.Equal(header[36:40], []byte("data")) {
		t.Errorf("missing data chunk: %q", header[36:40])
	}
	if got, want := binary.LittleEndian.Uint32(header[40:44]), uint32(1024); got != want {
		t.Errorf("data size: got %d, want %d", got, want)
	}
}

func TestWavADPCMHeader(t *testing.T) {
	t.Parallel()

	h := &Header{
		Format:                ADPCM,
		Channels:              1,
		SamplesPerSecond:      22050,
		BitsPerSample:         4,
		AverageBytesPerSecond: 11155,
		BlockAlign:            512,
		SamplesPerBlock:       1012,
		Size:                  4096,
	}
	header := h.wavADPCMHeader()

	if got, want := len(header), 78; got != want {
		t.Fatalf("header length: got %d, want %d", got, want)
	}
	if got, want := binary.LittleEndian.Uint32(header[4:8]), uint32(4096+66); got != want {
		t.Errorf("riff size: got %d, want %d", got, want)
	}
	if got, want := binary.LittleEndian.Uint32(header[16:20]), uint32(50); got != want {
		t.Errorf("fmt chunk size: got %d, want %d", got, want)
	}
	if got, want := binary.LittleEndian.Uint16(header[20:22]), uint16(0x0002); got != want {
		t.Errorf("format tag: got %#x, want %#x", got, want)
	}
	// Unlike PCM, the stored rate fields are written as-is.
	if got, want := binary.LittleEndian.Uint32(header[28:32]), uint32(11155); got != want {
		t.Errorf("avg bytes per second: got %d, want %d", got, want)
	}
	if got, want := binary.LittleEndian.Uint16(header[32:34]), uint16(512); got != want {
		t.Errorf("block align: got %d, want %d", got, want)
	}
	if got, want := binary.LittleEndian.Uint16(header[36:38]), uint16(32); got != want {
		t.Errorf("extension size: got %d, want %d", got, want)
	}
	if got, want := binary.LittleEndian.Uint16(header[38:40]), uint16(1012); got != want {
		t.Errorf("samples per block: got %d, want %d", got, want)
	}
	if got, want := binary.LittleEndian.Uint16(header[40:42]), uint16(7); got != want {
		t.Errorf("coefficient count: got %d, want %d", got, want)
	}
	wantCoefficients := []int16{256, 0, 512, -256, 0, 0, 192, 64, 240, 0, 460, -208, 392, -232}
	for i, want := range wantCoefficients {
		got := int16(binary.LittleEndian.Uint16(header[42+2*i : 44+2*i]))
		if got != want {
			t.Errorf("coefficient %d: got %d, want %d", i, got, want)
		}
	}
	if !bytes.Equal(header[70:74], []byte("data")) {
		t.Errorf("missing data chunk: %q", header[70:74])
	}
	if got, want := binary.LittleEndian.Uint32(header[74:78]), uint32(4096); got != want {
		t.Errorf("data size: got %d, want %d", got, want)
	}
}
