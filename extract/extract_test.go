package extract

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	lotus "github.com/sehnryr/lotus-lib"
	"github.com/sehnryr/lotus-lib/internal/cachetest"
)

func pcmHeaderBytes(size uint32) []byte {
	buf := &bytes.Buffer{}
	buf.Write(bytes.Repeat([]byte{0xCD}, 16))
	binary.Write(buf, binary.LittleEndian, uint32(0)) // merged file count
	binary.Write(buf, binary.LittleEndian, uint32(0)) // arguments length
	binary.Write(buf, binary.LittleEndian, uint32(0x8B))
	binary.Write(buf, binary.LittleEndian, uint32(0x00)) // PCM
	binary.Write(buf, binary.LittleEndian, uint32(0))
	buf.Write(make([]byte, 24))
	binary.Write(buf, binary.LittleEndian, uint32(48000))
	buf.WriteByte(16)
	buf.WriteByte(2)
	binary.Write(buf, binary.LittleEndian, uint32(0))
	binary.Write(buf, binary.LittleEndian, uint32(0))
	binary.Write(buf, binary.LittleEndian, uint16(0))
	binary.Write(buf, binary.LittleEndian, uint16(0))
	buf.Write(make([]byte, 12))
	binary.Write(buf, binary.LittleEndian, size)
	return buf.Bytes()
}

func textureHeaderBytes() []byte {
	buf := &bytes.Buffer{}
	buf.Write(bytes.Repeat([]byte{0xCD}, 16))
	binary.Write(buf, binary.LittleEndian, uint32(0))
	binary.Write(buf, binary.LittleEndian, uint32(0))
	binary.Write(buf, binary.LittleEndian, uint32(0xA3))
	buf.Write([]byte{0, 0, 0, 0x00}) // BC1
	binary.Write(buf, binary.LittleEndian, uint32(0)) // mip map count
	binary.Write(buf, binary.LittleEndian, uint16(1))
	binary.Write(buf, binary.LittleEndian, uint16(1))
	binary.Write(buf, binary.LittleEndian, uint16(0))
	binary.Write(buf, binary.LittleEndian, uint16(0))
	binary.Write(buf, binary.LittleEndian, uint32(8))
	return buf.Bytes()
}

func TestExtractPackage(t *testing.T) {
	dir := t.TempDir()
	outDir := t.TempDir()

	samples := bytes.Repeat([]byte{'S'}, 64)
	pixels := bytes.Repeat([]byte{'P'}, 32)
	cachetest.WriteStored(t, dir, "H", "Test", map[string][]byte{
		"/Sounds/hit.wav":   pcmHeaderBytes(64),
		"/Textures/map.png": textureHeaderBytes(),
		"/Scripts/code.lua": {0x01, 0x02, 0x03},
	})
	cachetest.WriteStored(t, dir, "B", "Test", map[string][]byte{
		"/Sounds/hit.wav":   samples,
		"/Textures/map.png": pixels,
	})

	pkg := lotus.NewPackage(dir, "Test", true)
	if err := Package(pkg, outDir, Options{Concurrency: 2}); err != nil {
		t.Fatal(err)
	}

	wav, err := os.ReadFile(filepath.Join(outDir, "Sounds", "hit.wav"))
	if err != nil {
		t.Fatal(err)
	}
	if got, want := len(wav), 44+64; got != want {
		t.Errorf("wav length: got %d, want %d", got, want)
	}
	if !bytes.Equal(wav[0:4], []byte("RIFF")) {
		t.Errorf("wav magic: %q", wav[0:4])
	}

	dds, err := os.ReadFile(filepath.Join(outDir, "Textures", "map.dds"))
	if err != nil {
		t.Fatal(err)
	}
	if got, want := len(dds), 4+124+32; got != want {
		t.Errorf("dds length: got %d, want %d", got, want)
	}
	if !bytes.Equal(dds[0:4], []byte("DDS ")) {
		t.Errorf("dds magic: %q", dds[0:4])
	}

	// The unrecognized entry is skipped, not copied.
	if _, err := os.Stat(filepath.Join(outDir, "Scripts", "code.lua")); !os.IsNotExist(err) {
		t.Errorf("unexpected output for unrecognized entry: %v", err)
	}
}
