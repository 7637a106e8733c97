package audio

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/google/go-cmp/cmp"

	lotus "github.com/sehnryr/lotus-lib"
	"github.com/sehnryr/lotus-lib/internal/cachetest"
)

// rawAudioHeaderBytes builds an H-cache audio header payload.
func rawAudioHeaderBytes(fileType, formatTag, sps uint32, bps, channels uint8, avg uint32, blockAlign, samplesPerBlock uint16, size uint32) []byte {
	buf := &bytes.Buffer{}
	buf.Write(bytes.Repeat([]byte{0xCD}, 16)) // hash
	binary.Write(buf, binary.LittleEndian, uint32(0)) // merged file count
	binary.Write(buf, binary.LittleEndian, uint32(0)) // arguments length
	binary.Write(buf, binary.LittleEndian, fileType)
	binary.Write(buf, binary.LittleEndian, formatTag)
	binary.Write(buf, binary.LittleEndian, uint32(0))
	buf.Write(make([]byte, 24))
	binary.Write(buf, binary.LittleEndian, sps)
	buf.WriteByte(bps)
	buf.WriteByte(channels)
	binary.Write(buf, binary.LittleEndian, uint32(0))
	binary.Write(buf, binary.LittleEndian, avg)
	binary.Write(buf, binary.LittleEndian, blockAlign)
	binary.Write(buf, binary.LittleEndian, samplesPerBlock)
	buf.Write(make([]byte, 12))
	binary.Write(buf, binary.LittleEndian, size)
	return buf.Bytes()
}

type parsedPage struct {
	headerType byte
	granule    uint64
	serial     uint32
	sequence   uint32
	payload    []byte
}

// parseOggPages walks a serialized Ogg stream and verifies every page CRC
// along the way.
func parseOggPages(t *testing.T, data []byte) []parsedPage {
	t.Helper()
	var pages []parsedPage
	for len(data) > 0 {
		if len(data) < 27 || !bytes.Equal(data[0:4], []byte("OggS")) {
			t.Fatalf("bad page at %d remaining bytes", len(data))
		}
		segmentCount := int(data[26])
		headerLen := 27 + segmentCount
		payloadLen := 0
		for _, lacing := range data[27:headerLen] {
			payloadLen += int(lacing)
		}
		pageLen := headerLen + payloadLen
		page := data[:pageLen]

		stored := binary.LittleEndian.Uint32(page[22:26])
		zeroed := append([]byte{}, page...)
		binary.LittleEndian.PutUint32(zeroed[22:26], 0)
		if got := oggCRC(zeroed); got != stored {
			t.Fatalf("page %d: stored crc %#x, recomputed %#x", len(pages), stored, got)
		}

		pages = append(pages, parsedPage{
			headerType: page[5],
			granule:    binary.LittleEndian.Uint64(page[6:14]),
			serial:     binary.LittleEndian.Uint32(page[14:18]),
			sequence:   binary.LittleEndian.Uint32(page[18:22]),
			payload:    page[headerLen:pageLen],
		})
		data = data[pageLen:]
	}
	return pages
}

func fixedSerial(t *testing.T, serial uint32) {
	t.Helper()
	orig := newStreamSerial
	newStreamSerial = func() uint32 { return serial }
	t.Cleanup(func() { newStreamSerial = orig })
}

func TestDecodePCM(t *testing.T) {
	dir := t.TempDir()

	header := rawAudioHeaderBytes(0x8B, 0x00, 48000, 16, 2, 0, 0, 0, 50)
	bPart := append(bytes.Repeat([]byte{0xEE}, 10), bytes.Repeat([]byte{'B'}, 20)...)
	fPart := bytes.Repeat([]byte{'F'}, 30)
	cachetest.WriteStored(t, dir, "H", "Test", map[string][]byte{"/Sounds/hit.wav": header})
	cachetest.WriteStored(t, dir, "B", "Test", map[string][]byte{"/Sounds/hit.wav": bPart})
	cachetest.WriteStored(t, dir, "F", "Test", map[string][]byte{"/Sounds/hit.wav": fPart})

	pkg := lotus.NewPackage(dir, "Test", true)
	if err := pkg.Get(lotus.PackageH).ReadToc(); err != nil {
		t.Fatal(err)
	}
	node, err := pkg.Get(lotus.PackageH).FindFile("/Sounds/hit.wav")
	if err != nil {
		t.Fatal(err)
	}

	data, name, err := Decode(pkg, node)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := name, "hit.wav"; got != want {
		t.Errorf("filename: got %q, want %q", got, want)
	}
	if got, want := len(data), 44+50; got != want {
		t.Fatalf("output length: got %d, want %d", got, want)
	}
	// The B prefix padding falls away: only the last 50 payload bytes
	// survive.
	want := append(bytes.Repeat([]byte{'B'}, 20), bytes.Repeat([]byte{'F'}, 30)...)
	if diff := cmp.Diff(want, data[44:]); diff != "" {
		t.Errorf("samples mismatch (-want +got):\n%s", diff)
	}
	if got, want := binary.LittleEndian.Uint32(data[4:8]), uint32(50+32); got != want {
		t.Errorf("riff size: got %d, want %d", got, want)
	}
}

func TestDecodeOpusSinglePage(t *testing.T) {
	dir := t.TempDir()
	fixedSerial(t, 0x12345678)

	header := rawAudioHeaderBytes(0x8B, 0x07, 48000, 16, 2, 0, 960, 0, 3000)
	payload := bytes.Repeat([]byte{0x42}, 3000)
	cachetest.WriteStored(t, dir, "H", "Test", map[string][]byte{"/Sounds/music.wav": header})
	cachetest.WriteStored(t, dir, "F", "Test", map[string][]byte{"/Sounds/music.wav": payload})

	pkg := lotus.NewPackage(dir, "Test", true)
	if err := pkg.Get(lotus.PackageH).ReadToc(); err != nil {
		t.Fatal(err)
	}
	node, err := pkg.Get(lotus.PackageH).FindFile("/Sounds/music.wav")
	if err != nil {
		t.Fatal(err)
	}

	data, name, err := Decode(pkg, node)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := name, "music.opus"; got != want {
		t.Errorf("filename: got %q, want %q", got, want)
	}

	pages := parseOggPages(t, data)
	if got, want := len(pages), 3; got != want {
		t.Fatalf("page count: got %d, want %d", got, want)
	}
	head, tags, first := pages[0], pages[1], pages[2]

	if head.headerType != 0x02 || head.granule != 0 || head.sequence != 0 {
		t.Errorf("head page: %+v", head)
	}
	if !bytes.HasPrefix(head.payload, []byte("OpusHead")) {
		t.Errorf("head payload: %q", head.payload[:8])
	}
	if tags.headerType != 0x00 || tags.sequence != 1 {
		t.Errorf("tags page: %+v", tags)
	}
	if !bytes.HasPrefix(tags.payload, []byte("OpusTags")) {
		t.Errorf("tags payload: %q", tags.payload[:8])
	}
	// 3000 bytes fit in one sub-48000 chunk, so a single data page closes
	// the stream.
	if first.headerType != 0x04 || first.granule != 48000 || first.sequence != 2 {
		t.Errorf("data page: %+v", first)
	}
	if got, want := len(first.payload), 3000; got != want {
		t.Errorf("data payload: got %d bytes, want %d", got, want)
	}
	for _, page := range pages {
		if page.serial != 0x12345678 {
			t.Errorf("serial: got %#x, want 0x12345678", page.serial)
		}
	}
}

func TestDecodeOpusMultiPage(t *testing.T) {
	dir := t.TempDir()
	fixedSerial(t, 7)

	// 96000 bytes is exactly two full 48000-byte chunks; the closing page
	// is empty but still carries end-of-stream.
	header := rawAudioHeaderBytes(0x8B, 0x07, 48000, 16, 2, 0, 960, 0, 96000)
	payload := bytes.Repeat([]byte{0x42}, 96000)
	cachetest.WriteStored(t, dir, "H", "Test", map[string][]byte{"/music.wav": header})
	cachetest.WriteStored(t, dir, "F", "Test", map[string][]byte{"/music.wav": payload})

	pkg := lotus.NewPackage(dir, "Test", true)
	if err := pkg.Get(lotus.PackageH).ReadToc(); err != nil {
		t.Fatal(err)
	}
	node, err := pkg.Get(lotus.PackageH).FindFile("/music.wav")
	if err != nil {
		t.Fatal(err)
	}

	data, _, err := Decode(pkg, node)
	if err != nil {
		t.Fatal(err)
	}

	pages := parseOggPages(t, data)
	if got, want := len(pages), 5; got != want {
		t.Fatalf("page count: got %d, want %d", got, want)
	}
	wantGranules := []uint64{48000, 96000, 144000}
	for i, page := range pages[2:] {
		if got, want := page.granule, wantGranules[i]; got != want {
			t.Errorf("data page %d: granule %d, want %d", i, got, want)
		}
		if got, want := page.sequence, uint32(i+2); got != want {
			t.Errorf("data page %d: sequence %d, want %d", i, got, want)
		}
		wantType := byte(0x00)
		if i == 2 {
			wantType = 0x04
		}
		if page.headerType != wantType {
			t.Errorf("data page %d: header type %#x, want %#x", i, page.headerType, wantType)
		}
	}
	if got := len(pages[4].payload); got != 0 {
		t.Errorf("closing page payload: got %d bytes, want 0", got)
	}
}

func TestDecodeOpusFallsBackToB(t *testing.T) {
	dir := t.TempDir()
	fixedSerial(t, 7)

	// The F part is short, so the B part completes the stream and the
	// first header.Size bytes win.
	header := rawAudioHeaderBytes(0x8B, 0x07, 48000, 16, 2, 0, 960, 0, 2000)
	fPart := bytes.Repeat([]byte{'F'}, 1200)
	bPart := bytes.Repeat([]byte{'B'}, 1500)
	cachetest.WriteStored(t, dir, "H", "Test", map[string][]byte{"/music.wav": header})
	cachetest.WriteStored(t, dir, "F", "Test", map[string][]byte{"/music.wav": fPart})
	cachetest.WriteStored(t, dir, "B", "Test", map[string][]byte{"/music.wav": bPart})

	pkg := lotus.NewPackage(dir, "Test", true)
	if err := pkg.Get(lotus.PackageH).ReadToc(); err != nil {
		t.Fatal(err)
	}
	node, err := pkg.Get(lotus.PackageH).FindFile("/music.wav")
	if err != nil {
		t.Fatal(err)
	}

	data, _, err := Decode(pkg, node)
	if err != nil {
		t.Fatal(err)
	}
	pages := parseOggPages(t, data)
	var stream []byte
	for _, page := range pages[2:] {
		stream = append(stream, page.payload...)
	}
	want := append(bytes.Repeat([]byte{'F'}, 1200), bytes.Repeat([]byte{'B'}, 800)...)
	if diff := cmp.Diff(want, stream); diff != "" {
		t.Errorf("stream mismatch (-want +got):\n%s", diff)
	}
}

func TestIsAudio(t *testing.T) {
	dir := t.TempDir()

	valid := rawAudioHeaderBytes(0x8B, 0x00, 48000, 16, 2, 0, 0, 0, 4)
	wrongKind := rawAudioHeaderBytes(0xA3, 0x00, 48000, 16, 2, 0, 0, 0, 4)
	cachetest.WriteStored(t, dir, "H", "Test", map[string][]byte{
		"/good.wav":  valid,
		"/kind.wav":  wrongKind,
		"/trunc.wav": {0x01, 0x02},
		"/other.png": valid,
	})

	pkg := lotus.NewPackage(dir, "Test", true)
	hCache := pkg.Get(lotus.PackageH)
	if err := hCache.ReadToc(); err != nil {
		t.Fatal(err)
	}

	for path, want := range map[string]bool{
		"/good.wav":  true,
		"/kind.wav":  false,
		"/trunc.wav": false,
		"/other.png": false,
	} {
		node, err := hCache.FindFile(path)
		if err != nil {
			t.Fatal(err)
		}
		got, err := IsAudio(pkg, node)
		if err != nil {
			t.Fatalf("%s: %v", path, err)
		}
		if got != want {
			t.Errorf("IsAudio(%s): got %v, want %v", path, got, want)
		}
	}
}

func TestParseHeaderRejectsUnknownFormat(t *testing.T) {
	t.Parallel()

	data := rawAudioHeaderBytes(0x8B, 0x99, 48000, 16, 2, 0, 0, 0, 4)
	_, err := ParseHeader(data)
	if !lotus.IsBadFormat(err) {
		t.Errorf("got %v, want FormatError", err)
	}
}
