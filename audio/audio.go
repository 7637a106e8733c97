package audio

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	lotus "github.com/sehnryr/lotus-lib"
)

// Options tunes a decode. The zero value uses the stock vendor tags.
type Options struct {
	// Vendor is the OpusTags vendor string.
	Vendor string
	// Comments are the OpusTags comment strings.
	Comments []string
}

func (o *Options) withDefaults() Options {
	opts := *o
	if opts.Vendor == "" {
		opts.Vendor = "Warframe"
	}
	if opts.Comments == nil {
		opts.Comments = []string{"ARTIST=Warframe"}
	}
	return opts
}

// IsAudio reports whether the H-cache node holds an audio asset: a .wav
// name whose header payload parses and carries an audio file type.
// Malformed headers classify as false; other failures surface.
func IsAudio(pkg *lotus.Package, node *lotus.Node) (bool, error) {
	if !strings.HasSuffix(node.Name(), ".wav") {
		return false, nil
	}

	hCache := pkg.Get(lotus.PackageH)
	if hCache == nil {
		return false, &lotus.NotFoundError{What: fmt.Sprintf("H cache of package %s", pkg.Name())}
	}
	headerData, err := hCache.Decompress(node)
	if err != nil {
		return false, err
	}

	raw, err := ParseRawHeader(headerData)
	if err != nil {
		if lotus.IsBadFormat(err) {
			return false, nil
		}
		return false, err
	}
	if _, err := ParseKind(raw.FileType); err != nil {
		return false, nil
	}
	return true, nil
}

// Decode reconstructs the playable file for an H-cache audio node and
// returns its bytes together with the output filename.
func Decode(pkg *lotus.Package, node *lotus.Node) ([]byte, string, error) {
	return DecodeOptions(pkg, node, Options{})
}

func DecodeOptions(pkg *lotus.Package, node *lotus.Node, opts Options) ([]byte, string, error) {
	opts = opts.withDefaults()

	hCache := pkg.Get(lotus.PackageH)
	if hCache == nil {
		return nil, "", &lotus.NotFoundError{What: fmt.Sprintf("H cache of package %s", pkg.Name())}
	}
	headerData, err := hCache.Decompress(node)
	if err != nil {
		return nil, "", err
	}
	header, err := ParseHeader(headerData)
	if err != nil {
		return nil, "", err
	}
	log.Debug().
		Str("entry", node.Path()).
		Stringer("format", header.Format).
		Uint32("samplesPerSecond", header.SamplesPerSecond).
		Uint8("channels", header.Channels).
		Uint32("size", header.Size).
		Msg("audio header parsed")

	switch header.Format {
	case PCM, ADPCM:
		return decodeWav(pkg, node, header)
	case Opus:
		return decodeOpus(pkg, node, header, opts)
	}
	return nil, "", &lotus.FormatError{Msg: fmt.Sprintf("unhandled audio format %v", header.Format)}
}

// decodeWav assembles a PCM or ADPCM payload. B-cache data comes first,
// F-cache data after it, and the last header.Size bytes are the samples:
// the concatenation may carry prefix padding.
func decodeWav(pkg *lotus.Package, node *lotus.Node, header *Header) ([]byte, string, error) {
	var buf bytes.Buffer
	for _, t := range []lotus.PackageType{lotus.PackageB, lotus.PackageF} {
		data, err := cachePayload(pkg, t, node.Path())
		if err != nil {
			return nil, "", err
		}
		buf.Write(data)
	}

	if buf.Len() < int(header.Size) {
		return nil, "", &lotus.FormatError{Msg: fmt.Sprintf("%s: %d payload bytes for a %d byte stream", node.Path(), buf.Len(), header.Size)}
	}
	samples := buf.Bytes()[buf.Len()-int(header.Size):]

	var out bytes.Buffer
	if header.Format == PCM {
		out.Write(header.wavPCMHeader())
	} else {
		out.Write(header.wavADPCMHeader())
	}
	out.Write(samples)
	return out.Bytes(), replaceExt(node.Name(), ".wav"), nil
}

// decodeOpus assembles an Opus payload and wraps it in a complete Ogg
// stream. F-cache data comes first; the B cache fills in only when F is
// absent or short. The first header.Size bytes are the stream.
func decodeOpus(pkg *lotus.Package, node *lotus.Node, header *Header, opts Options) ([]byte, string, error) {
	var buf bytes.Buffer
	fData, err := cachePayload(pkg, lotus.PackageF, node.Path())
	if err != nil {
		return nil, "", err
	}
	buf.Write(fData)

	if buf.Len() != int(header.Size) {
		bData, err := cachePayload(pkg, lotus.PackageB, node.Path())
		if err != nil {
			return nil, "", err
		}
		buf.Write(bData)
	}

	if buf.Len() < int(header.Size) {
		return nil, "", &lotus.FormatError{Msg: fmt.Sprintf("%s: %d payload bytes for a %d byte stream", node.Path(), buf.Len(), header.Size)}
	}
	data := buf.Bytes()[:header.Size]

	if header.BlockAlign == 0 {
		return nil, "", &lotus.FormatError{Msg: fmt.Sprintf("%s: zero block align in opus header", node.Path())}
	}

	var out bytes.Buffer
	out.Write(header.opusHeaderPages(opts.Vendor, opts.Comments))

	// One page per 50 blocks. The granule track starts one second in and
	// the final page always carries end-of-stream, even when that makes
	// it empty.
	chunkSize := int(header.BlockAlign) * 50
	sequence := uint32(2)
	granule := uint64(header.SamplesPerSecond)
	for off := 0; off <= len(data); off += chunkSize {
		end := off + chunkSize
		if end > len(data) {
			end = len(data)
		}
		chunk := data[off:end]
		final := len(chunk) < chunkSize

		page := oggPage{
			headerType:   0x00,
			granule:      granule,
			streamSerial: header.StreamSerial,
			sequence:     sequence,
			segmentTable: segmentTable(len(chunk), int(header.BlockAlign)),
			payload:      chunk,
		}
		if final {
			page.headerType = 0x04 // end of stream
		}
		out.Write(page.marshal())

		sequence++
		granule += uint64(header.SamplesPerSecond)
		if final {
			break
		}
	}

	return out.Bytes(), replaceExt(node.Name(), ".opus"), nil
}

// cachePayload decompresses the node's counterpart in the given trio
// member, or returns nil when the member or the entry is absent.
func cachePayload(pkg *lotus.Package, t lotus.PackageType, path string) ([]byte, error) {
	cache := pkg.Get(t)
	if cache == nil {
		return nil, nil
	}
	if err := cache.ReadToc(); err != nil {
		return nil, err
	}
	node, err := cache.FindFile(path)
	if err != nil {
		if lotus.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	log.Debug().
		Str("entry", path).
		Stringer("cache", t).
		Int64("cacheOffset", node.CacheOffset()).
		Int32("compLen", node.CompLen()).
		Int32("len", node.Len()).
		Msg("cache part found")
	return cache.Decompress(node)
}

func replaceExt(name, ext string) string {
	if i := strings.LastIndexByte(name, '.'); i != -1 {
		name = name[:i]
	}
	return name + ext
}
