package texture

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/xerrors"

	lotus "github.com/sehnryr/lotus-lib"
	"github.com/sehnryr/lotus-lib/compression"
)

// IsTexture reports whether the H-cache node holds a texture asset: a
// .png name whose header payload parses and carries a texture file type.
// Malformed headers classify as false; other failures surface.
func IsTexture(pkg *lotus.Package, node *lotus.Node) (bool, error) {
	if !strings.HasSuffix(node.Name(), ".png") {
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

// Decode reconstructs the DDS file for an H-cache texture node and
// returns its bytes together with the output filename.
func Decode(pkg *lotus.Package, node *lotus.Node) ([]byte, string, error) {
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
		Stringer("header", header).
		Uint8("fCacheImageCount", header.FCacheImageCount).
		Msg("texture header parsed")

	var out bytes.Buffer
	out.Write(header.DDSHeader())

	var pixels []byte
	if header.FCacheImageCount > 0 {
		pixels, err = fCachePixels(pkg, node, header)
	} else {
		pixels, err = bCachePixels(pkg, node, header)
	}
	if err != nil {
		return nil, "", err
	}
	out.Write(pixels)

	name := strings.TrimSuffix(node.Name(), ".png") + ".dds"
	return out.Bytes(), name, nil
}

// fCachePixels selects the largest mip from the F cache. With a mip
// offset list the offset of the last mip is snapped to the nearest block
// boundary and decompression starts there; without one the whole entry is
// decompressed and the tail keeps only the largest mip.
func fCachePixels(pkg *lotus.Package, node *lotus.Node, header *Header) ([]byte, error) {
	fCache := pkg.Get(lotus.PackageF)
	if fCache == nil {
		return nil, &lotus.NotFoundError{What: fmt.Sprintf("F cache of package %s", pkg.Name())}
	}
	if err := fCache.ReadToc(); err != nil {
		return nil, err
	}
	fNode, err := fCache.FindFile(node.Path())
	if err != nil {
		return nil, err
	}

	if len(header.FCacheImageOffsets) == 0 {
		// Old headers carry no mip offsets; take the tail of the whole
		// entry.
		data, err := fCache.Decompress(fNode)
		if err != nil {
			return nil, err
		}
		return tail(data, header.Size(), node.Path())
	}

	subOffset := header.FCacheImageOffsets[len(header.FCacheImageOffsets)-1]

	f, err := os.Open(fCache.CachePath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &lotus.NotFoundError{What: fmt.Sprintf("cache file %s", fCache.CachePath())}
		}
		return nil, xerrors.Errorf("opening cache: %w", err)
	}
	defer f.Close()

	realOffset, err := compression.ResolveSubOffset(f, fNode.CacheOffset(), int64(subOffset))
	if err != nil {
		return nil, xerrors.Errorf("resolving mip offset of %s: %w", node.Path(), err)
	}
	log.Debug().
		Str("entry", node.Path()).
		Uint32("subOffset", subOffset).
		Int64("realOffset", realOffset).
		Msg("mip offset resolved")

	if _, err := f.Seek(fNode.CacheOffset()+realOffset, io.SeekStart); err != nil {
		return nil, err
	}
	data, err := compression.DecompressBlocks(f, int(fNode.CompLen()), header.Size())
	if err != nil {
		return nil, xerrors.Errorf("decompressing %s: %w", node.Path(), err)
	}
	return data, nil
}

// bCachePixels decompresses the whole B-cache entry and keeps the tail.
func bCachePixels(pkg *lotus.Package, node *lotus.Node, header *Header) ([]byte, error) {
	bCache := pkg.Get(lotus.PackageB)
	if bCache == nil {
		return nil, &lotus.NotFoundError{What: fmt.Sprintf("B cache of package %s", pkg.Name())}
	}
	if err := bCache.ReadToc(); err != nil {
		return nil, err
	}
	bNode, err := bCache.FindFile(node.Path())
	if err != nil {
		return nil, err
	}
	data, err := bCache.Decompress(bNode)
	if err != nil {
		return nil, err
	}
	return tail(data, header.Size(), node.Path())
}

func tail(data []byte, size int, path string) ([]byte, error) {
	if len(data) < size {
		return nil, &lotus.FormatError{Msg: fmt.Sprintf("%s: %d payload bytes for a %d byte image", path, len(data), size)}
	}
	return data[len(data)-size:], nil
}
