package compression

import (
	"io"

	"golang.org/x/xerrors"
)

// DecompressPre reads a pre-ensmallening entry: compLen bytes at offset
// forming one size-prepended LZ4 frame that expands to decompLen bytes.
func DecompressPre(r io.ReadSeeker, offset int64, compLen, decompLen int) ([]byte, error) {
	if _, err := r.Seek(offset, io.SeekStart); err != nil {
		return nil, err
	}

	compressed := make([]byte, compLen)
	if _, err := io.ReadFull(r, compressed); err != nil {
		return nil, xerrors.Errorf("reading entry: %w", err)
	}

	decompressed := make([]byte, decompLen)
	if err := decompressLZ(compressed, decompressed); err != nil {
		return nil, err
	}
	return decompressed, nil
}
