package audio

import (
	"fmt"

	lotus "github.com/sehnryr/lotus-lib"
)

// Kind is the file-type tag an H-cache header carries for audio assets.
type Kind uint32

const (
	// KindStream is the only audio file type observed in the caches.
	KindStream Kind = 0x8B
)

// ParseKind validates a raw header file-type tag.
func ParseKind(v uint32) (Kind, error) {
	switch v {
	case uint32(KindStream):
		return KindStream, nil
	}
	return 0, &lotus.FormatError{Msg: fmt.Sprintf("unknown audio kind %#x", v)}
}
