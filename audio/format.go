// Package audio reconstructs playable audio files from cache-pair
// archives: WAV containers for PCM and MS-ADPCM streams, complete
// Ogg/Opus bitstreams for Opus.
package audio

import (
	"fmt"

	lotus "github.com/sehnryr/lotus-lib"
)

// Format is the audio compression format recorded in an asset header.
type Format int

const (
	PCM   Format = 0x00
	ADPCM Format = 0x05
	Opus  Format = 0x07
)

func (f Format) String() string {
	switch f {
	case PCM:
		return "PCM"
	case ADPCM:
		return "ADPCM"
	case Opus:
		return "Opus"
	}
	return fmt.Sprintf("Format(%#x)", int(f))
}

// ParseFormat validates a raw header format tag.
func ParseFormat(tag uint32) (Format, error) {
	switch tag {
	case 0x00:
		return PCM, nil
	case 0x05:
		return ADPCM, nil
	case 0x07:
		return Opus, nil
	}
	return 0, &lotus.FormatError{Msg: fmt.Sprintf("unknown audio format tag %#x", tag)}
}
