package compression

// OodleDecoder decompresses a Kraken-compressed block. It must fill dst
// completely.
type OodleDecoder func(src, dst []byte) error

// The Oodle codec is proprietary; callers that can link one (or shell out
// to one) install it process-wide here. Without a registration, Oodle
// blocks fail with an Error.
var oodleDecoder OodleDecoder

// RegisterOodle installs the decoder used for Oodle Kraken blocks. Call it
// once during setup, before any decompression runs.
func RegisterOodle(fn OodleDecoder) {
	oodleDecoder = fn
}

func decompressOodle(src, dst []byte) error {
	if oodleDecoder == nil {
		return &Error{Msg: "oodle block encountered but no decoder is registered (see compression.RegisterOodle)"}
	}
	if err := oodleDecoder(src, dst); err != nil {
		return &Error{Msg: "oodle: " + err.Error()}
	}
	return nil
}
