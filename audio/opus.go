package audio

import (
	"bytes"
)

// opusPreSkip is the number of samples a decoder discards at stream
// start; the cache payloads are all encoded with this value.
const opusPreSkip = 312

// opusHead builds the OpusHead packet body (RFC 7845, section 5.1) with
// channel mapping family 0.
func (h *Header) opusHead() []byte {
	buf := bytes.NewBuffer(make([]byte, 0, 19))
	buf.WriteString("OpusHead")
	buf.WriteByte(1) // version
	buf.WriteByte(h.Channels)
	le(buf, uint16(opusPreSkip))
	le(buf, h.SamplesPerSecond)
	le(buf, int16(0)) // output gain
	buf.WriteByte(0)  // channel mapping family
	return buf.Bytes()
}

// opusTags builds the OpusTags packet body: a length-prefixed vendor
// string followed by length-prefixed comments.
func opusTags(vendor string, comments []string) []byte {
	buf := &bytes.Buffer{}
	buf.WriteString("OpusTags")
	le(buf, uint32(len(vendor)))
	buf.WriteString(vendor)
	le(buf, uint32(len(comments)))
	for _, comment := range comments {
		le(buf, uint32(len(comment)))
		buf.WriteString(comment)
	}
	return buf.Bytes()
}

// opusHeaderPages renders the two header pages every Opus stream starts
// with: OpusHead on page 0 (beginning of stream), OpusTags on page 1.
func (h *Header) opusHeaderPages(vendor string, comments []string) []byte {
	head := h.opusHead()
	headPage := oggPage{
		headerType:   0x02, // beginning of stream
		granule:      0,
		streamSerial: h.StreamSerial,
		sequence:     0,
		segmentTable: segmentTable(len(head), 255),
		payload:      head,
	}

	tags := opusTags(vendor, comments)
	tagsPage := oggPage{
		headerType:   0x00,
		granule:      0,
		streamSerial: h.StreamSerial,
		sequence:     1,
		segmentTable: segmentTable(len(tags), 255),
		payload:      tags,
	}

	return append(headPage.marshal(), tagsPage.marshal()...)
}
