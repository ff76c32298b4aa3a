// Package pktline implements Git's pkt-line framing: a four hex digit
// length prefix followed by length-4 bytes of payload. Length 0000 is the
// flush-pkt.
//
// This package only frames and unframes bytes; classifying a payload as a
// ref line, an ACK/NAK, a side-band chunk and so on is the concern of the
// transport package layered on top (see the teacher's own split between
// plumbing/format/pktline and plumbing/protocol/packp for the same
// separation of concerns).
package pktline

import (
	"errors"
	"fmt"
	"io"

	"github.com/libgit2-go/transport/internal/trace"
)

const (
	// lenSize is the width in bytes of the hex length header.
	lenSize = 4

	// MaxPayloadSize is the largest payload, in bytes, a single pkt-line
	// may carry (65516 payload bytes plus the 4-byte header gives a 65520,
	// 0xfff0, length header).
	MaxPayloadSize = 65516

	// MaxSize is the largest full pkt-line (header + payload) in bytes.
	MaxSize = lenSize + MaxPayloadSize
)

var (
	// ErrInvalidPktLen is returned when the length header cannot be
	// parsed as four hex digits, or falls outside {0} ∪ [4,65520].
	ErrInvalidPktLen = errors.New("invalid pkt-len")

	// ErrPayloadTooLong is returned by Write/Encode when the caller
	// supplies a payload larger than MaxPayloadSize.
	ErrPayloadTooLong = errors.New("payload is too long")

	// ErrBufferShort is returned by Decode/Parse when fewer bytes than
	// the announced length are available. It is always recoverable: the
	// caller should refill and retry, never propagate it as a hard
	// failure (spec §4.3, §7).
	ErrBufferShort = errors.New("buffer has less bytes than the announced length")

	// FlushPkt is the literal four bytes of a flush-pkt.
	FlushPkt = []byte("0000")
)

// Empty is the payload returned for a flush-pkt.
var Empty = []byte{}

func hexDecode(b [lenSize]byte) (int, error) {
	n := 0
	for _, c := range b {
		n <<= 4
		switch {
		case c >= '0' && c <= '9':
			n |= int(c - '0')
		case c >= 'a' && c <= 'f':
			n |= int(c-'a') + 10
		case c >= 'A' && c <= 'F':
			n |= int(c-'A') + 10
		default:
			return 0, ErrInvalidPktLen
		}
	}
	return n, nil
}

func hexEncode(n int) [lenSize]byte {
	const digits = "0123456789abcdef"
	var b [lenSize]byte
	for i := lenSize - 1; i >= 0; i-- {
		b[i] = digits[n&0xf]
		n >>= 4
	}
	return b
}

// ParseLength decodes the four byte hex length header into a payload
// length. It returns 0 for a flush-pkt and an error if the value lies
// outside {0} ∪ [4,MaxPayloadSize+lenSize].
func ParseLength(b [lenSize]byte) (int, error) {
	n, err := hexDecode(b)
	if err != nil {
		return 0, err
	}
	switch {
	case n == 0:
		return 0, nil
	case n < lenSize:
		return 0, ErrInvalidPktLen
	case n > MaxSize:
		return 0, ErrInvalidPktLen
	default:
		return n - lenSize, nil
	}
}

// Decode parses one pkt-line out of buf starting at offset 0. It returns
// the payload (nil for a flush-pkt), the number of bytes consumed from
// buf, and an error. ErrBufferShort means buf does not yet hold a
// complete frame; it is not a protocol error and never advances.
func Decode(buf []byte) (payload []byte, consumed int, err error) {
	if len(buf) < lenSize {
		return nil, 0, ErrBufferShort
	}

	var hdr [lenSize]byte
	copy(hdr[:], buf[:lenSize])
	length, err := ParseLength(hdr)
	if err != nil {
		return nil, 0, err
	}

	if length == 0 {
		trace.Packet.Printf("packet:     0000")
		return nil, lenSize, nil
	}

	if len(buf) < lenSize+length {
		return nil, 0, ErrBufferShort
	}

	trace.Packet.Printf("packet:     %04x %q", length+lenSize, buf[lenSize:lenSize+length])
	return buf[lenSize : lenSize+length], lenSize + length, nil
}

// Encode writes p as a single pkt-line to w. An empty, non-nil p still
// produces a minimal 4-byte ("0004") pkt-line; to write a flush-pkt use
// WriteFlush.
func Encode(w io.Writer, p []byte) (int, error) {
	if len(p) > MaxPayloadSize {
		return 0, ErrPayloadTooLong
	}
	trace.Packet.Printf("packet:     %04x %q", len(p)+lenSize, p)
	hdr := hexEncode(len(p) + lenSize)
	n, err := w.Write(hdr[:])
	if err != nil {
		return n, err
	}
	n2, err := w.Write(p)
	return n + n2, err
}

// EncodeString is a convenience wrapper around Encode.
func EncodeString(w io.Writer, s string) (int, error) {
	return Encode(w, []byte(s))
}

// EncodeLine writes s with a trailing newline as a single pkt-line, the
// shape every want/have/done line takes on the wire.
func EncodeLine(w io.Writer, format string, a ...interface{}) (int, error) {
	return EncodeString(w, fmt.Sprintf(format, a...)+"\n")
}

// WriteFlush writes a flush-pkt.
func WriteFlush(w io.Writer) error {
	trace.Packet.Printf("packet:     0000")
	_, err := w.Write(FlushPkt)
	return err
}
