// Package sideband demultiplexes the three side-band channels a server
// may interleave once side-band or side-band-64k is negotiated: pack data
// (channel 1), human-readable progress (channel 2), and a fatal error
// (channel 3). It mirrors the dispatch in libgit2's
// src/transports/smart_protocol.c download_pack loop, which switches on
// the same three channel bytes read from the first byte of each
// side-banded pkt-line payload.
package sideband

import "fmt"

// Channel identifies which of the three side-band streams a payload
// belongs to.
type Channel byte

const (
	// PackData carries raw packfile bytes.
	PackData Channel = 1
	// Progress carries human-readable progress text.
	Progress Channel = 2
	// Error carries a fatal, UTF-8 error message; its arrival always
	// terminates the transfer.
	Error Channel = 3
)

// ErrUnknownChannel is returned by Demux when the first payload byte is
// not one of the three recognized channels.
type ErrUnknownChannel byte

func (e ErrUnknownChannel) Error() string {
	return fmt.Sprintf("invalid side-band channel %d", byte(e))
}

// Demux splits a side-banded pkt-line payload into its channel and the
// remaining bytes. payload must be non-empty; an empty payload (a
// flush-pkt) is not a side-band frame at all and should be handled by the
// caller before Demux is reached.
func Demux(payload []byte) (Channel, []byte, error) {
	if len(payload) == 0 {
		return 0, nil, fmt.Errorf("empty side-band payload")
	}

	ch := Channel(payload[0])
	switch ch {
	case PackData, Progress, Error:
		return ch, payload[1:], nil
	default:
		return 0, nil, ErrUnknownChannel(payload[0])
	}
}
