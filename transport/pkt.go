package transport

import (
	"strings"

	"github.com/libgit2-go/transport/pktline"
	"github.com/libgit2-go/transport/sideband"
)

// PktType is the tagged-variant discriminator for a parsed pkt-line,
// spec.md §3's "pkt record (tagged variant)".
type PktType int

const (
	PktFlush PktType = iota
	PktRef
	PktAck
	PktNak
	PktData
	PktProgress
	PktErr
	PktComment
)

// AckStatus is the optional status suffix on an ACK line.
type AckStatus int

const (
	AckNone AckStatus = iota
	AckContinue
	AckCommon
	AckReady
)

// Pkt is one parsed frame. Only the fields relevant to its Type are
// populated; this mirrors the original's tagged-union git_pkt variants
// (git_pkt_ref, git_pkt_ack, git_pkt_data, ...) re-expressed as one struct
// with a discriminator, per spec.md §9.
type Pkt struct {
	Type PktType

	// REF
	OID          string
	Name         string
	Capabilities string // non-empty only for the first ref

	// ACK
	Status AckStatus

	// DATA / PROGRESS
	Data []byte

	// ERR
	Message string
}

// ParseLine parses one frame out of buf. sideband must be true only while
// inside download_pack after side-band (or side-band-64k) has been
// negotiated — everywhere else (ref advertisement, negotiation) a leading
// channel byte has no special meaning and the payload is parsed as a
// ref/ACK/NAK/ERR line instead (spec.md §4.3).
//
// ParseLine returns pktline.ErrBufferShort, unmodified, when buf does not
// yet hold a complete frame: this must propagate as-is so the caller
// refills and retries rather than treating it as a hard failure (spec.md
// §4.3, §7).
func ParseLine(buf []byte, inSideband bool) (pkt *Pkt, consumed int, err error) {
	payload, consumed, err := pktline.Decode(buf)
	if err != nil {
		return nil, 0, err
	}

	if payload == nil {
		return &Pkt{Type: PktFlush}, consumed, nil
	}

	if inSideband {
		ch, rest, serr := sideband.Demux(payload)
		if serr != nil {
			return nil, 0, NewProtocolError("%v", serr)
		}
		switch ch {
		case sideband.PackData:
			return &Pkt{Type: PktData, Data: rest}, consumed, nil
		case sideband.Progress:
			return &Pkt{Type: PktProgress, Data: rest}, consumed, nil
		case sideband.Error:
			return &Pkt{Type: PktErr, Message: string(rest)}, consumed, nil
		}
	}

	switch {
	case hasPrefix(payload, "ERR "):
		return &Pkt{Type: PktErr, Message: strings.TrimRight(string(payload[4:]), "\n")}, consumed, nil

	case hasPrefix(payload, "NAK"):
		return &Pkt{Type: PktNak}, consumed, nil

	case hasPrefix(payload, "ACK"):
		return parseAck(payload, consumed)

	case payload[0] == '#':
		return &Pkt{Type: PktComment, Message: strings.TrimRight(string(payload), "\n")}, consumed, nil

	default:
		return parseRef(payload, consumed)
	}
}

func hasPrefix(b []byte, s string) bool {
	return len(b) >= len(s) && string(b[:len(s)]) == s
}

func parseAck(payload []byte, consumed int) (*Pkt, int, error) {
	line := strings.TrimRight(string(payload), "\n")
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return nil, 0, NewProtocolError("malformed ACK line: %q", line)
	}

	pkt := &Pkt{Type: PktAck, OID: fields[1]}
	if len(fields) >= 3 {
		switch fields[2] {
		case "continue":
			pkt.Status = AckContinue
		case "common":
			pkt.Status = AckCommon
		case "ready":
			pkt.Status = AckReady
		default:
			return nil, 0, NewProtocolError("unknown ACK status: %q", fields[2])
		}
	}
	return pkt, consumed, nil
}

func parseRef(payload []byte, consumed int) (*Pkt, int, error) {
	line := payload
	if i := indexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}

	capabilities := ""
	if i := indexByte(line, 0); i >= 0 {
		capabilities = string(line[i+1:])
		line = line[:i]
	}

	sp := indexByte(line, ' ')
	if sp < 0 || sp != 40 {
		return nil, 0, NewProtocolError("malformed ref line: %q", string(line))
	}

	oid := string(line[:sp])
	if !isHex40(oid) {
		return nil, 0, NewProtocolError("malformed object id: %q", oid)
	}

	return &Pkt{
		Type:         PktRef,
		OID:          oid,
		Name:         string(line[sp+1:]),
		Capabilities: capabilities,
	}, consumed, nil
}

func indexByte(b []byte, c byte) int {
	for i, x := range b {
		if x == c {
			return i
		}
	}
	return -1
}

func isHex40(s string) bool {
	if len(s) != 40 {
		return false
	}
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}
