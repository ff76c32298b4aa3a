package pktline

import "io"

// Scanner reads successive pkt-lines off an io.Reader. Unlike Decode, which
// works against an already-buffered slice, Scanner owns the refill loop.
// The smart transport does not use it, for git:// or http(s)://: its
// receive buffer (which must track partial frames across refills while also
// handling cancellation and side-band demuxing) calls Decode directly.
type Scanner struct {
	r   io.Reader
	err error
	buf [MaxSize]byte
	n   int
}

// NewScanner returns a Scanner reading pkt-lines from r.
func NewScanner(r io.Reader) *Scanner {
	return &Scanner{r: r}
}

// Scan advances to the next pkt-line. It returns false at EOF or on the
// first error; Err distinguishes the two.
func (s *Scanner) Scan() bool {
	if s.r == nil || s.err != nil {
		return false
	}

	var hdr [lenSize]byte
	if _, err := io.ReadFull(s.r, hdr[:]); err != nil {
		if err != io.EOF {
			s.err = err
		}
		return false
	}

	length, err := ParseLength(hdr)
	if err != nil {
		s.err = err
		return false
	}

	if length == 0 {
		s.n = 0
		return true
	}

	if _, err := io.ReadFull(s.r, s.buf[:length]); err != nil {
		s.err = err
		return false
	}
	s.n = length
	return true
}

// Err returns the first non-EOF error encountered by Scan.
func (s *Scanner) Err() error {
	return s.err
}

// Bytes returns the most recent pkt-line's payload. An empty slice means a
// flush-pkt. The backing array is reused by the next Scan call.
func (s *Scanner) Bytes() []byte {
	return s.buf[:s.n]
}
