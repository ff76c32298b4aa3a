package pktline_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/libgit2-go/transport/pktline"
)

type SuitePktline struct {
	suite.Suite
}

func TestSuitePktline(t *testing.T) {
	suite.Run(t, new(SuitePktline))
}

func (s *SuitePktline) TestDecodeFlush() {
	payload, consumed, err := pktline.Decode([]byte("0000"))
	s.NoError(err)
	s.Nil(payload)
	s.Equal(4, consumed)
}

func (s *SuitePktline) TestDecodePayload() {
	payload, consumed, err := pktline.Decode([]byte("0008abcd0000"))
	s.NoError(err)
	s.Equal([]byte("abcd"), payload)
	s.Equal(8, consumed)
}

func (s *SuitePktline) TestDecodeBufferShort() {
	_, _, err := pktline.Decode([]byte("000aabc"))
	s.ErrorIs(err, pktline.ErrBufferShort)
}

func (s *SuitePktline) TestDecodeInvalidLength() {
	for _, bad := range []string{"0001", "0002", "0003", "gorp", "ffff"} {
		_, _, err := pktline.Decode([]byte(bad))
		s.ErrorIs(err, pktline.ErrInvalidPktLen, bad)
	}
}

func (s *SuitePktline) TestEncodeDecodeRoundTrip() {
	var buf bytes.Buffer
	_, err := pktline.Encode(&buf, []byte("hello\n"))
	s.NoError(err)

	payload, consumed, err := pktline.Decode(buf.Bytes())
	s.NoError(err)
	s.Equal("hello\n", string(payload))
	s.Equal(buf.Len(), consumed)
}

func (s *SuitePktline) TestEncodeTooLong() {
	var buf bytes.Buffer
	_, err := pktline.Encode(&buf, []byte(strings.Repeat("a", pktline.MaxPayloadSize+1)))
	s.ErrorIs(err, pktline.ErrPayloadTooLong)
}

func (s *SuitePktline) TestWriteFlush() {
	var buf bytes.Buffer
	s.NoError(pktline.WriteFlush(&buf))
	s.Equal("0000", buf.String())
}
