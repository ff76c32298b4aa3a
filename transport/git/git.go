// Package git implements the git:// subtransport: a persistent,
// non-multiplexed TCP carrier for the smart protocol's upload-pack
// service. Grounded on go-git's plumbing/transport/git/common.go, which
// opens the same kind of bare net.Dial("tcp", ...) connection and writes
// a single git-proto-request line before handing the connection back as
// a stream.
package git

import (
	"bytes"
	"fmt"
	"net"
	"strconv"

	"github.com/libgit2-go/transport/pktline"
	"github.com/libgit2-go/transport/transport"
)

func init() {
	transport.SetGitSubtransport(&Subtransport{})
}

// DefaultPort is the git:// daemon's well-known port.
const DefaultPort = 9418

// Subtransport is the non-RPC (spec.md §4.6) git:// carrier: one
// connection persists across the ls-refs, negotiation and pack phases,
// so Action only ever dials once per fetch — the smart transport keeps
// reusing the Stream it returns.
type Subtransport struct{}

// RPC implements transport.Subtransport.
func (Subtransport) RPC() bool { return false }

// Action dials the remote and writes the git-proto-request line. service
// is accepted for interface conformance; git:// does not distinguish the
// ls and negotiate phases at the transport level the way HTTP does.
func (Subtransport) Action(rawurl string, service transport.Service) (transport.Stream, error) {
	ep, err := transport.ParseEndpoint(rawurl)
	if err != nil {
		return nil, err
	}

	port := ep.Port
	if port == 0 {
		port = DefaultPort
	}

	conn, err := net.Dial("tcp", net.JoinHostPort(ep.Host, strconv.Itoa(port)))
	if err != nil {
		return nil, err
	}

	path := ep.Path
	if path == "" {
		path = "/"
	}

	var buf bytes.Buffer
	line := fmt.Sprintf("git-upload-pack %s\x00host=%s\x00", path, ep.Host)
	if _, err := pktline.EncodeString(&buf, line); err != nil {
		conn.Close()
		return nil, err
	}
	if _, err := conn.Write(buf.Bytes()); err != nil {
		conn.Close()
		return nil, err
	}

	return &stream{conn: conn}, nil
}

// stream wraps the TCP connection as a transport.Stream.
type stream struct {
	conn net.Conn
}

func (s *stream) Read(p []byte) (int, error)  { return s.conn.Read(p) }
func (s *stream) Write(p []byte) (int, error) { return s.conn.Write(p) }
func (s *stream) Free() error                 { return s.conn.Close() }
