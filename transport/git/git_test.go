package git_test

import (
	"bufio"
	"io"
	"net"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/libgit2-go/transport/transport"
	transportgit "github.com/libgit2-go/transport/transport/git"
)

func TestActionSendsGitProtoRequest(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	received := make(chan string, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			received <- ""
			return
		}
		defer conn.Close()

		r := bufio.NewReader(conn)
		// 4 byte length header, then the request itself: the command and
		// path, then the host parameter, each NUL-terminated.
		hdr := make([]byte, 4)
		_, _ = io.ReadFull(r, hdr)
		line, _ := r.ReadString(0)
		host, _ := r.ReadString(0)
		received <- line + host
	}()

	sub := transportgit.Subtransport{}
	url := "git://" + ln.Addr().String() + "/repo.git"

	stream, err := sub.Action(url, transport.UploadPackLs)
	require.NoError(t, err)
	defer stream.Free()

	got := <-received
	require.Contains(t, got, "git-upload-pack /repo.git")
	require.True(t, strings.Contains(got, "host="))
}

func TestRPCIsFalse(t *testing.T) {
	require.False(t, transportgit.Subtransport{}.RPC())
}
