package http_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/libgit2-go/transport/transport"
	transporthttp "github.com/libgit2-go/transport/transport/http"
)

func TestInfoRefsRequest(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Write([]byte("001e# service=git-upload-pack\n0000"))
	}))
	defer srv.Close()

	sub := transporthttp.Subtransport{Client: srv.Client()}
	stream, err := sub.Action(srv.URL, transport.UploadPackLs)
	require.NoError(t, err)
	defer stream.Free()

	body, err := io.ReadAll(stream)
	require.NoError(t, err)
	require.Contains(t, string(body), "service=git-upload-pack")
	require.Equal(t, "/info/refs", gotPath)
	require.Equal(t, "service=git-upload-pack", gotQuery)
}

func TestUploadPackFlushesOnFirstRead(t *testing.T) {
	var gotContentType string
	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.Write([]byte("0008NAK\n0000"))
	}))
	defer srv.Close()

	sub := transporthttp.Subtransport{Client: srv.Client()}
	stream, err := sub.Action(srv.URL, transport.UploadPack)
	require.NoError(t, err)
	defer stream.Free()

	_, err = stream.Write([]byte("0032want aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa\n"))
	require.NoError(t, err)

	out, err := io.ReadAll(stream)
	require.NoError(t, err)

	require.Equal(t, "application/x-git-upload-pack-request", gotContentType)
	require.Contains(t, gotBody, "want ")
	require.Contains(t, string(out), "NAK")
}

func TestWithProxyConfiguresTransport(t *testing.T) {
	sub := transporthttp.NewTransport(transporthttp.WithProxy(transport.ProxyOptions{
		URL:      "http://proxy.example.com:8080",
		Username: "alice",
		Password: "secret",
	}))

	rt, ok := sub.Client.Transport.(*http.Transport)
	require.True(t, ok)
	require.NotNil(t, rt.Proxy)

	req, err := http.NewRequest(http.MethodGet, "http://example.com/repo.git", nil)
	require.NoError(t, err)
	proxyURL, err := rt.Proxy(req)
	require.NoError(t, err)
	require.Equal(t, "proxy.example.com:8080", proxyURL.Host)
	require.Equal(t, "alice", proxyURL.User.Username())
}

func TestNewTransportWithoutOptionsLeavesDefaultRoundTripper(t *testing.T) {
	sub := transporthttp.NewTransport()
	require.Nil(t, sub.Client.Transport)
}
