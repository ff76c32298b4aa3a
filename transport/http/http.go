// Package http implements the http(s):// subtransport: a stateless,
// request/response carrier (spec.md §4.6 "RPC discipline"). Grounded on
// go-git's plumbing/transport/http/common.go — same header conventions
// (User-Agent, the x-<service>-request/-result content types; no
// Git-Protocol header is sent) and the same applyHeaders-then-doRequest shape, trimmed to the
// two requests the fetch core needs: GET info/refs and POST
// git-upload-pack.
package http

import (
	"bytes"
	"fmt"
	"net/http"
	"net/url"

	"github.com/libgit2-go/transport/transport"
)

const uploadPackService = "git-upload-pack"

func init() {
	transport.SetHTTPSubtransport(NewTransport())
}

// Subtransport is the RPC (spec.md §4.6) http(s):// carrier: every Action
// call is an independent transaction, so the smart transport must
// re-prefix negotiation bursts with prior state across calls.
type Subtransport struct {
	Client *http.Client
}

// Option configures a Subtransport at construction time, in the style of
// go-git's functional-option HTTP client wiring.
type Option func(*Subtransport)

// WithProxy routes the subtransport's requests through opts, grounded on
// plumbing/transport/http/common.go's proxy-from-options handling.
func WithProxy(opts transport.ProxyOptions) Option {
	return func(s *Subtransport) {
		if opts.URL == "" {
			return
		}
		proxyURL, err := url.Parse(opts.URL)
		if err != nil {
			return
		}
		if opts.Username != "" {
			proxyURL.User = url.UserPassword(opts.Username, opts.Password)
		}
		rt := s.Client.Transport
		httpTransport, ok := rt.(*http.Transport)
		if !ok || httpTransport == nil {
			httpTransport = &http.Transport{}
		} else {
			httpTransport = httpTransport.Clone()
		}
		httpTransport.Proxy = http.ProxyURL(proxyURL)
		s.Client.Transport = httpTransport
	}
}

// NewTransport builds a Subtransport with a private *http.Client so
// options like WithProxy never mutate http.DefaultClient.
func NewTransport(opts ...Option) *Subtransport {
	s := &Subtransport{Client: &http.Client{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RPC implements transport.Subtransport.
func (Subtransport) RPC() bool { return true }

// Action implements transport.Subtransport.
func (s Subtransport) Action(rawurl string, service transport.Service) (transport.Stream, error) {
	switch service {
	case transport.UploadPackLs:
		return s.infoRefs(rawurl)
	case transport.UploadPack:
		return s.uploadPack(rawurl)
	default:
		return nil, transport.ErrUnsupported
	}
}

// infoRefs performs the smart-HTTP discovery GET immediately and hands
// back the response body as a read-only stream.
func (s Subtransport) infoRefs(rawurl string) (transport.Stream, error) {
	url := fmt.Sprintf("%s/info/refs?service=%s", rawurl, uploadPackService)
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	applyCommonHeaders(req)

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, transport.NewNetworkError("unexpected status %d fetching %s", resp.StatusCode, url)
	}

	return &readStream{body: resp.Body}, nil
}

// uploadPack returns a stream that buffers writes into a request body
// and, on the first Read, POSTs it and starts streaming the response —
// exactly the RPC discipline spec.md §4.6 requires: writes happen first,
// the first read flushes the request.
func (s Subtransport) uploadPack(rawurl string) (transport.Stream, error) {
	return &rpcStream{client: s.Client, url: rawurl + "/" + uploadPackService}, nil
}

func applyCommonHeaders(req *http.Request) {
	req.Header.Set("User-Agent", "git/2.0")
}

// readStream is a read-only stream over an HTTP response body (the
// info/refs discovery request has no request body beyond headers).
type readStream struct {
	body interface {
		Read(p []byte) (int, error)
		Close() error
	}
}

func (r *readStream) Read(p []byte) (int, error) { return r.body.Read(p) }
func (r *readStream) Write(p []byte) (int, error) {
	return 0, transport.NewProtocolError("info/refs stream does not accept writes")
}
func (r *readStream) Free() error { return r.body.Close() }

// rpcStream implements the buffer-then-POST discipline for the
// git-upload-pack service.
type rpcStream struct {
	client *http.Client
	url    string

	req     bytes.Buffer
	resp    interface {
		Read(p []byte) (int, error)
		Close() error
	}
	started bool
}

func (s *rpcStream) Write(p []byte) (int, error) {
	if s.started {
		return 0, transport.NewProtocolError("upload-pack stream already flushed; open a new one")
	}
	return s.req.Write(p)
}

func (s *rpcStream) Read(p []byte) (int, error) {
	if !s.started {
		if err := s.flush(); err != nil {
			return 0, err
		}
	}
	return s.resp.Read(p)
}

func (s *rpcStream) flush() error {
	httpReq, err := http.NewRequest(http.MethodPost, s.url, bytes.NewReader(s.req.Bytes()))
	if err != nil {
		return err
	}
	applyCommonHeaders(httpReq)
	httpReq.Header.Set("Content-Type", fmt.Sprintf("application/x-%s-request", uploadPackService))
	httpReq.Header.Set("Accept", fmt.Sprintf("application/x-%s-result", uploadPackService))

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return transport.NewNetworkError("unexpected status %d posting %s", resp.StatusCode, s.url)
	}

	s.resp = resp.Body
	s.started = true
	return nil
}

func (s *rpcStream) Free() error {
	if s.resp != nil {
		return s.resp.Close()
	}
	return nil
}
