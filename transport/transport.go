// Package transport implements the client side of Git's smart protocol
// fetch: URL dispatch, the pkt-line/capability/negotiation state machine,
// and the subtransport abstraction that lets it run unchanged over git://
// and http(s)://. It is a from-scratch Go expression of libgit2's
// src/transport.c + src/transports/smart_protocol.c, styled after
// go-git's plumbing/transport package (error-variable conventions,
// Endpoint type, Register-based dispatch) — see DESIGN.md for the
// per-file grounding.
package transport

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/libgit2-go/transport/indexer"
	"github.com/libgit2-go/transport/plumbing"
	"github.com/libgit2-go/transport/revwalk"
)

// Direction is the direction a transport is being used in. Only Fetch is
// implemented; Push is reserved (spec.md §1 non-goals).
type Direction int

const (
	Fetch Direction = iota
	Push
)

// Flags mirrors libgit2's git_transport_flags_t.
type Flags int

const (
	FlagsNone Flags = 0
	// NoCheckCert is stored by Connect and returned by ReadFlags. The http
	// subtransport does not read it: TLS peer verification is unchanged.
	NoCheckCert Flags = 1 << iota
)

// State is the transport's connectedness, spec.md §3's DISCONNECTED /
// CONNECTED invariant.
type State int

const (
	Disconnected State = iota
	Connected
)

// MessageCallback receives text the server emits out of band. The smart
// transport calls Callbacks.Progress with side-band channel 2 text. It does
// not call Callbacks.Error: an ERR line or side-band channel 3 message is
// returned as the failing operation's error instead.
type MessageCallback func(text string)

// ByteCountCallback is invoked during download_pack whenever accumulated
// received bytes cross the 100KiB threshold (spec.md §4.5, §8 law 6).
type ByteCountCallback func(receivedBytes int64)

// Callbacks bundles the optional notification hooks a caller may install.
type Callbacks struct {
	Progress  MessageCallback
	Error     MessageCallback
	ByteCount ByteCountCallback
}

// RefCallback is invoked once per advertised ref by Ls, in server order. A
// non-nil error short-circuits the iteration; Ls then returns ErrUserAbort,
// not the callback's error (spec.md §4.2).
type RefCallback func(ref WireRef) error

// Transport is the capability set spec.md §3 describes: connect, ls,
// negotiate_fetch, download_pack, and the surrounding lifecycle/ cancellation
// operations. Concrete variants: the smart transport (git/http), the local
// transport, and the dummy transport.
type Transport interface {
	// Connect opens the subtransport stream for url and reads the
	// reference advertisement to completion. Only valid in Fetch
	// direction today.
	Connect(url string, direction Direction, flags Flags) error

	// Ls yields each advertised ref to cb in server order.
	Ls(cb RefCallback) error

	// NegotiateFetch performs the want/have negotiation for the given
	// wanted refs. Requires a prior Connect.
	NegotiateFetch(repo NegotiationRepository, wants []WireRef) error

	// DownloadPack streams the resulting pack into idx.
	DownloadPack(idx PackSink) error

	IsConnected() bool
	ReadFlags() Flags

	SetCallbacks(cb Callbacks)

	// Cancel is the only method safe to call from a different
	// goroutine than the one driving the transport (spec.md §5).
	Cancel()

	Close() error
}

// WireRef is a ref as advertised by the remote, or a ref the caller wants.
type WireRef struct {
	Name string
	OID  string // 40 hex char object id
}

// NegotiationRepository is the narrow slice of the local object store that
// negotiate_fetch needs: a starting set of tips to push onto the revision
// walk (every non-symbolic, non-tag local ref) and a CommitLookup to drive
// it (spec.md §4.4 step 2 names this the "repository" collaborator, out of
// scope for this package — see revwalk.CommitLookup).
type NegotiationRepository interface {
	// LocalTips returns the oid of every local ref that is neither
	// symbolic nor under refs/tags/, in arbitrary order; the walk
	// itself imposes time-descending order.
	LocalTips() ([]plumbing.Hash, error)

	revwalk.CommitLookup
}

// PackSink is what download_pack streams the resulting pack into. It is
// satisfied by indexer.PackIndexer; declared independently here so this
// package does not import indexer's billy-backed concrete type, only the
// shape it needs (spec.md §4.5, §6).
type PackSink interface {
	Write(p []byte) (int, error)
	Finalize() error
	Stats() indexer.Stats
}

// ProxyOptions configures an HTTP(S) forward proxy for the http
// subtransport, grounded on go-git's plumbing/transport/http/common.go
// proxy handling. When Username is non-empty, Username/Password are set as
// the proxy URL's userinfo.
type ProxyOptions struct {
	URL      string
	Username string
	Password string
}

// Endpoint is a parsed Git URL, grounded on go-git's
// plumbing/transport/transport.go Endpoint/NewEndpoint (v6-exp), trimmed
// to the fields the dispatch and subtransport layers actually consume.
type Endpoint struct {
	Scheme string
	User   string
	Host   string
	Port   int
	Path   string
}

var defaultPorts = map[string]int{
	"http":  80,
	"https": 443,
	"git":   9418,
}

// String reassembles the endpoint into a URL.
func (e *Endpoint) String() string {
	var b strings.Builder
	b.WriteString(e.Scheme)
	b.WriteString("://")
	if e.User != "" {
		b.WriteString(e.User)
		b.WriteByte('@')
	}
	b.WriteString(e.Host)
	if e.Port != 0 {
		if p, ok := defaultPorts[e.Scheme]; !ok || p != e.Port {
			fmt.Fprintf(&b, ":%d", e.Port)
		}
	}
	if e.Path != "" && !strings.HasPrefix(e.Path, "/") {
		b.WriteByte('/')
	}
	b.WriteString(e.Path)
	return b.String()
}

// ParseEndpoint parses rawurl into an Endpoint. It supports the plain
// scheme://host[:port]/path form used by git://, http:// and https://.
func ParseEndpoint(rawurl string) (*Endpoint, error) {
	u, err := url.Parse(rawurl)
	if err != nil {
		return nil, err
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid endpoint: %s", rawurl)
	}

	port := 0
	if p := u.Port(); p != "" {
		port, _ = strconv.Atoi(p)
	}

	user := ""
	if u.User != nil {
		user = u.User.Username()
	}

	return &Endpoint{
		Scheme: strings.ToLower(u.Scheme),
		User:   user,
		Host:   u.Hostname(),
		Port:   port,
		Path:   u.Path,
	}, nil
}
