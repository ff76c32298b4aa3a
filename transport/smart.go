package transport

import (
	"context"
	"io"
	"sync/atomic"

	ctxio "github.com/jbenet/go-context/io"

	"github.com/libgit2-go/transport/capability"
	"github.com/libgit2-go/transport/pktline"
)

func init() {
	Register("git://", 0, smartGitFactory, nil)
	Register("http://", 0, smartHTTPFactory, nil)
	Register("https://", 0, smartHTTPFactory, nil)
}

// gitSubtransport and httpSubtransport are installed by the transport/git
// and transport/http packages via SetGitSubtransport / SetHTTPSubtransport
// at init time, mirroring go-git's client.InstallProtocol /
// transport.Register pattern without this package importing net/http or
// net directly (spec.md §4.6: the byte-level carriers are external).
var (
	gitSubtransport  Subtransport
	httpSubtransport Subtransport
)

// SetGitSubtransport installs the git:// carrier. Called from
// transport/git's init().
func SetGitSubtransport(s Subtransport) { gitSubtransport = s }

// SetHTTPSubtransport installs the http(s):// carrier. Called from
// transport/http's init().
func SetHTTPSubtransport(s Subtransport) { httpSubtransport = s }

func smartGitFactory(interface{}) Transport {
	return NewSmart(gitSubtransport)
}

func smartHTTPFactory(interface{}) Transport {
	return NewSmart(httpSubtransport)
}

// SmartTransport is the client side of Git's smart protocol: pkt-line
// framing, capability detection, want/have negotiation, and side-band
// pack download, run over whatever Subtransport Connect's URL resolves to
// (spec.md §3 "smart-transport state").
type SmartTransport struct {
	sub   Subtransport
	url   string
	rpc   bool
	state State
	flags Flags
	dir   Direction

	stream Stream
	buf    []byte
	pending *Pkt

	refs []*Pkt
	caps capability.Set

	cb        Callbacks
	cancelled int32

	// ctx/ctxCancel back the cancellation checkpoints with a real
	// interrupt for in-flight reads: Cancel both flips the atomic flag
	// the checkpoints poll and cancels ctx, so a refill blocked inside
	// the subtransport's Read unblocks rather than waiting out the full
	// I/O, the same contextual-reader trick go-git's teacher-generation
	// go.mod carries jbenet/go-context for (see DESIGN.md).
	ctx       context.Context
	ctxCancel context.CancelFunc
}

// NewSmart constructs a SmartTransport over the given Subtransport.
func NewSmart(sub Subtransport) *SmartTransport {
	return &SmartTransport{sub: sub, state: Disconnected}
}

// Connect implements Transport. It opens the upload-pack-ls stream and
// reads the reference advertisement to completion (spec.md §4.2).
func (t *SmartTransport) Connect(url string, direction Direction, flags Flags) error {
	if direction != Fetch {
		return ErrUnsupported
	}
	if t.sub == nil {
		return ErrUnsupported
	}

	stream, err := t.sub.Action(url, UploadPackLs)
	if err != nil {
		return WrapNetworkError(err, "opening upload-pack-ls stream")
	}

	if t.ctxCancel != nil {
		t.ctxCancel()
	}
	t.ctx, t.ctxCancel = context.WithCancel(context.Background())

	t.url = url
	t.rpc = t.sub.RPC()
	t.flags = flags
	t.dir = direction
	t.stream = stream
	t.buf = nil
	t.pending = nil
	t.refs = nil
	t.caps = capability.Set{}
	atomic.StoreInt32(&t.cancelled, 0)

	if err := t.storeRefs(1); err != nil {
		stream.Free()
		return err
	}

	t.state = Connected
	return nil
}

// Ls implements Transport, yielding refs in the order storeRefs appended
// them (server advertisement order, spec.md §3).
func (t *SmartTransport) Ls(cb RefCallback) error {
	if t.state != Connected {
		return NewProtocolError("ls: transport is not connected")
	}
	for _, pkt := range t.refs {
		if err := cb(WireRef{Name: pkt.Name, OID: pkt.OID}); err != nil {
			return ErrUserAbort
		}
	}
	return nil
}

func (t *SmartTransport) IsConnected() bool { return t.state == Connected }
func (t *SmartTransport) ReadFlags() Flags  { return t.flags }

func (t *SmartTransport) SetCallbacks(cb Callbacks) { t.cb = cb }

// Cancel implements Transport. It is the only method safe to call from a
// goroutine other than the one driving the transport (spec.md §5); it
// never blocks: it flips the atomic flag every checkpoint polls, and
// cancels ctx so a refill already blocked inside the subtransport's Read
// unblocks instead of waiting for that I/O to finish on its own.
func (t *SmartTransport) Cancel() {
	atomic.StoreInt32(&t.cancelled, 1)
	if t.ctxCancel != nil {
		t.ctxCancel()
	}
}

func (t *SmartTransport) isCancelled() bool {
	return atomic.LoadInt32(&t.cancelled) != 0
}

// Close implements Transport.
func (t *SmartTransport) Close() error {
	t.state = Disconnected
	if t.ctxCancel != nil {
		t.ctxCancel()
	}
	if t.stream != nil {
		err := t.stream.Free()
		t.stream = nil
		return err
	}
	return nil
}

// refill reads more bytes from the current stream into buf. It reports
// io.EOF when the stream produced zero bytes, the terminal condition both
// store_refs and download_pack key off of (spec.md §4.3, §4.5). The read
// is wrapped in a context-aware reader so a Cancel from another goroutine
// unblocks it instead of leaving refill to wait out the underlying I/O.
func (t *SmartTransport) refill() error {
	var tmp [pktline.MaxSize]byte
	n, err := ctxio.NewReader(t.ctx, t.stream).Read(tmp[:])
	if n > 0 {
		t.buf = append(t.buf, tmp[:n]...)
		return nil
	}
	if t.isCancelled() {
		return ErrUserAbort
	}
	if err != nil && err != io.EOF {
		return err
	}
	return io.EOF
}

// nextFrame returns the next logical frame, transparently refilling on a
// recoverable BufferShort and replaying anything pushBack queued. sideband
// must be true only while draining download_pack after side-band was
// negotiated (spec.md §4.3).
func (t *SmartTransport) nextFrame(sideband bool) (*Pkt, error) {
	if t.pending != nil {
		p := t.pending
		t.pending = nil
		return p, nil
	}
	for {
		pkt, consumed, err := ParseLine(t.buf, sideband)
		if err == pktline.ErrBufferShort {
			if rerr := t.refill(); rerr != nil {
				switch rerr {
				case ErrUserAbort:
					return nil, ErrUserAbort
				case io.EOF:
					return nil, NewNetworkError("early EOF")
				default:
					return nil, WrapNetworkError(rerr, "reading frame")
				}
			}
			continue
		}
		if err != nil {
			return nil, err
		}
		t.buf = t.buf[consumed:]
		return pkt, nil
	}
}

// pushBack re-queues pkt so the next nextFrame call returns it again. It
// is how storeCommon implements "returns when the first non-ACK is
// peeked" (spec.md §4.4 step 3) without a true lookahead buffer.
func (t *SmartTransport) pushBack(pkt *Pkt) { t.pending = pkt }

// storeRefs implements spec.md §4.3's store_refs: parse frames until
// flushes FLUSH frames have been observed, appending every other frame to
// the refs vector. The first non-flush frame's capability string seeds
// the capability set.
func (t *SmartTransport) storeRefs(flushes int) error {
	seen := 0
	for seen < flushes {
		pkt, err := t.nextFrame(false)
		if err != nil {
			return err
		}
		switch pkt.Type {
		case PktFlush:
			seen++
		case PktErr:
			return NewNetworkError("%s", pkt.Message)
		default:
			if len(t.refs) == 0 && pkt.Capabilities != "" {
				t.caps = capability.Detect(pkt.Capabilities)
			}
			t.refs = append(t.refs, pkt)
		}
	}
	return nil
}
