package transport

func init() {
	Register("file://", 0, localFactory, nil)
}

func localFactory(interface{}) Transport {
	return &Local{}
}

// Local is the file:// transport. It is a narrow stand-in: spec.md §1
// lists the local transport among the out-of-scope external collaborators
// (real local fetches go straight at the on-disk object store, no
// pkt-line protocol involved). Beyond lifecycle bookkeeping, Ls yields no
// refs and NegotiateFetch and DownloadPack return ErrUnsupported, rather
// than re-implementing a second object-store access path here.
type Local struct {
	state     State
	flags     Flags
	path      string
	cancelled bool
	cb        Callbacks
}

func (l *Local) Connect(url string, direction Direction, flags Flags) error {
	if direction != Fetch {
		return ErrUnsupported
	}
	l.path = url
	l.flags = flags
	l.state = Connected
	l.cancelled = false
	return nil
}

func (l *Local) Ls(cb RefCallback) error {
	if l.state != Connected {
		return NewProtocolError("ls: not connected")
	}
	return nil
}

func (l *Local) NegotiateFetch(repo NegotiationRepository, wants []WireRef) error {
	if l.state != Connected {
		return NewProtocolError("negotiate_fetch: not connected")
	}
	return ErrUnsupported
}

func (l *Local) DownloadPack(idx PackSink) error {
	if l.state != Connected {
		return NewProtocolError("download_pack: not connected")
	}
	return ErrUnsupported
}

func (l *Local) IsConnected() bool   { return l.state == Connected }
func (l *Local) ReadFlags() Flags    { return l.flags }
func (l *Local) SetCallbacks(cb Callbacks) { l.cb = cb }
func (l *Local) Cancel()             { l.cancelled = true }

func (l *Local) Close() error {
	l.state = Disconnected
	return nil
}
