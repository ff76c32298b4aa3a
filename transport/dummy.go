package transport

func init() {
	Register("git+ssh://", 0, dummyFactory, isDummy)
	Register("ssh+git://", 0, dummyFactory, isDummy)
}

func dummyFactory(interface{}) Transport {
	return &Dummy{}
}

// Dummy is the fallback transport for URLs that look like they want a
// transport this core doesn't implement (SSH), or that matched nothing at
// all via the colon heuristic (spec.md §4.1). Every operation fails with
// ErrNotImplemented so callers get a clear "not implemented" error rather
// than a scheme-unknown one.
type Dummy struct{}

// ErrNotImplemented is returned by every Dummy operation. Its Kind is
// KindUnsupported, like ErrUnsupported, but it is a distinct value.
var ErrNotImplemented = &Error{Kind: KindUnsupported, Message: "this transport isn't implemented"}

func (Dummy) Connect(url string, direction Direction, flags Flags) error { return ErrNotImplemented }
func (Dummy) Ls(cb RefCallback) error                                   { return ErrNotImplemented }
func (Dummy) NegotiateFetch(repo NegotiationRepository, wants []WireRef) error {
	return ErrNotImplemented
}
func (Dummy) DownloadPack(idx PackSink) error { return ErrNotImplemented }
func (Dummy) IsConnected() bool               { return false }
func (Dummy) ReadFlags() Flags                { return FlagsNone }
func (Dummy) SetCallbacks(cb Callbacks)       {}
func (Dummy) Cancel()                         {}
func (Dummy) Close() error                    { return nil }
