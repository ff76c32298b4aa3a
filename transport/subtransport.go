package transport

// Service names the two upload-pack phases a Subtransport can be asked to
// open a stream for (spec.md §4.6). Push's receive-pack equivalents are
// reserved and unused.
type Service int

const (
	// UploadPackLs requests the reference advertisement.
	UploadPackLs Service = iota
	// UploadPack requests the negotiation + pack phase.
	UploadPack
)

// Stream is the byte-level carrier a Subtransport hands back for one
// Service invocation. The git and http streams hold no reference to the
// Subtransport that opened them.
type Stream interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)

	// Free releases the stream. It does not send anything: on an RPC
	// carrier a request that was written but never read is dropped.
	Free() error
}

// Subtransport is the single operation spec.md §4.6 describes: open a
// stream for a service against a URL. Concrete variants: git (RPC=false)
// and http/https (RPC=true).
type Subtransport interface {
	// Action opens (or, for an RPC carrier, begins) a stream for
	// service against rawurl.
	Action(rawurl string, service Service) (Stream, error)

	// RPC reports whether each Action call is an independent
	// request/response exchange (http) or shares one persistent
	// connection across the whole fetch (git).
	RPC() bool
}
