package transport

import (
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
)

// Factory builds a Transport for a descriptor match. param is the opaque
// handle spec.md §3 describes. The built-in factories ignore it: smart
// descriptors register a nil param and take their Subtransport from
// SetGitSubtransport / SetHTTPSubtransport, and the dummy descriptors'
// param only tags them for SupportedURL.
type Factory func(param interface{}) Transport

// descriptor is one row of the URL transport descriptor table (spec.md §3).
type descriptor struct {
	prefix   string
	priority int
	factory  Factory
	param    interface{}
}

// registry is the process-wide, ordered dispatch table (spec.md §9 "global
// transport table": static configuration, no mutation API in scope beyond
// Register, which mirrors go-git's plumbing/transport/registry.go Register
// used at package init by the git/http subtransports).
var registry []descriptor

// Register appends a descriptor for prefix. Later registrations of an
// equal-priority prefix are resolved by Find's first-match tie-break
// (spec.md §9 open question: the original returns the *last* equal-priority
// match; this port pins first-match instead — see DESIGN.md).
func Register(prefix string, priority int, factory Factory, param interface{}) {
	registry = append(registry, descriptor{prefix: prefix, priority: priority, factory: factory, param: param})
}

// Unregister drops every descriptor registered under prefix. It exists for
// tests that need a clean registry between cases.
func Unregister(prefix string) {
	out := registry[:0]
	for _, d := range registry {
		if d.prefix != prefix {
			out = append(out, d)
		}
	}
	registry = out
}

// dummyParam tags the dummy descriptors (and the colon-heuristic fallback)
// so the SupportedURL predicate can recognize them without a type switch
// on the factory itself.
type dummyParam struct{}

var isDummy = dummyParam{}

// Find resolves url to a transport factory and its param, implementing
// spec.md §4.1.
//
// Algorithm: compare each descriptor's prefix against url
// case-insensitively; among matches, pick the highest priority, breaking
// ties by first match in registration order. If nothing matches, fall
// through to two independent, unconditional checks run in sequence: an
// existing local directory resolves to the local transport, then a colon
// in the URL (the SSH heuristic) resolves to the dummy transport,
// overwriting whatever the local-directory check just produced. Only
// after both checks have run does a still-unresolved url become
// UnsupportedScheme.
//
// This ordering is preserved exactly as the original does it, acknowledged
// quirk included: a url that is both an existing directory and contains a
// colon (e.g. "file:///foo:bar") resolves to dummy, not local, because the
// colon check is never gated on the local-directory check having failed
// (spec.md §9 open question).
func Find(url string) (Factory, interface{}, error) {
	lower := strings.ToLower(url)

	var best *descriptor
	for i := range registry {
		d := &registry[i]
		if !strings.HasPrefix(lower, strings.ToLower(d.prefix)) {
			continue
		}
		if best == nil || d.priority > best.priority {
			best = d
		}
	}
	if best != nil {
		return best.factory, best.param, nil
	}

	var factory Factory
	var param interface{}
	matched := false

	if isExistingDir(url) {
		factory, param = localFactory, nil
		matched = true
	}
	if strings.ContainsRune(url, ':') {
		factory, param = dummyFactory, isDummy
		matched = true
	}

	if !matched {
		return nil, nil, ErrUnsupported
	}
	return factory, param, nil
}

// ValidURL reports whether Find succeeds for url.
func ValidURL(url string) bool {
	_, _, err := Find(url)
	return err == nil
}

// SupportedURL reports whether Find succeeds and the resolved factory is
// not the dummy fallback.
func SupportedURL(url string) bool {
	_, param, err := Find(url)
	if err != nil {
		return false
	}
	_, dummy := param.(dummyParam)
	return !dummy
}

// isExistingDir reports whether path names an existing directory. It goes
// through billy's OS filesystem rather than a raw os.Stat, matching how
// every other real-path touch in this codebase (the indexer's pack sink)
// reaches the filesystem (spec.md §4.1 local-path heuristic).
func isExistingDir(path string) bool {
	fi, err := osfs.New("").Stat(path)
	return err == nil && fi.IsDir()
}
