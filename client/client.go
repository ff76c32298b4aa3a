// Package client is the default wiring point: importing it installs the
// git:// and http(s):// subtransports that the dispatch table's git://,
// http:// and https:// descriptors drive, the
// same role go-git's plumbing/transport/client package plays by importing
// http, ssh, git and file for their init side effects.
//
// An embedder that only needs file:// or the dummy fallback can skip this
// package and call transport.Find directly; both of those are already
// registered by the transport package itself.
package client

import (
	_ "github.com/libgit2-go/transport/transport/git"
	_ "github.com/libgit2-go/transport/transport/http"
)
