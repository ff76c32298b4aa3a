// Package capability parses and represents the small, fixed set of
// upload-pack capabilities this fetch core understands. Unlike go-git's
// general-purpose key=value capability.List (built for the much larger
// protocol v2 surface), the set here is the boolean record spec.md §3
// describes, detected with libgit2's exact prefix-matching algorithm
// (src/transports/smart_protocol.c, git_smart__detect_caps).
package capability

// Token names as they appear, space separated, on the first ref line of an
// upload-pack advertisement.
const (
	OfsDelta     = "ofs-delta"
	MultiAck     = "multi_ack"
	IncludeTag   = "include-tag"
	SideBand64k  = "side-band-64k"
	SideBand     = "side-band"
)

// Set is the negotiated capability record for one connection.
type Set struct {
	// Common is true if at least one capability token was recognized.
	Common bool

	OfsDelta    bool
	MultiAck    bool
	IncludeTag  bool
	SideBand    bool
	SideBand64k bool
}

// Detect parses the space-separated capability string from the first ref
// of an advertisement. Unknown tokens are skipped by scanning to the next
// space, matching the C source's tolerance for trailing garbage and
// preserving compatibility rather than rejecting it (spec.md §9).
//
// side-band-64k MUST be tested before side-band: both share the
// "side-band" prefix, and a naive ordering would never detect the 64k
// variant. This ordering sensitivity is preserved verbatim from
// git_smart__detect_caps. When both tokens are advertised, only
// SideBand64k is set.
func Detect(s string) Set {
	var caps Set
	if s == "" {
		return caps
	}

	ptr := s
	for len(ptr) > 0 {
		if ptr[0] == ' ' {
			ptr = ptr[1:]
			continue
		}

		switch {
		case hasPrefix(ptr, OfsDelta):
			caps.Common, caps.OfsDelta = true, true
			ptr = ptr[len(OfsDelta):]
			continue
		case hasPrefix(ptr, MultiAck):
			caps.Common, caps.MultiAck = true, true
			ptr = ptr[len(MultiAck):]
			continue
		case hasPrefix(ptr, IncludeTag):
			caps.Common, caps.IncludeTag = true, true
			ptr = ptr[len(IncludeTag):]
			continue
		case hasPrefix(ptr, SideBand64k):
			caps.Common, caps.SideBand64k = true, true
			caps.SideBand = false
			ptr = ptr[len(SideBand64k):]
			continue
		case hasPrefix(ptr, SideBand):
			caps.Common = true
			if !caps.SideBand64k {
				caps.SideBand = true
			}
			ptr = ptr[len(SideBand):]
			continue
		}

		// Unknown token: skip to the next space, if any.
		idx := indexByte(ptr, ' ')
		if idx < 0 {
			break
		}
		ptr = ptr[idx:]
	}

	return caps
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}

func indexByte(s string, b byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			return i
		}
	}
	return -1
}

// Intersect returns the space-separated tokens present in both the
// server's advertised set and the client's supported set, in a fixed,
// deterministic order. This is what the first `want` line's capability
// suffix is built from (spec.md §4.4 step 1).
func Intersect(server, client Set) string {
	var out []string
	add := func(serverHas, clientHas bool, tok string) {
		if serverHas && clientHas {
			out = append(out, tok)
		}
	}
	add(server.MultiAck, client.MultiAck, MultiAck)
	add(server.OfsDelta, client.OfsDelta, OfsDelta)
	add(server.IncludeTag, client.IncludeTag, IncludeTag)
	add(server.SideBand64k, client.SideBand64k, SideBand64k)
	add(server.SideBand && !server.SideBand64k, client.SideBand, SideBand)

	s := ""
	for i, tok := range out {
		if i > 0 {
			s += " "
		}
		s += tok
	}
	return s
}

// Supported is the full set of capabilities this client can make use of.
var Supported = Set{
	Common:      true,
	OfsDelta:    true,
	MultiAck:    true,
	IncludeTag:  true,
	SideBand:    true,
	SideBand64k: true,
}
