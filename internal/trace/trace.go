// Package trace provides the wire-level tracing this module carries
// instead of a general logging framework, narrowed from go-git's
// utils/trace (single Packet target; General/SSH/Performance/HTTP have no
// fetch-core caller, so they are not reproduced here).
package trace

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"sync/atomic"
)

var (
	logger  = log.New(os.Stderr, "", log.Ltime|log.Lmicroseconds|log.Lshortfile)
	enabled atomic.Bool
)

func init() {
	if v, _ := strconv.ParseBool(os.Getenv("GIT_TRACE_PACKET")); v {
		enabled.Store(true)
	}
	if v, _ := strconv.ParseBool(os.Getenv("GIT_TRACE")); v {
		enabled.Store(true)
	}
}

// Packet is the one trace target this module needs: pkt-line frames
// crossing the wire (spec.md §3's smart-transport state machine).
var Packet packetTarget

type packetTarget struct{}

// SetEnabled overrides the env-var-derived default, mainly for tests.
func SetEnabled(v bool) { enabled.Store(v) }

// Enabled reports whether packet tracing is active.
func (packetTarget) Enabled() bool { return enabled.Load() }

// Printf logs format/args only when packet tracing is enabled.
func (packetTarget) Printf(format string, args ...any) {
	if enabled.Load() {
		logger.Output(2, fmt.Sprintf(format, args...)) // nolint: errcheck
	}
}
