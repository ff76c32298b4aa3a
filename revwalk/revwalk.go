// Package revwalk implements the time-ordered commit walk negotiate_fetch
// uses to produce `have` lines (spec.md §4.4 step 2-3). The object store
// itself — parent lookup, commit timestamps — is the external "repository"
// collaborator named in spec.md §1/§6; this package only owns the walk
// order, exactly as libgit2's fetch_setup_walk/git_revwalk_next
// (src/transports/smart_protocol.c) only owns iteration order over a
// repository it does not otherwise touch.
package revwalk

import (
	"errors"
	"time"

	"github.com/emirpasic/gods/trees/binaryheap"

	"github.com/libgit2-go/transport/plumbing"
)

// ErrStop is returned by Next once the walk is exhausted, mirroring
// git_revwalk_next's GIT_ITEROVER.
var ErrStop = errors.New("revwalk: no more commits")

// CommitInfo is the slice of commit metadata the walker needs. Lookup
// supplies it; the walker never reads object content itself.
type CommitInfo struct {
	When    time.Time
	Parents []plumbing.Hash
}

// CommitLookup is the narrow boundary to the external repository. A
// repository backend implements it once and the walker stays unaware of
// storage format entirely.
type CommitLookup interface {
	Lookup(h plumbing.Hash) (CommitInfo, error)
}

type node struct {
	hash plumbing.Hash
	when time.Time
}

// dateOrderComparator orders the heap so the commit with the latest
// timestamp is popped first, matching GIT_SORT_TIME.
func dateOrderComparator(a, b interface{}) int {
	na, nb := a.(node), b.(node)
	switch {
	case na.when.After(nb.when):
		return -1
	case na.when.Before(nb.when):
		return 1
	default:
		return 0
	}
}

// Walker performs a time-descending traversal starting from a set of
// pushed tips, grounded on plumbing/object/commitgraph's
// NewCommitNodeIterDateOrder use of binaryheap.NewWith.
type Walker struct {
	lookup  CommitLookup
	heap    *binaryheap.Heap
	visited map[plumbing.Hash]struct{}
}

// NewWalker creates a Walker backed by lookup.
func NewWalker(lookup CommitLookup) *Walker {
	return &Walker{
		lookup:  lookup,
		heap:    binaryheap.NewWith(dateOrderComparator),
		visited: make(map[plumbing.Hash]struct{}),
	}
}

// Push adds a starting tip to the walk. Pushing the same hash twice, or a
// hash that is later reached again through another tip's ancestry, is a
// no-op the second time.
func (w *Walker) Push(h plumbing.Hash) error {
	if _, ok := w.visited[h]; ok {
		return nil
	}
	info, err := w.lookup.Lookup(h)
	if err != nil {
		return err
	}
	w.visited[h] = struct{}{}
	w.heap.Push(node{hash: h, when: info.When})
	return nil
}

// Next returns the next commit in time-descending order, queuing its
// parents for later visits. It returns ErrStop when the walk is
// exhausted.
func (w *Walker) Next() (plumbing.Hash, error) {
	v, ok := w.heap.Pop()
	if !ok {
		return plumbing.ZeroHash, ErrStop
	}
	n := v.(node)

	info, err := w.lookup.Lookup(n.hash)
	if err != nil {
		return plumbing.ZeroHash, err
	}
	for _, p := range info.Parents {
		if _, seen := w.visited[p]; seen {
			continue
		}
		w.visited[p] = struct{}{}
		pInfo, err := w.lookup.Lookup(p)
		if err != nil {
			return plumbing.ZeroHash, err
		}
		w.heap.Push(node{hash: p, when: pInfo.When})
	}

	return n.hash, nil
}
