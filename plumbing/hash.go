// Package plumbing holds the small set of low-level Git types the fetch
// core needs: object identifiers and the references the server advertises
// for them. It intentionally does not model commits, trees or blobs — the
// object store is an external collaborator (see spec's repository boundary).
package plumbing

import (
	"encoding/hex"
	"errors"
)

// HashSize is the length in bytes of a SHA-1 object id.
const HashSize = 20

// ErrInvalidHash is returned when a 40-hex-digit object id fails to parse.
var ErrInvalidHash = errors.New("invalid hash")

// Hash is a SHA-1 object id.
type Hash [HashSize]byte

// ZeroHash is the zero-valued, all-zero hash.
var ZeroHash Hash

// NewHash parses a 40 hex character object id. It returns ZeroHash if s is
// not valid hex of the right length; callers that need to distinguish a
// malformed id from the zero id should use ParseHash.
func NewHash(s string) Hash {
	h, _ := ParseHash(s)
	return h
}

// ParseHash parses a 40 hex character object id.
func ParseHash(s string) (Hash, error) {
	var h Hash
	if len(s) != HashSize*2 {
		return h, ErrInvalidHash
	}
	if _, err := hex.Decode(h[:], []byte(s)); err != nil {
		return h, ErrInvalidHash
	}
	return h, nil
}

// IsZero reports whether h is the zero hash.
func (h Hash) IsZero() bool {
	return h == ZeroHash
}

// String returns the 40 hex character representation of h.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// Reference is a single ref as advertised by the remote: a name and the
// object id it currently points at.
type Reference struct {
	Name string
	Hash Hash
}
