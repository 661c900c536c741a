package plumbing

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"hash"
	"sort"

	"github.com/pjbgf/sha1cd"
)

// Hash is the SHA1 object id of a git object: an opaque 20-byte content
// hash. Two hashes are equal iff their bytes are equal.
type Hash [20]byte

// ZeroHash is the Hash with all-zero bytes.
var ZeroHash Hash

// IsZero reports whether h is equal to the zero value.
func (h Hash) IsZero() bool {
	var empty Hash
	return h == empty
}

func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// Bytes returns the raw 20-byte hash content.
func (h Hash) Bytes() []byte {
	return h[:]
}

// NewHash returns a new Hash from its hexadecimal representation. Invalid
// input silently decodes to the zero hash; use FromHex to detect errors.
func NewHash(s string) Hash {
	h, _ := FromHex(s)
	return h
}

// FromHex decodes a hexadecimal hash representation into a Hash.
func FromHex(s string) (Hash, error) {
	var h Hash
	b, err := hex.DecodeString(s)
	if err != nil {
		return h, err
	}

	if len(b) != len(h) {
		return h, fmt.Errorf("invalid hash length: %d", len(b))
	}

	copy(h[:], b)
	return h, nil
}

// ComputeHash computes the canonical object hash for an ObjectType and its
// uncompressed content.
func ComputeHash(t ObjectType, content []byte) Hash {
	h := NewHasher(t, int64(len(content)))
	h.Write(content)
	return h.Sum()
}

// Hasher wraps a hash.Hash primed with the git object header
// ("<type> <size>\x00"); content written afterwards hashes as a git object.
type Hasher struct {
	hash.Hash
}

// NewHasher returns a Hasher ready to receive the content bytes of an
// object with the given type and size.
func NewHasher(t ObjectType, size int64) Hasher {
	h := Hasher{sha1cd.New()}
	fmt.Fprintf(h, "%s %d", t.String(), size)
	h.Write([]byte{0})
	return h
}

// Sum returns the computed hash.
func (h Hasher) Sum() (hash Hash) {
	copy(hash[:], h.Hash.Sum(nil))
	return
}

// HashesSort sorts a slice of Hash in increasing byte order.
func HashesSort(hashes []Hash) {
	sort.Sort(HashSlice(hashes))
}

// HashSlice implements sort.Interface over a slice of Hash.
type HashSlice []Hash

func (p HashSlice) Len() int           { return len(p) }
func (p HashSlice) Less(i, j int) bool { return bytes.Compare(p[i][:], p[j][:]) < 0 }
func (p HashSlice) Swap(i, j int)      { p[i], p[j] = p[j], p[i] }
