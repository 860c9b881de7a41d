package product

import (
	"encoding/binary"
	"sort"

	"github.com/cespare/xxhash/v2"
)

// versionHasher feeds length-prefixed fields into xxhash so that adjacent
// fields cannot run together ("ab"+"c" and "a"+"bc" hash differently).
type versionHasher struct {
	d   *xxhash.Digest
	buf [8]byte
}

func newVersionHasher() *versionHasher {
	return &versionHasher{d: xxhash.New()}
}

func (h *versionHasher) uint64(v uint64) {
	binary.LittleEndian.PutUint64(h.buf[:], v)
	_, _ = h.d.Write(h.buf[:])
}

func (h *versionHasher) string(s string) {
	h.uint64(uint64(len(s)))
	_, _ = h.d.WriteString(s)
}

func (h *versionHasher) bool(b bool) {
	if b {
		h.uint64(1)
	} else {
		h.uint64(0)
	}
}

// strings hashes a set: order of the input does not matter.
func (h *versionHasher) strings(values []string) {
	sorted := append([]string(nil), values...)
	sort.Strings(sorted)
	h.uint64(uint64(len(sorted)))
	for _, v := range sorted {
		h.string(v)
	}
}

func (h *versionHasher) attributes(attrs map[string]string) {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	h.uint64(uint64(len(keys)))
	for _, k := range keys {
		h.string(k)
		h.string(attrs[k])
	}
}

func (h *versionHasher) sum() int64 {
	return int64(h.d.Sum64())
}
