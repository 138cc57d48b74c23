package hookhttp

import (
	"net/textproto"
	"sort"

	"github.com/kbukum/hookhttp/transport"
)

// Header is a case-insensitive header map. Keys are stored in canonical MIME
// form; repeated names accumulate into an ordered value slice. Keys() and
// Pairs() iterate in sorted key order so the map has one deterministic
// representation.
type Header map[string][]string

// Add appends a value under the canonical form of name.
func (h Header) Add(name, value string) {
	key := textproto.CanonicalMIMEHeaderKey(name)
	h[key] = append(h[key], value)
}

// Set replaces all values under the canonical form of name.
func (h Header) Set(name, value string) {
	h[textproto.CanonicalMIMEHeaderKey(name)] = []string{value}
}

// Get returns the first value for name, or "" if absent.
func (h Header) Get(name string) string {
	vs := h[textproto.CanonicalMIMEHeaderKey(name)]
	if len(vs) == 0 {
		return ""
	}
	return vs[0]
}

// Values returns all values for name in order.
func (h Header) Values(name string) []string {
	return h[textproto.CanonicalMIMEHeaderKey(name)]
}

// Del removes all values for name.
func (h Header) Del(name string) {
	delete(h, textproto.CanonicalMIMEHeaderKey(name))
}

// Keys returns the header names sorted.
func (h Header) Keys() []string {
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a deep copy.
func (h Header) Clone() Header {
	out := make(Header, len(h))
	for k, vs := range h {
		cp := make([]string, len(vs))
		copy(cp, vs)
		out[k] = cp
	}
	return out
}

// Pairs encodes the header into wire pairs: keys sorted, values in order.
func (h Header) Pairs() []transport.HeaderPair {
	var pairs []transport.HeaderPair
	for _, k := range h.Keys() {
		for _, v := range h[k] {
			pairs = append(pairs, transport.HeaderPair{Name: k, Value: v})
		}
	}
	return pairs
}
