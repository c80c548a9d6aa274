package http

import "strings"

// Field is one header line.
type Field struct {
	Key   string
	Value string
}

// Header is an ordered set of header fields with unique keys. Keys match
// exactly; response headers produced by the parser are lowercased, request
// headers keep the spelling the caller gave them.
//
// The zero value is an empty header ready to use. Header is a value type:
// every mutation writes a fresh backing slice, so copies never observe
// each other's changes.
type Header struct {
	fields []Field
}

// NewHeader builds a Header from key/value pairs. A trailing key without a
// value is ignored.
func NewHeader(kv ...string) Header {
	var h Header
	for i := 0; i+1 < len(kv); i += 2 {
		h.Set(kv[i], kv[i+1])
	}
	return h
}

func (h Header) find(key string) int {
	for i, f := range h.fields {
		if f.Key == key {
			return i
		}
	}
	return -1
}

// Set stores value under key. An existing key keeps its position.
func (h *Header) Set(key, value string) {
	fields := make([]Field, len(h.fields), len(h.fields)+1)
	copy(fields, h.fields)
	if i := h.find(key); i >= 0 {
		fields[i].Value = value
	} else {
		fields = append(fields, Field{Key: key, Value: value})
	}
	h.fields = fields
}

// Del removes key if present.
func (h *Header) Del(key string) {
	h.remove(func(k string) bool { return k == key })
}

// DelFold removes every key equal to key under ASCII case folding.
func (h *Header) DelFold(key string) {
	h.remove(func(k string) bool { return strings.EqualFold(k, key) })
}

func (h *Header) remove(match func(string) bool) {
	var kept []Field
	for _, f := range h.fields {
		if !match(f.Key) {
			kept = append(kept, f)
		}
	}
	h.fields = kept
}

func (h Header) Has(key string) bool {
	return h.find(key) >= 0
}

// HasFold reports whether any key equals key under ASCII case folding.
func (h Header) HasFold(key string) bool {
	_, ok := h.LookupFold(key)
	return ok
}

// Lookup returns the value stored under key and whether it was present.
func (h Header) Lookup(key string) (string, bool) {
	i := h.find(key)
	if i < 0 {
		return "", false
	}
	return h.fields[i].Value, true
}

// LookupFold is Lookup with ASCII case folding. The first match wins.
func (h Header) LookupFold(key string) (string, bool) {
	for _, f := range h.fields {
		if strings.EqualFold(f.Key, key) {
			return f.Value, true
		}
	}
	return "", false
}

// Get returns the value for key, or "" when absent.
func (h Header) Get(key string) string {
	v, _ := h.Lookup(key)
	return v
}

func (h Header) GetOrDefault(key, def string) string {
	if v, ok := h.Lookup(key); ok {
		return v
	}
	return def
}

func (h Header) Len() int { return len(h.fields) }

// Fields returns a copy of the fields in insertion order.
func (h Header) Fields() []Field {
	out := make([]Field, len(h.fields))
	copy(out, h.fields)
	return out
}

func (h Header) Keys() []string {
	keys := make([]string, len(h.fields))
	for i, f := range h.fields {
		keys[i] = f.Key
	}
	return keys
}

// Map returns the header as a plain map, losing order.
func (h Header) Map() map[string]string {
	m := make(map[string]string, len(h.fields))
	for _, f := range h.fields {
		m[f.Key] = f.Value
	}
	return m
}

func (h Header) Clone() Header {
	return Header{fields: h.Fields()}
}
