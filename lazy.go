package simdjson

import (
	"fmt"
	"sync/atomic"
)

// sharedBuffer is an atomically refcounted wrapper around the byte slice
// backing one or more RawValue spans cut from the same source document. Go's
// GC reclaims the backing array on its own once every RawValue referencing
// it is gone; the counter exists so code juggling many borrowed RawValues
// (e.g. across goroutines) can tell whether it still has the only handle
// without a mutex, generalizing the single-owner discipline
// ParsedJson.Message uses for one borrower to the multi-borrower case a
// lazy value tree needs.
type sharedBuffer struct {
	buf  []byte
	refs int32
}

func newSharedBuffer(buf []byte) *sharedBuffer {
	return &sharedBuffer{buf: buf, refs: 1}
}

func (b *sharedBuffer) retain() *sharedBuffer {
	atomic.AddInt32(&b.refs, 1)
	return b
}

// release drops a reference and returns the remaining count.
func (b *sharedBuffer) release() int32 {
	return atomic.AddInt32(&b.refs, -1)
}

// RawValue is an unparsed span of JSON source text, as produced by
// PointerTree.Get. Get checks neither UTF-8 nor the grammar inside the span
// and converts nothing; Validate (a shallow shape check) and ParseTo (a full
// parse) do that work only when called, so a query that only touches a
// handful of fields in a large document never pays to parse the rest.
type RawValue struct {
	start, len int
	buf        *sharedBuffer
	validated  bool
}

// AsRawBytes returns the raw, still-escaped source bytes of the value.
func (r RawValue) AsRawBytes() []byte {
	return r.buf.buf[r.start : r.start+r.len]
}

// AsRawStr returns the raw source text of the value as a string, escapes
// and surrounding quotes (for a JSON string value) included.
func (r RawValue) AsRawStr() string {
	return string(r.AsRawBytes())
}

// TypeHint reports the JSON type of the value by inspecting only its first
// byte (and, for numbers, scanning for a decimal point or exponent), without
// parsing the rest of the span.
func (r RawValue) TypeHint() Type {
	b := r.AsRawBytes()
	if len(b) == 0 {
		return TypeNone
	}
	switch b[0] {
	case '{':
		return TypeObject
	case '[':
		return TypeArray
	case '"':
		return TypeString
	case 't', 'f':
		return TypeBool
	case 'n':
		return TypeNull
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		for _, c := range b {
			if c == '.' || c == 'e' || c == 'E' {
				return TypeFloat
			}
		}
		if b[0] == '-' {
			return TypeInt
		}
		return TypeUint
	default:
		return TypeNone
	}
}

// Validate checks, without building a tape, that the span holds one value
// followed only by whitespace: a string must be terminated, a literal must be
// spelled out, a number must have at least one number character, and the
// brackets of an object or array must balance (brackets inside strings are
// ignored). Members inside an object or array are not checked, and UTF-8 is
// not validated. It is idempotent.
func (r *RawValue) Validate() error {
	if r.validated {
		return nil
	}
	b := r.AsRawBytes()
	end, err := skipValue(b, 0)
	if err != nil {
		return err
	}
	if rest := skipWS(b, end); rest != len(b) {
		return fmt.Errorf("lazy: %d trailing bytes after value", len(b)-end)
	}
	r.validated = true
	return nil
}

// ParseTo fully parses the value, re-invoking Parse on its sub-span. An
// optional destination can be provided to reduce allocations, mirroring
// Parse itself.
func (r RawValue) ParseTo(reuse *ParsedJson, opts ...ParserOption) (*ParsedJson, error) {
	return Parse(r.AsRawBytes(), reuse, opts...)
}
