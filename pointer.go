package simdjson

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// PointerComponent is a single segment of a Pointer: either an object
// member name or an array index.
type PointerComponent struct {
	Key     string
	Index   int
	isIndex bool
}

// Key builds a PointerComponent that selects an object member by name.
func Key(key string) PointerComponent {
	return PointerComponent{Key: key}
}

// Index builds a PointerComponent that selects an array element by
// position.
func Index(i int) PointerComponent {
	return PointerComponent{Index: i, isIndex: true}
}

// Pointer addresses a single value inside a document, root to leaf, the way
// an RFC 6901 JSON Pointer does, but as a typed slice instead of an
// escaped string.
type Pointer []PointerComponent

// String renders p in RFC 6901 form ("/a/b/0"), escaping "~" and "/" in
// keys. Used as the lookup key in the map PointerTree.Get returns.
func (p Pointer) String() string {
	if len(p) == 0 {
		return ""
	}
	var b strings.Builder
	for _, c := range p {
		b.WriteByte('/')
		if c.isIndex {
			b.WriteString(strconv.Itoa(c.Index))
			continue
		}
		for _, r := range c.Key {
			switch r {
			case '~':
				b.WriteString("~0")
			case '/':
				b.WriteString("~1")
			default:
				b.WriteRune(r)
			}
		}
	}
	return b.String()
}

type pointerKey struct {
	key     string
	index   int
	isIndex bool
}

// pointerNode is one trie node: the set of distinct next components across
// every registered Pointer that shares the prefix leading here, plus the
// string form of any Pointer that terminates exactly here.
type pointerNode struct {
	children map[pointerKey]*pointerNode
	paths    []string
}

// PointerTree resolves many Pointer paths against a single document buffer
// in one pass over the source bytes, skipping (not parsing) the span of any
// member or element no registered path passes through. It never builds a
// tape; matches are returned as unparsed RawValue spans.
type PointerTree struct {
	root *pointerNode
}

// NewPointerTree builds a trie over paths. The trie is built once and can
// be reused across many calls to Get with the document-walking form
// (t.Get(src) with no paths argument).
func NewPointerTree(paths ...Pointer) *PointerTree {
	t := &PointerTree{root: &pointerNode{}}
	for _, p := range paths {
		t.insert(p)
	}
	return t
}

func (t *PointerTree) insert(p Pointer) {
	n := t.root
	for _, c := range p {
		if n.children == nil {
			n.children = make(map[pointerKey]*pointerNode)
		}
		k := pointerKey{key: c.Key, index: c.Index, isIndex: c.isIndex}
		child := n.children[k]
		if child == nil {
			child = &pointerNode{}
			n.children[k] = child
		}
		n = child
	}
	n.paths = append(n.paths, p.String())
}

// Get resolves every path in the tree (or, if paths is non-empty, a
// one-shot tree built from paths) against src in a single walk. The result
// maps each matched path's String() form to the raw, unvalidated span of
// its value. A path absent from src is simply missing from the result, not
// an error; a malformed document is.
func (t *PointerTree) Get(src []byte, paths ...Pointer) (map[string]RawValue, error) {
	if len(paths) > 0 {
		t = NewPointerTree(paths...)
	}
	if t == nil || t.root == nil {
		return nil, errors.New("pointer: empty tree")
	}
	buf := newSharedBuffer(src)
	out := make(map[string]RawValue)
	if _, err := t.walk(src, 0, t.root, buf, out); err != nil {
		return out, err
	}
	return out, nil
}

// walk resolves the value starting at src[pos:] against node, recording a
// RawValue for every path that terminates at node and recursing into
// children that still need a deeper member or element. It returns the
// offset one past the end of the value.
func (t *PointerTree) walk(src []byte, pos int, node *pointerNode, buf *sharedBuffer, out map[string]RawValue) (int, error) {
	pos = skipWS(src, pos)
	if pos >= len(src) {
		return pos, errors.New("pointer: unexpected end of input")
	}
	start := pos
	var end int
	var err error
	switch src[pos] {
	case '{':
		end, err = t.walkObject(src, pos, node, buf, out)
	case '[':
		end, err = t.walkArray(src, pos, node, buf, out)
	default:
		end, err = skipValue(src, pos)
	}
	if err != nil {
		return end, err
	}
	for _, path := range node.paths {
		out[path] = RawValue{start: start, len: end - start, buf: buf}
	}
	return end, nil
}

func (t *PointerTree) walkObject(src []byte, pos int, node *pointerNode, buf *sharedBuffer, out map[string]RawValue) (int, error) {
	pos++ // consume '{'
	pos = skipWS(src, pos)
	if pos < len(src) && src[pos] == '}' {
		return pos + 1, nil
	}
	for {
		pos = skipWS(src, pos)
		key, keyEnd, err := readJSONString(src, pos)
		if err != nil {
			return pos, err
		}
		pos = skipWS(src, keyEnd)
		if pos >= len(src) || src[pos] != ':' {
			return pos, fmt.Errorf("pointer: expected ':' at offset %d", pos)
		}
		pos = skipWS(src, pos+1)

		var child *pointerNode
		if node.children != nil {
			child = node.children[pointerKey{key: key}]
		}
		if child != nil {
			pos, err = t.walk(src, pos, child, buf, out)
		} else {
			pos, err = skipValue(src, pos)
		}
		if err != nil {
			return pos, err
		}
		pos = skipWS(src, pos)
		if pos >= len(src) {
			return pos, errors.New("pointer: unterminated object")
		}
		switch src[pos] {
		case ',':
			pos++
		case '}':
			return pos + 1, nil
		default:
			return pos, fmt.Errorf("pointer: expected ',' or '}' at offset %d", pos)
		}
	}
}

func (t *PointerTree) walkArray(src []byte, pos int, node *pointerNode, buf *sharedBuffer, out map[string]RawValue) (int, error) {
	pos++ // consume '['
	pos = skipWS(src, pos)
	if pos < len(src) && src[pos] == ']' {
		return pos + 1, nil
	}
	idx := 0
	for {
		var child *pointerNode
		if node.children != nil {
			child = node.children[pointerKey{index: idx, isIndex: true}]
		}
		var err error
		pos = skipWS(src, pos)
		if child != nil {
			pos, err = t.walk(src, pos, child, buf, out)
		} else {
			pos, err = skipValue(src, pos)
		}
		if err != nil {
			return pos, err
		}
		idx++
		pos = skipWS(src, pos)
		if pos >= len(src) {
			return pos, errors.New("pointer: unterminated array")
		}
		switch src[pos] {
		case ',':
			pos++
		case ']':
			return pos + 1, nil
		default:
			return pos, fmt.Errorf("pointer: expected ',' or ']' at offset %d", pos)
		}
	}
}

// skipWS advances pos past JSON whitespace.
func skipWS(src []byte, pos int) int {
	for pos < len(src) {
		switch src[pos] {
		case ' ', '\t', '\n', '\r':
			pos++
		default:
			return pos
		}
	}
	return pos
}

// skipValue returns the offset one past the end of the JSON value starting
// at src[pos], without building a tape for it. Containers are skipped with
// a string-aware brace/bracket counter, the same escape tracking
// findStructuralIndices uses to tell a quote inside a string from a
// structural one.
func skipValue(src []byte, pos int) (int, error) {
	pos = skipWS(src, pos)
	if pos >= len(src) {
		return pos, errors.New("pointer: unexpected end of input")
	}
	switch src[pos] {
	case '{':
		return skipContainer(src, pos, '{', '}')
	case '[':
		return skipContainer(src, pos, '[', ']')
	case '"':
		return skipString(src, pos)
	case 't':
		return expectLiteral(src, pos, "true")
	case 'f':
		return expectLiteral(src, pos, "false")
	case 'n':
		return expectLiteral(src, pos, "null")
	default:
		return skipNumber(src, pos)
	}
}

func skipContainer(src []byte, pos int, open, close byte) (int, error) {
	depth := 0
	inString := false
	escaped := false
	for i := pos; i < len(src); i++ {
		c := src[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch {
		case c == '"':
			inString = true
		case c == open:
			depth++
		case c == close:
			depth--
			if depth == 0 {
				return i + 1, nil
			}
		}
	}
	return len(src), fmt.Errorf("pointer: unterminated %q container", open)
}

func skipString(src []byte, pos int) (int, error) {
	if pos >= len(src) || src[pos] != '"' {
		return pos, fmt.Errorf("pointer: expected string at offset %d", pos)
	}
	i := pos + 1
	for i < len(src) {
		switch src[i] {
		case '"':
			return i + 1, nil
		case '\\':
			i += 2
		default:
			i++
		}
	}
	return i, errors.New("pointer: unterminated string")
}

func isPointerDigit(c byte) bool { return c >= '0' && c <= '9' }

func skipNumber(src []byte, pos int) (int, error) {
	start := pos
	if pos < len(src) && src[pos] == '-' {
		pos++
	}
	for pos < len(src) && isPointerDigit(src[pos]) {
		pos++
	}
	if pos < len(src) && src[pos] == '.' {
		pos++
		for pos < len(src) && isPointerDigit(src[pos]) {
			pos++
		}
	}
	if pos < len(src) && (src[pos] == 'e' || src[pos] == 'E') {
		pos++
		if pos < len(src) && (src[pos] == '+' || src[pos] == '-') {
			pos++
		}
		for pos < len(src) && isPointerDigit(src[pos]) {
			pos++
		}
	}
	if pos == start {
		return pos, fmt.Errorf("pointer: invalid value at offset %d", start)
	}
	return pos, nil
}

func expectLiteral(src []byte, pos int, lit string) (int, error) {
	if pos+len(lit) > len(src) || string(src[pos:pos+len(lit)]) != lit {
		return pos, fmt.Errorf("pointer: invalid literal at offset %d", pos)
	}
	return pos + len(lit), nil
}

// readJSONString decodes the JSON string literal at src[pos] (an object
// key, in practice) and returns its unescaped value and the offset one past
// the closing quote. Escapes are resolved with appendUnescaped, the same
// unescaper the tape builder's string scanner uses.
func readJSONString(src []byte, pos int) (decoded string, end int, err error) {
	if pos >= len(src) || src[pos] != '"' {
		return "", pos, fmt.Errorf("pointer: expected string at offset %d", pos)
	}
	start := pos + 1
	i := start
	needsCopy := false
	for {
		if i >= len(src) {
			return "", i, errors.New("pointer: unterminated string")
		}
		c := src[i]
		if c == '"' {
			break
		}
		if c == '\\' {
			needsCopy = true
			if i+1 >= len(src) {
				return "", i, errors.New("pointer: unterminated escape")
			}
			if src[i+1] == 'u' {
				i += 6
			} else {
				i += 2
			}
			continue
		}
		i++
	}
	raw := src[start:i]
	if !needsCopy {
		return string(raw), i + 1, nil
	}
	dst, perr := appendUnescaped(nil, raw, src, uint64(start), false)
	if perr != nil {
		return "", i, perr
	}
	return string(dst), i + 1, nil
}
