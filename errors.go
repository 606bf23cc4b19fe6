package simdjson

import (
	"fmt"
	"strings"
)

// ErrorKind classifies a parse failure per §7.
type ErrorKind uint8

const (
	KindExpectedValue ErrorKind = iota
	KindExpectedColon
	KindExpectedComma
	KindExpectedQuote
	KindInvalidEscape
	KindInvalidUnicode
	KindInvalidUtf8
	KindInvalidNumber
	KindNumberOutOfRange
	KindEOF
	KindTrailingData
	KindRecursionLimit
	KindUnmatchedType
	KindMissingField
)

func (k ErrorKind) String() string {
	switch k {
	case KindExpectedValue:
		return "ExpectedValue"
	case KindExpectedColon:
		return "ExpectedColon"
	case KindExpectedComma:
		return "ExpectedComma"
	case KindExpectedQuote:
		return "ExpectedQuote"
	case KindInvalidEscape:
		return "InvalidEscape"
	case KindInvalidUnicode:
		return "InvalidUnicode"
	case KindInvalidUtf8:
		return "InvalidUtf8"
	case KindInvalidNumber:
		return "InvalidNumber"
	case KindNumberOutOfRange:
		return "NumberOutOfRange"
	case KindEOF:
		return "Eof"
	case KindTrailingData:
		return "TrailingData"
	case KindRecursionLimit:
		return "RecursionLimit"
	case KindUnmatchedType:
		return "UnmatchedType"
	case KindMissingField:
		return "MissingField"
	}
	return "Unknown"
}

// Class is the ergonomic eof/syntax/unmatched-type grouping §7 asks for.
type Class uint8

const (
	ClassSyntax Class = iota
	ClassEOF
	ClassUnmatchedType
)

// Class classifies the error kind for coarse-grained handling at the call
// site, without requiring callers to switch over every individual Kind.
func (k ErrorKind) Class() Class {
	switch k {
	case KindEOF:
		return ClassEOF
	case KindUnmatchedType, KindMissingField, KindNumberOutOfRange:
		return ClassUnmatchedType
	default:
		return ClassSyntax
	}
}

// maxSnippetWidth bounds the caret snippet per §4.J.
const maxSnippetWidth = 80

// ParseError is the single-assignment error the parser reports: the first
// raised error is preserved (§7, "The parser's error state is
// single-assignment") and propagated to the entry point without local
// recovery.
type ParseError struct {
	Kind   ErrorKind
	Offset int
	Line   int
	Column int

	message string
	source  []byte
}

func (e *ParseError) Error() string {
	msg := e.message
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.source == nil {
		return fmt.Sprintf("%s at line %d column %d", msg, e.Line, e.Column)
	}
	return fmt.Sprintf("%s at line %d column %d\n\n\t%s\n\t%s^\n", msg, e.Line, e.Column, e.snippet(), strings.Repeat(" ", e.caretIndent()))
}

// Class forwards to the underlying Kind's classification.
func (e *ParseError) Class() Class { return e.Kind.Class() }

// snippet returns a caret-ready line fragment bounded to maxSnippetWidth
// bytes, centered as closely as possible on Offset.
func (e *ParseError) snippet() string {
	if len(e.source) == 0 {
		return ""
	}
	lineStart := e.Offset
	for lineStart > 0 && e.source[lineStart-1] != '\n' {
		lineStart--
	}
	lineEnd := e.Offset
	for lineEnd < len(e.source) && e.source[lineEnd] != '\n' {
		lineEnd++
	}
	line := e.source[lineStart:lineEnd]
	if len(line) <= maxSnippetWidth {
		return string(line)
	}
	// Center the window on the offending offset.
	rel := e.Offset - lineStart
	start := rel - maxSnippetWidth/2
	if start < 0 {
		start = 0
	}
	end := start + maxSnippetWidth
	if end > len(line) {
		end = len(line)
		start = end - maxSnippetWidth
		if start < 0 {
			start = 0
		}
	}
	return string(line[start:end])
}

func (e *ParseError) caretIndent() int {
	lineStart := e.Offset
	for lineStart > 0 && e.source[lineStart-1] != '\n' {
		lineStart--
	}
	lineEnd := e.Offset
	for lineEnd < len(e.source) && e.source[lineEnd] != '\n' {
		lineEnd++
	}
	rel := e.Offset - lineStart
	if lineEnd-lineStart <= maxSnippetWidth {
		return rel
	}
	// Same window as snippet.
	start := rel - maxSnippetWidth/2
	if start < 0 {
		start = 0
	}
	if start+maxSnippetWidth > lineEnd-lineStart {
		start = lineEnd - lineStart - maxSnippetWidth
	}
	return rel - start
}

// newParseError constructs a positioned ParseError by scanning source for
// line/column (1-indexed, counting '\n', per §4.J).
func newParseError(kind ErrorKind, source []byte, offset int, msg string) *ParseError {
	if offset > len(source) {
		offset = len(source)
	}
	line, col := 1, 1
	for i := 0; i < offset; i++ {
		if source[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return &ParseError{
		Kind:    kind,
		Offset:  offset,
		Line:    line,
		Column:  col,
		message: msg,
		source:  source,
	}
}
