package simdjson

import "unicode/utf8"

// scanString validates and, when necessary, unescapes the JSON string that
// starts at buf[idx] (buf[idx] must be the opening quote) and writes the
// corresponding tape entry. It returns the index of the closing quote.
//
// When the string contains no escapes and the parser was configured with
// WithCopyStrings(false), the tape points directly back into the message
// buffer (the borrowed path) instead of copying into pj.Strings - the
// teacher this module started from hard-coded the copying path; this is the
// one place that option actually changes behavior.
func scanString(pj *internalParsedJson, buf []byte, idx uint64) (closeIdx uint64, perr *ParseError) {
	start := idx + 1
	i := start
	needsCopy := false
	for {
		if int(i) >= len(buf) {
			return 0, newParseError(KindEOF, buf, len(buf), "unterminated string")
		}
		c := buf[i]
		if c == '"' {
			break
		}
		if c == '\\' {
			needsCopy = true
			if int(i+1) >= len(buf) {
				return 0, newParseError(KindEOF, buf, len(buf), "unterminated escape sequence")
			}
			esc := buf[i+1]
			switch esc {
			case '"', '\\', '/', 'b', 'f', 'n', 'r', 't':
				i += 2
				continue
			case 'u':
				if int(i+6) > len(buf) {
					return 0, newParseError(KindEOF, buf, len(buf), "unterminated unicode escape")
				}
				if !isHex4(buf[i+2 : i+6]) {
					return 0, newParseError(KindInvalidUnicode, buf, int(i+2), "invalid \\u escape")
				}
				i += 6
				continue
			default:
				return 0, newParseError(KindInvalidEscape, buf, int(i+1), "invalid escape character")
			}
		}
		if c < 0x20 {
			return 0, newParseError(KindInvalidUtf8, buf, int(i), "unescaped control character in string")
		}
		if c >= 0x80 {
			r, size := utf8.DecodeRune(buf[i:])
			if r == utf8.RuneError && size <= 1 {
				if !pj.opts.utf8Lossy {
					return 0, newParseError(KindInvalidUtf8, buf, int(i), "invalid UTF-8 sequence")
				}
				needsCopy = true
				i++
				continue
			}
			i += uint64(size)
			continue
		}
		i++
	}
	closeIdx = i

	raw := buf[start:closeIdx]
	if !needsCopy && !pj.opts.copyStrings {
		pj.write_tape(start, '"')
		pj.Tape = append(pj.Tape, uint64(len(raw)))
		return closeIdx, nil
	}

	reqLen := uint64(len(pj.Strings)) + uint64(len(raw)) + 32
	if reqLen >= uint64(cap(pj.Strings)) {
		newSize := uint64(cap(pj.Strings)) * 2
		if newSize < reqLen {
			newSize = reqLen
		}
		strs := make([]byte, len(pj.Strings), newSize)
		copy(strs, pj.Strings)
		pj.Strings = strs
	}
	dstStart := len(pj.Strings)
	var unescapeErr *ParseError
	pj.Strings, unescapeErr = appendUnescaped(pj.Strings, raw, buf, start, pj.opts.utf8Lossy)
	if unescapeErr != nil {
		return 0, unescapeErr
	}
	size := uint64(len(pj.Strings) - dstStart)
	pj.write_tape(uint64(STRINGBUFBIT)+uint64(dstStart), '"')
	pj.Tape = append(pj.Tape, size)
	return closeIdx, nil
}

func isHex4(b []byte) bool {
	for _, c := range b {
		if !isHexDigit(c) {
			return false
		}
	}
	return true
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func hexVal(c byte) uint16 {
	switch {
	case c >= '0' && c <= '9':
		return uint16(c - '0')
	case c >= 'a' && c <= 'f':
		return uint16(c-'a') + 10
	default:
		return uint16(c-'A') + 10
	}
}

// appendUnescaped appends the unescaped contents of raw (the bytes strictly
// between the quotes, already validated by scanString) to dst, resolving
// backslash escapes and joining UTF-16 surrogate pairs from \u escapes into
// a single UTF-8 rune.
func appendUnescaped(dst, raw, fullBuf []byte, rawStart uint64, lossy bool) ([]byte, *ParseError) {
	i := 0
	for i < len(raw) {
		c := raw[i]
		if c != '\\' {
			if c >= 0x80 {
				r, size := utf8.DecodeRune(raw[i:])
				if r == utf8.RuneError && size <= 1 {
					dst = utf8.AppendRune(dst, utf8.RuneError)
					i++
					continue
				}
				dst = append(dst, raw[i:i+size]...)
				i += size
				continue
			}
			dst = append(dst, c)
			i++
			continue
		}
		esc := raw[i+1]
		switch esc {
		case '"':
			dst = append(dst, '"')
		case '\\':
			dst = append(dst, '\\')
		case '/':
			dst = append(dst, '/')
		case 'b':
			dst = append(dst, '\b')
		case 'f':
			dst = append(dst, '\f')
		case 'n':
			dst = append(dst, '\n')
		case 'r':
			dst = append(dst, '\r')
		case 't':
			dst = append(dst, '\t')
		case 'u':
			r := decodeHex4(raw[i+2 : i+6])
			i += 6
			if utf16IsHighSurrogate(r) && i+1 < len(raw) && raw[i] == '\\' && raw[i+1] == 'u' {
				low := decodeHex4(raw[i+2 : i+6])
				if utf16IsLowSurrogate(low) {
					combined := utf16Decode(r, low)
					dst = utf8.AppendRune(dst, combined)
					i += 6
					continue
				}
			}
			if utf16IsSurrogate(r) {
				if lossy {
					dst = utf8.AppendRune(dst, utf8.RuneError)
					continue
				}
				off := int(rawStart) + i - 6
				return nil, newParseError(KindInvalidUnicode, fullBuf, off, "unpaired UTF-16 surrogate")
			}
			dst = utf8.AppendRune(dst, r)
			continue
		}
		i += 2
	}
	return dst, nil
}

func decodeHex4(b []byte) rune {
	return rune(hexVal(b[0])<<12 | hexVal(b[1])<<8 | hexVal(b[2])<<4 | hexVal(b[3]))
}

func utf16IsHighSurrogate(r rune) bool { return r >= 0xd800 && r <= 0xdbff }
func utf16IsLowSurrogate(r rune) bool  { return r >= 0xdc00 && r <= 0xdfff }
func utf16IsSurrogate(r rune) bool     { return r >= 0xd800 && r <= 0xdfff }

func utf16Decode(high, low rune) rune {
	return ((high - 0xd800) << 10) | (low - 0xdc00) + 0x10000
}
