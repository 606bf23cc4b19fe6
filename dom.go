package simdjson

// Constants for "return address" modes, encoding which kind of container
// (object, array, or the implicit root) a scope-end should return control
// to once its closing tape slot is patched in.
const retAddressShift = 2
const retAddressStart = 1
const retAddressObject = 2
const retAddressArray = 3

// updateChar pulls the next structural byte offset off pj.indexChans,
// advancing into the next buffered slot when the current one is exhausted.
// done is true once the channel is closed and drained.
func updateChar(pj *internalParsedJson) (idx uint64, done bool) {
	if pj.indexesChan.index >= pj.indexesChan.length {
		var ok bool
		pj.indexesChan, ok = <-pj.indexChans
		if !ok {
			return 0, true
		}
	}
	idx = uint64(pj.indexesChan.indexes[pj.indexesChan.index])
	pj.indexesChan.index++
	return idx, false
}

func isValidTrueAtom(buf []byte) bool {
	return len(buf) >= 4 && string(buf[:4]) == "true" && (len(buf) == 4 || isStructuralOrWhitespace(buf[4]))
}

func isValidFalseAtom(buf []byte) bool {
	return len(buf) >= 5 && string(buf[:5]) == "false" && (len(buf) == 5 || isStructuralOrWhitespace(buf[5]))
}

func isValidNullAtom(buf []byte) bool {
	return len(buf) >= 4 && string(buf[:4]) == "null" && (len(buf) == 4 || isStructuralOrWhitespace(buf[4]))
}

func isStructuralOrWhitespace(c byte) bool {
	switch c {
	case '{', '}', '[', ']', ':', ',', ' ', '\t', '\n', '\r', 0:
		return true
	}
	return false
}

// unifiedMachine is stage 2: a goto-based state machine that walks the
// structural offsets stage 1 produced, building the tape as it goes. The
// control-flow shape (object/array/root states, scope-end patching the
// container's start slot with its end offset via containingScopeOffset)
// mirrors the teacher's amd64 unified_machine; what changed is every
// failure now returns a positioned *ParseError instead of a bare bool, the
// depth limit is pj.opts.maxDepth instead of a hardcoded constant, and
// TagRawNumber/raw-span bookkeeping hook in per the parser options.
func unifiedMachine(buf []byte, pj *internalParsedJson) *ParseError {
	const addOneForRoot = 1
	maxDepth := pj.opts.maxDepth
	if maxDepth <= 0 {
		maxDepth = defaultMaxDepth
	}

	var idx uint64
	var offset uint64
	var done bool

	fail := func(kind ErrorKind, at uint64, msg string) *ParseError {
		return newParseError(kind, buf, int(at), msg)
	}

	depthOf := func() int { return len(pj.containingScopeOffset) }

	maybeRawSpan := func(tapeIdx int, start, end int) {
		if pj.opts.rawTape {
			pj.recordRawSpan(tapeIdx, start, end)
		}
	}

	parseAtom := func(idx uint64) *ParseError {
		switch buf[idx] {
		case '"':
			tapeIdx := len(pj.Tape)
			closeIdx, perr := scanString(pj, buf, idx)
			if perr != nil {
				return perr
			}
			maybeRawSpan(tapeIdx, int(idx), int(closeIdx)+1)
		case 't':
			if !isValidTrueAtom(buf[idx:]) {
				return fail(KindInvalidNumber, idx, "invalid literal, expected true")
			}
			tapeIdx := len(pj.Tape)
			pj.write_tape(0, buf[idx])
			maybeRawSpan(tapeIdx, int(idx), int(idx)+4)
		case 'f':
			if !isValidFalseAtom(buf[idx:]) {
				return fail(KindInvalidNumber, idx, "invalid literal, expected false")
			}
			tapeIdx := len(pj.Tape)
			pj.write_tape(0, buf[idx])
			maybeRawSpan(tapeIdx, int(idx), int(idx)+5)
		case 'n':
			if !isValidNullAtom(buf[idx:]) {
				return fail(KindInvalidNumber, idx, "invalid literal, expected null")
			}
			tapeIdx := len(pj.Tape)
			pj.write_tape(0, buf[idx])
			maybeRawSpan(tapeIdx, int(idx), int(idx)+4)
		case '0', '1', '2', '3', '4', '5', '6', '7', '8', '9', '-':
			tapeIdx := len(pj.Tape)
			end, perr := scanNumber(pj, buf, idx)
			if perr != nil {
				return perr
			}
			maybeRawSpan(tapeIdx, int(idx), int(end))
		default:
			return fail(KindExpectedValue, idx, "expected value")
		}
		return nil
	}

	pj.containingScopeOffset = append(pj.containingScopeOffset, (pj.get_current_loc()<<retAddressShift)|retAddressStart)
	pj.write_tape(0, 'r')

	if idx, done = updateChar(pj); done {
		goto succeed
	}

continueRoot:
	switch buf[idx] {
	case '{':
		if depthOf() >= maxDepth {
			return fail(KindRecursionLimit, idx, "maximum nesting depth exceeded")
		}
		pj.containingScopeOffset = append(pj.containingScopeOffset, (pj.get_current_loc()<<retAddressShift)|retAddressStart)
		pj.write_tape(0, buf[idx])
		goto objectBegin
	case '[':
		if depthOf() >= maxDepth {
			return fail(KindRecursionLimit, idx, "maximum nesting depth exceeded")
		}
		pj.containingScopeOffset = append(pj.containingScopeOffset, (pj.get_current_loc()<<retAddressShift)|retAddressStart)
		pj.write_tape(0, buf[idx])
		goto arrayBegin
	default:
		return fail(KindExpectedValue, idx, "expected '{' or '[' at top level")
	}

startContinue:
	if idx, done = updateChar(pj); done {
		goto succeed
	}
	if buf[idx] != '\n' {
		return fail(KindTrailingData, idx, "trailing data after value")
	}
	for buf[idx] == '\n' {
		if idx, done = updateChar(pj); done {
			goto succeed
		}
	}
	offset = pj.containingScopeOffset[len(pj.containingScopeOffset)-1]
	pj.containingScopeOffset = pj.containingScopeOffset[:len(pj.containingScopeOffset)-1]
	pj.annotate_previousloc(offset>>retAddressShift, pj.get_current_loc()+addOneForRoot)
	pj.write_tape(offset>>retAddressShift, 'r')
	pj.containingScopeOffset = append(pj.containingScopeOffset, (pj.get_current_loc()<<retAddressShift)|retAddressStart)
	pj.write_tape(0, 'r')
	goto continueRoot

objectBegin:
	if idx, done = updateChar(pj); done {
		goto succeed
	}
	switch buf[idx] {
	case '"':
		if perr := parseAtom(idx); perr != nil {
			return perr
		}
		goto objectKeyState
	case '}':
		goto scopeEnd
	default:
		return fail(KindExpectedQuote, idx, "expected string key or '}'")
	}

objectKeyState:
	if idx, done = updateChar(pj); done {
		goto succeed
	}
	if buf[idx] != ':' {
		return fail(KindExpectedColon, idx, "expected ':' after object key")
	}
	if idx, done = updateChar(pj); done {
		goto succeed
	}
	switch buf[idx] {
	case '{':
		if depthOf() >= maxDepth {
			return fail(KindRecursionLimit, idx, "maximum nesting depth exceeded")
		}
		pj.containingScopeOffset = append(pj.containingScopeOffset, (pj.get_current_loc()<<retAddressShift)|retAddressObject)
		pj.write_tape(0, buf[idx])
		goto objectBegin
	case '[':
		if depthOf() >= maxDepth {
			return fail(KindRecursionLimit, idx, "maximum nesting depth exceeded")
		}
		pj.containingScopeOffset = append(pj.containingScopeOffset, (pj.get_current_loc()<<retAddressShift)|retAddressObject)
		pj.write_tape(0, buf[idx])
		goto arrayBegin
	default:
		if perr := parseAtom(idx); perr != nil {
			return perr
		}
	}

objectContinue:
	if idx, done = updateChar(pj); done {
		goto succeed
	}
	switch buf[idx] {
	case ',':
		if idx, done = updateChar(pj); done {
			goto succeed
		}
		if buf[idx] != '"' {
			return fail(KindExpectedQuote, idx, "expected string key after ','")
		}
		if perr := parseAtom(idx); perr != nil {
			return perr
		}
		goto objectKeyState
	case '}':
		goto scopeEnd
	default:
		return fail(KindExpectedComma, idx, "expected ',' or '}'")
	}

scopeEnd:
	offset = pj.containingScopeOffset[len(pj.containingScopeOffset)-1]
	pj.containingScopeOffset = pj.containingScopeOffset[:len(pj.containingScopeOffset)-1]
	pj.write_tape(offset>>retAddressShift, buf[idx])
	pj.annotate_previousloc(offset>>retAddressShift, pj.get_current_loc())
	switch offset & ((1 << retAddressShift) - 1) {
	case retAddressArray:
		goto arrayContinue
	case retAddressObject:
		goto objectContinue
	default:
		goto startContinue
	}

arrayBegin:
	if idx, done = updateChar(pj); done {
		goto succeed
	}
	if buf[idx] == ']' {
		goto scopeEnd
	}

mainArraySwitch:
	switch buf[idx] {
	case '{':
		if depthOf() >= maxDepth {
			return fail(KindRecursionLimit, idx, "maximum nesting depth exceeded")
		}
		pj.containingScopeOffset = append(pj.containingScopeOffset, (pj.get_current_loc()<<retAddressShift)|retAddressArray)
		pj.write_tape(0, buf[idx])
		goto objectBegin
	case '[':
		if depthOf() >= maxDepth {
			return fail(KindRecursionLimit, idx, "maximum nesting depth exceeded")
		}
		pj.containingScopeOffset = append(pj.containingScopeOffset, (pj.get_current_loc()<<retAddressShift)|retAddressArray)
		pj.write_tape(0, buf[idx])
		goto arrayBegin
	default:
		if perr := parseAtom(idx); perr != nil {
			return perr
		}
	}

arrayContinue:
	if idx, done = updateChar(pj); done {
		goto succeed
	}
	switch buf[idx] {
	case ',':
		if idx, done = updateChar(pj); done {
			goto succeed
		}
		goto mainArraySwitch
	case ']':
		goto scopeEnd
	default:
		return fail(KindExpectedComma, idx, "expected ',' or ']'")
	}

succeed:
	offset = pj.containingScopeOffset[len(pj.containingScopeOffset)-1]
	pj.containingScopeOffset = pj.containingScopeOffset[:len(pj.containingScopeOffset)-1]
	if len(pj.containingScopeOffset) != 0 {
		return fail(KindEOF, uint64(len(buf)), "unexpected end of input, unclosed container")
	}
	pj.annotate_previousloc(offset>>retAddressShift, pj.get_current_loc()+addOneForRoot)
	pj.write_tape(offset>>retAddressShift, 'r')
	pj.isvalid = true
	return nil
}
