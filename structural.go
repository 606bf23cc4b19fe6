package simdjson

import "github.com/parsekit/simdjson-go/simd"

// findStructuralIndices is stage 1: it classifies every byte of buf using
// the detected simd.Vector backend and feeds the resulting structural byte
// offsets to stage 2 over pj.indexChans, the channel pipeline stage 2's
// updateChar drains from.
//
// Byte classification (whitespace/structural/quote/backslash) is done a
// block at a time through the simd.Vector interface. Tracking whether a
// given byte lies inside a string, and whether a byte starts a new scalar
// token (number/true/false/null), has to carry state (quote-open,
// backslash-escape, "previous byte was itself mid-scalar") from one byte to
// the next, so unlike the block classification it is an ordinary sequential
// scan rather than a bitmask trick - the real simdjson computes the same
// carries with a carryless multiply, which has no portable Go expression we
// could verify without assembling and running it (bitmask.go has a
// shift-XOR prefixXOR, but this scan does not call it).
//
// Only the opening quote of a string is emitted as a structural offset:
// scanString consumes the string body and closing quote directly from buf,
// so emitting the close quote too would desync stage 2's updateChar calls.
// A scalar token (digit/'-'/'t'/'f'/'n') has no single-byte marker of its
// own in StructuralCandidates, so its first byte is emitted as a
// pseudo-structural offset whenever it follows whitespace, a structural
// character or a quote - the same "prev_iter_ends_pseudo_pred" carry the
// teacher's finalize_structurals computes, just tracked one byte at a time
// instead of with a bitmask carry.
//
// When parsing NDJSON (pj.ndjson == 1), every newline outside a string is
// emitted too, so stage 2's startContinue can split the input into one root
// per line.
func findStructuralIndices(buf []byte, pj *internalParsedJson) bool {
	vec := simd.Detect()

	cur := indexChan{indexes: &pj.buffers[0]}
	bufSlot := 1

	flush := func() {
		if cur.length == 0 {
			return
		}
		pj.indexChans <- cur
		cur = indexChan{indexes: &pj.buffers[bufSlot%indexSlots]}
		bufSlot++
	}

	appendIdx := func(offset uint32) {
		if cur.length >= indexSizeWithSafetyBuffer {
			flush()
		}
		cur.indexes[cur.length] = offset
		cur.length++
	}

	inString := false
	escaped := false
	prevScalar := false

	for pos := 0; pos < len(buf); pos += simd.BlockLen {
		var blk simd.Block
		n := copy(blk[:], buf[pos:])
		for i := n; i < simd.BlockLen; i++ {
			blk[i] = ' '
		}

		controlMask := vec.StructuralCandidates(&blk)
		quoteMask := vec.Eq(&blk, '"')
		backslashMask := vec.Eq(&blk, '\\')
		wsMask := vec.Whitespace(&blk)

		for i := 0; i < n; i++ {
			bit := uint64(1) << uint(i)
			switch {
			case inString:
				switch {
				case escaped:
					escaped = false
				case backslashMask&bit != 0:
					escaped = true
				case quoteMask&bit != 0:
					inString = false
					prevScalar = false
				}
			case quoteMask&bit != 0:
				inString = true
				prevScalar = false
				appendIdx(uint32(pos + i))
			case controlMask&bit != 0:
				prevScalar = false
				appendIdx(uint32(pos + i))
			case wsMask&bit != 0:
				prevScalar = false
				if pj.ndjson == 1 && buf[pos+i] == '\n' {
					appendIdx(uint32(pos + i))
				}
			default:
				if !prevScalar {
					appendIdx(uint32(pos + i))
				}
				prevScalar = true
			}
		}
	}

	flush()
	close(pj.indexChans)
	return true
}

// SupportedCPU reports whether the running CPU supports the simd backend
// that stage 1 uses; it forwards to simd.SupportedCPU.
func SupportedCPU() bool { return simd.SupportedCPU() }
