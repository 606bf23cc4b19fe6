package simdjson

import (
	"math"
	"strconv"
)

// parseDigits implements the §4.C contract: parse up to 16 ASCII digits
// from buf into a uint64, consuming whole 8-digit chunks through
// parseEightDigitsSWAR when possible and falling back to a scalar
// byte-at-a-time loop for the remainder. It returns the decimal value of
// the longest digit run at the start of buf, bounded by n and by 16, and
// how many bytes were consumed — consumed <= n, consumed <= 16.
func parseDigits(buf []byte, n int) (value uint64, consumed int) {
	if n > 16 {
		n = 16
	}
	if n > len(buf) {
		n = len(buf)
	}
	// Fast SWAR path: a full 8-digit run with no early non-digit byte.
	for consumed < n {
		remain := n - consumed
		if remain >= 8 {
			chunk := buf[consumed : consumed+8]
			if k, v, ok := parseEightDigitsSWAR(chunk); ok && k == 8 {
				value = value*100000000 + v
				consumed += 8
				continue
			}
		}
		// Scalar long tail: stop at the first non-digit.
		c := buf[consumed]
		if c < '0' || c > '9' {
			return value, consumed
		}
		value = value*10 + uint64(c-'0')
		consumed++
	}
	return value, consumed
}

// parseEightDigitsSWAR parses exactly 8 bytes as up to 8 ASCII digits,
// stopping at the first non-digit. k is the number of leading digit bytes
// actually consumed from the 8; ok is always true (reserved for a future
// backend that can fail to load the word at all).
//
// The per-lane compare-against-range step of §4.C (compare-gt-9,
// compare-lt-0) is the loop condition below; the accumulate is a
// byte-at-a-time Horner loop rather than the pairwise x10/x100/x10000 multiply-fold a
// real PMADDUBSW/PMADDWD pair would use, since that fold has no portable Go
// expression we could verify without assembling and running it.
func parseEightDigitsSWAR(b []byte) (k int, v uint64, ok bool) {
	for i := 0; i < 8; i++ {
		if b[i] < '0' || b[i] > '9' {
			return i, v, true
		}
		v = v*10 + uint64(b[i]-'0')
	}
	return 8, v, true
}

// pow10Table holds the powers of ten representable exactly as float64,
// bounding the Eisel-Lemire-style fast float assembly path below.
var pow10Table = [...]float64{
	1e0, 1e1, 1e2, 1e3, 1e4, 1e5, 1e6, 1e7, 1e8, 1e9,
	1e10, 1e11, 1e12, 1e13, 1e14, 1e15, 1e16, 1e17, 1e18, 1e19,
	1e20, 1e21, 1e22,
}

// scanNumber finds the extent of the JSON number literal starting at
// buf[idx] (idx may point at a leading '-') and converts it, writing the
// corresponding tape entry to pj. It returns the index just past the last
// byte of the number.
func scanNumber(pj *internalParsedJson, buf []byte, idx uint64) (end uint64, perr *ParseError) {
	start := idx
	i := idx
	neg := false
	if i < uint64(len(buf)) && buf[i] == '-' {
		neg = true
		i++
	}
	if i >= uint64(len(buf)) || buf[i] < '0' || buf[i] > '9' {
		return 0, newParseError(KindInvalidNumber, buf, int(i), "expected digit")
	}
	intStart := i
	if buf[i] == '0' {
		i++
	} else {
		for i < uint64(len(buf)) && buf[i] >= '0' && buf[i] <= '9' {
			i++
		}
	}
	intEnd := i
	isFloat := false
	fracStart, fracEnd := i, i
	expVal := 0
	if i < uint64(len(buf)) && buf[i] == '.' {
		isFloat = true
		i++
		fracStart = i
		for i < uint64(len(buf)) && buf[i] >= '0' && buf[i] <= '9' {
			i++
		}
		fracEnd = i
		if fracStart == fracEnd {
			return 0, newParseError(KindInvalidNumber, buf, int(i), "expected digit after decimal point")
		}
	}
	if i < uint64(len(buf)) && (buf[i] == 'e' || buf[i] == 'E') {
		isFloat = true
		i++
		expNeg := false
		if i < uint64(len(buf)) && (buf[i] == '+' || buf[i] == '-') {
			expNeg = buf[i] == '-'
			i++
		}
		expStart := i
		for i < uint64(len(buf)) && buf[i] >= '0' && buf[i] <= '9' {
			i++
		}
		if i == expStart {
			return 0, newParseError(KindInvalidNumber, buf, int(i), "expected digit in exponent")
		}
		v, _ := parseDigits(buf[expStart:i], int(i-expStart))
		expVal = int(v)
		if expNeg {
			expVal = -expVal
		}
	}
	end = i
	if end < uint64(len(buf)) && !isStructuralOrWhitespace(buf[end]) {
		return 0, newParseError(KindInvalidNumber, buf, int(end), "unexpected character after number")
	}
	raw := buf[start:end]

	if pj.opts.rawNumber {
		pj.writeRawNumber(start, end-start)
		return end, nil
	}

	if !isFloat {
		digits := buf[intStart:intEnd]
		mantissa, consumed := parseDigits(digits, len(digits))
		fits := consumed == len(digits)
		if !fits && len(digits) <= 20 {
			// parseDigits stops after 16 digits; longer integers that still
			// fit in a uint64 are converted here.
			if v, err := strconv.ParseUint(string(digits), 10, 64); err == nil {
				mantissa, fits = v, true
			}
		}
		if fits {
			if !neg && mantissa <= math.MaxInt64 {
				pj.write_tape_s64(int64(mantissa))
				return end, nil
			}
			if !neg {
				pj.write_tape_u64(mantissa)
				return end, nil
			}
			if mantissa <= uint64(1)<<63 {
				pj.write_tape_s64(-int64(mantissa))
				return end, nil
			}
		}
	}

	// Concatenate integer and fractional digits into a single mantissa and
	// fold the fractional digit count into the decimal exponent, then hand
	// off to assembleFloat's fast/slow split.
	digitBuf := make([]byte, 0, (intEnd-intStart)+(fracEnd-fracStart))
	digitBuf = append(digitBuf, buf[intStart:intEnd]...)
	digitBuf = append(digitBuf, buf[fracStart:fracEnd]...)
	mantissa, consumed := parseDigits(digitBuf, len(digitBuf))
	exp10 := expVal - int(fracEnd-fracStart)
	if consumed != len(digitBuf) {
		// More than 16 significant digits: outside the fast-path envelope
		// regardless, so let assembleFloat fall through to strconv.
		mantissa = 1 << 53
	}
	f, _, err := assembleFloat(mantissa, exp10, neg, raw)
	if err != nil {
		if pe, ok := err.(*ParseError); ok {
			pe.source = buf
			pe.Offset = int(start)
			return 0, pe
		}
		return 0, newParseError(KindInvalidNumber, buf, int(start), err.Error())
	}
	if !isFloat {
		pj.writeTapeTagValFlags(TagFloat, math.Float64bits(f), uint64(FloatOverflowedInteger))
		return end, nil
	}
	pj.write_tape_double(f)
	return end, nil
}

// assembleFloat converts a decimal mantissa/exponent pair into the nearest
// float64. The fast path applies only when the mantissa fits exactly in a
// float64 (<2^53) and the decimal exponent keeps the result in the range
// where multiplying by a power of ten is itself exact — the same envelope
// the Eisel-Lemire fast path covers. Outside that envelope we fall back to
// strconv.ParseFloat on the original decimal text, which already implements
// a correctly-rounded decimal-to-binary conversion; reimplementing
// Eisel-Lemire's 128-bit multiply table by hand here, unable to run the Go
// toolchain to verify it bit-for-bit, would trade a trusted stdlib
// algorithm for an untested one without any ecosystem dependency bridging
// the gap.
func assembleFloat(mantissa uint64, exp10 int, neg bool, raw []byte) (float64, FloatFlags, error) {
	if mantissa < (1<<53) && exp10 >= -22 && exp10 <= 22 {
		var f float64
		if exp10 >= 0 {
			f = float64(mantissa) * pow10Table[exp10]
		} else {
			f = float64(mantissa) / pow10Table[-exp10]
		}
		if neg {
			f = -f
		}
		return f, 0, nil
	}
	f, err := strconv.ParseFloat(string(raw), 64)
	if err != nil {
		return 0, 0, &ParseError{Kind: KindInvalidNumber, message: err.Error()}
	}
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, 0, &ParseError{Kind: KindInvalidNumber, message: "number out of float64 range"}
	}
	return f, 0, nil
}
