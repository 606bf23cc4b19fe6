package simdjson

// parserOptions collects every ParserOption into one struct so
// internalParsedJson can carry it by value.
type parserOptions struct {
	copyStrings bool
	maxDepth    int
	rawNumber   bool
	rawTape     bool
	utf8Lossy   bool
}

func defaultParserOptions() parserOptions {
	return parserOptions{
		copyStrings: alwaysCopyStringsDefault,
		maxDepth:    defaultMaxDepth,
	}
}

// ParserOption is a parser option.
type ParserOption func(pj *internalParsedJson) error

// applyOptions resets pj.opts to its defaults and applies every opt in
// order, so repeated calls on a reused internalParsedJson never carry over
// options from a prior Parse call.
func (pj *internalParsedJson) applyOptions(opts []ParserOption) error {
	pj.opts = defaultParserOptions()
	for _, opt := range opts {
		if err := opt(pj); err != nil {
			return err
		}
	}
	return nil
}

// WithCopyStrings will copy strings so they no longer reference the input.
// For enhanced performance, simdjson-go can point back into the original JSON
// buffer for strings, however this can lead to issues in streaming use cases,
// or scenarios in which the underlying JSON buffer is reused. So the default
// behaviour is to create copies of all strings (not just those transformed
// anyway for unicode escape characters) into the separate Strings buffer (at
// the expense of using more memory and less performance).
// Default: true - strings are copied.
func WithCopyStrings(b bool) ParserOption {
	return func(pj *internalParsedJson) error {
		pj.opts.copyStrings = b
		return nil
	}
}

// WithMaxDepth overrides the maximum object/array nesting depth the parser
// accepts before returning a ParseError with Kind KindRecursionLimit.
// Default: 128.
func WithMaxDepth(depth int) ParserOption {
	return func(pj *internalParsedJson) error {
		if depth < 1 {
			depth = 1
		}
		pj.opts.maxDepth = depth
		return nil
	}
}

// WithRawNumber makes the parser record every JSON number as its original
// decimal source text (TagRawNumber) instead of converting it to int64,
// uint64 or float64 during stage 2. Iter.RawNumber, Iter.Int, Iter.Uint and
// Iter.Float all still work on raw numbers, performing the conversion lazily.
// Useful for round-tripping numbers with more precision than float64 offers.
// Default: false.
func WithRawNumber(b bool) ParserOption {
	return func(pj *internalParsedJson) error {
		pj.opts.rawNumber = b
		return nil
	}
}

// WithRawTape makes the parser additionally record the exact source span of
// every scalar value (string, number, true, false, null), retrievable with
// Iter.RawSpan. Objects and arrays get no recorded span. Default: false.
func WithRawTape(b bool) ParserOption {
	return func(pj *internalParsedJson) error {
		pj.opts.rawTape = b
		return nil
	}
}

// WithUTF8Lossy makes the string scanner replace invalid UTF-8 sequences
// with U+FFFD instead of returning a KindInvalidUtf8 ParseError.
// Default: false.
func WithUTF8Lossy(b bool) ParserOption {
	return func(pj *internalParsedJson) error {
		pj.opts.utf8Lossy = b
		return nil
	}
}
