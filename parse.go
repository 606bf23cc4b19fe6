package simdjson

import (
	"bytes"
	"sync"
)

// initialize prepares pj's buffers for parsing a message of the given size,
// reusing existing capacity where possible.
func (pj *internalParsedJson) initialize(size int) {
	if pj.opts.maxDepth == 0 {
		pj.opts = defaultParserOptions()
	}

	avgTapeSize := size * 15 / 100
	if cap(pj.Tape) < avgTapeSize {
		pj.Tape = make([]uint64, 0, avgTapeSize)
	}
	pj.Tape = pj.Tape[:0]

	stringsSize := size / 10
	if stringsSize < 128 {
		stringsSize = 128
	}
	if cap(pj.Strings) < stringsSize {
		pj.Strings = make([]byte, 0, stringsSize)
	}
	pj.Strings = pj.Strings[:0]
	pj.rawSpans = nil

	maxDepth := pj.opts.maxDepth
	if maxDepth <= 0 {
		maxDepth = defaultMaxDepth
	}
	if cap(pj.containingScopeOffset) < maxDepth {
		pj.containingScopeOffset = make([]uint64, 0, maxDepth)
	}
	pj.containingScopeOffset = pj.containingScopeOffset[:0]
}

func (pj *internalParsedJson) parseMessage(msg []byte) error {
	return pj.parseMessageInternal(msg, false)
}

func (pj *internalParsedJson) parseMessageNdjson(msg []byte) error {
	return pj.parseMessageInternal(msg, true)
}

func (pj *internalParsedJson) parseMessageInternal(msg []byte, ndjson bool) error {
	pj.Message = bytes.TrimSpace(msg)
	pj.initialize(len(pj.Message))

	if len(pj.Message) == 0 {
		return newParseError(KindEOF, pj.Message, 0, "empty JSON document")
	}

	if ndjson {
		pj.ndjson = 1
	} else {
		pj.ndjson = 0
	}

	var wg sync.WaitGroup
	wg.Add(2)

	// The channel capacity is kept smaller than the number of slots so the
	// sender blocks until the consumer has finished the slot it's working
	// on, bounding how far stage 1 can run ahead of stage 2.
	pj.indexChans = make(chan indexChan, indexSlots-2)
	pj.buffersOffset = ^uint64(0)

	var stage1Failed bool
	var stage2Err *ParseError
	go func() {
		defer wg.Done()
		if !findStructuralIndices(pj.Message, pj) {
			stage1Failed = true
		}
	}()
	go func() {
		defer wg.Done()
		if perr := unifiedMachine(pj.Message, pj); perr != nil {
			stage2Err = perr
			for range pj.indexChans {
			}
		}
	}()

	wg.Wait()

	if stage2Err != nil {
		return stage2Err
	}
	if stage1Failed {
		return newParseError(KindExpectedValue, pj.Message, 0, "failed to find all structural indices")
	}
	return nil
}
