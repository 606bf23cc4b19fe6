//go:build wasm

package simd

// wasm128Vector emulates WASM SIMD128's 128-bit (16-byte) lane width
// (i8x16.eq / i8x16.gt_u / i8x16.bitmask).
type wasm128Vector struct{}

func (wasm128Vector) Backend() Backend { return BackendWASM128 }
func (wasm128Vector) Width() Width     { return Width128 }

func (wasm128Vector) Eq(blk *Block, c byte) uint64 { return eqMaskChunks(blk, int(Width128), c) }
func (wasm128Vector) Gt(blk *Block, c byte) uint64 { return gtMaskChunks(blk, int(Width128), c) }
func (wasm128Vector) Le(blk *Block, c byte) uint64 { return leMaskChunks(blk, int(Width128), c) }

func (wasm128Vector) Whitespace(blk *Block) uint64 {
	return whitespaceMaskChunks(blk, int(Width128))
}

func (wasm128Vector) StructuralCandidates(blk *Block) uint64 {
	return structuralMaskChunks(blk, int(Width128))
}
