package simd

// scalarVector is the back-end-less fallback: one lane per byte, no grouping.
// Every other backend is defined in terms of the same chunk helpers with a
// wider chunk size; scalar is simply the chunk-size-1 case, kept as its own
// type so Detect() can report BackendScalar explicitly per §4.A.
type scalarVector struct{}

// Scalar returns the scalar fallback Vector, always available.
func Scalar() Vector { return scalarVector{} }

func (scalarVector) Backend() Backend { return BackendScalar }
func (scalarVector) Width() Width     { return 1 }

func (scalarVector) Eq(blk *Block, c byte) uint64 { return eqMaskChunks(blk, 1, c) }
func (scalarVector) Gt(blk *Block, c byte) uint64 { return gtMaskChunks(blk, 1, c) }
func (scalarVector) Le(blk *Block, c byte) uint64 { return leMaskChunks(blk, 1, c) }

func (scalarVector) Whitespace(blk *Block) uint64 {
	return whitespaceMaskChunks(blk, 1)
}

func (scalarVector) StructuralCandidates(blk *Block) uint64 {
	return structuralMaskChunks(blk, 1)
}
