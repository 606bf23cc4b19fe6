//go:build amd64

package simd

import "github.com/klauspost/cpuid/v2"

// Detect picks the best available backend for the running CPU. Selection is
// a one-time runtime check, not a per-block decision (§4.A: "no runtime
// dispatch is required but a runtime-dispatch entry point is permitted").
func Detect() Vector {
	switch {
	case cpuid.CPU.Supports(cpuid.AVX512F, cpuid.AVX512BW):
		return avx512Vector{}
	case cpuid.CPU.Supports(cpuid.AVX2):
		return avx2Vector{}
	case cpuid.CPU.Supports(cpuid.SSE2):
		return sse2Vector{}
	default:
		return Scalar()
	}
}

// SupportedCPU reports whether the running CPU has the baseline feature set
// (SSE2) this package's amd64 backends assume.
func SupportedCPU() bool {
	return cpuid.CPU.Supports(cpuid.SSE2)
}
