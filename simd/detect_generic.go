//go:build !amd64 && !arm64 && !wasm

package simd

// Detect falls back to the scalar backend on every architecture without a
// dedicated file in this package.
func Detect() Vector { return Scalar() }

// SupportedCPU always reports true: the scalar backend has no CPU
// prerequisite.
func SupportedCPU() bool { return true }
