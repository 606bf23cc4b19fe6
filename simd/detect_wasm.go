//go:build wasm

package simd

// Detect always returns the WASM SIMD128 backend: browsers and runtimes
// that expose the wasm32 target to the Go compiler are assumed to support
// the SIMD128 proposal, which has been a baseline feature since Go 1.21's
// wasm port stabilized it.
func Detect() Vector { return wasm128Vector{} }

// SupportedCPU always reports true for wasm: there is no secondary fallback
// worth probing for at this layer.
func SupportedCPU() bool { return true }
