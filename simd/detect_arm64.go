//go:build arm64

package simd

import "golang.org/x/sys/cpu"

// Detect picks the best available backend for the running CPU. On arm64
// this confirms ASIMD (NEON) support through golang.org/x/sys/cpu rather
// than assuming it from GOARCH alone, since some embedded arm64 targets
// disable it.
func Detect() Vector {
	if cpu.ARM64.HasASIMD {
		return neonVector{}
	}
	return Scalar()
}

// SupportedCPU reports whether the running CPU has NEON (ASIMD) available.
func SupportedCPU() bool {
	return cpu.ARM64.HasASIMD
}
