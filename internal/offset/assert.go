//go:build !debug

package offset

// assertAligned is a no-op in release builds; misaligned offsets clamp to
// the previous boundary instead.
func assertAligned(bool, string) {}
