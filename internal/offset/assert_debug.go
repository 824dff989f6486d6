//go:build debug

package offset

// assertAligned panics on misaligned offsets in debug builds so contract
// violations surface at the call site instead of as clamped coordinates.
func assertAligned(ok bool, msg string) {
	if !ok {
		panic("offset: " + msg)
	}
}
