// Package offset converts between the two text coordinate spaces the view
// straddles: byte offsets (the document backend's space, UTF-8) and UTF-16
// code-unit offsets (the layout engine's space).
//
// This package is the single conversion chokepoint; every other package
// operates in exactly one declared space. All conversions are single forward
// scans, which is fine for editor-sized lines.
//
// Offsets passed in must fall on character boundaries. Misaligned offsets
// are a caller bug: with the debug build tag set the functions panic, and in
// release builds they clamp to the previous valid boundary rather than
// corrupt neighboring text.
package offset

import "unicode/utf8"

// ByteToCodeUnit converts a byte offset within text to a UTF-16 code-unit
// offset. Offsets past the end of text clamp to the total code-unit count.
func ByteToCodeUnit(text string, byteOff int) int {
	switch {
	case byteOff <= 0:
		return 0
	case byteOff >= len(text):
		assertAligned(byteOff == len(text), "byte offset past end of line")
		return CodeUnits(text)
	}

	cu := 0
	i := 0
	for i < byteOff {
		r, size := utf8.DecodeRuneInString(text[i:])
		if i+size > byteOff {
			assertAligned(false, "byte offset splits a character")
			return cu
		}
		i += size
		cu += codeUnits(r)
	}
	return cu
}

// CodeUnitToByte converts a UTF-16 code-unit offset within text to a byte
// offset. Offsets past the end of text clamp to len(text).
func CodeUnitToByte(text string, cuOff int) int {
	if cuOff <= 0 {
		return 0
	}

	cu := 0
	i := 0
	for i < len(text) {
		if cu == cuOff {
			return i
		}
		r, size := utf8.DecodeRuneInString(text[i:])
		n := codeUnits(r)
		if cu+n > cuOff {
			assertAligned(false, "code-unit offset splits a character")
			return i
		}
		i += size
		cu += n
	}
	assertAligned(cu == cuOff, "code-unit offset past end of line")
	return len(text)
}

// CodeUnits returns the length of text in UTF-16 code units.
func CodeUnits(text string) int {
	n := 0
	for _, r := range text {
		n += codeUnits(r)
	}
	return n
}

// codeUnits returns the number of UTF-16 code units needed to encode r.
func codeUnits(r rune) int {
	if r > 0xFFFF {
		return 2
	}
	return 1
}
