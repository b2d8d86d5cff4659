package client

import "unicode/utf8"

// splitCompleteRunes splits raw stream bytes into a prefix of complete
// UTF-8 sequences and a remainder holding the bytes of an incomplete
// trailing rune. The remainder is carried into the next chunk so a
// character split across chunk boundaries decodes intact.
func splitCompleteRunes(b []byte) (complete, rest []byte) {
	if len(b) == 0 {
		return b, nil
	}

	// Find the start of the last rune within the final UTFMax bytes.
	start := len(b) - 1
	limit := len(b) - utf8.UTFMax
	if limit < 0 {
		limit = 0
	}
	for start > limit && !utf8.RuneStart(b[start]) {
		start--
	}

	r, size := utf8.DecodeRune(b[start:])
	if r == utf8.RuneError && size <= 1 && len(b)-start < utf8.UTFMax {
		// Possibly an incomplete sequence; hold it back.
		return b[:start], b[start:]
	}
	return b, nil
}
