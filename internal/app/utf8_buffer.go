package app

import "unicode/utf8"

// UTF8SafeBuffer turns arbitrarily split console reads into strings that
// never end in the middle of a multi-byte character.
// Not safe for concurrent use; each console session owns one.
type UTF8SafeBuffer struct {
	pending []byte
}

// AppendAndFlush returns everything up to the last complete character of
// pending+p and keeps the incomplete tail (at most 3 bytes) for the next
// call.
func (b *UTF8SafeBuffer) AppendAndFlush(p []byte) string {
	if len(p) == 0 {
		return ""
	}

	combined := append(b.pending, p...)
	cut := incompleteTailStart(combined)

	tail := combined[cut:]
	out := string(combined[:cut])
	if len(tail) > 0 {
		b.pending = append([]byte(nil), tail...)
	} else {
		b.pending = nil
	}
	return out
}

// Flush returns the held-back bytes, complete or not. Called when the
// console process ends.
func (b *UTF8SafeBuffer) Flush() string {
	if len(b.pending) == 0 {
		return ""
	}
	out := string(b.pending)
	b.pending = nil
	return out
}

// incompleteTailStart returns the index where a trailing, not yet complete
// UTF-8 sequence begins, or len(data) if data ends on a character boundary.
func incompleteTailStart(data []byte) int {
	// Only the last UTFMax-1 bytes can belong to an unfinished sequence.
	limit := len(data) - (utf8.UTFMax - 1)
	if limit < 0 {
		limit = 0
	}
	for i := len(data) - 1; i >= limit; i-- {
		if !utf8.RuneStart(data[i]) {
			continue
		}
		if utf8.FullRune(data[i:]) {
			return len(data)
		}
		return i
	}
	return len(data)
}
