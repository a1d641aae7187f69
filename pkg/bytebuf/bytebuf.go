// Package bytebuf provides a growable byte accumulator with cheap prefix
// consumption. The search pipeline uses it as the carry buffer that holds
// sequenced-but-unresolved bytes between chunk boundaries.
package bytebuf

// Buffer accumulates bytes at the back and releases them from the front.
// The zero value is ready to use.
type Buffer struct {
	data []byte
}

// Append adds p to the end of the buffer.
func (b *Buffer) Append(p []byte) {
	b.data = append(b.data, p...)
}

// AppendByte adds a single byte to the end of the buffer.
func (b *Buffer) AppendByte(c byte) {
	b.data = append(b.data, c)
}

// ConsumePrefix removes the first n bytes by shifting the remainder to
// the front. Consuming more than the buffered length empties the buffer.
func (b *Buffer) ConsumePrefix(n int) {
	if n <= 0 {
		return
	}
	if n >= len(b.data) {
		b.data = b.data[:0]
		return
	}
	b.data = append(b.data[:0], b.data[n:]...)
}

// Bytes returns the buffered content as one contiguous slice. The slice
// is only valid until the next mutating call.
func (b *Buffer) Bytes() []byte {
	return b.data
}

// Len returns the number of buffered bytes.
func (b *Buffer) Len() int {
	return len(b.data)
}

// Clear empties the buffer, keeping its capacity for reuse.
func (b *Buffer) Clear() {
	b.data = b.data[:0]
}
