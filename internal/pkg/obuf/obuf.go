// Package obuf implements a growable, chunked output sink for codec
// output whose final size is not known in advance.
//
// Chunks are appended on a geometric schedule so that neither many
// small reallocations nor one pessimistic huge allocation is required;
// Finish concatenates the written bytes into a single result, with a
// zero-copy fast path when only one chunk was ever allocated.
package obuf

const (
	kb = 1 << 10
	mb = 1 << 20
)

// Chunk size schedule, indexed by the number of chunks already
// allocated.  Past the end, every further chunk is 256 MiB.
var blockSchedule = []int64{
	32 * kb, 64 * kb, 256 * kb,
	1 * mb, 4 * mb, 8 * mb, 16 * mb, 16 * mb,
	32 * mb, 32 * mb, 32 * mb, 32 * mb,
	64 * mb, 64 * mb, 128 * mb, 128 * mb,
	256 * mb,
}

type BufferT struct {
	chunks    [][]byte
	written   int   // bytes written into the last chunk
	allocated int64 // sum of chunk capacities
	maxLength int64 // negative means unbounded
}

// NewBuffer allocates a buffer whose first chunk is the smaller of the
// schedule's first block and 'maxLength'.  Negative maxLength means
// unbounded.
func NewBuffer(maxLength int64) *BufferT {

	first := blockSchedule[0]
	if maxLength >= 0 && maxLength < first {
		first = maxLength
	}

	b := &BufferT{
		maxLength: maxLength,
	}
	b.push(first)
	return b
}

// NewBufferSized allocates exactly one chunk of size 'n', for callers
// that know the output size (or its worst-case bound) up front.
func NewBufferSized(n int64) *BufferT {
	b := &BufferT{
		maxLength: -1,
	}
	b.push(n)
	return b
}

func (b *BufferT) push(sz int64) {
	b.chunks = append(b.chunks, make([]byte, sz))
	b.allocated += sz
	b.written = 0
}

// LastChunk returns the chunk currently being filled.
func (b *BufferT) LastChunk() []byte {
	return b.chunks[len(b.chunks)-1]
}

// Written returns the fill position within the last chunk.
func (b *BufferT) Written() int {
	return b.written
}

// SetWritten records the new fill position after a codec step.
func (b *BufferT) SetWritten(pos int) {
	b.written = pos
}

// Full reports whether the last chunk is completely written.
func (b *BufferT) Full() bool {
	return b.written == len(b.LastChunk())
}

// Len is the logical size of the buffer.
func (b *BufferT) Len() int64 {
	last := int64(len(b.LastChunk()))
	return b.allocated - (last - int64(b.written))
}

// ReachedMaxLength is true iff the buffer is bounded, fully allocated
// up to the bound, and the last chunk is exactly full.
func (b *BufferT) ReachedMaxLength() bool {
	return b.maxLength >= 0 && b.allocated == b.maxLength && b.Full()
}

// Grow appends the next chunk on the schedule, clamped so the total
// allocation never exceeds a finite maxLength.  Must only be called
// when the current chunk is full.  No-op once the bound is reached,
// which guards against appending empty trailing chunks forever.
func (b *BufferT) Grow() {

	next := int64(256 * mb)
	if n := len(b.chunks); n < len(blockSchedule) {
		next = blockSchedule[n]
	}

	if b.maxLength >= 0 {
		if room := b.maxLength - b.allocated; next > room {
			next = room
		}
		if next == 0 {
			return
		}
	}

	b.push(next)
}

// Finish concatenates all written bytes into one contiguous result and
// consumes the buffer.  A sole chunk is returned without copying.
func (b *BufferT) Finish() []byte {

	if len(b.chunks) == 1 {
		out := b.chunks[0][:b.written]
		b.chunks = nil
		return out
	}

	out := make([]byte, 0, b.Len())
	for i, c := range b.chunks {
		if i == len(b.chunks)-1 {
			c = c[:b.written]
		}
		out = append(out, c...)
	}

	b.chunks = nil
	return out
}

// Abandon releases all chunks; used on error paths before Finish.
func (b *BufferT) Abandon() {
	b.chunks = nil
	b.written = 0
	b.allocated = 0
}
