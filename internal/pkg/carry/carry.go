// Package carry owns the scratch buffer holding input bytes that were
// supplied by a caller but not yet consumed by the codec.
package carry

// CarrierT holds pending bytes in data[begin:end].  Invariant:
// 0 <= begin <= end <= len(data).  The backing array is retained
// across calls so capacity stays bounded by the largest backlog seen,
// not the sum of all appends.
type CarrierT struct {
	data  []byte
	begin int
	end   int
}

func (c *CarrierT) Empty() bool {
	return c.begin == c.end
}

// Pending returns the valid range.
func (c *CarrierT) Pending() []byte {
	return c.data[c.begin:c.end]
}

func (c *CarrierT) Cap() int {
	return len(c.data)
}

// Absorb appends 'src' after the pending range, reallocating to the
// exact combined size when the total room is short, or shifting the
// pending range to the front when only the tail room is short.
func (c *CarrierT) Absorb(src []byte) {

	used := c.end - c.begin

	switch {
	case len(c.data)-used < len(src):
		ndata := make([]byte, used+len(src))
		copy(ndata, c.data[c.begin:c.end])
		c.data = ndata
		c.begin, c.end = 0, used
	case len(c.data)-c.end < len(src):
		copy(c.data, c.data[c.begin:c.end])
		c.begin, c.end = 0, used
	}

	c.end += copy(c.data[c.end:], src)
}

// Advance consumes 'n' bytes off the front of the pending range.
func (c *CarrierT) Advance(n int) {
	c.begin += n
	if c.begin == c.end {
		c.Clear()
	}
}

// Replace copies 'src' in as the new pending range.  Used to take
// ownership of a trailing unconsumed slice of a caller-owned buffer.
func (c *CarrierT) Replace(src []byte) {
	if len(src) > len(c.data) {
		c.data = make([]byte, len(src))
	}
	n := copy(c.data, src)
	c.begin, c.end = 0, n
}

func (c *CarrierT) Clear() {
	c.begin, c.end = 0, 0
}
