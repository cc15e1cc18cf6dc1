package carry

import (
	"bytes"
	"testing"
)

func TestAbsorbFromEmpty(t *testing.T) {

	var c CarrierT

	if !c.Empty() {
		t.Fatalf("new carrier not empty")
	}

	c.Absorb([]byte("abc"))
	if got := c.Pending(); !bytes.Equal(got, []byte("abc")) {
		t.Fatalf("pending %q, want abc", got)
	}
}

func TestAbsorbShiftsInPlace(t *testing.T) {

	var c CarrierT

	c.Absorb([]byte("abcdef"))
	c.Advance(4) // pending "ef", room only at the front

	capBefore := c.Cap()
	c.Absorb([]byte("ghij"))

	if c.Cap() != capBefore {
		t.Fatalf("shift path reallocated: cap %d -> %d", capBefore, c.Cap())
	}
	if got := c.Pending(); !bytes.Equal(got, []byte("efghij")) {
		t.Fatalf("pending %q, want efghij", got)
	}
}

func TestAbsorbReallocatesToExactSize(t *testing.T) {

	var c CarrierT

	c.Absorb([]byte("abcd"))
	c.Advance(1)
	c.Absorb([]byte("0123456789"))

	if got := c.Pending(); !bytes.Equal(got, []byte("bcd0123456789")) {
		t.Fatalf("pending %q", got)
	}
	if c.Cap() != 13 {
		t.Fatalf("realloc cap %d, want exact pending size 13", c.Cap())
	}
}

func TestAdvanceToEmptyClears(t *testing.T) {

	var c CarrierT

	c.Absorb([]byte("xy"))
	c.Advance(2)

	if !c.Empty() {
		t.Fatalf("carrier not empty after consuming all pending")
	}
	if c.Cap() == 0 {
		t.Fatalf("clear dropped the backing buffer")
	}
}

func TestReplaceCopiesOwnership(t *testing.T) {

	var c CarrierT

	src := []byte("trailing")
	c.Replace(src)
	src[0] = 'X'

	if got := c.Pending(); !bytes.Equal(got, []byte("trailing")) {
		t.Fatalf("replace did not copy: %q", got)
	}
}

// The backing buffer must stay bounded by the largest backlog, not the
// sum of all increments.
func TestCapBoundedByBacklog(t *testing.T) {

	var c CarrierT

	for i := 0; i < 1000; i++ {
		c.Absorb([]byte{byte(i)})
		c.Advance(1)
	}

	if c.Cap() > 8 {
		t.Fatalf("cap %d grew beyond peak backlog", c.Cap())
	}
}
