package test

import (
	"bytes"
	"errors"
	mrand "math/rand/v2"
	"testing"

	"github.com/prequel-dev/pzstd"
)

func compressSample(t *testing.T, src []byte) []byte {
	t.Helper()

	frame, err := pzstd.Compress(src)
	if err != nil {
		t.Fatalf("Fail compress: %v", err)
	}
	return frame
}

func TestDecompressMaxLengthBoundary(t *testing.T) {
	maybeSkip(t)

	src, _ := LoadSample(t, LargeCompressible)
	src = src[:256<<10]
	frame := compressSample(t, src)

	d, err := pzstd.NewDecompressor()
	if err != nil {
		t.Fatalf("Fail construct: %v", err)
	}
	defer d.Close()

	const limit = 1000

	var out []byte
	chunk, err := d.Decompress(frame, limit)
	if err != nil {
		t.Fatalf("Fail decompress: %v", err)
	}
	if len(chunk) > limit {
		t.Fatalf("returned %d bytes, limit %d", len(chunk), limit)
	}
	if len(chunk) == limit && d.NeedsInput() {
		t.Fatalf("needs_input true while output capped with input pending")
	}
	out = append(out, chunk...)

	// Drain the rest with empty input; no new data required.
	for !d.Eof() {
		chunk, err = d.Decompress(nil, limit)
		if err != nil {
			t.Fatalf("Fail drain: %v", err)
		}
		if len(chunk) > limit {
			t.Fatalf("drain returned %d bytes, limit %d", len(chunk), limit)
		}
		out = append(out, chunk...)
	}

	if !bytes.Equal(out, src) {
		t.Errorf("capped drain mismatch: %d bytes vs %d", len(out), len(src))
	}
}

func TestBoundedTerminalState(t *testing.T) {
	maybeSkip(t)

	var (
		frame    = compressSample(t, []byte("abcdef"))
		trailing = []byte("TRAILING GARBAGE")
		input    = append(append([]byte{}, frame...), trailing...)
	)

	d, err := pzstd.NewDecompressor()
	if err != nil {
		t.Fatalf("Fail construct: %v", err)
	}
	defer d.Close()

	if d.Eof() {
		t.Fatalf("eof before any input")
	}
	if len(d.UnusedData()) != 0 {
		t.Fatalf("unused data before eof")
	}

	out, err := d.Decompress(input, -1)
	if err != nil {
		t.Fatalf("Fail decompress: %v", err)
	}
	if string(out) != "abcdef" {
		t.Fatalf("mismatch: %q", out)
	}

	if !d.Eof() {
		t.Fatalf("expected eof after frame end")
	}
	if !bytes.Equal(d.UnusedData(), trailing) {
		t.Fatalf("unused data %q, want %q", d.UnusedData(), trailing)
	}

	// Terminal state: any further call fails, instance stays queryable.
	if _, err := d.Decompress([]byte("more"), -1); !errors.Is(err, pzstd.ErrAtEnd) {
		t.Fatalf("expected ErrAtEnd, got %v", err)
	}
	if !d.Eof() {
		t.Errorf("eof flag lost after rejected call")
	}
	if !bytes.Equal(d.UnusedData(), trailing) {
		t.Errorf("unused data lost after rejected call")
	}
}

// A second frame's bytes split across calls must still stop at the
// first frame's end.
func TestBoundedStopsBetweenFrames(t *testing.T) {
	maybeSkip(t)

	var (
		f1 = compressSample(t, []byte("first"))
		f2 = compressSample(t, []byte("second"))
	)

	d, err := pzstd.NewDecompressor()
	if err != nil {
		t.Fatalf("Fail construct: %v", err)
	}
	defer d.Close()

	out, err := d.Decompress(append(append([]byte{}, f1...), f2...), -1)
	if err != nil {
		t.Fatalf("Fail decompress: %v", err)
	}
	if string(out) != "first" {
		t.Fatalf("mismatch: %q", out)
	}
	if !bytes.Equal(d.UnusedData(), f2) {
		t.Errorf("unused data is not exactly the second frame")
	}
}

func TestEndlessMultiFrame(t *testing.T) {
	maybeSkip(t)

	var (
		s1, _  = LoadSample(t, LargeCompressible)
		s2, _  = LoadSample(t, Uncompressable)
		f1     = compressSample(t, s1[:128<<10])
		f2     = compressSample(t, s2[:64<<10])
		concat = append(append([]byte{}, f1...), f2...)
		want   = append(append([]byte{}, s1[:128<<10]...), s2[:64<<10]...)
	)

	t.Run("one_call", func(t *testing.T) {
		d, err := pzstd.NewStreamDecompressor()
		if err != nil {
			t.Fatalf("Fail construct: %v", err)
		}
		defer d.Close()

		out, err := d.Decompress(concat, -1)
		if err != nil {
			t.Fatalf("Fail decompress: %v", err)
		}
		if !bytes.Equal(out, want) {
			t.Errorf("concat mismatch: %d bytes vs %d", len(out), len(want))
		}
		if !d.AtFrameEdge() {
			t.Errorf("not at frame edge after complete frames")
		}
	})

	t.Run("split_calls", func(t *testing.T) {
		d, err := pzstd.NewStreamDecompressor()
		if err != nil {
			t.Fatalf("Fail construct: %v", err)
		}
		defer d.Close()

		var (
			out  []byte
			rest = concat
		)

		for len(rest) > 0 {
			n := 1 + mrand.IntN(4096)
			if n > len(rest) {
				n = len(rest)
			}
			chunk, err := d.Decompress(rest[:n], -1)
			if err != nil {
				t.Fatalf("Fail decompress: %v", err)
			}
			out = append(out, chunk...)
			rest = rest[n:]
		}

		if !bytes.Equal(out, want) {
			t.Errorf("split mismatch: %d bytes vs %d", len(out), len(want))
		}
		if !d.AtFrameEdge() {
			t.Errorf("not at frame edge after final frame")
		}
	})
}

// Feeding one byte at a time must agree with feeding everything at
// once; exercises the unconsumed-input carrier.
func TestDecompressByteAtATime(t *testing.T) {
	maybeSkip(t)

	src, _ := LoadSample(t, SmallText)
	frame := compressSample(t, src)

	d, err := pzstd.NewStreamDecompressor()
	if err != nil {
		t.Fatalf("Fail construct: %v", err)
	}
	defer d.Close()

	var out []byte
	for i := range frame {
		chunk, err := d.Decompress(frame[i:i+1], -1)
		if err != nil {
			t.Fatalf("Fail decompress at byte %d: %v", i, err)
		}
		out = append(out, chunk...)
	}

	if !bytes.Equal(out, src) {
		t.Errorf("byte-at-a-time mismatch: %q", out)
	}
	if !d.AtFrameEdge() {
		t.Errorf("not at frame edge after full frame")
	}
}

// Decompressing zero bytes never changes frame-edge state.
func TestEmptyInputPreservesFrameEdge(t *testing.T) {
	maybeSkip(t)

	frame := compressSample(t, []byte("abcdef"))

	d, err := pzstd.NewStreamDecompressor()
	if err != nil {
		t.Fatalf("Fail construct: %v", err)
	}
	defer d.Close()

	// Fresh decompressor sits at an edge.
	if _, err := d.Decompress(nil, -1); err != nil {
		t.Fatalf("Fail empty decompress: %v", err)
	}
	if !d.AtFrameEdge() {
		t.Errorf("empty input flipped edge state on fresh instance")
	}

	// Mid-frame: empty input must not report an edge.
	if _, err := d.Decompress(frame[:len(frame)-1], -1); err != nil {
		t.Fatalf("Fail decompress: %v", err)
	}
	if d.AtFrameEdge() {
		t.Fatalf("at frame edge mid-frame")
	}
	if _, err := d.Decompress(nil, -1); err != nil {
		t.Fatalf("Fail empty decompress: %v", err)
	}
	if d.AtFrameEdge() {
		t.Errorf("empty input flipped edge state mid-frame")
	}

	// Finish the frame; the edge must survive further empty input.
	if _, err := d.Decompress(frame[len(frame)-1:], -1); err != nil {
		t.Fatalf("Fail decompress: %v", err)
	}
	if !d.AtFrameEdge() {
		t.Fatalf("not at frame edge after frame end")
	}
	if _, err := d.Decompress(nil, -1); err != nil {
		t.Fatalf("Fail empty decompress: %v", err)
	}
	if !d.AtFrameEdge() {
		t.Errorf("empty input flipped edge state after frame end")
	}
}

func TestDecompressIncompleteFrame(t *testing.T) {
	maybeSkip(t)

	frame := compressSample(t, []byte("abcdef"))

	if _, err := pzstd.Decompress(frame[:len(frame)-2]); !errors.Is(err, pzstd.ErrIncomplete) {
		t.Errorf("expected ErrIncomplete, got %v", err)
	}
}

func TestDecompressCorrupted(t *testing.T) {
	maybeSkip(t)

	frame := compressSample(t, []byte("abcdef"))
	frame[0] ^= 0xff // break the magic

	if _, err := pzstd.Decompress(frame); !pzstd.ZstdCorrupted(err) {
		t.Errorf("expected corruption error, got %v", err)
	}
}

// A codec error resets the instance so it is reusable for the next
// stream, with buffered input discarded.
func TestDecoderReusableAfterError(t *testing.T) {
	maybeSkip(t)

	frame := compressSample(t, []byte("abcdef"))

	d, err := pzstd.NewStreamDecompressor()
	if err != nil {
		t.Fatalf("Fail construct: %v", err)
	}
	defer d.Close()

	bad := append([]byte{}, frame...)
	bad[0] ^= 0xff
	if _, err := d.Decompress(bad, -1); err == nil {
		t.Fatalf("expected error on corrupt input")
	}

	if !d.AtFrameEdge() || !d.NeedsInput() {
		t.Fatalf("flags not reset after codec error")
	}

	out, err := d.Decompress(frame, -1)
	if err != nil {
		t.Fatalf("Fail decompress after reset: %v", err)
	}
	if string(out) != "abcdef" {
		t.Errorf("mismatch after reset: %q", out)
	}
}

func TestFrameIntrospection(t *testing.T) {
	maybeSkip(t)

	frame := compressSample(t, []byte("abcdef"))

	info, err := pzstd.FrameInfo(frame)
	if err != nil {
		t.Fatalf("Fail frame info: %v", err)
	}
	if !info.HasContentSize || info.ContentSize != 6 {
		t.Errorf("content size (%d,%v), want (6,true)", info.ContentSize, info.HasContentSize)
	}
	if info.DictID != 0 {
		t.Errorf("dict id %d, want 0", info.DictID)
	}

	csz, err := pzstd.FrameCompressedSize(frame)
	if err != nil {
		t.Fatalf("Fail frame compressed size: %v", err)
	}
	if csz != uint64(len(frame)) {
		t.Errorf("compressed size %d, want %d", csz, len(frame))
	}
}
