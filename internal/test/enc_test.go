package test

import (
	"bytes"
	"errors"
	mrand "math/rand/v2"
	"testing"

	"github.com/prequel-dev/pzstd"
)

func maybeSkip(t *testing.T) {
	if !cgoEnabled {
		t.Skip("Skipping test that requires CGO")
	}
}

func roundTrip(t *testing.T, frame []byte) []byte {
	t.Helper()

	out, err := pzstd.Decompress(frame)
	if err != nil {
		t.Fatalf("Fail decompress: %v", err)
	}
	return out
}

func TestCompressOneShot(t *testing.T) {
	maybeSkip(t)

	tests := map[string]struct {
		sample int
		opts   []pzstd.OptT
	}{
		"empty":       {sample: -1},
		"small":       {sample: SmallText},
		"large":       {sample: LargeCompressible},
		"random":      {sample: Uncompressable},
		"level1":      {sample: LargeCompressible, opts: []pzstd.OptT{pzstd.WithLevel(1)}},
		"level19":     {sample: SmallText, opts: []pzstd.OptT{pzstd.WithLevel(19)}},
		"checksum_on": {sample: LargeCompressible, opts: []pzstd.OptT{pzstd.WithChecksum(true)}},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {

			var src []byte
			if tc.sample >= 0 {
				src, _ = LoadSample(t, tc.sample)
			}

			frame, err := pzstd.Compress(src, tc.opts...)
			if err != nil {
				t.Fatalf("Fail compress: %v", err)
			}

			if got := roundTrip(t, frame); !bytes.Equal(got, src) {
				t.Errorf("round trip mismatch: %d bytes vs %d", len(got), len(src))
			}
		})
	}
}

// Arbitrary split points fed with ModeContinue plus one final frame
// flush must reproduce the input exactly.
func TestCompressChunked(t *testing.T) {
	maybeSkip(t)

	src, _ := LoadSample(t, LargeCompressible)

	tests := map[string]func() int{
		"1byte":  func() int { return 1 },
		"fixed4k": func() int { return 4 << 10 },
		"random": func() int { return 1 + mrand.IntN(64<<10) },
	}

	for name, next := range tests {
		t.Run(name, func(t *testing.T) {

			c, err := pzstd.NewCompressor()
			if err != nil {
				t.Fatalf("Fail construct: %v", err)
			}
			defer c.Close()

			var (
				frame []byte
				rest  = src
			)

			// Cap iterations for the 1 byte case; compress a prefix only.
			limit := len(rest)
			if name == "1byte" {
				limit = 4 << 10
			}

			consumed := 0
			for consumed < limit {
				n := next()
				if n > limit-consumed {
					n = limit - consumed
				}
				out, err := c.Compress(rest[:n], pzstd.ModeContinue)
				if err != nil {
					t.Fatalf("Fail compress: %v", err)
				}
				frame = append(frame, out...)
				rest = rest[n:]
				consumed += n
			}

			tail, err := c.Flush(pzstd.ModeFlushFrame)
			if err != nil {
				t.Fatalf("Fail flush: %v", err)
			}
			frame = append(frame, tail...)

			if got := roundTrip(t, frame); !bytes.Equal(got, src[:limit]) {
				t.Errorf("chunked round trip mismatch")
			}
		})
	}
}

// FlushBlock mid-stream must not end the frame; the stream continues
// and a later FlushFrame closes it.
func TestFlushBlockKeepsFrameOpen(t *testing.T) {
	maybeSkip(t)

	c, err := pzstd.NewCompressor()
	if err != nil {
		t.Fatalf("Fail construct: %v", err)
	}
	defer c.Close()

	var frame []byte

	out, err := c.Compress([]byte("first half "), pzstd.ModeContinue)
	if err != nil {
		t.Fatalf("Fail compress: %v", err)
	}
	frame = append(frame, out...)

	out, err = c.Flush(pzstd.ModeFlushBlock)
	if err != nil {
		t.Fatalf("Fail flush block: %v", err)
	}
	frame = append(frame, out...)

	out, err = c.Compress([]byte("second half"), pzstd.ModeFlushFrame)
	if err != nil {
		t.Fatalf("Fail compress: %v", err)
	}
	frame = append(frame, out...)

	if got := roundTrip(t, frame); string(got) != "first half second half" {
		t.Errorf("mismatch: %q", got)
	}
}

func TestCompressorReusedAcrossFrames(t *testing.T) {
	maybeSkip(t)

	c, err := pzstd.NewCompressor()
	if err != nil {
		t.Fatalf("Fail construct: %v", err)
	}
	defer c.Close()

	f1, err := c.Compress([]byte("frame one"), pzstd.ModeFlushFrame)
	if err != nil {
		t.Fatalf("Fail compress: %v", err)
	}
	f2, err := c.Compress([]byte("frame two"), pzstd.ModeFlushFrame)
	if err != nil {
		t.Fatalf("Fail compress: %v", err)
	}

	if got := roundTrip(t, f1); string(got) != "frame one" {
		t.Errorf("frame one mismatch: %q", got)
	}
	if got := roundTrip(t, f2); string(got) != "frame two" {
		t.Errorf("frame two mismatch: %q", got)
	}
}

func TestCompressMultiThreaded(t *testing.T) {
	maybeSkip(t)

	src, _ := LoadSample(t, LargeCompressible)

	c, err := pzstd.NewCompressor(pzstd.WithWorkers(-1))
	if err != nil {
		t.Fatalf("Fail construct: %v", err)
	}
	defer c.Close()

	var frame []byte
	for off := 0; off < len(src); off += 1 << 20 {
		stop := off + 1<<20
		if stop > len(src) {
			stop = len(src)
		}
		out, err := c.Compress(src[off:stop], pzstd.ModeContinue)
		if err != nil {
			t.Fatalf("Fail compress: %v", err)
		}
		frame = append(frame, out...)
	}

	tail, err := c.Flush(pzstd.ModeFlushFrame)
	if err != nil {
		t.Fatalf("Fail flush: %v", err)
	}
	frame = append(frame, tail...)

	if got := roundTrip(t, frame); !bytes.Equal(got, src) {
		t.Errorf("multi-threaded round trip mismatch")
	}
}

func TestCompressInvalidMode(t *testing.T) {
	maybeSkip(t)

	c, err := pzstd.NewCompressor()
	if err != nil {
		t.Fatalf("Fail construct: %v", err)
	}
	defer c.Close()

	if _, err := c.Compress(nil, pzstd.ModeT(42)); !errors.Is(err, pzstd.ErrMode) {
		t.Errorf("expected ErrMode, got %v", err)
	}
	if _, err := c.Compress(nil, pzstd.ModeT(-1)); !errors.Is(err, pzstd.ErrMode) {
		t.Errorf("expected ErrMode, got %v", err)
	}
	if _, err := c.Flush(pzstd.ModeContinue); !errors.Is(err, pzstd.ErrMode) {
		t.Errorf("expected ErrMode on continue flush, got %v", err)
	}
}

func TestCompressWithDict(t *testing.T) {
	maybeSkip(t)

	corpus, _ := LoadSample(t, LargeCompressible)

	sampleSet := make([][]byte, 256)
	for i := range sampleSet {
		off := i * 733 // stagger the windows so samples differ
		sampleSet[i] = corpus[off : off+1024]
	}

	content, err := pzstd.TrainDict(sampleSet, 16<<10)
	if err != nil {
		t.Fatalf("Fail train: %v", err)
	}

	d := pzstd.NewDict(content)
	defer d.Release()

	src, _ := LoadSample(t, LargeCompressible)

	frame, err := pzstd.Compress(src[:64<<10], pzstd.WithDict(d))
	if err != nil {
		t.Fatalf("Fail compress: %v", err)
	}

	info, err := pzstd.FrameInfo(frame)
	if err != nil {
		t.Fatalf("Fail frame info: %v", err)
	}
	if info.DictID == 0 {
		t.Errorf("frame does not reference the dictionary")
	}
	if info.DictID != d.ID() {
		t.Errorf("frame dict id %d, want %d", info.DictID, d.ID())
	}

	out, err := pzstd.Decompress(frame, pzstd.WithDict(d))
	if err != nil {
		t.Fatalf("Fail decompress: %v", err)
	}
	if !bytes.Equal(out, src[:64<<10]) {
		t.Errorf("dictionary round trip mismatch")
	}
}

func TestCompressBound(t *testing.T) {

	for _, sz := range []int{0, 1, 100, 1 << 20} {
		if bound := pzstd.CompressBound(sz); bound <= sz {
			t.Errorf("bound %d not larger than input %d", bound, sz)
		}
	}
}
