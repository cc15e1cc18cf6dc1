package czstd

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/klauspost/compress/zstd"
)

var frameMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// A frame flush that spans many output chunks must still emit exactly
// one frame, no matter how many steps the drain takes.
func TestFlushFrameSpansChunks(t *testing.T) {

	cctx, err := NewCCtx()
	if err != nil {
		t.Fatal(err)
	}
	defer cctx.Free()

	// Incompressible payload so the flush output dwarfs the chunk size.
	src := make([]byte, 64<<10)
	rand.New(rand.NewSource(42)).Read(src)

	var (
		in      = BuffT{Data: src}
		emitted []byte
	)

	for i := 0; ; i++ {
		if i > 10000 {
			t.Fatal("flush did not converge")
		}

		chunk := make([]byte, 512)
		out := BuffT{Data: chunk}

		rem, err := cctx.Step(&in, &out, DirFlushFrame)
		if err != nil {
			t.Fatal(err)
		}

		emitted = append(emitted, chunk[:out.Pos]...)

		if rem == 0 && in.Drained() {
			break
		}
	}

	if !bytes.HasPrefix(emitted, frameMagic) {
		t.Fatal("output does not start with a frame magic")
	}

	if n := bytes.Count(emitted, frameMagic); n != 1 {
		t.Fatalf("expected exactly one frame, found %d magics in %d bytes", n, len(emitted))
	}

	dec, err := zstd.NewReader(bytes.NewReader(emitted))
	if err != nil {
		t.Fatal(err)
	}
	defer dec.Close()

	var got bytes.Buffer
	if _, err := got.ReadFrom(dec); err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(got.Bytes(), src) {
		t.Fatal("round trip mismatch")
	}
}

// Back-to-back frames on one context: the second flush must reopen the
// session cleanly after the first fully drained.
func TestFlushFrameReusedAcrossFrames(t *testing.T) {

	cctx, err := NewCCtx()
	if err != nil {
		t.Fatal(err)
	}
	defer cctx.Free()

	var emitted []byte

	for _, payload := range [][]byte{
		[]byte("first frame payload"),
		[]byte("second frame payload"),
	} {
		in := BuffT{Data: payload}

		for {
			chunk := make([]byte, 4<<10)
			out := BuffT{Data: chunk}

			rem, err := cctx.Step(&in, &out, DirFlushFrame)
			if err != nil {
				t.Fatal(err)
			}

			emitted = append(emitted, chunk[:out.Pos]...)

			if rem == 0 && in.Drained() {
				break
			}
		}
	}

	if n := bytes.Count(emitted, frameMagic); n != 2 {
		t.Fatalf("expected two frames, found %d magics", n)
	}

	dec, err := zstd.NewReader(bytes.NewReader(emitted))
	if err != nil {
		t.Fatal(err)
	}
	defer dec.Close()

	var got bytes.Buffer
	if _, err := got.ReadFrom(dec); err != nil {
		t.Fatal(err)
	}

	want := "first frame payloadsecond frame payload"
	if got.String() != want {
		t.Fatalf("round trip mismatch: %q", got.String())
	}
}
