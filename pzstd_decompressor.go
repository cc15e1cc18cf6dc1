package pzstd

import (
	"sync"

	"github.com/prequel-dev/pzstd/internal/pkg/czstd"
	"github.com/prequel-dev/pzstd/internal/pkg/dec"
	"github.com/prequel-dev/pzstd/internal/pkg/zerr"
)

// Decompressor decompresses exactly one frame and then stops: once the
// frame ends, Eof reports true, trailing bytes surface via UnusedData,
// and further Decompress calls fail with ErrAtEnd.
//
// Safe for concurrent use; calls on one instance are serialized by a
// per-instance lock.
type Decompressor struct {
	mu  sync.Mutex
	dec *dec.DecoderT
}

// Construct a single-frame Decompressor.
//
// Specify optional parameters in 'opts'.
func NewDecompressor(opts ...OptT) (*Decompressor, error) {
	o := parseOpts(opts...)

	d, err := dec.NewDecoder(&o, true)
	if err != nil {
		return nil, err
	}

	return &Decompressor{dec: d}, nil
}

// Decompress 'src', merged with any input unconsumed from previous
// calls, returning at most 'maxLength' bytes.  Negative maxLength
// means unbounded.
//
// After a codec error the session and flags are reset and buffered
// input is discarded; the instance is reusable, the frame is not.
func (d *Decompressor) Decompress(src []byte, maxLength int64) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.dec == nil {
		return nil, zerr.ErrClosed
	}

	return d.dec.Decompress(src, maxLength)
}

// Eof reports whether the frame has fully ended.
func (d *Decompressor) Eof() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dec != nil && d.dec.Eof()
}

// NeedsInput reports whether the codec can make no further progress
// without new input.  When false, call Decompress again with empty
// input to drain already-available output.
func (d *Decompressor) NeedsInput() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dec != nil && d.dec.NeedsInput()
}

// UnusedData returns the bytes that followed the end of the frame.
// Empty until Eof.
func (d *Decompressor) UnusedData() []byte {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.dec == nil {
		return nil
	}
	return d.dec.Unused()
}

// Close the Decompressor to release underlying codec resources.
// Close() *MUST* be called on completion.
func (d *Decompressor) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.dec != nil {
		d.dec.Close()
		d.dec = nil
	}
	return nil
}

// StreamDecompressor decompresses an endless sequence of concatenated
// frames: it has no terminal state and resumes transparently into the
// next frame on further input.  AtFrameEdge distinguishes "cleanly
// between frames" from "mid-frame, more input required".
//
// Safe for concurrent use; calls on one instance are serialized by a
// per-instance lock.
type StreamDecompressor struct {
	mu  sync.Mutex
	dec *dec.DecoderT
}

// Construct a multi-frame StreamDecompressor.
//
// Specify optional parameters in 'opts'.
func NewStreamDecompressor(opts ...OptT) (*StreamDecompressor, error) {
	o := parseOpts(opts...)

	d, err := dec.NewDecoder(&o, false)
	if err != nil {
		return nil, err
	}

	return &StreamDecompressor{dec: d}, nil
}

// Decompress 'src', merged with any input unconsumed from previous
// calls, returning at most 'maxLength' bytes.  Negative maxLength
// means unbounded.
func (d *StreamDecompressor) Decompress(src []byte, maxLength int64) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.dec == nil {
		return nil, zerr.ErrClosed
	}

	return d.dec.Decompress(src, maxLength)
}

// AtFrameEdge reports whether the stream sits exactly between frames.
// Decompressing zero bytes never changes frame-edge state.
func (d *StreamDecompressor) AtFrameEdge() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dec != nil && d.dec.AtFrameEdge()
}

// NeedsInput reports whether the codec can make no further progress
// without new input.
func (d *StreamDecompressor) NeedsInput() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dec != nil && d.dec.NeedsInput()
}

// Close the StreamDecompressor to release underlying codec resources.
// Close() *MUST* be called on completion.
func (d *StreamDecompressor) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.dec != nil {
		d.dec.Close()
		d.dec = nil
	}
	return nil
}

// Decompress the entirety of 'src', which may hold one frame or
// several concatenated frames, and return the concatenated content.
//
// Fails with ErrIncomplete when the input ends mid-frame rather than
// at a frame edge.  When the input is a single frame with a recorded
// content size, the output is allocated in one exact chunk.
func Decompress(src []byte, opts ...OptT) ([]byte, error) {
	o := parseOpts(opts...)

	d, err := dec.NewDecoder(&o, false)
	if err != nil {
		return nil, err
	}
	defer d.Close()

	var out []byte
	if hint := sizeHint(src); hint > 0 {
		out, err = d.DecompressSized(src, hint)
	} else {
		out, err = d.Decompress(src, -1)
	}

	if err != nil {
		return nil, err
	}

	if !d.AtFrameEdge() {
		return nil, zerr.ErrIncomplete
	}

	return out, nil
}

// sizeHint returns the known decompressed size when 'src' is exactly
// one frame with a recorded content size, else 0.
func sizeHint(src []byte) int64 {

	// Distrust oversized header claims; fall back to scheduled growth
	// rather than allocating whatever the frame asserts.
	const hintCap = 1 << 31

	sz, known, err := czstd.FrameContentSize(src)
	if err != nil || !known || sz == 0 || sz > hintCap {
		return 0
	}

	csz, err := czstd.FindFrameCompressedSize(src)
	if err != nil || csz != uint64(len(src)) {
		return 0
	}

	return int64(sz)
}
