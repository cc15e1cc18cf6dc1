package pzstd

import (
	"sync"

	"github.com/prequel-dev/pzstd/internal/pkg/czstd"
	"github.com/prequel-dev/pzstd/internal/pkg/enc"
	"github.com/prequel-dev/pzstd/internal/pkg/zerr"
)

// Compressor is a reusable streaming frame compressor.
//
// A Compressor is safe for concurrent use; each call holds a
// per-instance lock, so operations on one instance are serialized
// while different instances proceed independently.
type Compressor struct {
	mu  sync.Mutex
	enc *enc.EncoderT
}

// Construct a Compressor.
//
// Specify optional parameters in 'opts'.
func NewCompressor(opts ...OptT) (*Compressor, error) {
	o := parseOpts(opts...)

	e, err := enc.NewEncoder(&o)
	if err != nil {
		return nil, err
	}

	return &Compressor{enc: e}, nil
}

// Compress 'src' under 'mode' and return whatever output the codec
// produced.  Under ModeContinue the codec may retain data internally;
// a later flush forces it out.
//
// After a codec error the session is reset, so the Compressor remains
// usable for a fresh frame; the in-flight frame is lost.
func (c *Compressor) Compress(src []byte, mode ModeT) ([]byte, error) {
	if mode < ModeContinue || mode > ModeFlushFrame {
		return nil, zerr.ErrMode
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.enc == nil {
		return nil, zerr.ErrClosed
	}

	return c.enc.Compress(src, czstd.DirectiveT(mode))
}

// Flush pending data.  ModeFlushBlock completes the current block;
// ModeFlushFrame additionally closes the frame, after which the next
// Compress starts a new one.
func (c *Compressor) Flush(mode ModeT) ([]byte, error) {
	if mode != ModeFlushBlock && mode != ModeFlushFrame {
		return nil, zerr.ErrMode
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.enc == nil {
		return nil, zerr.ErrClosed
	}

	return c.enc.Compress(nil, czstd.DirectiveT(mode))
}

// Close the Compressor to release underlying codec resources.
// Close() *MUST* be called on completion; pending data that was never
// flushed is dropped.
func (c *Compressor) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.enc == nil {
		return nil
	}

	c.enc.Close()
	c.enc = nil
	return nil
}

// Compress 'src' into a single complete frame.
//
// This is the rich-memory path: output is pre-sized to the codec's
// worst-case bound, avoiding incremental growth.
func Compress(src []byte, opts ...OptT) ([]byte, error) {
	o := parseOpts(opts...)

	e, err := enc.NewEncoder(&o)
	if err != nil {
		return nil, err
	}
	defer e.Close()

	return e.CompressRich(src)
}

// CompressBound returns the codec's worst-case compressed size for an
// input of 'sz' bytes, single frame.
func CompressBound(sz int) int {
	return czstd.CompressBound(sz)
}
