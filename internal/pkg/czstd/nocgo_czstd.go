//go:build !cgo

package czstd

// Pure-Go fallback backed by github.com/klauspost/compress/zstd.
//
// The stepwise compression surface is emulated with an Encoder draining
// into a pending buffer.  Stepwise decompression has no pure-Go
// equivalent with frame-edge reporting and degrades to ErrUnsupported,
// as does dictionary training.

import (
	"bytes"
	"fmt"

	"github.com/klauspost/compress/zstd"
	"github.com/prequel-dev/pzstd/internal/pkg/zerr"
)

type DirectiveT int

const (
	DirContinue   DirectiveT = 0
	DirFlushBlock DirectiveT = 1
	DirFlushFrame DirectiveT = 2
)

type BuffT struct {
	Data []byte
	Pos  int
}

func (b *BuffT) Drained() bool {
	return b.Pos == len(b.Data)
}

//---

type CCtxT struct {
	level     int
	workers   int
	checksum  bool
	windowLog int
	dict      []byte
	enc       *zstd.Encoder
	pending   bytes.Buffer
	ended     bool
}

func NewCCtx() (*CCtxT, error) {
	return &CCtxT{level: 3, ended: true}, nil
}

func (c *CCtxT) SetLevel(level int) error {
	if c.enc != nil {
		return zerr.ErrUnsupported
	}
	c.level = level
	return nil
}

func (c *CCtxT) SetWorkers(n int) error {
	c.workers = n
	return nil
}

func (c *CCtxT) SetChecksum(on bool) error {
	c.checksum = on
	return nil
}

func (c *CCtxT) SetWindowLog(n int) error {
	c.windowLog = n
	return nil
}

func (c *CCtxT) RefCDict(cd *CDictT) error {
	c.dict = cd.data
	return nil
}

func (c *CCtxT) session() (*zstd.Encoder, error) {

	if c.enc == nil {
		eopts := []zstd.EOption{
			zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(c.level)),
			zstd.WithEncoderCRC(c.checksum),
			zstd.WithZeroFrames(true),
		}
		if c.workers > 0 {
			eopts = append(eopts, zstd.WithEncoderConcurrency(c.workers))
		}
		if c.windowLog > 0 {
			eopts = append(eopts, zstd.WithWindowSize(1<<c.windowLog))
		}
		if c.dict != nil {
			eopts = append(eopts, zstd.WithEncoderDict(c.dict))
		}

		enc, err := zstd.NewWriter(&c.pending, eopts...)
		if err != nil {
			return nil, zerr.Wrap(zerr.ErrCompress, err)
		}
		c.enc = enc
		c.ended = false
		return enc, nil
	}

	if c.ended {
		c.enc.Reset(&c.pending)
		c.ended = false
	}

	return c.enc, nil
}

func (c *CCtxT) Step(in, out *BuffT, dir DirectiveT) (uint64, error) {

	// A closed frame may take several steps to drain when the output
	// buffer is smaller than what is pending.  The encoder must not be
	// touched until pending empties; reopening it would append an
	// extra empty frame.
	if c.ended && c.pending.Len() > 0 {
		n := copy(out.Data[out.Pos:], c.pending.Bytes())
		out.Pos += n
		c.pending.Next(n)
		return uint64(c.pending.Len()), nil
	}

	enc, err := c.session()
	if err != nil {
		return 0, err
	}

	if !in.Drained() {
		n, werr := enc.Write(in.Data[in.Pos:])
		in.Pos += n
		if werr != nil {
			return 0, zerr.Wrap(zerr.ErrCompress, werr)
		}
	}

	switch dir {
	case DirFlushBlock:
		if err := enc.Flush(); err != nil {
			return 0, zerr.Wrap(zerr.ErrCompress, err)
		}
	case DirFlushFrame:
		if err := enc.Close(); err != nil {
			return 0, zerr.Wrap(zerr.ErrCompress, err)
		}
		c.ended = true
	}

	n := copy(out.Data[out.Pos:], c.pending.Bytes())
	out.Pos += n
	c.pending.Next(n)

	return uint64(c.pending.Len()), nil
}

func (c *CCtxT) ResetSession() {
	c.pending.Reset()
	c.ended = true
}

func (c *CCtxT) Free() {
	if c.enc != nil {
		c.enc.Close()
		c.enc = nil
	}
}

//---

type DCtxT struct {
}

func NewDCtx() (*DCtxT, error) {
	return &DCtxT{}, nil
}

func (d *DCtxT) RefDDict(dd *DDictT) error {
	return fmt.Errorf("%w: zstd backend does not support streaming dictionaries", zerr.ErrUnsupported)
}

func (d *DCtxT) Step(in, out *BuffT) (uint64, error) {
	return 0, fmt.Errorf("%w: zstd backend does not support streaming decompress", zerr.ErrUnsupported)
}

func (d *DCtxT) ResetSession() {
}

func (d *DCtxT) Free() {
}

//---

type CDictT struct {
	data []byte
}

func NewCDict(dict []byte, level int) (*CDictT, error) {
	dupe := make([]byte, len(dict))
	copy(dupe, dict)
	return &CDictT{data: dupe}, nil
}

func (cd *CDictT) Free() {
}

type DDictT struct {
	data []byte
}

func NewDDict(dict []byte) (*DDictT, error) {
	dupe := make([]byte, len(dict))
	copy(dupe, dict)
	return &DDictT{data: dupe}, nil
}

func (dd *DDictT) Free() {
}

//---

const boundThreshold = 128 << 10

// CompressBound mirrors ZSTD_COMPRESSBOUND.
func CompressBound(sz int) int {
	bound := sz + (sz >> 8)
	if sz < boundThreshold {
		bound += (boundThreshold - sz) >> 11
	}
	return bound
}

func MinLevel() int {
	return -5
}

func MaxLevel() int {
	return 22
}

func FrameContentSize(frame []byte) (uint64, bool, error) {
	var h zstd.Header
	if err := h.Decode(frame); err != nil {
		return 0, false, zerr.Wrap(zerr.ErrFrame, err)
	}
	if !h.HasFCS {
		return 0, false, nil
	}
	return h.FrameContentSize, true, nil
}

func FindFrameCompressedSize(frame []byte) (uint64, error) {
	return 0, fmt.Errorf("%w: zstd backend does not support frame size scan", zerr.ErrUnsupported)
}

func DictIDFromFrame(frame []byte) uint32 {
	var h zstd.Header
	if err := h.Decode(frame); err != nil {
		return 0
	}
	return h.DictionaryID
}

func DictIDFromDict(dict []byte) uint32 {
	// Dictionary ID lives at offset 4, after the ZDICT magic.
	if len(dict) < 8 ||
		dict[0] != 0x37 || dict[1] != 0xa4 || dict[2] != 0x30 || dict[3] != 0xec {
		return 0
	}
	return uint32(dict[4]) | uint32(dict[5])<<8 | uint32(dict[6])<<16 | uint32(dict[7])<<24
}

func TrainFromBuffer(samples [][]byte, capacity int) ([]byte, error) {
	return nil, fmt.Errorf("%w: zstd backend does not support dictionary training", zerr.ErrUnsupported)
}
