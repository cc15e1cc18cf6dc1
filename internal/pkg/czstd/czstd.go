//go:build cgo

// Package czstd is a narrow binding to the libzstd streaming API.
//
// The layer above consumes it as an opaque step codec: feed an input
// buffer, maybe produce output, and report how much internal work
// remains before the current directive is satisfied.
package czstd

// #cgo CFLAGS: -O3
// #cgo LDFLAGS: -lzstd
// #include "zstd.h"
// #include "zdict.h"
import "C"
import (
	"unsafe"

	"github.com/prequel-dev/pzstd/internal/pkg/zerr"
)

// DirectiveT values match ZSTD_EndDirective.
type DirectiveT int

const (
	DirContinue   DirectiveT = 0
	DirFlushBlock DirectiveT = 1
	DirFlushFrame DirectiveT = 2
)

// BuffT mirrors ZSTD_inBuffer/ZSTD_outBuffer: a data slice plus a
// position advanced by Step as bytes are consumed or produced.
type BuffT struct {
	Data []byte
	Pos  int
}

func (b *BuffT) Drained() bool {
	return b.Pos == len(b.Data)
}

func bytePtr(b []byte) unsafe.Pointer {
	if len(b) == 0 {
		return nil
	}
	return unsafe.Pointer(&b[0])
}

func isError(code C.size_t) bool {
	return C.ZSTD_isError(code) != 0
}

func errName(code C.size_t) string {
	return C.GoString(C.ZSTD_getErrorName(code))
}

//---

type CCtxT struct {
	cctx *C.ZSTD_CCtx
}

func NewCCtx() (*CCtxT, error) {
	cctx := C.ZSTD_createCCtx()
	if cctx == nil {
		return nil, zerr.ErrAlloc
	}
	return &CCtxT{cctx: cctx}, nil
}

func (c *CCtxT) setParam(param C.ZSTD_cParameter, v int) error {
	ret := C.ZSTD_CCtx_setParameter(c.cctx, param, C.int(v))
	if isError(ret) {
		return zerr.WrapCodec(zerr.ErrArg, errName(ret))
	}
	return nil
}

func (c *CCtxT) SetLevel(level int) error {
	return c.setParam(C.ZSTD_c_compressionLevel, level)
}

func (c *CCtxT) SetWorkers(n int) error {
	return c.setParam(C.ZSTD_c_nbWorkers, n)
}

func (c *CCtxT) SetChecksum(on bool) error {
	v := 0
	if on {
		v = 1
	}
	return c.setParam(C.ZSTD_c_checksumFlag, v)
}

func (c *CCtxT) SetWindowLog(n int) error {
	return c.setParam(C.ZSTD_c_windowLog, n)
}

func (c *CCtxT) RefCDict(cd *CDictT) error {
	ret := C.ZSTD_CCtx_refCDict(c.cctx, cd.cdict)
	if isError(ret) {
		return zerr.WrapCodec(zerr.ErrDict, errName(ret))
	}
	return nil
}

// Step runs one compression step under 'dir', advancing the buffer
// positions.  Returns the codec's remaining-work count; zero means the
// directive is fully satisfied.
func (c *CCtxT) Step(in, out *BuffT, dir DirectiveT) (uint64, error) {

	var (
		cin = C.ZSTD_inBuffer{
			src:  bytePtr(in.Data),
			size: C.size_t(len(in.Data)),
			pos:  C.size_t(in.Pos),
		}
		cout = C.ZSTD_outBuffer{
			dst:  bytePtr(out.Data),
			size: C.size_t(len(out.Data)),
			pos:  C.size_t(out.Pos),
		}
	)

	ret := C.ZSTD_compressStream2(c.cctx, &cout, &cin, C.ZSTD_EndDirective(dir))

	in.Pos = int(cin.pos)
	out.Pos = int(cout.pos)

	if isError(ret) {
		return 0, zerr.WrapCodec(zerr.ErrCompress, errName(ret))
	}

	return uint64(ret), nil
}

// ResetSession discards in-flight frame state but keeps parameters and
// any referenced dictionary.
func (c *CCtxT) ResetSession() {
	C.ZSTD_CCtx_reset(c.cctx, C.ZSTD_reset_session_only)
}

func (c *CCtxT) Free() {
	if c.cctx != nil {
		C.ZSTD_freeCCtx(c.cctx)
		c.cctx = nil
	}
}

//---

type DCtxT struct {
	dctx *C.ZSTD_DCtx
}

func NewDCtx() (*DCtxT, error) {
	dctx := C.ZSTD_createDCtx()
	if dctx == nil {
		return nil, zerr.ErrAlloc
	}
	return &DCtxT{dctx: dctx}, nil
}

func (d *DCtxT) RefDDict(dd *DDictT) error {
	ret := C.ZSTD_DCtx_refDDict(d.dctx, dd.ddict)
	if isError(ret) {
		return zerr.WrapCodec(zerr.ErrDict, errName(ret))
	}
	return nil
}

// Step runs one decompression step, advancing the buffer positions.
// Returns the codec's remaining-work count; zero means a frame is
// fully decoded and flushed.
func (d *DCtxT) Step(in, out *BuffT) (uint64, error) {

	var (
		cin = C.ZSTD_inBuffer{
			src:  bytePtr(in.Data),
			size: C.size_t(len(in.Data)),
			pos:  C.size_t(in.Pos),
		}
		cout = C.ZSTD_outBuffer{
			dst:  bytePtr(out.Data),
			size: C.size_t(len(out.Data)),
			pos:  C.size_t(out.Pos),
		}
	)

	ret := C.ZSTD_decompressStream(d.dctx, &cout, &cin)

	in.Pos = int(cin.pos)
	out.Pos = int(cout.pos)

	if isError(ret) {
		return 0, zerr.WrapCodec(zerr.ErrDecompress, errName(ret))
	}

	return uint64(ret), nil
}

func (d *DCtxT) ResetSession() {
	C.ZSTD_DCtx_reset(d.dctx, C.ZSTD_reset_session_only)
}

func (d *DCtxT) Free() {
	if d.dctx != nil {
		C.ZSTD_freeDCtx(d.dctx)
		d.dctx = nil
	}
}

//---

type CDictT struct {
	cdict *C.ZSTD_CDict
}

func NewCDict(dict []byte, level int) (*CDictT, error) {
	cdict := C.ZSTD_createCDict(bytePtr(dict), C.size_t(len(dict)), C.int(level))
	if cdict == nil {
		return nil, zerr.Wrap(zerr.ErrDict, zerr.ErrAlloc)
	}
	return &CDictT{cdict: cdict}, nil
}

func (cd *CDictT) Free() {
	if cd.cdict != nil {
		C.ZSTD_freeCDict(cd.cdict)
		cd.cdict = nil
	}
}

type DDictT struct {
	ddict *C.ZSTD_DDict
}

func NewDDict(dict []byte) (*DDictT, error) {
	ddict := C.ZSTD_createDDict(bytePtr(dict), C.size_t(len(dict)))
	if ddict == nil {
		return nil, zerr.Wrap(zerr.ErrDict, zerr.ErrAlloc)
	}
	return &DDictT{ddict: ddict}, nil
}

func (dd *DDictT) Free() {
	if dd.ddict != nil {
		C.ZSTD_freeDDict(dd.ddict)
		dd.ddict = nil
	}
}

//---

func CompressBound(sz int) int {
	return int(C.ZSTD_compressBound(C.size_t(sz)))
}

func MinLevel() int {
	return int(C.ZSTD_minCLevel())
}

func MaxLevel() int {
	return int(C.ZSTD_maxCLevel())
}

// FrameContentSize returns the decompressed size recorded in the frame
// header.  The second return is false when the frame does not carry one.
func FrameContentSize(frame []byte) (uint64, bool, error) {
	ret := C.ZSTD_getFrameContentSize(bytePtr(frame), C.size_t(len(frame)))

	switch ret {
	case C.ZSTD_CONTENTSIZE_UNKNOWN:
		return 0, false, nil
	case C.ZSTD_CONTENTSIZE_ERROR:
		return 0, false, zerr.ErrFrame
	}

	return uint64(ret), true, nil
}

// FindFrameCompressedSize returns the exact compressed size of the
// first frame in 'frame'.
func FindFrameCompressedSize(frame []byte) (uint64, error) {
	ret := C.ZSTD_findFrameCompressedSize(bytePtr(frame), C.size_t(len(frame)))
	if isError(ret) {
		return 0, zerr.WrapCodec(zerr.ErrFrame, errName(ret))
	}
	return uint64(ret), nil
}

func DictIDFromFrame(frame []byte) uint32 {
	return uint32(C.ZSTD_getDictID_fromFrame(bytePtr(frame), C.size_t(len(frame))))
}

func DictIDFromDict(dict []byte) uint32 {
	return uint32(C.ZSTD_getDictID_fromDict(bytePtr(dict), C.size_t(len(dict))))
}

// TrainFromBuffer trains a dictionary of at most 'capacity' bytes from
// the sample set.  Pass-through to ZDICT; the training algorithm is
// opaque to this layer.
func TrainFromBuffer(samples [][]byte, capacity int) ([]byte, error) {

	var (
		flat  []byte
		sizes = make([]C.size_t, 0, len(samples))
	)

	for _, s := range samples {
		flat = append(flat, s...)
		sizes = append(sizes, C.size_t(len(s)))
	}

	if len(flat) == 0 || capacity <= 0 {
		return nil, zerr.Wrap(zerr.ErrTrain, zerr.ErrArg)
	}

	dict := make([]byte, capacity)

	ret := C.ZDICT_trainFromBuffer(
		bytePtr(dict),
		C.size_t(len(dict)),
		bytePtr(flat),
		&sizes[0],
		C.unsigned(len(sizes)),
	)

	if C.ZDICT_isError(ret) != 0 {
		return nil, zerr.WrapCodec(zerr.ErrTrain, C.GoString(C.ZDICT_getErrorName(ret)))
	}

	return dict[:int(ret)], nil
}
