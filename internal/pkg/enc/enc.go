// Package enc drives the codec's compression step against a growable
// output buffer until the codec reports the directive satisfied.
package enc

import (
	"github.com/prequel-dev/pzstd/internal/pkg/czstd"
	"github.com/prequel-dev/pzstd/internal/pkg/obuf"
	"github.com/prequel-dev/pzstd/internal/pkg/opts"
)

type EncoderT struct {
	cctx    *czstd.CCtxT
	lastDir czstd.DirectiveT
	mt      bool
}

func NewEncoder(o *opts.OptsT) (*EncoderT, error) {

	cctx, err := czstd.NewCCtx()
	if err != nil {
		return nil, err
	}

	if err := cctx.SetLevel(o.Level); err != nil {
		cctx.Free()
		return nil, err
	}

	if o.Checksum {
		if err := cctx.SetChecksum(true); err != nil {
			cctx.Free()
			return nil, err
		}
	}

	if o.WindowLog > 0 {
		if err := cctx.SetWindowLog(o.WindowLog); err != nil {
			cctx.Free()
			return nil, err
		}
	}

	if o.NWorkers > 0 {
		if err := cctx.SetWorkers(o.NWorkers); err != nil {
			cctx.Free()
			return nil, err
		}
	}

	if o.Dict != nil {
		cd, err := o.Dict.CDict(o.Level)
		if err == nil {
			err = cctx.RefCDict(cd)
		}
		if err != nil {
			cctx.Free()
			return nil, err
		}
	}

	return &EncoderT{
		cctx:    cctx,
		lastDir: czstd.DirFlushFrame,
		mt:      o.NWorkers > 0,
	}, nil
}

// Compress feeds 'src' under 'dir' and returns all output the codec
// produced.  Flush is Compress with no input and a flush directive.
func (e *EncoderT) Compress(src []byte, dir czstd.DirectiveT) ([]byte, error) {
	return e.drive(obuf.NewBuffer(-1), src, dir)
}

// CompressRich is the single-shot path: the output buffer is pre-sized
// to the codec's worst-case bound so no growth occurs and the frame is
// produced in one pass.  The bound assumes single-threaded framing, so
// a multi-threaded encoder falls back to the growing path.
func (e *EncoderT) CompressRich(src []byte) ([]byte, error) {
	if e.mt {
		return e.Compress(src, czstd.DirFlushFrame)
	}

	bound := int64(czstd.CompressBound(len(src)))
	return e.drive(obuf.NewBufferSized(bound), src, czstd.DirFlushFrame)
}

func (e *EncoderT) drive(buf *obuf.BufferT, src []byte, dir czstd.DirectiveT) ([]byte, error) {

	in := czstd.BuffT{Data: src}

	for {
		out := czstd.BuffT{Data: buf.LastChunk(), Pos: buf.Written()}

		var (
			rem uint64
			err error
		)

		if e.mt && dir == czstd.DirContinue {
			rem, err = e.drain(&in, &out)
		} else {
			rem, err = e.cctx.Step(&in, &out, dir)
		}

		buf.SetWritten(out.Pos)

		if err != nil {
			buf.Abandon()
			e.reset()
			return nil, err
		}

		e.lastDir = dir

		// Continue is satisfied once the input is consumed; flush
		// directives only once the codec reports no remaining work.
		if dir == czstd.DirContinue {
			if in.Drained() {
				break
			}
		} else if rem == 0 {
			break
		}

		if buf.Full() {
			buf.Grow()
		}
	}

	return buf.Finish(), nil
}

// drain repeatedly steps the codec without a directive change so a
// multi-threaded session can emit larger bursts of output per call.
func (e *EncoderT) drain(in, out *czstd.BuffT) (uint64, error) {
	for {
		rem, err := e.cctx.Step(in, out, czstd.DirContinue)
		if err != nil || in.Drained() || out.Pos == len(out.Data) {
			return rem, err
		}
	}
}

// reset makes a failed encoder safe to reuse for a fresh frame.
func (e *EncoderT) reset() {
	e.cctx.ResetSession()
	e.lastDir = czstd.DirFlushFrame
}

func (e *EncoderT) Close() {
	if e.cctx != nil {
		e.cctx.Free()
		e.cctx = nil
	}
}
