// Package dec drives the codec's decompression step, tracking frame
// edges across calls and carrying unconsumed input between them.
//
// Two behavioral modes share the implementation.  Bounded mode stops
// the instant the first frame completes and refuses further input;
// endless mode resumes transparently into the next frame.
package dec

import (
	"github.com/prequel-dev/pzstd/internal/pkg/carry"
	"github.com/prequel-dev/pzstd/internal/pkg/czstd"
	"github.com/prequel-dev/pzstd/internal/pkg/obuf"
	"github.com/prequel-dev/pzstd/internal/pkg/opts"
	"github.com/prequel-dev/pzstd/internal/pkg/zerr"
)

// Frame-edge state.  atEdge means ready to start or safely idle
// between frames; done is terminal and only reachable in bounded mode.
type stateT uint8

const (
	stateAtEdge stateT = iota
	stateMidFrame
	stateDone
)

type DecoderT struct {
	dctx       *czstd.DCtxT
	carrier    carry.CarrierT
	state      stateT
	needsInput bool
	bounded    bool
	unused     []byte
}

func NewDecoder(o *opts.OptsT, bounded bool) (*DecoderT, error) {

	dctx, err := czstd.NewDCtx()
	if err != nil {
		return nil, err
	}

	if o.Dict != nil {
		dd, err := o.Dict.DDict()
		if err == nil {
			err = dctx.RefDDict(dd)
		}
		if err != nil {
			dctx.Free()
			return nil, err
		}
	}

	return &DecoderT{
		dctx:       dctx,
		bounded:    bounded,
		needsInput: true,
	}, nil
}

// Decompress feeds 'src', possibly merged with previously unconsumed
// bytes, and returns at most 'maxLength' bytes of output.  Negative
// maxLength means unbounded.
func (d *DecoderT) Decompress(src []byte, maxLength int64) ([]byte, error) {

	if d.state == stateDone {
		return nil, zerr.ErrAtEnd
	}

	// Assemble the effective input.  The carrier is bypassed when it
	// holds nothing, and is the sole source when the caller sends
	// nothing; only the mixed case pays for a merge.
	var (
		in          czstd.BuffT
		usedCarrier bool
	)

	switch {
	case d.carrier.Empty():
		in = czstd.BuffT{Data: src}
	case len(src) == 0:
		in = czstd.BuffT{Data: d.carrier.Pending()}
		usedCarrier = true
	default:
		d.carrier.Absorb(src)
		in = czstd.BuffT{Data: d.carrier.Pending()}
		usedCarrier = true
	}

	out, err := d.drive(&in, maxLength, 0)
	if err != nil {
		d.reset()
		return nil, err
	}

	// Carry over whatever the codec did not consume.
	switch {
	case d.state == stateDone:
		// Bounded terminal: trailing bytes are not decompressed,
		// they become unused data.
		d.unused = append([]byte(nil), in.Data[in.Pos:]...)
		d.carrier.Clear()
	case in.Drained():
		d.carrier.Clear()
	case usedCarrier:
		d.carrier.Advance(in.Pos)
	default:
		d.carrier.Replace(in.Data[in.Pos:])
	}

	d.needsInput = d.calcNeedsInput(&in, int64(len(out)), maxLength)

	return out, nil
}

// DecompressSized is Decompress with a known output size: the buffer
// is allocated in one exact chunk instead of on the growth schedule.
func (d *DecoderT) DecompressSized(src []byte, sizeHint int64) ([]byte, error) {

	if d.state == stateDone {
		return nil, zerr.ErrAtEnd
	}

	in := czstd.BuffT{Data: src}

	out, err := d.drive(&in, -1, sizeHint)
	if err != nil {
		d.reset()
		return nil, err
	}

	if d.state == stateDone {
		d.unused = append([]byte(nil), in.Data[in.Pos:]...)
	} else if !in.Drained() {
		d.carrier.Replace(in.Data[in.Pos:])
	}

	d.needsInput = d.calcNeedsInput(&in, int64(len(out)), -1)

	return out, nil
}

func (d *DecoderT) drive(in *czstd.BuffT, maxLength, sizeHint int64) ([]byte, error) {

	var buf *obuf.BufferT
	if sizeHint > 0 {
		buf = obuf.NewBufferSized(sizeHint)
	} else {
		buf = obuf.NewBuffer(maxLength)
	}

	for {
		out := czstd.BuffT{Data: buf.LastChunk(), Pos: buf.Written()}

		inMark, outMark := in.Pos, out.Pos

		rem, err := d.dctx.Step(in, &out)
		buf.SetWritten(out.Pos)

		if err != nil {
			buf.Abandon()
			return nil, err
		}

		progress := in.Pos > inMark || out.Pos > outMark

		if rem == 0 {
			// Frame fully flushed.  Bounded mode halts on the spot;
			// endless mode is back at an edge and may start the next
			// frame on the same call.
			if d.bounded {
				d.state = stateDone
				break
			}
			d.state = stateAtEdge
		} else if progress && d.state == stateAtEdge {
			d.state = stateMidFrame
		}

		if buf.Full() {
			if buf.ReachedMaxLength() {
				break
			}
			buf.Grow()
			continue
		}

		if in.Drained() {
			break
		}
	}

	return buf.Finish(), nil
}

func (d *DecoderT) calcNeedsInput(in *czstd.BuffT, outLen, maxLength int64) bool {

	hitMax := maxLength >= 0 && outLen == maxLength

	switch {
	case d.state == stateDone:
		return false
	case !in.Drained():
		return false
	case hitMax && (d.bounded || d.state != stateAtEdge):
		// Output stopped exactly at the cap; already-decoded bytes
		// may still be buffered, so the caller should call again
		// with empty input before feeding more.
		return false
	}

	return true
}

// reset restores the initial state after a codec error.  Buffered
// unconsumed input is discarded; the in-flight frame is lost but the
// instance is reusable for the next one.
func (d *DecoderT) reset() {
	d.dctx.ResetSession()
	d.carrier.Clear()
	d.state = stateAtEdge
	d.needsInput = true
	d.unused = nil
}

func (d *DecoderT) Eof() bool {
	return d.state == stateDone
}

func (d *DecoderT) AtFrameEdge() bool {
	return d.state == stateAtEdge
}

func (d *DecoderT) NeedsInput() bool {
	return d.needsInput
}

// Unused returns the bytes following the first completed frame.
// Empty until the bounded terminal state is reached.
func (d *DecoderT) Unused() []byte {
	if d.state != stateDone {
		return nil
	}
	return d.unused
}

func (d *DecoderT) Close() {
	if d.dctx != nil {
		d.dctx.Free()
		d.dctx = nil
	}
}
