package pzstd

import (
	"github.com/prequel-dev/pzstd/internal/pkg/czstd"
	"github.com/prequel-dev/pzstd/internal/pkg/dict"
)

// Dict is a compression dictionary plus lazily compiled codec handles,
// cached per compression level for the compression side and once for
// the decompression side.  A Dict may be shared by any number of
// compressors and decompressors concurrently.
type Dict = dict.DictT

// Construct a Dict from raw dictionary content, typically produced by
// TrainDict.  The content is copied.
//
// Release() must be called only after every compressor and
// decompressor using the Dict has been closed.
func NewDict(data []byte) *Dict {
	return dict.NewDict(data)
}

// TrainDict builds dictionary content of at most 'capacity' bytes from
// a set of representative samples.  Pass-through to the codec's
// trainer.
func TrainDict(samples [][]byte, capacity int) ([]byte, error) {
	return czstd.TrainFromBuffer(samples, capacity)
}

// FrameInfoT carries the header fields of interest from a frame.
type FrameInfoT struct {
	ContentSize    uint64
	HasContentSize bool
	DictID         uint32
}

// FrameInfo decodes the frame header at the start of 'frame'.
func FrameInfo(frame []byte) (FrameInfoT, error) {

	sz, known, err := czstd.FrameContentSize(frame)
	if err != nil {
		return FrameInfoT{}, err
	}

	return FrameInfoT{
		ContentSize:    sz,
		HasContentSize: known,
		DictID:         czstd.DictIDFromFrame(frame),
	}, nil
}

// FrameDictID returns the dictionary id recorded in the frame header,
// or zero when the frame was compressed without a dictionary.
func FrameDictID(frame []byte) uint32 {
	return czstd.DictIDFromFrame(frame)
}

// FrameCompressedSize returns the exact compressed size of the first
// frame in 'frame', which must contain at least that whole frame.
func FrameCompressedSize(frame []byte) (uint64, error) {
	return czstd.FindFrameCompressedSize(frame)
}

// FrameContentSize returns the decompressed size recorded in the frame
// header; the bool is false when the frame does not record one.
func FrameContentSize(frame []byte) (uint64, bool, error) {
	return czstd.FrameContentSize(frame)
}
