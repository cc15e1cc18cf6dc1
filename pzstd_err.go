package pzstd

import (
	"errors"

	"github.com/prequel-dev/pzstd/internal/pkg/zerr"
)

//  Forward declare internal errors

const (
	ErrClosed      = zerr.ErrClosed
	ErrAlloc       = zerr.ErrAlloc
	ErrCompress    = zerr.ErrCompress
	ErrDecompress  = zerr.ErrDecompress
	ErrMode        = zerr.ErrMode
	ErrArg         = zerr.ErrArg
	ErrAtEnd       = zerr.ErrAtEnd
	ErrIncomplete  = zerr.ErrIncomplete
	ErrFrame       = zerr.ErrFrame
	ErrDict        = zerr.ErrDict
	ErrTrain       = zerr.ErrTrain
	ErrUnsupported = zerr.ErrUnsupported
)

// Returns true if 'err' indicates the codec rejected the data itself,
// as opposed to a usage or resource error.
func ZstdCorrupted(err error) bool {
	return errors.Is(err, ErrDecompress)
}
