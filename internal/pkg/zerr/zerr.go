package zerr

import "fmt"

type constError string

func (err constError) Error() string {
	return string(err)
}

const (
	ErrClosed      constError = "zstd closed"
	ErrAlloc       constError = "zstd fail allocate"
	ErrCompress    constError = "zstd fail compress"
	ErrDecompress  constError = "zstd fail decompress"
	ErrMode        constError = "zstd invalid mode"
	ErrArg         constError = "zstd invalid argument"
	ErrAtEnd       constError = "zstd already at end of frame"
	ErrIncomplete  constError = "zstd incomplete frame"
	ErrFrame       constError = "zstd fail inspect frame"
	ErrDict        constError = "zstd fail load dictionary"
	ErrTrain       constError = "zstd fail train dictionary"
	ErrUnsupported constError = "zstd unsupported feature"
)

// Wrap a codec failure name under one of the taxonomy errors above.
func WrapCodec(base error, name string) error {
	return fmt.Errorf("%w: %s", base, name)
}

func Wrap(base, cause error) error {
	return fmt.Errorf("%w: %w", base, cause)
}
