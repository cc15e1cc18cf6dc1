package pzstd

import (
	"runtime"

	"github.com/prequel-dev/pzstd/internal/pkg/czstd"
	"github.com/prequel-dev/pzstd/internal/pkg/opts"
)

// OptT is a function that sets an option on a compressor or
// decompressor.
type OptT func(*opts.OptsT)

// ModeT selects how much pending data a compress call forces out of
// the codec.  Values are totally ordered: ModeContinue < ModeFlushBlock
// < ModeFlushFrame.
type ModeT int

const (
	// Collect more data; the codec decides when to emit.
	ModeContinue = ModeT(czstd.DirContinue)

	// Flush all buffered data into a complete block without ending
	// the frame.
	ModeFlushBlock = ModeT(czstd.DirFlushBlock)

	// Flush all buffered data and close the frame.
	ModeFlushFrame = ModeT(czstd.DirFlushFrame)
)

// LevelT is a type for compression level.
type LevelT int

const (
	// Default compression level per the codec (ZSTD_CLEVEL_DEFAULT).
	LevelDefault LevelT = 3

	LevelMin LevelT = 1
	LevelMax LevelT = 22

	Level1  LevelT = 1 // Fastest
	Level2  LevelT = 2
	Level3  LevelT = 3
	Level4  LevelT = 4
	Level5  LevelT = 5
	Level6  LevelT = 6
	Level7  LevelT = 7
	Level8  LevelT = 8
	Level9  LevelT = 9
	Level10 LevelT = 10
	Level11 LevelT = 11
	Level12 LevelT = 12
	Level13 LevelT = 13
	Level14 LevelT = 14
	Level15 LevelT = 15
	Level16 LevelT = 16
	Level17 LevelT = 17
	Level18 LevelT = 18
	Level19 LevelT = 19
	Level20 LevelT = 20
	Level21 LevelT = 21
	Level22 LevelT = 22 // Best compression
)

// Specify compression level.  Out-of-range values are clamped to the
// codec's supported range.  Defaults to LevelDefault.
func WithLevel(lvl LevelT) OptT {
	return func(o *opts.OptsT) {
		switch {
		case int(lvl) < czstd.MinLevel():
			lvl = LevelT(czstd.MinLevel())
		case int(lvl) > czstd.MaxLevel():
			lvl = LevelT(czstd.MaxLevel())
		}
		o.Level = int(lvl)
	}
}

// Specify number of codec worker threads for compression.  Defaults
// to 0, compressing on the calling goroutine.
//
//	0   Compress synchronously
//	1+  Compress with that many codec workers
//	<0  Compress with workers up to the CPU count
func WithWorkers(n int) OptT {
	return func(o *opts.OptsT) {
		if n < 0 {
			n = runtime.NumCPU()
		}
		o.NWorkers = n
	}
}

// Enable a content checksum on emitted frames.  Defaults to disabled.
// Ignored on decompression; the codec always validates a checksum when
// the frame carries one.
func WithChecksum(enable bool) OptT {
	return func(o *opts.OptsT) {
		o.Checksum = enable
	}
}

// Specify the codec window log.  Zero leaves the codec default.
func WithWindowLog(n int) OptT {
	return func(o *opts.OptsT) {
		o.WindowLog = n
	}
}

// Provide a dictionary.  The dictionary must not be released until
// every compressor and decompressor using it is closed.
func WithDict(d *Dict) OptT {
	return func(o *opts.OptsT) {
		o.Dict = d
	}
}

func parseOpts(optFuncs ...OptT) opts.OptsT {
	o := opts.OptsT{
		Level: int(LevelDefault),
	}

	for _, oFunc := range optFuncs {
		oFunc(&o)
	}

	return o
}
