package opts

import (
	"github.com/prequel-dev/pzstd/internal/pkg/dict"
)

type OptsT struct {
	Level     int
	NWorkers  int
	WindowLog int
	Checksum  bool
	Dict      *dict.DictT
}
