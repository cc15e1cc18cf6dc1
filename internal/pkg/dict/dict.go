// Package dict caches compiled codec dictionaries, keyed by
// compression level for the compression side plus a single
// level-independent handle for the decompression side.
package dict

import (
	"sync"

	"github.com/prequel-dev/pzstd/internal/pkg/czstd"
	"github.com/prequel-dev/pzstd/internal/pkg/zerr"
)

type DictT struct {
	mu     sync.Mutex
	data   []byte
	cdicts map[int]*czstd.CDictT
	ddict  *czstd.DDictT
	freed  bool
}

// NewDict copies 'data' so the caller's buffer can be reused.
func NewDict(data []byte) *DictT {
	dupe := make([]byte, len(data))
	copy(dupe, data)
	return &DictT{data: dupe}
}

func (d *DictT) Data() []byte {
	return d.data
}

func (d *DictT) ID() uint32 {
	return czstd.DictIDFromDict(d.data)
}

// CDict returns the compiled compression dictionary for 'level',
// building it on first use.  Compilation happens under the dictionary
// lock; racing requests at the same level fold into one compile, and
// requests at other levels block only for that compile's duration.
func (d *DictT) CDict(level int) (*czstd.CDictT, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.freed {
		return nil, zerr.Wrap(zerr.ErrDict, zerr.ErrClosed)
	}

	if cd, ok := d.cdicts[level]; ok {
		return cd, nil
	}

	cd, err := czstd.NewCDict(d.data, level)
	if err != nil {
		return nil, err
	}

	if d.cdicts == nil {
		d.cdicts = make(map[int]*czstd.CDictT)
	}
	d.cdicts[level] = cd

	return cd, nil
}

// DDict returns the compiled decompression dictionary, building it on
// first use.  Same pattern as CDict, without the level key.
func (d *DictT) DDict() (*czstd.DDictT, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.freed {
		return nil, zerr.Wrap(zerr.ErrDict, zerr.ErrClosed)
	}

	if d.ddict != nil {
		return d.ddict, nil
	}

	dd, err := czstd.NewDDict(d.data)
	if err != nil {
		return nil, err
	}

	d.ddict = dd
	return dd, nil
}

// Release frees all compiled handles.  Must be called only after every
// compressor and decompressor referencing this dictionary is closed;
// the compiled handles are shared, never copied.
func (d *DictT) Release() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.freed {
		return
	}
	d.freed = true

	for _, cd := range d.cdicts {
		cd.Free()
	}
	d.cdicts = nil

	if d.ddict != nil {
		d.ddict.Free()
		d.ddict = nil
	}
}
