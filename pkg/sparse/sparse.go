// Package sparse wraps a seekable writer and skips over zero runs
// instead of writing them, producing sparse files on filesystems that
// support them.  Decompressed disk images and database snapshots are
// mostly zero pages; seeking past them is much cheaper than writing.
package sparse

import (
	"bytes"
	"io"
)

const pageSz = 4 << 10

var zeroPage [pageSz]byte

type Writer struct {
	wr   io.Writer
	skip int64
}

func NewWriter(wr io.Writer) *Writer {
	return &Writer{wr: wr}
}

// Write data, seeking over zero pages when the underlying writer is
// an io.Seeker.  Skipped bytes count as written.
func (w *Writer) Write(data []byte) (int, error) {

	seeker, ok := w.wr.(io.Seeker)
	if !ok {
		return w.wr.Write(data)
	}

	var n int

	for len(data) > 0 {

		page := data
		if len(page) > pageSz {
			page = page[:pageSz]
		}

		if bytes.Equal(page, zeroPage[:len(page)]) {
			// Defer the seek; adjacent zero pages coalesce.
			w.skip += int64(len(page))
			n += len(page)
			data = data[len(page):]
			continue
		}

		if w.skip > 0 {
			if _, err := seeker.Seek(w.skip, io.SeekCurrent); err != nil {
				return n, err
			}
			w.skip = 0
		}

		wn, err := w.wr.Write(page)
		n += wn
		if err != nil {
			return n, err
		}

		data = data[len(page):]
	}

	return n, nil
}

// Close commits any trailing skip so the file ends at the right
// offset, by seeking to one byte short and writing a final zero.
func (w *Writer) Close() error {

	if w.skip > 0 {
		seeker := w.wr.(io.Seeker)
		if w.skip > 1 {
			if _, err := seeker.Seek(w.skip-1, io.SeekCurrent); err != nil {
				return err
			}
		}
		if _, err := w.wr.Write(zeroPage[:1]); err != nil {
			return err
		}
		w.skip = 0
	}

	if closer, ok := w.wr.(io.Closer); ok {
		return closer.Close()
	}

	return nil
}
