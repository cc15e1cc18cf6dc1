package ops

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/progress"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/prequel-dev/pzstd"
	"github.com/prequel-dev/pzstd/pkg/sparse"
)

func RunDecompress() error {
	rdwr, err := newTarget(false, CLI.Decompress.File, CLI.Decompress.Output, CLI.Decompress.Force)

	if err != nil {
		return err
	}

	defer rdwr.Close()

	dict, err := loadDict()
	if err != nil {
		return err
	}
	if dict != nil {
		defer dict.Release()
	}

	var opts []pzstd.OptT
	if dict != nil {
		opts = append(opts, pzstd.WithDict(dict))
	}

	return _decompress(rdwr, opts...)
}

func _decompress(rdwr *targetT, opts ...pzstd.OptT) error {

	var (
		wr io.WriteCloser = rdwr.Writer()
		pw progress.Writer
		tr *progress.Tracker
		cb func(int64)
	)

	if wr != os.Stdout && CLI.Decompress.Sparse {
		wr = sparse.NewWriter(wr)
	}

	if wr != os.Stdout && !CLI.Decompress.Quiet {
		msg := "Decompressing"
		pw = newProgressWriter(1)
		pw.SetMessageLength(len(msg))

		tr = &progress.Tracker{
			Message: msg,
			Units:   progress.UnitsBytes,
		}

		if rdwr.srcSz > 0 {
			tr.Total = rdwr.srcSz
		}

		pw.AppendTracker(tr)
		cb = tr.SetValue

		go pw.Render()
	}

	var (
		start = time.Now()
		rcnt  = &rdCnt{Reader: rdwr.Reader()}
	)

	n, err := drain(rcnt, wr, cb, opts...)
	if err != nil {
		return err
	}

	// Codec does not close the underlying writer
	if err := wr.Close(); err != nil {
		return err
	}
	rdwr.dst = nil

	if pw != nil {
		tdiff := time.Since(start)

		tr.MarkAsDone()

		for pw.IsRenderInProgress() {
			time.Sleep(time.Millisecond * 100)
		}

		percent := float64(rcnt.cnt) / float64(n) * 100.0

		t := table.NewWriter()
		t.SetTitle("Decompress results")
		t.SetStyle(table.StyleColoredBright)
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Key", "Value"})
		t.AppendRows([]table.Row{
			{"Input", rdwr.src.Name()},
			{"InSize", rcnt.cnt},
			{"OutSize", n},
			{"Duration", tdiff.Round(time.Microsecond)},
			{"Ratio", fmt.Sprintf("%.2f%%", percent)},
		})
		t.Render()
	}
	return nil
}

// drain drives the chunked decompress loop across any number of
// back-to-back frames.  Returns the count of decompressed bytes
// written.
func drain(rd io.Reader, wr io.Writer, onRead func(int64), opts ...pzstd.OptT) (int64, error) {

	dcmp, err := pzstd.NewStreamDecompressor(opts...)
	if err != nil {
		return 0, err
	}
	defer dcmp.Close()

	var (
		total int64
		nread int64
		chunk = make([]byte, chunkSz)
	)

	for {
		n, rerr := rd.Read(chunk)

		if n > 0 {
			nread += int64(n)

			src := chunk[:n]
			for {
				out, err := dcmp.Decompress(src, chunkSz)
				if err != nil {
					return total, err
				}
				src = nil

				if len(out) > 0 {
					total += int64(len(out))
					if _, err := wr.Write(out); err != nil {
						return total, err
					}
				}

				if dcmp.NeedsInput() {
					break
				}
			}

			if onRead != nil {
				onRead(nread)
			}
		}

		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return total, rerr
		}
	}

	if !dcmp.AtFrameEdge() {
		return total, pzstd.ErrIncomplete
	}

	return total, nil
}
