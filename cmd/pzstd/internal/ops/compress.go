package ops

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/gammazero/workerpool"
	"github.com/jedib0t/go-pretty/v6/progress"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/prequel-dev/pzstd"
)

func RunCompress() error {

	if CLI.Compress.Level < int(pzstd.LevelMin) || CLI.Compress.Level > int(pzstd.LevelMax) {
		return errors.New("compression level out of range")
	}

	dict, err := loadDict()
	if err != nil {
		return err
	}
	if dict != nil {
		defer dict.Release()
	}

	opts := []pzstd.OptT{
		pzstd.WithWorkers(CLI.Cpus),
		pzstd.WithLevel(pzstd.LevelT(CLI.Compress.Level)),
		pzstd.WithChecksum(CLI.Compress.Checksum),
		pzstd.WithWindowLog(CLI.Compress.Wlog),
	}

	if dict != nil {
		opts = append(opts, pzstd.WithDict(dict))
	}

	if len(CLI.Compress.Files) > 1 {
		return _compressMany(opts...)
	}

	var fn string
	if len(CLI.Compress.Files) == 1 {
		fn = CLI.Compress.Files[0]
	}

	rdwr, err := newTarget(true, fn, CLI.Compress.Output, CLI.Compress.Force)
	if err != nil {
		return err
	}

	defer rdwr.Close()

	return _compress(rdwr, opts...)
}

// _compressMany fans a file list out over a worker pool; each file is
// compressed independently to '<name>.zst'.
func _compressMany(opts ...pzstd.OptT) error {

	if CLI.Compress.Output != "" {
		return errors.New("cannot combine --output with multiple input files")
	}

	ncpu := runtime.NumCPU()

	var (
		wp      = workerpool.New(ncpu)
		mu      sync.Mutex
		rows    []table.Row
		errList []error
	)

	for _, fn := range CLI.Compress.Files {
		fn := fn
		wp.Submit(func() {
			rdwr, err := newTarget(true, fn, "", CLI.Compress.Force)
			if err == nil {
				defer rdwr.Close()
				var n int64
				n, err = pump(rdwr.Reader(), rdwr.Writer(), nil, opts...)
				if err == nil {
					mu.Lock()
					rows = append(rows, table.Row{fn, n})
					mu.Unlock()
				}
			}
			if err != nil {
				log.Errorw("fail compress", "file", fn, "error", err)
				mu.Lock()
				errList = append(errList, fmt.Errorf("'%s': %w", fn, err))
				mu.Unlock()
			}
		})
	}

	wp.StopWait()

	if !CLI.Compress.Quiet && len(rows) > 0 {
		t := table.NewWriter()
		t.SetTitle("Compress results")
		t.SetStyle(table.StyleColoredBright)
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Input", "InSize"})
		t.AppendRows(rows)
		t.Render()
	}

	return errors.Join(errList...)
}

func _compress(rdwr *targetT, opts ...pzstd.OptT) error {

	var (
		pw progress.Writer
		tr *progress.Tracker
		cb func(int64)
	)

	if rdwr.Writer() != os.Stdout && !CLI.Compress.Quiet {
		msg := "Compressing"
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
		wcnt  = &wrCnt{Writer: rdwr.Writer()}
	)

	n, err := pump(rdwr.Reader(), wcnt, cb, opts...)
	if err != nil {
		return err
	}

	if pw != nil {
		tdiff := time.Since(start)

		tr.MarkAsDone()

		for pw.IsRenderInProgress() {
			time.Sleep(time.Millisecond * 100)
		}

		percent := float64(wcnt.cnt) / float64(n) * 100.0

		t := table.NewWriter()
		t.SetTitle("Compress results")
		t.SetStyle(table.StyleColoredBright)
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Key", "Value"})

		input := strStdin
		if rdwr.src != nil {
			input = rdwr.src.Name()
		}

		t.AppendRows([]table.Row{
			{"Input", input},
			{"Output", rdwr.dst.Name()},
			{"InSize", n},
			{"OutSize", wcnt.cnt},
			{"Duration", tdiff.Round(time.Microsecond)},
			{"Ratio", fmt.Sprintf("%.2f%%", percent)},
		})
		t.Render()
	}
	return nil
}

// pump drives the chunked compress loop: read, compress, write, and a
// final frame flush at EOF.  Returns the count of source bytes read.
func pump(rd io.Reader, wr io.Writer, onRead func(int64), opts ...pzstd.OptT) (int64, error) {

	cmp, err := pzstd.NewCompressor(opts...)
	if err != nil {
		return 0, err
	}
	defer cmp.Close()

	var (
		total int64
		chunk = make([]byte, chunkSz)
	)

	for {
		n, rerr := rd.Read(chunk)

		if n > 0 {
			total += int64(n)

			out, err := cmp.Compress(chunk[:n], pzstd.ModeContinue)
			if err != nil {
				return total, err
			}
			if len(out) > 0 {
				if _, err := wr.Write(out); err != nil {
					return total, err
				}
			}

			if onRead != nil {
				onRead(total)
			}
		}

		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return total, rerr
		}
	}

	out, err := cmp.Flush(pzstd.ModeFlushFrame)
	if err != nil {
		return total, err
	}
	if len(out) > 0 {
		if _, err := wr.Write(out); err != nil {
			return total, err
		}
	}

	return total, nil
}
