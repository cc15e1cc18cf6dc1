package ops

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/progress"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/prequel-dev/pzstd"
)

const (
	strStdin = "<STDIN>"
	strUnset = "<UNSET>"

	// Enough of a frame prefix to decode its header.
	hdrMax = 18
)

func RunVerify() error {
	rdwr, err := newTarget(false, CLI.Verify.File, "-", false)

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

	return _verify(rdwr, opts...)
}

func _verify(rdwr *targetT, opts ...pzstd.OptT) error {
	if CLI.Verify.Skip {
		return _skipVerify(rdwr)
	}

	var (
		hdrBuf headerBuf
		tee    = io.TeeReader(rdwr.Reader(), &hdrBuf)
		rcnt   = &rdCnt{Reader: tee}
	)

	msg := "Verifying"
	pw := newProgressWriter(1)
	pw.SetMessageLength(len(msg))

	tr := &progress.Tracker{
		Message: msg,
		Units:   progress.UnitsBytes,
	}

	if rdwr.srcSz > 0 {
		tr.Total = rdwr.srcSz
	}

	pw.AppendTracker(tr)
	go pw.Render()

	var (
		start  = time.Now()
		n, err = drain(rcnt, io.Discard, tr.SetValue, opts...)
		wr     = rdwr.Writer()
	)

	tdiff := time.Since(start)

	tr.MarkAsDone()

	for pw.IsRenderInProgress() {
		time.Sleep(time.Millisecond * 100)
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleColoredBright)
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("Verify results")
	t.AppendHeader(table.Row{"Key", "Value"})

	var (
		fileName   = strStdin
		dictionary = strUnset
		percent    = float64(rcnt.cnt) / float64(n) * 100.0
	)

	if rdwr.src != nil {
		fileName = rdwr.src.Name()
	}

	if CLI.Dict != "" {
		dictionary = CLI.Dict
	}

	t.AppendRows([]table.Row{
		{"File name", fileName},
		{"Dictionary", dictionary},
		{"InSize", rcnt.cnt},
		{"OutSize", n},
		{"Duration", tdiff.Round(time.Microsecond)},
		{"Ratio", fmt.Sprintf("%.2f%%", percent)},
	})

	// Attempt to reparse the cached header
	if err == nil && hdrBuf.buf.Len() > 0 {
		t.AppendSeparator()
		err = verifyHeader(hdrBuf.buf.Bytes(), t)
	}

	if err != nil {
		return err
	} else if rcnt.cnt == 0 {
		fmt.Fprintf(wr, "No data to verify\n")
		return nil
	}

	t.Render()

	return nil
}

func _skipVerify(rdwr *targetT) error {
	t := table.NewWriter()
	t.SetStyle(table.StyleColoredBright)
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("Header Metadata")
	t.AppendHeader(table.Row{"Key", "Value"})

	prefix := make([]byte, hdrMax)
	n, err := io.ReadFull(rdwr.Reader(), prefix)
	if err != nil && err != io.ErrUnexpectedEOF {
		return err
	}

	if err := verifyHeader(prefix[:n], t); err != nil {
		return err
	}

	t.Render()
	return nil
}

func verifyHeader(prefix []byte, tw table.Writer) error {
	info, err := pzstd.FrameInfo(prefix)
	if err != nil {
		return err
	}

	var (
		dictId    = strUnset
		contentSz = strUnset
	)
	if info.DictID != 0 {
		dictId = fmt.Sprintf("%d", info.DictID)
	}
	if info.HasContentSize {
		contentSz = fmt.Sprintf("%d", info.ContentSize)
	}

	tw.AppendRows([]table.Row{
		{"Dict Identifier", dictId},
		{"Content size", contentSz},
	})

	return nil
}

type headerBuf struct {
	buf bytes.Buffer
}

func (b *headerBuf) Write(data []byte) (int, error) {
	// Cache enough to grab header
	if b.buf.Len() < hdrMax {
		b.buf.Write(data)
	}
	return len(data), nil
}
