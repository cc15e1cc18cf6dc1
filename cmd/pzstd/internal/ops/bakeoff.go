package ops

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	kzstd "github.com/klauspost/compress/zstd"

	"github.com/jedib0t/go-pretty/v6/progress"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pierrec/lz4/v4"
	"github.com/prequel-dev/pzstd"
)

// Levels exercised on the pzstd side of the bakeoff.
var bakeLevels = []int{1, 3, 5, 7, 9, 12, 15, 19}

func RunBakeoff() error {

	rdwr, err := newTarget(true, CLI.Bakeoff.File, "-", false)

	if err != nil {
		return err
	}

	defer rdwr.Close()

	var (
		rdr = rdwr.Reader()
	)

	// Consume into RAM; must be able to seek
	if rdr == os.Stdin {
		var buf bytes.Buffer
		n, err := io.Copy(&buf, rdr)
		if err != nil {
			return err
		}
		rdr = bytes.NewReader(buf.Bytes())
		rdwr.srcSz = n
	}

	rds, ok := rdr.(io.ReadSeeker)
	if !ok {
		return errors.New("file not seekable")
	}

	if err := outputOptions(); err != nil {
		return err
	}

	fmt.Println()

	pw := newProgressWriter(3)
	go pw.Render()

	pzstdBaker, err := _prepPzstd(rds, rdwr.srcSz, pw)
	if err != nil {
		return err
	}

	zstdBaker, err := _prepZstd(rds, rdwr.srcSz, pw)
	if err != nil {
		fmt.Printf("Fail to bake zstd: %v\n", err)
	}

	lz4Baker, err := _prepLz4(rds, rdwr.srcSz, pw)
	if err != nil {
		fmt.Printf("Fail to bake lz4: %v\n", err)
	}

	var (
		pzstdResults []resultT
		zstdResults  []resultT
		lz4Results   []resultT
	)

	if pzstdBaker != nil {
		if pzstdResults, err = pzstdBaker(); err != nil {
			return err
		}
	}

	if zstdBaker != nil {
		if zstdResults, err = zstdBaker(); err != nil {
			return err
		}
	}

	if lz4Baker != nil {
		if lz4Results, err = lz4Baker(); err != nil {
			return err
		}
	}

	for pw.IsRenderInProgress() {
		time.Sleep(time.Millisecond * 100)
	}

	return outputResults(rdwr.srcSz, pzstdResults, zstdResults, lz4Results)
}

func newProgressWriter(nTrackers int) progress.Writer {
	pw := progress.NewWriter()
	pw.SetAutoStop(true)
	pw.SetMessageLength(24)
	pw.SetNumTrackersExpected(nTrackers)
	pw.SetSortBy(progress.SortByPercentDsc)
	pw.SetStyle(progress.StyleDefault)
	pw.SetTrackerLength(25)
	pw.SetTrackerPosition(progress.PositionRight)
	pw.SetUpdateFrequency(time.Millisecond * 100)
	pw.Style().Colors = progress.StyleColorsExample
	pw.Style().Options.PercentFormat = "%4.1f%%"
	pw.Style().Visibility.ETA = true
	pw.Style().Visibility.Percentage = true
	pw.Style().Visibility.Speed = true
	pw.Style().Visibility.Time = true
	return pw
}

func outputOptions() error {
	t := table.NewWriter()
	t.SetTitle("Bakeoff Configuration")
	t.SetStyle(table.StyleColoredBright)
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Option", "Value"})

	fn := strStdin
	if CLI.Bakeoff.File != "" {
		fn = CLI.Bakeoff.File
	}

	dict := strUnset
	if CLI.Dict != "" {
		dict = CLI.Dict
	}

	t.AppendRows([]table.Row{
		{"File name", fn},
		{"Dictionary", dict},
		{"Workers", CLI.Cpus},
		{"Content Checksum", CLI.Bakeoff.Checksum},
		{"RAM", CLI.Bakeoff.RAM},
	})

	t.Render()
	return nil
}

func outputResults(srcSz int64, pzstdResults, zstdResults, lz4Results []resultT) error {
	fmt.Println()

	t := table.NewWriter()
	t.SetTitle("Bakeoff Results")
	t.SetStyle(table.StyleColoredBright)
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Algo", "Level", "SrcSize", "Compressed", "Ratio", "Compress", "Decompress"})
	for i, r := range pzstdResults {
		percent := fmt.Sprintf("%.1f%%", float64(r.cnt)/float64(srcSz)*100.0)
		t.AppendRow([]interface{}{"pzstd", bakeLevels[i], srcSz, r.cnt, percent, r.dur.Round(time.Microsecond), r.ddur.Round(time.Microsecond)})
	}

	t.AppendSeparator()

	for i, r := range zstdResults {
		percent := fmt.Sprintf("%.1f%%", float64(r.cnt)/float64(srcSz)*100.0)
		t.AppendRow([]interface{}{"zstd", i + 1, srcSz, r.cnt, percent, r.dur.Round(time.Microsecond), r.ddur.Round(time.Microsecond)})
	}

	t.AppendSeparator()

	for i, r := range lz4Results {
		percent := fmt.Sprintf("%.1f%%", float64(r.cnt)/float64(srcSz)*100.0)
		t.AppendRow([]interface{}{"lz4", i, srcSz, r.cnt, percent, r.dur.Round(time.Microsecond), r.ddur.Round(time.Microsecond)})
	}

	t.Render()
	return nil
}

type resultT struct {
	cnt  int64
	dur  time.Duration
	ddur time.Duration
}

type bakeFuncT func() ([]resultT, error)

// bakeSink hands out a scratch writer plus a reader over the same
// bytes; a RAM buffer or a temp file per --ram.
func bakeSink(pattern string) (wr io.Writer, rd io.Reader, done func(), err error) {

	if CLI.Bakeoff.RAM {
		buf := &bytes.Buffer{}
		return buf, buf, func() {}, nil
	}

	fh, err := os.CreateTemp("", pattern)
	if err != nil {
		return nil, nil, nil, err
	}

	done = func() {
		fh.Close()
		os.Remove(fh.Name())
	}

	return fh, &rewindRdr{fh: fh}, done, nil
}

// rewindRdr seeks the temp file back to the start on first read.
type rewindRdr struct {
	fh     *os.File
	rewind bool
}

func (r *rewindRdr) Read(data []byte) (int, error) {
	if !r.rewind {
		if _, err := r.fh.Seek(0, io.SeekStart); err != nil {
			return 0, err
		}
		r.rewind = true
	}
	return r.fh.Read(data)
}

func _prepPzstd(rd io.ReadSeeker, srcSz int64, pw progress.Writer) (bakeFuncT, error) {

	dict, err := loadDict()
	if err != nil {
		return nil, err
	}

	tr := &progress.Tracker{
		Message: "Processing pzstd",
		Total:   srcSz * int64(len(bakeLevels)),
		Units:   progress.UnitsBytes,
	}

	pw.AppendTracker(tr)

	bakeFunc := func() ([]resultT, error) {
		defer tr.MarkAsDone()

		if dict != nil {
			defer dict.Release()
		}

		var results []resultT

		for i, lvl := range bakeLevels {
			start := time.Now()

			if _, err := rd.Seek(0, io.SeekStart); err != nil {
				return nil, err
			}

			opts := []pzstd.OptT{
				pzstd.WithWorkers(CLI.Cpus),
				pzstd.WithLevel(pzstd.LevelT(lvl)),
				pzstd.WithChecksum(CLI.Bakeoff.Checksum),
			}

			var dopts []pzstd.OptT
			if dict != nil {
				opts = append(opts, pzstd.WithDict(dict))
				dopts = append(dopts, pzstd.WithDict(dict))
			}

			base := srcSz * int64(i)
			cb := func(n int64) {
				tr.SetValue(base + n)
			}

			split, cnt, err := pzstdBakeOne(rd, cb, opts, dopts)
			if err != nil {
				return nil, err
			}

			var (
				ddur = time.Since(split)
				cdur = split.Sub(start)
			)

			results = append(results, resultT{
				dur:  cdur,
				cnt:  cnt,
				ddur: ddur,
			})
		}

		return results, nil
	}

	return bakeFunc, nil
}

func pzstdBakeOne(src io.Reader, cb func(int64), opts, dopts []pzstd.OptT) (split time.Time, cnt int64, err error) {

	wr, rd, done, err := bakeSink("pzstd_bake")
	if err != nil {
		return
	}
	defer done()

	wcnt := &wrCnt{Writer: wr}

	if _, err = pump(src, wcnt, cb, opts...); err != nil {
		return
	}

	split = time.Now()

	// Now decompress
	_, err = drain(rd, io.Discard, nil, dopts...)
	cnt = int64(wcnt.cnt)
	return
}

func _prepZstd(rd io.ReadSeeker, srcSz int64, pw progress.Writer) (bakeFuncT, error) {

	var dictData []byte
	if CLI.Dict != "" {
		var err error
		if dictData, err = os.ReadFile(CLI.Dict); err != nil {
			return nil, fmt.Errorf("fail open dictionary file '%s': %w", CLI.Dict, err)
		}
	}

	levels := []kzstd.EncoderLevel{
		kzstd.SpeedFastest,
		kzstd.SpeedDefault,
		kzstd.SpeedBetterCompression,
		kzstd.SpeedBestCompression,
	}

	tr := &progress.Tracker{
		Message: "Processing zstd",
		Total:   srcSz * int64(len(levels)),
		Units:   progress.UnitsBytes,
	}

	pw.AppendTracker(tr)

	bakeFunc := func() ([]resultT, error) {
		defer tr.MarkAsDone()

		var results []resultT

		for i, lvl := range levels {
			start := time.Now()

			if _, err := rd.Seek(0, io.SeekStart); err != nil {
				return nil, err
			}

			split, cnt, err := zstdBakeOne(rd, lvl, dictData)
			if err != nil {
				return nil, err
			}

			tr.SetValue(srcSz * int64(i+1))

			var (
				ddur = time.Since(split)
				cdur = split.Sub(start)
			)

			results = append(results, resultT{
				dur:  cdur,
				cnt:  cnt,
				ddur: ddur,
			})
		}

		return results, nil
	}

	return bakeFunc, nil
}

func zstdBakeOne(src io.Reader, lvl kzstd.EncoderLevel, dictData []byte) (split time.Time, cnt int64, err error) {

	wr, rd, done, serr := bakeSink("zstd_bake")
	if serr != nil {
		err = serr
		return
	}
	defer done()

	eopts := []kzstd.EOption{
		kzstd.WithEncoderLevel(lvl),
		kzstd.WithEncoderCRC(CLI.Bakeoff.Checksum),
	}
	if CLI.Cpus > 0 {
		eopts = append(eopts, kzstd.WithEncoderConcurrency(CLI.Cpus))
	}
	if dictData != nil {
		eopts = append(eopts, kzstd.WithEncoderDict(dictData))
	}

	wcnt := &wrCnt{Writer: wr}

	enc, err := kzstd.NewWriter(wcnt, eopts...)
	if err != nil {
		return
	}

	if _, err = io.Copy(enc, src); err != nil {
		return
	}

	if err = enc.Close(); err != nil {
		return
	}

	split = time.Now()

	var dopts []kzstd.DOption
	if dictData != nil {
		dopts = append(dopts, kzstd.WithDecoderDicts(dictData))
	}

	dec, err := kzstd.NewReader(rd, dopts...)
	if err != nil {
		return
	}
	defer dec.Close()

	_, err = io.Copy(io.Discard, dec)
	cnt = int64(wcnt.cnt)
	return
}

func _prepLz4(rd io.ReadSeeker, srcSz int64, pw progress.Writer) (bakeFuncT, error) {

	if CLI.Dict != "" {
		return nil, errors.New("dictionary compress not supported")
	}

	var opts []lz4.Option

	if CLI.Cpus != 0 {
		opts = append(opts, lz4.ConcurrencyOption(CLI.Cpus))
	}

	opts = append(opts, lz4.ChecksumOption(CLI.Bakeoff.Checksum))

	tr := &progress.Tracker{
		Message: "Processing lz4",
		Total:   srcSz * 10,
		Units:   progress.UnitsBytes,
	}

	pw.AppendTracker(tr)

	bakeFunc := func() ([]resultT, error) {
		defer tr.MarkAsDone()

		var results []resultT

		for i := 0; i < 10; i++ {
			start := time.Now()

			if _, err := rd.Seek(0, io.SeekStart); err != nil {
				return nil, err
			}

			// Last one wins; so append is ok.
			lvl, err := lz4Level(i)
			if err != nil {
				return nil, err
			}

			opts = append(opts, lz4.CompressionLevelOption(lvl))

			split, cnt, err := lz4BakeOne(rd, opts...)
			if err != nil {
				return nil, err
			}

			tr.SetValue(srcSz * int64(i+1))

			var (
				ddur = time.Since(split)
				cdur = split.Sub(start)
			)

			results = append(results, resultT{
				dur:  cdur,
				cnt:  cnt,
				ddur: ddur,
			})
		}

		return results, nil
	}

	return bakeFunc, nil
}

func lz4BakeOne(src io.Reader, opts ...lz4.Option) (split time.Time, cnt int64, err error) {

	wr, rd, done, serr := bakeSink("lz4_bake")
	if serr != nil {
		err = serr
		return
	}
	defer done()

	var (
		wcnt   = &wrCnt{Writer: wr}
		framer = lz4.NewWriter(wcnt)
	)
	framer.Apply(opts...)

	_, err = io.Copy(framer, src)
	if err != nil {
		return
	}

	if err = framer.Close(); err != nil {
		return
	}

	split = time.Now()

	frd := lz4.NewReader(rd)

	if CLI.Cpus != 0 {
		frd.Apply(lz4.ConcurrencyOption(CLI.Cpus))
	}

	_, err = io.Copy(io.Discard, frd)
	cnt = int64(wcnt.cnt)
	return
}

func lz4Level(l int) (lz4.CompressionLevel, error) {

	var lz4Level lz4.CompressionLevel
	switch l {
	case 0:
		lz4Level = lz4.Fast
	case 1:
		lz4Level = lz4.Level1
	case 2:
		lz4Level = lz4.Level2
	case 3:
		lz4Level = lz4.Level3
	case 4:
		lz4Level = lz4.Level4
	case 5:
		lz4Level = lz4.Level5
	case 6:
		lz4Level = lz4.Level6
	case 7:
		lz4Level = lz4.Level7
	case 8:
		lz4Level = lz4.Level8
	case 9:
		lz4Level = lz4.Level9
	default:
		return 0, errors.New("fail map lz4 compression level")
	}
	return lz4Level, nil
}
