package ops

import (
	"errors"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/prequel-dev/pzstd"
)

func RunTrain() error {

	if CLI.Train.Size <= 0 {
		return errors.New("dictionary size must be positive")
	}

	if fileExists(CLI.Train.Output) {
		return fmt.Errorf("output file '%s' already exists", CLI.Train.Output)
	}

	var (
		samples [][]byte
		total   int
	)

	for _, fn := range CLI.Train.Files {
		data, err := os.ReadFile(fn)
		if err != nil {
			return fmt.Errorf("fail read sample '%s': %w", fn, err)
		}
		if len(data) == 0 {
			log.Warnw("skipping empty sample", "file", fn)
			continue
		}
		samples = append(samples, data)
		total += len(data)
	}

	if len(samples) == 0 {
		return errors.New("no non-empty samples")
	}

	dictData, err := pzstd.TrainDict(samples, CLI.Train.Size)
	if err != nil {
		return fmt.Errorf("fail train: %w", err)
	}

	if err := os.WriteFile(CLI.Train.Output, dictData, dstPerms); err != nil {
		return fmt.Errorf("fail write dictionary '%s': %w", CLI.Train.Output, err)
	}

	d := pzstd.NewDict(dictData)
	defer d.Release()

	t := table.NewWriter()
	t.SetTitle("Train results")
	t.SetStyle(table.StyleColoredBright)
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Key", "Value"})
	t.AppendRows([]table.Row{
		{"Output", CLI.Train.Output},
		{"Dict Identifier", d.ID()},
		{"Dict Size", len(dictData)},
		{"Samples", len(samples)},
		{"Sample Bytes", total},
	})
	t.Render()

	return nil
}
