package main

import (
	"bytes"
	"fmt"

	"github.com/prequel-dev/pzstd"
)

// Demonstrate compressing a zstd frame incrementally.
func compress(out *bytes.Buffer) error {

	cmp, err := pzstd.NewCompressor(pzstd.WithLevel(3))
	if err != nil {
		return err
	}

	// Always close to release resources; defer is added here in case of error.
	// A double close is noop and will cause no issues.
	defer cmp.Close()

	// Feed data in as many calls as convenient; the codec buffers
	// until it has enough to emit a block.
	data, err := cmp.Compress([]byte("How now"), pzstd.ModeContinue)
	if err != nil {
		return err
	}
	out.Write(data)

	// Force out a complete block without ending the frame
	if data, err = cmp.Flush(pzstd.ModeFlushBlock); err != nil {
		return err
	}
	out.Write(data)

	if data, err = cmp.Compress([]byte(" brown cow"), pzstd.ModeContinue); err != nil {
		return err
	}
	out.Write(data)

	// Signal that there is no more data; ModeFlushFrame emits
	// everything pending and the frame epilogue.
	if data, err = cmp.Flush(pzstd.ModeFlushFrame); err != nil {
		return err
	}
	out.Write(data)

	return cmp.Close()
}

// Demonstrate decompressing a zstd frame incrementally.
func decompress(src []byte, dst *bytes.Buffer) error {

	dcmp, err := pzstd.NewDecompressor()
	if err != nil {
		return err
	}

	// Always close to release resources; defer is added here in case of error.
	// A double close is noop and will cause no issues.
	defer dcmp.Close()

	for !dcmp.Eof() {
		data, err := dcmp.Decompress(src, -1)
		if err != nil {
			return err
		}
		dst.Write(data)
		src = nil
	}

	return dcmp.Close()
}

func main() {

	var (
		compressedData bytes.Buffer
		decompressData bytes.Buffer
	)

	// Run example compress routine
	if err := compress(&compressedData); err != nil {
		panic(err)
	}

	// Run example decompress routine
	if err := decompress(compressedData.Bytes(), &decompressData); err != nil {
		panic(err)
	}

	// Output the result
	fmt.Println(decompressData.String())
}
