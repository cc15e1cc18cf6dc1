package ops

var CLI struct {
	Compress struct {
		Files    []string `optional:"" arg:"" type:"existingfile"`
		Output   string   `help:"Output filename; use '-' for stdout" short:"o"`
		Level    int      `help:"Compression level (1-22) [3 Default]" default:"3" short:"l"`
		Force    bool     `help:"Force overwrite of existing file" short:"f"`
		Quiet    bool     `help:"Do not write progress to stdout" short:"q"`
		Checksum bool     `help:"Enable content checksum" short:"C"`
		Wlog     int      `help:"Window log override [0 codec default]"`
	} `cmd:"" aliases:"c,comp" help:"Compress data into zstd frames"`
	Decompress struct {
		File   string `optional:"" arg:"" type:"existingfile"`
		Output string `help:"Output filename; use '-' for stdout" short:"o"`
		Force  bool   `help:"Force overwrite of existing file" short:"f"`
		Quiet  bool   `help:"Do not write progress to stdout" short:"q"`
		Sparse bool   `help:"Enable sparse writes" short:"s"`
	} `cmd:"" aliases:"d,decomp" help:"Decompress zstd data"`
	Verify struct {
		File string `optional:"" arg:"" type:"existingfile"`
		Skip bool   `help:"Skip decompress; report header metadata only" short:"s"`
	} `cmd:"" aliases:"v,ver" help:"Verify zstd data"`
	Train struct {
		Files  []string `arg:"" type:"existingfile" help:"Sample files"`
		Output string   `help:"Dictionary output filename" default:"dict.zstd" short:"o"`
		Size   int      `help:"Maximum dictionary size in bytes" default:"112640"`
	} `cmd:"" aliases:"t" help:"Train a dictionary from sample files"`
	Bakeoff struct {
		File     string `optional:"" arg:"" type:"existingfile"`
		Checksum bool   `help:"Enable content checksum" short:"C"`
		RAM      bool   `help:"Process data in RAM"`
	} `cmd:"" aliases:"b,bake" help:"Compare performance to klauspost/compress and pierrec/lz4"`

	Cpus  int    `help:"Codec worker threads [0 synchronous] [-1 auto]" default:"0" short:"c"`
	Dict  string `help:"Optional dictionary file" type:"existingfile"`
	Debug bool   `help:"Enable debug logging to stderr"`
}
