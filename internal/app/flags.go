package app

import "flag"

// BindFlags registers the flags shared by the commands on fs and returns
// the options they fill once fs is parsed
func BindFlags(fs *flag.FlagSet) *Options {
	opts := &Options{}
	fs.StringVar(&opts.ConfigPath, "config", "", "configuration file (defaults to volscope.yaml or configs/volscope.yaml)")
	fs.StringVar(&opts.DataRoot, "data", "", "dataset root directory (overrides data.root)")
	fs.IntVar(&opts.Rows, "rows", 0, "maximum rows loaded per columnar dataset (overrides sample.*_rows)")
	fs.StringVar(&opts.ChartsDir, "out", "", "charts output directory (overrides plot.output_dir)")
	fs.StringVar(&opts.Format, "format", "", "chart image format: png, svg, pdf or jpg (overrides plot.format)")
	fs.BoolVar(&opts.ShowVersion, "version", false, "print version information and exit")
	return opts
}
