// Command visualize loads the dataset samples, renders the target, order
// book and trade figures and prints the synthesis report.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"volscope/internal/app"
	"volscope/pkg/contracts"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("visualize", flag.ContinueOnError)
	fs.SetOutput(stderr)
	opts := app.BindFlags(fs)
	fs.StringVar(&opts.ExportDir, "export", "", "write derived aggregates as CSV files into this directory")
	fs.StringVar(&opts.WorkbookPath, "workbook", "", "write the synthesis report to this .xlsx workbook")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if opts.ShowVersion {
		fmt.Fprintln(stdout, contracts.GetFullVersionString())
		return 0
	}
	opts.Out = stdout

	a, err := app.NewApplication(ctx, *opts)
	if err != nil {
		fmt.Fprintf(stderr, "visualize: %v\n", err)
		return 1
	}

	code := 0
	if _, err := a.Visualize(ctx); err != nil {
		fmt.Fprintf(stderr, "visualize: %v\n", err)
		code = 1
	}
	if err := a.Stop(ctx); err != nil {
		fmt.Fprintf(stderr, "visualize: %v\n", err)
	}
	return code
}
