// Command kdpfmt checks a Word manuscript (.docx) for formatting problems
// that break Kindle eBook conversion, and can write a corrected copy.
//
// Usage:
//
//	kdpfmt [flags] <manuscript.docx>
//
// Without flags the document is analyzed and a report is printed. With
// --fix the fixable problems are corrected and a new package is written
// next to the input; the input file is never modified.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fatih/color"

	"github.com/hanpama/kdpcheck"
	"github.com/hanpama/kdpcheck/internal/config"
	"github.com/hanpama/kdpcheck/internal/render"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("kdpfmt", flag.ContinueOnError)
	flags.SetOutput(stderr)
	fix := flags.Bool("fix", false, "apply the fixable corrections and write a new package")
	output := flags.String("o", "", "output path for --fix (default <input>_kdp_formatted<ext>)")
	verbose := flags.Bool("verbose", false, "log processing steps to stderr")
	noColor := flags.Bool("no-color", false, "disable colored output")
	flags.Usage = func() {
		fmt.Fprintf(stderr, "Usage: kdpfmt [flags] <manuscript.docx>\n\n")
		fmt.Fprintln(stderr, "Checks a Word manuscript for eBook formatting problems.")
		fmt.Fprintln(stderr, "With --fix, writes a corrected copy and leaves the input untouched.")
		fmt.Fprintln(stderr)
		fmt.Fprintln(stderr, "Flags:")
		flags.PrintDefaults()
	}
	if err := flags.Parse(args); err != nil {
		return 2
	}
	// Stdlib flag parsing stops at the first positional; keep parsing so
	// "kdpfmt doc.docx --fix" works the same as "kdpfmt --fix doc.docx".
	var inputs []string
	for rest := flags.Args(); len(rest) > 0; rest = flags.Args() {
		inputs = append(inputs, rest[0])
		if err := flags.Parse(rest[1:]); err != nil {
			return 2
		}
	}
	if len(inputs) != 1 {
		fmt.Fprintln(stderr, "error: exactly one input document is required")
		flags.Usage()
		return 2
	}
	input := inputs[0]

	cfg := config.Load()
	if *verbose {
		cfg.Verbose = true
	}
	if *noColor {
		cfg.NoColor = true
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 2
	}
	// Only ever force color off; auto-detection may have disabled it already.
	color.NoColor = color.NoColor || cfg.NoColor

	logger := slog.New(slog.DiscardHandler)
	if cfg.Verbose {
		logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	opts := kdpcheck.Options{Logger: logger, MaxPartBytes: cfg.MaxPartBytes}

	var result *kdpcheck.Result
	var err error
	if *fix {
		result, err = kdpcheck.Fix(input, *output, opts)
	} else {
		result, err = kdpcheck.Analyze(input, opts)
	}
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			fmt.Fprintf(stderr, "error: input file not found: %s\n", input)
		} else {
			fmt.Fprintf(stderr, "error: %v\n", err)
		}
		return 1
	}

	if err := render.Render(stdout, filepath.Base(input), result.Report, cfg.Width); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	if result.Stats != (kdpcheck.Stats{}) {
		if err := render.Summary(stdout, result.Stats); err != nil {
			fmt.Fprintf(stderr, "error: %v\n", err)
			return 1
		}
	}
	if result.OutputPath != "" {
		fmt.Fprintf(stdout, "\nWrote %s\n", result.OutputPath)
	}
	return 0
}
