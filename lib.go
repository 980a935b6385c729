// Package kdpcheck inspects Word manuscripts (.docx) for formatting
// problems that commonly break Kindle Direct Publishing eBook conversion,
// and can rewrite the mechanically fixable ones.
//
// # Example Usage
//
//	result, err := kdpcheck.Analyze("manuscript.docx", kdpcheck.Options{})
//	if err != nil {
//		log.Fatal(err)
//	}
//	for _, f := range result.Report.Ordered() {
//		fmt.Println(f.Severity, f.Message)
//	}
//
//	// Rewrite the fixable problems into a new package.
//	out := kdpcheck.DefaultOutputPath("manuscript.docx")
//	result, err = kdpcheck.Fix("manuscript.docx", out, kdpcheck.Options{})
//
// # Checks
//
// The analysis flags tab-based indentation and missing heading styles as
// critical, missing first-line indents, inconsistent line spacing, absent
// page breaks before chapters and a missing table of contents as warnings,
// and reports embedded images for a manual DPI review.
//
// Fix rewrites the first three of these: leading tabs are replaced with a
// real first-line indent, unindented body paragraphs get a 0.5" indent,
// and deviating line spacing is normalized to 1.15. Every other byte of
// the package, including parts the fixer never touches, is preserved
// exactly.
package kdpcheck

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/hanpama/kdpcheck/internal/cfb"
	"github.com/hanpama/kdpcheck/internal/check"
	"github.com/hanpama/kdpcheck/internal/opc"
	"github.com/hanpama/kdpcheck/internal/stats"
	"github.com/hanpama/kdpcheck/internal/wml"
)

// Options adjusts how a document is processed.
type Options struct {
	// Logger receives debug-level progress. Nil discards all output.
	Logger *slog.Logger

	// MaxPartBytes caps the decompressed size of any single package part.
	// Zero applies a 256MB default.
	MaxPartBytes int64
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.DiscardHandler)
}

// Result carries everything one run produced.
type Result struct {
	// Report holds the findings of the analysis pass, plus the fix
	// outcomes when fixes were applied.
	Report *Report

	// Stats summarizes the manuscript. Zero-valued when counting failed;
	// a counting failure never fails the run.
	Stats Stats

	// Fixes tallies what Fix changed. Zero for analyze-only runs.
	Fixes FixResult

	// OutputPath is the package written by Fix, empty otherwise.
	OutputPath string
}

// Analyze opens the document package at path and reports its formatting
// problems. The input file is never modified.
//
// Example:
//
//	result, err := kdpcheck.Analyze("manuscript.docx", kdpcheck.Options{})
func Analyze(path string, opts Options) (*Result, error) {
	log := opts.logger()

	pkg, err := openPackage(path, opts)
	if err != nil {
		return nil, err
	}
	defer pkg.Close()

	doc, imageCount, err := readDocument(pkg, log)
	if err != nil {
		return nil, err
	}

	analysis := check.Analyze(doc, imageCount)
	log.Debug("analyzed document",
		"paragraphs", analysis.ParagraphCount,
		"headings", analysis.HeadingCount,
		"images", imageCount)

	return &Result{
		Report: analysis.Report(),
		Stats:  collectStats(path, imageCount, log),
	}, nil
}

// Fix analyzes the document at path, applies the fixable corrections and
// writes a complete package to outPath. An empty outPath selects
// DefaultOutputPath(path). The input file is never modified, and a failure
// leaves no file at outPath.
//
// Example:
//
//	result, err := kdpcheck.Fix("manuscript.docx", "", kdpcheck.Options{})
//	fmt.Println("wrote", result.OutputPath)
func Fix(path, outPath string, opts Options) (*Result, error) {
	log := opts.logger()
	if outPath == "" {
		outPath = DefaultOutputPath(path)
	}
	if samePath(path, outPath) {
		return nil, fmt.Errorf("output path %s would overwrite the input", outPath)
	}

	pkg, err := openPackage(path, opts)
	if err != nil {
		return nil, err
	}
	defer pkg.Close()

	doc, imageCount, err := readDocument(pkg, log)
	if err != nil {
		return nil, err
	}

	analysis := check.Analyze(doc, imageCount)
	report := analysis.Report()

	fixes := check.Apply(analysis)
	for _, f := range fixes.Findings() {
		report.Add(f)
	}
	log.Debug("applied fixes",
		"tabs", fixes.TabMarkers,
		"indented", fixes.Indented,
		"respaced", fixes.Respaced,
		"skipped", fixes.Skipped)

	content, err := doc.Encode()
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", opc.DocumentPart, err)
	}
	if err := pkg.Rewrite(outPath, opc.DocumentPart, content); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", outPath, err)
	}
	log.Debug("wrote fixed package", "path", outPath)

	return &Result{
		Report:     report,
		Stats:      collectStats(path, imageCount, log),
		Fixes:      fixes,
		OutputPath: outPath,
	}, nil
}

// DefaultOutputPath returns the sibling path Fix writes to when no output
// is chosen: "draft.docx" becomes "draft_kdp_formatted.docx".
func DefaultOutputPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "_kdp_formatted" + ext
}

// samePath reports whether the two paths name the same file, by cleaned
// path or, when both exist, by the underlying file identity.
func samePath(a, b string) bool {
	if filepath.Clean(a) == filepath.Clean(b) {
		return true
	}
	ai, err := os.Stat(a)
	if err != nil {
		return false
	}
	bi, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(ai, bi)
}

func openPackage(path string, opts Options) (*opc.Package, error) {
	pkg, err := opc.Open(path, opts.MaxPartBytes)
	if err == nil {
		return pkg, nil
	}
	if errors.Is(err, opc.ErrNotAPackage) {
		if desc, ok := cfb.Describe(path); ok {
			return nil, fmt.Errorf("%w: the file is %s, save it as .docx first", opc.ErrNotAPackage, desc)
		}
	}
	return nil, err
}

func readDocument(pkg *opc.Package, log *slog.Logger) (*wml.Document, int, error) {
	data, err := pkg.Part(opc.DocumentPart)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read %s: %w", opc.DocumentPart, err)
	}
	doc, err := wml.Parse(data)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to parse %s: %w", opc.DocumentPart, err)
	}

	imageCount := 0
	if rels, err := pkg.Part(opc.DocumentRelsPart); err == nil {
		imageCount = opc.CountImages(rels)
	} else {
		log.Debug("no document relationships part", "error", err)
	}
	return doc, imageCount, nil
}

func collectStats(path string, imageCount int, log *slog.Logger) Stats {
	st, err := stats.Collect(path)
	if err != nil {
		log.Debug("failed to collect document statistics", "error", err)
		return Stats{Images: imageCount}
	}
	st.Images = imageCount
	return st
}
