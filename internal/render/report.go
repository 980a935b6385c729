// Package render prints analysis reports and document summaries for
// terminals.
package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/hanpama/kdpcheck/internal/check"
	"github.com/hanpama/kdpcheck/internal/stats"
)

// MinWidth is the narrowest report the renderer will lay out.
const MinWidth = 40

type section struct {
	title  string
	symbol string
	color  *color.Color
}

var sections = map[check.Severity]section{
	check.SeverityCritical: {"CRITICAL ISSUES", "✗", color.New(color.FgRed, color.Bold)},
	check.SeverityWarning:  {"WARNINGS", "!", color.New(color.FgYellow)},
	check.SeverityInfo:     {"ADDITIONAL INFO", "i", color.New(color.FgCyan)},
	check.SeveritySuccess:  {"GOOD PRACTICES", "✓", color.New(color.FgGreen)},
}

var severityOrder = []check.Severity{
	check.SeverityCritical,
	check.SeverityWarning,
	check.SeverityInfo,
	check.SeveritySuccess,
}

// Render writes the report for name, grouped by severity with the most
// serious findings first. Sections without findings are omitted.
func Render(w io.Writer, name string, rep *check.Report, width int) error {
	if width < MinWidth {
		width = MinWidth
	}
	if err := renderHeader(w, name, width); err != nil {
		return err
	}
	for _, sev := range severityOrder {
		if err := renderSection(w, rep.BySeverity(sev), sev, width); err != nil {
			return err
		}
	}
	return renderVerdict(w, rep, width)
}

func renderHeader(w io.Writer, name string, width int) error {
	rule := strings.Repeat("=", width)
	_, err := fmt.Fprintf(w, "%s\nKDP Formatting Report: %s\n%s\n", rule, name, rule)
	return err
}

func renderSection(w io.Writer, findings []check.Finding, sev check.Severity, width int) error {
	if len(findings) == 0 {
		return nil
	}
	sec := sections[sev]
	if _, err := fmt.Fprintf(w, "\n%s\n", sec.color.Sprint(sec.title)); err != nil {
		return err
	}
	for _, f := range findings {
		if _, err := fmt.Fprintf(w, "  %s %s\n", sec.color.Sprint(sec.symbol), f.Message); err != nil {
			return err
		}
		if f.Remediation == "" {
			continue
		}
		for _, line := range wrap("Fix: "+f.Remediation, width-6) {
			if _, err := fmt.Fprintf(w, "      %s\n", line); err != nil {
				return err
			}
		}
	}
	return nil
}

func renderVerdict(w io.Writer, rep *check.Report, width int) error {
	crit := rep.CountSeverity(check.SeverityCritical)
	warn := rep.CountSeverity(check.SeverityWarning)

	var c *color.Color
	var verdict string
	switch {
	case crit > 0:
		c = sections[check.SeverityCritical].color
		verdict = fmt.Sprintf("Not ready for KDP: %d critical %s to fix", crit, plural(crit, "issue"))
	case warn > 0:
		c = sections[check.SeverityWarning].color
		verdict = fmt.Sprintf("Nearly ready for KDP: %d %s to review", warn, plural(warn, "warning"))
	default:
		c = sections[check.SeveritySuccess].color
		verdict = "Ready for KDP conversion"
	}
	_, err := fmt.Fprintf(w, "\n%s\n%s\n", strings.Repeat("-", width), c.Sprint(verdict))
	return err
}

// Summary renders the document statistics table.
func Summary(w io.Writer, st stats.Stats) error {
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	table := tablewriter.NewTable(w)
	table.Header("Metric", "Count")
	table.Append("Paragraphs", strconv.Itoa(st.Paragraphs))
	table.Append("Words", strconv.Itoa(st.Words))
	table.Append("Headings", strconv.Itoa(st.Headings))
	table.Append("Images", strconv.Itoa(st.Images))
	return table.Render()
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
