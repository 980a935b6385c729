package check

import (
	"fmt"
	"strings"

	"github.com/hanpama/kdpcheck/internal/wml"
)

// Analysis is the result of one classification pass over a document. It
// carries the flagged paragraph nodes so a fix pass can mutate exactly the
// set the report describes.
type Analysis struct {
	ParagraphCount int

	// TabParagraphs are paragraphs whose visible content starts with a tab
	// run element or a literal tab character. TabMarkers is the total
	// number of leading tab runs and characters across them.
	TabParagraphs []*wml.Node
	TabMarkers    int

	// MissingIndent are body paragraphs without a first-line indent of at
	// least MinFirstLine. Heading, empty and tab-indented paragraphs are
	// never included.
	MissingIndent []*wml.Node

	// SpacingMode is the dominant explicit line-spacing value, valid only
	// when SpacingSeen is true. InconsistentSpacing are paragraphs whose
	// explicit spacing matches neither the mode nor TargetLineSpacing.
	SpacingMode         int
	SpacingSeen         bool
	InconsistentSpacing []*wml.Node

	HeadingCount int

	// PageBreaksBeforeHeadings counts headings that either set the
	// break-before property or directly follow a paragraph containing an
	// explicit page-break run.
	PageBreaksBeforeHeadings int

	TOCFound   bool
	ImageCount int
}

// Analyze classifies every paragraph of the document in a single pass.
// imageCount comes from the package relationships and is only echoed into
// the report.
func Analyze(doc *wml.Document, imageCount int) *Analysis {
	a := &Analysis{ImageCount: imageCount}

	paras := doc.Paragraphs()
	a.ParagraphCount = len(paras)

	type spacingObs struct {
		node  *wml.Node
		value int
	}
	var observed []spacingObs
	var values []int
	heading := make([]bool, len(paras))

	for i, p := range paras {
		style := wml.StyleID(p)
		if IsHeadingStyle(style) {
			heading[i] = true
			a.HeadingCount++
		}

		tabs := leadingTabMarkers(p)
		if tabs > 0 {
			a.TabParagraphs = append(a.TabParagraphs, p)
			a.TabMarkers += tabs
		}

		text := wml.ParagraphText(p)
		if !heading[i] && tabs == 0 && strings.TrimSpace(text) != "" {
			if twips, ok := wml.FirstLineIndent(p); !ok || twips < MinFirstLine {
				a.MissingIndent = append(a.MissingIndent, p)
			}
		}

		if line, ok := wml.LineSpacing(p); ok {
			observed = append(observed, spacingObs{node: p, value: line})
			values = append(values, line)
		}
	}

	a.SpacingMode, a.SpacingSeen = modeFirstSeen(values)
	for _, obs := range observed {
		if obs.value != a.SpacingMode && obs.value != TargetLineSpacing {
			a.InconsistentSpacing = append(a.InconsistentSpacing, obs.node)
		}
	}

	for i, p := range paras {
		if !heading[i] {
			continue
		}
		if wml.PageBreakBefore(p) || (i > 0 && wml.HasPageBreakRun(paras[i-1])) {
			a.PageBreaksBeforeHeadings++
		}
	}

	a.TOCFound = hasTOCField(doc)
	return a
}

// Report renders the analysis as findings: one entry per check that found
// problems, and a success entry for every check that found none.
func (a *Analysis) Report() *Report {
	r := &Report{}

	if n := len(a.TabParagraphs); n > 0 {
		r.Add(Finding{
			Severity:    SeverityCritical,
			Category:    CategoryTabs,
			Message:     fmt.Sprintf("Found %d tab characters used for indentation", a.TabMarkers),
			Count:       n,
			Remediation: "Remove tabs and use first-line indent formatting instead",
		})
	} else {
		r.Add(Finding{
			Severity: SeveritySuccess,
			Category: CategoryTabs,
			Message:  "No tab characters used for indentation",
		})
	}

	if n := len(a.MissingIndent); n > 0 {
		r.Add(Finding{
			Severity:    SeverityWarning,
			Category:    CategoryIndent,
			Message:     fmt.Sprintf("Found %d paragraphs without first-line indentation", n),
			Count:       n,
			Remediation: "Apply a 0.5\" first-line indent to body paragraphs",
		})
	} else {
		r.Add(Finding{
			Severity: SeveritySuccess,
			Category: CategoryIndent,
			Message:  "Paragraph indentation looks good",
		})
	}

	if a.HeadingCount == 0 {
		r.Add(Finding{
			Severity:    SeverityCritical,
			Category:    CategoryHeadings,
			Message:     "No heading styles found - chapters won't be detected",
			Remediation: "Apply the Heading 1 style to chapter titles",
		})
	} else {
		r.Add(Finding{
			Severity: SeveritySuccess,
			Category: CategoryHeadings,
			Message:  fmt.Sprintf("Found %d headings", a.HeadingCount),
			Count:    a.HeadingCount,
		})
	}

	if n := len(a.InconsistentSpacing); n > 0 {
		r.Add(Finding{
			Severity:    SeverityWarning,
			Category:    CategorySpacing,
			Message:     fmt.Sprintf("Found %d paragraphs with inconsistent line spacing", n),
			Count:       n,
			Remediation: "Set line spacing to 1.15 throughout the document",
		})
	} else {
		r.Add(Finding{
			Severity: SeveritySuccess,
			Category: CategorySpacing,
			Message:  "Line spacing is consistent",
		})
	}

	if a.PageBreaksBeforeHeadings > 0 {
		r.Add(Finding{
			Severity: SeveritySuccess,
			Category: CategoryPageBreaks,
			Message:  fmt.Sprintf("Found %d page breaks before chapter headings", a.PageBreaksBeforeHeadings),
			Count:    a.PageBreaksBeforeHeadings,
		})
	} else {
		r.Add(Finding{
			Severity:    SeverityWarning,
			Category:    CategoryPageBreaks,
			Message:     "No page breaks found before chapter headings",
			Remediation: "Insert a page break before each chapter title",
		})
	}

	if a.TOCFound {
		r.Add(Finding{
			Severity: SeveritySuccess,
			Category: CategoryTOC,
			Message:  "Table of contents found",
		})
	} else {
		r.Add(Finding{
			Severity:    SeverityWarning,
			Category:    CategoryTOC,
			Message:     "No table of contents found",
			Remediation: "Add a table of contents: References > Table of Contents",
		})
	}

	if a.ImageCount > 0 {
		r.Add(Finding{
			Severity:    SeverityInfo,
			Category:    CategoryImages,
			Message:     fmt.Sprintf("Found %d images", a.ImageCount),
			Count:       a.ImageCount,
			Remediation: "Verify each image is at least 300 DPI before publishing",
		})
	} else {
		r.Add(Finding{
			Severity: SeveritySuccess,
			Category: CategoryImages,
			Message:  "No embedded images",
		})
	}

	return r
}

// IsHeadingStyle reports whether a style id names a numbered heading level,
// such as "Heading1" or "heading 2".
func IsHeadingStyle(style string) bool {
	lower := strings.ToLower(style)
	if !strings.HasPrefix(lower, "heading") {
		return false
	}
	rest := strings.TrimSpace(strings.TrimPrefix(lower, "heading"))
	if rest == "" {
		return false
	}
	for _, r := range rest {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// modeFirstSeen returns the most frequent value. Ties resolve to the value
// observed first; the explicit reduction keeps the result independent of
// map iteration order.
func modeFirstSeen(values []int) (int, bool) {
	if len(values) == 0 {
		return 0, false
	}
	counts := make(map[int]int, len(values))
	for _, v := range values {
		counts[v]++
	}
	best, bestCount := 0, 0
	seen := make(map[int]bool, len(counts))
	for _, v := range values {
		if seen[v] {
			continue
		}
		seen[v] = true
		if counts[v] > bestCount {
			best, bestCount = v, counts[v]
		}
	}
	return best, true
}

// leadingTabMarkers counts the tab run elements and literal tab characters
// before the first visible content of the paragraph. A paragraph that opens
// with anything else counts zero.
func leadingTabMarkers(p *wml.Node) int {
	count := 0
	runContent(p, func(n *wml.Node) bool {
		switch {
		case n.IsElement("tab"):
			count++
			return true
		case n.IsElement("t"):
			for _, r := range n.InnerText() {
				if r != '\t' {
					return false
				}
				count++
			}
			return true
		}
		// Breaks, drawings and embedded objects end the leading region.
		return false
	})
	return count
}

// runContent walks the paragraph's run-level content elements in document
// order, skipping property containers and field plumbing. visit returns
// false to stop the walk.
func runContent(p *wml.Node, visit func(*wml.Node) bool) {
	var walk func(n *wml.Node) bool
	walk = func(n *wml.Node) bool {
		for _, child := range n.Children {
			if child.Kind != wml.KindElement {
				continue
			}
			switch {
			case child.IsElement("pPr"), child.IsElement("rPr"),
				child.IsElement("fldChar"), child.IsElement("instrText"),
				child.IsElement("delText"):
				continue
			case child.IsElement("tab"), child.IsElement("t"),
				child.IsElement("br"), child.IsElement("drawing"),
				child.IsElement("pict"), child.IsElement("object"):
				if !visit(child) {
					return false
				}
			default:
				if !walk(child) {
					return false
				}
			}
		}
		return true
	}
	walk(p)
}

// hasTOCField scans the document for a complex field whose instruction
// text names a TOC field.
func hasTOCField(doc *wml.Document) bool {
	inField := false
	found := false
	wml.Walk(doc.Root, func(n *wml.Node) bool {
		switch {
		case n.IsElement("fldChar"):
			switch typ, _ := n.Attribute(wml.NS, "fldCharType"); typ {
			case "begin":
				inField = true
			case "end":
				inField = false
			}
		case n.IsElement("instrText"):
			if inField && strings.Contains(n.InnerText(), "TOC") {
				found = true
				return false
			}
		}
		return true
	})
	return found
}
