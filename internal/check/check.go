// Package check classifies manuscript paragraphs against eBook conversion
// requirements and applies the fixable subset of corrections.
//
// Every pass produces an Analysis value holding the per-paragraph
// classifications and document-level observations; the report and the
// fixer both consume that value. Nothing in this package keeps state
// between invocations.
package check

// Formatting targets, in the units the markup uses.
const (
	// TargetFirstLine is the first-line indent applied by fixes: 0.5 inch
	// in twentieths of a point.
	TargetFirstLine = 720

	// MinFirstLine is the smallest first-line indent accepted as a real
	// indent: 0.3 inch in twentieths of a point.
	MinFirstLine = 432

	// TargetLineSpacing is 1.15-line spacing in 240ths of a line. Fixes
	// always normalize to this fixed value rather than the document's own
	// dominant value, so repeated runs converge.
	TargetLineSpacing = 276

	// LineRuleAuto marks spacing values as multiples of single spacing.
	LineRuleAuto = "auto"
)

// Severity classifies findings by how hard they block publishing.
type Severity int

const (
	SeverityCritical Severity = iota
	SeverityWarning
	SeverityInfo
	SeveritySuccess
)

func (s Severity) String() string {
	switch s {
	case SeverityCritical:
		return "critical"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	case SeveritySuccess:
		return "success"
	}
	return "unknown"
}

// Category names one of the checks performed on a document.
type Category string

const (
	CategoryTabs       Category = "tab-indentation"
	CategoryIndent     Category = "first-line-indent"
	CategoryHeadings   Category = "heading-styles"
	CategorySpacing    Category = "line-spacing"
	CategoryPageBreaks Category = "page-breaks"
	CategoryTOC        Category = "table-of-contents"
	CategoryImages     Category = "images"

	// CategorySkipped reports paragraphs the fixer refused to touch.
	CategorySkipped Category = "skipped-paragraphs"
)

// Categories lists the document checks in the order they run and report.
var Categories = []Category{
	CategoryTabs,
	CategoryIndent,
	CategoryHeadings,
	CategorySpacing,
	CategoryPageBreaks,
	CategoryTOC,
	CategoryImages,
}

// Finding is one report entry. Findings are immutable once added.
type Finding struct {
	Severity    Severity
	Category    Category
	Message     string
	Count       int
	Remediation string
}

// Report accumulates findings in detection order.
type Report struct {
	Findings []Finding
}

// Add appends a finding.
func (r *Report) Add(f Finding) {
	r.Findings = append(r.Findings, f)
}

// Ordered returns the findings grouped by severity: critical first, then
// warnings, info and success, each group in detection order.
func (r *Report) Ordered() []Finding {
	out := make([]Finding, 0, len(r.Findings))
	for _, sev := range []Severity{SeverityCritical, SeverityWarning, SeverityInfo, SeveritySuccess} {
		for _, f := range r.Findings {
			if f.Severity == sev {
				out = append(out, f)
			}
		}
	}
	return out
}

// CountSeverity returns how many findings carry the given severity.
func (r *Report) CountSeverity(sev Severity) int {
	n := 0
	for _, f := range r.Findings {
		if f.Severity == sev {
			n++
		}
	}
	return n
}

// BySeverity returns the findings of one severity in detection order.
func (r *Report) BySeverity(sev Severity) []Finding {
	var out []Finding
	for _, f := range r.Findings {
		if f.Severity == sev {
			out = append(out, f)
		}
	}
	return out
}

// ByCategory returns the findings of one category in detection order.
func (r *Report) ByCategory(cat Category) []Finding {
	var out []Finding
	for _, f := range r.Findings {
		if f.Category == cat {
			out = append(out, f)
		}
	}
	return out
}
