package check

import (
	"fmt"
	"strings"

	"github.com/hanpama/kdpcheck/internal/wml"
)

// FixResult tallies the changes one Apply pass made.
type FixResult struct {
	// TabParagraphs is the number of paragraphs stripped of leading tabs;
	// TabMarkers is the number of tab runs and characters removed.
	TabParagraphs int
	TabMarkers    int

	// Indented counts paragraphs given a first-line indent, Respaced
	// counts paragraphs whose line spacing was normalized.
	Indented int
	Respaced int

	// Skipped counts flagged paragraphs left untouched because their
	// property structure was not recognizable.
	Skipped int
}

// Apply mutates the flagged paragraphs of the analysis in place: leading
// tabs are removed and replaced with a real first-line indent, unindented
// body paragraphs get the target indent, and inconsistent line spacing is
// normalized to the fixed target. A paragraph whose properties cannot be
// edited is skipped and counted, never half-modified.
func Apply(a *Analysis) FixResult {
	var res FixResult

	for _, p := range a.TabParagraphs {
		if err := fixTabParagraph(p, &res); err != nil {
			res.Skipped++
		}
	}
	for _, p := range a.MissingIndent {
		if err := wml.SetFirstLineIndent(p, TargetFirstLine); err != nil {
			res.Skipped++
			continue
		}
		res.Indented++
	}
	for _, p := range a.InconsistentSpacing {
		if err := wml.SetLineSpacing(p, TargetLineSpacing, LineRuleAuto); err != nil {
			res.Skipped++
			continue
		}
		res.Respaced++
	}

	return res
}

// Findings describes the applied fixes as report entries, plus a warning
// when any paragraph had to be skipped.
func (f FixResult) Findings() []Finding {
	out := []Finding{
		{
			Severity: SeveritySuccess,
			Category: CategoryTabs,
			Message:  fmt.Sprintf("Removed %d tab characters", f.TabMarkers),
			Count:    f.TabParagraphs,
		},
		{
			Severity: SeveritySuccess,
			Category: CategoryIndent,
			Message:  fmt.Sprintf("Applied first-line indentation to %d paragraphs", f.Indented),
			Count:    f.Indented,
		},
		{
			Severity: SeveritySuccess,
			Category: CategorySpacing,
			Message:  fmt.Sprintf("Applied consistent line spacing to %d paragraphs", f.Respaced),
			Count:    f.Respaced,
		},
	}
	if f.Skipped > 0 {
		out = append(out, Finding{
			Severity: SeverityWarning,
			Category: CategorySkipped,
			Message:  fmt.Sprintf("Skipped %d paragraphs due to unexpected structure", f.Skipped),
			Count:    f.Skipped,
		})
	}
	return out
}

// fixTabParagraph replaces leading-tab indentation with a real first-line
// indent. The indent property is written before any content is touched, so
// a property failure leaves the paragraph unmodified.
func fixTabParagraph(p *wml.Node, res *FixResult) error {
	if twips, ok := wml.FirstLineIndent(p); !ok || twips < MinFirstLine {
		if err := wml.SetFirstLineIndent(p, TargetFirstLine); err != nil {
			return err
		}
	}
	res.TabMarkers += stripLeadingTabs(p)
	res.TabParagraphs++
	return nil
}

// stripLeadingTabs removes tab run elements and literal tab characters
// from the start of the paragraph's content and returns how many were
// removed. Interior tabs are left alone.
func stripLeadingTabs(p *wml.Node) int {
	removed := 0
	var walk func(n *wml.Node) bool
	walk = func(n *wml.Node) bool {
		for i := 0; i < len(n.Children); i++ {
			child := n.Children[i]
			if child.Kind != wml.KindElement {
				continue
			}
			switch {
			case child.IsElement("pPr"), child.IsElement("rPr"),
				child.IsElement("fldChar"), child.IsElement("instrText"),
				child.IsElement("delText"):
				continue
			case child.IsElement("tab"):
				n.Children = append(n.Children[:i], n.Children[i+1:]...)
				i--
				removed++
			case child.IsElement("t"):
				text := child.InnerText()
				trimmed := strings.TrimLeft(text, "\t")
				if trimmed != text {
					removed += len(text) - len(trimmed)
					child.SetText(trimmed)
				}
				if trimmed != "" {
					return false
				}
			case child.IsElement("br"), child.IsElement("drawing"),
				child.IsElement("pict"), child.IsElement("object"):
				return false
			default:
				if !walk(child) {
					return false
				}
			}
		}
		return true
	}
	walk(p)
	return removed
}
