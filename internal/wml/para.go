package wml

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
)

// ParagraphText returns the visible text of a paragraph: the concatenated
// content of its w:t descendants. Field instructions and deleted text do
// not contribute.
func ParagraphText(p *Node) string {
	var sb strings.Builder
	Walk(p, func(n *Node) bool {
		if n.IsElement("t") {
			sb.WriteString(n.InnerText())
		}
		return true
	})
	return sb.String()
}

// Properties returns the paragraph's w:pPr element, or nil when it has
// none. A paragraph carrying more than one property element is structurally
// ambiguous and reported as an error so callers can skip it.
func Properties(p *Node) (*Node, error) {
	var props *Node
	for _, child := range p.Children {
		if !child.IsElement("pPr") {
			continue
		}
		if props != nil {
			return nil, fmt.Errorf("paragraph has multiple property elements")
		}
		props = child
	}
	return props, nil
}

// EnsureProperties returns the paragraph's w:pPr element, creating one as
// the first child when missing.
func EnsureProperties(p *Node) (*Node, error) {
	props, err := Properties(p)
	if err != nil {
		return nil, err
	}
	if props != nil {
		return props, nil
	}
	props = &Node{Name: xmlName("pPr")}
	p.PrependChild(props)
	return props, nil
}

// StyleID returns the paragraph's style identifier (w:pStyle w:val), or the
// empty string when unstyled.
func StyleID(p *Node) string {
	props, err := Properties(p)
	if err != nil || props == nil {
		return ""
	}
	style := props.Child("pStyle")
	if style == nil {
		return ""
	}
	val, _ := style.Attribute(NS, "val")
	return val
}

// FirstLineIndent returns the paragraph's first-line indent in twips.
// The second result is false when the property is absent or not numeric.
func FirstLineIndent(p *Node) (int, bool) {
	props, err := Properties(p)
	if err != nil || props == nil {
		return 0, false
	}
	ind := props.Child("ind")
	if ind == nil {
		return 0, false
	}
	raw, ok := ind.Attribute(NS, "firstLine")
	if !ok {
		return 0, false
	}
	twips, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return twips, true
}

// SetFirstLineIndent sets the paragraph's first-line indent in twips.
func SetFirstLineIndent(p *Node, twips int) error {
	props, err := EnsureProperties(p)
	if err != nil {
		return err
	}
	ind := props.EnsureChild("ind")
	ind.SetAttribute(NS, "firstLine", strconv.Itoa(twips))
	return nil
}

// LineSpacing returns the paragraph's line spacing value (w:spacing w:line,
// in 240ths of a line). The second result is false when absent or not
// numeric.
func LineSpacing(p *Node) (int, bool) {
	props, err := Properties(p)
	if err != nil || props == nil {
		return 0, false
	}
	spacing := props.Child("spacing")
	if spacing == nil {
		return 0, false
	}
	raw, ok := spacing.Attribute(NS, "line")
	if !ok {
		return 0, false
	}
	line, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return line, true
}

// SetLineSpacing sets the paragraph's line spacing value and rule.
func SetLineSpacing(p *Node, line int, rule string) error {
	props, err := EnsureProperties(p)
	if err != nil {
		return err
	}
	spacing := props.EnsureChild("spacing")
	spacing.SetAttribute(NS, "line", strconv.Itoa(line))
	spacing.SetAttribute(NS, "lineRule", rule)
	return nil
}

// PageBreakBefore reports whether the paragraph requests a page break
// before itself (w:pageBreakBefore, with val unset or truthy).
func PageBreakBefore(p *Node) bool {
	props, err := Properties(p)
	if err != nil || props == nil {
		return false
	}
	brk := props.Child("pageBreakBefore")
	if brk == nil {
		return false
	}
	val, ok := brk.Attribute(NS, "val")
	if !ok {
		return true
	}
	return val != "0" && !strings.EqualFold(val, "false")
}

// HasPageBreakRun reports whether the paragraph contains an explicit page
// break run (w:br with w:type="page").
func HasPageBreakRun(p *Node) bool {
	found := false
	Walk(p, func(n *Node) bool {
		if n.IsElement("br") {
			if typ, ok := n.Attribute(NS, "type"); ok && typ == "page" {
				found = true
				return false
			}
		}
		return true
	})
	return found
}

func xmlName(local string) xml.Name {
	return xml.Name{Space: NS, Local: local}
}
