package wml

import (
	"strings"
	"testing"
)

func parseParagraph(t *testing.T, inner string) *Node {
	raw := `<?xml version="1.0" encoding="UTF-8"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		inner +
		`</w:body></w:document>`
	doc, err := Parse([]byte(raw))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	paras := doc.Paragraphs()
	if len(paras) != 1 {
		t.Fatalf("expected 1 paragraph, got %d", len(paras))
	}
	return paras[0]
}

func TestStyleID(t *testing.T) {
	p := parseParagraph(t, `<w:p><w:pPr><w:pStyle w:val="Heading2"/></w:pPr><w:r><w:t>x</w:t></w:r></w:p>`)
	if got := StyleID(p); got != "Heading2" {
		t.Errorf("StyleID = %q, want Heading2", got)
	}

	plain := parseParagraph(t, `<w:p><w:r><w:t>x</w:t></w:r></w:p>`)
	if got := StyleID(plain); got != "" {
		t.Errorf("StyleID of unstyled paragraph = %q, want empty", got)
	}
}

func TestFirstLineIndent(t *testing.T) {
	p := parseParagraph(t, `<w:p><w:pPr><w:ind w:firstLine="432"/></w:pPr><w:r><w:t>x</w:t></w:r></w:p>`)
	twips, ok := FirstLineIndent(p)
	if !ok || twips != 432 {
		t.Errorf("FirstLineIndent = %d, %v; want 432, true", twips, ok)
	}

	missing := parseParagraph(t, `<w:p><w:r><w:t>x</w:t></w:r></w:p>`)
	if _, ok := FirstLineIndent(missing); ok {
		t.Error("FirstLineIndent reported a value for a paragraph without one")
	}

	junk := parseParagraph(t, `<w:p><w:pPr><w:ind w:firstLine="wide"/></w:pPr><w:r><w:t>x</w:t></w:r></w:p>`)
	if _, ok := FirstLineIndent(junk); ok {
		t.Error("FirstLineIndent accepted a non-numeric value")
	}
}

func TestSetFirstLineIndentCreatesProperties(t *testing.T) {
	p := parseParagraph(t, `<w:p><w:r><w:t>x</w:t></w:r></w:p>`)
	if err := SetFirstLineIndent(p, 720); err != nil {
		t.Fatalf("SetFirstLineIndent failed: %v", err)
	}

	if !p.Children[0].IsElement("pPr") {
		t.Error("created property element is not the first child")
	}
	twips, ok := FirstLineIndent(p)
	if !ok || twips != 720 {
		t.Errorf("FirstLineIndent after set = %d, %v; want 720, true", twips, ok)
	}

	// Setting again must overwrite, not duplicate.
	if err := SetFirstLineIndent(p, 720); err != nil {
		t.Fatalf("second SetFirstLineIndent failed: %v", err)
	}
	props, _ := Properties(p)
	count := 0
	for _, child := range props.Children {
		if child.IsElement("ind") {
			count++
		}
	}
	if count != 1 {
		t.Errorf("expected 1 ind element, got %d", count)
	}
}

func TestLineSpacing(t *testing.T) {
	p := parseParagraph(t, `<w:p><w:pPr><w:spacing w:line="360" w:lineRule="auto"/></w:pPr><w:r><w:t>x</w:t></w:r></w:p>`)
	line, ok := LineSpacing(p)
	if !ok || line != 360 {
		t.Errorf("LineSpacing = %d, %v; want 360, true", line, ok)
	}

	if err := SetLineSpacing(p, 276, "auto"); err != nil {
		t.Fatalf("SetLineSpacing failed: %v", err)
	}
	line, ok = LineSpacing(p)
	if !ok || line != 276 {
		t.Errorf("LineSpacing after set = %d, %v; want 276, true", line, ok)
	}
}

func TestSetLineSpacingEncoded(t *testing.T) {
	raw := `<?xml version="1.0" encoding="UTF-8"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		`<w:p><w:r><w:t>x</w:t></w:r></w:p>` +
		`</w:body></w:document>`
	doc, err := Parse([]byte(raw))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if err := SetLineSpacing(doc.Paragraphs()[0], 276, "auto"); err != nil {
		t.Fatalf("SetLineSpacing failed: %v", err)
	}

	out, err := doc.Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if !strings.Contains(string(out), `<w:spacing w:line="276" w:lineRule="auto">`) {
		t.Errorf("encoded document missing normalized spacing: %s", out)
	}
}

func TestPropertiesRejectsDuplicates(t *testing.T) {
	p := parseParagraph(t, `<w:p><w:pPr/><w:pPr/><w:r><w:t>x</w:t></w:r></w:p>`)
	if _, err := Properties(p); err == nil {
		t.Error("Properties accepted a paragraph with duplicate property elements")
	}
	if err := SetFirstLineIndent(p, 720); err == nil {
		t.Error("SetFirstLineIndent accepted a paragraph with duplicate property elements")
	}
}

func TestPageBreakHelpers(t *testing.T) {
	brk := parseParagraph(t, `<w:p><w:r><w:br w:type="page"/></w:r></w:p>`)
	if !HasPageBreakRun(brk) {
		t.Error("HasPageBreakRun missed an explicit page break")
	}

	textWrap := parseParagraph(t, `<w:p><w:r><w:br/></w:r></w:p>`)
	if HasPageBreakRun(textWrap) {
		t.Error("HasPageBreakRun counted a line break as a page break")
	}

	before := parseParagraph(t, `<w:p><w:pPr><w:pageBreakBefore/></w:pPr><w:r><w:t>x</w:t></w:r></w:p>`)
	if !PageBreakBefore(before) {
		t.Error("PageBreakBefore missed the property")
	}

	disabled := parseParagraph(t, `<w:p><w:pPr><w:pageBreakBefore w:val="0"/></w:pPr><w:r><w:t>x</w:t></w:r></w:p>`)
	if PageBreakBefore(disabled) {
		t.Error("PageBreakBefore treated a disabled property as set")
	}
}

func TestParagraphTextSkipsFieldInstructions(t *testing.T) {
	p := parseParagraph(t, `<w:p><w:r><w:fldChar w:fldCharType="begin"/></w:r>`+
		`<w:r><w:instrText xml:space="preserve"> TOC \o "1-3" </w:instrText></w:r>`+
		`<w:r><w:t>Contents</w:t></w:r></w:p>`)
	if got := ParagraphText(p); got != "Contents" {
		t.Errorf("ParagraphText = %q, want %q", got, "Contents")
	}
}
