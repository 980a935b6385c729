// Package stats derives headline numbers about a manuscript for the end of
// the report. It reads the document through an independent parser, so a
// counting failure never blocks the checks themselves.
package stats

import (
	"fmt"
	"os"
	"strings"
	"unicode"

	"github.com/clipperhouse/uax29/v2/words"
	"github.com/fumiama/go-docx"

	"github.com/hanpama/kdpcheck/internal/check"
)

// Stats summarizes a manuscript.
type Stats struct {
	Paragraphs int
	Words      int
	Headings   int

	// Images is filled in by the caller from the package relationships.
	Images int
}

// Collect opens the document at path and counts its paragraphs, words and
// headings.
func Collect(path string) (Stats, error) {
	file, err := os.Open(path)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to open document: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return Stats{}, fmt.Errorf("failed to stat document: %w", err)
	}

	doc, err := docx.Parse(file, info.Size())
	if err != nil {
		return Stats{}, fmt.Errorf("failed to parse document: %w", err)
	}

	var s Stats
	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		s.Paragraphs++
		s.Words += CountWords(paragraphText(para))
		if headingStyle(para) {
			s.Headings++
		}
	}
	return s, nil
}

// CountWords counts word tokens in text using Unicode word segmentation.
// Only tokens carrying at least one letter or digit count, so punctuation
// and whitespace contribute nothing.
func CountWords(text string) int {
	n := 0
	tokens := words.FromString(text)
	for tokens.Next() {
		if wordlike(tokens.Value()) {
			n++
		}
	}
	return n
}

func wordlike(token string) bool {
	for _, r := range token {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

func headingStyle(para *docx.Paragraph) bool {
	if para.Properties == nil || para.Properties.Style == nil {
		return false
	}
	return check.IsHeadingStyle(para.Properties.Style.Val)
}

func paragraphText(para *docx.Paragraph) string {
	var sb strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				sb.WriteString(t.Text)
			}
		}
	}
	return sb.String()
}
