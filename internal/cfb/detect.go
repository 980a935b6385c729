// Package cfb identifies legacy OLE compound-file documents (binary .doc)
// so callers can explain why such input cannot be processed. Detection
// only; the legacy format is never parsed beyond its directory entries.
package cfb

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/richardlehane/mscfb"
	"github.com/richardlehane/msoleps"
)

// signature is the OLE compound file header magic.
var signature = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

// Sniff reports whether the file at path starts with the OLE compound file
// signature.
func Sniff(path string) bool {
	file, err := os.Open(path)
	if err != nil {
		return false
	}
	defer file.Close()

	head := make([]byte, len(signature))
	if _, err := io.ReadFull(file, head); err != nil {
		return false
	}
	return bytes.Equal(head, signature)
}

// Describe returns a description of the legacy document at path and whether
// the file is an OLE compound file at all. When the container can be
// walked, the description names the Word binary format and includes the
// stored title from the summary information stream.
func Describe(path string) (string, bool) {
	if !Sniff(path) {
		return "", false
	}
	desc := "a legacy OLE compound document"

	file, err := os.Open(path)
	if err != nil {
		return desc, true
	}
	defer file.Close()

	doc, err := mscfb.New(file)
	if err != nil {
		return desc, true
	}

	isWord := false
	title := ""
	for entry, err := doc.Next(); err == nil; entry, err = doc.Next() {
		if entry.Name == "WordDocument" {
			isWord = true
		}
		if title == "" && msoleps.IsMSOLEPS(entry.Initial) {
			title = readTitle(doc)
		}
	}

	if isWord {
		desc = "a legacy binary Word document (.doc)"
	}
	if title != "" {
		desc += fmt.Sprintf(", titled %q", title)
	}
	return desc, true
}

// readTitle decodes the property set at the reader's current entry and
// returns its Title property, if any.
func readTitle(r io.Reader) string {
	props := msoleps.New()
	if err := props.Reset(r); err != nil {
		return ""
	}
	for _, prop := range props.Property {
		if prop.Name != "Title" {
			continue
		}
		return prop.String()
	}
	return ""
}
