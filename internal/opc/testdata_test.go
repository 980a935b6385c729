package opc

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

type testPart struct {
	name string
	data []byte
}

const minimalDocumentXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n" +
	`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">` +
	`<w:body><w:p><w:r><w:t>Hello</w:t></w:r></w:p></w:body></w:document>`

const minimalContentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
	`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
	`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
	`<Default Extension="xml" ContentType="application/xml"/>` +
	`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>` +
	`</Types>`

const minimalRootRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
	`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
	`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>` +
	`</Relationships>`

func defaultParts() []testPart {
	return []testPart{
		{ContentTypesPart, []byte(minimalContentTypes)},
		{"_rels/.rels", []byte(minimalRootRels)},
		{DocumentPart, []byte(minimalDocumentXML)},
		{"word/styles.xml", []byte(`<?xml version="1.0"?><w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"></w:styles>`)},
		{"word/media/image1.png", []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0x00, 0x01, 0x02, 0x03}},
	}
}

// writePackage builds a ZIP package from the given parts in order and
// writes it into dir, returning its path.
func writePackage(t *testing.T, dir string, parts []testPart) string {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, part := range parts {
		w, err := zw.Create(part.name)
		if err != nil {
			t.Fatalf("failed to create %s: %v", part.name, err)
		}
		if _, err := w.Write(part.data); err != nil {
			t.Fatalf("failed to write %s: %v", part.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("failed to close test package: %v", err)
	}

	path := filepath.Join(dir, "test.docx")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("failed to write test package: %v", err)
	}
	return path
}

// readPackageParts returns the archive's entries in order as name/content
// pairs.
func readPackageParts(t *testing.T, path string) []testPart {
	t.Helper()

	zr, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("failed to open %s: %v", path, err)
	}
	defer zr.Close()

	var parts []testPart
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("failed to open entry %s: %v", f.Name, err)
		}
		var buf bytes.Buffer
		if _, err := buf.ReadFrom(rc); err != nil {
			t.Fatalf("failed to read entry %s: %v", f.Name, err)
		}
		rc.Close()
		parts = append(parts, testPart{f.Name, buf.Bytes()})
	}
	return parts
}
