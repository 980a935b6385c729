package main

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testDocumentXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p>
      <w:pPr><w:pStyle w:val="Heading1"/></w:pPr>
      <w:r><w:t>Chapter One</w:t></w:r>
    </w:p>
    <w:p><w:r><w:tab/><w:t>Tabbed opening line.</w:t></w:r></w:p>
  </w:body>
</w:document>`

const testContentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
  <Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
  <Default Extension="xml" ContentType="application/xml"/>
  <Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`

const testRootRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

func writeManuscript(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "book.docx")
	out, err := os.Create(path)
	if err != nil {
		t.Fatalf("create fixture: %v", err)
	}
	zw := zip.NewWriter(out)
	parts := []struct {
		name, data string
	}{
		{"[Content_Types].xml", testContentTypes},
		{"_rels/.rels", testRootRels},
		{"word/document.xml", testDocumentXML},
	}
	for _, part := range parts {
		w, err := zw.Create(part.name)
		if err != nil {
			t.Fatalf("create part %s: %v", part.name, err)
		}
		if _, err := w.Write([]byte(part.data)); err != nil {
			t.Fatalf("write part %s: %v", part.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	if err := out.Close(); err != nil {
		t.Fatalf("close fixture: %v", err)
	}
	return path
}

func clearToolEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"KDPFMT_NO_COLOR", "NO_COLOR", "KDPFMT_VERBOSE", "KDPFMT_WIDTH", "KDPFMT_MAX_PART_BYTES"} {
		t.Setenv(key, "")
	}
}

func TestRunNoArgs(t *testing.T) {
	clearToolEnv(t)
	var stdout, stderr bytes.Buffer
	if code := run(nil, &stdout, &stderr); code != 2 {
		t.Fatalf("exit code = %d, want 2", code)
	}
	if !strings.Contains(stderr.String(), "Usage: kdpfmt") {
		t.Errorf("usage missing from stderr:\n%s", stderr.String())
	}
}

func TestRunUnknownFlag(t *testing.T) {
	clearToolEnv(t)
	var stdout, stderr bytes.Buffer
	if code := run([]string{"--bogus"}, &stdout, &stderr); code != 2 {
		t.Fatalf("exit code = %d, want 2", code)
	}
}

func TestRunMissingInput(t *testing.T) {
	clearToolEnv(t)
	dir := t.TempDir()
	var stdout, stderr bytes.Buffer
	code := run([]string{filepath.Join(dir, "absent.docx")}, &stdout, &stderr)
	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if !strings.Contains(stderr.String(), "input file not found") {
		t.Errorf("stderr = %q", stderr.String())
	}
}

func TestRunAnalyze(t *testing.T) {
	clearToolEnv(t)
	dir := t.TempDir()
	input := writeManuscript(t, dir)

	var stdout, stderr bytes.Buffer
	code := run([]string{"--no-color", input}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit code = %d, stderr:\n%s", code, stderr.String())
	}
	out := stdout.String()
	if !strings.Contains(out, "KDP Formatting Report: book.docx") {
		t.Errorf("report header missing:\n%s", out)
	}
	if !strings.Contains(out, "CRITICAL ISSUES") {
		t.Errorf("tab finding missing:\n%s", out)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("analyze run created files: %v", entries)
	}
}

func TestRunFix(t *testing.T) {
	clearToolEnv(t)
	dir := t.TempDir()
	input := writeManuscript(t, dir)

	var stdout, stderr bytes.Buffer
	code := run([]string{"--fix", "--no-color", input}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit code = %d, stderr:\n%s", code, stderr.String())
	}
	want := filepath.Join(dir, "book_kdp_formatted.docx")
	if _, err := os.Stat(want); err != nil {
		t.Errorf("fixed package not written: %v", err)
	}
	if !strings.Contains(stdout.String(), "Wrote "+want) {
		t.Errorf("output path missing from stdout:\n%s", stdout.String())
	}
}

func TestRunFlagsAfterInput(t *testing.T) {
	clearToolEnv(t)
	dir := t.TempDir()
	input := writeManuscript(t, dir)
	custom := filepath.Join(dir, "ready.docx")

	var stdout, stderr bytes.Buffer
	code := run([]string{input, "--fix", "--no-color", "-o", custom}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit code = %d, stderr:\n%s", code, stderr.String())
	}
	if _, err := os.Stat(custom); err != nil {
		t.Errorf("fixed package not written: %v", err)
	}

	var out, errOut bytes.Buffer
	if code := run([]string{input, "extra.docx"}, &out, &errOut); code != 2 {
		t.Fatalf("exit code with two inputs = %d, want 2", code)
	}
}

func TestRunFixExplicitOutput(t *testing.T) {
	clearToolEnv(t)
	dir := t.TempDir()
	input := writeManuscript(t, dir)
	custom := filepath.Join(dir, "ready.docx")

	var stdout, stderr bytes.Buffer
	code := run([]string{"--fix", "--no-color", "-o", custom, input}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit code = %d, stderr:\n%s", code, stderr.String())
	}
	if _, err := os.Stat(custom); err != nil {
		t.Errorf("output not written to -o path: %v", err)
	}
}

func TestRunNotAPackage(t *testing.T) {
	clearToolEnv(t)
	path := filepath.Join(t.TempDir(), "notes.docx")
	if err := os.WriteFile(path, []byte("plain text\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	var stdout, stderr bytes.Buffer
	if code := run([]string{path}, &stdout, &stderr); code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if !strings.Contains(stderr.String(), "error:") {
		t.Errorf("stderr = %q", stderr.String())
	}
}
