// Package opc opens and rewrites OPC document packages: ZIP archives whose
// entries are the document's parts. Only the main document part is ever
// interpreted; everything else is carried through rewrites untouched.
package opc

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
)

// Well-known part paths in a WordprocessingML package.
const (
	DocumentPart     = "word/document.xml"
	DocumentRelsPart = "word/_rels/document.xml.rels"
	ContentTypesPart = "[Content_Types].xml"
)

// DefaultMaxPartBytes bounds how far a single part may decompress.
const DefaultMaxPartBytes = int64(1) << 28

var (
	// ErrNotAPackage reports input that is not a readable document package,
	// either because it is not a ZIP archive or because the main document
	// part is missing.
	ErrNotAPackage = errors.New("opc: not a valid document package")

	// ErrPartMissing reports a lookup of a part the package does not contain.
	ErrPartMissing = errors.New("opc: part missing")
)

// Package is an open document package.
type Package struct {
	file         *os.File
	zr           *zip.Reader
	maxPartBytes int64
}

// Open opens the package at path. maxPartBytes caps the decompressed size
// of any single part; zero or negative selects DefaultMaxPartBytes.
//
// A file that is not a ZIP archive, or a ZIP without the main document
// part, fails with ErrNotAPackage. Missing files fail with the underlying
// fs error so callers can distinguish them.
func Open(path string, maxPartBytes int64) (*Package, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	zr, err := zip.NewReader(file, info.Size())
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("%w: %v", ErrNotAPackage, err)
	}

	if maxPartBytes <= 0 {
		maxPartBytes = DefaultMaxPartBytes
	}
	pkg := &Package{file: file, zr: zr, maxPartBytes: maxPartBytes}

	if !pkg.hasPart(DocumentPart) {
		file.Close()
		return nil, fmt.Errorf("%w: missing %s", ErrNotAPackage, DocumentPart)
	}

	return pkg, nil
}

func (p *Package) hasPart(name string) bool {
	for _, f := range p.zr.File {
		if f.Name == name {
			return true
		}
	}
	return false
}

// Parts returns the part names in archive order.
func (p *Package) Parts() []string {
	names := make([]string, 0, len(p.zr.File))
	for _, f := range p.zr.File {
		names = append(names, f.Name)
	}
	return names
}

// Part returns the decompressed content of the named part.
func (p *Package) Part(name string) ([]byte, error) {
	for _, f := range p.zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open part %s: %w", name, err)
		}
		defer rc.Close()

		data, err := io.ReadAll(io.LimitReader(rc, p.maxPartBytes+1))
		if err != nil {
			return nil, fmt.Errorf("failed to read part %s: %w", name, err)
		}
		if int64(len(data)) > p.maxPartBytes {
			return nil, fmt.Errorf("part %s exceeds the %d byte limit", name, p.maxPartBytes)
		}
		return data, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrPartMissing, name)
}

// Close releases the underlying file.
func (p *Package) Close() error {
	return p.file.Close()
}
