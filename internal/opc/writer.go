package opc

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Rewrite writes a new package at outPath in which the named part has the
// given content. Every other entry is copied in its original order with its
// original header and compressed bytes, so untouched parts stay
// byte-identical down to the archive level.
//
// The archive is assembled in a temporary file next to the destination and
// renamed into place once fully written; a failure at any point leaves no
// file at outPath.
func (p *Package) Rewrite(outPath, name string, content []byte) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(outPath), ".kdpcheck-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary output: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	zw := zip.NewWriter(tmp)
	replaced := false
	for _, f := range p.zr.File {
		if f.Name == name {
			if err = writeReplacedPart(zw, f, content); err != nil {
				return err
			}
			replaced = true
			continue
		}
		if err = copyRawPart(zw, f); err != nil {
			return err
		}
	}
	if !replaced {
		err = fmt.Errorf("%w: %s", ErrPartMissing, name)
		return err
	}

	if err = zw.Close(); err != nil {
		return fmt.Errorf("failed to finalize archive: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync output: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close output: %w", err)
	}
	if err = os.Rename(tmpPath, outPath); err != nil {
		return fmt.Errorf("failed to place output: %w", err)
	}
	return nil
}

func writeReplacedPart(zw *zip.Writer, f *zip.File, content []byte) error {
	w, err := zw.CreateHeader(&zip.FileHeader{
		Name:     f.Name,
		Method:   zip.Deflate,
		Modified: f.Modified,
	})
	if err != nil {
		return fmt.Errorf("failed to create part %s: %w", f.Name, err)
	}
	if _, err := w.Write(content); err != nil {
		return fmt.Errorf("failed to write part %s: %w", f.Name, err)
	}
	return nil
}

// copyRawPart transfers an entry without decompressing it, keeping the
// original checksum and compressed stream.
func copyRawPart(zw *zip.Writer, f *zip.File) error {
	raw, err := f.OpenRaw()
	if err != nil {
		return fmt.Errorf("failed to open part %s: %w", f.Name, err)
	}
	header := f.FileHeader
	w, err := zw.CreateRaw(&header)
	if err != nil {
		return fmt.Errorf("failed to copy part %s: %w", f.Name, err)
	}
	if _, err := io.Copy(w, raw); err != nil {
		return fmt.Errorf("failed to copy part %s: %w", f.Name, err)
	}
	return nil
}
