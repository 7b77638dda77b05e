// Package parser discovers and parses the per-sample artifacts of a
// sequencing run: NanoStats reports, relative abundance tables and
// NanoPlot HTML files.
package parser

import (
	"io"
	"os"
	"path/filepath"

	"github.com/SMD-Bioinformatics-Lund/eyrie/internal/errors"
	"github.com/shenwei356/xopen"
)

// Locate resolves directory/filename against runRoot. It returns the
// path relative to runRoot when the file exists. A missing file is not
// an error.
func Locate(runRoot, directory, filename string) (string, bool) {
	if filename == "" {
		return "", false
	}

	full := filepath.Join(runRoot, directory, filename)
	if _, err := os.Stat(full); err != nil {
		return "", false
	}

	rel, err := filepath.Rel(runRoot, full)
	if err != nil {
		return "", false
	}
	return rel, true
}

// readArtifact returns the decompressed content of an artifact, or
// (nil, nil) when the file does not exist. Gzip, xz, zstd and bzip2
// inputs are detected by xopen.
func readArtifact(op errors.Op, path string) ([]byte, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.E(op, errors.KindIO, err, "stat "+path)
	}
	if info.IsDir() {
		return nil, errors.E(op, errors.KindIO, path+" is a directory")
	}
	if info.Size() == 0 {
		return []byte{}, nil
	}

	r, err := xopen.Ropen(path)
	if err != nil {
		return nil, errors.E(op, errors.KindIO, err, "open "+path)
	}
	defer func() {
		errors.IgnoreError(r.Close(), "closing "+path)
	}()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.E(op, errors.KindIO, err, "read "+path)
	}
	return data, nil
}
