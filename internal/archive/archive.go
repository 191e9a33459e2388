// SPDX-License-Identifier: MPL-2.0

// Package archive extracts downloaded zip installers into environment
// directories.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// CorruptArchiveError reports an archive whose single top-level entry is not
// a directory, which makes the flattening step impossible.
type CorruptArchiveError struct {
	Archive string
	Entry   string
}

func (e *CorruptArchiveError) Error() string {
	return fmt.Sprintf("archive %s is corrupt: single top-level entry %q is not a directory", e.Archive, e.Entry)
}

// ExtractZip extracts src into destDir, creating it if necessary. Entry
// paths are validated so no file can escape destDir.
func ExtractZip(src, destDir string) error {
	reader, err := zip.OpenReader(src)
	if err != nil {
		return fmt.Errorf("failed to open archive %s: %w", src, err)
	}
	defer func() { _ = reader.Close() }()

	absDest, err := filepath.Abs(destDir)
	if err != nil {
		return fmt.Errorf("failed to resolve destination path: %w", err)
	}
	if err := os.MkdirAll(absDest, 0o755); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}

	for _, file := range reader.File {
		destPath := filepath.Join(absDest, filepath.FromSlash(file.Name))

		// Reject entries that would escape the destination.
		rel, err := filepath.Rel(absDest, destPath)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return fmt.Errorf("invalid path in archive: %s", file.Name)
		}

		if file.FileInfo().IsDir() {
			if err := os.MkdirAll(destPath, file.Mode()); err != nil {
				return fmt.Errorf("failed to create directory: %w", err)
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
			return fmt.Errorf("failed to create parent directory: %w", err)
		}
		if err := extractFile(file, destPath); err != nil {
			return fmt.Errorf("failed to extract %s: %w", file.Name, err)
		}
	}
	return nil
}

// extractFile writes one archive entry to destPath.
func extractFile(file *zip.File, destPath string) error {
	rc, err := file.Open()
	if err != nil {
		return err
	}
	defer func() { _ = rc.Close() }()

	mode := file.Mode()
	if mode == 0 {
		mode = 0o644
	}
	out, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return err
	}

	_, err = io.Copy(out, rc)
	closeErr := out.Close()
	if err != nil {
		return err
	}
	return closeErr
}

// FlattenSingleDir handles archives that wrap their content in a single
// top-level folder: when dir contains exactly one entry and that entry is a
// directory, its children are moved up one level and the wrapper is removed.
// A single non-directory entry means the archive did not contain an
// environment tree and yields a CorruptArchiveError. Directories with zero
// or several entries are left untouched.
func FlattenSingleDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", dir, err)
	}
	if len(entries) != 1 {
		return nil
	}

	only := entries[0]
	if !only.IsDir() {
		return &CorruptArchiveError{Archive: dir, Entry: only.Name()}
	}

	wrapper := filepath.Join(dir, only.Name())
	children, err := os.ReadDir(wrapper)
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", wrapper, err)
	}
	for _, child := range children {
		from := filepath.Join(wrapper, child.Name())
		to := filepath.Join(dir, child.Name())
		if err := os.Rename(from, to); err != nil {
			return fmt.Errorf("failed to move %s out of wrapper directory: %w", child.Name(), err)
		}
	}
	if err := os.Remove(wrapper); err != nil {
		return fmt.Errorf("failed to remove wrapper directory: %w", err)
	}
	return nil
}
