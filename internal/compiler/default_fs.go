// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package compiler

import (
	"path/filepath"

	"gopkg.microglot.org/jasm/internal/fs"
	"gopkg.microglot.org/jasm/internal/inheritance"
	"gopkg.microglot.org/jasm/internal/jasm"
)

// NewDefaultFS reads absolute paths from the local file system.
func NewDefaultFS() (jasm.FileSystem, error) {
	return fs.NewFileSystemLocal("/")
}

// NewSourceFS reads absolute paths from the local file system. Listing a
// directory yields only its assembly files.
func NewSourceFS() (jasm.FileSystem, error) {
	return fs.NewFileSystemLocal("/", fs.WithOptionFileFilter(fs.OnlyKind(jasm.FileKindSource)))
}

// NewDefaultLibrary returns a Library that searches folders first and then
// the platform's shared library folders.
func NewDefaultLibrary(files jasm.FileSystem, lookup func(string) (string, bool), folders ...string) (*inheritance.Library, error) {
	roots := append(append([]string(nil), folders...), getDefaultRoots(lookup)...)
	for offset, root := range roots {
		absRoot, err := filepath.Abs(root)
		if err != nil {
			return nil, err
		}
		roots[offset] = absRoot
	}
	return inheritance.NewLibrary(files, roots...), nil
}
