// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package fs

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gopkg.microglot.org/jasm/internal/exc"
	"gopkg.microglot.org/jasm/internal/jasm"
)

const (
	sourceExt = ".jasm"  // Assembly text
	classExt  = ".class" // A class file
	imageExt  = ".jimg"  // A compiled member image
)

var knownExts = map[string]jasm.FileKind{
	sourceExt: jasm.FileKindSource,
	classExt:  jasm.FileKindClass,
	imageExt:  jasm.FileKindImage,
}

// KindOf classifies a path by its extension.
func KindOf(path string) jasm.FileKind {
	return knownExts[filepath.Ext(path)]
}

// FileFilter is a filter function type used to select which files to open when
// the path being opened is a directory. Implementations should return true if
// the file should be opened, false otherwise.
type FileFilter func(ctx context.Context, fname string) bool

// OnlyKind selects the files of a single kind.
func OnlyKind(kind jasm.FileKind) FileFilter {
	return func(ctx context.Context, fname string) bool {
		return KindOf(fname) == kind
	}
}

type FileSystemLocalOption func(*fileSystemLocal)

// WithOptionFSFactory installs a custom factory function used to generate the
// underlying file system handle. The default value is os.DirFS. All paths
// given to open or write are considered relative to the root.
func WithOptionFSFactory(v func(root string) fs.FS) FileSystemLocalOption {
	return func(rfs *fileSystemLocal) {
		rfs.fsFactory = v
	}
}

// WithOptionFileFilter installs a custom filter function used to select files
// when a target is a directory. The default accepts assembly text, class
// files and images.
func WithOptionFileFilter(v FileFilter) FileSystemLocalOption {
	return func(rfs *fileSystemLocal) {
		rfs.fileFilter = v
	}
}

type fileSystemLocal struct {
	root       string
	fsFactory  func(string) fs.FS
	fileFilter FileFilter
}

// NewFileSystemLocal creates a new FileSystem that uses the local file system.
func NewFileSystemLocal(root string, options ...FileSystemLocalOption) (jasm.FileSystem, error) {
	absroot, err := filepath.Abs(root)
	if err != nil {
		return nil, exc.WrapUnknown(exc.Location{URI: root}, err)
	}
	result := &fileSystemLocal{
		root:      absroot,
		fsFactory: os.DirFS,
		fileFilter: func(ctx context.Context, fname string) bool {
			return KindOf(fname) != jasm.FileKindNone
		},
	}
	for _, option := range options {
		option(result)
	}
	return result, nil
}

func (r *fileSystemLocal) Open(ctx context.Context, uri string) ([]jasm.File, error) {
	path := uri
	u, err := url.Parse(uri)
	if err == nil {
		path = u.Path
	}
	path = filepath.Join("/", path)

	dir := r.fsFactory(r.root)
	p := filepath.Clean(path)
	if p == "" || p == "/" {
		// fs.ValidPath only allows, and requires, '.' for the root.
		p = "."
	}
	// fs.FS requires an un-rooted path.
	p = strings.TrimPrefix(p, "/")
	d, err := dir.Open(p)
	if err != nil {
		return nil, fsErr(p, err)
	}
	defer d.Close()
	stat, err := d.Stat()
	if err != nil {
		return nil, fsErr(p, err)
	}
	if !stat.IsDir() {
		f := NewFileFN(path, func() (io.ReadCloser, error) {
			return dir.Open(p)
		}, KindOf(p))
		return []jasm.File{f}, nil
	}
	rd, ok := d.(fs.ReadDirFile)
	if !ok {
		return nil, exc.New(exc.Location{URI: path}, exc.CodeUnsuportedFileSystemOperation, "directory cannot be listed")
	}
	dfs, err := rd.ReadDir(0)
	if err != nil {
		return nil, fsErr(p, err)
	}
	files := make([]jasm.File, 0, len(dfs))
	for _, df := range dfs {
		if df.IsDir() {
			continue
		}
		if !r.fileFilter(ctx, df.Name()) {
			continue
		}
		dfPath := filepath.Join(p, df.Name())
		f := NewFileFN(filepath.Join("/", dfPath), func() (io.ReadCloser, error) {
			return dir.Open(dfPath)
		}, KindOf(dfPath))
		files = append(files, f)
	}
	if len(files) < 1 {
		return nil, exc.New(exc.Location{URI: path}, exc.CodeFileNotFound, fmt.Sprintf("found directory %s but it is empty", path))
	}
	return files, nil
}

func (r *fileSystemLocal) Write(ctx context.Context, uri string, content []byte) error {
	path := uri
	u, err := url.Parse(uri)
	if err == nil {
		path = u.Path
	}
	path = filepath.Join(r.root, "/", path)
	p := filepath.Clean(path)

	d := filepath.Dir(p)
	if err = os.MkdirAll(d, os.ModeDir|0o755); err != nil {
		return fsErr(d, err)
	}
	if err := os.WriteFile(p, content, 0o644); err != nil {
		return exc.Wrap(exc.Location{URI: p}, exc.CodeWriteFailure, err)
	}
	return nil
}

func fsErr(path string, err error) error {
	if errT, ok := err.(*fs.PathError); ok {
		switch errT.Err {
		case fs.ErrInvalid:
			return exc.WrapUnknown(exc.Location{URI: errT.Path}, errT)
		case fs.ErrNotExist:
			return exc.Wrap(exc.Location{URI: errT.Path}, exc.CodeFileNotFound, errT)
		case fs.ErrPermission:
			return exc.Wrap(exc.Location{URI: errT.Path}, exc.CodePermissionDenied, errT)
		default:
			return exc.WrapUnknown(exc.Location{URI: errT.Path}, errT)
		}
	}
	return exc.WrapUnknown(exc.Location{URI: path}, err)
}
