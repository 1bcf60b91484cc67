// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package fs

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"strings"

	"github.com/pkg/errors"

	"gopkg.microglot.org/jasm/internal/jasm"
)

// NewFileString wraps assembly text held in memory.
func NewFileString(path string, content string, kind jasm.FileKind) jasm.File {
	return NewFileFN(path, func() (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader(content)), nil
	}, kind)
}

// NewFileBytes wraps binary content held in memory, such as an overlay
// image read from standard input.
func NewFileBytes(path string, content []byte, kind jasm.FileKind) jasm.File {
	return NewFileFN(path, func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(content)), nil
	}, kind)
}

type fileIOFunc struct {
	path string
	kind jasm.FileKind
	body func() (io.ReadCloser, error)
}

// NewFileFN wraps file based content. The body function is called for every
// call to Body so it must return a fresh handle each time.
func NewFileFN(path string, body func() (io.ReadCloser, error), kind jasm.FileKind) jasm.File {
	return &fileIOFunc{
		path: path,
		kind: kind,
		body: body,
	}
}

func (f *fileIOFunc) Path(ctx context.Context) string {
	return f.path
}
func (f *fileIOFunc) Kind(ctx context.Context) jasm.FileKind {
	return f.kind
}
func (f *fileIOFunc) Body(ctx context.Context) (jasm.FileBody, error) {
	rc, err := f.body()
	if err != nil {
		return nil, err
	}
	rcb := bufio.NewReader(rc)
	rcbc := &bufioReaderCloser{
		Reader: rcb,
		Closer: rc,
	}
	return bodyFromIO(rcbc), nil
}

type bufioReaderCloser struct {
	*bufio.Reader
	io.Closer
}

// ReadAll loads the whole body of a file. Class files and images are
// decoded from memory.
func ReadAll(ctx context.Context, f jasm.File) ([]byte, error) {
	body, err := f.Body(ctx)
	if err != nil {
		return nil, err
	}
	defer body.Close(ctx)
	var out bytes.Buffer
	for {
		b, err := body.Read(ctx, 32*1024)
		_, _ = out.Write(b)
		if err != nil {
			if isEOF(err) {
				return out.Bytes(), nil
			}
			return nil, errors.Wrapf(err, "reading %s", f.Path(ctx))
		}
	}
}

func isEOF(err error) bool {
	return errors.Is(err, io.EOF)
}
