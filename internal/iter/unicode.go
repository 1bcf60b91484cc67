// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package iter

import (
	"bufio"
	"context"
	"errors"
	"io"
	"unicode/utf8"

	"gopkg.microglot.org/jasm/internal/jasm"
	"gopkg.microglot.org/jasm/internal/optional"
)

// NewUnicodeString iterates the code points of in-memory assembly text.
// Invalid UTF-8 sequences are returned as utf8.RuneError.
func NewUnicodeString(text string) jasm.Iterator[jasm.CodePoint] {
	return &stringBody{text: text}
}

type stringBody struct {
	text   string
	offset int
}

func (s *stringBody) Next(ctx context.Context) optional.Optional[jasm.CodePoint] {
	if s.offset >= len(s.text) {
		return optional.None[jasm.CodePoint]()
	}
	r, size := utf8.DecodeRuneInString(s.text[s.offset:])
	s.offset = s.offset + size
	return optional.Some(jasm.CodePoint(r))
}

func (s *stringBody) Close(context.Context) error {
	return nil
}

// NewUnicodeFileBody converts a FileBody into an iterator of code points.
// The given context is used for all read operations.
func NewUnicodeFileBody(ctx context.Context, b jasm.FileBody) jasm.Iterator[jasm.CodePoint] {
	rc := &fileBodyIO{
		ctx:  ctx,
		body: b,
	}
	scanner := bufio.NewScanner(rc)
	scanner.Split(bufio.ScanRunes)
	return &fileBody{
		readCloser: rc,
		scanner:    scanner,
	}
}

type fileBody struct {
	readCloser io.ReadCloser
	scanner    *bufio.Scanner
}

func (f *fileBody) Next(ctx context.Context) optional.Optional[jasm.CodePoint] {
	if !f.scanner.Scan() {
		return optional.None[jasm.CodePoint]()
	}
	r, _ := utf8.DecodeRune(f.scanner.Bytes())
	return optional.Some(jasm.CodePoint(r))
}

func (f *fileBody) Close(context.Context) error {
	_ = f.readCloser.Close()
	return f.scanner.Err()
}

type fileBodyIO struct {
	ctx  context.Context
	body jasm.FileBody
}

func (self *fileBodyIO) Read(p []byte) (int, error) {
	b, err := self.body.Read(self.ctx, int32(len(p)))
	copy(p, b)
	if err != nil && !errors.Is(err, io.EOF) {
		return len(b), err
	}
	if errors.Is(err, io.EOF) {
		return len(b), io.EOF
	}
	return len(b), nil
}

func (self *fileBodyIO) Close() error {
	return self.body.Close(self.ctx)
}
