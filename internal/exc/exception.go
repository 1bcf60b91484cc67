// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package exc

import (
	"fmt"
	"strings"

	"gopkg.microglot.org/jasm/internal/jasm"
)

type Exception interface {
	error
	Code() string
	Message() string
	Location() Location
}

type Location = jasm.Location

type exc struct {
	code     string
	message  string
	location Location
}

func (e *exc) Error() string {
	if !e.location.IsValid() {
		if e.location.URI == "" {
			return fmt.Sprintf("%s: %s", e.code, e.message)
		}
		return fmt.Sprintf("%s -- %s: %s", e.location.URI, e.code, e.message)
	}
	return fmt.Sprintf("%s:%d:%d -- %s: %s", e.location.URI, e.location.Line, e.location.Column, e.code, e.message)
}

func (e *exc) Code() string {
	return e.code
}

func (e *exc) Message() string {
	return e.message
}

func (e *exc) Location() Location {
	return e.location
}

type excUnwrap struct {
	Exception
	cause error
}

func (e *excUnwrap) Unwrap() error {
	return e.cause
}

func New(location Location, code string, message string) Exception {
	return &exc{
		location: location,
		message:  message,
		code:     code,
	}
}

// Newf is New with a formatted message.
func Newf(location Location, code string, format string, args ...interface{}) Exception {
	return New(location, code, fmt.Sprintf(format, args...))
}

func Wrap(location Location, code string, err error) Exception {
	if err == nil {
		return nil
	}
	if e, ok := err.(Exception); ok {
		return &excUnwrap{
			Exception: New(location, code, e.Message()),
			cause:     e,
		}
	}
	return &excUnwrap{
		cause:     err,
		Exception: New(location, code, err.Error()),
	}
}

func WrapUnknown(location Location, err error) Exception {
	return Wrap(location, CodeUnknownFatal, err)
}

// Multi is a set of exceptions returned as one error.
type Multi []Exception

func (self Multi) Error() string {
	var b strings.Builder
	for x, e := range self {
		if x > 0 {
			_, _ = b.WriteString("\n")
		}
		_, _ = b.WriteString(e.Error())
	}
	return b.String()
}
