// Package result carries a stage's value together with every error and
// warning the stage produced.
package result

import (
	"gopkg.microglot.org/jasm/internal/exc"
	"gopkg.microglot.org/jasm/internal/optional"
)

// Result is ok only when the value is present and there are no errors.
type Result[T any] struct {
	value    optional.Optional[T]
	errors   []exc.Exception
	warnings []exc.Exception
}

func Ok[T any](v T, warnings ...exc.Exception) Result[T] {
	return Result[T]{value: optional.Some(v), warnings: warnings}
}

func Err[T any](errs ...exc.Exception) Result[T] {
	return Result[T]{errors: errs}
}

func New[T any](v optional.Optional[T], errs []exc.Exception, warnings []exc.Exception) Result[T] {
	return Result[T]{value: v, errors: errs, warnings: warnings}
}

// FromReporter wraps v with everything accumulated in r.
func FromReporter[T any](v T, r exc.Reporter) Result[T] {
	return Result[T]{value: optional.Some(v), errors: r.Reported(), warnings: r.Warnings()}
}

func (self Result[T]) IsOk() bool {
	return self.value.IsPresent() && len(self.errors) == 0
}

func (self Result[T]) Value() optional.Optional[T] {
	return self.value
}

// Get returns the value or the zero value of T when absent.
func (self Result[T]) Get() T {
	return self.value.Value()
}

func (self Result[T]) Errors() []exc.Exception {
	return self.errors
}

func (self Result[T]) Warnings() []exc.Exception {
	return self.warnings
}

// Err returns the errors as a single error or nil when there are none.
func (self Result[T]) Err() error {
	if len(self.errors) == 0 {
		return nil
	}
	return exc.Multi(self.errors)
}

func (self Result[T]) IfOk(f func(T)) Result[T] {
	if self.IsOk() {
		f(self.value.Value())
	}
	return self
}

func (self Result[T]) IfErr(f func([]exc.Exception)) Result[T] {
	if !self.IsOk() {
		f(self.errors)
	}
	return self
}

// WithWarnings returns a copy with additional warnings appended.
func (self Result[T]) WithWarnings(warnings ...exc.Exception) Result[T] {
	self.warnings = append(append([]exc.Exception(nil), self.warnings...), warnings...)
	return self
}

// FlatMap forwards an ok value to the next stage. Any other result
// short-circuits with its diagnostics untouched.
func FlatMap[T any, U any](r Result[T], f func(T) Result[U]) Result[U] {
	if !r.IsOk() {
		return Result[U]{errors: r.errors, warnings: r.warnings}
	}
	next := f(r.value.Value())
	return merge(next, nil, r.warnings)
}

// Chain runs the next stage whenever a value is present, even when errors
// were reported, so that independent problems from several stages end up in
// one report. The combined result is ok only when every stage was.
func Chain[T any, U any](r Result[T], f func(T) Result[U]) Result[U] {
	if !r.value.IsPresent() {
		return Result[U]{errors: r.errors, warnings: r.warnings}
	}
	next := f(r.value.Value())
	return merge(next, r.errors, r.warnings)
}

// Map converts an ok value without adding diagnostics.
func Map[T any, U any](r Result[T], f func(T) U) Result[U] {
	return FlatMap(r, func(v T) Result[U] {
		return Ok(f(v))
	})
}

func merge[T any](r Result[T], errs []exc.Exception, warnings []exc.Exception) Result[T] {
	out := Result[T]{value: r.value}
	out.errors = append(append([]exc.Exception(nil), errs...), r.errors...)
	out.warnings = append(append([]exc.Exception(nil), warnings...), r.warnings...)
	if len(out.errors) == 0 {
		out.errors = nil
	}
	if len(out.warnings) == 0 {
		out.warnings = nil
	}
	return out
}
