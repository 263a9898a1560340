package shapeshift

import (
	"errors"
	"fmt"
	"strings"
)

// ErrTypeMismatch is returned when a shape violates a narrowed expectation,
// for example a non-enum element handed to the enum-map transcoder.
type ErrTypeMismatch struct {
	Got      string
	Expected string
}

func (e *ErrTypeMismatch) Error() string {
	if e.Expected == "" {
		return fmt.Sprintf("invalid type: unexpected %s", e.Got)
	}
	return fmt.Sprintf("invalid type: %s, expected %s", e.Got, e.Expected)
}

// ErrLengthMismatch is returned when a fixed-size collection receives fewer
// or more items than it requires.
type ErrLengthMismatch struct {
	Expected int
	Actual   int
}

func (e *ErrLengthMismatch) Error() string {
	return fmt.Sprintf("invalid length %d, expected %d", e.Actual, e.Expected)
}

// ErrMissingField is returned when a required field is absent.
type ErrMissingField struct {
	Field string
}

func (e *ErrMissingField) Error() string {
	return fmt.Sprintf("missing field %q", e.Field)
}

// ErrDuplicateField is returned when a field appears more than once in one
// map.
type ErrDuplicateField struct {
	Field string
}

func (e *ErrDuplicateField) Error() string {
	return fmt.Sprintf("duplicate field %q", e.Field)
}

// ErrAmbiguousField is returned by FlattenedMaybe when a field is present
// both nested under its own key and flattened into the parent.
type ErrAmbiguousField struct {
	Field string
}

func (e *ErrAmbiguousField) Error() string {
	return fmt.Sprintf("field %q is present both nested and flattened", e.Field)
}

// ErrUnknownVariant is returned when a discriminant does not name any of
// the expected variants.
type ErrUnknownVariant struct {
	Variant  string
	Expected []string
}

func (e *ErrUnknownVariant) Error() string {
	if len(e.Expected) == 0 {
		return fmt.Sprintf("unknown variant %q", e.Variant)
	}
	return fmt.Sprintf("unknown variant %q, expected one of %s", e.Variant, strings.Join(e.Expected, ", "))
}

// CustomError carries a free-form message, typically an adapter's conversion
// failure (overflow, parse error).
type CustomError struct {
	msg string
	err error
}

// Errorf returns a *CustomError. The %w verb is honored.
func Errorf(format string, args ...any) error {
	err := fmt.Errorf(format, args...)
	return &CustomError{msg: err.Error(), err: errors.Unwrap(err)}
}

func (e *CustomError) Error() string { return e.msg }
func (e *CustomError) Unwrap() error { return e.err }

// FormatError wraps an error raised by a concrete wire format, adding
// whatever positional context the format can provide.
type FormatError struct {
	Format string
	// Offset is a byte offset into the input, or -1 if unknown.
	Offset int64
	// Pointer is a JSON-pointer-like location, if known.
	Pointer string
	// Line and Column are 1-based, or 0 if unknown.
	Line   int
	Column int
	Err    error
}

func (e *FormatError) Error() string {
	var b strings.Builder
	b.WriteString(e.Format)
	switch {
	case e.Line > 0:
		fmt.Fprintf(&b, " (line %d, column %d)", e.Line, e.Column)
	case e.Pointer != "":
		fmt.Fprintf(&b, " (at %s)", e.Pointer)
	case e.Offset >= 0:
		fmt.Fprintf(&b, " (offset %d)", e.Offset)
	}
	b.WriteString(": ")
	b.WriteString(e.Err.Error())
	return b.String()
}

func (e *FormatError) Unwrap() error { return e.Err }

// PathError records the field path at which a nested error occurred.
type PathError struct {
	Path []string
	Err  error
}

func (e *PathError) Error() string {
	return fmt.Sprintf("at %s: %v", strings.Join(e.Path, "."), e.Err)
}

func (e *PathError) Unwrap() error { return e.Err }

// withPath prefixes err's path with segment, merging nested PathErrors so
// that the outermost error carries the full path.
func withPath(err error, segment string) error {
	if err == nil {
		return nil
	}
	if pe, ok := err.(*PathError); ok {
		return &PathError{Path: append([]string{segment}, pe.Path...), Err: pe.Err}
	}
	return &PathError{Path: []string{segment}, Err: err}
}
