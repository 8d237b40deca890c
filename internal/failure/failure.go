// Package failure defines the error taxonomy shared by the stager, the
// comparator and the keyword surface.
//
// Every failure carries a Code for categorization and a human-readable
// message naming the offending path(s) and line. The message is what test
// reports show, so it is kept stable.
package failure

import (
	"errors"
	"fmt"
)

// Code categorizes a harness failure.
type Code string

const (
	// DirectoryAlreadyExists indicates a run directory was staged twice.
	DirectoryAlreadyExists Code = "DirectoryAlreadyExists"

	// DirectoryNotFound indicates a run or target directory is missing.
	DirectoryNotFound Code = "DirectoryNotFound"

	// SourceNotFound indicates a fixture file is absent from the data tree.
	SourceNotFound Code = "SourceNotFound"

	// MissingFile indicates a compared file is absent from the run or target directory.
	MissingFile Code = "MissingFile"

	// MalformedData indicates a non-numeric token or wrong column count.
	MalformedData Code = "MalformedData"

	// ContentMismatch indicates two lines differ as text.
	ContentMismatch Code = "ContentMismatch"

	// ToleranceExceeded indicates two values (or an average) exceed the tolerance.
	ToleranceExceeded Code = "ToleranceExceeded"

	// TrailingData indicates the target file has lines the run file lacks.
	TrailingData Code = "TrailingData"

	// FileCountMismatch indicates a directory holds an unexpected number of files.
	FileCountMismatch Code = "FileCountMismatch"

	// InvalidRange indicates a malformed field range for CutFields.
	InvalidRange Code = "InvalidRange"

	// InvalidArgument indicates a keyword argument that cannot be parsed,
	// an unknown keyword, or a wrong number of arguments.
	InvalidArgument Code = "InvalidArgument"

	// ToolFailed indicates the tool under test exited unsuccessfully.
	ToolFailed Code = "ToolFailed"
)

// Codes lists every known failure code.
var Codes = []Code{
	DirectoryAlreadyExists,
	DirectoryNotFound,
	SourceNotFound,
	MissingFile,
	MalformedData,
	ContentMismatch,
	ToleranceExceeded,
	TrailingData,
	FileCountMismatch,
	InvalidRange,
	InvalidArgument,
	ToolFailed,
}

// Valid reports whether c is one of the known codes.
func (c Code) Valid() bool {
	for _, known := range Codes {
		if c == known {
			return true
		}
	}
	return false
}

// Error is a categorized harness failure.
type Error struct {
	// Code identifies the failure category.
	Code Code

	// Message is the human-readable diagnosis.
	Message string

	// Path is the run-side (or only) path involved, if any.
	Path string

	// TargetPath is the reference-side path, for comparison failures.
	TargetPath string

	// Line is the zero-based line index, or -1 when not line specific.
	Line int

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an Error that is not tied to a line.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Line:    -1,
	}
}

// Wrap creates an Error with an underlying cause.
func Wrap(code Code, err error, format string, args ...any) *Error {
	e := New(code, format, args...)
	e.Err = err
	return e
}

// At attaches file and line context and returns e.
func (e *Error) At(path, targetPath string, line int) *Error {
	e.Path = path
	e.TargetPath = targetPath
	e.Line = line
	return e
}

// Is reports whether err (or anything it wraps) is an Error with the given code.
func Is(err error, code Code) bool {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Code == code
	}
	return false
}

// CodeOf returns the code of err, or "" if err is not an Error.
func CodeOf(err error) Code {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return ""
}
