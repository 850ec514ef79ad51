package service

import (
	"errors"
	"fmt"
	"runtime"
)

// Error kinds. Use errors.Is to test which kind of failure occurred.
var (
	// ErrMalformedLog means the classification lacked a bucket or date,
	// or the file content did not have the expected two-line,
	// comma-delimited shape.
	ErrMalformedLog = errors.New("malformed storage log")

	// ErrDownloadFailed means the source file could not be read.
	ErrDownloadFailed = errors.New("download failed")

	// ErrIngestionFailed means the warehouse rejected the row.
	ErrIngestionFailed = errors.New("warehouse insert failed")

	// ErrRelocationFailed means a move or delete failed. These are
	// never compensated.
	ErrRelocationFailed = errors.New("relocation failed")

	// ErrExistenceCheckFailed means we could not tell whether the
	// file was already processed.
	ErrExistenceCheckFailed = errors.New("processed-copy check failed")
)

// DetailedError is an error that can describe itself at length
// for the logs.
type DetailedError interface {
	Detail() string
}

// Error is a pipeline error carrying its kind, the object it concerns,
// the underlying cause, and where it was created.
type Error struct {
	Kind     error
	Err      error
	ObjectID string
	Message  string
	File     string
	Line     int
}

// NewError returns a new Error of the given kind. Param err may be nil.
func NewError(kind error, objectID, message string, err error) *Error {
	_, file, line, _ := runtime.Caller(1)
	return &Error{
		Kind:     kind,
		Err:      err,
		ObjectID: objectID,
		Message:  message,
		File:     file,
		Line:     line,
	}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %s: %v", e.Kind, e.ObjectID, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s: %s", e.Kind, e.ObjectID, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is this error's kind.
func (e *Error) Is(target error) bool {
	return e.Kind == target
}

// Detail returns a message suitable for the log, including the
// source location where the error was created.
func (e *Error) Detail() string {
	underlyingError := ""
	if e.Err != nil {
		underlyingError = fmt.Sprintf("(Underlying error: %s)", e.Err.Error())
	}
	return fmt.Sprintf("%s: %s [%s:%d] object %s %s",
		e.Kind, e.Message, e.File, e.Line, e.ObjectID, underlyingError)
}

// ProcessingError is the serializable record of an error that occurred
// while processing one object. These go into the Outcome.
type ProcessingError struct {
	Identifier string `json:"identifier"`
	IsFatal    bool   `json:"is_fatal"`
	Kind       string `json:"kind"`
	Message    string `json:"message"`
	Source     string `json:"source"`
}

// NewProcessingError converts err into a ProcessingError. Fatal errors
// are those the invoking environment should retry: a retry may
// succeed, and the file was left where it was. Non-fatal errors have
// already been compensated by moving the file to the errors bucket.
func NewProcessingError(identifier string, err error, isFatal bool) *ProcessingError {
	source := "unknown:0"
	kind := "unknown"
	var pipelineErr *Error
	if errors.As(err, &pipelineErr) {
		source = fmt.Sprintf("%s:%d", pipelineErr.File, pipelineErr.Line)
		kind = pipelineErr.Kind.Error()
	} else if _, filename, line, ok := runtime.Caller(1); ok {
		source = fmt.Sprintf("%s:%d", filename, line)
	}
	return &ProcessingError{
		Identifier: identifier,
		IsFatal:    isFatal,
		Kind:       kind,
		Message:    err.Error(),
		Source:     source,
	}
}

func (e *ProcessingError) Error() string {
	severity := "non-fatal"
	if e.IsFatal {
		severity = "fatal"
	}
	return fmt.Sprintf("(kind: %s) (message: %s) (severity: %s) "+
		"(identifier: %s) (source: %s)", e.Kind, e.Message,
		severity, e.Identifier, e.Source)
}
