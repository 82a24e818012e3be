// Package storeerr defines the failure kinds reported by the document and
// folder services. Every failure wraps the transport error unchanged so that
// callers can match the kind with errors.Is and still see the cause.
package storeerr

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals that the object is absent on read.
	ErrNotFound = errors.New("object not found")
	// ErrUpload signals that storing an object failed.
	ErrUpload = errors.New("upload failed")
	// ErrDownload signals a read failure other than a missing object.
	ErrDownload = errors.New("download failed")
	// ErrDelete signals a transport or auth failure while deleting.
	ErrDelete = errors.New("delete failed")
	// ErrPresign signals that a signed URL could not be issued.
	ErrPresign = errors.New("presign failed")
	// ErrList signals that enumerating a prefix failed.
	ErrList = errors.New("list failed")
	// ErrCopy signals that a server-side copy failed.
	ErrCopy = errors.New("copy failed")
	// ErrInvalidInput signals a malformed owner id, file name or key.
	ErrInvalidInput = errors.New("invalid input")
)

// OpError ties a failure kind to the key it happened on.
type OpError struct {
	Kind error
	Key  string
	Err  error
}

// New builds an OpError. A nil cause yields a nil error.
func New(kind error, key string, err error) error {
	if err == nil {
		return nil
	}
	return &OpError{Kind: kind, Key: key, Err: err}
}

func (e *OpError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%v: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%v: %s: %v", e.Kind, e.Key, e.Err)
}

// Unwrap exposes both the kind and the underlying cause to errors.Is/As.
func (e *OpError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// Invalid reports a rejected argument.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// FailedKey returns the key of the first OpError in err's chain.
func FailedKey(err error) string {
	var opErr *OpError
	if errors.As(err, &opErr) {
		return opErr.Key
	}
	return ""
}
