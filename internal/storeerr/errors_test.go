package storeerr

import (
	"errors"
	"fmt"
	"testing"
)

func TestOpErrorMatchesKindAndCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := New(ErrCopy, "licenses/LIC-1/a.pdf", cause)

	if !errors.Is(err, ErrCopy) {
		t.Fatalf("expected ErrCopy in chain, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause in chain, got %v", err)
	}
	if errors.Is(err, ErrDelete) {
		t.Fatalf("unexpected ErrDelete match")
	}
	if got := FailedKey(fmt.Errorf("backup: %w", err)); got != "licenses/LIC-1/a.pdf" {
		t.Fatalf("unexpected failed key %q", got)
	}
	if want := "copy failed: licenses/LIC-1/a.pdf: connection reset"; err.Error() != want {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestNewWithNilCause(t *testing.T) {
	if err := New(ErrUpload, "k", nil); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

func TestInvalid(t *testing.T) {
	err := Invalid("owner id %q contains a slash", "a/b")
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
