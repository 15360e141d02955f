package errors

import (
	stdErrors "errors"
	"fmt"
	"testing"
)

func TestErrorIncludesInternal(t *testing.T) {
	internal := stdErrors.New("boom")
	err := Wrap(internal, "failed")

	if err.Error() != "failed: boom" {
		t.Fatalf("unexpected error string: %s", err.Error())
	}
}

func TestWithInternalCopies(t *testing.T) {
	base := New("TEST", "test", 400)
	with := base.WithInternal(stdErrors.New("oops"))

	if with == base {
		t.Fatal("expected WithInternal to return a copy")
	}

	if base.Internal != nil {
		t.Fatal("expected original error to remain unchanged")
	}

	if with.Internal == nil {
		t.Fatal("expected internal error to be set")
	}
}

func TestFromError(t *testing.T) {
	appErr := ErrNotFound
	if out := FromError(appErr); out != appErr {
		t.Fatal("expected FromError to return the same AppError instance")
	}

	raw := stdErrors.New("raw")
	out := FromError(raw)
	if out.Code != ErrInternalServer.Code {
		t.Fatalf("expected internal server code, got %s", out.Code)
	}
	if out.Internal == nil {
		t.Fatal("expected internal error to be attached")
	}
}

func TestDerivedErrorsMatchSentinel(t *testing.T) {
	err := NewInvalidTransition("request REQ-1001 is Rejected")
	if !stdErrors.Is(err, ErrInvalidTransition) {
		t.Fatal("expected derived error to match ErrInvalidTransition")
	}
	if stdErrors.Is(err, ErrValidation) {
		t.Fatal("expected derived error not to match ErrValidation")
	}

	wrapped := fmt.Errorf("service: %w", ErrNotFound.WithInternal(stdErrors.New("no rows")))
	if !stdErrors.Is(wrapped, ErrNotFound) {
		t.Fatal("expected wrapped error to match ErrNotFound")
	}
}

func TestTransientClassification(t *testing.T) {
	cases := map[*AppError]bool{
		ErrRemoteUnavailable: true,
		ErrExportFailed:      true,
		ErrValidation:        false,
		ErrInvalidTransition: false,
		ErrNotFound:          false,
	}
	for err, want := range cases {
		if got := err.Transient(); got != want {
			t.Fatalf("%s: Transient() = %v, want %v", err.Code, got, want)
		}
		if got := IsTransient(fmt.Errorf("wrapped: %w", err)); got != want {
			t.Fatalf("%s: IsTransient() = %v, want %v", err.Code, got, want)
		}
	}

	if IsTransient(stdErrors.New("plain")) {
		t.Fatal("plain errors are never transient")
	}
}

func TestNewValidation(t *testing.T) {
	err := NewValidation("short description is required")
	if err.Code != ErrValidation.Code {
		t.Fatalf("expected %s, got %s", ErrValidation.Code, err.Code)
	}
	if err.Message != "short description is required" {
		t.Fatalf("unexpected message: %s", err.Message)
	}
	if err.StatusCode != ErrValidation.StatusCode {
		t.Fatalf("unexpected status: %d", err.StatusCode)
	}
	if ErrValidation.Message == err.Message {
		t.Fatal("expected sentinel message to remain unchanged")
	}
}
