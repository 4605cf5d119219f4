package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestWrapAndIsCode(t *testing.T) {
	base := errors.New("connection reset")
	err := fmt.Errorf("stage strict: %w", Wrap(CodeExecution, "query failed", base))

	if !IsCode(err, CodeExecution) {
		t.Fatalf("expected execution code on wrapped error")
	}
	if IsCode(err, CodeSynthesis) {
		t.Fatalf("did not expect synthesis code")
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected cause to be reachable through Unwrap")
	}
	if got := CodeOf(err); got != CodeExecution {
		t.Fatalf("expected %q got %q", CodeExecution, got)
	}
	if got := err.Error(); got != "stage strict: query failed: connection reset" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestCodeOfPlainError(t *testing.T) {
	if got := CodeOf(errors.New("plain")); got != "" {
		t.Fatalf("expected empty code got %q", got)
	}
	if got := Wrap(CodeSecurityViolation, "refused", nil).Error(); got != "refused" {
		t.Fatalf("unexpected message %q", got)
	}
}
