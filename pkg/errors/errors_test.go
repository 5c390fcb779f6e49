package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsCodeUnwraps(t *testing.T) {
	base := New(CodeConflict, "boom")
	wrapped := fmt.Errorf("outer: %w", base)
	if !IsCode(wrapped, CodeConflict) {
		t.Fatal("expected conflict code through wrapping")
	}
	if IsCode(wrapped, CodeValidation) {
		t.Fatal("unexpected validation code")
	}
	if IsCode(errors.New("plain"), CodeConflict) {
		t.Fatal("plain error should carry no code")
	}
}

func TestInvalidCarriesField(t *testing.T) {
	err := Invalid("EnvironmentName", "required")
	if !IsCode(err, CodeValidation) {
		t.Fatal("expected validation code")
	}
	if got := Field(err); got != "EnvironmentName" {
		t.Fatalf("expected field EnvironmentName, got %q", got)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("db down")
	err := Wrap(cause, CodeUnavailable, "store unreachable")
	if !errors.Is(err, cause) {
		t.Fatal("expected wrapped cause")
	}
	if err.Error() != "unavailable: store unreachable: db down" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}
