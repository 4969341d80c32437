package apperrors

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	sentinel := errors.New("boom")
	cases := []struct {
		name     string
		err      error
		expected Kind
	}{
		{name: "nil", err: nil, expected: ""},
		{name: "validation", err: Validation("bad", nil), expected: KindBadInput},
		{name: "wrapped not found", err: fmt.Errorf("get: %w", NotFound("missing", sentinel)), expected: KindNotFound},
		{name: "plain error", err: sentinel, expected: KindInternal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := KindOf(tc.err); got != tc.expected {
				t.Fatalf("expected %q, got %q", tc.expected, got)
			}
		})
	}
}

func TestErrorUnwrap(t *testing.T) {
	sentinel := errors.New("store down")
	err := Internal("Error al actualizar estado", sentinel)
	if !errors.Is(err, sentinel) {
		t.Fatal("expected errors.Is to reach the cause")
	}
	if err.Error() != "internal: Error al actualizar estado: store down" {
		t.Fatalf("unexpected message: %s", err.Error())
	}
}
