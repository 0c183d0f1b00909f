package apperrors

import (
	"errors"
	"net/http"
	"testing"
)

func TestProcessorConstructors(t *testing.T) {
	cases := []struct {
		name string
		make func(code, message string) *AppError
		kind Kind
	}{
		{"transient", TransientProcessor, KindTransientProcessor},
		{"permanent", PermanentProcessor, KindPermanentProcessor},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ae := tc.make("SOME_CODE", "something went wrong")
			if ae.Kind != tc.kind {
				t.Fatalf("expected kind %s, got %s", tc.kind, ae.Kind)
			}
			if ae.Code != "SOME_CODE" || ae.Message != "something went wrong" {
				t.Fatalf("unexpected code/message: %+v", ae)
			}
			if ae.HTTPStatus != http.StatusUnprocessableEntity {
				t.Fatalf("expected 422, got %d", ae.HTTPStatus)
			}
			if ae.Err != nil {
				t.Fatalf("constructor must not carry a cause, got %v", ae.Err)
			}
			if !IsKind(ae, tc.kind) {
				t.Fatalf("IsKind should match %s", tc.kind)
			}

			cause := errors.New("wire failure")
			wrapped := ae.WithCause(cause)
			if !errors.Is(wrapped, ae) {
				t.Fatal("wrapped error should still match its sentinel")
			}
			if !errors.Is(wrapped, cause) {
				t.Fatal("wrapped error should unwrap to its cause")
			}
			if ae.Err != nil {
				t.Fatal("WithCause must not mutate the sentinel")
			}
		})
	}
}

func TestIsMatchesByCode(t *testing.T) {
	a := Validation("INVALID_INPUT", "bad input")
	b := Validation("INVALID_INPUT", "different message")
	if !errors.Is(a, b) {
		t.Fatal("errors with the same code should match")
	}
	if errors.Is(a, NotFound("MISSING", "missing")) {
		t.Fatal("errors with different codes should not match")
	}
}
