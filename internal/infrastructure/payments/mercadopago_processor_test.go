package payments

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"mechmarket/internal/domain/entities"
	"mechmarket/pkg/apperrors"
)

func TestNewMercadoPagoProcessor(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("mock mode needs no token", func(t *testing.T) {
		p, err := NewMercadoPagoProcessor("", true, logger)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !p.mockMode {
			t.Fatal("expected mock mode")
		}
	})

	t.Run("real mode requires a token", func(t *testing.T) {
		_, err := NewMercadoPagoProcessor("", false, logger)
		if !errors.Is(err, ErrMissingAccessToken) {
			t.Fatalf("expected ErrMissingAccessToken, got %v", err)
		}
	})
}

func TestMercadoPagoProcessor_MockMode(t *testing.T) {
	p, err := NewMercadoPagoProcessor("", true, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctx := context.Background()

	ref, err := p.CreateHold(ctx, 15000, "BRL", entities.PaymentMethodCard, "job-1:base:1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(ref, "mock-") {
		t.Fatalf("expected synthetic reference, got %q", ref)
	}
	if err := p.Capture(ctx, ref); err != nil {
		t.Fatalf("capture: %v", err)
	}
	if err := p.ReleaseHold(ctx, ref); err != nil {
		t.Fatalf("release: %v", err)
	}
	if err := p.Refund(ctx, ref, 5000); err != nil {
		t.Fatalf("refund: %v", err)
	}
}

func TestParseRef(t *testing.T) {
	if _, err := parseRef("not-a-number"); !errors.Is(err, ErrBadProcessorRef) {
		t.Fatalf("expected ErrBadProcessorRef, got %v", err)
	}
	id, err := parseRef("12345")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != 12345 {
		t.Fatalf("expected 12345, got %d", id)
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		err  error
		kind apperrors.Kind
	}{
		{"timeout is transient", errors.New("request timed out"), apperrors.KindTransientProcessor},
		{"throttle is transient", errors.New("429 too many requests"), apperrors.KindTransientProcessor},
		{"provider 5xx is transient", errors.New("internal server error"), apperrors.KindTransientProcessor},
		{"decline is permanent", errors.New("cc_rejected_insufficient_amount"), apperrors.KindPermanentProcessor},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := classify(tc.err)
			if !apperrors.IsKind(got, tc.kind) {
				t.Fatalf("expected kind %s, got %v", tc.kind, got)
			}
			if !errors.Is(got, tc.err) {
				t.Fatal("classified error should keep its cause")
			}
		})
	}
}
