package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"mechmarket/internal/adapter/persistence/memory"
	"mechmarket/internal/domain/entities"
	"mechmarket/internal/domain/money"
	"mechmarket/internal/usecase"

	"github.com/gin-gonic/gin"
)

func newPaymentRouter(t *testing.T) (*gin.Engine, *memory.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memory.NewStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	orders := usecase.NewChangeOrderUseCase(
		store.OrderStore(), store.JobStore(), noopPublisher{}, logger,
		money.Limits{MinAmountCents: 100, MaxAmountCents: 1_000_000}, 24*time.Hour,
	)
	uc := usecase.NewPaymentUseCase(
		store.PaymentStore(), store.JobStore(), orders,
		nil, noopPublisher{}, logger, usecase.PaymentConfig{},
	)
	h := NewPaymentHandler(uc, logger)

	r := gin.New()
	r.POST("/v1/webhooks/payments", h.ProcessorWebhook)
	r.GET("/v1/payments/:payment_id", h.GetPayment)
	return r, store
}

func seedPendingPayment(t *testing.T, store *memory.Store, id string) {
	t.Helper()
	_, err := store.PaymentStore().Create(context.Background(), entities.PaymentRecord{
		ID:             id,
		JobID:          "job-1",
		AmountCents:    15000,
		Method:         entities.PaymentMethodPix,
		Status:         entities.PaymentStatusPending,
		IdempotencyKey: "job-1:base:1",
		Version:        1,
	})
	if err != nil {
		t.Fatalf("seed payment: %v", err)
	}
}

func TestPaymentHandler_ProcessorWebhook(t *testing.T) {
	t.Run("confirmed resolves a pending hold", func(t *testing.T) {
		r, store := newPaymentRouter(t)
		seedPendingPayment(t, store, "pay-1")

		w := doJSON(r, http.MethodPost, "/v1/webhooks/payments",
			`{"payment_id":"pay-1","status":"confirmed","processor_ref":"mp-77"}`, nil)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
		}
		var body map[string]any
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatal(err)
		}
		if body["status"] != "authorized" {
			t.Fatalf("unexpected status: %v", body["status"])
		}
	})

	t.Run("failed records the reason", func(t *testing.T) {
		r, store := newPaymentRouter(t)
		seedPendingPayment(t, store, "pay-1")

		w := doJSON(r, http.MethodPost, "/v1/webhooks/payments",
			`{"payment_id":"pay-1","status":"failed","reason":"card declined"}`, nil)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
		}
		var body map[string]any
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatal(err)
		}
		if body["status"] != "failed" || body["failure_reason"] != "card declined" {
			t.Fatalf("unexpected body: %v", body)
		}
	})

	t.Run("unknown status", func(t *testing.T) {
		r, store := newPaymentRouter(t)
		seedPendingPayment(t, store, "pay-1")

		w := doJSON(r, http.MethodPost, "/v1/webhooks/payments",
			`{"payment_id":"pay-1","status":"maybe"}`, nil)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	t.Run("unknown payment", func(t *testing.T) {
		r, _ := newPaymentRouter(t)

		w := doJSON(r, http.MethodPost, "/v1/webhooks/payments",
			`{"payment_id":"missing","status":"confirmed","processor_ref":"mp-1"}`, nil)
		if w.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", w.Code)
		}
	})
}
