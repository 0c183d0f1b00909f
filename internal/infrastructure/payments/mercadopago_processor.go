// Package payments adapts Mercado Pago to the hold, capture and refund
// operations the payment coordinator drives.
package payments

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"mechmarket/internal/domain/entities"
	"mechmarket/internal/usecase/interfaces"
	"mechmarket/pkg/apperrors"

	mpconfig "github.com/mercadopago/sdk-go/pkg/config"
	"github.com/mercadopago/sdk-go/pkg/payment"
	"github.com/mercadopago/sdk-go/pkg/refund"
)

var (
	ErrMissingAccessToken = apperrors.New(apperrors.KindInternal, "MISSING_MP_ACCESS_TOKEN", "missing Mercado Pago access token")
	ErrBadProcessorRef    = apperrors.PermanentProcessor("BAD_PROCESSOR_REF", "processor reference is not a Mercado Pago payment id")
)

var methodIDs = map[entities.PaymentMethod]string{
	entities.PaymentMethodCard:   "credit_card",
	entities.PaymentMethodPix:    "pix",
	entities.PaymentMethodWallet: "account_money",
}

// MercadoPagoProcessor implements interfaces.PaymentProcessor. Holds are
// created with capture=false so the funds stay reserved until the platform
// explicitly captures or voids them.
//
// Mock mode serves local development without an account: every call
// succeeds and returns a synthetic reference.
type MercadoPagoProcessor struct {
	payments payment.Client
	refunds  refund.Client
	logger   *slog.Logger
	mockMode bool
}

var _ interfaces.PaymentProcessor = (*MercadoPagoProcessor)(nil)

func NewMercadoPagoProcessor(accessToken string, mockMode bool, logger *slog.Logger) (*MercadoPagoProcessor, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if mockMode {
		logger.Warn("mercado pago mock mode enabled; no real money moves")
		return &MercadoPagoProcessor{mockMode: true, logger: logger}, nil
	}
	if accessToken == "" {
		return nil, ErrMissingAccessToken
	}

	cfg, err := mpconfig.New(accessToken)
	if err != nil {
		return nil, err
	}
	return &MercadoPagoProcessor{
		payments: payment.NewClient(cfg),
		refunds:  refund.NewClient(cfg),
		logger:   logger,
	}, nil
}

func (p *MercadoPagoProcessor) CreateHold(ctx context.Context, amountCents int64, currency string, method entities.PaymentMethod, idempotencyKey string) (string, error) {
	if p.mockMode {
		ref := "mock-" + strconv.FormatInt(time.Now().UTC().UnixNano(), 10)
		p.logger.Info("mock hold created", slog.String("ref", ref), slog.Int64("amount_cents", amountCents))
		return ref, nil
	}

	// The SDK request struct has many optional fields; building the payload
	// as JSON keeps this adapter insulated from its churn.
	payload := map[string]any{
		"transaction_amount": float64(amountCents) / 100,
		"currency_id":        currency,
		"payment_method_id":  methodIDs[method],
		"external_reference": idempotencyKey,
		"capture":            false,
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	var req payment.Request
	if err := json.Unmarshal(raw, &req); err != nil {
		return "", err
	}

	resp, err := p.payments.Create(ctx, req)
	if err != nil {
		return "", classify(err)
	}

	p.logger.Info("hold created",
		slog.Int("mp_payment_id", resp.ID),
		slog.String("mp_status", resp.Status),
	)
	return strconv.Itoa(resp.ID), nil
}

func (p *MercadoPagoProcessor) Capture(ctx context.Context, ref string) error {
	if p.mockMode {
		return nil
	}
	id, err := parseRef(ref)
	if err != nil {
		return err
	}
	if _, err := p.payments.Capture(ctx, id); err != nil {
		return classify(err)
	}
	return nil
}

func (p *MercadoPagoProcessor) ReleaseHold(ctx context.Context, ref string) error {
	if p.mockMode {
		return nil
	}
	id, err := parseRef(ref)
	if err != nil {
		return err
	}
	if _, err := p.payments.Cancel(ctx, id); err != nil {
		return classify(err)
	}
	return nil
}

func (p *MercadoPagoProcessor) Refund(ctx context.Context, ref string, amountCents int64) error {
	if p.mockMode {
		return nil
	}
	id, err := parseRef(ref)
	if err != nil {
		return err
	}
	if _, err := p.refunds.CreatePartialRefund(ctx, id, float64(amountCents)/100); err != nil {
		return classify(err)
	}
	return nil
}

func parseRef(ref string) (int, error) {
	id, err := strconv.Atoi(ref)
	if err != nil {
		return 0, ErrBadProcessorRef.WithCause(err)
	}
	return id, nil
}

// classify buckets provider errors for the coordinator's retry policy.
// Network-ish and throttling failures are worth retrying; anything else is
// treated as a definitive decline.
func classify(err error) error {
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{
		"timeout", "timed out", "temporar", "unavailable",
		"too many requests", "internal server error", "connection re",
	} {
		if strings.Contains(msg, marker) {
			return apperrors.TransientProcessor("PROCESSOR_UNAVAILABLE", "payment processor is temporarily unavailable").WithCause(err)
		}
	}
	return apperrors.PermanentProcessor("PROCESSOR_DECLINED", "payment processor declined the request").WithCause(err)
}
