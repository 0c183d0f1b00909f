// Package money splits payable amounts between the platform and the payee.
// All amounts are minor currency units (cents); integer arithmetic keeps the
// split exact.
package money

import (
	"math"

	"mechmarket/pkg/apperrors"
)

// DefaultFeeRate is the platform's cut when none is configured.
const DefaultFeeRate = 0.10

var (
	ErrAmountOutOfRange = apperrors.Validation("AMOUNT_OUT_OF_RANGE", "amount is outside the accepted range")
	ErrInvalidFeeRate   = apperrors.Validation("INVALID_FEE_RATE", "fee rate must be in [0, 1)")
)

// Split divides amountCents into the platform fee and the payee amount.
// The fee rounds down to the cent; the remainder goes to the payee, so the
// two always sum back to amountCents exactly.
type Split struct {
	PlatformFeeCents int64
	PayeeCents       int64
}

// Limits bounds a single payable amount. Zero values mean "no bound".
type Limits struct {
	MinAmountCents int64
	MaxAmountCents int64
}

func (l Limits) Validate(amountCents int64) error {
	if amountCents <= 0 {
		return ErrAmountOutOfRange
	}
	if l.MinAmountCents > 0 && amountCents < l.MinAmountCents {
		return ErrAmountOutOfRange
	}
	if l.MaxAmountCents > 0 && amountCents > l.MaxAmountCents {
		return ErrAmountOutOfRange
	}
	return nil
}

// SplitAmount computes the fee split for amountCents at feeRate.
func SplitAmount(amountCents int64, feeRate float64) (Split, error) {
	if feeRate < 0 || feeRate >= 1 || math.IsNaN(feeRate) {
		return Split{}, ErrInvalidFeeRate
	}
	if amountCents <= 0 {
		return Split{}, ErrAmountOutOfRange
	}

	fee := int64(math.Floor(float64(amountCents) * feeRate))
	return Split{
		PlatformFeeCents: fee,
		PayeeCents:       amountCents - fee,
	}, nil
}
