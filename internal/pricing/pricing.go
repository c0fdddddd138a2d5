package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Quote is the priced breakdown of a single order. The platform fee is a
// percentage of the charged total, so the buyer pays a markup over the
// publisher's listed price and the publisher always earns exactly the base.
type Quote struct {
	BasePriceCents   int64
	PlatformFeeCents int64
	TotalCents       int64
}

// NewQuote prices an order from the publisher's base price. feePercent is the
// platform's share of the total in whole percent. A 20 percent fee therefore
// charges the buyer a 25 percent markup on the base.
func NewQuote(basePriceCents int64, feePercent int) (Quote, error) {
	if basePriceCents <= 0 {
		return Quote{}, fmt.Errorf("base price must be positive, got %d", basePriceCents)
	}
	if feePercent < 0 || feePercent >= 100 {
		return Quote{}, fmt.Errorf("fee percent must be in [0, 100), got %d", feePercent)
	}

	base := decimal.NewFromInt(basePriceCents)
	keep := decimal.NewFromInt(int64(100 - feePercent)).Div(decimal.NewFromInt(100))

	total := base.Div(keep).Round(0)
	fee := total.Sub(base)

	return Quote{
		BasePriceCents:   basePriceCents,
		PlatformFeeCents: fee.IntPart(),
		TotalCents:       total.IntPart(),
	}, nil
}

// ProrateFee scales the platform fee for a partial publisher payout, rounding
// half up. Used when a dispute resolves with a split: the platform keeps fee
// in proportion to what the publisher actually earned.
func ProrateFee(feeCents, payoutCents, baseCents int64) int64 {
	if feeCents <= 0 || baseCents <= 0 || payoutCents <= 0 {
		return 0
	}
	if payoutCents >= baseCents {
		return feeCents
	}
	fee := decimal.NewFromInt(feeCents)
	ratio := decimal.NewFromInt(payoutCents).Div(decimal.NewFromInt(baseCents))
	return fee.Mul(ratio).Round(0).IntPart()
}
