package pricing

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewQuoteAppliesMarkup(t *testing.T) {
	quote, err := NewQuote(10000, 20)
	require.NoError(t, err)

	require.Equal(t, int64(10000), quote.BasePriceCents)
	require.Equal(t, int64(2500), quote.PlatformFeeCents)
	require.Equal(t, int64(12500), quote.TotalCents)
	require.Equal(t, quote.TotalCents, quote.BasePriceCents+quote.PlatformFeeCents)
}

func TestNewQuoteRoundsHalfUp(t *testing.T) {
	// 9999 / 0.8 = 12498.75 rounds to 12499.
	quote, err := NewQuote(9999, 20)
	require.NoError(t, err)

	require.Equal(t, int64(12499), quote.TotalCents)
	require.Equal(t, int64(2500), quote.PlatformFeeCents)
	require.Equal(t, quote.TotalCents, quote.BasePriceCents+quote.PlatformFeeCents)
}

func TestNewQuoteZeroFee(t *testing.T) {
	quote, err := NewQuote(4500, 0)
	require.NoError(t, err)

	require.Equal(t, int64(0), quote.PlatformFeeCents)
	require.Equal(t, int64(4500), quote.TotalCents)
}

func TestNewQuoteRejectsBadInputs(t *testing.T) {
	_, err := NewQuote(0, 20)
	require.Error(t, err)

	_, err = NewQuote(-100, 20)
	require.Error(t, err)

	_, err = NewQuote(10000, 100)
	require.Error(t, err)

	_, err = NewQuote(10000, -1)
	require.Error(t, err)
}

func TestProrateFee(t *testing.T) {
	// Publisher keeps half the base, platform keeps half the fee.
	require.Equal(t, int64(1250), ProrateFee(2500, 5000, 10000))

	// Full payout keeps the full fee.
	require.Equal(t, int64(2500), ProrateFee(2500, 10000, 10000))

	// 2500 * 3333/10000 = 833.25 rounds to 833.
	require.Equal(t, int64(833), ProrateFee(2500, 3333, 10000))

	require.Equal(t, int64(0), ProrateFee(2500, 0, 10000))
	require.Equal(t, int64(0), ProrateFee(0, 5000, 10000))
}
