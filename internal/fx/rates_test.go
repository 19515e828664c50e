package fx

import (
	"context"
	"errors"
	"testing"

	"github.com/finsend/transfer-service/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticRateSource_SameCurrency(t *testing.T) {
	src := NewStaticRateSource(nil)
	rate, err := src.GetExchangeRate(context.Background(), "USD", "USD")
	require.NoError(t, err)
	assert.True(t, rate.Equal(decimal.NewFromInt(1)))
}

func TestStaticRateSource_CrossRate(t *testing.T) {
	src := NewStaticRateSource(map[string]decimal.Decimal{
		"USD": decimal.NewFromInt(1),
		"EUR": decimal.NewFromFloat(0.92),
	})

	rate, err := src.GetExchangeRate(context.Background(), "USD", "EUR")
	require.NoError(t, err)
	assert.True(t, rate.Equal(decimal.NewFromFloat(0.92)))

	// Inverse direction derives from the same base rates.
	inverse, err := src.GetExchangeRate(context.Background(), "EUR", "USD")
	require.NoError(t, err)
	assert.True(t, inverse.Equal(decimal.NewFromInt(1).Div(decimal.NewFromFloat(0.92))))
}

func TestStaticRateSource_UnknownCurrency(t *testing.T) {
	src := NewStaticRateSource(nil)

	_, err := src.GetExchangeRate(context.Background(), "USD", "XXX")
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindConversionUnavailable))

	_, err = src.GetExchangeRate(context.Background(), "XXX", "USD")
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindConversionUnavailable))
}

type failingRateSource struct{ err error }

func (f failingRateSource) GetExchangeRate(ctx context.Context, source, target string) (decimal.Decimal, error) {
	return decimal.Zero, f.err
}

type fixedRateSource struct{ rate decimal.Decimal }

func (f fixedRateSource) GetExchangeRate(ctx context.Context, source, target string) (decimal.Decimal, error) {
	return f.rate, nil
}

func TestRateConverter_Convert(t *testing.T) {
	converter := NewRateConverter(fixedRateSource{rate: decimal.NewFromFloat(0.92)})

	converted, rate, err := converter.Convert(context.Background(), domain.NewMoney(100_000_000, "USD"), "EUR")
	require.NoError(t, err)
	assert.Equal(t, int64(92_000_000), converted.Amount)
	assert.Equal(t, "EUR", converted.Currency)
	assert.True(t, rate.Equal(decimal.NewFromFloat(0.92)))
}

func TestRateConverter_SourceFailure(t *testing.T) {
	converter := NewRateConverter(failingRateSource{err: errors.New("upstream timeout")})

	_, _, err := converter.Convert(context.Background(), domain.NewMoney(100_000_000, "USD"), "EUR")
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindConversionUnavailable))
}

func TestRateConverter_ZeroRate(t *testing.T) {
	converter := NewRateConverter(fixedRateSource{rate: decimal.Zero})

	_, _, err := converter.Convert(context.Background(), domain.NewMoney(100_000_000, "USD"), "EUR")
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindConversionUnavailable))
}
