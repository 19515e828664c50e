package fx

import (
	"context"

	"github.com/finsend/transfer-service/internal/domain"
	"github.com/shopspring/decimal"
)

// RateSource fetches the rate to convert from source to target currency.
type RateSource interface {
	GetExchangeRate(ctx context.Context, sourceCurrency, targetCurrency string) (decimal.Decimal, error)
}

// Converter is the currency-conversion capability consumed by the transfer
// handlers. When the rate cannot be obtained it fails with
// ConversionUnavailable rather than guessing.
type Converter interface {
	Convert(ctx context.Context, amount domain.Money, targetCurrency string) (domain.Money, decimal.Decimal, error)
}

// RateConverter converts money through a RateSource.
type RateConverter struct {
	rates RateSource
}

func NewRateConverter(rates RateSource) *RateConverter {
	return &RateConverter{rates: rates}
}

func (c *RateConverter) Convert(ctx context.Context, amount domain.Money, targetCurrency string) (domain.Money, decimal.Decimal, error) {
	rate, err := c.rates.GetExchangeRate(ctx, amount.Currency, targetCurrency)
	if err != nil {
		return domain.Money{}, decimal.Zero, domain.WrapError(domain.KindConversionUnavailable,
			"exchange rate lookup failed", err)
	}
	if rate.IsZero() {
		return domain.Money{}, decimal.Zero, domain.Errorf(domain.KindConversionUnavailable,
			"no exchange rate for %s -> %s", amount.Currency, targetCurrency)
	}
	return amount.Convert(targetCurrency, rate), rate, nil
}

// StaticRateSource serves rates from a fixed table of per-currency rates
// relative to USD. Rate sourcing is outside this service; the table is
// supplied at construction.
type StaticRateSource struct {
	baseRates map[string]decimal.Decimal
}

// NewStaticRateSource creates a source with the supplied base rates. A nil
// map falls back to the built-in development table.
func NewStaticRateSource(baseRates map[string]decimal.Decimal) *StaticRateSource {
	if baseRates == nil {
		baseRates = map[string]decimal.Decimal{
			"USD": decimal.NewFromInt(1),
			"EUR": decimal.NewFromFloat(0.92),
			"GBP": decimal.NewFromFloat(0.79),
		}
	}
	return &StaticRateSource{baseRates: baseRates}
}

// GetExchangeRate returns Target/Source, e.g. USD -> EUR = 0.92 / 1.0.
func (s *StaticRateSource) GetExchangeRate(ctx context.Context, source, target string) (decimal.Decimal, error) {
	if source == target {
		return decimal.NewFromInt(1), nil
	}

	sourceRate, ok := s.baseRates[source]
	if !ok {
		return decimal.Zero, domain.Errorf(domain.KindConversionUnavailable, "unknown currency %s", source)
	}
	targetRate, ok := s.baseRates[target]
	if !ok {
		return decimal.Zero, domain.Errorf(domain.KindConversionUnavailable, "unknown currency %s", target)
	}

	return targetRate.Div(sourceRate), nil
}
