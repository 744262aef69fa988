package services

import (
	portssvc "github.com/SscSPs/mma_fxrates/internal/core/ports/services"
	"github.com/SscSPs/mma_fxrates/internal/platform/config"
	"github.com/shopspring/decimal"
)

type conversionValidator struct {
	// minRates maps "FROM/TO" to the smallest believable rate for that pair.
	minRates map[string]decimal.Decimal
}

// NewConversionValidator creates a validator over the configured plausibility thresholds.
func NewConversionValidator(minRates map[string]decimal.Decimal) portssvc.ConversionValidatorSvc {
	copied := make(map[string]decimal.Decimal, len(minRates))
	for k, v := range minRates {
		copied[k] = v
	}
	return &conversionValidator{minRates: copied}
}

func (v *conversionValidator) IsHighRisk(fromCurrency, toCurrency string) bool {
	_, ok := v.minRates[config.PairKey(fromCurrency, toCurrency)]
	return ok
}

// IsPlausible has no opinion on pairs without a threshold.
func (v *conversionValidator) IsPlausible(rate decimal.Decimal, fromCurrency, toCurrency string) bool {
	minRate, ok := v.minRates[config.PairKey(fromCurrency, toCurrency)]
	if !ok {
		return true
	}
	return rate.GreaterThanOrEqual(minRate)
}
