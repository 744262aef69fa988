package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ConversionResult is a derived, non-persisted value. Documents that need the figures
// later must copy them at creation time, since rates for past dates may disappear.
type ConversionResult struct {
	OriginalAmount  decimal.Decimal `json:"originalAmount"`
	FromCurrency    string          `json:"fromCurrency"`
	ToCurrency      string          `json:"toCurrency"`
	ConvertedAmount decimal.Decimal `json:"convertedAmount"`
	ExchangeRate    decimal.Decimal `json:"exchangeRate"`
	ConversionDate  time.Time       `json:"conversionDate"`
	Tier            RateTier        `json:"tier"`
	Degraded        bool            `json:"degraded"`
}
