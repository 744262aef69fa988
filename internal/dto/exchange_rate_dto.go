package dto

import (
	"github.com/SscSPs/mma_fxrates/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ExchangeRateResponse is a resolved rate as served to display widgets.
type ExchangeRateResponse struct {
	FromCurrencyCode string          `json:"fromCurrencyCode"`
	ToCurrencyCode   string          `json:"toCurrencyCode"`
	Rate             decimal.Decimal `json:"rate" swaggertype:"string" example:"83.125"`
	RateDate         string          `json:"rateDate" example:"2025-01-01"`
	Tier             string          `json:"tier" example:"direct"`
	Degraded         bool            `json:"degraded"`
}

// ToExchangeRateResponse converts a domain.ResolvedRate to ExchangeRateResponse DTO
func ToExchangeRateResponse(rate *domain.ResolvedRate) ExchangeRateResponse {
	return ExchangeRateResponse{
		FromCurrencyCode: rate.FromCurrency,
		ToCurrencyCode:   rate.ToCurrency,
		Rate:             rate.Rate,
		RateDate:         rate.Date.Format(domain.DateLayout),
		Tier:             string(rate.Tier),
		Degraded:         rate.Degraded,
	}
}

// RefreshExchangeRatesRequest triggers a manual refresh of the anchor currency.
type RefreshExchangeRatesRequest struct {
	Force bool `json:"force"`
}

// RefreshExchangeRatesResponse reports whether today's rows exist after the refresh.
type RefreshExchangeRatesResponse struct {
	AnchorCurrency string `json:"anchorCurrency"`
	Forced         bool   `json:"forced"`
	Success        bool   `json:"success"`
}
