package dto

import (
	"time"

	"github.com/SscSPs/mma_fxrates/internal/core/domain"
	"github.com/SscSPs/mma_fxrates/internal/utils"
	"github.com/shopspring/decimal"
)

// ConvertRequest defines the body for converting between two currencies.
type ConvertRequest struct {
	Amount       *decimal.Decimal `json:"amount" binding:"required" swaggertype:"string" example:"100.50"`
	FromCurrency string           `json:"fromCurrency" binding:"required,currency_code" example:"USD"`
	ToCurrency   string           `json:"toCurrency" binding:"required,currency_code" example:"INR"`
	// Date is YYYY-MM-DD; omitted means today.
	Date *string `json:"date,omitempty" binding:"omitempty,datetime=2006-01-02" example:"2025-01-01"`
}

// ConvertToAnchorRequest defines the body for converting into the anchor currency.
type ConvertToAnchorRequest struct {
	Amount       *decimal.Decimal `json:"amount" binding:"required" swaggertype:"string" example:"100.50"`
	FromCurrency string           `json:"fromCurrency" binding:"required,currency_code" example:"USD"`
	Date         *string          `json:"date,omitempty" binding:"omitempty,datetime=2006-01-02" example:"2025-01-01"`
}

// ConversionResponse mirrors domain.ConversionResult. Callers persisting documents
// should copy these figures, since past rates may later be unavailable.
type ConversionResponse struct {
	OriginalAmount  string          `json:"originalAmount" example:"100.5"`
	FromCurrency    string          `json:"fromCurrency"`
	ToCurrency      string          `json:"toCurrency"`
	ConvertedAmount string          `json:"convertedAmount" example:"8355.57"`
	ExchangeRate    decimal.Decimal `json:"exchangeRate" swaggertype:"string"`
	ConversionDate  string          `json:"conversionDate" example:"2025-01-01"`
	Tier            string          `json:"tier"`
	Degraded        bool            `json:"degraded"`
}

// ToConversionResponse converts a domain.ConversionResult to ConversionResponse DTO
func ToConversionResponse(res *domain.ConversionResult) ConversionResponse {
	return ConversionResponse{
		OriginalAmount:  res.OriginalAmount.String(),
		FromCurrency:    res.FromCurrency,
		ToCurrency:      res.ToCurrency,
		ConvertedAmount: utils.FormatWithPrecision(res.ConvertedAmount, utils.MinorUnitPrecision),
		ExchangeRate:    res.ExchangeRate,
		ConversionDate:  res.ConversionDate.Format(domain.DateLayout),
		Tier:            string(res.Tier),
		Degraded:        res.Degraded,
	}
}

// ParseOptionalDate returns nil for an absent or blank date.
func ParseOptionalDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	d, err := domain.ParseDate(*s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
