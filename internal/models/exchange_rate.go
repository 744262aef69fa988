package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExchangeRate mirrors one row of the exchange_rates table.
type ExchangeRate struct {
	ExchangeRateID string          `json:"exchangeRateID"` // Primary Key (UUID)
	BaseCurrency   string          `json:"baseCurrency"`
	TargetCurrency string          `json:"targetCurrency"`
	Rate           decimal.Decimal `json:"rate"` // NUMERIC, strictly positive
	RateDate       time.Time       `json:"rateDate"`
	Source         string          `json:"source"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}
