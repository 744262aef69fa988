package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExchangeRate is one date-stamped, source-tagged rate row: 1 BaseCurrency = Rate TargetCurrency.
// Rows are unique on (BaseCurrency, TargetCurrency, RateDate).
type ExchangeRate struct {
	ExchangeRateID string          `json:"exchangeRateID"`
	BaseCurrency   string          `json:"baseCurrency"`
	TargetCurrency string          `json:"targetCurrency"`
	Rate           decimal.Decimal `json:"rate"`
	RateDate       time.Time       `json:"rateDate"`
	Source         string          `json:"source"`
	AuditFields
}

// RateKey identifies a row in the rate table.
type RateKey struct {
	BaseCurrency   string
	TargetCurrency string
	RateDate       time.Time
}

// Key returns the unique key of the row.
func (r ExchangeRate) Key() RateKey {
	return RateKey{BaseCurrency: r.BaseCurrency, TargetCurrency: r.TargetCurrency, RateDate: DateOf(r.RateDate)}
}

// RateTier names the resolution step that produced a rate.
type RateTier string

const (
	TierIdentity  RateTier = "identity"
	TierDirect    RateTier = "direct"
	TierInverse   RateTier = "inverse"
	TierCross     RateTier = "cross"
	TierRecent    RateTier = "recent"
	TierRefresh   RateTier = "refresh"
	TierEmergency RateTier = "emergency"
)

// ResolvedRate is the answer to rate(from, to, date).
// Degraded is set when the rate came from the static emergency table.
type ResolvedRate struct {
	FromCurrency string          `json:"fromCurrency"`
	ToCurrency   string          `json:"toCurrency"`
	Rate         decimal.Decimal `json:"rate"`
	Date         time.Time       `json:"date"`
	Tier         RateTier        `json:"tier"`
	Degraded     bool            `json:"degraded"`
}

// Reasons passed to a DegradedReporter.
const (
	ReasonEmergencyFallback = "emergency_fallback"
	ReasonSuspiciousRate    = "suspicious_rate"
)
