package mapping

import (
	"github.com/SscSPs/mma_fxrates/internal/core/domain"
	"github.com/SscSPs/mma_fxrates/internal/models"
)

// ToModelExchangeRate converts a domain ExchangeRate to a model ExchangeRate
func ToModelExchangeRate(d domain.ExchangeRate) models.ExchangeRate {
	return models.ExchangeRate{
		ExchangeRateID: d.ExchangeRateID,
		BaseCurrency:   d.BaseCurrency,
		TargetCurrency: d.TargetCurrency,
		Rate:           d.Rate,
		RateDate:       domain.DateOf(d.RateDate),
		Source:         d.Source,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

// ToDomainExchangeRate converts a model ExchangeRate to a domain ExchangeRate
func ToDomainExchangeRate(m models.ExchangeRate) domain.ExchangeRate {
	return domain.ExchangeRate{
		ExchangeRateID: m.ExchangeRateID,
		BaseCurrency:   m.BaseCurrency,
		TargetCurrency: m.TargetCurrency,
		Rate:           m.Rate,
		RateDate:       domain.DateOf(m.RateDate),
		Source:         m.Source,
		AuditFields: domain.AuditFields{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
	}
}
