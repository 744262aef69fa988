package services

import (
	"context"
	"time"

	"github.com/SscSPs/mma_fxrates/internal/core/domain"
	"github.com/shopspring/decimal"
)

// RateProvider is one external source of rates for a base currency.
type RateProvider interface {
	Name() string
	Latest(ctx context.Context, baseCurrency string) (*domain.ProviderResponse, error)
}

// RateFetcherSvc queries the ordered provider list and returns the first response that passes coverage checks.
type RateFetcherSvc interface {
	Fetch(ctx context.Context, baseCurrency string) (*domain.ProviderResponse, error)
}

// RateUpdaterSvc turns a provider response into forward and inverse rows.
type RateUpdaterSvc interface {
	// Refresh returns true when today's rows exist after the call.
	Refresh(ctx context.Context, baseCurrency string, force bool) bool
}

// RateResolverSvc answers rate(from, to, date). A nil date means today.
type RateResolverSvc interface {
	Resolve(ctx context.Context, fromCurrency, toCurrency string, date *time.Time) (*domain.ResolvedRate, bool)

	// ResolveEmergency consults only the static emergency table.
	ResolveEmergency(ctx context.Context, fromCurrency, toCurrency string, date *time.Time) (*domain.ResolvedRate, bool)
}

// ConversionValidatorSvc rejects rates of implausible magnitude for high-risk pairs.
type ConversionValidatorSvc interface {
	IsPlausible(rate decimal.Decimal, fromCurrency, toCurrency string) bool
	IsHighRisk(fromCurrency, toCurrency string) bool
}

// ConversionSvcFacade is the public conversion entry point for document totals.
type ConversionSvcFacade interface {
	Convert(ctx context.Context, amount decimal.Decimal, fromCurrency, toCurrency string, date *time.Time) (*domain.ConversionResult, bool)
	ConvertToAnchor(ctx context.Context, amount decimal.Decimal, fromCurrency string, date *time.Time) (*domain.ConversionResult, bool)
	AnchorCurrency() string
}

// DegradedReporter is notified when an answer falls back to the emergency table or a rate is rejected.
type DegradedReporter interface {
	RateDegraded(fromCurrency, toCurrency string, reason string)
}
