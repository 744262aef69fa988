package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/SscSPs/mma_fxrates/internal/apperrors"
	"github.com/SscSPs/mma_fxrates/internal/core/domain"
	portssvc "github.com/SscSPs/mma_fxrates/internal/core/ports/services"
	"github.com/SscSPs/mma_fxrates/internal/utils"
	"github.com/shopspring/decimal"
)

type conversionService struct {
	BaseService
	resolver  portssvc.RateResolverSvc
	validator portssvc.ConversionValidatorSvc
	reporter  portssvc.DegradedReporter
	clock     domain.Clock
	anchor    string
}

// NewConversionService creates the conversion facade. reporter may be nil.
func NewConversionService(resolver portssvc.RateResolverSvc, validator portssvc.ConversionValidatorSvc, reporter portssvc.DegradedReporter, clock domain.Clock, anchorCurrency string) portssvc.ConversionSvcFacade {
	if clock == nil {
		clock = domain.SystemClock{}
	}
	return &conversionService{
		resolver:  resolver,
		validator: validator,
		reporter:  reporter,
		clock:     clock,
		anchor:    domain.NormalizeCurrency(anchorCurrency),
	}
}

func (s *conversionService) AnchorCurrency() string { return s.anchor }

// Convert resolves, validates high-risk pairs, and rounds to minor units.
// A rate that fails validation is replaced by the emergency table's answer.
func (s *conversionService) Convert(ctx context.Context, amount decimal.Decimal, fromCurrency, toCurrency string, date *time.Time) (*domain.ConversionResult, bool) {
	fromCurrency = domain.NormalizeCurrency(fromCurrency)
	toCurrency = domain.NormalizeCurrency(toCurrency)

	rate, ok := s.resolver.Resolve(ctx, fromCurrency, toCurrency, date)
	if !ok {
		return nil, false
	}

	if s.validator != nil && s.validator.IsHighRisk(fromCurrency, toCurrency) && !s.validator.IsPlausible(rate.Rate, fromCurrency, toCurrency) {
		s.LogWarn(ctx, apperrors.ErrSuspiciousRate, "Rejected implausible rate, using emergency table",
			slog.String("from", fromCurrency),
			slog.String("to", toCurrency),
			slog.String("rate", rate.Rate.String()),
			slog.String("tier", string(rate.Tier)))
		if s.reporter != nil {
			s.reporter.RateDegraded(fromCurrency, toCurrency, domain.ReasonSuspiciousRate)
		}

		rate, ok = s.resolver.ResolveEmergency(ctx, fromCurrency, toCurrency, date)
		if !ok {
			return nil, false
		}
	}

	return &domain.ConversionResult{
		OriginalAmount:  amount,
		FromCurrency:    fromCurrency,
		ToCurrency:      toCurrency,
		ConvertedAmount: utils.RoundToMinorUnits(amount.Mul(rate.Rate)),
		ExchangeRate:    rate.Rate,
		ConversionDate:  rate.Date,
		Tier:            rate.Tier,
		Degraded:        rate.Degraded,
	}, true
}

// ConvertToAnchor returns amount unchanged when it is already in the anchor currency.
func (s *conversionService) ConvertToAnchor(ctx context.Context, amount decimal.Decimal, fromCurrency string, date *time.Time) (*domain.ConversionResult, bool) {
	fromCurrency = domain.NormalizeCurrency(fromCurrency)
	if fromCurrency != s.anchor {
		return s.Convert(ctx, amount, fromCurrency, s.anchor, date)
	}

	conversionDate := domain.DateOf(s.clock.Now())
	if date != nil {
		conversionDate = domain.DateOf(*date)
	}
	return &domain.ConversionResult{
		OriginalAmount:  amount,
		FromCurrency:    fromCurrency,
		ToCurrency:      s.anchor,
		ConvertedAmount: amount,
		ExchangeRate:    decimal.NewFromInt(1),
		ConversionDate:  conversionDate,
		Tier:            domain.TierIdentity,
	}, true
}
