package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/SscSPs/mma_fxrates/internal/core/domain"
	portssvc "github.com/SscSPs/mma_fxrates/internal/core/ports/services"
	"github.com/SscSPs/mma_fxrates/internal/core/services"
	"github.com/SscSPs/mma_fxrates/internal/repositories/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type ConversionServiceTestSuite struct {
	suite.Suite
	resolver  *MockRateResolver
	reporter  *recordingReporter
	validator portssvc.ConversionValidatorSvc
	service   portssvc.ConversionSvcFacade
}

func (s *ConversionServiceTestSuite) SetupTest() {
	s.resolver = new(MockRateResolver)
	s.reporter = &recordingReporter{}
	s.validator = services.NewConversionValidator(map[string]decimal.Decimal{"USD/INR": dec("50")})
	s.service = services.NewConversionService(s.resolver, s.validator, s.reporter, testClock, "inr")
}

func TestConversionServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ConversionServiceTestSuite))
}

func resolved(from, to, rate string, tier domain.RateTier) *domain.ResolvedRate {
	return &domain.ResolvedRate{
		FromCurrency: from,
		ToCurrency:   to,
		Rate:         dec(rate),
		Date:         testDay,
		Tier:         tier,
		Degraded:     tier == domain.TierEmergency,
	}
}

func (s *ConversionServiceTestSuite) TestConvertRoundsToMinorUnits() {
	s.resolver.On("Resolve", mock.Anything, "EUR", "USD", (*time.Time)(nil)).
		Return(resolved("EUR", "USD", "1.0837", domain.TierDirect), true).Once()

	res, ok := s.service.Convert(context.Background(), dec("99.99"), "eur", "usd", nil)

	s.Require().True(ok)
	s.Equal("108.36", res.ConvertedAmount.String())
	s.True(res.ExchangeRate.Equal(dec("1.0837")))
	s.True(res.OriginalAmount.Equal(dec("99.99")))
	s.Equal(testDay, res.ConversionDate)
	s.Equal(domain.TierDirect, res.Tier)
	s.False(res.Degraded)
	s.resolver.AssertNotCalled(s.T(), "ResolveEmergency", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *ConversionServiceTestSuite) TestConvertAbsentWhenUnresolvable() {
	s.resolver.On("Resolve", mock.Anything, "XAU", "INR", (*time.Time)(nil)).Return(nil, false).Once()

	res, ok := s.service.Convert(context.Background(), dec("1"), "XAU", "INR", nil)
	s.False(ok)
	s.Nil(res)
}

func (s *ConversionServiceTestSuite) TestSuspiciousRateFallsBackToEmergency() {
	s.resolver.On("Resolve", mock.Anything, "USD", "INR", (*time.Time)(nil)).
		Return(resolved("USD", "INR", "0.012", domain.TierDirect), true).Once()
	s.resolver.On("ResolveEmergency", mock.Anything, "USD", "INR", (*time.Time)(nil)).
		Return(resolved("USD", "INR", "85", domain.TierEmergency), true).Once()

	res, ok := s.service.Convert(context.Background(), dec("10"), "USD", "INR", nil)

	s.Require().True(ok)
	s.Equal("850", res.ConvertedAmount.String())
	s.True(res.Degraded)
	s.Equal(domain.TierEmergency, res.Tier)
	s.Equal([]string{domain.ReasonSuspiciousRate}, s.reporter.Reasons())
	s.resolver.AssertExpectations(s.T())
}

func (s *ConversionServiceTestSuite) TestPlausibleHighRiskRateIsKept() {
	s.resolver.On("Resolve", mock.Anything, "USD", "INR", (*time.Time)(nil)).
		Return(resolved("USD", "INR", "83.1", domain.TierDirect), true).Once()

	res, ok := s.service.Convert(context.Background(), dec("2"), "USD", "INR", nil)

	s.Require().True(ok)
	s.Equal("166.2", res.ConvertedAmount.String())
	s.Empty(s.reporter.Reasons())
}

func (s *ConversionServiceTestSuite) TestConvertToAnchorShortCircuits() {
	d := date("2024-12-31")
	res, ok := s.service.ConvertToAnchor(context.Background(), dec("12.345"), "inr", d)

	s.Require().True(ok)
	s.True(res.ConvertedAmount.Equal(dec("12.345")), "amount is returned unchanged")
	s.True(res.ExchangeRate.Equal(decimal.NewFromInt(1)))
	s.Equal(*d, res.ConversionDate)
	s.Equal("INR", s.service.AnchorCurrency())
	s.resolver.AssertNotCalled(s.T(), "Resolve", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *ConversionServiceTestSuite) TestConvertToAnchorUsesResolver() {
	d := date("2024-12-31")
	s.resolver.On("Resolve", mock.Anything, "USD", "INR", d).
		Return(resolved("USD", "INR", "85.5", domain.TierRecent), true).Once()

	res, ok := s.service.ConvertToAnchor(context.Background(), dec("3"), "USD", d)

	s.Require().True(ok)
	s.Equal("256.5", res.ConvertedAmount.String())
	s.Equal("INR", res.ToCurrency)
}

// The corrupted-row property end to end: a backward USD/INR row must never be used.
func TestConvert_CorruptedDirectRateUsesEmergencyTable(t *testing.T) {
	store := memory.NewExchangeRateRepository()
	err := store.UpsertMany(context.Background(), []domain.ExchangeRate{{
		BaseCurrency: "USD", TargetCurrency: "INR", Rate: dec("0.0118"), RateDate: testDay, Source: "corrupt",
	}})
	if err != nil {
		t.Fatal(err)
	}

	resolver := services.NewRateResolver(store, nil, emergencyTable(),
		services.RateResolverOptions{AnchorCurrency: "INR", StalenessWindowDays: 7},
		services.WithResolverClock(testClock))
	validator := services.NewConversionValidator(map[string]decimal.Decimal{"USD/INR": dec("50")})
	svc := services.NewConversionService(resolver, validator, nil, testClock, "INR")

	res, ok := svc.Convert(context.Background(), dec("100"), "USD", "INR", nil)
	if !ok {
		t.Fatal("expected a result")
	}
	if !res.ConvertedAmount.Equal(dec("8500")) || !res.Degraded {
		t.Fatalf("expected emergency conversion 8500, got %s degraded=%v", res.ConvertedAmount, res.Degraded)
	}
}
