package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SscSPs/mma_fxrates/internal/apperrors"
	"github.com/SscSPs/mma_fxrates/internal/core/domain"
	portssvc "github.com/SscSPs/mma_fxrates/internal/core/ports/services"
	"github.com/SscSPs/mma_fxrates/internal/core/services"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type RateFetcherTestSuite struct {
	suite.Suite
	first  *MockRateProvider
	second *MockRateProvider
	third  *MockRateProvider
	opts   services.RateFetcherOptions
}

func (s *RateFetcherTestSuite) SetupTest() {
	s.first = newMockProvider("first")
	s.second = newMockProvider("second")
	s.third = newMockProvider("third")
	s.opts = services.RateFetcherOptions{
		ProviderTimeout:  time.Second,
		Budget:           5 * time.Second,
		MajorCurrencies:  []string{"USD", "EUR", "GBP", "JPY", "INR"},
		MinMajorCoverage: 3,
	}
}

func (s *RateFetcherTestSuite) fetcher() portssvc.RateFetcherSvc {
	return services.NewRateFetcher([]portssvc.RateProvider{s.first, s.second, s.third}, s.opts)
}

func TestRateFetcherTestSuite(t *testing.T) {
	suite.Run(t, new(RateFetcherTestSuite))
}

func (s *RateFetcherTestSuite) TestFirstValidProviderWins() {
	resp := inrResponse()
	s.first.On("Latest", mock.Anything, "INR").Return(resp, nil).Once()

	got, err := s.fetcher().Fetch(context.Background(), "inr")

	s.Require().NoError(err)
	s.Equal(resp, got)
	s.first.AssertExpectations(s.T())
	s.second.AssertNotCalled(s.T(), "Latest", mock.Anything, mock.Anything)
	s.third.AssertNotCalled(s.T(), "Latest", mock.Anything, mock.Anything)
}

func (s *RateFetcherTestSuite) TestFailedAndUnderCoveredProvidersAreSkipped() {
	s.first.On("Latest", mock.Anything, "INR").Return(nil, errors.New("503")).Once()
	s.second.On("Latest", mock.Anything, "INR").Return(&domain.ProviderResponse{
		Provider: "second",
		Rates:    map[string]float64{"USD": 0.012, "EUR": 0, "THB": 0.4},
	}, nil).Once()
	resp := inrResponse()
	s.third.On("Latest", mock.Anything, "INR").Return(resp, nil).Once()

	got, err := s.fetcher().Fetch(context.Background(), "INR")

	s.Require().NoError(err)
	s.Equal(resp, got)
	s.first.AssertExpectations(s.T())
	s.second.AssertExpectations(s.T())
	s.third.AssertExpectations(s.T())
}

func (s *RateFetcherTestSuite) TestAllProvidersFail() {
	s.first.On("Latest", mock.Anything, "INR").Return(nil, errors.New("timeout")).Once()
	s.second.On("Latest", mock.Anything, "INR").Return(nil, errors.New("bad body")).Once()
	s.third.On("Latest", mock.Anything, "INR").Return(&domain.ProviderResponse{
		Provider: "third",
		Rates:    map[string]float64{"USD": 0.012},
	}, nil).Once()

	got, err := s.fetcher().Fetch(context.Background(), "INR")

	s.Nil(got)
	s.ErrorIs(err, apperrors.ErrProviderUnavailable)
	s.ErrorIs(err, apperrors.ErrInsufficientCoverage, "last failure reason is kept")
}

func (s *RateFetcherTestSuite) TestCoverageExcludesBaseCurrency() {
	// The first response has only two majors besides USD itself.
	s.opts.MinMajorCoverage = 3
	s.first.On("Latest", mock.Anything, "USD").Return(&domain.ProviderResponse{
		Provider: "first",
		Rates:    map[string]float64{"USD": 1, "EUR": 0.9, "GBP": 0.8},
	}, nil).Once()
	s.second.On("Latest", mock.Anything, "USD").Return(&domain.ProviderResponse{
		Provider: "second",
		Rates:    map[string]float64{"USD": 1, "EUR": 0.9, "GBP": 0.8, "INR": 83},
	}, nil).Once()

	got, err := s.fetcher().Fetch(context.Background(), "USD")

	s.Require().NoError(err)
	s.Equal("second", got.Provider)
}

func (s *RateFetcherTestSuite) TestSlowProviderTimesOutAndNextIsTried() {
	s.opts.ProviderTimeout = 50 * time.Millisecond
	s.first.On("Latest", mock.Anything, "INR").
		Run(func(args mock.Arguments) {
			<-args.Get(0).(context.Context).Done()
		}).
		Return(nil, context.DeadlineExceeded).Once()
	resp := inrResponse()
	s.second.On("Latest", mock.Anything, "INR").Return(resp, nil).Once()

	start := time.Now()
	got, err := s.fetcher().Fetch(context.Background(), "INR")

	s.Require().NoError(err)
	s.Equal(resp, got)
	s.Less(time.Since(start), time.Second)
}

func (s *RateFetcherTestSuite) TestBudgetStopsRemainingProviders() {
	s.opts.ProviderTimeout = time.Second
	s.opts.Budget = 50 * time.Millisecond
	s.first.On("Latest", mock.Anything, "INR").
		Run(func(args mock.Arguments) {
			<-args.Get(0).(context.Context).Done()
		}).
		Return(nil, context.DeadlineExceeded).Once()

	got, err := s.fetcher().Fetch(context.Background(), "INR")

	s.Nil(got)
	s.ErrorIs(err, apperrors.ErrProviderUnavailable)
	s.second.AssertNotCalled(s.T(), "Latest", mock.Anything, mock.Anything)
}

func (s *RateFetcherTestSuite) TestNoProviders() {
	_, err := services.NewRateFetcher(nil, s.opts).Fetch(context.Background(), "INR")
	s.ErrorIs(err, apperrors.ErrProviderUnavailable)
}
