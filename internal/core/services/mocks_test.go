package services_test

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/SscSPs/mma_fxrates/internal/core/domain"
	"github.com/stretchr/testify/mock"
)

// --- Mock RateProvider ---
type MockRateProvider struct {
	mock.Mock
	name string
}

func newMockProvider(name string) *MockRateProvider {
	return &MockRateProvider{name: name}
}

func (m *MockRateProvider) Name() string { return m.name }

func (m *MockRateProvider) Latest(ctx context.Context, baseCurrency string) (*domain.ProviderResponse, error) {
	args := m.Called(ctx, baseCurrency)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProviderResponse), args.Error(1)
}

// --- Mock ExchangeRateRepository ---
type MockExchangeRateRepository struct {
	mock.Mock
}

func (m *MockExchangeRateRepository) GetRate(ctx context.Context, base, target string, date time.Time) (*domain.ExchangeRate, error) {
	args := m.Called(ctx, base, target, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExchangeRate), args.Error(1)
}

func (m *MockExchangeRateRepository) GetRecentRate(ctx context.Context, base, target string, asOf time.Time, withinDays int) (*domain.ExchangeRate, error) {
	args := m.Called(ctx, base, target, asOf, withinDays)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExchangeRate), args.Error(1)
}

func (m *MockExchangeRateRepository) CountForDate(ctx context.Context, date time.Time) (int, error) {
	args := m.Called(ctx, date)
	return args.Int(0), args.Error(1)
}

func (m *MockExchangeRateRepository) UpsertMany(ctx context.Context, rates []domain.ExchangeRate) error {
	args := m.Called(ctx, rates)
	return args.Error(0)
}

// --- Mock RateUpdater ---
type MockRateUpdater struct {
	mock.Mock
}

func (m *MockRateUpdater) Refresh(ctx context.Context, baseCurrency string, force bool) bool {
	args := m.Called(ctx, baseCurrency, force)
	return args.Bool(0)
}

// --- Mock RateResolver ---
type MockRateResolver struct {
	mock.Mock
}

func (m *MockRateResolver) Resolve(ctx context.Context, fromCurrency, toCurrency string, date *time.Time) (*domain.ResolvedRate, bool) {
	args := m.Called(ctx, fromCurrency, toCurrency, date)
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}
	return args.Get(0).(*domain.ResolvedRate), args.Bool(1)
}

func (m *MockRateResolver) ResolveEmergency(ctx context.Context, fromCurrency, toCurrency string, date *time.Time) (*domain.ResolvedRate, bool) {
	args := m.Called(ctx, fromCurrency, toCurrency, date)
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}
	return args.Get(0).(*domain.ResolvedRate), args.Bool(1)
}

// recordingReporter captures DegradedReporter calls.
type recordingReporter struct {
	mu      sync.Mutex
	reasons []string
}

func (r *recordingReporter) RateDegraded(_, _ string, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reasons = append(r.reasons, reason)
}

func (r *recordingReporter) Reasons() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.reasons...)
}

// countingFetcher returns a canned response and counts calls. When gate is non-nil each
// call blocks until it is closed.
type countingFetcher struct {
	calls atomic.Int32
	resp  *domain.ProviderResponse
	err   error
	gate  chan struct{}
}

func (f *countingFetcher) Fetch(ctx context.Context, _ string) (*domain.ProviderResponse, error) {
	f.calls.Add(1)
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.resp, f.err
}

func inrResponse() *domain.ProviderResponse {
	return &domain.ProviderResponse{
		Provider:     "test_provider",
		BaseCurrency: "INR",
		Rates: map[string]float64{
			"INR": 1,
			"USD": 0.0125,
			"EUR": 0.0100,
			"GBP": 0.0080,
			"THB": 0.40,
			"XXX": 0,
		},
	}
}
