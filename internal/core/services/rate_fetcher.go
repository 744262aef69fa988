package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/mma_fxrates/internal/apperrors"
	"github.com/SscSPs/mma_fxrates/internal/core/domain"
	portssvc "github.com/SscSPs/mma_fxrates/internal/core/ports/services"
)

// RateFetcherOptions bounds and validates provider calls.
type RateFetcherOptions struct {
	ProviderTimeout  time.Duration
	Budget           time.Duration
	MajorCurrencies  []string
	MinMajorCoverage int
}

type rateFetcher struct {
	BaseService
	providers []portssvc.RateProvider
	opts      RateFetcherOptions
}

// NewRateFetcher creates a fetcher that tries providers in the given order.
func NewRateFetcher(providers []portssvc.RateProvider, opts RateFetcherOptions) portssvc.RateFetcherSvc {
	majors := make([]string, 0, len(opts.MajorCurrencies))
	for _, code := range opts.MajorCurrencies {
		majors = append(majors, domain.NormalizeCurrency(code))
	}
	opts.MajorCurrencies = majors
	return &rateFetcher{providers: providers, opts: opts}
}

// Fetch returns the first provider response that passes the coverage check.
func (f *rateFetcher) Fetch(ctx context.Context, baseCurrency string) (*domain.ProviderResponse, error) {
	baseCurrency = domain.NormalizeCurrency(baseCurrency)

	if f.opts.Budget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.opts.Budget)
		defer cancel()
	}

	var lastErr error
	for _, provider := range f.providers {
		if err := ctx.Err(); err != nil {
			lastErr = err
			f.LogWarn(ctx, err, "Fetch budget exhausted before trying provider", slog.String("provider", provider.Name()))
			break
		}

		resp, err := f.fetchOne(ctx, provider, baseCurrency)
		if err != nil {
			lastErr = err
			f.LogWarn(ctx, err, "Rate provider rejected", slog.String("provider", provider.Name()), slog.String("base", baseCurrency))
			continue
		}

		f.LogInfo(ctx, "Rate provider accepted",
			slog.String("provider", provider.Name()),
			slog.String("base", baseCurrency),
			slog.Int("rates", len(resp.Rates)))
		return resp, nil
	}

	if lastErr == nil {
		return nil, fmt.Errorf("%w: no providers configured for %s", apperrors.ErrProviderUnavailable, baseCurrency)
	}
	return nil, fmt.Errorf("%w: %s: %w", apperrors.ErrProviderUnavailable, baseCurrency, lastErr)
}

func (f *rateFetcher) fetchOne(ctx context.Context, provider portssvc.RateProvider, baseCurrency string) (*domain.ProviderResponse, error) {
	if f.opts.ProviderTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.opts.ProviderTimeout)
		defer cancel()
	}

	resp, err := provider.Latest(ctx, baseCurrency)
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, fmt.Errorf("%s: empty response", provider.Name())
	}
	if err := f.checkCoverage(resp, baseCurrency); err != nil {
		return nil, fmt.Errorf("%s: %w", provider.Name(), err)
	}
	return resp, nil
}

// checkCoverage requires MinMajorCoverage majors, other than the base, with positive rates.
// The requirement is capped at the number of majors that could possibly appear.
func (f *rateFetcher) checkCoverage(resp *domain.ProviderResponse, baseCurrency string) error {
	candidates, present := 0, 0
	for _, code := range f.opts.MajorCurrencies {
		if code == baseCurrency {
			continue
		}
		candidates++
		if rate, ok := resp.Rates[code]; ok && rate > 0 {
			present++
		}
	}

	required := f.opts.MinMajorCoverage
	if required > candidates {
		required = candidates
	}
	if present < required {
		return fmt.Errorf("%w: %d of %d required majors", apperrors.ErrInsufficientCoverage, present, required)
	}
	return nil
}
