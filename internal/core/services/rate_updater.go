package services

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/SscSPs/mma_fxrates/internal/core/domain"
	portsrepo "github.com/SscSPs/mma_fxrates/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/mma_fxrates/internal/core/ports/services"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

type rateUpdater struct {
	BaseService
	repo    portsrepo.ExchangeRateRepositoryFacade
	fetcher portssvc.RateFetcherSvc
	clock   domain.Clock
	majors  []string
	// group collapses concurrent refreshes of the same base into one fetch-and-upsert.
	group singleflight.Group
}

// NewRateUpdater creates the refresh pipeline. majors lists the currencies that also get inverse rows.
func NewRateUpdater(repo portsrepo.ExchangeRateRepositoryFacade, fetcher portssvc.RateFetcherSvc, clock domain.Clock, majors []string) portssvc.RateUpdaterSvc {
	if clock == nil {
		clock = domain.SystemClock{}
	}
	normalized := make([]string, 0, len(majors))
	for _, code := range majors {
		normalized = append(normalized, domain.NormalizeCurrency(code))
	}
	return &rateUpdater{repo: repo, fetcher: fetcher, clock: clock, majors: normalized}
}

// Refresh never returns an error; a false result means today's rows were not written.
// Callers that join an in-flight refresh for the same base share its result.
func (u *rateUpdater) Refresh(ctx context.Context, baseCurrency string, force bool) bool {
	baseCurrency = domain.NormalizeCurrency(baseCurrency)

	// The first caller's cancellation must not fail every joined caller; the fetch budget bounds the work.
	flightCtx := context.WithoutCancel(ctx)
	v, _, shared := u.group.Do(baseCurrency, func() (any, error) {
		return u.refresh(flightCtx, baseCurrency, force), nil
	})
	if shared {
		u.LogDebug(ctx, "Joined in-flight refresh", slog.String("base", baseCurrency))
	}
	return v.(bool)
}

func (u *rateUpdater) refresh(ctx context.Context, baseCurrency string, force bool) bool {
	today := domain.DateOf(u.clock.Now())

	if !force {
		n, err := u.repo.CountForDate(ctx, today)
		switch {
		case err != nil:
			u.LogWarn(ctx, err, "Could not count today's rates, fetching anyway")
		case n > 0:
			u.LogDebug(ctx, "Rates already present for today, skipping refresh", slog.Int("rows", n))
			return true
		}
	}

	resp, err := u.fetcher.Fetch(ctx, baseCurrency)
	if err != nil {
		u.LogWarn(ctx, err, "Rate refresh failed: no usable provider", slog.String("base", baseCurrency))
		return false
	}

	rows := u.buildRows(resp, baseCurrency, today)
	if len(rows) == 0 {
		u.LogWarn(ctx, nil, "Rate refresh produced no rows", slog.String("provider", resp.Provider))
		return false
	}

	if err := u.repo.UpsertMany(ctx, rows); err != nil {
		u.LogError(ctx, err, "Failed to persist refreshed rates", slog.String("provider", resp.Provider), slog.Int("rows", len(rows)))
		return false
	}

	u.LogInfo(ctx, "Exchange rates refreshed",
		slog.String("base", baseCurrency),
		slog.String("provider", resp.Provider),
		slog.Bool("forced", force),
		slog.Int("rows", len(rows)))
	return true
}

// buildRows emits base->X for every currency and X->base for majors. Non-positive rates are skipped.
func (u *rateUpdater) buildRows(resp *domain.ProviderResponse, baseCurrency string, today time.Time) []domain.ExchangeRate {
	rows := make([]domain.ExchangeRate, 0, len(resp.Rates)+len(u.majors))
	newRow := func(base, target string, rate decimal.Decimal) domain.ExchangeRate {
		return domain.ExchangeRate{
			ExchangeRateID: uuid.NewString(),
			BaseCurrency:   base,
			TargetCurrency: target,
			Rate:           rate,
			RateDate:       today,
			Source:         resp.Provider,
		}
	}

	for code, raw := range resp.Rates {
		code = domain.NormalizeCurrency(code)
		if code == baseCurrency || !usableRate(raw) {
			continue
		}
		rows = append(rows, newRow(baseCurrency, code, decimal.NewFromFloat(raw)))
	}

	for _, code := range u.majors {
		if code == baseCurrency {
			continue
		}
		raw, ok := resp.Rates[code]
		if !ok || !usableRate(raw) {
			continue
		}
		rows = append(rows, newRow(code, baseCurrency, decimal.NewFromInt(1).Div(decimal.NewFromFloat(raw))))
	}
	return rows
}

func usableRate(f float64) bool {
	return f > 0 && !math.IsInf(f, 0) && !math.IsNaN(f)
}
