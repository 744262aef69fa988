// Package memory holds an in-process rate store, used when no database is configured.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/SscSPs/mma_fxrates/internal/apperrors"
	"github.com/SscSPs/mma_fxrates/internal/core/domain"
	portsrepo "github.com/SscSPs/mma_fxrates/internal/core/ports/repositories"
	"github.com/google/uuid"
)

// ExchangeRateRepository keeps rows in a map keyed by (base, target, date).
// It follows the same upsert rules as the Postgres store.
type ExchangeRateRepository struct {
	mu    sync.RWMutex
	items map[domain.RateKey]domain.ExchangeRate
	now   func() time.Time
}

var _ portsrepo.ExchangeRateRepositoryFacade = (*ExchangeRateRepository)(nil)

// NewExchangeRateRepository creates an empty store.
func NewExchangeRateRepository() *ExchangeRateRepository {
	return &ExchangeRateRepository{
		items: make(map[domain.RateKey]domain.ExchangeRate),
		now:   time.Now,
	}
}

func key(base, target string, date time.Time) domain.RateKey {
	return domain.RateKey{
		BaseCurrency:   domain.NormalizeCurrency(base),
		TargetCurrency: domain.NormalizeCurrency(target),
		RateDate:       domain.DateOf(date),
	}
}

func (r *ExchangeRateRepository) GetRate(_ context.Context, base, target string, date time.Time) (*domain.ExchangeRate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	row, ok := r.items[key(base, target, date)]
	if !ok {
		return nil, nil
	}
	return &row, nil
}

func (r *ExchangeRateRepository) GetRecentRate(_ context.Context, base, target string, asOf time.Time, withinDays int) (*domain.ExchangeRate, error) {
	end := domain.DateOf(asOf)
	start := end.AddDate(0, 0, -withinDays)
	base, target = domain.NormalizeCurrency(base), domain.NormalizeCurrency(target)

	r.mu.RLock()
	defer r.mu.RUnlock()
	var best *domain.ExchangeRate
	for k, row := range r.items {
		if k.BaseCurrency != base || k.TargetCurrency != target {
			continue
		}
		if k.RateDate.Before(start) || k.RateDate.After(end) {
			continue
		}
		if best == nil || k.RateDate.After(best.RateDate) {
			row := row
			best = &row
		}
	}
	return best, nil
}

func (r *ExchangeRateRepository) CountForDate(_ context.Context, date time.Time) (int, error) {
	d := domain.DateOf(date)
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for k := range r.items {
		if k.RateDate.Equal(d) {
			n++
		}
	}
	return n, nil
}

// UpsertMany validates the whole batch first, then applies it under one lock.
func (r *ExchangeRateRepository) UpsertMany(_ context.Context, rates []domain.ExchangeRate) error {
	for _, rate := range rates {
		if !rate.Rate.IsPositive() {
			return apperrors.NewPersistenceError("rejected exchange rate row",
				apperrors.NewValidationError("rate for "+rate.BaseCurrency+"/"+rate.TargetCurrency+" must be positive"))
		}
	}

	now := r.now().UTC()
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rate := range rates {
		k := key(rate.BaseCurrency, rate.TargetCurrency, rate.RateDate)
		rate.BaseCurrency, rate.TargetCurrency, rate.RateDate = k.BaseCurrency, k.TargetCurrency, k.RateDate

		existing, ok := r.items[k]
		if ok {
			if existing.Rate.Equal(rate.Rate) && existing.Source == rate.Source {
				continue
			}
			existing.Rate = rate.Rate
			existing.Source = rate.Source
			existing.UpdatedAt = now
			r.items[k] = existing
			continue
		}

		if rate.ExchangeRateID == "" {
			rate.ExchangeRateID = uuid.NewString()
		}
		rate.CreatedAt = now
		rate.UpdatedAt = now
		r.items[k] = rate
	}
	return nil
}

// Len returns the number of stored rows.
func (r *ExchangeRateRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}
