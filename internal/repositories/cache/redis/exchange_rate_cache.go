// Package redis decorates a rate store with a Redis cache for exact-date lookups.
// Rows are immutable per date except under a forced refresh, which invalidates the affected keys.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/mma_fxrates/internal/core/domain"
	portsrepo "github.com/SscSPs/mma_fxrates/internal/core/ports/repositories"
	goredis "github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
)

const keyPrefix = "fx:rate"

// cachedRate is the JSON value stored per key.
type cachedRate struct {
	ID        string          `json:"id"`
	Rate      decimal.Decimal `json:"rate"`
	Source    string          `json:"source"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// CachingExchangeRateRepository wraps another store. Redis failures are logged and
// the call falls through to the wrapped store.
type CachingExchangeRateRepository struct {
	next   portsrepo.ExchangeRateRepositoryFacade
	client goredis.Cmdable
	ttl    time.Duration
	logger *slog.Logger
}

var _ portsrepo.ExchangeRateRepositoryFacade = (*CachingExchangeRateRepository)(nil)

// NewClient builds a go-redis client from connection settings.
func NewClient(addr, password string, db int) *goredis.Client {
	return goredis.NewClient(&goredis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})
}

// NewCachingExchangeRateRepository decorates next with a Redis cache.
func NewCachingExchangeRateRepository(next portsrepo.ExchangeRateRepositoryFacade, client goredis.Cmdable, ttl time.Duration, logger *slog.Logger) *CachingExchangeRateRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachingExchangeRateRepository{next: next, client: client, ttl: ttl, logger: logger}
}

func cacheKey(base, target string, date time.Time) string {
	return fmt.Sprintf("%s:%s:%s:%s", keyPrefix,
		domain.NormalizeCurrency(base), domain.NormalizeCurrency(target), domain.DateOf(date).Format(domain.DateLayout))
}

func encode(rate domain.ExchangeRate) (string, error) {
	b, err := json.Marshal(cachedRate{
		ID:        rate.ExchangeRateID,
		Rate:      rate.Rate,
		Source:    rate.Source,
		CreatedAt: rate.CreatedAt,
		UpdatedAt: rate.UpdatedAt,
	})
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decode(base, target string, date time.Time, raw string) (*domain.ExchangeRate, error) {
	var c cachedRate
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return nil, err
	}
	if !c.Rate.IsPositive() {
		return nil, fmt.Errorf("cached rate for %s/%s is not positive", base, target)
	}
	return &domain.ExchangeRate{
		ExchangeRateID: c.ID,
		BaseCurrency:   domain.NormalizeCurrency(base),
		TargetCurrency: domain.NormalizeCurrency(target),
		Rate:           c.Rate,
		RateDate:       domain.DateOf(date),
		Source:         c.Source,
		AuditFields:    domain.AuditFields{CreatedAt: c.CreatedAt, UpdatedAt: c.UpdatedAt},
	}, nil
}

// GetRate serves exact-date lookups from Redis, populating it on a store hit.
// Misses are not cached because a later refresh may add the row.
func (r *CachingExchangeRateRepository) GetRate(ctx context.Context, base, target string, date time.Time) (*domain.ExchangeRate, error) {
	k := cacheKey(base, target, date)
	raw, err := r.client.Get(ctx, k).Result()
	switch {
	case err == nil:
		rate, decErr := decode(base, target, date, raw)
		if decErr == nil {
			return rate, nil
		}
		r.logger.Warn("Discarding unreadable cached exchange rate", slog.String("key", k), slog.String("error", decErr.Error()))
	case !errors.Is(err, goredis.Nil):
		r.logger.Warn("Redis read failed, falling back to store", slog.String("key", k), slog.String("error", err.Error()))
	}

	rate, err := r.next.GetRate(ctx, base, target, date)
	if err != nil || rate == nil {
		return rate, err
	}
	if val, encErr := encode(*rate); encErr == nil {
		if setErr := r.client.Set(ctx, k, val, r.ttl).Err(); setErr != nil {
			r.logger.Warn("Redis write failed", slog.String("key", k), slog.String("error", setErr.Error()))
		}
	}
	return rate, nil
}

// GetRecentRate depends on the current window, so it always hits the store.
func (r *CachingExchangeRateRepository) GetRecentRate(ctx context.Context, base, target string, asOf time.Time, withinDays int) (*domain.ExchangeRate, error) {
	return r.next.GetRecentRate(ctx, base, target, asOf, withinDays)
}

func (r *CachingExchangeRateRepository) CountForDate(ctx context.Context, date time.Time) (int, error) {
	return r.next.CountForDate(ctx, date)
}

// UpsertMany writes to the store, then drops the affected keys so the next read
// picks up the stored row with its real audit fields.
func (r *CachingExchangeRateRepository) UpsertMany(ctx context.Context, rates []domain.ExchangeRate) error {
	if err := r.next.UpsertMany(ctx, rates); err != nil {
		return err
	}
	if len(rates) == 0 {
		return nil
	}
	keys := make([]string, 0, len(rates))
	for _, rate := range rates {
		keys = append(keys, cacheKey(rate.BaseCurrency, rate.TargetCurrency, rate.RateDate))
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		r.logger.Warn("Redis invalidation failed", slog.Int("keys", len(keys)), slog.String("error", err.Error()))
	}
	return nil
}
