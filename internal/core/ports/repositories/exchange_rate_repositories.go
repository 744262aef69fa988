package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/mma_fxrates/internal/core/domain"
)

// ExchangeRateReader defines read operations for the rate table.
// Reads return (nil, nil) when no row matches; an error always means the store failed.
type ExchangeRateReader interface {
	// GetRate returns the row for an exact (base, target, date).
	GetRate(ctx context.Context, base, target string, date time.Time) (*domain.ExchangeRate, error)

	// GetRecentRate returns the latest row for the pair dated within [asOf-withinDays, asOf].
	GetRecentRate(ctx context.Context, base, target string, asOf time.Time, withinDays int) (*domain.ExchangeRate, error)

	// CountForDate returns how many rows exist for the given date.
	CountForDate(ctx context.Context, date time.Time) (int, error)
}

// ExchangeRateWriter defines write operations for the rate table.
type ExchangeRateWriter interface {
	// UpsertMany inserts rows, overwriting rate and source on key conflict while keeping created_at.
	UpsertMany(ctx context.Context, rates []domain.ExchangeRate) error
}

// ExchangeRateRepositoryFacade combines all exchange rate repository interfaces.
type ExchangeRateRepositoryFacade interface {
	ExchangeRateReader
	ExchangeRateWriter
}
