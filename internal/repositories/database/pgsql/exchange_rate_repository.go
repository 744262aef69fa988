package pgsql

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/SscSPs/mma_fxrates/internal/apperrors"
	"github.com/SscSPs/mma_fxrates/internal/core/domain"
	portsrepo "github.com/SscSPs/mma_fxrates/internal/core/ports/repositories"
	"github.com/SscSPs/mma_fxrates/internal/models"
	"github.com/SscSPs/mma_fxrates/internal/utils/mapping"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const selectExchangeRateColumns = `
	SELECT
		exchange_rate_id, base_currency, target_currency, rate, rate_date,
		source, created_at, updated_at
	FROM exchange_rates`

// upsertExchangeRateSQL only touches an existing row when rate or source actually changed,
// so replaying the same batch leaves updated_at alone.
const upsertExchangeRateSQL = `
	INSERT INTO exchange_rates (
		exchange_rate_id, base_currency, target_currency, rate, rate_date,
		source, created_at, updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (base_currency, target_currency, rate_date) DO UPDATE SET
		rate = EXCLUDED.rate,
		source = EXCLUDED.source,
		updated_at = EXCLUDED.updated_at
	WHERE exchange_rates.rate IS DISTINCT FROM EXCLUDED.rate
		OR exchange_rates.source IS DISTINCT FROM EXCLUDED.source`

// PgxExchangeRateRepository implements the ExchangeRateRepositoryFacade interface using pgxpool.
type PgxExchangeRateRepository struct {
	BaseRepository
}

func newPgxExchangeRateRepository(db *pgxpool.Pool) *PgxExchangeRateRepository {
	return &PgxExchangeRateRepository{
		BaseRepository: BaseRepository{Pool: db},
	}
}

// NewExchangeRateRepository creates a new Postgres-backed rate store.
func NewExchangeRateRepository(db *pgxpool.Pool) portsrepo.ExchangeRateRepositoryFacade {
	return newPgxExchangeRateRepository(db)
}

// GetRate retrieves the row for an exact currency pair and date.
func (r *PgxExchangeRateRepository) GetRate(ctx context.Context, base, target string, date time.Time) (*domain.ExchangeRate, error) {
	query := selectExchangeRateColumns + `
	WHERE base_currency = $1 AND target_currency = $2 AND rate_date = $3;`

	row := r.Pool.QueryRow(ctx, query, strings.ToUpper(base), strings.ToUpper(target), domain.DateOf(date))
	return scanExchangeRate(row, "failed to get exchange rate")
}

// GetRecentRate retrieves the most recent row for the pair dated no earlier than asOf-withinDays
// and no later than asOf.
func (r *PgxExchangeRateRepository) GetRecentRate(ctx context.Context, base, target string, asOf time.Time, withinDays int) (*domain.ExchangeRate, error) {
	query := selectExchangeRateColumns + `
	WHERE base_currency = $1 AND target_currency = $2
		AND rate_date >= $3 AND rate_date <= $4
	ORDER BY rate_date DESC
	LIMIT 1;`

	end := domain.DateOf(asOf)
	start := end.AddDate(0, 0, -withinDays)
	row := r.Pool.QueryRow(ctx, query, strings.ToUpper(base), strings.ToUpper(target), start, end)
	return scanExchangeRate(row, "failed to get recent exchange rate")
}

// CountForDate counts rows stored for the given date.
func (r *PgxExchangeRateRepository) CountForDate(ctx context.Context, date time.Time) (int, error) {
	var count int
	err := r.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM exchange_rates WHERE rate_date = $1;`, domain.DateOf(date)).Scan(&count)
	if err != nil {
		return 0, apperrors.NewPersistenceError("failed to count exchange rates", err)
	}
	return count, nil
}

// UpsertMany writes the whole batch in one transaction.
// Conflicting keys overwrite rate, source and updated_at; created_at keeps its original value.
func (r *PgxExchangeRateRepository) UpsertMany(ctx context.Context, rates []domain.ExchangeRate) error {
	if len(rates) == 0 {
		return nil
	}

	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	batch := &pgx.Batch{}
	for _, rate := range rates {
		m := mapping.ToModelExchangeRate(rate)
		m.BaseCurrency = strings.ToUpper(m.BaseCurrency)
		m.TargetCurrency = strings.ToUpper(m.TargetCurrency)
		if m.ExchangeRateID == "" {
			m.ExchangeRateID = uuid.NewString()
		}
		if m.CreatedAt.IsZero() {
			m.CreatedAt = now
		}
		if m.UpdatedAt.IsZero() {
			m.UpdatedAt = now
		}
		batch.Queue(upsertExchangeRateSQL,
			m.ExchangeRateID, m.BaseCurrency, m.TargetCurrency, m.Rate, m.RateDate,
			m.Source, m.CreatedAt, m.UpdatedAt,
		)
	}

	results := tx.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			_ = r.Rollback(ctx, tx)
			return apperrors.NewPersistenceError("failed to upsert exchange rates", err)
		}
	}
	if err := results.Close(); err != nil {
		_ = r.Rollback(ctx, tx)
		return apperrors.NewPersistenceError("failed to close upsert batch", err)
	}

	return r.Commit(ctx, tx)
}

func scanExchangeRate(row pgx.Row, failMsg string) (*domain.ExchangeRate, error) {
	var m models.ExchangeRate
	err := row.Scan(
		&m.ExchangeRateID, &m.BaseCurrency, &m.TargetCurrency, &m.Rate, &m.RateDate,
		&m.Source, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, apperrors.NewPersistenceError(failMsg, err)
	}

	d := mapping.ToDomainExchangeRate(m)
	return &d, nil
}
