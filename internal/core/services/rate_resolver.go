package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/SscSPs/mma_fxrates/internal/apperrors"
	"github.com/SscSPs/mma_fxrates/internal/core/domain"
	portsrepo "github.com/SscSPs/mma_fxrates/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/mma_fxrates/internal/core/ports/services"
	"github.com/shopspring/decimal"
)

// rateQuery is the state shared by the tiers of one Resolve call.
type rateQuery struct {
	from, to string
	date     time.Time
	isToday  bool
	// storeFailed is set when any store read errors; the refresh tier is then skipped.
	storeFailed bool
}

// rateTier is one step of the resolution chain. Tiers are tried in order and the first hit wins.
type rateTier struct {
	name    domain.RateTier
	resolve func(ctx context.Context, q *rateQuery) (*domain.ResolvedRate, bool)
}

// RateResolverOptions configures the resolver.
type RateResolverOptions struct {
	AnchorCurrency      string
	StalenessWindowDays int
}

type rateResolver struct {
	BaseService
	repo      portsrepo.ExchangeRateReader
	updater   portssvc.RateUpdaterSvc
	emergency *EmergencyTable
	reporter  portssvc.DegradedReporter
	clock     domain.Clock
	anchor    string
	window    int
	tiers     []rateTier
}

// RateResolverOption is a configuration option for the resolver.
type RateResolverOption func(*rateResolver)

// WithDegradedReporter sets the sink notified of emergency answers.
func WithDegradedReporter(reporter portssvc.DegradedReporter) RateResolverOption {
	return func(r *rateResolver) {
		r.reporter = reporter
	}
}

// WithResolverClock sets the clock that defines "today".
func WithResolverClock(clock domain.Clock) RateResolverOption {
	return func(r *rateResolver) {
		r.clock = clock
	}
}

// NewRateResolver creates the tiered resolver. updater may be nil, which disables the refresh tier.
func NewRateResolver(repo portsrepo.ExchangeRateReader, updater portssvc.RateUpdaterSvc, emergency *EmergencyTable, opts RateResolverOptions, options ...RateResolverOption) portssvc.RateResolverSvc {
	r := &rateResolver{
		repo:      repo,
		updater:   updater,
		emergency: emergency,
		clock:     domain.SystemClock{},
		anchor:    domain.NormalizeCurrency(opts.AnchorCurrency),
		window:    opts.StalenessWindowDays,
	}
	for _, option := range options {
		option(r)
	}
	r.tiers = []rateTier{
		{name: domain.TierIdentity, resolve: r.identity},
		{name: domain.TierDirect, resolve: r.direct},
		{name: domain.TierInverse, resolve: r.inverse},
		{name: domain.TierCross, resolve: r.cross},
		{name: domain.TierRecent, resolve: r.recent},
		{name: domain.TierRefresh, resolve: r.refreshThenRetry},
		{name: domain.TierEmergency, resolve: r.emergencyFallback},
	}
	return r
}

func (r *rateResolver) newQuery(from, to string, date *time.Time) *rateQuery {
	today := domain.DateOf(r.clock.Now())
	q := &rateQuery{
		from:    domain.NormalizeCurrency(from),
		to:      domain.NormalizeCurrency(to),
		date:    today,
		isToday: true,
	}
	if date != nil {
		q.date = domain.DateOf(*date)
		q.isToday = q.date.Equal(today)
	}
	return q
}

// Resolve walks the tiers in order. Missing data yields (nil, false), never an error.
func (r *rateResolver) Resolve(ctx context.Context, fromCurrency, toCurrency string, date *time.Time) (*domain.ResolvedRate, bool) {
	q := r.newQuery(fromCurrency, toCurrency, date)
	if q.from == "" || q.to == "" {
		return nil, false
	}

	for _, tier := range r.tiers {
		if res, ok := tier.resolve(ctx, q); ok {
			r.LogDebug(ctx, "Exchange rate resolved",
				slog.String("from", q.from),
				slog.String("to", q.to),
				slog.String("date", q.date.Format(domain.DateLayout)),
				slog.String("tier", string(tier.name)))
			return res, true
		}
	}

	r.LogWarn(ctx, apperrors.ErrNoRateFound, "Exchange rate unavailable in every tier",
		slog.String("from", q.from),
		slog.String("to", q.to),
		slog.String("date", q.date.Format(domain.DateLayout)))
	return nil, false
}

// ResolveEmergency consults only the static table.
func (r *rateResolver) ResolveEmergency(ctx context.Context, fromCurrency, toCurrency string, date *time.Time) (*domain.ResolvedRate, bool) {
	q := r.newQuery(fromCurrency, toCurrency, date)
	if q.from == "" || q.to == "" {
		return nil, false
	}
	return r.emergencyFallback(ctx, q)
}

func (r *rateResolver) result(q *rateQuery, rate decimal.Decimal, date time.Time, tier domain.RateTier) *domain.ResolvedRate {
	return &domain.ResolvedRate{
		FromCurrency: q.from,
		ToCurrency:   q.to,
		Rate:         rate,
		Date:         date,
		Tier:         tier,
		Degraded:     tier == domain.TierEmergency,
	}
}

// stored returns the exact-date row for base->target. Store errors are logged and
// treated as a miss so the next tier gets a chance.
func (r *rateResolver) stored(ctx context.Context, q *rateQuery, base, target string) (decimal.Decimal, bool) {
	row, err := r.repo.GetRate(ctx, base, target, q.date)
	if err != nil {
		q.storeFailed = true
		r.LogWarn(ctx, err, "Rate store lookup failed", slog.String("base", base), slog.String("target", target))
		return decimal.Zero, false
	}
	if row == nil || !row.Rate.IsPositive() {
		return decimal.Zero, false
	}
	return row.Rate, true
}

// storedEitherWay returns base->target directly or as the reciprocal of target->base.
func (r *rateResolver) storedEitherWay(ctx context.Context, q *rateQuery, base, target string) (decimal.Decimal, bool) {
	if rate, ok := r.stored(ctx, q, base, target); ok {
		return rate, true
	}
	if rate, ok := r.stored(ctx, q, target, base); ok {
		return decimal.NewFromInt(1).Div(rate), true
	}
	return decimal.Zero, false
}

func (r *rateResolver) identity(_ context.Context, q *rateQuery) (*domain.ResolvedRate, bool) {
	if q.from != q.to {
		return nil, false
	}
	return r.result(q, decimal.NewFromInt(1), q.date, domain.TierIdentity), true
}

func (r *rateResolver) direct(ctx context.Context, q *rateQuery) (*domain.ResolvedRate, bool) {
	rate, ok := r.stored(ctx, q, q.from, q.to)
	if !ok {
		return nil, false
	}
	return r.result(q, rate, q.date, domain.TierDirect), true
}

func (r *rateResolver) inverse(ctx context.Context, q *rateQuery) (*domain.ResolvedRate, bool) {
	rate, ok := r.stored(ctx, q, q.to, q.from)
	if !ok {
		return nil, false
	}
	return r.result(q, decimal.NewFromInt(1).Div(rate), q.date, domain.TierInverse), true
}

// cross multiplies from->anchor by anchor->to; each leg may itself be an inverse.
func (r *rateResolver) cross(ctx context.Context, q *rateQuery) (*domain.ResolvedRate, bool) {
	if r.anchor == "" || q.from == r.anchor || q.to == r.anchor {
		return nil, false
	}
	fromLeg, ok := r.storedEitherWay(ctx, q, q.from, r.anchor)
	if !ok {
		return nil, false
	}
	toLeg, ok := r.storedEitherWay(ctx, q, r.anchor, q.to)
	if !ok {
		return nil, false
	}
	return r.result(q, fromLeg.Mul(toLeg), q.date, domain.TierCross), true
}

// recent accepts the newest row dated within the staleness window before the requested date.
func (r *rateResolver) recent(ctx context.Context, q *rateQuery) (*domain.ResolvedRate, bool) {
	if r.window <= 0 {
		return nil, false
	}
	lookup := func(base, target string) *domain.ExchangeRate {
		row, err := r.repo.GetRecentRate(ctx, base, target, q.date, r.window)
		if err != nil {
			q.storeFailed = true
			r.LogWarn(ctx, err, "Recent rate lookup failed", slog.String("base", base), slog.String("target", target))
			return nil
		}
		if row == nil || !row.Rate.IsPositive() {
			return nil
		}
		return row
	}

	if row := lookup(q.from, q.to); row != nil {
		return r.result(q, row.Rate, row.RateDate, domain.TierRecent), true
	}
	if row := lookup(q.to, q.from); row != nil {
		return r.result(q, decimal.NewFromInt(1).Div(row.Rate), row.RateDate, domain.TierRecent), true
	}
	return nil, false
}

// refreshThenRetry triggers one non-forced refresh of the anchor and retries the exact-date
// tiers once. Only today's rows can be produced by a refresh, so past dates skip this tier.
func (r *rateResolver) refreshThenRetry(ctx context.Context, q *rateQuery) (*domain.ResolvedRate, bool) {
	if r.updater == nil || r.anchor == "" || !q.isToday || q.storeFailed {
		return nil, false
	}
	if !r.updater.Refresh(ctx, r.anchor, false) {
		return nil, false
	}

	for _, retry := range []func(context.Context, *rateQuery) (*domain.ResolvedRate, bool){r.direct, r.inverse, r.cross} {
		if res, ok := retry(ctx, q); ok {
			res.Tier = domain.TierRefresh
			return res, true
		}
	}
	return nil, false
}

func (r *rateResolver) emergencyFallback(ctx context.Context, q *rateQuery) (*domain.ResolvedRate, bool) {
	if r.emergency == nil {
		return nil, false
	}
	rate, ok := r.emergency.Lookup(q.from, q.to)
	if !ok {
		return nil, false
	}

	r.LogWarn(ctx, nil, "Serving degraded exchange rate from emergency table",
		slog.String("tier", string(domain.TierEmergency)),
		slog.String("from", q.from),
		slog.String("to", q.to),
		slog.String("rate", rate.String()),
		slog.String("table_as_of", r.emergency.AsOf().Format(domain.DateLayout)))
	if r.reporter != nil {
		r.reporter.RateDegraded(q.from, q.to, domain.ReasonEmergencyFallback)
	}
	return r.result(q, rate, q.date, domain.TierEmergency), true
}
