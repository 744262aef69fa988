package services

import (
	"github.com/SscSPs/mma_fxrates/internal/core/domain"
	portsrepo "github.com/SscSPs/mma_fxrates/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/mma_fxrates/internal/core/ports/services"
	"github.com/SscSPs/mma_fxrates/internal/platform/config"
)

// NewServiceContainer wires the rate engine from configuration, the store, and the provider list.
// reporter may be nil when analytics are disabled.
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, providers []portssvc.RateProvider, reporter portssvc.DegradedReporter, clock domain.Clock) *portssvc.ServiceContainer {
	if clock == nil {
		clock = domain.SystemClock{}
	}
	container := &portssvc.ServiceContainer{}

	container.Fetcher = NewRateFetcher(providers, RateFetcherOptions{
		ProviderTimeout:  cfg.ProviderTimeout,
		Budget:           cfg.FetchBudget,
		MajorCurrencies:  cfg.MajorCurrencies,
		MinMajorCoverage: cfg.MinMajorCoverage,
	})

	container.Updater = NewRateUpdater(repos.ExchangeRateRepo, container.Fetcher, clock, cfg.MajorCurrencies)

	resolverOptions := []RateResolverOption{WithResolverClock(clock)}
	if reporter != nil {
		resolverOptions = append(resolverOptions, WithDegradedReporter(reporter))
	}
	container.Resolver = NewRateResolver(
		repos.ExchangeRateRepo,
		container.Updater,
		NewEmergencyTable(cfg.AnchorCurrency, cfg.EmergencyRates, cfg.EmergencyRatesAsOf),
		RateResolverOptions{AnchorCurrency: cfg.AnchorCurrency, StalenessWindowDays: cfg.StalenessWindowDays},
		resolverOptions...,
	)

	container.Validator = NewConversionValidator(cfg.PlausibilityMinRates)
	container.Conversion = NewConversionService(container.Resolver, container.Validator, reporter, clock, cfg.AnchorCurrency)

	return container
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.RateFetcherSvc         = (*rateFetcher)(nil)
	_ portssvc.RateUpdaterSvc         = (*rateUpdater)(nil)
	_ portssvc.RateResolverSvc        = (*rateResolver)(nil)
	_ portssvc.ConversionValidatorSvc = (*conversionValidator)(nil)
	_ portssvc.ConversionSvcFacade    = (*conversionService)(nil)
)
