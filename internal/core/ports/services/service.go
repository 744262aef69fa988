package services

// ServiceContainer holds instances of all the application services.
// Handlers and the scheduler reach the engine only through it.
type ServiceContainer struct {
	Fetcher    RateFetcherSvc
	Updater    RateUpdaterSvc
	Resolver   RateResolverSvc
	Validator  ConversionValidatorSvc
	Conversion ConversionSvcFacade
}
