package providers

import (
	"fmt"

	"github.com/SscSPs/mma_fxrates/internal/core/domain"
	portssvc "github.com/SscSPs/mma_fxrates/internal/core/ports/services"
)

// CatalogEntry describes a built-in provider.
type CatalogEntry struct {
	BaseURL      string
	PathTemplate string
	Shape        ResponseShape
}

// Catalog lists the providers that can be named in RATE_PROVIDERS.
var Catalog = map[string]CatalogEntry{
	"open_er_api": {
		BaseURL:      "https://open.er-api.com/v6",
		PathTemplate: "/latest/{base}",
		Shape:        ShapeOpenER,
	},
	"frankfurter": {
		BaseURL:      "https://api.frankfurter.app",
		PathTemplate: "/latest?base={base}",
		Shape:        ShapeStandard,
	},
	"exchangerate_host": {
		BaseURL:      "https://api.exchangerate.host",
		PathTemplate: "/latest?base={base}",
		Shape:        ShapeStandard,
	},
	"coinbase": {
		BaseURL:      "https://api.coinbase.com/v2",
		PathTemplate: "/exchange-rates?currency={base}",
		Shape:        ShapeStringValued,
	},
}

// Build returns providers in the given order. urlOverrides replaces a catalog BaseURL by name.
func Build(names []string, urlOverrides map[string]string, httpClient HTTPDoer, clock domain.Clock) ([]portssvc.RateProvider, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("no rate providers configured")
	}
	out := make([]portssvc.RateProvider, 0, len(names))
	for _, name := range names {
		entry, ok := Catalog[name]
		if !ok {
			return nil, fmt.Errorf("unknown rate provider %q", name)
		}
		baseURL := entry.BaseURL
		if override, ok := urlOverrides[name]; ok && override != "" {
			baseURL = override
		}
		var options []HTTPProviderOption
		if httpClient != nil {
			options = append(options, WithHTTPClient(httpClient))
		}
		if clock != nil {
			options = append(options, WithClock(clock))
		}
		out = append(out, NewHTTPProvider(name, baseURL, entry.PathTemplate, entry.Shape, options...))
	}
	return out, nil
}
