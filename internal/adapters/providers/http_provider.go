package providers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/SscSPs/mma_fxrates/internal/core/domain"
	portssvc "github.com/SscSPs/mma_fxrates/internal/core/ports/services"
	"github.com/tidwall/gjson"
)

// maxBodyBytes bounds how much of a provider body is read.
const maxBodyBytes = 2 << 20

var (
	// ErrBadStatus is returned for any non-2xx provider response.
	ErrBadStatus = errors.New("provider returned non-2xx status")
	// ErrMalformedBody is returned when the body cannot be normalized.
	ErrMalformedBody = errors.New("provider returned malformed body")
)

// ResponseShape holds the gjson paths used to normalize one provider's body.
type ResponseShape struct {
	BasePath   string
	DatePath   string
	DateIsUnix bool
	RatesPath  string
}

var (
	// ShapeStandard matches {"base":"USD","date":"2025-01-01","rates":{"INR":83.1}}.
	ShapeStandard = ResponseShape{BasePath: "base", DatePath: "date", RatesPath: "rates"}
	// ShapeOpenER matches open.er-api.com {"base_code":"USD","time_last_update_unix":1735689600,"rates":{...}}.
	ShapeOpenER = ResponseShape{BasePath: "base_code", DatePath: "time_last_update_unix", DateIsUnix: true, RatesPath: "rates"}
	// ShapeStringValued matches {"data":{"currency":"USD","rates":{"INR":"83.1"}}}.
	ShapeStringValued = ResponseShape{BasePath: "data.currency", RatesPath: "data.rates"}
)

// HTTPProvider fetches latest rates from one JSON endpoint.
type HTTPProvider struct {
	name string
	// baseURL is joined with pathTemplate; "{base}" in the template is replaced by the currency.
	baseURL      string
	pathTemplate string
	shape        ResponseShape
	httpClient   HTTPDoer
	clock        domain.Clock
}

var _ portssvc.RateProvider = (*HTTPProvider)(nil)

// HTTPProviderOption is a configuration option for HTTPProvider.
type HTTPProviderOption func(*HTTPProvider)

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(httpClient HTTPDoer) HTTPProviderOption {
	return func(p *HTTPProvider) {
		p.httpClient = httpClient
	}
}

// WithBaseURL overrides the endpoint root.
func WithBaseURL(baseURL string) HTTPProviderOption {
	return func(p *HTTPProvider) {
		p.baseURL = baseURL
	}
}

// WithClock sets the clock used when a body carries no usable date.
func WithClock(clock domain.Clock) HTTPProviderOption {
	return func(p *HTTPProvider) {
		p.clock = clock
	}
}

// NewHTTPProvider creates a provider. pathTemplate defaults to "/latest?base={base}".
func NewHTTPProvider(name, baseURL, pathTemplate string, shape ResponseShape, options ...HTTPProviderOption) *HTTPProvider {
	if pathTemplate == "" {
		pathTemplate = "/latest?base={base}"
	}
	p := &HTTPProvider{
		name:         name,
		baseURL:      baseURL,
		pathTemplate: pathTemplate,
		shape:        shape,
		httpClient:   http.DefaultClient,
		clock:        domain.SystemClock{},
	}
	for _, option := range options {
		option(p)
	}
	return p
}

func (p *HTTPProvider) Name() string { return p.name }

func (p *HTTPProvider) requestURL(baseCurrency string) string {
	path := strings.ReplaceAll(p.pathTemplate, "{base}", url.QueryEscape(baseCurrency))
	return strings.TrimRight(p.baseURL, "/") + path
}

// Latest performs one GET and normalizes the body.
func (p *HTTPProvider) Latest(ctx context.Context, baseCurrency string) (*domain.ProviderResponse, error) {
	baseCurrency = domain.NormalizeCurrency(baseCurrency)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.requestURL(baseCurrency), nil)
	if err != nil {
		return nil, fmt.Errorf("%s: building request: %w", p.name, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%s: %w: %d", p.name, ErrBadStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%s: reading body: %w", p.name, err)
	}
	return p.normalize(baseCurrency, body)
}

func (p *HTTPProvider) normalize(requestedBase string, body []byte) (*domain.ProviderResponse, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%s: %w: invalid json", p.name, ErrMalformedBody)
	}
	doc := gjson.ParseBytes(body)

	ratesNode := doc.Get(p.shape.RatesPath)
	if !ratesNode.IsObject() {
		return nil, fmt.Errorf("%s: %w: %q is not an object", p.name, ErrMalformedBody, p.shape.RatesPath)
	}

	base := requestedBase
	if p.shape.BasePath != "" {
		if b := doc.Get(p.shape.BasePath); b.Exists() && b.String() != "" {
			base = domain.NormalizeCurrency(b.String())
		}
	}
	if base != requestedBase {
		return nil, fmt.Errorf("%s: %w: asked for %s, got %s", p.name, ErrMalformedBody, requestedBase, base)
	}

	rates := make(map[string]float64)
	ratesNode.ForEach(func(key, value gjson.Result) bool {
		if rate, ok := numericValue(value); ok {
			rates[domain.NormalizeCurrency(key.String())] = rate
		}
		return true
	})
	if len(rates) == 0 {
		return nil, fmt.Errorf("%s: %w: no numeric rates", p.name, ErrMalformedBody)
	}

	return &domain.ProviderResponse{
		Provider:     p.name,
		BaseCurrency: base,
		AsOfDate:     p.asOfDate(doc),
		Rates:        rates,
	}, nil
}

// numericValue accepts JSON numbers and numeric strings.
func numericValue(v gjson.Result) (float64, bool) {
	var f float64
	switch v.Type {
	case gjson.Number:
		f = v.Float()
	case gjson.String:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func (p *HTTPProvider) asOfDate(doc gjson.Result) time.Time {
	if p.shape.DatePath != "" {
		v := doc.Get(p.shape.DatePath)
		if p.shape.DateIsUnix && v.Type == gjson.Number && v.Int() > 0 {
			return domain.DateOf(time.Unix(v.Int(), 0).UTC())
		}
		if d, err := domain.ParseDate(v.String()); err == nil {
			return d
		}
	}
	return domain.DateOf(p.clock.Now())
}
