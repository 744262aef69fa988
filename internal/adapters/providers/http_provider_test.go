package providers_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/SscSPs/mma_fxrates/internal/adapters/providers"
	"github.com/SscSPs/mma_fxrates/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

var fixedClock = domain.FixedClock{T: time.Date(2025, 3, 9, 12, 0, 0, 0, time.UTC)}

func TestLatest_StandardShape(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPDoer(ctrl)
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, "https://example.test/latest?base=USD", req.URL.String())
			assert.Equal(t, "application/json", req.Header.Get("Accept"))
			return jsonResponse(http.StatusOK, `{"base":"USD","date":"2025-01-01","rates":{"INR":83.0,"EUR":0.92,"GBP":0.79}}`), nil
		}).
		Times(1)

	p := providers.NewHTTPProvider("std", "https://example.test/", "", providers.ShapeStandard, providers.WithHTTPClient(httpClient))
	resp, err := p.Latest(context.Background(), "usd")
	require.NoError(t, err)

	assert.Equal(t, "std", resp.Provider)
	assert.Equal(t, "USD", resp.BaseCurrency)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), resp.AsOfDate)
	assert.InDelta(t, 83.0, resp.Rates["INR"], 1e-9)
	assert.Len(t, resp.Rates, 3)
}

func TestLatest_OpenERShapeUsesUnixTimestamp(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPDoer(ctrl)
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, "/v6/latest/INR", req.URL.Path)
			return jsonResponse(http.StatusOK, `{"result":"success","base_code":"INR","time_last_update_unix":1735689600,"rates":{"USD":0.012,"EUR":0.011}}`), nil
		})

	p := providers.NewHTTPProvider("open_er_api", "https://open.er-api.test/v6", "/latest/{base}", providers.ShapeOpenER, providers.WithHTTPClient(httpClient))
	resp, err := p.Latest(context.Background(), "INR")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), resp.AsOfDate)
	assert.InDelta(t, 0.012, resp.Rates["USD"], 1e-12)
}

func TestLatest_StringValuedShapeParsesNumericStrings(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPDoer(ctrl)
	httpClient.EXPECT().
		Do(gomock.Any()).
		Return(jsonResponse(http.StatusOK, `{"data":{"currency":"USD","rates":{"INR":"83.25","EUR":"0.92","BAD":"n/a","NUL":null}}}`), nil)

	p := providers.NewHTTPProvider("coinbase", "https://cb.test", "/exchange-rates?currency={base}", providers.ShapeStringValued,
		providers.WithHTTPClient(httpClient), providers.WithClock(fixedClock))
	resp, err := p.Latest(context.Background(), "USD")
	require.NoError(t, err)

	assert.Equal(t, time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC), resp.AsOfDate, "no date in body falls back to the clock")
	assert.Len(t, resp.Rates, 2)
	assert.InDelta(t, 83.25, resp.Rates["INR"], 1e-9)
}

func TestLatest_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		resp    *http.Response
		doErr   error
		wantErr error
	}{
		{name: "server error", resp: jsonResponse(http.StatusInternalServerError, `{}`), wantErr: providers.ErrBadStatus},
		{name: "rate limited", resp: jsonResponse(http.StatusTooManyRequests, `{"rates":{"INR":1}}`), wantErr: providers.ErrBadStatus},
		{name: "not json", resp: jsonResponse(http.StatusOK, `<html>oops</html>`), wantErr: providers.ErrMalformedBody},
		{name: "rates missing", resp: jsonResponse(http.StatusOK, `{"base":"USD"}`), wantErr: providers.ErrMalformedBody},
		{name: "rates empty", resp: jsonResponse(http.StatusOK, `{"base":"USD","rates":{}}`), wantErr: providers.ErrMalformedBody},
		{name: "base mismatch", resp: jsonResponse(http.StatusOK, `{"base":"EUR","rates":{"INR":90}}`), wantErr: providers.ErrMalformedBody},
		{name: "transport error", doErr: errors.New("connection reset")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			httpClient := NewMockHTTPDoer(ctrl)
			httpClient.EXPECT().Do(gomock.Any()).Return(tt.resp, tt.doErr)

			p := providers.NewHTTPProvider("p", "https://example.test", "", providers.ShapeStandard, providers.WithHTTPClient(httpClient))
			resp, err := p.Latest(context.Background(), "USD")
			require.Error(t, err)
			assert.Nil(t, resp)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestLatest_RespectsContextDeadline(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	p := providers.NewHTTPProvider("slow", server.URL, "", providers.ShapeStandard, providers.WithHTTPClient(server.Client()))
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := p.Latest(ctx, "USD")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLatest_AgainstHTTPServer(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/latest", r.URL.Path)
		assert.Equal(t, "INR", r.URL.Query().Get("base"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"base":"INR","date":"2025-01-02","rates":{"USD":0.0120,"EUR":0.0110,"GBP":0.0095}}`))
	}))
	defer server.Close()

	p := providers.NewHTTPProvider("frankfurter", server.URL, "", providers.ShapeStandard)
	resp, err := p.Latest(context.Background(), "INR")
	require.NoError(t, err)
	assert.Len(t, resp.Rates, 3)
}

func TestBuild(t *testing.T) {
	t.Parallel()

	built, err := providers.Build([]string{"frankfurter", "open_er_api"}, map[string]string{"frankfurter": "http://localhost:9999"}, nil, fixedClock)
	require.NoError(t, err)
	require.Len(t, built, 2)
	assert.Equal(t, "frankfurter", built[0].Name())
	assert.Equal(t, "open_er_api", built[1].Name())

	_, err = providers.Build([]string{"nope"}, nil, nil, nil)
	assert.Error(t, err)

	_, err = providers.Build(nil, nil, nil, nil)
	assert.Error(t, err)
}
