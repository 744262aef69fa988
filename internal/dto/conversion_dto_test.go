package dto

import (
	"testing"
	"time"

	"github.com/SscSPs/mma_fxrates/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOptionalDate(t *testing.T) {
	got, err := ParseOptionalDate(nil)
	require.NoError(t, err)
	assert.Nil(t, got)

	blank := ""
	got, err = ParseOptionalDate(&blank)
	require.NoError(t, err)
	assert.Nil(t, got)

	s := "2025-01-05"
	got, err = ParseOptionalDate(&s)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC), *got)

	bad := "05/01/2025"
	_, err = ParseOptionalDate(&bad)
	assert.Error(t, err)
}

func TestToConversionResponse_FormatsMinorUnits(t *testing.T) {
	res := ToConversionResponse(&domain.ConversionResult{
		OriginalAmount:  decimal.NewFromInt(10),
		FromCurrency:    "USD",
		ToCurrency:      "INR",
		ConvertedAmount: decimal.NewFromInt(850),
		ExchangeRate:    decimal.NewFromInt(85),
		ConversionDate:  time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC),
		Tier:            domain.TierEmergency,
		Degraded:        true,
	})

	assert.Equal(t, "850.00", res.ConvertedAmount)
	assert.Equal(t, "10", res.OriginalAmount)
	assert.Equal(t, "2025-01-05", res.ConversionDate)
	assert.Equal(t, "emergency", res.Tier)
	assert.True(t, res.Degraded)
}
