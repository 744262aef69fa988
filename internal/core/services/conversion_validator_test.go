package services_test

import (
	"testing"

	"github.com/SscSPs/mma_fxrates/internal/core/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestConversionValidator(t *testing.T) {
	v := services.NewConversionValidator(map[string]decimal.Decimal{
		"USD/INR": dec("50"),
		"GBP/INR": dec("60"),
	})

	tests := []struct {
		name      string
		rate      string
		from, to  string
		highRisk  bool
		plausible bool
	}{
		{name: "normal usd", rate: "83.2", from: "USD", to: "INR", highRisk: true, plausible: true},
		{name: "backward usd", rate: "0.012", from: "USD", to: "INR", highRisk: true, plausible: false},
		{name: "exactly at threshold", rate: "60", from: "gbp", to: "inr", highRisk: true, plausible: true},
		{name: "reverse direction has no opinion", rate: "0.012", from: "INR", to: "USD", highRisk: false, plausible: true},
		{name: "unknown pair", rate: "0.0001", from: "JPY", to: "EUR", highRisk: false, plausible: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.highRisk, v.IsHighRisk(tt.from, tt.to))
			assert.Equal(t, tt.plausible, v.IsPlausible(dec(tt.rate), tt.from, tt.to))
		})
	}
}
