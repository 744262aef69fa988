package utils

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestRoundToMinorUnits(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"12.345", "12.35"},
		{"12.344", "12.34"},
		{"-1.005", "-1.01"},
		{"100", "100"},
	}
	for _, tt := range tests {
		got := RoundToMinorUnits(decimal.RequireFromString(tt.in))
		assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "%s -> %s", tt.in, got)
	}
}

func TestFormatWithPrecision(t *testing.T) {
	assert.Equal(t, "83.00", FormatWithPrecision(decimal.NewFromInt(83), 2))
	assert.Equal(t, "0.0120", FormatWithPrecision(decimal.RequireFromString("0.012"), 4))
}
