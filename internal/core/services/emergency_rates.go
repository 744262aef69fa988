package services

import (
	"time"

	"github.com/SscSPs/mma_fxrates/internal/core/domain"
	"github.com/shopspring/decimal"
)

// EmergencyTable is the static last-resort rate table. Each entry is the number of
// anchor units per one unit of the currency, as of a fixed date.
type EmergencyTable struct {
	anchor string
	rates  map[string]decimal.Decimal
	asOf   time.Time
}

// NewEmergencyTable copies rates, dropping non-positive entries and the anchor itself.
func NewEmergencyTable(anchor string, rates map[string]decimal.Decimal, asOf time.Time) *EmergencyTable {
	anchor = domain.NormalizeCurrency(anchor)
	cleaned := make(map[string]decimal.Decimal, len(rates))
	for code, rate := range rates {
		code = domain.NormalizeCurrency(code)
		if code == anchor || !rate.IsPositive() {
			continue
		}
		cleaned[code] = rate
	}
	return &EmergencyTable{anchor: anchor, rates: cleaned, asOf: asOf}
}

// AsOf is the date the table values were taken.
func (t *EmergencyTable) AsOf() time.Time { return t.asOf }

// Lookup combines table entries the same way the store tiers do: direct into the anchor,
// inverse out of it, or cross through it.
func (t *EmergencyTable) Lookup(from, to string) (decimal.Decimal, bool) {
	from = domain.NormalizeCurrency(from)
	to = domain.NormalizeCurrency(to)
	if from == to {
		return decimal.NewFromInt(1), true
	}

	fromRate, fromOK := t.rates[from]
	toRate, toOK := t.rates[to]

	switch {
	case to == t.anchor && fromOK:
		return fromRate, true
	case from == t.anchor && toOK:
		return decimal.NewFromInt(1).Div(toRate), true
	case fromOK && toOK:
		return fromRate.Div(toRate), true
	}
	return decimal.Zero, false
}
