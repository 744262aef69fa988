package domain

import "time"

// ProviderResponse is the normalized shape every provider adapter produces.
// Only currencies present in Rates can be updated in a refresh cycle.
type ProviderResponse struct {
	Provider     string             `json:"provider"`
	BaseCurrency string             `json:"base"`
	AsOfDate     time.Time          `json:"date"`
	Rates        map[string]float64 `json:"rates"`
}
