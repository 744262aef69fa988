// Package analytics wraps posthog.Client so callers need not care whether it was configured.
package analytics

import (
	"log/slog"

	"github.com/SscSPs/mma_fxrates/internal/core/domain"
	portssvc "github.com/SscSPs/mma_fxrates/internal/core/ports/services"
	"github.com/posthog/posthog-go"
)

const (
	posthogEndpoint = "https://eu.i.posthog.com"
	// engineDistinctID is used for events not tied to a caller.
	engineDistinctID = "fx-rate-engine"

	EventRateDegraded   = "fx_rate_degraded"
	EventRateSuspicious = "fx_rate_suspicious"
)

type PosthogClientWrapper struct {
	posthogClient posthog.Client
	logger        *slog.Logger
}

var _ portssvc.DegradedReporter = (*PosthogClientWrapper)(nil)

// InitializePosthogClient returns a no-op wrapper when apiKey is empty.
func InitializePosthogClient(apiKey string, logger *slog.Logger) *PosthogClientWrapper {
	if logger == nil {
		logger = slog.Default()
	}
	if apiKey == "" {
		logger.Warn("Posthog API key is empty, not initializing posthog client.")
		return &PosthogClientWrapper{logger: logger}
	}
	client, err := posthog.NewWithConfig(apiKey, posthog.Config{Endpoint: posthogEndpoint})
	if err != nil {
		logger.Error("Failed to initialize posthog client", slog.String("error", err.Error()))
		return &PosthogClientWrapper{logger: logger}
	}
	logger.Info("Posthog client initialized")
	return &PosthogClientWrapper{posthogClient: client, logger: logger}
}

func (w *PosthogClientWrapper) IsInitialized() bool {
	return w != nil && w.posthogClient != nil
}

func (w *PosthogClientWrapper) Enqueue(distinctID string, event string, properties map[string]any) {
	if !w.IsInitialized() {
		return
	}
	w.logger.Debug("Enqueueing event", slog.String("distinct_id", distinctID), slog.String("event", event))
	if err := w.posthogClient.Enqueue(posthog.Capture{
		DistinctId: distinctID,
		Event:      event,
		Properties: properties,
	}); err != nil {
		w.logger.Warn("Failed to enqueue posthog event", slog.String("event", event), slog.String("error", err.Error()))
	}
}

// RateDegraded records an emergency-table answer or a rejected rate.
func (w *PosthogClientWrapper) RateDegraded(fromCurrency, toCurrency string, reason string) {
	event := EventRateDegraded
	if reason == domain.ReasonSuspiciousRate {
		event = EventRateSuspicious
	}
	w.Enqueue(engineDistinctID, event, map[string]any{
		"from_currency": fromCurrency,
		"to_currency":   toCurrency,
		"reason":        reason,
	})
}

func (w *PosthogClientWrapper) Close() {
	if !w.IsInitialized() {
		return
	}
	if err := w.posthogClient.Close(); err != nil {
		w.logger.Warn("Failed to close posthog client", slog.String("error", err.Error()))
	}
}
