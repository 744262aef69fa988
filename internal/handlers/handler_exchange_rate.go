package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	portssvc "github.com/SscSPs/mma_fxrates/internal/core/ports/services"
	"github.com/SscSPs/mma_fxrates/internal/dto"
	"github.com/SscSPs/mma_fxrates/internal/middleware"
	"github.com/gin-gonic/gin"
)

// exchangeRateHandler handles HTTP requests related to exchange rates.
type exchangeRateHandler struct {
	resolver       portssvc.RateResolverSvc
	updater        portssvc.RateUpdaterSvc
	anchorCurrency string
}

func newExchangeRateHandler(resolver portssvc.RateResolverSvc, updater portssvc.RateUpdaterSvc, anchorCurrency string) *exchangeRateHandler {
	return &exchangeRateHandler{resolver: resolver, updater: updater, anchorCurrency: anchorCurrency}
}

// RegisterExchangeRateRoutes registers the public lookup route.
func RegisterExchangeRateRoutes(rg *gin.RouterGroup, resolver portssvc.RateResolverSvc) {
	h := newExchangeRateHandler(resolver, nil, "")
	rg.GET("/exchange-rates/:from/:to", h.getExchangeRate)
}

// RegisterAdminExchangeRateRoutes registers the manual refresh trigger. rg should carry auth.
func RegisterAdminExchangeRateRoutes(rg *gin.RouterGroup, updater portssvc.RateUpdaterSvc, anchorCurrency string) {
	h := newExchangeRateHandler(nil, updater, anchorCurrency)
	rg.POST("/exchange-rates/refresh", h.refreshExchangeRates)
}

// getExchangeRate godoc
// @Summary Get an exchange rate
// @Description Resolves the rate for a currency pair on a date, falling back through stored, recent, refreshed and emergency rates
// @Tags exchange rates
// @Produce  json
// @Param   from path string true "From Currency Code (3 letters)" MinLength(3) MaxLength(3)
// @Param   to   path string true "To Currency Code (3 letters)" MinLength(3) MaxLength(3)
// @Param   date query string false "Rate date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} dto.ExchangeRateResponse
// @Failure 400 {object} map[string]string "Invalid currency code or date"
// @Failure 404 {object} map[string]string "Exchange rate not found"
// @Router /exchange-rates/{from}/{to} [get]
func (h *exchangeRateHandler) getExchangeRate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	fromCode := c.Param("from")
	toCode := c.Param("to")

	if !isCurrencyCode(fromCode) || !isCurrencyCode(toCode) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Currency codes must be 3 letters"})
		return
	}

	var rawDate *string
	if q, ok := c.GetQuery("date"); ok {
		rawDate = &q
	}
	date, err := dto.ParseOptionalDate(rawDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}

	logger = logger.With(slog.String("from_code", strings.ToUpper(fromCode)), slog.String("to_code", strings.ToUpper(toCode)))

	rate, ok := h.resolver.Resolve(c.Request.Context(), fromCode, toCode, date)
	if !ok {
		logger.Warn("Exchange rate not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "Exchange rate not found"})
		return
	}

	logger.Info("Exchange rate resolved", slog.String("tier", string(rate.Tier)), slog.Bool("degraded", rate.Degraded))
	c.JSON(http.StatusOK, dto.ToExchangeRateResponse(rate))
}

// refreshExchangeRates godoc
// @Summary Refresh exchange rates
// @Description Fetches today's rates for the anchor currency; without force it is a no-op when today's rows exist
// @Tags admin
// @Accept  json
// @Produce  json
// @Param   request body dto.RefreshExchangeRatesRequest false "Refresh options"
// @Success 200 {object} dto.RefreshExchangeRatesResponse
// @Failure 400 {object} map[string]string "Invalid request body"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 503 {object} dto.RefreshExchangeRatesResponse "Refresh failed"
// @Security BearerAuth
// @Router /admin/exchange-rates/refresh [post]
func (h *exchangeRateHandler) refreshExchangeRates(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.RefreshExchangeRatesRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			logger.Warn("Failed to bind JSON for RefreshExchangeRates", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
			return
		}
	}

	logger.Info("Manual exchange rate refresh requested", slog.Bool("force", req.Force))
	ok := h.updater.Refresh(c.Request.Context(), h.anchorCurrency, req.Force)

	resp := dto.RefreshExchangeRatesResponse{AnchorCurrency: h.anchorCurrency, Forced: req.Force, Success: ok}
	if !ok {
		c.JSON(http.StatusServiceUnavailable, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}
