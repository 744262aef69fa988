package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/mma_fxrates/internal/core/ports/services"
	"github.com/SscSPs/mma_fxrates/internal/dto"
	"github.com/SscSPs/mma_fxrates/internal/middleware"
	"github.com/gin-gonic/gin"
)

type conversionHandler struct {
	conversionService portssvc.ConversionSvcFacade
}

// RegisterConversionRoutes registers the conversion endpoints.
func RegisterConversionRoutes(rg *gin.RouterGroup, conversionService portssvc.ConversionSvcFacade) {
	h := &conversionHandler{conversionService: conversionService}

	conversions := rg.Group("/conversions")
	{
		conversions.POST("", h.convert)
		conversions.POST("/anchor", h.convertToAnchor)
	}
}

// convert godoc
// @Summary Convert an amount
// @Description Converts an amount between two currencies, rounded to two decimal places
// @Tags conversions
// @Accept  json
// @Produce  json
// @Param   request body dto.ConvertRequest true "Conversion details"
// @Success 200 {object} dto.ConversionResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 404 {object} map[string]string "No rate available for the pair"
// @Router /conversions [post]
func (h *conversionHandler) convert(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.ConvertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for Convert", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	date, err := dto.ParseOptionalDate(req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}

	res, ok := h.conversionService.Convert(c.Request.Context(), *req.Amount, req.FromCurrency, req.ToCurrency, date)
	if !ok {
		logger.Warn("No exchange rate for conversion", slog.String("from", req.FromCurrency), slog.String("to", req.ToCurrency))
		c.JSON(http.StatusNotFound, gin.H{"error": "Exchange rate not found"})
		return
	}
	c.JSON(http.StatusOK, dto.ToConversionResponse(res))
}

// convertToAnchor godoc
// @Summary Convert an amount into the anchor currency
// @Description Used by document totals; an amount already in the anchor currency is returned unchanged
// @Tags conversions
// @Accept  json
// @Produce  json
// @Param   request body dto.ConvertToAnchorRequest true "Conversion details"
// @Success 200 {object} dto.ConversionResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 404 {object} map[string]string "No rate available for the currency"
// @Router /conversions/anchor [post]
func (h *conversionHandler) convertToAnchor(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.ConvertToAnchorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ConvertToAnchor", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	date, err := dto.ParseOptionalDate(req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}

	res, ok := h.conversionService.ConvertToAnchor(c.Request.Context(), *req.Amount, req.FromCurrency, date)
	if !ok {
		logger.Warn("No exchange rate for anchor conversion", slog.String("from", req.FromCurrency))
		c.JSON(http.StatusNotFound, gin.H{"error": "Exchange rate not found"})
		return
	}
	c.JSON(http.StatusOK, dto.ToConversionResponse(res))
}
