package handlers

import (
	"net/http"

	portssvc "github.com/SscSPs/mma_fxrates/internal/core/ports/services"
	"github.com/gin-gonic/gin"
)

// getHealth godoc
// @Summary Show the status of server.
// @Description Liveness probe; also reports the anchor currency.
// @Tags root
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func getHealth(conversion portssvc.ConversionSvcFacade) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "anchorCurrency": conversion.AnchorCurrency()})
	}
}
