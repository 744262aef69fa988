package handlers

import (
	"github.com/SscSPs/mma_fxrates/cmd/docs"
	portssvc "github.com/SscSPs/mma_fxrates/internal/core/ports/services"
	"github.com/SscSPs/mma_fxrates/internal/middleware"
	"github.com/SscSPs/mma_fxrates/internal/platform/config"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) {
	RegisterValidators()

	r.GET("/health", getHealth(services.Conversion))

	setupAPIV1Routes(r, cfg, services)

	setupSwaggerRoutes(r, cfg)
}

// setupAPIV1Routes configures the public /api/v1 group and the JWT-protected admin subgroup
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) {
	v1 := r.Group("/api/v1")
	RegisterExchangeRateRoutes(v1, services.Resolver)
	RegisterConversionRoutes(v1, services.Conversion)

	admin := v1.Group("/admin", middleware.AuthMiddleware(cfg.JWTSecret))
	RegisterAdminExchangeRateRoutes(admin, services.Updater, services.Conversion.AnchorCurrency())
}

// setupSwaggerRoutes configures the swagger documentation routes
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api/v1"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
