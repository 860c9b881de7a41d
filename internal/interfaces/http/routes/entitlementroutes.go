package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/candlepin/candlepin-sub005/internal/interfaces/http/handlers"
)

// EntitlementRouteConfig holds dependencies for entitlement routes.
type EntitlementRouteConfig struct {
	EntitlementHandler *handlers.EntitlementHandler
}

// SetupEntitlementRoutes configures consumer binding and entitlement routes.
func SetupEntitlementRoutes(api *gin.RouterGroup, cfg *EntitlementRouteConfig) {
	consumers := api.Group("/consumers/:consumer_uuid")
	{
		consumers.POST("/entitlements", cfg.EntitlementHandler.Bind)
		consumers.GET("/entitlements", cfg.EntitlementHandler.ListForConsumer)
	}

	entitlements := api.Group("/entitlements")
	{
		entitlements.GET("/:id", cfg.EntitlementHandler.Get)
		entitlements.GET("/:id/modifying", cfg.EntitlementHandler.Modifying)
		entitlements.DELETE("/:id", cfg.EntitlementHandler.Revoke)
	}
}
