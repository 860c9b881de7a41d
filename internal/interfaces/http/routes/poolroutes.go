package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/candlepin/candlepin-sub005/internal/interfaces/http/handlers"
)

// PoolRouteConfig holds dependencies for pool routes.
type PoolRouteConfig struct {
	PoolHandler *handlers.PoolHandler
}

// SetupPoolRoutes configures pool routes on an authenticated group.
func SetupPoolRoutes(api *gin.RouterGroup, cfg *PoolRouteConfig) {
	pools := api.Group("/pools")
	{
		pools.GET("", cfg.PoolHandler.ListPools)
		pools.GET("/:pool_id", cfg.PoolHandler.GetPool)
	}

	owners := api.Group("/owners/:owner_key")
	{
		owners.POST("/oversubscribed", cfg.PoolHandler.FindOversubscribed)
		owners.GET("/subscriptions/pools", cfg.PoolHandler.ListSubscriptionPools)
		owners.GET("/pools/status", cfg.PoolHandler.GetPoolStatus)
	}
}
