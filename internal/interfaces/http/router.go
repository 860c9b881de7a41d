package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/candlepin/candlepin-sub005/internal/interfaces/http/middleware"
	"github.com/candlepin/candlepin-sub005/internal/interfaces/http/routes"
)

// SetupRoutes configures all HTTP routes
func (c *Container) SetupRoutes() {
	c.engine.Use(middleware.Recovery())
	c.engine.Use(middleware.RequestID())
	c.engine.Use(middleware.CustomLogger(c.log))
	c.engine.Use(middleware.CORS(c.cfg.Server.AllowedOrigins))
	c.engine.Use(middleware.HostCache(c.cfg.Cache.HostCacheSize))

	c.engine.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := c.engine.Group("")
	api.Use(c.authMiddleware.RequireAuth())

	routes.SetupPoolRoutes(api, &routes.PoolRouteConfig{PoolHandler: c.hdlrs.poolHandler})
	routes.SetupEntitlementRoutes(api, &routes.EntitlementRouteConfig{EntitlementHandler: c.hdlrs.entitlementHandler})
	routes.SetupProductRoutes(api, &routes.ProductRouteConfig{ProductHandler: c.hdlrs.productHandler})
	routes.SetupJobRoutes(api, &routes.JobRouteConfig{JobHandler: c.hdlrs.jobHandler})
}

// GetEngine returns the Gin engine
func (c *Container) GetEngine() *gin.Engine {
	return c.engine
}
