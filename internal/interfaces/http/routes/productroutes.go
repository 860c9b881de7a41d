package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/candlepin/candlepin-sub005/internal/interfaces/http/handlers"
)

// ProductRouteConfig holds dependencies for product routes.
type ProductRouteConfig struct {
	ProductHandler *handlers.ProductHandler
}

// SetupProductRoutes configures owner product routes.
func SetupProductRoutes(api *gin.RouterGroup, cfg *ProductRouteConfig) {
	api.DELETE("/owners/:owner_key/products/:product_id", cfg.ProductHandler.Remove)
}
