package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/candlepin/candlepin-sub005/internal/interfaces/http/handlers"
)

// JobRouteConfig holds dependencies for job status routes.
type JobRouteConfig struct {
	JobHandler *handlers.JobHandler
}

// SetupJobRoutes configures job status routes.
func SetupJobRoutes(api *gin.RouterGroup, cfg *JobRouteConfig) {
	jobs := api.Group("/jobs")
	{
		jobs.GET("", cfg.JobHandler.List)
		jobs.GET("/:id", cfg.JobHandler.Get)
		jobs.DELETE("/:id", cfg.JobHandler.Cancel)
	}
}
