package http

import (
	"github.com/candlepin/candlepin-sub005/internal/interfaces/http/handlers"
	"github.com/candlepin/candlepin-sub005/internal/shared/logger"
)

// allHandlers holds all HTTP handler instances used by the application.
type allHandlers struct {
	poolHandler        *handlers.PoolHandler
	entitlementHandler *handlers.EntitlementHandler
	productHandler     *handlers.ProductHandler
	jobHandler         *handlers.JobHandler
}

func newHandlers(ucs *allUseCases, log logger.Interface) *allHandlers {
	return &allHandlers{
		poolHandler: handlers.NewPoolHandler(
			ucs.listAvailablePoolsUC,
			ucs.getPoolUC,
			ucs.findOversubscribedUC,
			ucs.subscriptionPoolsUC,
			ucs.poolStatusUC,
			log.Named("pool-handler"),
		),
		entitlementHandler: handlers.NewEntitlementHandler(
			ucs.bindPoolUC,
			ucs.getEntitlementUC,
			ucs.listConsumerEntsUC,
			ucs.revokeEntitlementUC,
			ucs.findModifyingUC,
			log.Named("entitlement-handler"),
		),
		productHandler: handlers.NewProductHandler(ucs.removeProductUC, log.Named("product-handler")),
		jobHandler:     handlers.NewJobHandler(ucs.getJobUC, ucs.listJobsUC, ucs.cancelJobUC, log.Named("job-handler")),
	}
}
