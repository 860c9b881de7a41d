package http

import (
	entUsecases "github.com/candlepin/candlepin-sub005/internal/application/entitlement/usecases"
	jobUsecases "github.com/candlepin/candlepin-sub005/internal/application/job/usecases"
	poolUsecases "github.com/candlepin/candlepin-sub005/internal/application/pool/usecases"
	productUsecases "github.com/candlepin/candlepin-sub005/internal/application/product/usecases"
	"github.com/candlepin/candlepin-sub005/internal/domain/entitlement"
	"github.com/candlepin/candlepin-sub005/internal/shared/db"
	"github.com/candlepin/candlepin-sub005/internal/shared/logger"
)

// allUseCases holds all use case instances used by the application.
type allUseCases struct {
	// Pool
	listAvailablePoolsUC *poolUsecases.ListAvailablePoolsUseCase
	getPoolUC            *poolUsecases.GetPoolUseCase
	findOversubscribedUC *poolUsecases.FindOversubscribedPoolsUseCase
	cleanupExpiredUC     *poolUsecases.CleanupExpiredPoolsUseCase
	subscriptionPoolsUC  *poolUsecases.ListSubscriptionPoolsUseCase
	poolStatusUC         *poolUsecases.GetOwnerPoolStatusUseCase

	// Product
	removeProductUC *productUsecases.RemoveProductUseCase

	// Entitlement
	bindPoolUC          *entUsecases.BindPoolUseCase
	getEntitlementUC    *entUsecases.GetEntitlementUseCase
	listConsumerEntsUC  *entUsecases.ListConsumerEntitlementsUseCase
	revokeEntitlementUC *entUsecases.RevokeEntitlementUseCase
	findModifyingUC     *entUsecases.FindModifyingEntitlementsUseCase

	// Job
	runTrackedJobUC *jobUsecases.RunTrackedJobUseCase
	getJobUC        *jobUsecases.GetJobUseCase
	listJobsUC      *jobUsecases.ListJobsUseCase
	cancelJobUC     *jobUsecases.CancelJobUseCase
}

func newUseCases(repos *repositories, txMgr *db.TransactionManager, cleanupBatchSize int, log logger.Interface) *allUseCases {
	overlap := entitlement.NewOverlapResolver(repos.entitlementRepo, repos.productRepo, log)

	return &allUseCases{
		listAvailablePoolsUC: poolUsecases.NewListAvailablePoolsUseCase(repos.poolRepo, repos.ownerRepo, repos.consumerRepo, log),
		getPoolUC:            poolUsecases.NewGetPoolUseCase(repos.poolRepo, log),
		findOversubscribedUC: poolUsecases.NewFindOversubscribedPoolsUseCase(repos.poolRepo, repos.ownerRepo, log),
		cleanupExpiredUC:     poolUsecases.NewCleanupExpiredPoolsUseCase(repos.poolRepo, txMgr, cleanupBatchSize, log),
		subscriptionPoolsUC:  poolUsecases.NewListSubscriptionPoolsUseCase(repos.poolRepo, repos.ownerRepo, log),
		poolStatusUC:         poolUsecases.NewGetOwnerPoolStatusUseCase(repos.poolRepo, repos.ownerRepo, log),

		removeProductUC: productUsecases.NewRemoveProductUseCase(repos.productRepo, repos.ownerRepo, log),

		bindPoolUC:          entUsecases.NewBindPoolUseCase(repos.poolRepo, repos.entitlementRepo, repos.consumerRepo, txMgr, log),
		getEntitlementUC:    entUsecases.NewGetEntitlementUseCase(repos.entitlementRepo, log),
		listConsumerEntsUC:  entUsecases.NewListConsumerEntitlementsUseCase(repos.entitlementRepo, repos.consumerRepo, log),
		revokeEntitlementUC: entUsecases.NewRevokeEntitlementUseCase(repos.entitlementRepo, repos.poolRepo, overlap, txMgr, log),
		findModifyingUC:     entUsecases.NewFindModifyingEntitlementsUseCase(repos.entitlementRepo, overlap, log),

		runTrackedJobUC: jobUsecases.NewRunTrackedJobUseCase(repos.jobRepo, log),
		getJobUC:        jobUsecases.NewGetJobUseCase(repos.jobRepo, log),
		listJobsUC:      jobUsecases.NewListJobsUseCase(repos.jobRepo, log),
		cancelJobUC:     jobUsecases.NewCancelJobUseCase(repos.jobRepo, log),
	}
}
