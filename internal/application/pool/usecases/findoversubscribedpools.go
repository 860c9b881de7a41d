package usecases

import (
	"context"

	"github.com/candlepin/candlepin-sub005/internal/application/pool/dto"
	"github.com/candlepin/candlepin-sub005/internal/domain/owner"
	"github.com/candlepin/candlepin-sub005/internal/domain/pool"
	"github.com/candlepin/candlepin-sub005/internal/shared/logger"
)

// FindOversubscribedPoolsUseCase reports the pools of an owner's
// subscriptions that are consumed beyond their quantity.
type FindOversubscribedPoolsUseCase struct {
	poolRepo  pool.Repository
	ownerRepo owner.Repository
	logger    logger.Interface
}

func NewFindOversubscribedPoolsUseCase(poolRepo pool.Repository, ownerRepo owner.Repository, logger logger.Interface) *FindOversubscribedPoolsUseCase {
	return &FindOversubscribedPoolsUseCase{
		poolRepo:  poolRepo,
		ownerRepo: ownerRepo,
		logger:    logger,
	}
}

func (uc *FindOversubscribedPoolsUseCase) Execute(ctx context.Context, request dto.OversubscribedRequest) ([]*dto.PoolResponse, error) {
	o, err := lookupOwner(ctx, uc.ownerRepo, request.OwnerKey)
	if err != nil {
		return nil, err
	}

	pools, err := uc.poolRepo.FindOversubscribed(ctx, pool.NewOversubscriptionQuery(o.ID(), request.BySubscription))
	if err != nil {
		uc.logger.Errorw("failed to find oversubscribed pools", "owner_key", request.OwnerKey, "error", err)
		return nil, err
	}

	if len(pools) > 0 {
		uc.logger.Warnw("oversubscribed pools found", "owner_key", request.OwnerKey, "count", len(pools))
	}
	return dto.ToPoolResponses(pools), nil
}
