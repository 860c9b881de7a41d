package usecases

import (
	"context"
	"slices"
	"time"

	"github.com/candlepin/candlepin-sub005/internal/application/pool/dto"
	"github.com/candlepin/candlepin-sub005/internal/domain/owner"
	"github.com/candlepin/candlepin-sub005/internal/domain/permission"
	"github.com/candlepin/candlepin-sub005/internal/domain/pool"
	"github.com/candlepin/candlepin-sub005/internal/shared/errors"
	"github.com/candlepin/candlepin-sub005/internal/shared/logger"
)

// lookupOwner resolves key and hides owners the caller cannot read.
func lookupOwner(ctx context.Context, owners owner.Repository, key string) (*owner.Owner, error) {
	o, err := owners.GetByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	if o == nil || !permission.AllowsOwner(ctx, o.ID(), permission.AccessReadOnly) {
		return nil, errors.NewNotFoundError("owner not found", key)
	}
	return o, nil
}

// ListSubscriptionPoolsUseCase returns the pools an owner holds from a set
// of subscriptions, derived pools included.
type ListSubscriptionPoolsUseCase struct {
	poolRepo  pool.Repository
	ownerRepo owner.Repository
	logger    logger.Interface
}

func NewListSubscriptionPoolsUseCase(poolRepo pool.Repository, ownerRepo owner.Repository, logger logger.Interface) *ListSubscriptionPoolsUseCase {
	return &ListSubscriptionPoolsUseCase{
		poolRepo:  poolRepo,
		ownerRepo: ownerRepo,
		logger:    logger,
	}
}

func (uc *ListSubscriptionPoolsUseCase) Execute(ctx context.Context, request dto.SubscriptionPoolsRequest) ([]*dto.PoolResponse, error) {
	ids := slices.DeleteFunc(slices.Clone(request.SubscriptionIDs), func(id string) bool { return id == "" })
	if len(ids) == 0 {
		return nil, errors.NewValidationError("at least one subscription is required")
	}

	o, err := lookupOwner(ctx, uc.ownerRepo, request.OwnerKey)
	if err != nil {
		return nil, err
	}

	pools, err := uc.poolRepo.GetBySubscriptionIDs(ctx, o.ID(), ids)
	if err != nil {
		uc.logger.Errorw("failed to list subscription pools", "owner_key", request.OwnerKey, "error", err)
		return nil, err
	}
	return dto.ToPoolResponses(pools), nil
}

// GetOwnerPoolStatusUseCase reports whether an owner has entitlement
// derived pools active at a given instant.
type GetOwnerPoolStatusUseCase struct {
	poolRepo  pool.Repository
	ownerRepo owner.Repository
	logger    logger.Interface
	now       func() time.Time
}

func NewGetOwnerPoolStatusUseCase(poolRepo pool.Repository, ownerRepo owner.Repository, logger logger.Interface) *GetOwnerPoolStatusUseCase {
	return &GetOwnerPoolStatusUseCase{
		poolRepo:  poolRepo,
		ownerRepo: ownerRepo,
		logger:    logger,
		now:       time.Now,
	}
}

func (uc *GetOwnerPoolStatusUseCase) Execute(ctx context.Context, request dto.OwnerPoolStatusRequest) (*dto.OwnerPoolStatusResponse, error) {
	o, err := lookupOwner(ctx, uc.ownerRepo, request.OwnerKey)
	if err != nil {
		return nil, err
	}

	at := uc.now().UTC()
	if request.ActiveOn != nil {
		at = request.ActiveOn.UTC()
	}
	active, err := uc.poolRepo.HasActiveEntitlementPools(ctx, o.ID(), at)
	if err != nil {
		uc.logger.Errorw("failed to check entitlement derived pools", "owner_key", request.OwnerKey, "error", err)
		return nil, err
	}
	return &dto.OwnerPoolStatusResponse{
		OwnerKey:                  o.Key(),
		ActiveOn:                  at,
		HasActiveEntitlementPools: active,
	}, nil
}
