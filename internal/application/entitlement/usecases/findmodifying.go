package usecases

import (
	"context"

	"github.com/candlepin/candlepin-sub005/internal/application/entitlement/dto"
	"github.com/candlepin/candlepin-sub005/internal/domain/entitlement"
	"github.com/candlepin/candlepin-sub005/internal/domain/permission"
	"github.com/candlepin/candlepin-sub005/internal/shared/errors"
	"github.com/candlepin/candlepin-sub005/internal/shared/logger"
)

// FindModifyingEntitlementsUseCase returns the consumer's entitlements
// whose products modify the products of a given entitlement.
type FindModifyingEntitlementsUseCase struct {
	entitlementRepo entitlement.Repository
	overlap         *entitlement.OverlapResolver
	logger          logger.Interface
}

func NewFindModifyingEntitlementsUseCase(
	entitlementRepo entitlement.Repository,
	overlap *entitlement.OverlapResolver,
	logger logger.Interface,
) *FindModifyingEntitlementsUseCase {
	return &FindModifyingEntitlementsUseCase{
		entitlementRepo: entitlementRepo,
		overlap:         overlap,
		logger:          logger,
	}
}

func (uc *FindModifyingEntitlementsUseCase) Execute(ctx context.Context, entitlementID string) (*dto.ModifyingResponse, error) {
	e, err := uc.entitlementRepo.GetByID(ctx, entitlementID)
	if err != nil {
		return nil, err
	}
	if e == nil || !permission.AllowsOwner(ctx, e.OwnerID(), permission.AccessReadOnly) {
		return nil, errors.NewNotFoundError("entitlement not found", entitlementID)
	}

	ids, err := uc.overlap.FindModifyingEntitlements(ctx, e)
	if err != nil {
		uc.logger.Errorw("failed to find modifying entitlements", "entitlement_id", entitlementID, "error", err)
		return nil, err
	}
	return &dto.ModifyingResponse{EntitlementID: entitlementID, Modifying: ids}, nil
}
