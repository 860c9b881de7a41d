package usecases

import (
	"context"
	"fmt"

	"github.com/candlepin/candlepin-sub005/internal/domain/entitlement"
	"github.com/candlepin/candlepin-sub005/internal/domain/permission"
	"github.com/candlepin/candlepin-sub005/internal/domain/pool"
	"github.com/candlepin/candlepin-sub005/internal/shared/db"
	"github.com/candlepin/candlepin-sub005/internal/shared/errors"
	"github.com/candlepin/candlepin-sub005/internal/shared/logger"
)

// RevokeEntitlementResult reports what a revocation touched.
type RevokeEntitlementResult struct {
	EntitlementID       string   `json:"entitlement_id"`
	DeletedPools        int64    `json:"deleted_pools"`
	DirtiedEntitlements []string `json:"dirtied_entitlements"`
}

// RevokeEntitlementUseCase removes an entitlement, returns its quantity to
// the pool and removes the pools it spawned. Entitlements modifying the
// revoked one are flagged for certificate regeneration.
type RevokeEntitlementUseCase struct {
	entitlementRepo entitlement.Repository
	poolRepo        pool.Repository
	overlap         *entitlement.OverlapResolver
	txMgr           *db.TransactionManager
	logger          logger.Interface
}

func NewRevokeEntitlementUseCase(
	entitlementRepo entitlement.Repository,
	poolRepo pool.Repository,
	overlap *entitlement.OverlapResolver,
	txMgr *db.TransactionManager,
	logger logger.Interface,
) *RevokeEntitlementUseCase {
	return &RevokeEntitlementUseCase{
		entitlementRepo: entitlementRepo,
		poolRepo:        poolRepo,
		overlap:         overlap,
		txMgr:           txMgr,
		logger:          logger,
	}
}

func (uc *RevokeEntitlementUseCase) Execute(ctx context.Context, entitlementID string) (*RevokeEntitlementResult, error) {
	uc.logger.Infow("executing revoke entitlement use case", "entitlement_id", entitlementID)

	e, err := uc.entitlementRepo.GetByID(ctx, entitlementID)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, errors.NewNotFoundError("entitlement not found", entitlementID)
	}
	if !permission.AllowsOwner(ctx, e.OwnerID(), permission.AccessAll) {
		return nil, errors.NewForbiddenError("not allowed to revoke entitlements of this owner")
	}

	result := &RevokeEntitlementResult{EntitlementID: entitlementID}
	err = uc.txMgr.RunInTransaction(ctx, func(txCtx context.Context) error {
		if _, err := uc.poolRepo.LockPools(txCtx, []string{e.PoolID()}); err != nil {
			return err
		}

		modifying, err := uc.overlap.FindModifyingEntitlements(txCtx, e)
		if err != nil {
			return err
		}

		if err := uc.entitlementRepo.Delete(txCtx, e.ID()); err != nil {
			return err
		}
		if err := uc.poolRepo.RecalculateConsumed(txCtx, []string{e.PoolID()}); err != nil {
			return err
		}

		deleted, err := uc.deleteDerivedPools(txCtx, e.ID())
		if err != nil {
			return err
		}
		result.DeletedPools = deleted

		if len(modifying) > 0 {
			if err := uc.entitlementRepo.MarkDirty(txCtx, modifying); err != nil {
				return err
			}
		}
		result.DirtiedEntitlements = modifying
		return nil
	})
	if err != nil {
		if !errors.IsAppError(err) {
			uc.logger.Errorw("failed to revoke entitlement", "entitlement_id", entitlementID, "error", err)
			return nil, fmt.Errorf("failed to revoke entitlement: %w", err)
		}
		return nil, err
	}

	uc.logger.Infow("entitlement revoked",
		"entitlement_id", entitlementID,
		"deleted_pools", result.DeletedPools,
		"dirtied", len(result.DirtiedEntitlements),
	)
	return result, nil
}

// deleteDerivedPools removes the pools spawned by entitlementID together
// with the entitlements drawn from them.
func (uc *RevokeEntitlementUseCase) deleteDerivedPools(ctx context.Context, entitlementID string) (int64, error) {
	derived, err := uc.poolRepo.ListBySourceEntitlements(ctx, []string{entitlementID})
	if err != nil {
		return 0, err
	}
	if len(derived) == 0 {
		return 0, nil
	}

	ids := make([]string, 0, len(derived))
	for _, p := range derived {
		ents, err := uc.entitlementRepo.ListByPool(ctx, p.ID())
		if err != nil {
			return 0, err
		}
		for _, de := range ents {
			if err := uc.entitlementRepo.Delete(ctx, de.ID()); err != nil {
				return 0, err
			}
		}
		ids = append(ids, p.ID())
	}
	return uc.poolRepo.BatchDelete(ctx, ids)
}
