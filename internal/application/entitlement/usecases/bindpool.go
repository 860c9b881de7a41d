package usecases

import (
	"context"
	"fmt"
	"slices"

	"github.com/candlepin/candlepin-sub005/internal/application/entitlement/dto"
	"github.com/candlepin/candlepin-sub005/internal/domain/consumer"
	"github.com/candlepin/candlepin-sub005/internal/domain/entitlement"
	"github.com/candlepin/candlepin-sub005/internal/domain/permission"
	"github.com/candlepin/candlepin-sub005/internal/domain/pool"
	"github.com/candlepin/candlepin-sub005/internal/shared/db"
	"github.com/candlepin/candlepin-sub005/internal/shared/errors"
	"github.com/candlepin/candlepin-sub005/internal/shared/logger"
)

// BindPoolUseCase grants a consumer an entitlement from one pool. The pool
// row stays locked from the quantity check until commit, so concurrent
// binds against the same pool are serialized.
type BindPoolUseCase struct {
	poolRepo        pool.Repository
	entitlementRepo entitlement.Repository
	consumerRepo    consumer.Repository
	txMgr           *db.TransactionManager
	logger          logger.Interface
}

func NewBindPoolUseCase(
	poolRepo pool.Repository,
	entitlementRepo entitlement.Repository,
	consumerRepo consumer.Repository,
	txMgr *db.TransactionManager,
	logger logger.Interface,
) *BindPoolUseCase {
	return &BindPoolUseCase{
		poolRepo:        poolRepo,
		entitlementRepo: entitlementRepo,
		consumerRepo:    consumerRepo,
		txMgr:           txMgr,
		logger:          logger,
	}
}

func (uc *BindPoolUseCase) Execute(ctx context.Context, request dto.BindRequest) (*dto.EntitlementResponse, error) {
	quantity := request.Quantity
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 0 {
		return nil, errors.NewValidationError("quantity must be at least 1")
	}

	uc.logger.Infow("executing bind pool use case",
		"consumer_uuid", request.ConsumerUUID,
		"pool_id", request.PoolID,
		"quantity", quantity,
	)

	c, err := uc.consumerRepo.VerifyAndLookup(ctx, request.ConsumerUUID)
	if err != nil {
		return nil, err
	}
	if !permission.AllowsOwner(ctx, c.OwnerID(), permission.AccessCreate) {
		return nil, errors.NewForbiddenError("not allowed to bind for this owner")
	}

	var created *entitlement.Entitlement
	err = uc.txMgr.RunInTransaction(ctx, func(txCtx context.Context) error {
		locked, err := uc.poolRepo.LockPools(txCtx, []string{request.PoolID})
		if err != nil {
			return err
		}
		if len(locked) == 0 {
			return errors.NewNotFoundError("pool not found", request.PoolID)
		}
		p := locked[0]
		if p.OwnerID() != c.OwnerID() {
			return errors.NewValidationError("pool belongs to another owner", p.ID())
		}

		e, err := entitlement.NewEntitlement(entitlement.Params{
			OwnerID:    p.OwnerID(),
			ConsumerID: c.ID(),
			PoolID:     p.ID(),
			Quantity:   quantity,
			Pool: entitlement.PoolSnapshot{
				StartDate:          p.StartDate(),
				EndDate:            p.EndDate(),
				ProductID:          p.ProductID(),
				ProvidedProductIDs: p.ProvidedProductIDs(),
			},
		})
		if err != nil {
			return errors.NewValidationError(err.Error())
		}
		if err := uc.entitlementRepo.Create(txCtx, e); err != nil {
			return err
		}
		if err := uc.poolRepo.RecalculateConsumed(txCtx, []string{p.ID()}); err != nil {
			return err
		}

		oversubscribed, err := uc.isOversubscribed(txCtx, p)
		if err != nil {
			return err
		}
		if oversubscribed {
			uc.logger.Warnw("bind rejected, pool would be oversubscribed",
				"pool_id", p.ID(),
				"quantity", p.Quantity(),
				"requested", quantity,
			)
			return errors.NewConflictError(entitlement.ErrInsufficientQuantity.Error(), p.ID())
		}

		dirtied, err := uc.markModifyingDirty(txCtx, e)
		if err != nil {
			return err
		}
		if len(dirtied) > 0 {
			uc.logger.Infow("entitlements modifying the new grant marked dirty",
				"entitlement_id", e.ID(),
				"dirtied", len(dirtied),
			)
		}

		created = e
		return nil
	})
	if err != nil {
		if !errors.IsAppError(err) {
			uc.logger.Errorw("failed to bind pool", "pool_id", request.PoolID, "error", err)
			return nil, fmt.Errorf("failed to bind pool: %w", err)
		}
		return nil, err
	}

	uc.logger.Infow("pool bound successfully",
		"entitlement_id", created.ID(),
		"consumer_id", c.ID(),
		"pool_id", request.PoolID,
	)
	return dto.ToEntitlementResponse(created), nil
}

// markModifyingDirty flags the consumer's other entitlements whose content
// modifies a product granted by e, so their certificates pick up the new
// grant.
func (uc *BindPoolUseCase) markModifyingDirty(ctx context.Context, e *entitlement.Entitlement) ([]string, error) {
	modifying, err := uc.entitlementRepo.ListModifying(ctx, e.ConsumerID(), e.ProductIDs(), e.DateRange())
	if err != nil {
		return nil, err
	}
	ids := slices.DeleteFunc(entitlement.IDs(modifying), func(id string) bool { return id == e.ID() })
	if len(ids) == 0 {
		return nil, nil
	}
	if err := uc.entitlementRepo.MarkDirty(ctx, ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// isOversubscribed re-reads the pool after its consumption was recomputed.
// Pools backed by a subscription go through the subscription lookup so
// derived pools of the same subscription are judged the same way.
func (uc *BindPoolUseCase) isOversubscribed(ctx context.Context, p *pool.Pool) (bool, error) {
	if p.SubscriptionID() != "" {
		q := pool.NewOversubscriptionQuery(p.OwnerID(), map[string]string{p.SubscriptionID(): p.SourceEntitlementID()})
		over, err := uc.poolRepo.FindOversubscribed(ctx, q)
		if err != nil {
			return false, err
		}
		for _, o := range over {
			if o.ID() == p.ID() {
				return true, nil
			}
		}
		return false, nil
	}

	reloaded, err := uc.poolRepo.GetByID(ctx, p.ID())
	if err != nil {
		return false, err
	}
	if reloaded == nil {
		return false, errors.NewNotFoundError("pool not found", p.ID())
	}
	return reloaded.IsOversubscribed(), nil
}
