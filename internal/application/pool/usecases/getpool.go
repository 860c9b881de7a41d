package usecases

import (
	"context"

	"github.com/candlepin/candlepin-sub005/internal/application/pool/dto"
	"github.com/candlepin/candlepin-sub005/internal/domain/permission"
	"github.com/candlepin/candlepin-sub005/internal/domain/pool"
	"github.com/candlepin/candlepin-sub005/internal/shared/errors"
	"github.com/candlepin/candlepin-sub005/internal/shared/logger"
)

type GetPoolUseCase struct {
	poolRepo pool.Repository
	logger   logger.Interface
}

func NewGetPoolUseCase(poolRepo pool.Repository, logger logger.Interface) *GetPoolUseCase {
	return &GetPoolUseCase{
		poolRepo: poolRepo,
		logger:   logger,
	}
}

// Execute returns the pool when the caller may see it. Pools hidden by the
// caller's permissions are reported as missing.
func (uc *GetPoolUseCase) Execute(ctx context.Context, poolID string) (*dto.PoolResponse, error) {
	p, err := uc.poolRepo.GetByID(ctx, poolID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, errors.NewNotFoundError("pool not found", poolID)
	}
	if principal, ok := permission.PrincipalFrom(ctx); ok && !principal.HasFullAccess() {
		restrictions := principal.Restrictions(permission.EntityPool)
		if len(restrictions) == 0 || !permission.Allows(restrictions, p.PermissionSubject()) {
			return nil, errors.NewNotFoundError("pool not found", poolID)
		}
	}
	return dto.ToPoolResponse(p), nil
}
