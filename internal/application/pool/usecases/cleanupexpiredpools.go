package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/candlepin/candlepin-sub005/internal/domain/pool"
	"github.com/candlepin/candlepin-sub005/internal/shared/db"
	"github.com/candlepin/candlepin-sub005/internal/shared/logger"
)

// CleanupExpiredPoolsUseCase removes pools that have ended and hold no
// entitlements. Each batch is deleted in its own transaction.
type CleanupExpiredPoolsUseCase struct {
	poolRepo  pool.Repository
	txMgr     *db.TransactionManager
	batchSize int
	now       func() time.Time
	logger    logger.Interface
}

func NewCleanupExpiredPoolsUseCase(
	poolRepo pool.Repository,
	txMgr *db.TransactionManager,
	batchSize int,
	logger logger.Interface,
) *CleanupExpiredPoolsUseCase {
	if batchSize <= 0 {
		batchSize = db.InBlockSize()
	}
	return &CleanupExpiredPoolsUseCase{
		poolRepo:  poolRepo,
		txMgr:     txMgr,
		batchSize: batchSize,
		now:       func() time.Time { return time.Now().UTC() },
		logger:    logger,
	}
}

// Execute deletes expired pools until none remain and returns how many were
// removed.
func (uc *CleanupExpiredPoolsUseCase) Execute(ctx context.Context) (int, error) {
	now := uc.now()
	total := 0
	for {
		if err := ctx.Err(); err != nil {
			return total, err
		}

		expired, err := uc.poolRepo.ListExpired(ctx, now, uc.batchSize)
		if err != nil {
			return total, fmt.Errorf("failed to list expired pools: %w", err)
		}
		if len(expired) == 0 {
			break
		}

		ids := make([]string, 0, len(expired))
		for _, p := range expired {
			ids = append(ids, p.ID())
		}

		var deleted int64
		err = uc.txMgr.RunInTransaction(ctx, func(txCtx context.Context) error {
			n, err := uc.poolRepo.BatchDelete(txCtx, ids)
			deleted = n
			return err
		})
		if err != nil {
			uc.logger.Errorw("failed to delete expired pools", "count", len(ids), "error", err)
			return total, fmt.Errorf("failed to delete expired pools: %w", err)
		}
		total += int(deleted)

		// a short batch means the listing is exhausted
		if len(expired) < uc.batchSize || deleted == 0 {
			break
		}
	}

	if total > 0 {
		uc.logger.Infow("expired pools removed", "count", total)
	}
	return total, nil
}
