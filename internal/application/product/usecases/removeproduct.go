package usecases

import (
	"context"

	"github.com/candlepin/candlepin-sub005/internal/application/product/dto"
	"github.com/candlepin/candlepin-sub005/internal/domain/owner"
	"github.com/candlepin/candlepin-sub005/internal/domain/permission"
	"github.com/candlepin/candlepin-sub005/internal/domain/product"
	"github.com/candlepin/candlepin-sub005/internal/shared/errors"
	"github.com/candlepin/candlepin-sub005/internal/shared/logger"
)

// RemoveProductUseCase unlinks a product from an owner. The repository
// refuses while an active pool of the owner still references the product.
type RemoveProductUseCase struct {
	productRepo product.Repository
	ownerRepo   owner.Repository
	logger      logger.Interface
}

func NewRemoveProductUseCase(productRepo product.Repository, ownerRepo owner.Repository, logger logger.Interface) *RemoveProductUseCase {
	return &RemoveProductUseCase{
		productRepo: productRepo,
		ownerRepo:   ownerRepo,
		logger:      logger,
	}
}

func (uc *RemoveProductUseCase) Execute(ctx context.Context, request dto.RemoveProductRequest) (*dto.RemoveProductResponse, error) {
	if request.ProductID == "" {
		return nil, errors.NewValidationError("product id is required")
	}

	o, err := uc.ownerRepo.GetByKey(ctx, request.OwnerKey)
	if err != nil {
		return nil, err
	}
	if o == nil || !permission.AllowsOwner(ctx, o.ID(), permission.AccessReadOnly) {
		return nil, errors.NewNotFoundError("owner not found", request.OwnerKey)
	}
	if !permission.AllowsOwner(ctx, o.ID(), permission.AccessAll) {
		return nil, errors.NewForbiddenError("not allowed to remove products of this owner")
	}

	if err := uc.productRepo.RemoveFromOwner(ctx, o.ID(), request.ProductID); err != nil {
		if !errors.IsAppError(err) {
			uc.logger.Errorw("failed to remove product", "owner_key", request.OwnerKey, "product_id", request.ProductID, "error", err)
		}
		return nil, err
	}

	uc.logger.Infow("product removed", "owner_key", request.OwnerKey, "product_id", request.ProductID)
	return &dto.RemoveProductResponse{OwnerKey: o.Key(), ProductID: request.ProductID}, nil
}
