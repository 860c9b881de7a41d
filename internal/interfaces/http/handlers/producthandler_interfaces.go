package handlers

import (
	"context"

	productdto "github.com/candlepin/candlepin-sub005/internal/application/product/dto"
)

// Use case interfaces for ProductHandler

type removeProductUseCase interface {
	Execute(ctx context.Context, request productdto.RemoveProductRequest) (*productdto.RemoveProductResponse, error)
}
