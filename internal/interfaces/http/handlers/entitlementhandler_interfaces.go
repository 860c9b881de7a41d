package handlers

import (
	"context"

	entdto "github.com/candlepin/candlepin-sub005/internal/application/entitlement/dto"
	entusecases "github.com/candlepin/candlepin-sub005/internal/application/entitlement/usecases"
)

// Use case interfaces for EntitlementHandler

type bindPoolUseCase interface {
	Execute(ctx context.Context, request entdto.BindRequest) (*entdto.EntitlementResponse, error)
}

type getEntitlementUseCase interface {
	Execute(ctx context.Context, entitlementID string) (*entdto.EntitlementResponse, error)
}

type listConsumerEntitlementsUseCase interface {
	Execute(ctx context.Context, request entdto.ListConsumerEntitlementsRequest) ([]*entdto.EntitlementResponse, error)
}

type revokeEntitlementUseCase interface {
	Execute(ctx context.Context, entitlementID string) (*entusecases.RevokeEntitlementResult, error)
}

type findModifyingEntitlementsUseCase interface {
	Execute(ctx context.Context, entitlementID string) (*entdto.ModifyingResponse, error)
}
