package handlers

import (
	"context"

	pooldto "github.com/candlepin/candlepin-sub005/internal/application/pool/dto"
)

// Use case interfaces for PoolHandler

type listAvailablePoolsUseCase interface {
	Execute(ctx context.Context, request pooldto.ListAvailableRequest) (*pooldto.ListPoolsResponse, error)
}

type getPoolUseCase interface {
	Execute(ctx context.Context, poolID string) (*pooldto.PoolResponse, error)
}

type findOversubscribedPoolsUseCase interface {
	Execute(ctx context.Context, request pooldto.OversubscribedRequest) ([]*pooldto.PoolResponse, error)
}

type listSubscriptionPoolsUseCase interface {
	Execute(ctx context.Context, request pooldto.SubscriptionPoolsRequest) ([]*pooldto.PoolResponse, error)
}

type getOwnerPoolStatusUseCase interface {
	Execute(ctx context.Context, request pooldto.OwnerPoolStatusRequest) (*pooldto.OwnerPoolStatusResponse, error)
}
