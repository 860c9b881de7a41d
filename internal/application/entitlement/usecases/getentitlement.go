package usecases

import (
	"context"
	"time"

	"github.com/candlepin/candlepin-sub005/internal/application/entitlement/dto"
	"github.com/candlepin/candlepin-sub005/internal/domain/consumer"
	"github.com/candlepin/candlepin-sub005/internal/domain/entitlement"
	"github.com/candlepin/candlepin-sub005/internal/domain/permission"
	"github.com/candlepin/candlepin-sub005/internal/domain/shared"
	"github.com/candlepin/candlepin-sub005/internal/shared/errors"
	"github.com/candlepin/candlepin-sub005/internal/shared/logger"
)

type GetEntitlementUseCase struct {
	entitlementRepo entitlement.Repository
	logger          logger.Interface
}

func NewGetEntitlementUseCase(entitlementRepo entitlement.Repository, logger logger.Interface) *GetEntitlementUseCase {
	return &GetEntitlementUseCase{
		entitlementRepo: entitlementRepo,
		logger:          logger,
	}
}

func (uc *GetEntitlementUseCase) Execute(ctx context.Context, entitlementID string) (*dto.EntitlementResponse, error) {
	e, err := uc.entitlementRepo.GetByID(ctx, entitlementID)
	if err != nil {
		return nil, err
	}
	if e == nil || !permission.AllowsOwner(ctx, e.OwnerID(), permission.AccessReadOnly) {
		return nil, errors.NewNotFoundError("entitlement not found", entitlementID)
	}
	return dto.ToEntitlementResponse(e), nil
}

// ListConsumerEntitlementsUseCase lists the entitlements of a consumer,
// optionally narrowed to an instant or to the ones granting a product.
type ListConsumerEntitlementsUseCase struct {
	entitlementRepo entitlement.Repository
	consumerRepo    consumer.Repository
	logger          logger.Interface
	now             func() time.Time
}

func NewListConsumerEntitlementsUseCase(
	entitlementRepo entitlement.Repository,
	consumerRepo consumer.Repository,
	logger logger.Interface,
) *ListConsumerEntitlementsUseCase {
	return &ListConsumerEntitlementsUseCase{
		entitlementRepo: entitlementRepo,
		consumerRepo:    consumerRepo,
		logger:          logger,
		now:             time.Now,
	}
}

func (uc *ListConsumerEntitlementsUseCase) Execute(ctx context.Context, request dto.ListConsumerEntitlementsRequest) ([]*dto.EntitlementResponse, error) {
	c, err := uc.consumerRepo.VerifyAndLookup(ctx, request.ConsumerUUID)
	if err != nil {
		return nil, err
	}
	if !permission.AllowsOwner(ctx, c.OwnerID(), permission.AccessReadOnly) {
		return nil, errors.NewNotFoundError("consumer not found", request.ConsumerUUID)
	}

	var ents []*entitlement.Entitlement
	switch {
	case request.ProductID != "":
		at := uc.now().UTC()
		if request.ActiveOn != nil {
			at = request.ActiveOn.UTC()
		}
		ents, err = uc.entitlementRepo.ListProviding(ctx, c.ID(), request.ProductID, shared.DateRange{Start: at, End: at})
	case request.ActiveOn != nil:
		ents, err = uc.entitlementRepo.ListActiveAndFutureByConsumerAndDate(ctx, c.ID(), request.ActiveOn.UTC())
	default:
		ents, err = uc.entitlementRepo.ListByConsumer(ctx, c.ID())
	}
	if err != nil {
		return nil, err
	}

	uc.logger.Debugw("listed consumer entitlements",
		"consumer_uuid", request.ConsumerUUID,
		"product_id", request.ProductID,
		"count", len(ents),
	)
	return dto.ToEntitlementResponses(ents), nil
}
