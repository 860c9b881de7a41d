package usecases

import (
	"context"
	"fmt"

	"github.com/candlepin/candlepin-sub005/internal/application/pool/dto"
	"github.com/candlepin/candlepin-sub005/internal/domain/consumer"
	"github.com/candlepin/candlepin-sub005/internal/domain/owner"
	"github.com/candlepin/candlepin-sub005/internal/domain/permission"
	"github.com/candlepin/candlepin-sub005/internal/domain/pool"
	"github.com/candlepin/candlepin-sub005/internal/shared/errors"
	"github.com/candlepin/candlepin-sub005/internal/shared/logger"
	"github.com/candlepin/candlepin-sub005/internal/shared/query"
)

// ListAvailablePoolsUseCase lists the pools an owner or one of its consumers
// may draw from, limited by the caller's permissions.
type ListAvailablePoolsUseCase struct {
	poolRepo     pool.Repository
	ownerRepo    owner.Repository
	consumerRepo consumer.Repository
	logger       logger.Interface
}

func NewListAvailablePoolsUseCase(
	poolRepo pool.Repository,
	ownerRepo owner.Repository,
	consumerRepo consumer.Repository,
	logger logger.Interface,
) *ListAvailablePoolsUseCase {
	return &ListAvailablePoolsUseCase{
		poolRepo:     poolRepo,
		ownerRepo:    ownerRepo,
		consumerRepo: consumerRepo,
		logger:       logger,
	}
}

func (uc *ListAvailablePoolsUseCase) Execute(ctx context.Context, request dto.ListAvailableRequest) (*dto.ListPoolsResponse, error) {
	if request.OwnerKey == "" && request.ConsumerUUID == "" {
		return nil, errors.NewValidationError("owner or consumer is required")
	}

	opts := []pool.AvailabilityOption{
		pool.WithProductIDs(request.ProductIDs...),
		pool.WithPoolIDs(request.PoolIDs...),
		pool.WithSubscriptionID(request.SubscriptionID),
		pool.WithMatches(request.Matches...),
		pool.WithPage(request.Page),
	}

	var o *owner.Owner
	if request.OwnerKey != "" {
		found, err := uc.ownerRepo.GetByKey(ctx, request.OwnerKey)
		if err != nil {
			return nil, fmt.Errorf("failed to get owner: %w", err)
		}
		if found == nil {
			return nil, errors.NewNotFoundError("owner not found", request.OwnerKey)
		}
		o = found
		opts = append(opts, pool.WithOwner(o.ID()))
	}

	if request.ConsumerUUID != "" {
		c, err := uc.consumerRepo.VerifyAndLookup(ctx, request.ConsumerUUID)
		if err != nil {
			return nil, err
		}
		opts = append(opts, pool.WithConsumer(c))

		hostOpt, err := uc.guestHost(ctx, c)
		if err != nil {
			return nil, err
		}
		if hostOpt != nil {
			opts = append(opts, hostOpt)
		}

		if o == nil {
			o, err = uc.ownerRepo.GetByID(ctx, c.OwnerID())
			if err != nil {
				return nil, fmt.Errorf("failed to get owner: %w", err)
			}
			if o == nil {
				return nil, errors.NewNotFoundError("owner not found", c.OwnerID())
			}
		}
	}
	opts = append(opts, pool.WithUeberProduct(o.UeberProductID(), request.IncludeUeber))

	if principal, ok := permission.PrincipalFrom(ctx); ok && !principal.HasFullAccess() {
		restrictions := principal.Restrictions(permission.EntityPool)
		if len(restrictions) == 0 {
			uc.logger.Warnw("principal holds no pool permissions", "principal", principal.Name)
			page := query.ApplyPaging([]*pool.Pool{}, request.Page)
			return dto.ToListPoolsResponse(&page), nil
		}
		opts = append(opts, pool.WithRestrictions(restrictions))
	}

	if request.ActiveOn != nil {
		opts = append(opts, pool.WithActiveOn(*request.ActiveOn))
	}
	if request.AddFuture {
		opts = append(opts, pool.WithAddFuture())
	}
	if request.OnlyFuture {
		opts = append(opts, pool.WithOnlyFuture())
	}
	if request.After != nil {
		opts = append(opts, pool.WithAfter(*request.After))
	}
	for name, values := range request.Attributes {
		opts = append(opts, pool.WithAttributeFilter(name, values...))
	}

	q, err := pool.NewAvailabilityQuery(opts...)
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}

	page, err := uc.poolRepo.ListAvailable(ctx, q)
	if err != nil {
		if !errors.IsAppError(err) {
			uc.logger.Errorw("failed to list available pools", "owner_key", request.OwnerKey, "consumer_uuid", request.ConsumerUUID, "error", err)
		}
		return nil, err
	}

	uc.logger.Debugw("listed available pools",
		"owner_id", o.ID(),
		"consumer_uuid", request.ConsumerUUID,
		"returned", len(page.Items),
		"total", page.Total,
	)
	return dto.ToListPoolsResponse(page), nil
}

// guestHost resolves the host of a guest consumer. Non-guests need no
// lookup and get a nil option.
func (uc *ListAvailablePoolsUseCase) guestHost(ctx context.Context, c *consumer.Consumer) (pool.AvailabilityOption, error) {
	if !c.IsGuest() {
		return nil, nil
	}
	virtUUID, ok := c.VirtUUID()
	if !ok {
		return nil, nil
	}
	host, err := uc.consumerRepo.GetHost(ctx, virtUUID, c.OwnerID())
	if err != nil {
		return nil, err
	}
	if host == nil {
		return pool.WithGuestHost(""), nil
	}
	return pool.WithGuestHost(host.UUID()), nil
}
