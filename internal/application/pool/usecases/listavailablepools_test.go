package usecases

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/candlepin/candlepin-sub005/internal/application/pool/dto"
	"github.com/candlepin/candlepin-sub005/internal/domain/consumer"
	"github.com/candlepin/candlepin-sub005/internal/domain/owner"
	"github.com/candlepin/candlepin-sub005/internal/domain/permission"
	"github.com/candlepin/candlepin-sub005/internal/domain/pool"
	"github.com/candlepin/candlepin-sub005/internal/shared/errors"
	"github.com/candlepin/candlepin-sub005/internal/shared/logger"
	"github.com/candlepin/candlepin-sub005/internal/shared/query"
)

func testOwner(t *testing.T, id, key string) *owner.Owner {
	t.Helper()
	o, err := owner.NewOwner(key, "")
	require.NoError(t, err)
	require.NoError(t, o.SetID(id))
	return o
}

func testConsumer(t *testing.T, uuid, ownerID string, facts map[string]string) *consumer.Consumer {
	t.Helper()
	c, err := consumer.ReconstructConsumer("c-"+uuid, 1, consumer.Params{
		UUID:    uuid,
		OwnerID: ownerID,
		Name:    uuid,
		Type:    consumer.TypeSystem,
		Facts:   facts,
	})
	require.NoError(t, err)
	return c
}

func testPool(t *testing.T, id, ownerID string) *pool.Pool {
	t.Helper()
	p, err := pool.ReconstructPool(id, 1, pool.Params{
		OwnerID:   ownerID,
		ProductID: "prod-" + id,
		Quantity:  10,
		StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return p
}

// capturingPools records the last availability query it executed.
func capturingPools(t *testing.T, result ...*pool.Pool) (*mockPoolRepo, *pool.AvailabilityQuery) {
	t.Helper()
	captured := &pool.AvailabilityQuery{}
	repo := &mockPoolRepo{
		listAvailableFunc: func(ctx context.Context, q pool.AvailabilityQuery) (*query.Page[*pool.Pool], error) {
			*captured = q
			page := query.ApplyPaging(result, q.Page())
			return &page, nil
		},
	}
	return repo, captured
}

func TestListAvailablePoolsUseCase_ByOwner(t *testing.T) {
	acme := testOwner(t, "owner-1", "acme")
	pools, captured := capturingPools(t, testPool(t, "p1", acme.ID()), testPool(t, "p2", acme.ID()))
	uc := NewListAvailablePoolsUseCase(pools, newMockOwnerRepo(acme), newMockConsumerRepo(), logger.NewNopLogger())

	activeOn := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	resp, err := uc.Execute(context.Background(), dto.ListAvailableRequest{
		OwnerKey:   "acme",
		ProductIDs: []string{"prod-p1"},
		ActiveOn:   &activeOn,
		Attributes: map[string][]string{"virt_only": {"!true"}},
		Page:       query.NewPageRequest(1, 1, "id", query.SortAsc),
	})
	require.NoError(t, err)

	assert.Equal(t, int64(2), resp.Total)
	assert.Equal(t, 2, resp.TotalPages)
	require.Len(t, resp.Pools, 1)
	assert.Equal(t, "p1", resp.Pools[0].ID)

	assert.Equal(t, acme.ID(), captured.OwnerID())
	assert.Equal(t, acme.UeberProductID(), captured.ExcludedUeberProductID())
	assert.Equal(t, []string{"prod-p1"}, captured.ProductIDs())
	on, ok := captured.ActiveOn()
	require.True(t, ok)
	assert.Equal(t, activeOn, on)
	require.Len(t, captured.AttributeFilters(), 1)
	assert.Equal(t, "virt_only", captured.AttributeFilters()[0].Name)
	_, hostLookup := captured.GuestHostUUID()
	assert.False(t, hostLookup)
}

func TestListAvailablePoolsUseCase_IncludeUeber(t *testing.T) {
	acme := testOwner(t, "owner-1", "acme")
	pools, captured := capturingPools(t)
	uc := NewListAvailablePoolsUseCase(pools, newMockOwnerRepo(acme), newMockConsumerRepo(), logger.NewNopLogger())

	_, err := uc.Execute(context.Background(), dto.ListAvailableRequest{OwnerKey: "acme", IncludeUeber: true})
	require.NoError(t, err)
	assert.Empty(t, captured.ExcludedUeberProductID())
}

func TestListAvailablePoolsUseCase_GuestConsumerResolvesHost(t *testing.T) {
	acme := testOwner(t, "owner-1", "acme")
	host := testConsumer(t, "host-uuid", acme.ID(), nil)
	guest := testConsumer(t, "guest-uuid", acme.ID(), map[string]string{
		consumer.FactVirtIsGuest: "true",
		consumer.FactVirtUUID:    "VM-1",
	})

	consumers := newMockConsumerRepo(host, guest)
	var lookedUp []string
	consumers.getHostFunc = func(ctx context.Context, guestID, ownerID string) (*consumer.Consumer, error) {
		lookedUp = append(lookedUp, guestID+"@"+ownerID)
		return host, nil
	}
	pools, captured := capturingPools(t)
	uc := NewListAvailablePoolsUseCase(pools, newMockOwnerRepo(acme), consumers, logger.NewNopLogger())

	_, err := uc.Execute(context.Background(), dto.ListAvailableRequest{ConsumerUUID: "guest-uuid"})
	require.NoError(t, err)

	assert.Equal(t, []string{"VM-1@owner-1"}, lookedUp)
	hostUUID, ok := captured.GuestHostUUID()
	require.True(t, ok)
	assert.Equal(t, "host-uuid", hostUUID)
	assert.Equal(t, acme.ID(), captured.OwnerID())
	assert.Equal(t, acme.UeberProductID(), captured.ExcludedUeberProductID())
	require.NotNil(t, captured.Consumer())
	assert.Equal(t, "guest-uuid", captured.Consumer().UUID())
}

func TestListAvailablePoolsUseCase_GuestWithoutHost(t *testing.T) {
	acme := testOwner(t, "owner-1", "acme")
	guest := testConsumer(t, "guest-uuid", acme.ID(), map[string]string{
		consumer.FactVirtIsGuest: "true",
		consumer.FactVirtUUID:    "VM-1",
	})
	pools, captured := capturingPools(t)
	uc := NewListAvailablePoolsUseCase(pools, newMockOwnerRepo(acme), newMockConsumerRepo(guest), logger.NewNopLogger())

	_, err := uc.Execute(context.Background(), dto.ListAvailableRequest{ConsumerUUID: "guest-uuid"})
	require.NoError(t, err)

	hostUUID, ok := captured.GuestHostUUID()
	require.True(t, ok)
	assert.Empty(t, hostUUID)
}

func TestListAvailablePoolsUseCase_Restrictions(t *testing.T) {
	acme := testOwner(t, "owner-1", "acme")

	t.Run("owner permission restricts the query", func(t *testing.T) {
		pools, captured := capturingPools(t)
		uc := NewListAvailablePoolsUseCase(pools, newMockOwnerRepo(acme), newMockConsumerRepo(), logger.NewNopLogger())
		ctx := permission.WithPrincipal(context.Background(), &permission.Principal{
			Name:        "alice",
			Permissions: []permission.Permission{permission.OwnerPermission{OwnerID: acme.ID(), Access: permission.AccessReadOnly}},
		})

		_, err := uc.Execute(ctx, dto.ListAvailableRequest{OwnerKey: "acme"})
		require.NoError(t, err)
		assert.Len(t, captured.Restrictions(), 1)
	})

	t.Run("full access adds no restriction", func(t *testing.T) {
		pools, captured := capturingPools(t)
		uc := NewListAvailablePoolsUseCase(pools, newMockOwnerRepo(acme), newMockConsumerRepo(), logger.NewNopLogger())
		ctx := permission.WithPrincipal(context.Background(), &permission.Principal{
			Name:        "admin",
			Permissions: []permission.Permission{permission.FullAccess{}},
		})

		_, err := uc.Execute(ctx, dto.ListAvailableRequest{OwnerKey: "acme"})
		require.NoError(t, err)
		assert.Empty(t, captured.Restrictions())
	})

	t.Run("principal without pool permissions sees nothing", func(t *testing.T) {
		called := false
		pools := &mockPoolRepo{
			listAvailableFunc: func(ctx context.Context, q pool.AvailabilityQuery) (*query.Page[*pool.Pool], error) {
				called = true
				return nil, nil
			},
		}
		uc := NewListAvailablePoolsUseCase(pools, newMockOwnerRepo(acme), newMockConsumerRepo(), logger.NewNopLogger())
		ctx := permission.WithPrincipal(context.Background(), &permission.Principal{Name: "nobody"})

		resp, err := uc.Execute(ctx, dto.ListAvailableRequest{OwnerKey: "acme"})
		require.NoError(t, err)
		assert.False(t, called)
		assert.Empty(t, resp.Pools)
		assert.Zero(t, resp.Total)
	})
}

func TestListAvailablePoolsUseCase_Errors(t *testing.T) {
	acme := testOwner(t, "owner-1", "acme")
	uc := NewListAvailablePoolsUseCase(&mockPoolRepo{}, newMockOwnerRepo(acme), newMockConsumerRepo(), logger.NewNopLogger())

	tests := []struct {
		name    string
		request dto.ListAvailableRequest
		check   func(error) bool
	}{
		{"no owner or consumer", dto.ListAvailableRequest{}, errors.IsValidationError},
		{"unknown owner", dto.ListAvailableRequest{OwnerKey: "missing"}, errors.IsNotFoundError},
		{"unknown consumer", dto.ListAvailableRequest{ConsumerUUID: "missing"}, errors.IsNotFoundError},
		{
			"conflicting future modes",
			dto.ListAvailableRequest{OwnerKey: "acme", AddFuture: true, OnlyFuture: true},
			errors.IsValidationError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.Execute(context.Background(), tt.request)
			require.Error(t, err)
			assert.True(t, tt.check(err), err)
		})
	}
}

func TestFindOversubscribedPoolsUseCase(t *testing.T) {
	acme := testOwner(t, "owner-1", "acme")
	over := testPool(t, "p1", acme.ID())
	var got pool.OversubscriptionQuery
	pools := &mockPoolRepo{
		findOversubscribedFunc: func(ctx context.Context, q pool.OversubscriptionQuery) ([]*pool.Pool, error) {
			got = q
			return []*pool.Pool{over}, nil
		},
	}
	uc := NewFindOversubscribedPoolsUseCase(pools, newMockOwnerRepo(acme), logger.NewNopLogger())

	resp, err := uc.Execute(context.Background(), dto.OversubscribedRequest{
		OwnerKey:       "acme",
		BySubscription: map[string]string{"sub-1": "ent-1"},
	})
	require.NoError(t, err)
	require.Len(t, resp, 1)
	assert.Equal(t, "p1", resp[0].ID)
	assert.Equal(t, acme.ID(), got.OwnerID())
	assert.Equal(t, []pool.SubscriptionEntitlement{{SubscriptionID: "sub-1", EntitlementID: "ent-1"}}, got.Pairs())

	ctx := permission.WithPrincipal(context.Background(), &permission.Principal{
		Name:        "bob",
		Permissions: []permission.Permission{permission.OwnerPermission{OwnerID: "owner-2", Access: permission.AccessAll}},
	})
	_, err = uc.Execute(ctx, dto.OversubscribedRequest{OwnerKey: "acme"})
	assert.True(t, errors.IsNotFoundError(err))
}

func TestGetPoolUseCase(t *testing.T) {
	p := testPool(t, "p1", "owner-1")
	pools := &mockPoolRepo{
		getByIDFunc: func(ctx context.Context, id string) (*pool.Pool, error) {
			if id == p.ID() {
				return p, nil
			}
			return nil, nil
		},
	}
	uc := NewGetPoolUseCase(pools, logger.NewNopLogger())

	resp, err := uc.Execute(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "prod-p1", resp.ProductID)

	_, err = uc.Execute(context.Background(), "missing")
	assert.True(t, errors.IsNotFoundError(err))

	ctx := permission.WithPrincipal(context.Background(), &permission.Principal{
		Name:        "bob",
		Permissions: []permission.Permission{permission.OwnerPermission{OwnerID: "owner-2", Access: permission.AccessAll}},
	})
	_, err = uc.Execute(ctx, "p1")
	assert.True(t, errors.IsNotFoundError(err))
}
