package usecases

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/candlepin/candlepin-sub005/internal/application/pool/dto"
	"github.com/candlepin/candlepin-sub005/internal/domain/permission"
	"github.com/candlepin/candlepin-sub005/internal/domain/pool"
	"github.com/candlepin/candlepin-sub005/internal/shared/errors"
	"github.com/candlepin/candlepin-sub005/internal/shared/logger"
)

func TestListSubscriptionPoolsUseCase(t *testing.T) {
	acme := testOwner(t, "owner-1", "acme")
	p := testPool(t, "p1", acme.ID())

	var gotOwner string
	var gotIDs []string
	pools := &mockPoolRepo{
		bySubscriptionsFunc: func(ctx context.Context, ownerID string, subscriptionIDs []string) ([]*pool.Pool, error) {
			gotOwner, gotIDs = ownerID, subscriptionIDs
			return []*pool.Pool{p}, nil
		},
	}
	uc := NewListSubscriptionPoolsUseCase(pools, newMockOwnerRepo(acme), logger.NewNopLogger())

	resp, err := uc.Execute(context.Background(), dto.SubscriptionPoolsRequest{OwnerKey: "acme", SubscriptionIDs: []string{"sub-1", "", "sub-2"}})
	require.NoError(t, err)
	require.Len(t, resp, 1)
	assert.Equal(t, "p1", resp[0].ID)
	assert.Equal(t, acme.ID(), gotOwner)
	assert.Equal(t, []string{"sub-1", "sub-2"}, gotIDs)

	tests := []struct {
		name    string
		ctx     context.Context
		request dto.SubscriptionPoolsRequest
		check   func(error) bool
	}{
		{"no subscriptions", context.Background(), dto.SubscriptionPoolsRequest{OwnerKey: "acme", SubscriptionIDs: []string{""}}, errors.IsValidationError},
		{"unknown owner", context.Background(), dto.SubscriptionPoolsRequest{OwnerKey: "nobody", SubscriptionIDs: []string{"sub-1"}}, errors.IsNotFoundError},
		{
			"owner hidden by permissions",
			permission.WithPrincipal(context.Background(), &permission.Principal{
				Name:        "bob",
				Permissions: []permission.Permission{permission.OwnerPermission{OwnerID: "owner-2", Access: permission.AccessAll}},
			}),
			dto.SubscriptionPoolsRequest{OwnerKey: "acme", SubscriptionIDs: []string{"sub-1"}},
			errors.IsNotFoundError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.Execute(tt.ctx, tt.request)
			require.Error(t, err)
			assert.True(t, tt.check(err), err.Error())
		})
	}
}

func TestGetOwnerPoolStatusUseCase(t *testing.T) {
	acme := testOwner(t, "owner-1", "acme")
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	var gotDate time.Time
	pools := &mockPoolRepo{
		hasEntPoolsFunc: func(ctx context.Context, ownerID string, date time.Time) (bool, error) {
			gotDate = date
			return date.Before(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)), nil
		},
	}
	uc := NewGetOwnerPoolStatusUseCase(pools, newMockOwnerRepo(acme), logger.NewNopLogger())
	uc.now = func() time.Time { return now }

	resp, err := uc.Execute(context.Background(), dto.OwnerPoolStatusRequest{OwnerKey: "acme"})
	require.NoError(t, err)
	assert.True(t, resp.HasActiveEntitlementPools)
	assert.Equal(t, "acme", resp.OwnerKey)
	assert.True(t, gotDate.Equal(now))

	later := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	resp, err = uc.Execute(context.Background(), dto.OwnerPoolStatusRequest{OwnerKey: "acme", ActiveOn: &later})
	require.NoError(t, err)
	assert.False(t, resp.HasActiveEntitlementPools)
	assert.True(t, resp.ActiveOn.Equal(later))

	_, err = uc.Execute(context.Background(), dto.OwnerPoolStatusRequest{OwnerKey: "nobody"})
	assert.True(t, errors.IsNotFoundError(err))

	pools.hasEntPoolsFunc = func(ctx context.Context, ownerID string, date time.Time) (bool, error) {
		return false, assert.AnError
	}
	_, err = uc.Execute(context.Background(), dto.OwnerPoolStatusRequest{OwnerKey: "acme"})
	assert.ErrorIs(t, err, assert.AnError)
}
