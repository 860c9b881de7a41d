package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/candlepin/candlepin-sub005/internal/domain/consumer"
	"github.com/candlepin/candlepin-sub005/internal/shared/errors"
	"github.com/candlepin/candlepin-sub005/internal/shared/logger"
)

func newConsumerRepo(t *testing.T) (consumer.Repository, *fixture) {
	f := newFixture(t)
	return NewConsumerRepository(f.db, consumer.NewDefaultFactValidator(), logger.NewNopLogger()), f
}

func registerConsumer(t *testing.T, repo consumer.Repository, p consumer.Params) *consumer.Consumer {
	t.Helper()
	if p.Name == "" {
		p.Name = "system"
	}
	if p.Type.Label() == "" {
		p.Type = consumer.TypeSystem
	}
	c, err := consumer.NewConsumer(p)
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), c))
	return c
}

func TestConsumerRepository_CreateAndLookup(t *testing.T) {
	repo, f := newConsumerRepo(t)
	o := f.owner("acme")

	c := registerConsumer(t, repo, consumer.Params{
		OwnerID:  o.ID(),
		Username: "admin",
		Facts:    map[string]string{"cpu.cpu_socket(s)": "2", "virt.is_guest": "false"},
		GuestIDs: []string{"Guest-A"},
	})
	assert.NotEmpty(t, c.UUID())
	assert.NotEmpty(t, c.ID())

	got, err := repo.GetByUUID(f.ctx, c.UUID())
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "admin", got.Username())
	assert.Equal(t, "2", got.Facts()["cpu.cpu_socket(s)"])
	assert.Equal(t, []string{"Guest-A"}, got.GuestIDs())

	missing, err := repo.GetByUUID(f.ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	_, err = repo.VerifyAndLookup(f.ctx, "nope")
	require.Error(t, err)
	assert.True(t, errors.IsNotFoundError(err))
}

func TestConsumerRepository_RejectsInvalidFacts(t *testing.T) {
	repo, f := newConsumerRepo(t)
	o := f.owner("acme")

	c, err := consumer.NewConsumer(consumer.Params{
		OwnerID: o.ID(),
		Name:    "system",
		Type:    consumer.TypeSystem,
		Facts:   map[string]string{"cpu.cpu_socket(s)": "two"},
	})
	require.NoError(t, err)

	err = repo.Create(f.ctx, c)
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
}

func TestConsumerRepository_UpdateOptimisticLocking(t *testing.T) {
	repo, f := newConsumerRepo(t)
	o := f.owner("acme")
	c := registerConsumer(t, repo, consumer.Params{OwnerID: o.ID(), Facts: map[string]string{"a": "1"}})

	stale, err := repo.GetByUUID(f.ctx, c.UUID())
	require.NoError(t, err)

	c.SetFacts(map[string]string{"b": "2"})
	c.SetGuestIDs([]string{"g1", "g2"})
	require.NoError(t, repo.Update(f.ctx, c))
	assert.Equal(t, 2, c.Version())

	got, err := repo.GetByUUID(f.ctx, c.UUID())
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"b": "2"}, got.Facts())
	assert.ElementsMatch(t, []string{"g1", "g2"}, got.GuestIDs())

	err = repo.Update(f.ctx, stale)
	require.Error(t, err)
	assert.True(t, errors.IsConcurrencyError(err))
}

func TestConsumerRepository_GetHost(t *testing.T) {
	repo, f := newConsumerRepo(t)
	acme := f.owner("acme")
	globex := f.owner("globex")

	oldHost := registerConsumer(t, repo, consumer.Params{OwnerID: acme.ID(), Name: "old", Type: consumer.TypeHypervisor, GuestIDs: []string{"GUEST-1"}})
	registerConsumer(t, repo, consumer.Params{OwnerID: globex.ID(), Name: "other", Type: consumer.TypeHypervisor, GuestIDs: []string{"guest-2"}})

	host, err := repo.GetHost(f.ctx, "guest-1", acme.ID())
	require.NoError(t, err)
	require.NotNil(t, host)
	assert.Equal(t, oldHost.UUID(), host.UUID())

	host, err = repo.GetHost(f.ctx, "guest-2", acme.ID())
	require.NoError(t, err)
	assert.Nil(t, host, "hosts of other owners are not visible")

	// The guest migrates to a new host.
	oldHost.SetGuestIDs(nil)
	require.NoError(t, repo.Update(f.ctx, oldHost))
	newHost := registerConsumer(t, repo, consumer.Params{OwnerID: acme.ID(), Name: "new", Type: consumer.TypeHypervisor, GuestIDs: []string{"guest-1"}})

	host, err = repo.GetHost(f.ctx, "Guest-1", acme.ID())
	require.NoError(t, err)
	require.NotNil(t, host)
	assert.Equal(t, newHost.UUID(), host.UUID())

	host, err = repo.GetHost(f.ctx, "  ", acme.ID())
	require.NoError(t, err)
	assert.Nil(t, host)
}

func TestConsumerRepository_GetHostUsesRequestCache(t *testing.T) {
	repo, f := newConsumerRepo(t)
	o := f.owner("acme")
	host := registerConsumer(t, repo, consumer.Params{OwnerID: o.ID(), Type: consumer.TypeHypervisor, GuestIDs: []string{"guest-1"}})

	cache := consumer.NewHostCache(0)
	ctx := consumer.WithHostCache(f.ctx, cache)

	got, err := repo.GetHost(ctx, "guest-1", o.ID())
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, host.UUID(), got.UUID())

	missing, err := repo.GetHost(ctx, "guest-9", o.ID())
	require.NoError(t, err)
	assert.Nil(t, missing)
	assert.Equal(t, 2, cache.Len())

	// Later changes are not seen within the same request.
	host.SetGuestIDs(nil)
	require.NoError(t, repo.Update(f.ctx, host))

	got, err = repo.GetHost(ctx, "GUEST-1", o.ID())
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, host.UUID(), got.UUID())

	got, err = repo.GetHost(f.ctx, "guest-1", o.ID())
	require.NoError(t, err)
	assert.Nil(t, got)
}
