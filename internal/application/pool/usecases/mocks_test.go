package usecases

import (
	"context"
	"time"

	"github.com/candlepin/candlepin-sub005/internal/domain/consumer"
	"github.com/candlepin/candlepin-sub005/internal/domain/owner"
	"github.com/candlepin/candlepin-sub005/internal/domain/pool"
	"github.com/candlepin/candlepin-sub005/internal/shared/errors"
	"github.com/candlepin/candlepin-sub005/internal/shared/query"
)

type mockPoolRepo struct {
	getByIDFunc            func(ctx context.Context, id string) (*pool.Pool, error)
	listAvailableFunc      func(ctx context.Context, q pool.AvailabilityQuery) (*query.Page[*pool.Pool], error)
	findOversubscribedFunc func(ctx context.Context, q pool.OversubscriptionQuery) ([]*pool.Pool, error)
	bySubscriptionsFunc    func(ctx context.Context, ownerID string, subscriptionIDs []string) ([]*pool.Pool, error)
	hasEntPoolsFunc        func(ctx context.Context, ownerID string, date time.Time) (bool, error)
	listExpiredFunc        func(ctx context.Context, now time.Time, limit int) ([]*pool.Pool, error)
	batchDeleteFunc        func(ctx context.Context, ids []string) (int64, error)
}

func (m *mockPoolRepo) Create(ctx context.Context, p *pool.Pool) error { return nil }
func (m *mockPoolRepo) Update(ctx context.Context, p *pool.Pool) error { return nil }

func (m *mockPoolRepo) GetByID(ctx context.Context, id string) (*pool.Pool, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockPoolRepo) ListAvailable(ctx context.Context, q pool.AvailabilityQuery) (*query.Page[*pool.Pool], error) {
	if m.listAvailableFunc != nil {
		return m.listAvailableFunc(ctx, q)
	}
	page := query.ApplyPaging([]*pool.Pool{}, q.Page())
	return &page, nil
}

func (m *mockPoolRepo) FindOversubscribed(ctx context.Context, q pool.OversubscriptionQuery) ([]*pool.Pool, error) {
	if m.findOversubscribedFunc != nil {
		return m.findOversubscribedFunc(ctx, q)
	}
	return nil, nil
}

func (m *mockPoolRepo) LockPools(ctx context.Context, ids []string) ([]*pool.Pool, error) {
	return nil, nil
}

func (m *mockPoolRepo) RecalculateConsumed(ctx context.Context, poolIDs []string) error { return nil }

func (m *mockPoolRepo) ListBySourceEntitlements(ctx context.Context, entitlementIDs []string) ([]*pool.Pool, error) {
	return nil, nil
}

func (m *mockPoolRepo) GetBySubscriptionIDs(ctx context.Context, ownerID string, subscriptionIDs []string) ([]*pool.Pool, error) {
	if m.bySubscriptionsFunc != nil {
		return m.bySubscriptionsFunc(ctx, ownerID, subscriptionIDs)
	}
	return nil, nil
}

func (m *mockPoolRepo) HasActiveEntitlementPools(ctx context.Context, ownerID string, date time.Time) (bool, error) {
	if m.hasEntPoolsFunc != nil {
		return m.hasEntPoolsFunc(ctx, ownerID, date)
	}
	return false, nil
}

func (m *mockPoolRepo) ListExpired(ctx context.Context, now time.Time, limit int) ([]*pool.Pool, error) {
	if m.listExpiredFunc != nil {
		return m.listExpiredFunc(ctx, now, limit)
	}
	return nil, nil
}

func (m *mockPoolRepo) BatchDelete(ctx context.Context, ids []string) (int64, error) {
	if m.batchDeleteFunc != nil {
		return m.batchDeleteFunc(ctx, ids)
	}
	return int64(len(ids)), nil
}

type mockOwnerRepo struct {
	owners map[string]*owner.Owner
}

func newMockOwnerRepo(owners ...*owner.Owner) *mockOwnerRepo {
	m := &mockOwnerRepo{owners: make(map[string]*owner.Owner)}
	for _, o := range owners {
		m.owners[o.ID()] = o
	}
	return m
}

func (m *mockOwnerRepo) Create(ctx context.Context, o *owner.Owner) error {
	m.owners[o.ID()] = o
	return nil
}

func (m *mockOwnerRepo) GetByID(ctx context.Context, id string) (*owner.Owner, error) {
	return m.owners[id], nil
}

func (m *mockOwnerRepo) GetByKey(ctx context.Context, key string) (*owner.Owner, error) {
	for _, o := range m.owners {
		if o.Key() == key {
			return o, nil
		}
	}
	return nil, nil
}

type mockConsumerRepo struct {
	consumers   map[string]*consumer.Consumer
	getHostFunc func(ctx context.Context, guestID, ownerID string) (*consumer.Consumer, error)
}

func newMockConsumerRepo(consumers ...*consumer.Consumer) *mockConsumerRepo {
	m := &mockConsumerRepo{consumers: make(map[string]*consumer.Consumer)}
	for _, c := range consumers {
		m.consumers[c.UUID()] = c
	}
	return m
}

func (m *mockConsumerRepo) Create(ctx context.Context, c *consumer.Consumer) error { return nil }
func (m *mockConsumerRepo) Update(ctx context.Context, c *consumer.Consumer) error { return nil }

func (m *mockConsumerRepo) GetByUUID(ctx context.Context, uuid string) (*consumer.Consumer, error) {
	return m.consumers[uuid], nil
}

func (m *mockConsumerRepo) VerifyAndLookup(ctx context.Context, uuid string) (*consumer.Consumer, error) {
	c := m.consumers[uuid]
	if c == nil {
		return nil, errors.NewNotFoundError("consumer not found", uuid)
	}
	return c, nil
}

func (m *mockConsumerRepo) GetHost(ctx context.Context, guestID, ownerID string) (*consumer.Consumer, error) {
	if m.getHostFunc != nil {
		return m.getHostFunc(ctx, guestID, ownerID)
	}
	return nil, nil
}
