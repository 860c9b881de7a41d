package pool

import (
	"maps"
	"sort"
)

// SubscriptionEntitlement pairs a subscription with the entitlement whose
// derived pools are checked alongside the subscription's own pools.
type SubscriptionEntitlement struct {
	SubscriptionID string
	EntitlementID  string
}

// OversubscriptionQuery selects the pools of an owner, drawn from the given
// subscriptions, whose consumed count exceeds their quantity.
type OversubscriptionQuery struct {
	ownerID        string
	bySubscription map[string]string
}

// NewOversubscriptionQuery copies bySubscription, which maps subscription
// IDs to source entitlement IDs.
func NewOversubscriptionQuery(ownerID string, bySubscription map[string]string) OversubscriptionQuery {
	return OversubscriptionQuery{ownerID: ownerID, bySubscription: maps.Clone(bySubscription)}
}

func (q OversubscriptionQuery) OwnerID() string { return q.ownerID }

// IsEmpty reports whether the query can match nothing.
func (q OversubscriptionQuery) IsEmpty() bool {
	return len(q.bySubscription) == 0
}

// Pairs returns the subscription and entitlement pairs ordered by
// subscription ID.
func (q OversubscriptionQuery) Pairs() []SubscriptionEntitlement {
	pairs := make([]SubscriptionEntitlement, 0, len(q.bySubscription))
	for sub, ent := range q.bySubscription {
		pairs = append(pairs, SubscriptionEntitlement{SubscriptionID: sub, EntitlementID: ent})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].SubscriptionID < pairs[j].SubscriptionID })
	return pairs
}

// Matches applies the query to a loaded pool.
func (q OversubscriptionQuery) Matches(p *Pool) bool {
	if p.ownerID != q.ownerID || !p.IsOversubscribed() {
		return false
	}
	ent, ok := q.bySubscription[p.subscriptionID]
	if !ok {
		return false
	}
	return p.sourceEntitlementID == "" || p.sourceEntitlementID == ent
}
