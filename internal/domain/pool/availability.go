package pool

import (
	"errors"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/candlepin/candlepin-sub005/internal/domain/consumer"
	"github.com/candlepin/candlepin-sub005/internal/domain/permission"
	"github.com/candlepin/candlepin-sub005/internal/shared/query"
)

// ErrConflictingDateModes is returned when both future modes are requested.
var ErrConflictingDateModes = errors.New("addFuture and onlyFuture are mutually exclusive")

// negationPrefix marks an attribute filter value as an exclusion.
const negationPrefix = "!"

// AttributeFilter constrains one merged attribute. Include values are OR'd
// wildcard patterns; an empty pattern, or no patterns at all, matches an
// attribute present with a null or blank value. Exclude drops pools whose
// merged attribute matches any of its patterns.
type AttributeFilter struct {
	Name    string
	Include []string
	Exclude []string
}

// MatchesBlank reports whether the include side accepts a blank value.
func (f AttributeFilter) MatchesBlank() bool {
	if len(f.Include) == 0 && len(f.Exclude) == 0 {
		return true
	}
	return slices.Contains(f.Include, "")
}

// IncludePatterns returns the non-blank include values.
func (f AttributeFilter) IncludePatterns() []string {
	return nonBlank(f.Include)
}

// ExcludePatterns returns the non-blank exclude values.
func (f AttributeFilter) ExcludePatterns() []string {
	return nonBlank(f.Exclude)
}

// HasInclude reports whether the filter has an include side.
func (f AttributeFilter) HasInclude() bool {
	return len(f.Include) > 0 || len(f.Exclude) == 0
}

// ParseAttributeFilter splits raw values into includes and "!"-prefixed
// excludes.
func ParseAttributeFilter(name string, values []string) AttributeFilter {
	f := AttributeFilter{Name: name}
	for _, v := range values {
		if strings.HasPrefix(v, negationPrefix) {
			f.Exclude = append(f.Exclude, strings.TrimPrefix(v, negationPrefix))
			continue
		}
		f.Include = append(f.Include, v)
	}
	return f
}

// AvailabilityQuery describes the pools a consumer or owner may draw from.
// It is an immutable value: build it with NewAvailabilityQuery and read it
// through its accessors.
type AvailabilityQuery struct {
	consumer         *consumer.Consumer
	ownerID          string
	ueberProductID   string
	includeUeberPool bool
	productIDs       []string
	subscriptionID   string
	poolIDs          []string
	activeOn         *time.Time
	addFuture        bool
	onlyFuture       bool
	after            *time.Time
	activeOnly       bool
	matches          []string
	attributeFilters []AttributeFilter
	restrictions     []permission.Restriction
	guestHostUUID    *string
	page             *query.PageRequest
}

// AvailabilityOption configures an AvailabilityQuery.
type AvailabilityOption func(*AvailabilityQuery)

// NewAvailabilityQuery builds a query. When no owner is given the consumer's
// owner is used.
func NewAvailabilityQuery(opts ...AvailabilityOption) (AvailabilityQuery, error) {
	var q AvailabilityQuery
	for _, opt := range opts {
		opt(&q)
	}
	if q.addFuture && q.onlyFuture {
		return AvailabilityQuery{}, ErrConflictingDateModes
	}
	if q.ownerID == "" && q.consumer != nil {
		q.ownerID = q.consumer.OwnerID()
	}
	sort.SliceStable(q.attributeFilters, func(i, j int) bool {
		return q.attributeFilters[i].Name < q.attributeFilters[j].Name
	})
	return q, nil
}

func WithConsumer(c *consumer.Consumer) AvailabilityOption {
	return func(q *AvailabilityQuery) { q.consumer = c }
}

func WithOwner(ownerID string) AvailabilityOption {
	return func(q *AvailabilityQuery) { q.ownerID = ownerID }
}

// WithUeberProduct names the owner's bookkeeping product, which is excluded
// unless include is true.
func WithUeberProduct(productID string, include bool) AvailabilityOption {
	return func(q *AvailabilityQuery) {
		q.ueberProductID = productID
		q.includeUeberPool = include
	}
}

func WithProductIDs(ids ...string) AvailabilityOption {
	return func(q *AvailabilityQuery) { q.productIDs = append(q.productIDs, nonBlank(ids)...) }
}

func WithSubscriptionID(id string) AvailabilityOption {
	return func(q *AvailabilityQuery) { q.subscriptionID = id }
}

func WithPoolIDs(ids ...string) AvailabilityOption {
	return func(q *AvailabilityQuery) { q.poolIDs = append(q.poolIDs, nonBlank(ids)...) }
}

func WithActiveOn(t time.Time) AvailabilityOption {
	return func(q *AvailabilityQuery) { q.activeOn = &t }
}

// WithAddFuture widens activeOn to pools that have not ended yet.
func WithAddFuture() AvailabilityOption {
	return func(q *AvailabilityQuery) { q.addFuture = true }
}

// WithOnlyFuture narrows activeOn to pools starting on or after it.
func WithOnlyFuture() AvailabilityOption {
	return func(q *AvailabilityQuery) { q.onlyFuture = true }
}

// WithAfter keeps pools starting on or after t.
func WithAfter(t time.Time) AvailabilityOption {
	return func(q *AvailabilityQuery) { q.after = &t }
}

func WithActiveOnly() AvailabilityOption {
	return func(q *AvailabilityQuery) { q.activeOnly = true }
}

// WithMatches adds free-text wildcard filters. Each filter must match one of
// the pool's text fields; all filters must match.
func WithMatches(filters ...string) AvailabilityOption {
	return func(q *AvailabilityQuery) {
		for _, f := range filters {
			if strings.TrimSpace(f) != "" {
				q.matches = append(q.matches, f)
			}
		}
	}
}

// WithAttributeFilter adds a merged attribute constraint. Values prefixed
// with "!" exclude.
func WithAttributeFilter(name string, values ...string) AvailabilityOption {
	return func(q *AvailabilityQuery) {
		if name == "" {
			return
		}
		q.attributeFilters = append(q.attributeFilters, ParseAttributeFilter(name, values))
	}
}

// WithRestrictions sets the permission restrictions of the caller. They are
// OR'd; none means unrestricted.
func WithRestrictions(r []permission.Restriction) AvailabilityOption {
	return func(q *AvailabilityQuery) { q.restrictions = slices.Clone(r) }
}

// WithGuestHost records the resolved host of a guest consumer. An empty
// uuid means the guest has no known host.
func WithGuestHost(hostUUID string) AvailabilityOption {
	return func(q *AvailabilityQuery) { q.guestHostUUID = &hostUUID }
}

func WithPage(page *query.PageRequest) AvailabilityOption {
	return func(q *AvailabilityQuery) { q.page = page }
}

func (q AvailabilityQuery) Consumer() *consumer.Consumer { return q.consumer }
func (q AvailabilityQuery) OwnerID() string              { return q.ownerID }
func (q AvailabilityQuery) SubscriptionID() string       { return q.subscriptionID }
func (q AvailabilityQuery) AddFuture() bool              { return q.addFuture }
func (q AvailabilityQuery) OnlyFuture() bool             { return q.onlyFuture }
func (q AvailabilityQuery) ActiveOnly() bool             { return q.activeOnly }
func (q AvailabilityQuery) Page() *query.PageRequest     { return q.page }

// ExcludedUeberProductID returns the bookkeeping product to exclude, or "".
func (q AvailabilityQuery) ExcludedUeberProductID() string {
	if q.includeUeberPool {
		return ""
	}
	return q.ueberProductID
}

func (q AvailabilityQuery) ProductIDs() []string { return slices.Clone(q.productIDs) }
func (q AvailabilityQuery) PoolIDs() []string    { return slices.Clone(q.poolIDs) }
func (q AvailabilityQuery) Matches() []string    { return slices.Clone(q.matches) }

func (q AvailabilityQuery) AttributeFilters() []AttributeFilter {
	out := make([]AttributeFilter, len(q.attributeFilters))
	for i, f := range q.attributeFilters {
		out[i] = AttributeFilter{Name: f.Name, Include: slices.Clone(f.Include), Exclude: slices.Clone(f.Exclude)}
	}
	return out
}

func (q AvailabilityQuery) Restrictions() []permission.Restriction {
	return slices.Clone(q.restrictions)
}

func (q AvailabilityQuery) ActiveOn() (time.Time, bool) {
	if q.activeOn == nil {
		return time.Time{}, false
	}
	return *q.activeOn, true
}

func (q AvailabilityQuery) After() (time.Time, bool) {
	if q.after == nil {
		return time.Time{}, false
	}
	return *q.after, true
}

// GuestHostUUID returns the resolved host of a guest consumer. The second
// result is false when no host lookup applies.
func (q AvailabilityQuery) GuestHostUUID() (string, bool) {
	if q.guestHostUUID == nil {
		return "", false
	}
	return *q.guestHostUUID, true
}

// OwnerMismatch reports a consumer and an explicit owner that disagree.
// Such a query can match nothing.
func (q AvailabilityQuery) OwnerMismatch() bool {
	return q.consumer != nil && q.ownerID != "" && q.consumer.OwnerID() != q.ownerID
}

// NeedsPostFilter reports whether pools must pass ConsumerEligibility after
// the storage query.
func (q AvailabilityQuery) NeedsPostFilter() bool {
	return q.consumer != nil
}

// ConsumerPredicate names the storage-level consumer restriction that
// applies to q.
type ConsumerPredicate int

const (
	ConsumerPredicateNone ConsumerPredicate = iota
	// Manifest consumers never see pools that require a host.
	ConsumerPredicateNoHostRequired
	// Physical systems never see virt-only pools.
	ConsumerPredicateNotVirtOnly
	// Guests only see pools requiring no host or their own host.
	ConsumerPredicateMatchingHost
)

// ConsumerPredicate selects the consumer restriction for q.
func (q AvailabilityQuery) ConsumerPredicate() ConsumerPredicate {
	switch c := q.consumer; {
	case c == nil:
		return ConsumerPredicateNone
	case c.IsManifest():
		return ConsumerPredicateNoHostRequired
	case !c.IsGuest():
		return ConsumerPredicateNotVirtOnly
	default:
		if _, ok := c.VirtUUID(); ok {
			return ConsumerPredicateMatchingHost
		}
		return ConsumerPredicateNone
	}
}

func nonBlank(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}
