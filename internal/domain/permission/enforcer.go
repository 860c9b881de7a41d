package permission

import "context"

// Principal is the authenticated caller of a request.
type Principal struct {
	Name        string
	Permissions []Permission
}

// HasFullAccess reports whether the principal holds FullAccess.
func (p *Principal) HasFullAccess() bool {
	if p == nil {
		return false
	}
	for _, perm := range p.Permissions {
		if _, ok := perm.(FullAccess); ok {
			return true
		}
	}
	return false
}

// CanAccessOwner reports whether the principal may act on ownerID at the
// required access level.
func (p *Principal) CanAccessOwner(ownerID string, required Access) bool {
	if p == nil {
		return false
	}
	for _, perm := range p.Permissions {
		switch v := perm.(type) {
		case FullAccess:
			return true
		case OwnerPermission:
			if v.OwnerID == ownerID && v.Access.Provides(required) {
				return true
			}
		}
	}
	return false
}

// Restrictions returns the combined restrictions of the principal for entity.
func (p *Principal) Restrictions(entity EntityType) []Restriction {
	if p == nil {
		return nil
	}
	return Combine(p.Permissions, entity)
}

// Resolver turns an authenticated principal name into its permissions.
type Resolver interface {
	Resolve(ctx context.Context, principal string) (*Principal, error)
}

type principalKey struct{}

// WithPrincipal stores the principal in ctx.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom returns the principal stored in ctx, if any.
func PrincipalFrom(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*Principal)
	return p, ok && p != nil
}

// AllowsOwner reports whether the principal in ctx may act on ownerID at
// the required level. Calls made without a principal are internal and
// always allowed.
func AllowsOwner(ctx context.Context, ownerID string, required Access) bool {
	p, ok := PrincipalFrom(ctx)
	if !ok {
		return true
	}
	return p.CanAccessOwner(ownerID, required)
}
