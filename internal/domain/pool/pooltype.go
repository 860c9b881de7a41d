package pool

// Type classifies a pool by its attributes and derivation origin. It is
// computed, never stored.
type Type string

const (
	TypeNormal             Type = "NORMAL"
	TypeEntitlementDerived Type = "ENTITLEMENT_DERIVED"
	TypeStackDerived       Type = "STACK_DERIVED"
	TypeBonus              Type = "BONUS"
	TypeUnmappedGuest      Type = "UNMAPPED_GUEST"
	TypeDevelopment        Type = "DEVELOPMENT"
)

// IsDerived reports whether pools of this type hang off an entitlement or
// a stack of entitlements.
func (t Type) IsDerived() bool {
	return t == TypeEntitlementDerived || t == TypeStackDerived
}

func (t Type) String() string {
	return string(t)
}

// Type derives the pool type.
func (p *Pool) Type() Type {
	if _, ok := p.attributes[AttrPoolDerived]; ok {
		switch {
		case hasKey(p.attributes, AttrUnmappedGuestsOnly):
			return TypeUnmappedGuest
		case p.sourceEntitlementID != "":
			return TypeEntitlementDerived
		case p.sourceStackID != "":
			return TypeStackDerived
		default:
			return TypeBonus
		}
	}
	if hasKey(p.attributes, AttrDevelopmentPool) {
		return TypeDevelopment
	}
	return TypeNormal
}

func hasKey(m map[string]string, k string) bool {
	_, ok := m[k]
	return ok
}
