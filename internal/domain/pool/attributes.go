package pool

import "strings"

// Pool and product attribute names the engine interprets.
const (
	AttrPoolDerived          = "pool_derived"
	AttrUnmappedGuestsOnly   = "unmapped_guests_only"
	AttrStackingID           = "stacking_id"
	AttrMultiEntitlement     = "multi-entitlement"
	AttrInstanceMultiplier   = "instance_multiplier"
	AttrDevelopmentPool      = "dev_pool"
	AttrRequiresConsumer     = "requires_consumer"
	AttrRequiresConsumerType = "requires_consumer_type"
	AttrEnabledConsumerTypes = "enabled_consumer_types"
	AttrRequiresHost         = "requires_host"
	AttrVirtOnly             = "virt_only"
	AttrSupportLevel         = "support_level"
)

// MergedAttribute resolves name against the pool first and then the pool's
// top-level product. The boolean is false when neither defines it; an
// attribute present with an empty value is reported as ("", true).
func MergedAttribute(p *Pool, name string) (string, bool) {
	if v, ok := p.attributes[name]; ok {
		return v, true
	}
	if v, ok := p.productAttributes[name]; ok {
		return v, true
	}
	return "", false
}

// HasAttribute reports whether the pool or its product defines name.
func HasAttribute(p *Pool, name string) bool {
	_, ok := MergedAttribute(p, name)
	return ok
}

// AttributeEquals reports whether the merged attribute equals expected.
// An absent attribute never equals anything.
func AttributeEquals(p *Pool, name, expected string) bool {
	v, ok := MergedAttribute(p, name)
	return ok && v == expected
}

// AttributeEqualsFold is AttributeEquals ignoring case, for flag values
// such as "true".
func AttributeEqualsFold(p *Pool, name, expected string) bool {
	v, ok := MergedAttribute(p, name)
	return ok && strings.EqualFold(v, expected)
}

// MergedAttributes returns the product attributes overlaid by the pool
// attributes.
func MergedAttributes(p *Pool) map[string]string {
	merged := make(map[string]string, len(p.attributes)+len(p.productAttributes))
	for k, v := range p.productAttributes {
		merged[k] = v
	}
	for k, v := range p.attributes {
		merged[k] = v
	}
	return merged
}
