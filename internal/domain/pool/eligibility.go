package pool

import (
	"strings"

	"github.com/candlepin/candlepin-sub005/internal/domain/consumer"
)

// ConsumerEligibility is the in-memory check applied to pools returned for
// a consumer. It covers the consumer type attributes that cannot be
// expressed against storage.
type ConsumerEligibility struct {
	consumer *consumer.Consumer
}

func NewConsumerEligibility(c *consumer.Consumer) ConsumerEligibility {
	return ConsumerEligibility{consumer: c}
}

// Allows reports whether the consumer may draw from p. Without a consumer
// every pool is allowed.
func (e ConsumerEligibility) Allows(p *Pool) bool {
	if e.consumer == nil {
		return true
	}
	label := e.consumer.Type().Label()

	if required, ok := MergedAttribute(p, AttrRequiresConsumerType); ok && strings.TrimSpace(required) != "" {
		if !strings.EqualFold(strings.TrimSpace(required), label) {
			return false
		}
	}

	if enabled, ok := MergedAttribute(p, AttrEnabledConsumerTypes); ok && strings.TrimSpace(enabled) != "" {
		if !containsFold(strings.Split(enabled, ","), label) {
			return false
		}
	}

	if required, ok := MergedAttribute(p, AttrRequiresConsumer); ok && required != "" {
		if required != e.consumer.UUID() {
			return false
		}
	}
	return true
}

// Filter returns the pools the consumer may draw from, keeping order.
func (e ConsumerEligibility) Filter(pools []*Pool) []*Pool {
	out := make([]*Pool, 0, len(pools))
	for _, p := range pools {
		if e.Allows(p) {
			out = append(out, p)
		}
	}
	return out
}

func containsFold(values []string, want string) bool {
	for _, v := range values {
		if strings.EqualFold(strings.TrimSpace(v), want) {
			return true
		}
	}
	return false
}
