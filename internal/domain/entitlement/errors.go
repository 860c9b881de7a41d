package entitlement

import "errors"

var (
	ErrEntitlementNotFound = errors.New("entitlement not found")
	ErrOwnerRequired       = errors.New("entitlement owner is required")
	ErrConsumerRequired    = errors.New("entitlement consumer is required")
	ErrPoolRequired        = errors.New("entitlement pool is required")

	// ErrInvalidQuantity is returned for quantities below one.
	ErrInvalidQuantity = errors.New("entitlement quantity must be at least 1")

	// ErrInsufficientQuantity is returned when a bind would oversubscribe
	// its pool.
	ErrInsufficientQuantity = errors.New("not enough pool quantity available")
)
