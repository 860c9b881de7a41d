package entitlement

import (
	"slices"
	"time"
)

// PoolSnapshot is the part of the backing pool an entitlement reads: its
// dates and the products it grants.
type PoolSnapshot struct {
	StartDate          time.Time
	EndDate            time.Time
	ProductID          string
	ProvidedProductIDs []string
}

func (s PoolSnapshot) clone() PoolSnapshot {
	s.ProvidedProductIDs = slices.Clone(s.ProvidedProductIDs)
	return s
}
