package models

import (
	"time"

	"github.com/candlepin/candlepin-sub005/internal/shared/constants"
)

// EntitlementModel is the persistence model of a consumer's claim on a pool.
type EntitlementModel struct {
	ID              string `gorm:"primaryKey;size:32"`
	OwnerID         string `gorm:"size:32;not null;index"`
	ConsumerID      string `gorm:"size:32;not null;index"`
	PoolID          string `gorm:"size:32;not null;index"`
	Quantity        int64  `gorm:"not null"`
	EndDateOverride *time.Time
	Dirty           bool       `gorm:"not null;default:false"`
	Pool            *PoolModel `gorm:"foreignKey:PoolID"`
	Version         int        `gorm:"not null;default:1"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (EntitlementModel) TableName() string {
	return constants.TableEntitlements
}
