package models

import (
	"time"

	"github.com/candlepin/candlepin-sub005/internal/shared/constants"
)

// OwnerModel is the persistence model of an organization.
type OwnerModel struct {
	ID                string `gorm:"primaryKey;size:32"`
	Key               string `gorm:"column:owner_key;size:255;not null;uniqueIndex"`
	DisplayName       string `gorm:"size:255"`
	ContentAccessMode string `gorm:"size:255"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (OwnerModel) TableName() string {
	return constants.TableOwners
}
