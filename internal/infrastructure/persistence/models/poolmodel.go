package models

import (
	"time"

	"github.com/candlepin/candlepin-sub005/internal/shared/constants"
)

// PoolModel is the persistence model of a pool. Product details are joined
// through the owner's product links.
type PoolModel struct {
	ID                       string                            `gorm:"primaryKey;size:32"`
	OwnerID                  string                            `gorm:"size:32;not null;index:idx_pool_owner_dates,priority:1"`
	ProductID                string                            `gorm:"size:32;not null;index"`
	DerivedProductID         string                            `gorm:"size:32;index"`
	Quantity                 int64                             `gorm:"not null"`
	Consumed                 int64                             `gorm:"not null;default:0"`
	Exported                 int64                             `gorm:"not null;default:0"`
	StartDate                time.Time                         `gorm:"not null;index:idx_pool_owner_dates,priority:2"`
	EndDate                  time.Time                         `gorm:"not null;index:idx_pool_owner_dates,priority:3"`
	ActiveSubscription       bool                              `gorm:"not null;default:true"`
	SourceSubscriptionID     string                            `gorm:"size:255;index"`
	SourceSubscriptionSubKey string                            `gorm:"size:255"`
	SourceEntitlementID      *string                           `gorm:"size:32;index"`
	SourceStackID            string                            `gorm:"size:255"`
	ContractNumber           string                            `gorm:"size:255"`
	OrderNumber              string                            `gorm:"size:255"`
	AccountNumber            string                            `gorm:"size:255"`
	RestrictedToUsername     string                            `gorm:"size:255"`
	Attributes               []PoolAttributeModel              `gorm:"foreignKey:PoolID"`
	ProvidedProducts         []PoolProvidedProductModel        `gorm:"foreignKey:PoolID"`
	DerivedProvidedProducts  []PoolDerivedProvidedProductModel `gorm:"foreignKey:PoolID"`
	Version                  int                               `gorm:"not null;default:1"`
	CreatedAt                time.Time
	UpdatedAt                time.Time
}

func (PoolModel) TableName() string {
	return constants.TablePools
}

type PoolAttributeModel struct {
	ID     uint    `gorm:"primaryKey"`
	PoolID string  `gorm:"size:32;not null;uniqueIndex:idx_pool_attribute,priority:1"`
	Name   string  `gorm:"size:255;not null;uniqueIndex:idx_pool_attribute,priority:2"`
	Value  *string `gorm:"size:255"`
}

func (PoolAttributeModel) TableName() string {
	return constants.TablePoolAttributes
}

type PoolProvidedProductModel struct {
	PoolID    string `gorm:"primaryKey;size:32"`
	ProductID string `gorm:"primaryKey;size:32;index"`
}

func (PoolProvidedProductModel) TableName() string {
	return constants.TablePoolProvidedProducts
}

type PoolDerivedProvidedProductModel struct {
	PoolID    string `gorm:"primaryKey;size:32"`
	ProductID string `gorm:"primaryKey;size:32;index"`
}

func (PoolDerivedProvidedProductModel) TableName() string {
	return constants.TablePoolDerivedProvidedProducts
}
