package models

import (
	"time"

	"github.com/candlepin/candlepin-sub005/internal/shared/constants"
)

// ConsumerModel is the persistence model of a registered consumer.
type ConsumerModel struct {
	ID            string               `gorm:"primaryKey;size:32"`
	UUID          string               `gorm:"size:255;not null;uniqueIndex"`
	OwnerID       string               `gorm:"size:32;not null;index"`
	Name          string               `gorm:"size:255;not null"`
	Username      string               `gorm:"size:255"`
	TypeLabel     string               `gorm:"size:255;not null"`
	TypeManifest  bool                 `gorm:"not null;default:false"`
	HypervisorID  string               `gorm:"size:255"`
	EnvironmentID string               `gorm:"size:32"`
	Facts         []ConsumerFactModel  `gorm:"foreignKey:ConsumerID"`
	Guests        []ConsumerGuestModel `gorm:"foreignKey:ConsumerID"`
	Version       int                  `gorm:"not null;default:1"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (ConsumerModel) TableName() string {
	return constants.TableConsumers
}

type ConsumerFactModel struct {
	ConsumerID string `gorm:"primaryKey;size:32"`
	Name       string `gorm:"primaryKey;size:255"`
	Value      string `gorm:"size:255"`
}

func (ConsumerFactModel) TableName() string {
	return constants.TableConsumerFacts
}

// ConsumerGuestModel records a guest reported by a host consumer. The
// lowercased ID backs case-insensitive host lookups.
type ConsumerGuestModel struct {
	ID           uint   `gorm:"primaryKey"`
	ConsumerID   string `gorm:"size:32;not null;index"`
	GuestID      string `gorm:"size:255;not null"`
	GuestIDLower string `gorm:"size:255;not null;index"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (ConsumerGuestModel) TableName() string {
	return constants.TableConsumerGuests
}
