package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/candlepin/candlepin-sub005/internal/shared/constants"
)

// AsyncJobModel is the persistence model of a background job record.
type AsyncJobModel struct {
	ID            string `gorm:"primaryKey;size:32"`
	JobKey        string `gorm:"size:255;not null;index"`
	Name          string `gorm:"size:255;not null"`
	JobGroup      string `gorm:"size:255"`
	Origin        string `gorm:"size:255"`
	Executor      string `gorm:"size:255"`
	Principal     string `gorm:"size:255"`
	OwnerID       string `gorm:"size:32;index"`
	State         string `gorm:"size:32;not null;index"`
	PreviousState string `gorm:"size:32"`
	Attempts      int    `gorm:"not null;default:0"`
	MaxAttempts   int    `gorm:"not null;default:1"`
	StartTime     *time.Time
	EndTime       *time.Time
	Metadata      datatypes.JSON
	Result        string `gorm:"type:text"`
	Version       int    `gorm:"not null;default:1"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (AsyncJobModel) TableName() string {
	return constants.TableAsyncJobs
}
