package models

import (
	"time"

	"gorm.io/gorm"
)

// ProcessLog represents one reconciliation decision for a scanned message
type ProcessLog struct {
	ID             uint           `json:"id" gorm:"primaryKey;autoIncrement"`
	MessageID      string         `json:"message_id" gorm:"type:varchar(255);not null;index"`
	Account        string         `json:"account" gorm:"type:varchar(255);not null"`
	TrackingNumber string         `json:"tracking_number" gorm:"type:varchar(32);index"`
	Status         string         `json:"status" gorm:"type:varchar(50);not null"`
	ErrorMsg       string         `json:"error_msg" gorm:"type:text"`
	CreatedAt      time.Time      `json:"created_at"`
	DeletedAt      gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// TableName specifies the table name for ProcessLog
func (ProcessLog) TableName() string {
	return "process_logs"
}
