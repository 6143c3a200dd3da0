package models

import "time"

// WebhookEvent is the local log of an authenticated gateway notification and
// what reconciling it produced.
type WebhookEvent struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	EventID         string     `gorm:"size:36;uniqueIndex" json:"event_id"`
	Provider        string     `gorm:"size:20;not null;index" json:"provider"`
	Kind            string     `gorm:"size:50;not null;index" json:"kind"`
	ResourceID      string     `gorm:"size:191;index" json:"resource_id"`
	SignatureValid  bool       `gorm:"default:false" json:"signature_valid"`
	Processed       bool       `gorm:"default:false;index" json:"processed"`
	Outcome         string     `gorm:"size:50" json:"outcome"`
	ProcessingError string     `gorm:"type:text" json:"processing_error"`
	IP              string     `gorm:"size:45" json:"ip"`
	ProcessedAt     *time.Time `json:"processed_at"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func (WebhookEvent) TableName() string {
	return "webhook_events"
}
