package model

import "time"

// AuditRecord is a persistence call the upstream acknowledged.
type AuditRecord struct {
	ID             int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	SessionID      string     `gorm:"size:36;index;not null" json:"session_id"`
	Channel        string     `gorm:"size:32;not null" json:"channel"`
	OptionType     OptionType `gorm:"size:16" json:"option_type,omitempty"`
	Date           string     `gorm:"size:10" json:"date,omitempty"`
	Cost           float64    `gorm:"not null" json:"cost"`
	Payload        string     `gorm:"type:text" json:"payload,omitempty"`
	AcknowledgedAt time.Time  `gorm:"not null;index" json:"acknowledged_at"`
}
