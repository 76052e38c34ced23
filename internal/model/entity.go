package model

import "time"

// KVEntry is one durable key/value slot for one user. It backs the
// cross-session storage the viewer handoff and session persistence rely on.
type KVEntry struct {
	ID        int       `gorm:"primaryKey" json:"id"`
	UserID    int       `gorm:"uniqueIndex:uk_user_key" json:"user_id"`
	Key       string    `gorm:"uniqueIndex:uk_user_key;size:64" json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (KVEntry) TableName() string { return "kv_entries" }
