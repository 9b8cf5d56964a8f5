package kv

import "time"

// Table: kv_entries
type Entry struct {
	Key       string    `gorm:"column:entry_key;primaryKey;size:128"`
	Value     []byte    `gorm:"column:entry_value;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Entry) TableName() string { return "kv_entries" }
