package model

import "time"

// UserPreferences stores per-user generation defaults, upserted from the
// settings form and read by the generator to prefill missing request fields.
type UserPreferences struct {
	UserId        string `gorm:"primaryKey"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DefaultTone   string
	DefaultPov    string
	Industry      string
	WritingSample string
}
