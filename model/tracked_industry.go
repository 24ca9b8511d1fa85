package model

import "time"

// TrackedIndustry is static configuration consumed by the news fetcher; only
// rows with Active=true are refreshed.
type TrackedIndustry struct {
	Id        string `gorm:"primaryKey"`
	CreatedAt time.Time
	Name      string
	Active    bool
}
