package model

import "time"

/*

NewsArticle is one article pulled from the news search API

Url carries a unique constraint so repeated refresh runs upsert instead of
duplicating, which makes the refresh endpoint idempotent per article.

*/
type NewsArticle struct {
	Id            string `gorm:"primaryKey"`
	CreatedAt     time.Time
	Industry      string `gorm:"index"`
	Title         string
	Url           string `gorm:"uniqueIndex"`
	Source        string
	PublishedDate *time.Time
	Snippet       string
	Content       string
}
