package model

import "time"

// PostSource is one citation attached to a post, supplied by the model when
// the generation was grounded on news articles. Child of Post, removed with
// its parent.
type PostSource struct {
	Id              string `gorm:"primaryKey"`
	CreatedAt       time.Time
	PostId          string `gorm:"index"`
	Title           string
	Url             string
	PublicationDate *time.Time
}
