package model

import (
	"time"

	"gorm.io/gorm"
)

/*

PostImage is one generated image for a post

The table is append-only history: the newest row for a post is its current
image. ImageUrl holds the image itself as a base64 data URI, StoragePath is
a logical location key kept for a future move to object storage.

*/
type PostImage struct {
	Id           string `gorm:"primaryKey"`
	CreatedAt    time.Time
	PostId       string `gorm:"index"`
	UserId       string `gorm:"index"`
	Prompt       string
	CustomPrompt string
	ImageUrl     string
	StoragePath  string
}

// CurrentImageURL resolves the image a post should display: the newest
// PostImage row wins, the denormalized Post.ImageUrl (externally supplied
// images) is the fallback. Returns empty string when the post has no image.
func CurrentImageURL(db *gorm.DB, post *Post) (string, error) {
	var img PostImage
	res := db.Where("post_id = ?", post.Id).Order("created_at DESC").Limit(1).Find(&img)
	if res.Error != nil {
		return "", res.Error
	}
	if res.RowsAffected > 0 {
		return img.ImageUrl, nil
	}
	return post.ImageUrl, nil
}
