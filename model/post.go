package model

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

/*

Post is one generated (or hand-edited) LinkedIn post variant

Id: primary key
CreatedAt / UpdatedAt: entity timestamps
UserId: owner, every read and write must filter on it
GeneratedContentId: the generation request this variant came from, "belongs-to" relation, null for hand-written posts

Content: post body in plain text
Topic: topic the post was generated for
Hook: opening line suggested by the model
Hashtags: JSON array of tags, stored without '#' prefixes

VersionGroup: identifier shared by all variants produced from one generation request
IsCurrentVersion: within a version group at most one row carries true, that row is what the user sees and edits

NewsReference: title of the news article the variant was grounded on, if any
ImageUrl: externally supplied image location; a generated image lives in PostImage instead and wins over this field on read
RemotePostId: LinkedIn-side post id (urn) once published
ScheduledFor / PublishedAt: scheduling and publish bookkeeping

Sources: citations supplied by the model, "has-many" relation
*/
type Post struct {
	Id                 string `gorm:"primaryKey"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
	DeletedAt          gorm.DeletedAt
	UserId             string `gorm:"index"`
	GeneratedContentId *string
	Content            string
	Topic              string
	Hook               string
	Hashtags           datatypes.JSON
	VersionGroup       string `gorm:"index"`
	IsCurrentVersion   bool
	NewsReference      *string
	ImageUrl           string
	RemotePostId       string
	ScheduledFor       *time.Time
	PublishedAt        *time.Time
	Sources            []PostSource `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

// HashtagList decodes the JSON hashtags column. A null or malformed column
// decodes to an empty list, readers treat that as "no tags yet".
func (p *Post) HashtagList() []string {
	tags := []string{}
	if len(p.Hashtags) == 0 {
		return tags
	}
	if err := json.Unmarshal(p.Hashtags, &tags); err != nil {
		return []string{}
	}
	return tags
}

func (p *Post) SetHashtagList(tags []string) error {
	encoded, err := json.Marshal(tags)
	if err != nil {
		return err
	}
	p.Hashtags = datatypes.JSON(encoded)
	return nil
}
